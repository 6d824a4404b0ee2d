package api

import (
	"github.com/gin-gonic/gin"

	"github.com/souadELmaazouzi/audio-processing-and-ui/dataset"
	apperrors "github.com/souadELmaazouzi/audio-processing-and-ui/errors"
	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
	"github.com/souadELmaazouzi/audio-processing-and-ui/server"
)

func (h *Handler) scanDataset(c *gin.Context) {
	files, err := dataset.Scan(h.deps.DataRoot)
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}
	server.RespondOKWithMeta(c, files, &server.Meta{Total: len(files)})
}

func (h *Handler) repairDataset(c *gin.Context) {
	files, err := dataset.Scan(h.deps.DataRoot)
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}
	report, err := dataset.Repair(c.Request.Context(), h.deps.Runner, files)
	if err != nil {
		server.RespondWithError(c, apperrors.Canceled("dataset repair").WithCause(err))
		return
	}
	h.log.WithContext(c.Request.Context()).Info("dataset repaired", logger.Fields(
		"converted", len(report.Converted),
		"failed", len(report.Failed),
	))
	server.RespondOKWithMeta(c, report, &server.Meta{Total: len(files)})
}
