package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/souadELmaazouzi/audio-processing-and-ui/errors"
	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation"
	"github.com/souadELmaazouzi/audio-processing-and-ui/server"
)

// archiveOr answers 503 when archiving is disabled.
func (h *Handler) archiveOr(c *gin.Context) (Archive, bool) {
	if h.deps.Archive == nil {
		server.RespondWithError(c, apperrors.ServiceUnavailable("run archive").
			WithDetail("reason", "archiving is disabled"))
		return nil, false
	}
	return h.deps.Archive, true
}

func (h *Handler) listArchive(c *gin.Context) {
	store, ok := h.archiveOr(c)
	if !ok {
		return
	}
	entries, err := store.List(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOKWithMeta(c, entries, &server.Meta{Total: len(entries)})
}

func (h *Handler) getArchived(c *gin.Context) {
	store, ok := h.archiveOr(c)
	if !ok {
		return
	}
	snap, err := store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOKWithMeta(c, snap, &server.Meta{RunID: snap.RunID})
}

func (h *Handler) getArchivedPlot(c *gin.Context) {
	store, ok := h.archiveOr(c)
	if !ok {
		return
	}
	png, err := store.Plot(c.Request.Context(), c.Param("id"), evaluation.Backend(c.Param("backend")))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
