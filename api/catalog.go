package api

import (
	"github.com/gin-gonic/gin"

	"github.com/souadELmaazouzi/audio-processing-and-ui/analysis"
	"github.com/souadELmaazouzi/audio-processing-and-ui/dataset"
	apperrors "github.com/souadELmaazouzi/audio-processing-and-ui/errors"
	"github.com/souadELmaazouzi/audio-processing-and-ui/server"
)

func (h *Handler) listUtterances(c *gin.Context) {
	cat, err := dataset.Load(h.deps.DataRoot)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOKWithMeta(c, cat, &server.Meta{Total: len(cat.IDs)})
}

// getUtterance returns one utterance's rows, one per recorded condition.
func (h *Handler) getUtterance(c *gin.Context) {
	cat, err := dataset.Load(h.deps.DataRoot)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	id := c.Param("id")
	rows := cat.Utterance(id)
	if len(rows) == 0 {
		server.RespondWithError(c, apperrors.NotFound("utterance", id))
		return
	}
	server.RespondOKWithMeta(c, rows, &server.Meta{Total: len(rows)})
}

func (h *Handler) listPresets(c *gin.Context) {
	presets := analysis.Presets()
	server.RespondOKWithMeta(c, gin.H{
		"bands":   analysis.Bands,
		"presets": presets,
	}, &server.Meta{Total: len(presets)})
}

func (h *Handler) analyze(c *gin.Context) {
	var req analysis.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("body", err.Error()))
		return
	}
	res, err := h.deps.Analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, res)
}
