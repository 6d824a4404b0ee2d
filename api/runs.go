package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/souadELmaazouzi/audio-processing-and-ui/errors"
	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation"
	"github.com/souadELmaazouzi/audio-processing-and-ui/orchestrator"
	"github.com/souadELmaazouzi/audio-processing-and-ui/server"
	"github.com/souadELmaazouzi/audio-processing-and-ui/server/middleware"
	"github.com/souadELmaazouzi/audio-processing-and-ui/sse"
)

// SnapshotEvent names the events of /api/runs/current/events.
const SnapshotEvent = "snapshot"

func (h *Handler) startRun(c *gin.Context) {
	var cfg orchestrator.Configuration
	if err := c.ShouldBindJSON(&cfg); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("body", err.Error()))
		return
	}
	if cfg.Backends == nil {
		cfg.Backends = append([]evaluation.Backend(nil), h.deps.DefaultBackends...)
	}

	handle, err := h.deps.Runs.Run(c.Request.Context(), cfg)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondAccepted(c, h.deps.Runs.Snapshot(), &server.Meta{RunID: handle.RunID()})
}

func (h *Handler) currentRun(c *gin.Context) {
	snap := h.deps.Runs.Snapshot()
	server.RespondOKWithMeta(c, snap, &server.Meta{RunID: snap.RunID})
}

func (h *Handler) cancelRun(c *gin.Context) {
	h.deps.Runs.Cancel()
	snap := h.deps.Runs.Snapshot()
	server.RespondOKWithMeta(c, snap, &server.Meta{RunID: snap.RunID})
}

func (h *Handler) resetRun(c *gin.Context) {
	h.deps.Runs.Reset()
	server.RespondOK(c, h.deps.Runs.Snapshot())
}

func (h *Handler) runEvents(c *gin.Context) {
	updates, unsubscribe := h.deps.Runs.Subscribe()
	defer unsubscribe()

	sse.Serve(c.Writer, c.Request, SnapshotEvent, updates,
		sse.WithClientID(c.GetHeader(middleware.RequestIDHeader)),
		sse.WithKeepAlive(h.deps.KeepAlive),
		sse.WithLogger(h.log),
	)
}

func (h *Handler) runMeans(c *gin.Context) {
	snap := h.deps.Runs.Snapshot()
	server.RespondOKWithMeta(c, snap.Means(), &server.Meta{RunID: snap.RunID, Total: snap.Succeeded()})
}

func (h *Handler) runPlot(c *gin.Context) {
	backend, err := evaluation.ParseBackend(c.Param("backend"))
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("backend", err.Error()))
		return
	}
	res, ok := h.deps.Runs.Snapshot().Results[backend]
	if !ok || len(res.Plot) == 0 {
		server.RespondWithError(c, apperrors.NotFound("plot", string(backend)))
		return
	}
	c.Data(http.StatusOK, "image/png", res.Plot)
}
