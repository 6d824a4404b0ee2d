package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/souadELmaazouzi/audio-processing-and-ui/analysis"
	"github.com/souadELmaazouzi/audio-processing-and-ui/archive"
	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation"
	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
	"github.com/souadELmaazouzi/audio-processing-and-ui/orchestrator"
	"github.com/souadELmaazouzi/audio-processing-and-ui/process"
)

// Runs is the part of *orchestrator.Orchestrator the handlers drive.
type Runs interface {
	Run(ctx context.Context, cfg orchestrator.Configuration) (*orchestrator.Handle, error)
	Snapshot() orchestrator.Snapshot
	Subscribe() (<-chan orchestrator.Snapshot, func())
	Cancel()
	Reset()
}

// Analyzer runs single-utterance analyses. *analysis.Analyzer satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
}

// Archive reads archived runs. *archive.Store satisfies it.
type Archive interface {
	List(ctx context.Context) ([]archive.Entry, error)
	Get(ctx context.Context, runID string) (*orchestrator.Snapshot, error)
	Plot(ctx context.Context, runID string, backend evaluation.Backend) ([]byte, error)
}

// Deps are the collaborators of a Handler.
type Deps struct {
	Runs     Runs
	Analyzer Analyzer
	// Archive is nil when archiving is disabled.
	Archive Archive
	// Runner executes ffmpeg for dataset repairs.
	Runner   *process.Runner
	DataRoot string
	// DefaultBackends are used when a run request names none.
	DefaultBackends []evaluation.Backend
	// KeepAlive is the event stream keep-alive interval; zero uses the
	// sse package default.
	KeepAlive time.Duration
	Logger    *logger.Logger
}

// Handler serves the /api routes.
type Handler struct {
	deps Deps
	log  *logger.Logger
}

// New creates a Handler.
func New(deps Deps) *Handler {
	if len(deps.DefaultBackends) == 0 {
		deps.DefaultBackends = evaluation.AllBackends()
	}
	if deps.Runner == nil {
		deps.Runner = process.NewRunner(process.Config{})
	}
	if deps.Logger == nil {
		return &Handler{deps: deps, log: logger.Get("api")}
	}
	return &Handler{deps: deps, log: deps.Logger.WithComponent("api")}
}

// Register mounts every route under /api on r.
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/api")

	g.GET("/utterances", h.listUtterances)
	g.GET("/utterances/:id", h.getUtterance)
	g.GET("/eq-presets", h.listPresets)
	g.POST("/analyze", h.analyze)

	runs := g.Group("/runs")
	runs.POST("", h.startRun)
	runs.GET("/current", h.currentRun)
	runs.DELETE("/current", h.cancelRun)
	runs.POST("/current/reset", h.resetRun)
	runs.GET("/current/events", h.runEvents)
	runs.GET("/current/means", h.runMeans)
	runs.GET("/current/plots/:backend", h.runPlot)

	g.GET("/archive", h.listArchive)
	g.GET("/archive/:id", h.getArchived)
	g.GET("/archive/:id/plots/:backend", h.getArchivedPlot)

	g.GET("/dataset/repair", h.scanDataset)
	g.POST("/dataset/repair", h.repairDataset)
}
