package analysis

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Jeffail/gabs/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/souadELmaazouzi/audio-processing-and-ui/dataset"
	apperrors "github.com/souadELmaazouzi/audio-processing-and-ui/errors"
	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation"
	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
	"github.com/souadELmaazouzi/audio-processing-and-ui/observability"
	"github.com/souadELmaazouzi/audio-processing-and-ui/process"
	"github.com/souadELmaazouzi/audio-processing-and-ui/validation"
)

const serviceName = "analysis script"

// Request asks for one utterance across all recording conditions.
type Request struct {
	UtteranceID         string               `json:"utteranceId" validate:"required,max=128"`
	EQMode              evaluation.EQMode    `json:"eqMode" validate:"required,oneof=none rock pop jazz classic"`
	ApplyEQ             bool                 `json:"applyEq"`
	Transcribe          bool                 `json:"transcribe"`
	TranscribeCondition evaluation.Condition `json:"transcribeCondition" validate:"omitempty,oneof=speaker_0m speaker_3m human"`
}

// Clip is one condition's processed audio.
type Clip struct {
	// Audio is the base64 WAV as returned by the script.
	Audio string     `json:"audio"`
	Info  *AudioInfo `json:"info,omitempty"`
	// InfoError explains why Info is missing for a non-empty clip.
	InfoError string `json:"infoError,omitempty"`
}

// Result is the analysis of one utterance.
type Result struct {
	AudioHuman     Clip   `json:"audioHuman"`
	Audio0m        Clip   `json:"audio0m"`
	Audio3m        Clip   `json:"audio3m"`
	ReferenceText  string `json:"referenceText"`
	HypothesisText string `json:"hypothesisText"`
	Measures       string `json:"measures"`
	Logs           string `json:"logs"`
}

// Config configures the Analyzer.
type Config struct {
	Python   string
	Script   string
	DataRoot string
}

// Analyzer runs analyze.py.
type Analyzer struct {
	cfg     Config
	runner  *process.Runner
	log     *logger.Logger
	metrics *observability.Metrics
}

// NewAnalyzer creates an Analyzer. metrics may be nil.
func NewAnalyzer(cfg Config, runner *process.Runner, log *logger.Logger, metrics *observability.Metrics) *Analyzer {
	if cfg.Python == "" {
		cfg.Python = "python3"
	}
	a := &Analyzer{cfg: cfg, runner: runner, metrics: metrics}
	if log == nil {
		a.log = logger.Get("analysis")
	} else {
		a.log = log.WithComponent("analysis")
	}
	return a
}

// IsAvailable reports whether the interpreter and script are present.
func (a *Analyzer) IsAvailable() bool {
	if !a.runner.Available(a.cfg.Python) {
		return false
	}
	info, err := os.Stat(a.cfg.Script)
	return err == nil && !info.IsDir()
}

type stdinPayload struct {
	UttID           string `json:"uttId"`
	EQMode          string `json:"eqMode"`
	DoEQ            bool   `json:"doEq"`
	TranscribeOn    bool   `json:"transcribeOn"`
	TranscriberCond string `json:"transcriberCond"`
	DataRoot        string `json:"dataRoot"`
}

// Analyze runs the analysis for req. Ids missing from a readable catalog
// are rejected without spawning the script; when metadata.csv cannot be
// read the script reports the problem itself.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (res *Result, err error) {
	if req.TranscribeCondition == "" {
		req.TranscribeCondition = evaluation.ConditionHuman
	}
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanAnalyze,
		attribute.String(observability.AttrUttID, req.UtteranceID),
		attribute.String(observability.AttrEQMode, string(req.EQMode)),
	)
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
			if ctx.Err() != nil {
				outcome = "canceled"
			}
		}
		span.SetAttributes(attribute.String(observability.AttrOutcome, outcome))
		observability.EndSpan(span, err)
		a.metrics.RecordAnalysis(context.WithoutCancel(ctx), outcome)
		a.log.WithContext(ctx).Info("analysis finished", logger.Fields(
			logger.FieldUttID, req.UtteranceID,
			logger.FieldStatus, outcome,
			logger.FieldDuration, time.Since(start).Milliseconds(),
		))
	}()

	cat, catErr := dataset.Load(a.cfg.DataRoot)
	if catErr == nil && !cat.Has(req.UtteranceID) {
		return nil, apperrors.NotFound("utterance", req.UtteranceID)
	}

	result, err := a.runner.RunJSON(ctx, process.Command{
		Binary: a.cfg.Python,
		Args:   []string{a.cfg.Script},
		Dir:    filepath.Dir(a.cfg.Script),
	}, stdinPayload{
		UttID:           req.UtteranceID,
		EQMode:          string(req.EQMode),
		DoEQ:            req.ApplyEQ,
		TranscribeOn:    req.Transcribe,
		TranscriberCond: string(req.TranscribeCondition),
		DataRoot:        a.cfg.DataRoot,
	})
	if err != nil {
		if errors.Is(err, process.ErrKilled) || ctx.Err() != nil {
			return nil, apperrors.Canceled("analysis").WithCause(err)
		}
		appErr := apperrors.ExternalServiceError(serviceName, err)
		if result != nil && len(result.Stderr) > 0 {
			appErr = appErr.WithDetail("stderr", evaluation.Truncate(strings.TrimSpace(string(result.Stderr)), evaluation.MaxRawPayload))
		}
		return nil, appErr
	}

	parsed, err := evaluation.ParseObject(result.Stdout)
	if err != nil {
		return nil, apperrors.MalformedResponse(serviceName, evaluation.Truncate(string(result.Stdout), evaluation.MaxRawPayload)).WithCause(err)
	}
	if msg, ok := evaluation.ErrorField(parsed); ok {
		return nil, classify(req.UtteranceID, msg, evaluation.Diagnostics(parsed, result.Stderr))
	}
	res = decodeResult(parsed)
	if res.ReferenceText == "" && cat != nil {
		if ref, ok := cat.Reference(req.UtteranceID); ok {
			res.ReferenceText = ref
		}
	}
	return res, nil
}

// classify maps an error reported by analyze.py to an AppError.
func classify(uttID, msg, logs string) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case strings.HasPrefix(msg, "No audio found for utt_id="):
		appErr = apperrors.NotFound("utterance", uttID)
	case strings.HasPrefix(msg, "Metadata file not found"):
		appErr = apperrors.NotFound("metadata file", "")
	default:
		appErr = apperrors.ExternalServiceError(serviceName, errors.New(msg))
	}
	appErr = appErr.WithDetail("reason", msg)
	if logs != "" {
		appErr = appErr.WithDetail("logs", evaluation.Truncate(logs, evaluation.MaxRawPayload))
	}
	return appErr
}

func decodeResult(c *gabs.Container) *Result {
	str := func(key string) string {
		s, _ := c.Path(key).Data().(string)
		return s
	}
	return &Result{
		AudioHuman:     clip(str("audioHuman")),
		Audio0m:        clip(str("audio0m")),
		Audio3m:        clip(str("audio3m")),
		ReferenceText:  str("refText"),
		HypothesisText: str("hypText"),
		Measures:       str("measures"),
		Logs:           str("logs"),
	}
}

func clip(encoded string) Clip {
	c := Clip{Audio: encoded}
	if encoded == "" {
		return c
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		c.InfoError = "invalid base64 audio"
		return c
	}
	info, err := Inspect(data)
	if err != nil {
		c.InfoError = err.Error()
		return c
	}
	c.Info = &info
	return c
}
