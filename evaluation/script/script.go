// Package script implements evaluation.Evaluator by spawning the
// evaluate.py analysis script once per call.
//
// The request is written to the script's stdin as JSON and the reply is read
// from stdout. evaluate.py reports its own errors inside the reply body and
// exits 0, so a non-zero exit means the interpreter itself failed.
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Jeffail/gabs/v2"

	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation"
	"github.com/souadELmaazouzi/audio-processing-and-ui/process"
)

// Name is the transport name reported in logs and spans.
const Name = "script"

// Config configures the script evaluator.
type Config struct {
	// Python is the interpreter binary.
	Python string
	// Script is the path to evaluate.py.
	Script string
	// DataRoot is passed to the script as the dataset root.
	DataRoot string
	// Dir is the working directory; defaults to the script's directory.
	Dir string
}

// Evaluator runs evaluate.py through a process.Runner.
type Evaluator struct {
	cfg    Config
	runner *process.Runner
}

// New creates a script evaluator.
func New(cfg Config, runner *process.Runner) *Evaluator {
	if cfg.Python == "" {
		cfg.Python = "python3"
	}
	if cfg.Dir == "" && cfg.Script != "" {
		cfg.Dir = filepath.Dir(cfg.Script)
	}
	return &Evaluator{cfg: cfg, runner: runner}
}

// stdinPayload is the request shape evaluate.py reads.
type stdinPayload struct {
	ASRBackend     string `json:"asrBackend"`
	DataRoot       string `json:"dataRoot"`
	EQMode         string `json:"eqMode"`
	DoEQ           bool   `json:"doEq"`
	ASROnCondition string `json:"asrOnCondition"`
}

func (e *Evaluator) Name() string { return Name }

// IsAvailable reports whether the interpreter resolves and the script exists.
func (e *Evaluator) IsAvailable(_ context.Context) bool {
	if !e.runner.Available(e.cfg.Python) {
		return false
	}
	info, err := os.Stat(e.cfg.Script)
	return err == nil && !info.IsDir()
}

// Evaluate runs one evaluation call.
func (e *Evaluator) Evaluate(ctx context.Context, req evaluation.Request) (*gabs.Container, error) {
	payload := stdinPayload{
		ASRBackend:     string(req.Backend),
		DataRoot:       e.cfg.DataRoot,
		EQMode:         string(req.EQMode),
		DoEQ:           req.ApplyEQ,
		ASROnCondition: string(req.Condition),
	}

	result, err := e.runner.RunJSON(ctx, process.Command{
		Binary: e.cfg.Python,
		Args:   []string{e.cfg.Script},
		Dir:    e.cfg.Dir,
	}, payload)
	if err != nil {
		if errors.Is(err, process.ErrKilled) || ctx.Err() != nil {
			return nil, err
		}
		var stderr []byte
		if result != nil {
			stderr = result.Stderr
		}
		return nil, evaluation.TransportFailure(req.Backend, describe(e.cfg.Script, result, err), string(stderr))
	}
	return evaluation.DecodeReply(req.Backend, result.Stdout, result.Stderr)
}

func describe(script string, result *process.Result, err error) error {
	name := filepath.Base(script)
	if result == nil || result.ExitCode < 0 {
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	return fmt.Errorf("%s exited with code %d: %w", name, result.ExitCode, err)
}
