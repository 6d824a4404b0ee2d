package orchestrator

import (
	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation"
	"github.com/souadELmaazouzi/audio-processing-and-ui/validation"
)

// Configuration is the immutable input of one run.
type Configuration struct {
	EQMode    evaluation.EQMode    `json:"eqMode" validate:"required,oneof=none rock pop jazz classic"`
	ApplyEQ   bool                 `json:"applyEq"`
	Condition evaluation.Condition `json:"condition" validate:"required,oneof=speaker_0m speaker_3m human"`
	Backends  []evaluation.Backend `json:"backends" validate:"required,min=1,dive,oneof=whisper wav2vec2 vosk"`
}

// Normalize returns a copy with duplicate backends removed, keeping the
// order of first occurrence.
func (c Configuration) Normalize() Configuration {
	seen := make(map[evaluation.Backend]bool, len(c.Backends))
	backends := make([]evaluation.Backend, 0, len(c.Backends))
	for _, b := range c.Backends {
		if seen[b] {
			continue
		}
		seen[b] = true
		backends = append(backends, b)
	}
	c.Backends = backends
	return c
}

// Validate checks enum values and that at least one backend is configured.
func (c Configuration) Validate() error {
	return validation.Validate(c)
}

// Request builds the evaluation request for backend.
func (c Configuration) Request(backend evaluation.Backend) evaluation.Request {
	return evaluation.Request{
		EQMode:    c.EQMode,
		ApplyEQ:   c.ApplyEQ,
		Condition: c.Condition,
		Backend:   backend,
	}
}

func (c Configuration) clone() Configuration {
	c.Backends = append([]evaluation.Backend(nil), c.Backends...)
	return c
}
