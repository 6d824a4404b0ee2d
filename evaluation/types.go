package evaluation

import (
	"fmt"
	"slices"
)

// Backend is an ASR engine choice.
type Backend string

const (
	BackendWhisper  Backend = "whisper"
	BackendWav2Vec2 Backend = "wav2vec2"
	BackendVosk     Backend = "vosk"
)

// AllBackends returns every known backend in display order.
func AllBackends() []Backend {
	return []Backend{BackendWhisper, BackendWav2Vec2, BackendVosk}
}

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	b := Backend(s)
	if !slices.Contains(AllBackends(), b) {
		return "", fmt.Errorf("unknown backend %q", s)
	}
	return b, nil
}

// EQMode is an equalizer preset applied before transcription.
type EQMode string

const (
	EQNone    EQMode = "none"
	EQRock    EQMode = "rock"
	EQPop     EQMode = "pop"
	EQJazz    EQMode = "jazz"
	EQClassic EQMode = "classic"
)

// AllEQModes returns every preset in display order.
func AllEQModes() []EQMode {
	return []EQMode{EQNone, EQRock, EQPop, EQJazz, EQClassic}
}

// Condition is a recording scenario.
type Condition string

const (
	ConditionSpeaker0m Condition = "speaker_0m"
	ConditionSpeaker3m Condition = "speaker_3m"
	ConditionHuman     Condition = "human"
)

// AllConditions returns every recording condition in display order.
func AllConditions() []Condition {
	return []Condition{ConditionSpeaker0m, ConditionSpeaker3m, ConditionHuman}
}

// Request is the payload of one backend evaluation call.
type Request struct {
	EQMode    EQMode    `json:"eqMode" validate:"required,oneof=none rock pop jazz classic"`
	ApplyEQ   bool      `json:"applyEq"`
	Condition Condition `json:"condition" validate:"required,oneof=speaker_0m speaker_3m human"`
	Backend   Backend   `json:"backend" validate:"required,oneof=whisper wav2vec2 vosk"`
}
