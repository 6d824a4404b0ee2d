// Package validation validates API requests and configuration values.
//
// Struct tag validation covers request bodies:
//
//	type startRunRequest struct {
//	    EQMode   string   `json:"eqMode" validate:"required,oneof=none rock pop jazz classic"`
//	    Backends []string `json:"backends" validate:"required,min=1,dive,oneof=whisper wav2vec2 vosk"`
//	}
//	err := validation.Validate(req)
//
// ValidateUUID covers identifiers that arrive as path parameters, such as
// archived run ids.
//
// Validate returns an *errors.AppError with code INVALID_INPUT and the
// failing fields under Details["fields"].
package validation
