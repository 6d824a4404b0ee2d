package validation

import (
	"testing"

	"github.com/souadELmaazouzi/audio-processing-and-ui/errors"
)

type runRequest struct {
	EQMode    string   `json:"eqMode" validate:"required,oneof=none rock pop jazz classic"`
	Condition string   `json:"condition" validate:"required,oneof=speaker_0m speaker_3m human"`
	Backends  []string `json:"backends" validate:"required,min=1,dive,oneof=whisper wav2vec2 vosk"`
}

func fieldsOf(t *testing.T, err error) []FieldError {
	t.Helper()
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected *AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok {
		t.Fatalf("expected field details, got %T", appErr.Details["fields"])
	}
	return fields
}

func TestStructValidateValid(t *testing.T) {
	req := runRequest{EQMode: "rock", Condition: "human", Backends: []string{"whisper", "vosk"}}
	if err := Validate(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	tests := []struct {
		name      string
		req       runRequest
		wantField string
		wantMsg   string
	}{
		{"missing eq", runRequest{Condition: "human", Backends: []string{"vosk"}}, "eqMode", "is required"},
		{"bad eq", runRequest{EQMode: "metal", Condition: "human", Backends: []string{"vosk"}}, "eqMode", "must be one of: none rock pop jazz classic"},
		{"empty backends", runRequest{EQMode: "none", Condition: "human", Backends: []string{}}, "backends", "must contain at least 1 item(s)"},
		{"bad backend", runRequest{EQMode: "none", Condition: "human", Backends: []string{"vosk", "deepspeech"}}, "backends[1]", "must be one of: whisper wav2vec2 vosk"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := fieldsOf(t, Validate(tt.req))
			if len(fields) != 1 {
				t.Fatalf("expected 1 field error, got %v", fields)
			}
			if fields[0].Field != tt.wantField || fields[0].Message != tt.wantMsg {
				t.Fatalf("expected %s: %s, got %s: %s", tt.wantField, tt.wantMsg, fields[0].Field, fields[0].Message)
			}
		})
	}
}

func TestValidateUUID(t *testing.T) {
	if _, err := ValidateUUID("id", "0b6c7f0e-8f3e-4c43-9d0e-1c2f9a7b5e11"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := ValidateUUID("id", "")
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeMissingField {
		t.Fatalf("expected MISSING_FIELD, got %v", err)
	}
	_, err = ValidateUUID("id", "not-a-uuid")
	if appErr, ok := errors.AsAppError(err); !ok || appErr.Code != errors.ErrCodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}
