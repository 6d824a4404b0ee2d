package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout)
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
	err = New(ErrCodeNotFound, "missing", http.StatusNotFound)
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_NotFound(t *testing.T) {
	err := NotFound("utterance", "utt_007")
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected 404, got %d", err.HTTPStatus)
	}
	if err.Details["resource"] != "utterance" {
		t.Errorf("expected resource=utterance, got %v", err.Details["resource"])
	}
	if err.Details["id"] != "utt_007" {
		t.Errorf("expected id=utt_007, got %v", err.Details["id"])
	}
}

func TestAppError_NotFound_EmptyID(t *testing.T) {
	err := NotFound("metadata file", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
}

func TestAppError_MalformedResponse(t *testing.T) {
	err := MalformedResponse("evaluate.py", "<html>")
	if err.Code != ErrCodeMalformedResponse {
		t.Fatalf("expected MALFORMED_RESPONSE, got %s", err.Code)
	}
	if err.Details["raw"] != "<html>" {
		t.Errorf("expected raw payload in details, got %v", err.Details["raw"])
	}
	if err.Retryable {
		t.Error("malformed responses should not be retryable")
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	root := fmt.Errorf("exit status 1")
	err := ExternalServiceError("evaluate.py", root)
	if !stderrors.Is(err, root) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "exit status 1") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := Validation("bad request").
		WithDetails(map[string]any{"a": 1}).
		WithDetail("b", 2)
	if err.Details["a"] != 1 || err.Details["b"] != 2 {
		t.Errorf("expected merged details, got %v", err.Details)
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"ServiceUnavailable", ServiceUnavailable("sidecar"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable, true},
		{"Timeout", Timeout("evaluation"), ErrCodeTimeout, http.StatusGatewayTimeout, true},
		{"Canceled", Canceled("evaluation"), ErrCodeCanceled, 499, false},
		{"Conflict", Conflict("run in progress"), ErrCodeConflict, http.StatusConflict, false},
		{"InvalidInput", InvalidInput("eqMode", "unknown preset"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"MissingField", MissingField("uttId"), ErrCodeMissingField, http.StatusBadRequest, false},
		{"Internal", Internal(nil), ErrCodeInternal, http.StatusInternalServerError, false},
		{"ExternalService", ExternalServiceError("analyze.py", nil), ErrCodeExternalService, http.StatusBadGateway, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.HTTPStatus != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.HTTPStatus)
			}
			if tt.err.Retryable != tt.retryable {
				t.Errorf("expected retryable=%v, got %v", tt.retryable, tt.err.Retryable)
			}
		})
	}
}

func TestAppError_ToResponse(t *testing.T) {
	resp := InvalidInput("backend", "unknown backend").ToResponse()
	if resp.Error.Code != ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", resp.Error.Code)
	}
	if resp.Error.Details["field"] != "backend" {
		t.Errorf("expected field=backend, got %v", resp.Error.Details["field"])
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NotFound("run", "r1"))
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to unwrap")
	}
	if appErr.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", appErr.Code)
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("plain error should not be an AppError")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}

	orig := NotFound("run", "1")
	if Wrap(orig) != orig {
		t.Error("Wrap should return the original AppError unchanged")
	}
	if got := Wrap(fmt.Errorf("ctx: %w", orig)); got.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", got.Code)
	}

	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if got.Cause != plain {
		t.Error("expected cause to be the original error")
	}
}
