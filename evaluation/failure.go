package evaluation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// FailureKind classifies why a backend call failed.
type FailureKind string

const (
	// FailureTransport: the service was unreachable, could not be spawned,
	// exited abnormally or answered with a non-success status.
	FailureTransport FailureKind = "transport"
	// FailureLogical: the service answered but its body carries an error.
	FailureLogical FailureKind = "logical"
	// FailureMalformed: the body could not be decoded as a reply object.
	FailureMalformed FailureKind = "malformed"
	// FailureTimeout: the call exceeded its configured time limit.
	FailureTimeout FailureKind = "timeout"
)

// MaxRawPayload bounds how much of an undecodable body is kept for diagnosis.
const MaxRawPayload = 2048

// Failure is the error returned by evaluators for a failed backend call.
type Failure struct {
	Kind    FailureKind
	Backend Backend
	// Message is the service or transport error without the backend tag.
	Message string
	// Diagnostics holds logs, stderr or the truncated raw body.
	Diagnostics string
	Cause       error
}

// Error returns the backend-tagged message, "[<backend>] <message>".
func (f *Failure) Error() string {
	return fmt.Sprintf("[%s] %s", f.Backend, f.Message)
}

func (f *Failure) Unwrap() error { return f.Cause }

// AsFailure extracts a *Failure from err's chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// TransportFailure wraps a transport-level error for backend.
func TransportFailure(backend Backend, cause error, diagnostics string) *Failure {
	return &Failure{
		Kind:        FailureTransport,
		Backend:     backend,
		Message:     cause.Error(),
		Diagnostics: strings.TrimSpace(diagnostics),
		Cause:       cause,
	}
}

// Truncate shortens s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "... (truncated)"
}
