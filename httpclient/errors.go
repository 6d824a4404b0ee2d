package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies client errors.
type ErrorCode int

const (
	// ErrCodeTimeout: the request or its body read timed out.
	ErrCodeTimeout ErrorCode = iota
	// ErrCodeConnection: refused, reset, DNS or another network failure.
	ErrCodeConnection
	// ErrCodeCanceled: the caller's context ended the request.
	ErrCodeCanceled
	// ErrCodeRequest: the request could not be built.
	ErrCodeRequest
	// ErrCodeNotFound: 404.
	ErrCodeNotFound
	// ErrCodeClient: any other 4xx.
	ErrCodeClient
	// ErrCodeServer: 5xx.
	ErrCodeServer
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeCanceled:
		return "canceled"
	case ErrCodeRequest:
		return "request"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeClient:
		return "client"
	case ErrCodeServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is a classified client error.
type Error struct {
	// StatusCode is 0 for errors raised before a response arrived.
	StatusCode int
	Code       ErrorCode
	Message    string
	// Body is the response body of a status error.
	Body []byte
	Err  error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code ErrorCode, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Err: err}
}

// ClassifyStatusCode returns nil for 2xx and a status *Error otherwise.
func ClassifyStatusCode(statusCode int, body []byte) *Error {
	code := ErrCodeServer
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusNotFound:
		code = ErrCodeNotFound
	case statusCode >= 400 && statusCode < 500:
		code = ErrCodeClient
	}
	return &Error{
		StatusCode: statusCode,
		Code:       code,
		Message:    fmt.Sprintf("HTTP %d", statusCode),
		Body:       body,
	}
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func hasCode(err error, code ErrorCode) bool {
	e, ok := AsError(err)
	return ok && e.Code == code
}

// IsTimeout reports whether err is a client timeout.
func IsTimeout(err error) bool { return hasCode(err, ErrCodeTimeout) }

// IsConnection reports whether err is a network failure.
func IsConnection(err error) bool { return hasCode(err, ErrCodeConnection) }

// IsCanceled reports whether the caller's context ended the request.
func IsCanceled(err error) bool { return hasCode(err, ErrCodeCanceled) }

// IsStatus reports whether err came from a non-2xx response.
func IsStatus(err error) bool {
	e, ok := AsError(err)
	return ok && e.StatusCode > 0
}
