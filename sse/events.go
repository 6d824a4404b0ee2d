package sse

// Event names written by Serve in addition to the caller's own.
const (
	// EventTypeConnected is the first event on every stream.
	EventTypeConnected = "connected"

	// EventTypeKeepAlive tags keep-alive comments.
	EventTypeKeepAlive = "keepalive"

	// EventTypeError is sent when a value cannot be encoded.
	EventTypeError = "error"
)

// ConnectedEvent is the payload of the connected event.
type ConnectedEvent struct {
	ClientID string `json:"clientId,omitempty"`
}
