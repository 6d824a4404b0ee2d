package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
)

// DefaultKeepAlive is the interval between keep-alive comments. It stays
// under common proxy idle timeouts (60s).
const DefaultKeepAlive = 30 * time.Second

type options struct {
	keepAlive time.Duration
	clientID  string
	log       *logger.Logger
}

// Option configures Serve.
type Option func(*options)

// WithKeepAlive overrides DefaultKeepAlive.
func WithKeepAlive(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.keepAlive = d
		}
	}
}

// WithClientID is echoed in the connected event and in logs.
func WithClientID(id string) Option {
	return func(o *options) { o.clientID = id }
}

// WithLogger sets the logger used for connection events.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// Serve streams every value received from events as an SSE event named
// event, JSON-encoded. It returns when the client disconnects, the request
// context ends or events is closed.
func Serve[T any](w http.ResponseWriter, r *http.Request, event string, events <-chan T, opts ...Option) {
	o := options{keepAlive: DefaultKeepAlive, log: logger.Get("sse")}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log.WithContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming not supported", logger.Fields("client_id", o.clientID))
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Streams outlive the server's WriteTimeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("could not clear write deadline", logger.Fields("client_id", o.clientID, logger.FieldError, err.Error()))
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	_ = writeJSON(w, EventTypeConnected, ConnectedEvent{ClientID: o.clientID})
	flusher.Flush()
	log.Debug("client connected", logger.Fields("client_id", o.clientID, "remote_addr", r.RemoteAddr))

	keepAlive := time.NewTicker(o.keepAlive)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug("client disconnected", logger.Fields("client_id", o.clientID, "reason", ctx.Err().Error()))
			return

		case v, ok := <-events:
			if !ok {
				return
			}
			if err := writeJSON(w, event, v); err != nil {
				log.Warn("event dropped", logger.Fields("client_id", o.clientID, logger.FieldError, err.Error()))
				_ = writeEvent(w, EventTypeError, []byte(fmt.Sprintf("%q", err.Error())))
			}
			flusher.Flush()

		case <-keepAlive.C:
			_, _ = fmt.Fprintf(w, ": %s %d\n\n", EventTypeKeepAlive, time.Now().Unix())
			flusher.Flush()
		}
	}
}

func writeJSON(w io.Writer, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return writeEvent(w, event, data)
}

// writeEvent writes one event. data must not contain newlines; encoding/json
// output never does.
func writeEvent(w io.Writer, event string, data []byte) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
