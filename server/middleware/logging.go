package middleware

import (
	"net/http"
	"time"

	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
)

var quietPaths = map[string]bool{
	"/health": true,
	"/info":   true,
}

// RequestLogger returns middleware that logs every request with method,
// path, status, duration and response size. Event streams are logged once
// when they close. Health-check paths are skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			fields := map[string]interface{}{
				"method":             r.Method,
				"path":               r.URL.Path,
				"bytes":              rec.bytes,
				logger.FieldStatus:   rec.Status(),
				logger.FieldDuration: duration.Milliseconds(),
			}
			if id := r.Header.Get(RequestIDHeader); id != "" {
				fields[logger.FieldRequestID] = id
			}
			if rec.streamed && rec.Status() < 400 {
				log.Info("Stream closed", fields)
				return
			}
			logByStatus(log, fields, rec.Status())
		})
	}
}

// logByStatus logs request fields at the level matching the status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
