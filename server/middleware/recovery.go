package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "github.com/souadELmaazouzi/audio-processing-and-ui/errors"
	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
)

// Recovery returns middleware that recovers from panics, logs the stack and
// answers with an INTERNAL_ERROR envelope.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.WithContext(r.Context()).Error("Panic recovered", map[string]interface{}{
					"error":  fmt.Sprintf("%v", rec),
					"stack":  string(debug.Stack()),
					"path":   r.URL.Path,
					"method": r.Method,
				})
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				resp := apperrors.New(apperrors.ErrCodeInternal, "Internal server error", http.StatusInternalServerError).ToResponse()
				_ = json.NewEncoder(w).Encode(resp)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
