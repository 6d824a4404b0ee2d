package middleware

import "net/http"

// recorder tracks what a handler wrote for the request log.
type recorder struct {
	http.ResponseWriter
	status int
	bytes  int64
	// streamed is set once the handler flushes, as the run event stream does.
	streamed bool
}

func record(w http.ResponseWriter) *recorder {
	return &recorder{ResponseWriter: w}
}

func (rec *recorder) WriteHeader(code int) {
	if rec.status == 0 {
		rec.status = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *recorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += int64(n)
	return n, err
}

// Status is the first status written, or 200 when the handler wrote nothing.
func (rec *recorder) Status() int {
	if rec.status == 0 {
		return http.StatusOK
	}
	return rec.status
}

func (rec *recorder) Flush() {
	rec.streamed = true
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController, which
// the event stream uses to lift the write deadline.
func (rec *recorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}
