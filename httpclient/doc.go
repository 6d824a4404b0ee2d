// Package httpclient is a small JSON-over-HTTP client for the sidecar
// services the dashboard talks to.
//
// Responses are read fully and classified: transport problems become
// connection or timeout errors, and non-2xx statuses become typed *Error
// values that still carry the response body.
//
//	c, err := httpclient.New(httpclient.Config{BaseURL: "http://localhost:8390"})
//	resp, err := c.Do(ctx, httpclient.Request{Method: http.MethodPost, Path: "/evaluate", Body: req})
//	if httpclient.IsTimeout(err) { ... }
package httpclient
