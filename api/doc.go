// Package api exposes the dashboard operations over HTTP.
//
// Handlers are registered on a gin router under /api and answer with the
// server package's envelopes: {data, meta} on success and
// {error:{code,message,retryable,details}} on failure. Run progress is
// streamed as Server-Sent Events from /api/runs/current/events.
package api
