// Package server provides the dashboard's HTTP server: a Gin engine served
// over HTTP/1.1 and h2c, wrapped in the standard middleware stack.
//
// # Middleware
//
// Built-in middleware (server/middleware), applied around the whole engine:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request id generation and propagation into the context
//   - CORS: cross-origin headers for the browser UI
//   - BodySizeLimit: request body limit
//   - RequestLogger: one log line per request
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: component health aggregation
//   - /info: build and runtime information
package server
