// Package errors provides the structured error type shared by the dashboard
// service. An AppError carries a machine-readable code, an HTTP status and a
// retryable flag so handlers can answer clients without inspecting causes.
package errors
