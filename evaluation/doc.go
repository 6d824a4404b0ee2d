// Package evaluation defines the contract for one backend evaluation call:
// the request shape, the Evaluator interface implemented by each transport,
// and the failure taxonomy used to report what went wrong.
//
// A call ends in one of three ways. It returns the decoded reply body, it
// returns a *Failure (transport, logical, malformed or timeout), or it
// returns an error wrapping the caller's context error because the call was
// canceled. Callers must treat the last case as "no outcome", not as a
// failure.
//
// Transports live in subpackages: script spawns evaluate.py, remote POSTs to
// an HTTP sidecar. Both share DecodeReply so the classification rules are
// identical regardless of transport.
package evaluation
