// Package sse writes Server-Sent Events streams.
//
// Serve drains a channel of values onto an HTTP response, one named event
// per value, with periodic keep-alive comments so proxies do not drop idle
// connections. Fan-out is left to the producer: the orchestrator hands each
// subscriber its own channel.
//
//	updates, unsubscribe := orch.Subscribe()
//	defer unsubscribe()
//	sse.Serve(w, r, "snapshot", updates)
package sse
