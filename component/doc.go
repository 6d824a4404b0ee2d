// Package component defines the lifecycle interface shared by the
// dashboard's long-lived parts (HTTP server, orchestrator, run archive) and
// a Registry that starts them in order and stops them in reverse.
//
// # Interfaces
//
//   - Component: Name/Start/Stop/Health
//   - Describable: startup summary descriptions
//   - RouteProvider: registered HTTP routes for the startup summary
//
// Check adapts a plain check function (is the interpreter on PATH, does the
// dataset exist, is the sidecar up) into a Component so it shows up in
// /health next to everything else.
package component
