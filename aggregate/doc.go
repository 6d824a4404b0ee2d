// Package aggregate normalizes one backend's evaluation reply into a fixed
// RunResult shape and computes the display means shown next to it.
//
// Everything here is pure: Aggregate never fails and never panics, whatever
// the reply contains. Missing or wrongly-typed fields fall back to empty
// defaults, and numeric cells are kept as coerced Values so a row with a
// blank or non-numeric cell is excluded from means instead of counting as 0.
package aggregate
