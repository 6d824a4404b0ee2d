// Package archive keeps finished evaluation runs on the local filesystem.
//
// Each completed run is written under <base_path>/<run id>/ as run.json
// (the final snapshot, plots stripped) plus one <backend>.png per backend
// that returned a plot. Register Store.Hook with orchestrator.WithFinishHook
// to archive runs as they complete.
package archive
