// Package version describes the running asrdash binary.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/souadELmaazouzi/audio-processing-and-ui/version.Version=1.0.0" ./cmd/asrdash
//
// Empty values fall back to the VCS stamps in debug.ReadBuildInfo. The
// report also lists the linked versions of the reply parser, router, WAV
// decoder and telemetry libraries.
package version
