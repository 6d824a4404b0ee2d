package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Set at link time.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// trackedModules are reported in Build.Deps when linked in.
var trackedModules = []string{
	"github.com/Jeffail/gabs/v2",
	"github.com/gin-gonic/gin",
	"github.com/go-audio/wav",
	"go.opentelemetry.io/otel",
}

// Build describes the running binary.
type Build struct {
	Version   string            `json:"version"`
	Commit    string            `json:"commit,omitempty"`
	Dirty     bool              `json:"dirty"`
	BuiltAt   time.Time         `json:"builtAt,omitzero"`
	GoVersion string            `json:"goVersion,omitempty"`
	Deps      map[string]string `json:"deps,omitempty"`
}

// Current returns the build description, preferring link-time values over
// VCS stamps.
func Current() Build {
	b := Build{Version: Version, Commit: GitCommit}
	if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
		b.BuiltAt = t
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	b.GoVersion = info.GoVersion
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "" {
				b.Commit = s.Value
			}
		case "vcs.modified":
			b.Dirty = s.Value == "true"
		case "vcs.time":
			if b.BuiltAt.IsZero() {
				b.BuiltAt, _ = time.Parse(time.RFC3339, s.Value)
			}
		}
	}
	for _, dep := range info.Deps {
		for _, path := range trackedModules {
			if dep.Path == path {
				if b.Deps == nil {
					b.Deps = make(map[string]string)
				}
				b.Deps[path] = dep.Version
			}
		}
	}
	return b
}

// Short returns "<version>[-<commit7>][-dirty]", used as the service version.
func (b Build) Short() string {
	s := b.Version
	if b.Commit != "" {
		s += "-" + shortCommit(b.Commit)
	}
	if b.Dirty {
		s += "-dirty"
	}
	return s
}

// String is the --version output.
func (b Build) String() string {
	parts := []string{}
	if b.GoVersion != "" {
		parts = append(parts, b.GoVersion)
	}
	if !b.BuiltAt.IsZero() {
		parts = append(parts, "built "+b.BuiltAt.UTC().Format(time.RFC3339))
	}
	if len(parts) == 0 {
		return "asrdash " + b.Short()
	}
	return fmt.Sprintf("asrdash %s (%s)", b.Short(), strings.Join(parts, ", "))
}

func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	return c
}
