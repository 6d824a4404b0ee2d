package version

import (
	"strings"
	"testing"
	"time"
)

func withLinkValues(t *testing.T, v, commit, built string) {
	t.Helper()
	prevV, prevC, prevB := Version, GitCommit, BuildTime
	Version, GitCommit, BuildTime = v, commit, built
	t.Cleanup(func() { Version, GitCommit, BuildTime = prevV, prevC, prevB })
}

func TestCurrent_LinkValues(t *testing.T) {
	withLinkValues(t, "1.4.0", "9f2c1e04b7d1", "2026-03-02T10:00:00Z")

	b := Current()
	if b.Version != "1.4.0" || b.Commit != "9f2c1e04b7d1" {
		t.Fatalf("unexpected build %+v", b)
	}
	if !b.BuiltAt.Equal(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected build time %v", b.BuiltAt)
	}
	if b.GoVersion == "" {
		t.Error("expected the Go version from build info")
	}
}

func TestBuild_Short(t *testing.T) {
	tests := []struct {
		name string
		b    Build
		want string
	}{
		{"dev", Build{Version: "dev"}, "dev"},
		{"commit", Build{Version: "1.4.0", Commit: "9f2c1e04b7d1"}, "1.4.0-9f2c1e0"},
		{"dirty", Build{Version: "1.4.0", Commit: "9f2c1e0", Dirty: true}, "1.4.0-9f2c1e0-dirty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.b.Short(); got != tt.want {
				t.Errorf("Short() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuild_String(t *testing.T) {
	b := Build{Version: "1.4.0", GoVersion: "go1.26.0", BuiltAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}
	if got, want := b.String(), "asrdash 1.4.0 (go1.26.0, built 2026-03-02T10:00:00Z)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := (Build{Version: "dev"}).String(); !strings.HasPrefix(got, "asrdash dev") {
		t.Errorf("unexpected bare version %q", got)
	}
}
