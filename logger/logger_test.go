package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newJSONLogger(buf *bytes.Buffer) *Logger {
	return NewWithWriter(&Config{Level: "debug", Format: FormatJSON}, "asrdash", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var m map[string]any
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("asrdash")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "asrdash" {
		t.Errorf("expected service 'asrdash', got %q", l.service)
	}
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf)

	l.WithComponent("orchestrator").Info("backend settled", Fields(FieldBackend, "vosk", "rows", 20))

	m := decodeLine(t, &buf)
	if m["message"] != "backend settled" {
		t.Errorf("expected message, got %v", m["message"])
	}
	if m[FieldComponent] != "orchestrator" {
		t.Errorf("expected component=orchestrator, got %v", m[FieldComponent])
	}
	if m[FieldBackend] != "vosk" {
		t.Errorf("expected backend=vosk, got %v", m[FieldBackend])
	}
	if m["service"] != "asrdash" {
		t.Errorf("expected service=asrdash, got %v", m["service"])
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf)

	ctx := ContextWithRunID(ContextWithRequestID(context.Background(), "req-1"), "run-9")
	l.WithContext(ctx).Warn("late settlement dropped")

	m := decodeLine(t, &buf)
	if m[FieldRequestID] != "req-1" {
		t.Errorf("expected request_id=req-1, got %v", m[FieldRequestID])
	}
	if m[FieldRunID] != "run-9" {
		t.Errorf("expected run_id=run-9, got %v", m[FieldRunID])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	newJSONLogger(&buf).WithError(errors.New("boom")).Error("spawn failed")

	m := decodeLine(t, &buf)
	if m["error"] != "boom" {
		t.Errorf("expected error=boom, got %v", m["error"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "warn", Format: FormatJSON}, "asrdash", &buf)
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn level, got %q", buf.String())
	}
	l.Warn("shown")
	if buf.Len() == 0 {
		t.Error("expected warn to be written")
	}
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, "asrdash", &buf)
	l.Info("ready")
	out := buf.String()
	if !strings.Contains(out, "[ASR][INF]") {
		t.Errorf("expected service and level tag, got %q", out)
	}
	if !strings.Contains(out, "ready") {
		t.Errorf("expected message, got %q", out)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stdout" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp to be enabled")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "debug", Format: "json", Output: "stderr"}, false},
		{"pretty", Config{Level: "info", Format: "pretty", Output: "stdout"}, false},
		{"bad level", Config{Level: "loud", Format: "json", Output: "stdout"}, true},
		{"bad format", Config{Level: "info", Format: "xml", Output: "stdout"}, true},
		{"bad output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetCachesPerComponent(t *testing.T) {
	prev := globalLogger
	defer func() {
		globalLogger = prev
		components.Clear()
	}()

	var buf bytes.Buffer
	globalLogger = newJSONLogger(&buf)
	components.Clear()

	l := Get("archive")
	if Get("archive") != l {
		t.Fatal("expected the cached component logger")
	}
	l.Info("run archived")
	if m := decodeLine(t, &buf); m[FieldComponent] != "archive" {
		t.Errorf("expected component=archive, got %v", m[FieldComponent])
	}

	Init(Config{Level: "info", Format: FormatJSON, Output: "stderr"}, "asrdash")
	if Get("archive") == l {
		t.Fatal("expected Init to drop cached component loggers")
	}
}

func TestFieldsHelpers(t *testing.T) {
	f := Fields("a", 1, "b")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("expected odd trailing key to be dropped, got %v", f)
	}

	ef := ErrorFields("evaluate", errors.New("x"))
	if ef[FieldOperation] != "evaluate" || ef[FieldError] != "x" {
		t.Errorf("unexpected error fields %v", ef)
	}

	df := DurationFields("evaluate", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("expected duration_ms=1500, got %v", df[FieldDuration])
	}
}
