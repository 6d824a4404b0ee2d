package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{}
		cfg.ApplyDefaults()
		if cfg.Name != "asrdash" {
			t.Errorf("expected default name, got %q", cfg.Name)
		}
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected logging defaults, got %+v", cfg.Logging)
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr bool
		errMsg  string
	}{
		{"valid development", ServiceConfig{Name: "svc", Environment: "development"}, false, ""},
		{"valid production", ServiceConfig{Name: "svc", Environment: "production"}, false, ""},
		{"missing name", ServiceConfig{Environment: "production"}, true, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "lab"}, true, "config.environment must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAppConfigDefaults(t *testing.T) {
	var cfg AppConfig
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate, got %v", err)
	}
	if cfg.Evaluation.Transport != TransportScript {
		t.Errorf("expected script transport, got %q", cfg.Evaluation.Transport)
	}
	if cfg.Evaluation.Timeout != 30*time.Minute {
		t.Errorf("expected 30m timeout, got %s", cfg.Evaluation.Timeout)
	}
	if cfg.Scripts.Process.MaxConcurrent != 3 {
		t.Errorf("expected 3 concurrent scripts, got %d", cfg.Scripts.Process.MaxConcurrent)
	}
	if got := cfg.Scripts.EvaluatePath(); got != filepath.Join("scripts", "evaluate.py") {
		t.Errorf("unexpected evaluate path %q", got)
	}
	if got := cfg.Evaluation.DefaultBackends(); len(got) != 3 || got[0] != evaluation.BackendWhisper {
		t.Errorf("unexpected default backends %v", got)
	}
}

func TestAppConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		errMsg string
	}{
		{"bad transport", func(c *AppConfig) { c.Evaluation.Transport = "grpc" }, "evaluation.transport"},
		{"negative timeout", func(c *AppConfig) { c.Evaluation.Timeout = -time.Second }, "evaluation.timeout"},
		{"unknown backend", func(c *AppConfig) { c.Evaluation.Backends = []string{"whisper", "kaldi"} }, `unknown backend "kaldi"`},
		{"bad sidecar url", func(c *AppConfig) {
			c.Evaluation.Transport = TransportRemote
			c.Evaluation.Remote.URL = "localhost:8390"
		}, "evaluation.remote.url"},
		{"bad port", func(c *AppConfig) { c.Server.Port = -1 }, "server.port"},
		{"bad sample rate", func(c *AppConfig) { c.Telemetry.SampleRate = 3 }, "telemetry.sample_rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg AppConfig
			cfg.ApplyDefaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Fatalf("expected error containing %q, got %v", tt.errMsg, err)
			}
		})
	}
}

func TestScriptsConfigResolve(t *testing.T) {
	c := ScriptsConfig{Dir: "/opt/asr", Evaluate: "evaluate.py", Analyze: "/abs/analyze.py"}
	if got := c.EvaluatePath(); got != "/opt/asr/evaluate.py" {
		t.Errorf("expected joined path, got %q", got)
	}
	if got := c.AnalyzePath(); got != "/abs/analyze.py" {
		t.Errorf("expected absolute path untouched, got %q", got)
	}
}

const sampleYAML = `
name: asrdash
environment: staging
logging:
  level: debug
  format: json
server:
  port: 9090
dataset:
  root: /srv/dataset
scripts:
  python: /usr/bin/python3.11
  dir: /srv/scripts
  max_concurrent: 2
evaluation:
  transport: remote
  timeout: 10m
  backends: [whisper, vosk]
  remote:
    url: http://sidecar:8390
    max_concurrent: 6
archive:
  enabled: true
  base_path: /srv/runs
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigWithYAML(t *testing.T) {
	var cfg AppConfig
	if err := LoadConfig("asrdash", &cfg, WithConfigFile(writeConfig(t)), WithEnvFile("/nonexistent/.env")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	cfg.ApplyDefaults()

	if cfg.Environment != "staging" {
		t.Errorf("expected squashed service fields, got environment %q", cfg.Environment)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected json logging, got %q", cfg.Logging.Format)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Scripts.Process.MaxConcurrent != 2 {
		t.Errorf("expected scripts.max_concurrent=2, got %d", cfg.Scripts.Process.MaxConcurrent)
	}
	if cfg.Evaluation.Remote.MaxConcurrent != 6 {
		t.Errorf("expected evaluation.remote.max_concurrent=6, got %d", cfg.Evaluation.Remote.MaxConcurrent)
	}
	if cfg.Scripts.AnalyzePath() != "/srv/scripts/analyze.py" {
		t.Errorf("unexpected analyze path %q", cfg.Scripts.AnalyzePath())
	}
	if cfg.Evaluation.Timeout != 10*time.Minute {
		t.Errorf("expected 10m timeout, got %s", cfg.Evaluation.Timeout)
	}
	if len(cfg.Evaluation.Backends) != 2 || cfg.Evaluation.Remote.URL != "http://sidecar:8390" {
		t.Errorf("unexpected evaluation section %+v", cfg.Evaluation)
	}
	if !cfg.Archive.Enabled || cfg.Archive.BasePath != "/srv/runs" {
		t.Errorf("unexpected archive section %+v", cfg.Archive)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("EVALUATION_TIMEOUT", "45m")
	t.Setenv("SCRIPTS_MAX_CONCURRENT", "5")

	var cfg AppConfig
	if err := LoadConfig("asrdash", &cfg, WithConfigFile(writeConfig(t)), WithEnvFile("/nonexistent/.env")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Evaluation.Timeout != 45*time.Minute {
		t.Errorf("expected env override 45m, got %s", cfg.Evaluation.Timeout)
	}
	if cfg.Scripts.Process.MaxConcurrent != 5 {
		t.Errorf("expected env override 5, got %d", cfg.Scripts.Process.MaxConcurrent)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	configPath := writeConfig(t)
	fs := &fakeFS{
		t:     t,
		files: map[string]bool{configPath: true, "/app/.env": true},
		env:   map[string]string{"DATASET_ROOT": "/mnt/other"},
	}

	var cfg AppConfig
	err := LoadConfig("asrdash", &cfg, WithFileSystem(fs), WithConfigFile(configPath), WithEnvFile("/app/.env"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !fs.loaded {
		t.Error("expected env file to be loaded")
	}
	if cfg.Dataset.Root != "/mnt/other" {
		t.Errorf("expected .env to override dataset.root, got %q", cfg.Dataset.Root)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg AppConfig
	err := LoadConfig("asrdash", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing file error, got %v", err)
	}
}

func TestResolveFiles(t *testing.T) {
	t.Setenv(EnvConfigFile, "")
	fs := &fakeFS{t: t, files: map[string]bool{
		"./cmd/asrdash/config.yml": true,
		"./.env":                   true,
	}}
	resolver := &Resolver{FileSystem: fs}

	files := resolver.ResolveFiles("asrdash", LoaderConfig{})
	if files.ConfigFile != "./cmd/asrdash/config.yml" {
		t.Errorf("expected config file at ./cmd/asrdash/config.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./.env" {
		t.Errorf("expected env file ./.env, got %q", files.EnvFile)
	}

	t.Setenv(EnvConfigFile, "/etc/asrdash.yml")
	if got := resolver.ResolveFiles("asrdash", LoaderConfig{}).ConfigFile; got != "/etc/asrdash.yml" {
		t.Errorf("expected %s to win, got %q", EnvConfigFile, got)
	}
	if got := resolver.ResolveFiles("asrdash", LoaderConfig{ConfigFile: "explicit.yml"}).ConfigFile; got != "explicit.yml" {
		t.Errorf("expected explicit file to win, got %q", got)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("EVALUATION_REMOTE_URL")
	want := map[string]bool{
		"evaluation_remote_url": true,
		"evaluation.remote.url": true,
		"evaluation.remote_url": true,
		"evaluation_remote.url": true,
	}
	for _, v := range got {
		delete(want, v)
	}
	if len(want) != 0 {
		t.Errorf("missing variants %v in %v", want, got)
	}
	if single := envKeyVariants("PORT"); len(single) != 1 || single[0] != "port" {
		t.Errorf("unexpected single-part variants %v", single)
	}
}

type fakeFS struct {
	t      *testing.T
	files  map[string]bool
	env    map[string]string
	loaded bool
}

func (f *fakeFS) Exists(path string) bool { return f.files[path] }

func (f *fakeFS) LoadEnv(string) error {
	f.loaded = true
	for k, v := range f.env {
		f.t.Setenv(k, v)
	}
	return nil
}
