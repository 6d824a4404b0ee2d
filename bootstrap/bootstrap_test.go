package bootstrap

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/souadELmaazouzi/audio-processing-and-ui/component"
	"github.com/souadELmaazouzi/audio-processing-and-ui/config"
	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
)

type testConfig struct {
	config.ServiceConfig
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	log      *eventLog
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.events, ",")
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(context.Context) error {
	m.log.add("start:" + m.name)
	return m.startErr
}
func (m *mockComponent) Stop(context.Context) error {
	m.log.add("stop:" + m.name)
	return m.stopErr
}
func (m *mockComponent) Health(context.Context) component.Health {
	if m.health.Status == "" {
		return component.Health{Name: m.name, Status: component.StatusHealthy}
	}
	return m.health
}

func newTestApp(t *testing.T) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "asrdash", Version: "1.2.0", Environment: "production"}}
	app, err := NewApp(cfg, WithLogger(logger.NewNop()), WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "asrdash" || app.Version != "1.2.0" {
		t.Errorf("unexpected identity %q %q", app.Name, app.Version)
	}
	if app.Components == nil || app.Logger == nil {
		t.Fatal("expected registry and logger")
	}
	if app.gracefulTimeout != time.Second {
		t.Errorf("expected 1s graceful timeout, got %v", app.gracefulTimeout)
	}
	if app.Cfg.Logging.Level != "info" {
		t.Errorf("expected defaults applied to the typed config, got level %q", app.Cfg.Logging.Level)
	}
}

func TestNewApp_Invalid(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Environment: "moon"}}
	if _, err := NewApp(cfg, WithLogger(logger.NewNop())); err == nil {
		t.Fatal("expected validation error for unknown environment")
	}
}

func TestRunTask_Lifecycle(t *testing.T) {
	app := newTestApp(t)
	events := &eventLog{}

	if err := app.RegisterComponent(&mockComponent{name: "archive", log: events}); err != nil {
		t.Fatal(err)
	}
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		events.add("configure")
		return a.RegisterComponent(&mockComponent{name: "http-server", log: events})
	})
	app.OnStart(func(context.Context) error { events.add("onStart"); return nil })
	app.OnReady(func(context.Context) error { events.add("onReady"); return nil })
	app.OnStop(func(context.Context) error { events.add("onStop"); return nil })

	err := app.RunTask(context.Background(), func(context.Context) error {
		events.add("task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}

	want := "start:archive,onStart,configure,start:http-server,onReady,task,onStop,stop:http-server,stop:archive"
	if got := events.String(); got != want {
		t.Errorf("unexpected lifecycle\n got: %s\nwant: %s", got, want)
	}
}

func TestRunTask_ReturnsTaskError(t *testing.T) {
	app := newTestApp(t)
	events := &eventLog{}
	_ = app.RegisterComponent(&mockComponent{name: "archive", log: events, stopErr: errors.New("flush failed")})

	taskErr := errors.New("repair failed")
	if err := app.RunTask(context.Background(), func(context.Context) error { return taskErr }); !errors.Is(err, taskErr) {
		t.Fatalf("expected task error to win over stop error, got %v", err)
	}
	if !strings.Contains(events.String(), "stop:archive") {
		t.Error("expected components stopped after a failed task")
	}
}

func TestRun_StartFailureStopsStartedComponents(t *testing.T) {
	app := newTestApp(t)
	events := &eventLog{}
	_ = app.RegisterComponent(&mockComponent{name: "archive", log: events})
	_ = app.RegisterComponent(&mockComponent{name: "orchestrator", log: events, startErr: errors.New("boom")})

	err := app.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected start failure, got %v", err)
	}
	if got := events.String(); got != "start:archive,start:orchestrator,stop:archive" {
		t.Errorf("unexpected events %s", got)
	}
}

func TestRun_StopsWhenContextEnds(t *testing.T) {
	app := newTestApp(t)
	events := &eventLog{}
	_ = app.RegisterComponent(&mockComponent{name: "archive", log: events})

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error { cancel(); return nil })

	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := events.String(); got != "start:archive,stop:archive" {
		t.Errorf("unexpected events %s", got)
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t)
	events := &eventLog{}
	_ = app.RegisterComponent(&mockComponent{name: "scripts", log: events,
		health: component.Health{Name: "scripts", Status: component.StatusDegraded, Message: "evaluate.py missing"}})

	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "scripts=degraded(evaluate.py missing)") {
		t.Errorf("expected degraded component in ready check, got %v", err)
	}
}

func TestOnConfigureError(t *testing.T) {
	app := newTestApp(t)
	app.OnConfigure(func(context.Context, *App[*testConfig]) error { return errors.New("no scripts") })
	err := app.RunTask(context.Background(), func(context.Context) error {
		t.Error("task must not run after a configure failure")
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "configuration failed") {
		t.Errorf("expected configuration error, got %v", err)
	}
}
