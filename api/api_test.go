package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Jeffail/gabs/v2"
	"github.com/gin-gonic/gin"

	"github.com/souadELmaazouzi/audio-processing-and-ui/analysis"
	"github.com/souadELmaazouzi/audio-processing-and-ui/archive"
	"github.com/souadELmaazouzi/audio-processing-and-ui/dataset"
	apperrors "github.com/souadELmaazouzi/audio-processing-and-ui/errors"
	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation"
	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
	"github.com/souadELmaazouzi/audio-processing-and-ui/orchestrator"
	"github.com/souadELmaazouzi/audio-processing-and-ui/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const whisperReply = `{"detailedResults":[{"utt_id":"u01","distance_m":3,"CER":0.1,"WER":0.2,"RMS":0.01}],` +
	`"summary":[{"distance_m":3,"CER":0.1,"WER":0.2,"RMS":0.01}],"plotData":"iVBORw0KGgo=","logs":"ok"}`

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  *server.Meta    `json:"meta"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type fakeAnalyzer struct {
	got analysis.Request
	res *analysis.Result
	err error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req analysis.Request) (*analysis.Result, error) {
	f.got = req
	return f.res, f.err
}

func evaluators(t *testing.T, fn func(ctx context.Context, req evaluation.Request) (*gabs.Container, error)) *evaluation.Registry {
	t.Helper()
	reg := evaluation.NewRegistry()
	for _, b := range evaluation.AllBackends() {
		reg.Register(b, evaluation.Func{Label: "fake", Fn: fn})
	}
	return reg
}

func replying(t *testing.T) func(context.Context, evaluation.Request) (*gabs.Container, error) {
	t.Helper()
	c, err := gabs.ParseJSON([]byte(whisperReply))
	if err != nil {
		t.Fatalf("parse reply: %v", err)
	}
	return func(context.Context, evaluation.Request) (*gabs.Container, error) { return c, nil }
}

func blocking(ctx context.Context, _ evaluation.Request) (*gabs.Container, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	r := gin.New()
	New(deps).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}

func writeMetadata(t *testing.T, root string) {
	t.Helper()
	csv := "utt_id,condition,distance_m,text,relpath\n" +
		"u01,human,0,hello,audio/human/u01.wav\n" +
		"u01,speaker_3m,3,hello,audio/speaker_3m/u01.wav\n" +
		"u02,human,0,world,audio/human/u02.wav\n"
	if err := os.WriteFile(filepath.Join(root, dataset.MetadataFile), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListUtterances(t *testing.T) {
	root := t.TempDir()
	r := newRouter(Deps{DataRoot: root})

	rec, env := do(t, r, http.MethodGet, "/api/utterances", "")
	if rec.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != string(apperrors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND before metadata exists, got %d %s", rec.Code, rec.Body.String())
	}

	writeMetadata(t, root)
	rec, env = do(t, r, http.MethodGet, "/api/utterances", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var cat dataset.Catalog
	if err := json.Unmarshal(env.Data, &cat); err != nil {
		t.Fatal(err)
	}
	if strings.Join(cat.IDs, ",") != "u01,u02" || len(cat.Entries) != 3 {
		t.Errorf("unexpected catalog %+v", cat)
	}
	if env.Meta == nil || env.Meta.Total != 2 {
		t.Errorf("expected meta.total=2, got %+v", env.Meta)
	}
}

func TestGetUtterance(t *testing.T) {
	root := t.TempDir()
	writeMetadata(t, root)
	r := newRouter(Deps{DataRoot: root})

	rec, env := do(t, r, http.MethodGet, "/api/utterances/u01", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var rows []dataset.Entry
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].UttID != "u01" || env.Meta.Total != 2 {
		t.Errorf("unexpected rows %+v (meta %+v)", rows, env.Meta)
	}

	rec, env = do(t, r, http.MethodGet, "/api/utterances/u99", "")
	if rec.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != string(apperrors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND for u99, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestListPresets(t *testing.T) {
	rec, env := do(t, newRouter(Deps{}), http.MethodGet, "/api/eq-presets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Bands   []analysis.Band   `json:"bands"`
		Presets []analysis.Preset `json:"presets"`
	}
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Bands) != 6 || len(body.Presets) != 5 {
		t.Fatalf("expected 6 bands and 5 presets, got %d and %d", len(body.Bands), len(body.Presets))
	}
	if body.Presets[1].Mode != evaluation.EQRock || body.Presets[1].GainsDB[2] != 4 {
		t.Errorf("unexpected rock preset %+v", body.Presets[1])
	}
}

func TestAnalyze(t *testing.T) {
	fa := &fakeAnalyzer{res: &analysis.Result{ReferenceText: "hello", HypothesisText: "hullo"}}
	r := newRouter(Deps{Analyzer: fa})

	rec, env := do(t, r, http.MethodPost, "/api/analyze", `{"utteranceId":"u01","eqMode":"jazz","applyEq":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if fa.got.UtteranceID != "u01" || fa.got.EQMode != evaluation.EQJazz || !fa.got.ApplyEQ {
		t.Errorf("unexpected request %+v", fa.got)
	}
	var res analysis.Result
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatal(err)
	}
	if res.HypothesisText != "hullo" {
		t.Errorf("expected hypothesis text, got %+v", res)
	}

	rec, env = do(t, r, http.MethodPost, "/api/analyze", `{"utteranceId":`)
	if rec.Code != http.StatusBadRequest || env.Error.Code != string(apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for broken JSON, got %d %s", rec.Code, rec.Body.String())
	}

	fa.err = apperrors.NotFound("utterance", "u99")
	rec, _ = do(t, r, http.MethodPost, "/api/analyze", `{"utteranceId":"u99","eqMode":"none"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 from analyzer error, got %d", rec.Code)
	}
}

func TestRunLifecycle(t *testing.T) {
	orch := orchestrator.New(evaluators(t, replying(t)), orchestrator.WithLogger(logger.NewNop()))
	r := newRouter(Deps{Runs: orch, DefaultBackends: []evaluation.Backend{evaluation.BackendWhisper}})

	rec, env := do(t, r, http.MethodPost, "/api/runs", `{"eqMode":"none","condition":"speaker_3m"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.Meta == nil || env.Meta.RunID == "" {
		t.Fatalf("expected run id in meta, got %+v", env.Meta)
	}

	h := orch.Current()
	if h != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}

	_, env = do(t, r, http.MethodGet, "/api/runs/current", "")
	var snap orchestrator.Snapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Phase != orchestrator.PhaseCompleted {
		t.Fatalf("expected completed run, got %s", snap.Phase)
	}
	if len(snap.Statuses) != 1 || snap.Statuses[0].Backend != evaluation.BackendWhisper {
		t.Errorf("expected default backend only, got %+v", snap.Statuses)
	}
	if snap.RunID != env.Meta.RunID {
		t.Errorf("expected meta run id %q, got %q", snap.RunID, env.Meta.RunID)
	}

	_, env = do(t, r, http.MethodGet, "/api/runs/current/means", "")
	var means struct {
		CER *float64 `json:"CER"`
	}
	if err := json.Unmarshal(env.Data, &means); err != nil {
		t.Fatal(err)
	}
	if means.CER == nil || *means.CER != 0.1 {
		t.Errorf("expected mean CER 0.1, got %v", means.CER)
	}

	rec, _ = do(t, r, http.MethodGet, "/api/runs/current/plots/whisper", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("expected PNG, got %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Errorf("expected PNG signature, got %q", rec.Body.Bytes())
	}

	rec, _ = do(t, r, http.MethodGet, "/api/runs/current/plots/vosk", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for backend outside the run, got %d", rec.Code)
	}
	rec, _ = do(t, r, http.MethodGet, "/api/runs/current/plots/kaldi", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown backend, got %d", rec.Code)
	}
}

func TestStartRun_Rejected(t *testing.T) {
	orch := orchestrator.New(evaluators(t, replying(t)), orchestrator.WithLogger(logger.NewNop()))
	r := newRouter(Deps{Runs: orch})

	tests := []struct {
		name string
		body string
	}{
		{"unknown eq mode", `{"eqMode":"loud","condition":"human"}`},
		{"unknown backend", `{"eqMode":"none","condition":"human","backends":["kaldi"]}`},
		{"empty backends", `{"eqMode":"none","condition":"human","backends":[]}`},
		{"broken json", `{"eqMode":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, r, http.MethodPost, "/api/runs", tt.body)
			if rec.Code != http.StatusBadRequest || env.Error == nil {
				t.Errorf("expected 400 error envelope, got %d %s", rec.Code, rec.Body.String())
			}
		})
	}
	if orch.Snapshot().Phase != orchestrator.PhaseIdle {
		t.Error("rejected requests must not start a run")
	}
}

func TestCancelAndReset(t *testing.T) {
	orch := orchestrator.New(evaluators(t, blocking), orchestrator.WithLogger(logger.NewNop()))
	r := newRouter(Deps{Runs: orch})

	rec, _ := do(t, r, http.MethodPost, "/api/runs", `{"eqMode":"pop","applyEq":true,"condition":"human","backends":["vosk","whisper"]}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	h := orch.Current()

	_, env := do(t, r, http.MethodDelete, "/api/runs/current", "")
	var snap orchestrator.Snapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Phase != orchestrator.PhaseCancelled {
		t.Errorf("expected cancelled, got %s", snap.Phase)
	}
	for _, st := range snap.Statuses {
		if st.State != orchestrator.StateRunning {
			t.Errorf("cancelled backends keep running state, got %s for %s", st.State, st.Backend)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	_, env = do(t, r, http.MethodPost, "/api/runs/current/reset", "")
	snap = orchestrator.Snapshot{}
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Phase != orchestrator.PhaseIdle || snap.RunID != "" {
		t.Errorf("expected idle state after reset, got %+v", snap)
	}
}

func TestRunEvents(t *testing.T) {
	orch := orchestrator.New(evaluators(t, replying(t)), orchestrator.WithLogger(logger.NewNop()))
	r := newRouter(Deps{Runs: orch})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/runs/current/events", nil).WithContext(ctx)
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	body := rec.Body.String()
	if rec.Header().Get("Content-Type") != "text/event-stream" {
		t.Errorf("expected event stream, got %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(body, `"clientId":"req-42"`) {
		t.Errorf("expected connected event with request id, got %q", body)
	}
	if !strings.Contains(body, "event: "+SnapshotEvent+"\ndata: ") || !strings.Contains(body, `"phase":"idle"`) {
		t.Errorf("expected initial idle snapshot, got %q", body)
	}
}

func TestArchiveRoutes(t *testing.T) {
	rec, env := do(t, newRouter(Deps{}), http.MethodGet, "/api/archive", "")
	if rec.Code != http.StatusServiceUnavailable || env.Error.Code != string(apperrors.ErrCodeServiceUnavailable) {
		t.Fatalf("expected 503 while archiving is disabled, got %d %s", rec.Code, rec.Body.String())
	}

	store, err := archive.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	orch := orchestrator.New(evaluators(t, replying(t)),
		orchestrator.WithLogger(logger.NewNop()),
		orchestrator.WithFinishHook(store.Hook(logger.NewNop())),
	)
	h, err := orch.Run(context.Background(), orchestrator.Configuration{
		EQMode:    evaluation.EQNone,
		Condition: evaluation.ConditionHuman,
		Backends:  []evaluation.Backend{evaluation.BackendWhisper},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	r := newRouter(Deps{Runs: orch, Archive: store})
	rec, env = do(t, r, http.MethodGet, "/api/archive", "")
	if rec.Code != http.StatusOK || env.Meta.Total != 1 {
		t.Fatalf("expected one archived run, got %d %s", rec.Code, rec.Body.String())
	}
	var entries []archive.Entry
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		t.Fatal(err)
	}
	if entries[0].RunID != h.RunID() {
		t.Errorf("expected run %s, got %+v", h.RunID(), entries[0])
	}

	rec, env = do(t, r, http.MethodGet, "/api/archive/"+h.RunID(), "")
	if rec.Code != http.StatusOK || env.Meta.RunID != h.RunID() {
		t.Errorf("expected archived snapshot, got %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = do(t, r, http.MethodGet, "/api/archive/"+h.RunID()+"/plots/whisper", "")
	if rec.Code != http.StatusOK || !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Errorf("expected archived PNG, got %d", rec.Code)
	}

	rec, _ = do(t, r, http.MethodGet, "/api/archive/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestDatasetRepairRoutes(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, filepath.FromSlash(dataset.Speaker0mDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	m4a := append([]byte{0, 0, 0, 0x20}, []byte("ftypM4A isomiso2")...)
	if err := os.WriteFile(filepath.Join(dir, "u01.wav"), m4a, 0o644); err != nil {
		t.Fatal(err)
	}

	prev := dataset.FFmpeg
	dataset.FFmpeg = filepath.Join(t.TempDir(), "missing-ffmpeg")
	t.Cleanup(func() { dataset.FFmpeg = prev })

	r := newRouter(Deps{DataRoot: root})

	rec, env := do(t, r, http.MethodGet, "/api/dataset/repair", "")
	if rec.Code != http.StatusOK || env.Meta.Total != 1 {
		t.Fatalf("expected one mislabeled file, got %d %s", rec.Code, rec.Body.String())
	}

	rec, env = do(t, r, http.MethodPost, "/api/dataset/repair", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var report dataset.RepairReport
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatal(err)
	}
	if len(report.Converted) != 0 || len(report.Failed) != 1 {
		t.Errorf("expected the conversion to fail without ffmpeg, got %+v", report)
	}
}
