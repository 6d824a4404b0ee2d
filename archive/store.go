package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/souadELmaazouzi/audio-processing-and-ui/aggregate"
	"github.com/souadELmaazouzi/audio-processing-and-ui/errors"
	"github.com/souadELmaazouzi/audio-processing-and-ui/evaluation"
	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
	"github.com/souadELmaazouzi/audio-processing-and-ui/orchestrator"
	"github.com/souadELmaazouzi/audio-processing-and-ui/validation"
)

const (
	runFile = "run.json"
	plotExt = ".png"
)

// Entry describes one archived run.
type Entry struct {
	RunID      string               `json:"runId"`
	Backends   []evaluation.Backend `json:"backends"`
	Succeeded  int                  `json:"succeeded"`
	Advisory   string               `json:"advisory,omitempty"`
	FinishedAt *time.Time           `json:"finishedAt,omitempty"`
	Size       int64                `json:"size"`
	ArchivedAt time.Time            `json:"archivedAt"`
}

// Store writes and reads archived runs under a base directory.
type Store struct {
	basePath string
}

// NewStore creates the base directory if needed.
func NewStore(basePath string) (*Store, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("archive: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("archive: create base directory: %w", err)
	}
	return &Store{basePath: abs}, nil
}

// BasePath returns the absolute archive root.
func (s *Store) BasePath() string { return s.basePath }

// Save archives snap. Runs without an id are ignored.
func (s *Store) Save(_ context.Context, snap orchestrator.Snapshot) error {
	if snap.RunID == "" {
		return nil
	}
	if _, err := validation.ValidateUUID("runId", snap.RunID); err != nil {
		return err
	}

	stripped := snap
	stripped.Results = make(map[evaluation.Backend]aggregate.RunResult, len(snap.Results))
	for b, res := range snap.Results {
		if len(res.Plot) > 0 {
			if err := s.write(filepath.Join(snap.RunID, string(b)+plotExt), bytes.NewReader(res.Plot)); err != nil {
				return err
			}
		}
		res.Plot = nil
		stripped.Results[b] = res
	}

	body, err := json.MarshalIndent(stripped, "", "  ")
	if err != nil {
		return fmt.Errorf("archive: encode run %s: %w", snap.RunID, err)
	}
	return s.write(filepath.Join(snap.RunID, runFile), bytes.NewReader(body))
}

// Hook returns an orchestrator finish hook that archives each run and logs
// failures instead of returning them.
func (s *Store) Hook(log *logger.Logger) orchestrator.FinishHook {
	log = log.WithComponent("archive")
	return func(snap orchestrator.Snapshot) {
		if err := s.Save(context.Background(), snap); err != nil {
			log.WithError(err).Error("archiving run failed", logger.Fields(logger.FieldRunID, snap.RunID))
			return
		}
		log.Info("run archived", logger.Fields(logger.FieldRunID, snap.RunID, "path", filepath.Join(s.basePath, snap.RunID)))
	}
}

// Get returns the archived snapshot of runID. Plots are not loaded; use Plot.
func (s *Store) Get(_ context.Context, runID string) (*orchestrator.Snapshot, error) {
	if _, err := validation.ValidateUUID("runId", runID); err != nil {
		return nil, err
	}
	rc, err := s.open(filepath.Join(runID, runFile))
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck // read-only

	var snap orchestrator.Snapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return nil, errors.Internal(fmt.Errorf("archive: decode run %s: %w", runID, err))
	}
	return &snap, nil
}

// Plot returns the archived PNG for backend in runID.
func (s *Store) Plot(_ context.Context, runID string, backend evaluation.Backend) ([]byte, error) {
	if _, err := validation.ValidateUUID("runId", runID); err != nil {
		return nil, err
	}
	if _, err := evaluation.ParseBackend(string(backend)); err != nil {
		return nil, errors.InvalidInput("backend", err.Error())
	}
	rc, err := s.open(filepath.Join(runID, string(backend)+plotExt))
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck // read-only
	return io.ReadAll(rc)
}

// List returns every archived run, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	dirs, err := os.ReadDir(s.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("archive: list runs: %w", err)
	}

	out := []Entry{}
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		info, err := os.Stat(filepath.Join(s.basePath, d.Name(), runFile))
		if err != nil {
			continue
		}
		snap, err := s.Get(ctx, d.Name())
		if err != nil {
			continue
		}
		e := Entry{
			RunID:      snap.RunID,
			Succeeded:  snap.Succeeded(),
			Advisory:   snap.Advisory,
			FinishedAt: snap.FinishedAt,
			Size:       info.Size(),
			ArchivedAt: info.ModTime(),
		}
		for _, st := range snap.Statuses {
			e.Backends = append(e.Backends, st.Backend)
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ArchivedAt.After(out[j].ArchivedAt)
	})
	return out, nil
}

// write stores data at path relative to the base directory.
func (s *Store) write(path string, r io.Reader) error {
	full := filepath.Join(s.basePath, filepath.Clean(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("archive: create directory: %w", err)
	}

	tmp := full + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("archive: create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("archive: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("archive: close file: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		return fmt.Errorf("archive: rename file: %w", err)
	}
	return nil
}

func (s *Store) open(path string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.basePath, filepath.Clean(path)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("archived file", filepath.ToSlash(path))
		}
		return nil, fmt.Errorf("archive: open file: %w", err)
	}
	return f, nil
}
