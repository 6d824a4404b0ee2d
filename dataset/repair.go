package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/souadELmaazouzi/audio-processing-and-ui/logger"
	"github.com/souadELmaazouzi/audio-processing-and-ui/process"
)

// Speaker0mDir is where mislabeled recordings are looked for.
const Speaker0mDir = "audio/speaker_0m"

// FFmpeg is the converter binary, resolved through PATH.
var FFmpeg = "ffmpeg"

// FileError records a file that could not be converted.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// RepairReport summarizes a Repair call.
type RepairReport struct {
	Converted []string    `json:"converted"`
	Failed    []FileError `json:"failed"`
}

// Scan lists .wav files under <root>/audio/speaker_0m whose content is an
// ISO-BMFF container (MP4, M4A, AAC) rather than RIFF/WAVE. A missing
// directory yields an empty list.
func Scan(root string) ([]string, error) {
	dir := filepath.Join(root, filepath.FromSlash(Speaker0mDir))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("dataset: read %s: %w", dir, err)
	}

	out := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".wav") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		ok, err := IsISOBMFF(path)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out, nil
}

// IsISOBMFF reports whether the file starts with an ftyp box.
func IsISOBMFF(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, 8)
	if _, err := io.ReadFull(f, head); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	return bytes.Equal(head[4:8], []byte("ftyp")), nil
}

// Repair converts each file to 16 kHz mono 16-bit PCM WAV with ffmpeg and
// replaces the original. A failed file does not stop the others; the
// returned error is only set when ctx ends.
func Repair(ctx context.Context, runner *process.Runner, files []string) (*RepairReport, error) {
	log := logger.Get("dataset")
	report := &RepairReport{Converted: []string{}, Failed: []FileError{}}

	for _, in := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		out := in + ".fixed.wav"
		res, err := runner.Run(ctx, process.Command{
			Binary: FFmpeg,
			Args:   []string{"-y", "-hide_banner", "-loglevel", "error", "-i", in, "-ac", "1", "-ar", "16000", "-c:a", "pcm_s16le", out},
		})
		if err != nil {
			_ = os.Remove(out)
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			msg := err.Error()
			if res != nil && len(bytes.TrimSpace(res.Stderr)) > 0 {
				msg = strings.TrimSpace(string(res.Stderr))
			}
			report.Failed = append(report.Failed, FileError{Path: in, Error: msg})
			log.Warn("conversion failed", logger.Fields("path", in, logger.FieldError, msg))
			continue
		}
		if err := os.Rename(out, in); err != nil {
			_ = os.Remove(out)
			report.Failed = append(report.Failed, FileError{Path: in, Error: err.Error()})
			continue
		}
		report.Converted = append(report.Converted, in)
		log.Info("converted to PCM WAV", logger.Fields("path", in))
	}
	return report, nil
}
