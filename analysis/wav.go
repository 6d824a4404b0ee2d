package analysis

import (
	"bytes"
	"errors"

	"github.com/go-audio/wav"
)

// ErrNotWAV is returned by Inspect for data without a RIFF/WAVE header.
var ErrNotWAV = errors.New("analysis: not a WAV file")

// AudioInfo describes a decoded clip.
type AudioInfo struct {
	SampleRate      int     `json:"sampleRate"`
	Channels        int     `json:"channels"`
	BitDepth        int     `json:"bitDepth"`
	DurationSeconds float64 `json:"durationSeconds"`
	Bytes           int     `json:"bytes"`
}

// Inspect reads the WAV header of data.
func Inspect(data []byte) (AudioInfo, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return AudioInfo{}, ErrNotWAV
	}
	info := AudioInfo{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
		Bytes:      len(data),
	}
	if err := d.FwdToPCM(); err != nil {
		return info, err
	}
	if bytesPerSec := info.SampleRate * info.Channels * info.BitDepth / 8; bytesPerSec > 0 {
		info.DurationSeconds = float64(d.PCMSize) / float64(bytesPerSec)
	}
	return info, nil
}
