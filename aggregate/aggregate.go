package aggregate

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/Jeffail/gabs/v2"
)

// Aggregate shapes a raw evaluation reply into a RunResult. A nil or
// non-object reply yields Empty().
func Aggregate(raw *gabs.Container) RunResult {
	out := Empty()
	if raw == nil {
		return out
	}
	if _, ok := raw.Data().(map[string]interface{}); !ok {
		return out
	}

	for _, rec := range records(raw.Path(keyDetailed)) {
		out.Detailed = append(out.Detailed, UtteranceMetricRow{
			UtteranceID:      text(rec[FieldUttID]),
			DistanceMeters:   ValueOf(rec[FieldDistance]),
			CER:              ValueOf(rec[FieldCER]),
			WER:              ValueOf(rec[FieldWER]),
			RMS:              ValueOf(rec[FieldRMS]),
			SpectralCentroid: ValueOf(rec[FieldCentroid]),
			Rolloff:          ValueOf(rec[FieldRolloff]),
		})
	}
	for _, rec := range records(raw.Path(keySummary)) {
		out.Summary = append(out.Summary, DistanceSummaryRow{
			DistanceMeters: ValueOf(rec[FieldDistance]),
			CER:            ValueOf(rec[FieldCER]),
			WER:            ValueOf(rec[FieldWER]),
			RMS:            ValueOf(rec[FieldRMS]),
			Centroid:       ValueOf(rec[FieldCentroid]),
			Rolloff:        ValueOf(rec[FieldRolloff]),
		})
	}

	if s, ok := raw.Path(keyPlot).Data().(string); ok {
		out.Plot = DecodePlot(s)
	}
	if s, ok := raw.Path(keyLogs).Data().(string); ok {
		out.Logs = s
	}
	return out
}

// AggregateJSON parses body and aggregates it. Undecodable bodies yield
// Empty().
func AggregateJSON(body []byte) RunResult {
	parsed, err := gabs.ParseJSON(body)
	if err != nil {
		return Empty()
	}
	return Aggregate(parsed)
}

// DecodePlot decodes a base64 image, with or without a data URL prefix.
// It returns nil for empty or invalid input.
func DecodePlot(s string) []byte {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx < 0 {
			return nil
		}
		s = s[idx+1:]
	}
	if s == "" {
		return nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(b) == 0 {
		return nil
	}
	return b
}

// records returns the object elements of an array container, skipping
// anything that is not an object.
func records(c *gabs.Container) []map[string]interface{} {
	arr, ok := c.Data().([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(arr))
	for _, el := range arr {
		if m, ok := el.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}
