package aggregate

// Field names as they appear in evaluation replies.
const (
	FieldUttID    = "utt_id"
	FieldDistance = "distance_m"
	FieldCER      = "CER"
	FieldWER      = "WER"
	FieldRMS      = "RMS"
	FieldCentroid = "centroid"
	FieldRolloff  = "rolloff"

	keyDetailed = "detailedResults"
	keySummary  = "summary"
	keyPlot     = "plotData"
	keyLogs     = "logs"
)

// UtteranceMetricRow holds one utterance's metrics for one backend.
type UtteranceMetricRow struct {
	UtteranceID      string `json:"utteranceId"`
	DistanceMeters   Value  `json:"distanceMeters"`
	CER              Value  `json:"CER"`
	WER              Value  `json:"WER"`
	RMS              Value  `json:"RMS"`
	SpectralCentroid Value  `json:"spectralCentroid"`
	Rolloff          Value  `json:"rolloff"`
}

// Field returns the cell named by a reply field name, or nil.
func (r UtteranceMetricRow) Field(name string) any {
	switch name {
	case FieldUttID:
		return r.UtteranceID
	case FieldDistance:
		return r.DistanceMeters
	case FieldCER:
		return r.CER
	case FieldWER:
		return r.WER
	case FieldRMS:
		return r.RMS
	case FieldCentroid:
		return r.SpectralCentroid
	case FieldRolloff:
		return r.Rolloff
	}
	return nil
}

// DistanceSummaryRow holds the per-distance means reported by the service.
type DistanceSummaryRow struct {
	DistanceMeters Value `json:"distanceMeters"`
	CER            Value `json:"CER"`
	WER            Value `json:"WER"`
	RMS            Value `json:"RMS"`
	Centroid       Value `json:"centroid"`
	Rolloff        Value `json:"rolloff"`
}

// Field returns the cell named by a reply field name, or nil.
func (r DistanceSummaryRow) Field(name string) any {
	switch name {
	case FieldDistance:
		return r.DistanceMeters
	case FieldCER:
		return r.CER
	case FieldWER:
		return r.WER
	case FieldRMS:
		return r.RMS
	case FieldCentroid:
		return r.Centroid
	case FieldRolloff:
		return r.Rolloff
	}
	return nil
}

// RunResult is one backend's normalized evaluation result.
type RunResult struct {
	Detailed []UtteranceMetricRow `json:"detailed"`
	Summary  []DistanceSummaryRow `json:"summary"`
	// Plot is the decoded image, nil when absent or undecodable.
	Plot []byte `json:"plot,omitempty"`
	Logs string `json:"logs"`
}

// Empty returns a RunResult with every field at its default.
func Empty() RunResult {
	return RunResult{
		Detailed: []UtteranceMetricRow{},
		Summary:  []DistanceSummaryRow{},
	}
}

// Clone returns a deep copy of r.
func (r RunResult) Clone() RunResult {
	out := RunResult{
		Detailed: append([]UtteranceMetricRow{}, r.Detailed...),
		Summary:  append([]DistanceSummaryRow{}, r.Summary...),
		Logs:     r.Logs,
	}
	if r.Plot != nil {
		out.Plot = append([]byte(nil), r.Plot...)
	}
	return out
}
