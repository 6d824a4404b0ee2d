package aggregate

// Fielder is a row whose cells can be looked up by reply field name.
type Fielder interface {
	Field(name string) any
}

// Record is an untyped reply row.
type Record map[string]any

// Field returns the raw cell.
func (r Record) Field(name string) any { return r[name] }

// MeanOf returns the arithmetic mean of field over rows, skipping cells that
// do not coerce to a finite number. ok is false when no cell qualifies.
func MeanOf[R Fielder](rows []R, field string) (mean float64, ok bool) {
	var sum float64
	var n int
	for _, row := range rows {
		if f, valid := Coerce(row.Field(field)); valid {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Means holds the display statistics for one backend or a whole run.
type Means struct {
	CER Value `json:"CER"`
	WER Value `json:"WER"`
	RMS Value `json:"RMS"`
}

func meanValue[R Fielder](rows []R, field string) Value {
	f, ok := MeanOf(rows, field)
	if !ok {
		return Value{}
	}
	return Number(f)
}

// SummaryMeans averages a result's per-distance summary rows.
func SummaryMeans(r RunResult) Means {
	return Means{
		CER: meanValue(r.Summary, FieldCER),
		WER: meanValue(r.Summary, FieldWER),
		RMS: meanValue(r.Summary, FieldRMS),
	}
}

// DetailedMeans averages a result's per-utterance rows.
func DetailedMeans(r RunResult) Means {
	return Means{
		CER: meanValue(r.Detailed, FieldCER),
		WER: meanValue(r.Detailed, FieldWER),
		RMS: meanValue(r.Detailed, FieldRMS),
	}
}

// CrossBackendMeans is the mean of each backend's SummaryMeans. Backends
// whose own mean is undefined do not contribute.
func CrossBackendMeans[K comparable](results map[K]RunResult) Means {
	rows := make([]Record, 0, len(results))
	for _, r := range results {
		m := SummaryMeans(r)
		rows = append(rows, Record{FieldCER: m.CER, FieldWER: m.WER, FieldRMS: m.RMS})
	}
	return Means{
		CER: meanValue(rows, FieldCER),
		WER: meanValue(rows, FieldWER),
		RMS: meanValue(rows, FieldRMS),
	}
}
