package aggregate

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Value is a coerced numeric cell. Valid is false when the source cell was
// missing or not a finite number.
type Value struct {
	Float float64
	Valid bool
}

// Number builds a valid Value.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{Float: f, Valid: true}
}

// ValueOf coerces v into a Value.
func ValueOf(v any) Value {
	f, ok := Coerce(v)
	if !ok {
		return Value{}
	}
	return Value{Float: f, Valid: true}
}

// MarshalJSON writes the number, or null when the cell is not valid.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float)
}

// UnmarshalJSON reads a number, a numeric string or null.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}

// String formats the value with four decimals, or "-" when undefined.
func (v Value) String() string {
	if !v.Valid {
		return "-"
	}
	return strconv.FormatFloat(v.Float, 'f', 4, 64)
}

// Coerce converts a reply cell to a finite float64. Numbers pass through,
// strings are parsed after trimming; blank strings, booleans, nil, NaN and
// infinities report false.
func Coerce(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case Value:
		return x.Float, x.Valid
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
