package evaluation

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Jeffail/gabs/v2"
)

// DecodeReply classifies a body from a transport that reported success.
// It returns the parsed reply object, or a *Failure of kind malformed (body
// is not a JSON object) or logical (body carries an "error" field). stderr
// is used as diagnostics when the body itself has no logs.
func DecodeReply(backend Backend, body, stderr []byte) (*gabs.Container, error) {
	parsed, err := ParseObject(body)
	if err != nil {
		diag := "raw response: " + Truncate(string(body), MaxRawPayload)
		if s := strings.TrimSpace(string(stderr)); s != "" {
			diag += "\nstderr: " + Truncate(s, MaxRawPayload)
		}
		return nil, &Failure{
			Kind:        FailureMalformed,
			Backend:     backend,
			Message:     fmt.Sprintf("malformed response: %v", err),
			Diagnostics: diag,
			Cause:       err,
		}
	}

	if msg, ok := ErrorField(parsed); ok {
		return nil, &Failure{
			Kind:        FailureLogical,
			Backend:     backend,
			Message:     msg,
			Diagnostics: Diagnostics(parsed, stderr),
		}
	}
	return parsed, nil
}

// ParseObject parses body as a JSON object. Bare NaN and Infinity tokens,
// which Python's json module emits for non-finite floats, are read as null.
// When the whole body is not valid JSON the last line starting with '{' is
// tried, since ML libraries sometimes print progress lines to stdout.
func ParseObject(body []byte) (*gabs.Container, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	parsed, err := gabs.ParseJSON(sanitizeNonFinite(trimmed))
	if err != nil {
		idx := bytes.LastIndex(trimmed, []byte("\n{"))
		if idx < 0 {
			return nil, err
		}
		var retryErr error
		parsed, retryErr = gabs.ParseJSON(sanitizeNonFinite(trimmed[idx+1:]))
		if retryErr != nil {
			return nil, err
		}
	}
	if _, ok := parsed.Data().(map[string]interface{}); !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", parsed.Data())
	}
	return parsed, nil
}

// ErrorField reports the reply's "error" value when it signals a failure.
// Null, false and empty strings do not count.
func ErrorField(c *gabs.Container) (string, bool) {
	if c == nil || !c.Exists("error") {
		return "", false
	}
	switch v := c.Path("error").Data().(type) {
	case nil:
		return "", false
	case bool:
		if !v {
			return "", false
		}
		return "unknown error", true
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	default:
		return c.Path("error").String(), true
	}
}

// Diagnostics picks the diagnostic text of a reply: its "logs" field, then its
// "stderr" field, then the process stderr.
func Diagnostics(c *gabs.Container, stderr []byte) string {
	for _, key := range []string{"logs", "stderr"} {
		if s, ok := c.Path(key).Data().(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return strings.TrimSpace(string(stderr))
}

var nonFiniteTokens = [][]byte{[]byte("-Infinity"), []byte("Infinity"), []byte("NaN")}

func sanitizeNonFinite(b []byte) []byte {
	if !bytes.Contains(b, []byte("NaN")) && !bytes.Contains(b, []byte("Infinity")) {
		return b
	}
	out := make([]byte, 0, len(b))
	inString, escaped := false, false
	for i := 0; i < len(b); i++ {
		ch := b[i]
		if inString {
			out = append(out, ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			out = append(out, ch)
			continue
		}
		replaced := false
		for _, tok := range nonFiniteTokens {
			if bytes.HasPrefix(b[i:], tok) {
				out = append(out, "null"...)
				i += len(tok) - 1
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, ch)
		}
	}
	return out
}
