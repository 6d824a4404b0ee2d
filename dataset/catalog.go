package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/souadELmaazouzi/audio-processing-and-ui/aggregate"
	"github.com/souadELmaazouzi/audio-processing-and-ui/errors"
)

// MetadataFile is the catalog file name under the dataset root.
const MetadataFile = "metadata.csv"

var requiredColumns = []string{"utt_id", "condition", "relpath"}

// Entry is one row of metadata.csv.
type Entry struct {
	UttID     string          `json:"utt_id"`
	Condition string          `json:"condition"`
	Distance  aggregate.Value `json:"distance_m"`
	Text      string          `json:"text"`
	RelPath   string          `json:"relpath"`
}

// Catalog is the parsed metadata table.
type Catalog struct {
	// IDs are the distinct utterance ids in order of first appearance.
	IDs     []string `json:"ids"`
	Entries []Entry  `json:"rows"`
}

// Load reads <root>/metadata.csv.
func Load(root string) (*Catalog, error) {
	path := filepath.Join(root, MetadataFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("metadata file", "").WithDetail("path", path)
		}
		return nil, errors.Internal(fmt.Errorf("open %s: %w", path, err))
	}
	defer f.Close()

	cat, err := Parse(f)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr.WithDetail("path", path)
		}
		return nil, err
	}
	return cat, nil
}

// Parse reads a metadata table with a header row.
func Parse(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.InvalidInput(MetadataFile, "file is empty")
	}
	if err != nil {
		return nil, errors.InvalidInput(MetadataFile, err.Error()).WithCause(err)
	}

	cols := make(map[string]int, len(header))
	found := make([]string, 0, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		cols[name] = i
		found = append(found, name)
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, errors.InvalidInput(MetadataFile, fmt.Sprintf("missing required columns %v", missing)).
			WithDetail("found", found)
	}

	cell := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	cat := &Catalog{IDs: []string{}, Entries: []Entry{}}
	seen := make(map[string]bool)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.InvalidInput(MetadataFile, err.Error()).WithCause(err)
		}
		e := Entry{
			UttID:     cell(rec, "utt_id"),
			Condition: cell(rec, "condition"),
			Distance:  aggregate.ValueOf(cell(rec, "distance_m")),
			Text:      cell(rec, "text"),
			RelPath:   cell(rec, "relpath"),
		}
		if e.UttID == "" {
			continue
		}
		cat.Entries = append(cat.Entries, e)
		if !seen[e.UttID] {
			seen[e.UttID] = true
			cat.IDs = append(cat.IDs, e.UttID)
		}
	}
	return cat, nil
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	for _, u := range c.IDs {
		if u == id {
			return true
		}
	}
	return false
}

// Utterance returns every row for id, one per recorded condition.
func (c *Catalog) Utterance(id string) []Entry {
	var out []Entry
	for _, e := range c.Entries {
		if e.UttID == id {
			out = append(out, e)
		}
	}
	return out
}

// Reference returns the human transcript of id.
func (c *Catalog) Reference(id string) (string, bool) {
	for _, e := range c.Entries {
		if e.UttID == id && e.Condition == "human" {
			return e.Text, true
		}
	}
	return "", false
}
