package filter

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/antibody-tools/oas-cli/internal/oas"
)

// Metadata column names for the two computed counts.
const (
	ColFiltered = "Filtered sequences"
	ColUnique   = "Unique filtered sequences"
)

// FileMetadata is one metadata record: a unit's parsed header plus the
// computed filter counts.
type FileMetadata struct {
	File     string
	Header   oas.Header
	Filtered int
	Unique   int
}

// MetadataTable aggregates per-file metadata across a run. Columns are the
// union of all header keys in first-seen order, with the two count columns
// last.
type MetadataTable struct {
	keys    []string
	keySeen map[string]struct{}
	rows    []FileMetadata
}

// NewMetadataTable returns an empty metadata table.
func NewMetadataTable() *MetadataTable {
	return &MetadataTable{keySeen: make(map[string]struct{})}
}

// Add appends one file's metadata record.
func (t *MetadataTable) Add(m FileMetadata) {
	for _, k := range m.Header.Keys {
		if _, ok := t.keySeen[k]; ok {
			continue
		}
		t.keySeen[k] = struct{}{}
		t.keys = append(t.keys, k)
	}
	t.rows = append(t.rows, m)
}

// Len returns the number of metadata records.
func (t *MetadataTable) Len() int { return len(t.rows) }

// Rows returns the metadata records in insertion order.
func (t *MetadataTable) Rows() []FileMetadata { return t.rows }

// Columns returns the output column order: File, the unioned header keys,
// then the two count columns.
func (t *MetadataTable) Columns() []string {
	cols := make([]string, 0, len(t.keys)+3)
	cols = append(cols, "File")
	cols = append(cols, t.keys...)
	cols = append(cols, ColFiltered, ColUnique)
	return cols
}

// row renders one metadata record against the table's column union. Files
// whose headers lack a key get an empty cell.
func (t *MetadataTable) row(m FileMetadata) []string {
	out := make([]string, 0, len(t.keys)+3)
	out = append(out, m.File)
	for _, k := range t.keys {
		out = append(out, m.Header.Get(k))
	}
	out = append(out, strconv.Itoa(m.Filtered), strconv.Itoa(m.Unique))
	return out
}

// WriteCSV persists the aggregated metadata table.
func (t *MetadataTable) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "metadata: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(t.Columns()); err != nil {
		return eris.Wrap(err, "metadata: write header")
	}
	for _, m := range t.rows {
		if err := w.Write(t.row(m)); err != nil {
			return eris.Wrapf(err, "metadata: write row %s", m.File)
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "metadata: flush")
}
