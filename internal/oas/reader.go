package oas

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// RequiredColumns are the annotation columns the quality filter reads. A
// unit missing any of them is rejected up front rather than failing mid-row.
var RequiredColumns = []string{
	"productive",
	"complete_vdj",
	"v_frameshift",
	"vj_in_frame",
	"stop_codon",
	"ANARCI_status",
	"fwr1_aa", "cdr1_aa", "fwr2_aa", "cdr2_aa", "fwr3_aa", "cdr3_aa", "fwr4_aa",
}

// Unit is one OAS data unit: the embedded metadata header plus the
// annotation table that follows it.
type Unit struct {
	Header  Header
	Columns []string
	Rows    [][]string

	colIdx map[string]int
}

// Col returns the value of the named column in row, or "" when the column
// is absent or the row is short. Short rows read as missing values, the
// same way a sparse annotation row does.
func (u *Unit) Col(row []string, name string) string {
	idx, ok := u.colIdx[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// HasColumn reports whether the unit's table carries the named column.
func (u *Unit) HasColumn(name string) bool {
	_, ok := u.colIdx[name]
	return ok
}

// ReadUnit opens and parses an annotated data unit from disk.
func ReadUnit(path string) (*Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "oas: open unit %s", path)
	}
	defer f.Close()

	u, err := ReadUnitFrom(f)
	if err != nil {
		return nil, eris.Wrapf(err, "oas: read unit %s", path)
	}
	return u, nil
}

// ReadUnitFrom parses an annotated data unit: line 1 is the quoted JSON
// metadata header, the rest is a standard CSV table with a header row.
func ReadUnitFrom(r io.Reader) (*Unit, error) {
	br := bufio.NewReader(r)

	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, eris.Wrap(err, "read header line")
	}
	if line == "" {
		return nil, eris.Wrap(ErrMalformedHeader, "empty unit")
	}

	header, err := ParseHeader(line)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1 // allow variable fields

	columns, err := reader.Read()
	if err == io.EOF {
		return nil, eris.Wrap(ErrMissingColumn, "unit has no column header row")
	}
	if err != nil {
		return nil, eris.Wrap(err, "read column header")
	}

	colIdx := mapColumns(columns)
	for _, name := range RequiredColumns {
		if _, ok := colIdx[name]; !ok {
			return nil, eris.Wrapf(ErrMissingColumn, "column %q", name)
		}
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "read row")
		}
		rows = append(rows, record)
	}

	return &Unit{
		Header:  header,
		Columns: columns,
		Rows:    rows,
		colIdx:  colIdx,
	}, nil
}

// mapColumns builds a column name → index map from a CSV header row.
func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		m[col] = i
	}
	return m
}
