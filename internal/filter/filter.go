// Package filter implements the OAS quality filter: row-wise predicates over
// annotated antibody sequences, identifier assignment, and region
// concatenation into sequence_aa.
package filter

import (
	"strings"

	"github.com/antibody-tools/oas-cli/internal/oas"
)

// regionColumns is the fixed concatenation order for sequence_aa.
var regionColumns = []string{
	"fwr1_aa", "cdr1_aa", "fwr2_aa", "cdr2_aa", "fwr3_aa", "cdr3_aa", "fwr4_aa",
}

// outputPrefix is the fixed leading column order of filtered output tables.
var outputPrefix = []string{"sequence_id", "sequence", "sequence_aa"}

// Result holds the outcome of filtering one data unit.
type Result struct {
	// Columns is the output column order: sequence_id, sequence,
	// sequence_aa, then the unit's remaining columns in original order.
	Columns []string
	// Rows are the retained rows, already in output column order.
	Rows [][]string
	// SequenceIDs and Sequences index the retained rows for FASTA output.
	SequenceIDs []string
	Sequences   []string
	// TotalRows is the number of input rows examined.
	TotalRows int
	// Unique is the number of distinct sequence_aa values among retained rows.
	Unique int
}

// Retained returns the number of rows that passed the filter.
func (r *Result) Retained() int { return len(r.Rows) }

// SequenceAA concatenates the seven region fragments of a row in fixed
// order. Missing or short columns contribute the empty string.
func SequenceAA(u *oas.Unit, row []string) string {
	var b strings.Builder
	for _, col := range regionColumns {
		b.WriteString(u.Col(row, col))
	}
	return b.String()
}

// Keep reports whether a row passes the quality filter.
//
// The ambiguous-residue clause is deliberately asymmetric: a row containing
// an X residue is rejected only when its ANARCI status does NOT also report
// a missing conserved cysteine. A row with both anomalies is retained. That
// matches the upstream curation pipeline exactly, so it stays as-is pending
// confirmation from the data owners.
func Keep(u *oas.Unit, row []string, seqAA string) bool {
	if u.Col(row, "complete_vdj") != "T" ||
		u.Col(row, "stop_codon") != "F" ||
		u.Col(row, "vj_in_frame") != "T" ||
		u.Col(row, "v_frameshift") != "F" ||
		u.Col(row, "productive") != "T" {
		return false
	}
	if strings.Contains(seqAA, "X") &&
		!strings.Contains(u.Col(row, "ANARCI_status"), "Missing Conserved Cysteine") {
		return false
	}
	return true
}

// Apply runs the quality filter over a unit's rows. Retained rows get a
// fresh identifier from gen and are reordered into output column order. The
// transform is pure apart from gen: no file-system effects here.
func Apply(u *oas.Unit, gen IDGenerator) *Result {
	rest := restColumns(u.Columns)

	res := &Result{
		Columns:   append(append([]string{}, outputPrefix...), rest...),
		TotalRows: len(u.Rows),
	}

	seen := make(map[string]struct{})
	for _, row := range u.Rows {
		seqAA := SequenceAA(u, row)
		if !Keep(u, row, seqAA) {
			continue
		}

		id := gen.NewID()
		out := make([]string, 0, len(res.Columns))
		out = append(out, id, u.Col(row, "sequence"), seqAA)
		for _, col := range rest {
			out = append(out, u.Col(row, col))
		}

		res.Rows = append(res.Rows, out)
		res.SequenceIDs = append(res.SequenceIDs, id)
		res.Sequences = append(res.Sequences, seqAA)
		seen[seqAA] = struct{}{}
	}

	res.Unique = len(seen)
	return res
}

// restColumns returns the unit's columns minus the three that move to the
// front, preserving their original order.
func restColumns(columns []string) []string {
	skip := make(map[string]struct{}, len(outputPrefix))
	for _, c := range outputPrefix {
		skip[c] = struct{}{}
	}

	var rest []string
	for _, c := range columns {
		if _, ok := skip[c]; ok {
			continue
		}
		rest = append(rest, c)
	}
	return rest
}
