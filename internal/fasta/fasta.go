// Package fasta writes and pools FASTA files for filtered antibody
// sequences. Records are two lines each: ">" plus the sequence identifier,
// then the amino-acid sequence.
package fasta

import (
	"bufio"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// Record is a single FASTA record.
type Record struct {
	ID  string
	Seq string
}

// Write emits records to w, newline-joined.
func Write(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for i, r := range records {
		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				return eris.Wrap(err, "fasta: write separator")
			}
		}
		if _, err := bw.WriteString(">" + r.ID + "\n" + r.Seq); err != nil {
			return eris.Wrapf(err, "fasta: write record %s", r.ID)
		}
	}
	return eris.Wrap(bw.Flush(), "fasta: flush")
}

// WriteFile writes records to a new file at path.
func WriteFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "fasta: create %s", path)
	}

	if err := Write(f, records); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "fasta: close %s", path)
}
