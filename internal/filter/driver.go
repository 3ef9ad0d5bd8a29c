package filter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/antibody-tools/oas-cli/internal/fasta"
	"github.com/antibody-tools/oas-cli/internal/oas"
)

// Options configures a filtering pass over a directory of data units.
type Options struct {
	InputDir  string
	CSVDir    string
	FastaDir  string
	Extension string // input file extension, e.g. ".csv"
	Skip      int    // skip the first N files of the sorted listing
	Limit     int    // process at most M files (0 = no limit)

	IDs IDGenerator // defaults to UUIDGenerator
}

// FileReport is the outcome of processing one data unit.
type FileReport struct {
	File     string
	Metadata FileMetadata
	Retained int
	Total    int
	Duration time.Duration
}

// ProcessFile filters one unit and, when any rows survive, writes the
// cleaned CSV and FASTA outputs. Zero retained rows produce no output
// files; the metadata record still carries the zero counts.
func ProcessFile(path, csvDir, fastaDir string, gen IDGenerator) (*FileReport, error) {
	start := time.Now()
	log := zap.L().With(zap.String("unit", filepath.Base(path)))

	u, err := oas.ReadUnit(path)
	if err != nil {
		return nil, err
	}

	res := Apply(u, gen)

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if res.Retained() > 0 {
		if err := writeCSV(filepath.Join(csvDir, base+".csv"), res); err != nil {
			return nil, err
		}

		records := make([]fasta.Record, len(res.SequenceIDs))
		for i := range res.SequenceIDs {
			records[i] = fasta.Record{ID: res.SequenceIDs[i], Seq: res.Sequences[i]}
		}
		if err := fasta.WriteFile(filepath.Join(fastaDir, base+".fasta"), records); err != nil {
			return nil, err
		}
	}

	report := &FileReport{
		File: filepath.Base(path),
		Metadata: FileMetadata{
			File:     filepath.Base(path),
			Header:   u.Header,
			Filtered: res.Retained(),
			Unique:   res.Unique,
		},
		Retained: res.Retained(),
		Total:    res.TotalRows,
		Duration: time.Since(start),
	}

	log.Info("filtered unit",
		zap.Int("rows", res.TotalRows),
		zap.Int("retained", res.Retained()),
		zap.Int("unique", res.Unique),
		zap.Duration("took", report.Duration),
	)

	return report, nil
}

// ProcessDir filters every matching unit under opts.InputDir, sequentially
// in sorted order, and returns the per-file reports plus the aggregated
// metadata table. The first failing unit aborts the run.
func ProcessDir(opts Options) ([]FileReport, *MetadataTable, error) {
	gen := opts.IDs
	if gen == nil {
		gen = UUIDGenerator{}
	}

	files, err := ListUnits(opts.InputDir, opts.Extension, opts.Skip, opts.Limit)
	if err != nil {
		return nil, nil, err
	}

	for _, dir := range []string{opts.CSVDir, opts.FastaDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, eris.Wrapf(err, "filter: create output dir %s", dir)
		}
	}

	zap.L().Info("starting filter pass",
		zap.String("input", opts.InputDir),
		zap.Int("files", len(files)),
		zap.Int("skip", opts.Skip),
		zap.Int("limit", opts.Limit),
	)

	table := NewMetadataTable()
	reports := make([]FileReport, 0, len(files))
	for _, f := range files {
		report, err := ProcessFile(f, opts.CSVDir, opts.FastaDir, gen)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "filter: process %s", filepath.Base(f))
		}
		table.Add(report.Metadata)
		reports = append(reports, *report)
	}

	return reports, table, nil
}

// ListUnits returns the alphabetically sorted files under dir with the given
// extension, after applying skip and limit. The static slice lets several
// process instances partition one directory by hand.
func ListUnits(dir, ext string, skip, limit int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "filter: read input dir %s", dir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	if skip > 0 {
		if skip >= len(files) {
			return nil, nil
		}
		files = files[skip:]
	}
	if limit > 0 && limit < len(files) {
		files = files[:limit]
	}
	return files, nil
}

// writeCSV persists a filter result as a cleaned CSV table.
func writeCSV(path string, res *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "filter: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(res.Columns); err != nil {
		return eris.Wrap(err, "filter: write csv header")
	}
	for _, row := range res.Rows {
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "filter: write csv row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "filter: flush csv")
}
