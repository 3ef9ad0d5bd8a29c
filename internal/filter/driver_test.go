package filter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antibody-tools/oas-cli/internal/fasta"
)

// writeUnit drops a synthetic data unit into dir.
func writeUnit(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()
	content := testHeader + "\n" + testColumns + "\n"
	if len(rows) > 0 {
		content += strings.Join(rows, "\n") + "\n"
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestProcessFileWritesOutputs(t *testing.T) {
	inDir, csvDir, fastaDir := t.TempDir(), t.TempDir(), t.TempDir()
	path := writeUnit(t, inDir, "unit_1.csv",
		goodRow("|Good|", "EVQ"),
		goodRow("|Good|", "QLV"),
		"ACGT,x,F,T,F,T,F,|Good|,EVQ,,,,,,",
	)

	report, err := ProcessFile(path, csvDir, fastaDir, &seqGen{})
	require.NoError(t, err)

	assert.Equal(t, "unit_1.csv", report.File)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Retained)
	assert.Equal(t, 2, report.Metadata.Filtered)
	assert.Equal(t, 2, report.Metadata.Unique)
	assert.Equal(t, "human", report.Metadata.Header.Get("Species"))

	// Filtered CSV: retained count matches rows written.
	f, err := os.Open(filepath.Join(csvDir, "unit_1.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 retained
	assert.Equal(t, "sequence_id", rows[0][0])
	assert.Equal(t, "sequence", rows[0][1])
	assert.Equal(t, "sequence_aa", rows[0][2])

	// FASTA round-trip: header is sequence_id, body is sequence_aa.
	data, err := os.ReadFile(filepath.Join(fastaDir, "unit_1.fasta"))
	require.NoError(t, err)
	assert.Equal(t, ">seq-0001\nEVQ\n>seq-0002\nQLV", string(data))
	for i, rec := range parseFastaForTest(string(data)) {
		assert.Equal(t, rows[i+1][0], rec.ID)
		assert.Equal(t, rows[i+1][2], rec.Seq)
	}
}

func TestProcessFileNothingRetainedWritesNoFiles(t *testing.T) {
	inDir, csvDir, fastaDir := t.TempDir(), t.TempDir(), t.TempDir()
	path := writeUnit(t, inDir, "unit_2.csv",
		"ACGT,x,F,T,F,T,F,|Good|,EVQ,,,,,,",
	)

	report, err := ProcessFile(path, csvDir, fastaDir, &seqGen{})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Retained)
	assert.Equal(t, 0, report.Metadata.Filtered)
	assert.Equal(t, 0, report.Metadata.Unique)

	assert.NoFileExists(t, filepath.Join(csvDir, "unit_2.csv"))
	assert.NoFileExists(t, filepath.Join(fastaDir, "unit_2.fasta"))
}

func TestProcessFileMalformedHeaderFails(t *testing.T) {
	inDir := t.TempDir()
	path := filepath.Join(inDir, "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("not a unit\nsequence,productive\n"), 0644))

	csvDir, fastaDir := t.TempDir(), t.TempDir()
	_, err := ProcessFile(path, csvDir, fastaDir, &seqGen{})
	require.Error(t, err)

	// No partial output for the failed unit.
	entries, readErr := os.ReadDir(csvDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestProcessDir(t *testing.T) {
	inDir := t.TempDir()
	writeUnit(t, inDir, "b_unit.csv", goodRow("|Good|", "QLV"))
	writeUnit(t, inDir, "a_unit.csv", goodRow("|Good|", "EVQ"))
	writeUnit(t, inDir, "c_unit.csv", "ACGT,x,F,T,F,T,F,|Good|,EVQ,,,,,,")
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "notes.txt"), []byte("skip me"), 0644))

	opts := Options{
		InputDir:  inDir,
		CSVDir:    filepath.Join(t.TempDir(), "csv"),
		FastaDir:  filepath.Join(t.TempDir(), "fasta"),
		Extension: ".csv",
		IDs:       &seqGen{},
	}

	reports, table, err := ProcessDir(opts)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	// Sorted order.
	assert.Equal(t, "a_unit.csv", reports[0].File)
	assert.Equal(t, "b_unit.csv", reports[1].File)
	assert.Equal(t, "c_unit.csv", reports[2].File)

	assert.Equal(t, 3, table.Len())
	assert.FileExists(t, filepath.Join(opts.CSVDir, "a_unit.csv"))
	assert.FileExists(t, filepath.Join(opts.FastaDir, "b_unit.fasta"))
	assert.NoFileExists(t, filepath.Join(opts.CSVDir, "c_unit.csv"))
}

func TestProcessDirAbortsOnBadUnit(t *testing.T) {
	inDir := t.TempDir()
	writeUnit(t, inDir, "a_unit.csv", goodRow("|Good|", "EVQ"))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "b_bad.csv"), []byte("garbage\n"), 0644))

	opts := Options{
		InputDir:  inDir,
		CSVDir:    t.TempDir(),
		FastaDir:  t.TempDir(),
		Extension: ".csv",
		IDs:       &seqGen{},
	}

	_, _, err := ProcessDir(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b_bad.csv")
}

func TestListUnitsSkipAndLimit(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"d.csv", "a.csv", "c.csv", "b.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	all, err := ListUnits(dir, ".csv", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "a.csv", filepath.Base(all[0]))
	assert.Equal(t, "d.csv", filepath.Base(all[3]))

	sliced, err := ListUnits(dir, ".csv", 1, 2)
	require.NoError(t, err)
	require.Len(t, sliced, 2)
	assert.Equal(t, "b.csv", filepath.Base(sliced[0]))
	assert.Equal(t, "c.csv", filepath.Base(sliced[1]))

	past, err := ListUnits(dir, ".csv", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestListUnitsMissingDir(t *testing.T) {
	_, err := ListUnits(filepath.Join(t.TempDir(), "absent"), ".csv", 0, 0)
	assert.Error(t, err)
}

// parseFastaForTest splits two-line FASTA records.
func parseFastaForTest(s string) []fasta.Record {
	var recs []fasta.Record
	lines := strings.Split(s, "\n")
	for i := 0; i+1 < len(lines); i += 2 {
		recs = append(recs, fasta.Record{ID: strings.TrimPrefix(lines[i], ">"), Seq: lines[i+1]})
	}
	return recs
}
