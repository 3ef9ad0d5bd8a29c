package oas

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unitHeader = `"{""Run"": 42, ""Species"": ""human"", ""Chain"": ""Heavy"", ""Isotype"": ""IGHM""}"`

func unitBody(rows ...string) string {
	lines := []string{
		unitHeader,
		"sequence_id,sequence,productive,complete_vdj,v_frameshift,vj_in_frame,stop_codon,ANARCI_status,fwr1_aa,cdr1_aa,fwr2_aa,cdr2_aa,fwr3_aa,cdr3_aa,fwr4_aa",
	}
	lines = append(lines, rows...)
	return strings.Join(lines, "\n") + "\n"
}

func TestReadUnitFrom(t *testing.T) {
	content := unitBody(
		"old-1,ACGT,T,T,F,T,F,|Good|,EVQ,GYT,WVR,ISA,RFT,ARD,WGQ",
		"old-2,TTGA,F,T,F,T,F,|Good|,EVQ,GYT,WVR,ISA,RFT,ARD,WGQ",
	)

	u, err := ReadUnitFrom(strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, "human", u.Header.Get("Species"))
	assert.Equal(t, "Heavy", u.Header.Get("Chain"))
	assert.Len(t, u.Columns, 15)
	assert.Len(t, u.Rows, 2)

	assert.Equal(t, "ACGT", u.Col(u.Rows[0], "sequence"))
	assert.Equal(t, "T", u.Col(u.Rows[0], "productive"))
	assert.Equal(t, "F", u.Col(u.Rows[1], "productive"))
	assert.Equal(t, "WGQ", u.Col(u.Rows[1], "fwr4_aa"))
}

func TestReadUnitFromShortRow(t *testing.T) {
	// A row shorter than the header reads trailing columns as empty.
	content := unitBody("old-1,ACGT,T,T,F,T,F,|Good|,EVQ")

	u, err := ReadUnitFrom(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, u.Rows, 1)

	assert.Equal(t, "EVQ", u.Col(u.Rows[0], "fwr1_aa"))
	assert.Equal(t, "", u.Col(u.Rows[0], "cdr1_aa"))
	assert.Equal(t, "", u.Col(u.Rows[0], "fwr4_aa"))
}

func TestReadUnitFromMissingColumn(t *testing.T) {
	content := unitHeader + "\n" +
		"sequence,productive,complete_vdj\n" +
		"ACGT,T,T\n"

	_, err := ReadUnitFrom(strings.NewReader(content))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), "v_frameshift")
}

func TestReadUnitFromMalformedHeader(t *testing.T) {
	content := "sequence,productive\nACGT,T\n"

	_, err := ReadUnitFrom(strings.NewReader(content))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMalformedHeader))
}

func TestReadUnitFromEmpty(t *testing.T) {
	_, err := ReadUnitFrom(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMalformedHeader))
}

func TestReadUnitFromHeaderOnly(t *testing.T) {
	_, err := ReadUnitFrom(strings.NewReader(unitHeader + "\n"))
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingColumn))
}

func TestReadUnit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.csv")
	require.NoError(t, os.WriteFile(path, []byte(unitBody(
		"old-1,ACGT,T,T,F,T,F,|Good|,EVQ,GYT,WVR,ISA,RFT,ARD,WGQ",
	)), 0644))

	u, err := ReadUnit(path)
	require.NoError(t, err)
	assert.Len(t, u.Rows, 1)
}

func TestReadUnitMissingFile(t *testing.T) {
	_, err := ReadUnit(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestUnitHasColumn(t *testing.T) {
	u, err := ReadUnitFrom(strings.NewReader(unitBody()))
	require.NoError(t, err)

	assert.True(t, u.HasColumn("ANARCI_status"))
	assert.False(t, u.HasColumn("nonexistent"))
}
