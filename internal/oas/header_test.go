package oas

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	line := `"{""Run"": 12345, ""Species"": ""human"", ""Chain"": ""Heavy"", ""Isotype"": ""IGHG"", ""Unique sequences"": 88799}"` + "\n"

	h, err := ParseHeader(line)
	require.NoError(t, err)

	assert.Equal(t, "12345", h.Get("Run"))
	assert.Equal(t, "human", h.Get("Species"))
	assert.Equal(t, "Heavy", h.Get("Chain"))
	assert.Equal(t, "IGHG", h.Get("Isotype"))
	assert.Equal(t, "88799", h.Get("Unique sequences"))
	assert.Equal(t, []string{"Run", "Species", "Chain", "Isotype", "Unique sequences"}, h.Keys)
}

func TestParseHeaderKeyOrderPreserved(t *testing.T) {
	line := `"{""Z"": 1, ""A"": 2, ""M"": 3}"`

	h, err := ParseHeader(line)
	require.NoError(t, err)
	assert.Equal(t, []string{"Z", "A", "M"}, h.Keys)
}

func TestParseHeaderValueTypes(t *testing.T) {
	line := `"{""count"": 10, ""ratio"": 0.25, ""flag"": true, ""absent"": null, ""name"": ""bcr""}"`

	h, err := ParseHeader(line)
	require.NoError(t, err)

	assert.Equal(t, "10", h.Get("count"))
	assert.Equal(t, "0.25", h.Get("ratio"))
	assert.Equal(t, "true", h.Get("flag"))
	assert.Equal(t, "", h.Get("absent"))
	assert.Equal(t, "bcr", h.Get("name"))
}

func TestParseHeaderTrimsWhitespace(t *testing.T) {
	line := "   " + `"{""Chain"": ""Light""}"` + "  \r\n"

	h, err := ParseHeader(line)
	require.NoError(t, err)
	assert.Equal(t, "Light", h.Get("Chain"))
}

func TestParseHeaderMalformed(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"not json", `"not a json object"`},
		{"bare text", "sequence_id,sequence"},
		{"empty", ""},
		{"single char", `"`},
		{"truncated object", `"{""Chain"": ""Heavy"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseHeader(tc.line)
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrMalformedHeader))
		})
	}
}

func TestHeaderGetMissingKey(t *testing.T) {
	h, err := ParseHeader(`"{""Chain"": ""Heavy""}"`)
	require.NoError(t, err)
	assert.Equal(t, "", h.Get("Species"))
}
