package oas

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// Header is the metadata block embedded in the first line of an OAS data
// unit: study attributes such as Species, Chain, Isotype, BSource and the
// repository's own sequence counts. Keys preserves the order the attributes
// appear in, so downstream tables stay stable across runs.
type Header struct {
	Fields map[string]string
	Keys   []string
}

// Get returns the value for key, or "" if the header does not carry it.
func (h Header) Get(key string) string {
	return h.Fields[key]
}

// ParseHeader parses the first line of a data unit. OAS wraps the JSON
// object in an extra layer of CSV quoting: the whole object sits inside one
// quoted field with internal quotes doubled, e.g. `"{""Species"": ""human""}"`.
// Unwrapping is the reverse: trim whitespace, collapse doubled quotes, then
// drop the single enclosing quote pair.
func ParseHeader(line string) (Header, error) {
	s := strings.TrimSpace(line)
	s = strings.ReplaceAll(s, `""`, `"`)
	if len(s) < 2 {
		return Header{}, eris.Wrapf(ErrMalformedHeader, "line %q too short", line)
	}
	s = s[1 : len(s)-1]

	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return Header{}, eris.Wrapf(ErrMalformedHeader, "parse json: %v", err)
	}

	h := Header{
		Fields: make(map[string]string, len(raw)),
		Keys:   headerKeyOrder(s),
	}
	for k, v := range raw {
		h.Fields[k] = decodeHeaderValue(v)
	}
	return h, nil
}

// headerKeyOrder walks the JSON object token stream to recover the document
// order of its top-level keys. json.Unmarshal into a map would lose it.
func headerKeyOrder(s string) []string {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	// Opening brace.
	if _, err := dec.Token(); err != nil {
		return nil
	}

	var keys []string
	depth := 0
	expectKey := true
	for dec.More() || depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
			if depth == 0 {
				expectKey = true
			}
		case string:
			if depth == 0 && expectKey {
				keys = append(keys, t)
				expectKey = false
			} else if depth == 0 {
				expectKey = true
			}
		default:
			if depth == 0 {
				expectKey = true
			}
		}
	}
	return keys
}

// decodeHeaderValue renders a JSON value as the string it should carry in
// the metadata table. Numbers keep their source literal (json.Number).
func decodeHeaderValue(raw json.RawMessage) string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return string(raw)
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case nil:
		return ""
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return strings.TrimSpace(string(raw))
	}
}
