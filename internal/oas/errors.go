package oas

import "github.com/rotisserie/eris"

// Sentinel errors for the annotated-unit reader. Callers match them with
// eris.Is after unwrapping whatever context was added along the way.
var (
	// ErrMalformedHeader means the first line of a data unit was not a valid
	// JSON object after removing the CSV quote wrapper.
	ErrMalformedHeader = eris.New("oas: malformed metadata header")

	// ErrMissingColumn means a column the filter depends on is absent from
	// the unit's CSV body.
	ErrMissingColumn = eris.New("oas: missing required column")
)
