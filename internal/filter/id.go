package filter

import "github.com/google/uuid"

// IDGenerator produces sequence identifiers for retained rows. The filter
// takes it as a capability so tests can substitute a deterministic source.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random 128-bit UUIDs. Collisions across a run are
// probabilistically negligible; identifiers are not content-derived and
// change on every rerun.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }
