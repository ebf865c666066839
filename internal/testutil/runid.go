package testutil

import (
	"fmt"

	"github.com/google/uuid"
)

// RunIDGenerator produces identifiers for recorded harness runs.
// Implemented by UUIDv7Generator (production) and FixedRunIDGenerator
// (tests and golden snapshots).
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs, so runs listed
// from the trace store sort by creation time.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedRunIDGenerator returns "<prefix>-1", "<prefix>-2", ... so recorded
// runs are byte-identical across test executions.
type FixedRunIDGenerator struct {
	prefix string
	n      int
}

// NewFixedRunIDGenerator creates a generator with the given prefix.
// An empty prefix defaults to "test-run".
func NewFixedRunIDGenerator(prefix string) *FixedRunIDGenerator {
	if prefix == "" {
		prefix = "test-run"
	}
	return &FixedRunIDGenerator{prefix: prefix}
}

// Generate returns the next fixed run ID.
func (g *FixedRunIDGenerator) Generate() string {
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
