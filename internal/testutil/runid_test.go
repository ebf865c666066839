package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_ProducesValidSortableIDs(t *testing.T) {
	gen := UUIDv7Generator{}

	a := gen.Generate()
	b := gen.Generate()

	ua, err := uuid.Parse(a)
	require.NoError(t, err)
	ub, err := uuid.Parse(b)
	require.NoError(t, err)

	assert.Equal(t, uuid.Version(7), ua.Version())
	assert.Equal(t, uuid.Version(7), ub.Version())
	assert.NotEqual(t, a, b)
}

func TestFixedRunIDGenerator_SequencesFromPrefix(t *testing.T) {
	gen := NewFixedRunIDGenerator("golden")

	assert.Equal(t, "golden-1", gen.Generate())
	assert.Equal(t, "golden-2", gen.Generate())
}

func TestFixedRunIDGenerator_DefaultPrefix(t *testing.T) {
	gen := NewFixedRunIDGenerator("")
	assert.Equal(t, "test-run-1", gen.Generate())
}
