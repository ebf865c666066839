package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandle_SharedLadder(t *testing.T) {
	reg := NewRegistry()
	h := reg.Open("/tmp/main.db")

	assert.Equal(t, LevelNone, h.Current())
	assert.True(t, h.Acquire(LevelShared))
	assert.Equal(t, LevelShared, h.Current())

	// Acquiring a level at or below the current one is a no-op success.
	assert.True(t, h.Acquire(LevelShared))
	assert.True(t, h.Acquire(LevelNone))
	assert.Equal(t, LevelShared, h.Current())
}

func TestHandle_SingleWriter(t *testing.T) {
	reg := NewRegistry()
	a := reg.Open("/tmp/main.db")
	b := reg.Open("/tmp/main.db")

	assert.True(t, a.Acquire(LevelShared))
	assert.True(t, b.Acquire(LevelShared))

	assert.True(t, a.Acquire(LevelReserved))
	assert.False(t, b.Acquire(LevelReserved), "second reserved must be refused")

	assert.True(t, a.Reserved())
	assert.True(t, b.Reserved(), "reserved is visible from every handle")

	a.Downgrade(LevelShared)
	assert.False(t, a.Reserved())
	assert.True(t, b.Acquire(LevelReserved))
}

func TestHandle_ExclusiveParksAtPendingWhileReadersRemain(t *testing.T) {
	reg := NewRegistry()
	writer := reg.Open("/tmp/main.db")
	reader := reg.Open("/tmp/main.db")

	assert.True(t, writer.Acquire(LevelShared))
	assert.True(t, reader.Acquire(LevelShared))
	assert.True(t, writer.Acquire(LevelReserved))

	// Another reader still holds shared: exclusive stops at pending.
	assert.False(t, writer.Acquire(LevelExclusive))
	assert.Equal(t, LevelPending, writer.Current())

	// New readers are shut out while the writer is pending.
	late := reg.Open("/tmp/main.db")
	assert.False(t, late.Acquire(LevelShared))

	// Once the reader drains, exclusive succeeds.
	reader.Downgrade(LevelNone)
	assert.True(t, writer.Acquire(LevelExclusive))
	assert.Equal(t, LevelExclusive, writer.Current())
}

func TestHandle_ExclusiveFromNoneRefused(t *testing.T) {
	reg := NewRegistry()
	h := reg.Open("/tmp/main.db")

	assert.False(t, h.Acquire(LevelExclusive))
	assert.Equal(t, LevelNone, h.Current())
}

func TestHandle_ReleaseFreesEverything(t *testing.T) {
	reg := NewRegistry()
	a := reg.Open("/tmp/main.db")
	b := reg.Open("/tmp/main.db")

	assert.True(t, a.Acquire(LevelShared))
	assert.True(t, a.Acquire(LevelReserved))
	a.Release()
	assert.Equal(t, LevelNone, a.Current())

	assert.True(t, b.Acquire(LevelShared))
	assert.True(t, b.Acquire(LevelReserved))
	assert.True(t, b.Acquire(LevelExclusive))
}

func TestHandle_SeparatePathsDoNotInterfere(t *testing.T) {
	reg := NewRegistry()
	a := reg.Open("/tmp/a.db")
	b := reg.Open("/tmp/b.db")

	assert.True(t, a.Acquire(LevelShared))
	assert.True(t, a.Acquire(LevelReserved))
	assert.True(t, b.Acquire(LevelShared))
	assert.True(t, b.Acquire(LevelReserved))
}

func TestParseLevel_RoundTrip(t *testing.T) {
	for _, l := range []Level{LevelNone, LevelShared, LevelReserved, LevelPending, LevelExclusive} {
		parsed, ok := ParseLevel(l.String())
		assert.True(t, ok)
		assert.Equal(t, l, parsed)
	}

	_, ok := ParseLevel("bogus")
	assert.False(t, ok)
}
