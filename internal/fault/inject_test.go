package fault

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInjectIOError_CountdownFiresOnFinalStep(t *testing.T) {
	s := NewState()
	s.SetIOErrorPending(3)

	// Two successful operations, then the error fires.
	assert.False(t, s.InjectIOError())
	assert.False(t, s.InjectIOError())
	assert.True(t, s.InjectIOError())

	assert.Equal(t, int64(1), s.IOErrorHit())
	assert.Equal(t, int64(1), s.IOErrorHardhit())
}

func TestInjectIOError_DisarmedNeverFires(t *testing.T) {
	s := NewState()

	for i := 0; i < 10; i++ {
		assert.False(t, s.InjectIOError())
	}
	assert.Zero(t, s.IOErrorHit())
}

func TestInjectIOError_PendingDecrementsPastZero(t *testing.T) {
	s := NewState()
	s.SetIOErrorPending(1)

	assert.True(t, s.InjectIOError())
	assert.Equal(t, int64(0), s.IOErrorPending())

	// Without persist, a fired error does not repeat, and the
	// countdown keeps decrementing unchecked.
	assert.False(t, s.InjectIOError())
	assert.False(t, s.InjectIOError())
	assert.Equal(t, int64(-2), s.IOErrorPending())
	assert.Equal(t, int64(1), s.IOErrorHit())
}

func TestInjectIOError_PersistKeepsFailingAfterFirstHit(t *testing.T) {
	s := NewState()
	s.SetIOErrorPersist(1)
	s.SetIOErrorPending(2)

	assert.False(t, s.InjectIOError())
	assert.True(t, s.InjectIOError())

	// Every subsequent check fails while persist is set.
	assert.True(t, s.InjectIOError())
	assert.True(t, s.InjectIOError())
	assert.Equal(t, int64(3), s.IOErrorHit())
}

func TestInjectIOError_BenignSkipsHardhit(t *testing.T) {
	s := NewState()
	s.SetIOErrorBenign(1)
	s.SetIOErrorPending(1)

	assert.True(t, s.InjectIOError())
	assert.Equal(t, int64(1), s.IOErrorHit())
	assert.Zero(t, s.IOErrorHardhit())
}

func TestInjectDiskFull_CountdownThenLatch(t *testing.T) {
	s := NewState()
	s.SetDiskfullPending(3)

	assert.False(t, s.InjectDiskFull())
	assert.False(t, s.InjectDiskFull())
	assert.Equal(t, int64(1), s.DiskfullPending())

	assert.True(t, s.InjectDiskFull())
	assert.Equal(t, int64(1), s.Diskfull())
	assert.Equal(t, int64(1), s.IOErrorHit())
	assert.Equal(t, int64(1), s.IOErrorHardhit())

	// The condition latches: pending stays at one and every further
	// write keeps failing.
	assert.True(t, s.InjectDiskFull())
	assert.True(t, s.InjectDiskFull())
	assert.Equal(t, int64(1), s.DiskfullPending())
}

func TestInjectDiskFull_DisarmedNeverFires(t *testing.T) {
	s := NewState()

	for i := 0; i < 5; i++ {
		assert.False(t, s.InjectDiskFull())
	}
	assert.Zero(t, s.Diskfull())
}

func TestInjectDiskFull_BenignSkipsHardhit(t *testing.T) {
	s := NewState()
	s.SetIOErrorBenign(1)
	s.SetDiskfullPending(1)

	assert.True(t, s.InjectDiskFull())
	assert.Equal(t, int64(1), s.Diskfull())
	assert.Zero(t, s.IOErrorHardhit())
}
