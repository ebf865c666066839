package vfs

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/testvfs/internal/lock"
)

func openMain(t *testing.T, v *OS) File {
	t.Helper()
	f, err := v.Open("main.db", OpenOptions{Create: true, MainDB: true})
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestShm_PullGrowsSidecarToRegionBoundary(t *testing.T) {
	v, _ := newTestFS(t)
	f := openMain(t, v)

	data, err := f.ShmPull(1)
	require.NoError(t, err)
	assert.Len(t, data, ShmRegionSize)

	fi, err := os.Stat(shmPath(v.Root() + "/main.db"))
	require.NoError(t, err)
	assert.Equal(t, int64(2*ShmRegionSize), fi.Size())
}

func TestShm_PushRoundTrip(t *testing.T) {
	v, _ := newTestFS(t)
	f := openMain(t, v)

	out := make([]byte, ShmRegionSize)
	copy(out, "wal-index header")
	require.NoError(t, f.ShmPush(0, out))

	in, err := f.ShmPull(0)
	require.NoError(t, err)
	assert.Equal(t, out, in)
}

func TestShm_PushRejectsWrongSize(t *testing.T) {
	v, _ := newTestFS(t)
	f := openMain(t, v)

	assert.Error(t, f.ShmPush(0, []byte("short")))
}

func TestShm_DeleteRemovesSidecar(t *testing.T) {
	v, _ := newTestFS(t)
	f := openMain(t, v)

	_, err := f.ShmPull(0)
	require.NoError(t, err)
	require.NoError(t, f.ShmDelete())

	_, err = os.Stat(shmPath(v.Root() + "/main.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestShm_LockSharedBetweenHandles(t *testing.T) {
	v, _ := newTestFS(t)
	a := openMain(t, v)
	b := openMain(t, v)

	assert.True(t, a.ShmLock(0, 1, lock.RangeExclusive))
	assert.False(t, b.ShmLock(0, 1, lock.RangeShared), "range lock is shared per path")
	assert.True(t, b.ShmLock(1, 4, lock.RangeShared))

	assert.True(t, a.ShmLock(0, 1, lock.RangeUnlock))
	assert.True(t, b.ShmLock(0, 1, lock.RangeShared))
}
