package vfs

import (
	"errors"
	"io/fs"
	"syscall"
	"time"

	"github.com/roach88/testvfs/internal/lock"
)

// ShmRegionSize is the size of one shared-memory index region.
const ShmRegionSize = 32768

// OpenOptions controls how a file is opened.
type OpenOptions struct {
	// Create opens the file, creating it if it does not exist.
	Create bool

	// CreateNew creates the file and fails if it already exists.
	CreateNew bool

	// ReadOnly opens the file without write access.
	ReadOnly bool

	// MainDB marks the handle as the main database file. Main handles
	// participate in the lock ladder and own the -shm sidecar.
	MainDB bool
}

// FS is the filesystem surface exercised by fault scenarios.
type FS interface {
	// Open opens name relative to the filesystem root.
	Open(name string, opts OpenOptions) (File, error)

	// Delete removes the named file.
	Delete(name string) error

	// Exists reports whether the named file exists and is a regular file.
	Exists(name string) (bool, error)

	// Access reports whether the named file can be accessed, and written
	// to when write is set. Subject to io-error injection.
	Access(name string, write bool) (bool, error)

	// TempFilename returns a fresh name for a temporary file.
	TempFilename() string

	// FullPath resolves name to an absolute, lexically normalized path.
	FullPath(name string) (string, error)

	// Now returns the simulated time when one is set, else wall time.
	Now() time.Time
}

// File is an open handle on the instrumented filesystem.
type File interface {
	// ReadAt reads len(p) bytes at the given offset.
	ReadAt(p []byte, off int64) (int, error)

	// WriteAt writes p at the given offset. Subject to io-error and
	// disk-full injection.
	WriteAt(p []byte, off int64) (int, error)

	// Truncate resizes the file.
	Truncate(size int64) error

	// Sync flushes the file. A full sync also flushes metadata.
	Sync(full bool) error

	// Size returns the current file size in bytes.
	Size() (int64, error)

	// Lock raises the handle's lock and reports whether the requested
	// level was reached.
	Lock(to lock.Level) (bool, error)

	// Unlock lowers the handle's lock to Shared or None.
	Unlock(to lock.Level) (bool, error)

	// CheckReservedLock reports whether any handle on the same path
	// holds Reserved or higher.
	CheckReservedLock() (bool, error)

	// CurrentLock returns the level this handle holds.
	CurrentLock() lock.Level

	// Moved reports whether the file was deleted or replaced behind
	// this handle.
	Moved() (bool, error)

	// ShmPull reads the given shared-memory region, growing the
	// sidecar file as needed.
	ShmPull(region int) ([]byte, error)

	// ShmPush writes the given shared-memory region and syncs the
	// sidecar file.
	ShmPush(region int, data []byte) error

	// ShmLock applies a range lock to sidecar slots [start, end).
	ShmLock(start, end int, kind lock.RangeKind) bool

	// ShmDelete removes the sidecar file.
	ShmDelete() error

	// Close releases locks, drops the open-file count and closes the
	// handle.
	Close() error
}

// Outcome names for traces and scenario expectations.
const (
	OutcomeOK       = "ok"
	OutcomeIOError  = "io_error"
	OutcomeDiskFull = "disk_full"
	OutcomeNotFound = "not_found"
	OutcomeBusy     = "busy"
	OutcomeError    = "error"
)

// ErrBusy reports a lock request that could not reach its target level.
var ErrBusy = errors.New("lock busy")

// Kind maps an operation error to its trace outcome name.
func Kind(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, syscall.ENOSPC):
		return OutcomeDiskFull
	case errors.Is(err, syscall.EIO):
		return OutcomeIOError
	case errors.Is(err, fs.ErrNotExist):
		return OutcomeNotFound
	case errors.Is(err, ErrBusy):
		return OutcomeBusy
	default:
		return OutcomeError
	}
}
