package vfs

import (
	"fmt"
	"io/fs"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/roach88/testvfs/internal/fault"
	"github.com/roach88/testvfs/internal/lock"
)

// OS is the file-backed FS implementation. All paths are resolved
// relative to Root, locks are kept in process memory, and every
// instrumented operation consults State.
type OS struct {
	root  string
	state *fault.State
	locks *lock.Registry

	mu     sync.Mutex
	ranges map[string]*lock.RangeLock
	tempN  int64
}

// NewOS returns an instrumented filesystem rooted at root.
func NewOS(root string, state *fault.State) *OS {
	return &OS{
		root:   root,
		state:  state,
		locks:  lock.NewRegistry(),
		ranges: make(map[string]*lock.RangeLock),
	}
}

// Root returns the directory all relative names resolve against.
func (v *OS) Root() string { return v.root }

// State returns the fault state this filesystem consults.
func (v *OS) State() *fault.State { return v.state }

func (v *OS) rangeLock(path string) *lock.RangeLock {
	v.mu.Lock()
	defer v.mu.Unlock()
	rl, ok := v.ranges[path]
	if !ok {
		rl = lock.NewRangeLock()
		v.ranges[path] = rl
	}
	return rl
}

// Open opens name under the filesystem root.
//
// A main-database open of a file that vanished externally also removes
// any stale -shm sidecar left behind, so a fresh database does not pick
// up a previous run's shared-memory index.
func (v *OS) Open(name string, opts OpenOptions) (File, error) {
	path, err := v.FullPath(name)
	if err != nil {
		return nil, err
	}

	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: path, Err: syscall.EISDIR}
	}

	shm := shmPath(path)
	if opts.MainDB {
		if _, err := os.Stat(path); err != nil {
			os.Remove(shm)
		}
	}

	flag := os.O_RDWR
	if opts.ReadOnly {
		flag = os.O_RDONLY
	}
	switch {
	case opts.CreateNew:
		flag |= os.O_CREATE | os.O_EXCL
	case opts.Create:
		flag |= os.O_CREATE
	}

	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	h := &osFile{
		fs:   v,
		f:    f,
		path: path,
		shm:  shm,
		info: fi,
		wal:  v.rangeLock(path),
	}
	if opts.MainDB {
		h.lk = v.locks.Open(path)
	}

	v.state.IncOpenFileCount()
	return h, nil
}

// Delete removes the named file.
func (v *OS) Delete(name string) error {
	path, err := v.FullPath(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Exists reports whether name exists and is a regular file.
func (v *OS) Exists(name string) (bool, error) {
	path, err := v.FullPath(name)
	if err != nil {
		return false, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return fi.Mode().IsRegular(), nil
}

// Access reports whether name is accessible, and writable when write is
// set. Subject to io-error injection.
func (v *OS) Access(name string, write bool) (bool, error) {
	path, err := v.FullPath(name)
	if err != nil {
		return false, err
	}

	if v.state.InjectIOError() {
		return false, &fs.PathError{Op: "access", Path: path, Err: syscall.EIO}
	}

	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if !write {
		return true, nil
	}
	return fi.Mode().Perm()&0o200 != 0, nil
}

// TempFilename returns a fresh temporary file name.
func (v *OS) TempFilename() string {
	v.mu.Lock()
	n := v.tempN
	v.tempN++
	v.mu.Unlock()
	return tempFilename(n)
}

// FullPath resolves name to an absolute, lexically normalized path.
func (v *OS) FullPath(name string) (string, error) {
	return fullPath(v.root, name)
}

// Now returns the simulated clock when set, else wall time.
func (v *OS) Now() time.Time {
	if t := v.state.CurrentTime(); t > 0 {
		return time.Unix(t, 0).UTC()
	}
	return time.Now()
}

// osFile is an open handle produced by OS.Open.
type osFile struct {
	fs   *OS
	f    *os.File
	path string
	shm  string
	info os.FileInfo
	lk   *lock.Handle
	wal  *lock.RangeLock
}

func (h *osFile) ReadAt(p []byte, off int64) (int, error) {
	return h.f.ReadAt(p, off)
}

// WriteAt performs the write and then consults the injection state; an
// armed fault overrides a successful write, matching the instrumented
// OS layer this mirrors.
func (h *osFile) WriteAt(p []byte, off int64) (int, error) {
	n, err := h.f.WriteAt(p, off)

	if h.fs.state.InjectIOError() {
		return 0, &fs.PathError{Op: "write", Path: h.path, Err: syscall.EIO}
	}
	if h.fs.state.InjectDiskFull() {
		return 0, &fs.PathError{Op: "write", Path: h.path, Err: syscall.ENOSPC}
	}
	return n, err
}

func (h *osFile) Truncate(size int64) error {
	return h.f.Truncate(size)
}

// Sync counts before flushing: the counters record sync attempts, not
// sync successes.
func (h *osFile) Sync(full bool) error {
	if full {
		h.fs.state.IncFullsyncCount()
	}
	h.fs.state.IncSyncCount()
	return h.f.Sync()
}

func (h *osFile) Size() (int64, error) {
	fi, err := h.f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func (h *osFile) Lock(to lock.Level) (bool, error) {
	if h.lk == nil {
		return false, fmt.Errorf("lock on non-database handle %s", h.path)
	}
	return h.lk.Acquire(to), nil
}

func (h *osFile) Unlock(to lock.Level) (bool, error) {
	if h.lk == nil {
		return false, fmt.Errorf("unlock on non-database handle %s", h.path)
	}
	h.lk.Downgrade(to)
	return true, nil
}

func (h *osFile) CheckReservedLock() (bool, error) {
	if h.lk == nil {
		return false, nil
	}
	return h.lk.Reserved(), nil
}

func (h *osFile) CurrentLock() lock.Level {
	if h.lk == nil {
		return lock.LevelNone
	}
	return h.lk.Current()
}

// Moved reports whether the file at this handle's path is gone or is no
// longer the file this handle has open.
func (h *osFile) Moved() (bool, error) {
	fi, err := os.Stat(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return !os.SameFile(h.info, fi), nil
}

func (h *osFile) openShm() (*os.File, error) {
	return os.OpenFile(h.shm, os.O_RDWR|os.O_CREATE, 0o644)
}

// growShm extends the sidecar so the given region exists.
func growShm(f *os.File, region int) error {
	fi, err := f.Stat()
	if err != nil {
		return err
	}
	min := int64(region+1) * ShmRegionSize
	if fi.Size() < min {
		return f.Truncate(min)
	}
	return nil
}

func (h *osFile) ShmPull(region int) ([]byte, error) {
	f, err := h.openShm()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := growShm(f, region); err != nil {
		return nil, err
	}

	data := make([]byte, ShmRegionSize)
	if _, err := f.ReadAt(data, int64(region)*ShmRegionSize); err != nil {
		return nil, err
	}
	return data, nil
}

func (h *osFile) ShmPush(region int, data []byte) error {
	if len(data) != ShmRegionSize {
		return fmt.Errorf("shm region must be %d bytes, got %d", ShmRegionSize, len(data))
	}

	f, err := h.openShm()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := growShm(f, region); err != nil {
		return err
	}
	if _, err := f.WriteAt(data, int64(region)*ShmRegionSize); err != nil {
		return err
	}
	return f.Sync()
}

func (h *osFile) ShmLock(start, end int, kind lock.RangeKind) bool {
	return h.wal.Lock(start, end, kind)
}

func (h *osFile) ShmDelete() error {
	return os.Remove(h.shm)
}

func (h *osFile) Close() error {
	if h.lk != nil {
		h.lk.Release()
		h.lk = nil
	}
	h.fs.state.DecOpenFileCount()
	return h.f.Close()
}
