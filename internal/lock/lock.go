// Package lock implements the database lock ladder and the WAL range
// lock for the test VFS.
//
// Locking is managed purely in process memory: every handle on the same
// canonical path shares one lock table entry, and no OS-level advisory
// locks are taken. That is sufficient for a test VFS whose readers and
// writers all live in one process, and it keeps lock state observable
// and resettable between scenarios.
package lock

import "sync"

// Level is a database lock level. Levels are strictly ordered; a handle
// moves up the ladder one compatible step at a time.
type Level int

const (
	LevelNone Level = iota
	LevelShared
	LevelReserved
	LevelPending
	LevelExclusive
)

// String returns the lower-case level name used in traces.
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelShared:
		return "shared"
	case LevelReserved:
		return "reserved"
	case LevelPending:
		return "pending"
	case LevelExclusive:
		return "exclusive"
	default:
		return "unknown"
	}
}

// ParseLevel maps a trace/scenario level name back to its Level.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "none":
		return LevelNone, true
	case "shared":
		return LevelShared, true
	case "reserved":
		return LevelReserved, true
	case "pending":
		return LevelPending, true
	case "exclusive":
		return LevelExclusive, true
	default:
		return LevelNone, false
	}
}

// entry is the shared lock table state for one canonical path.
type entry struct {
	shared int  // number of handles holding at least Shared
	writer bool // some handle holds Reserved or higher
	level  Level
}

// Registry is an in-process lock table keyed by canonical path.
//
// The registry itself is guarded by a mutex so handles opened from
// helper goroutines still observe one consistent table; the individual
// Handle is single-goroutine like the rest of the VFS.
type Registry struct {
	mu    sync.Mutex
	files map[string]*entry
}

// NewRegistry returns an empty lock table.
func NewRegistry() *Registry {
	return &Registry{files: make(map[string]*entry)}
}

// Handle is one connection's view of the lock on a path.
type Handle struct {
	reg     *Registry
	path    string
	current Level
}

// Open returns a lock handle for the given canonical path, starting
// unlocked.
func (r *Registry) Open(path string) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[path]; !ok {
		r.files[path] = &entry{}
	}
	return &Handle{reg: r, path: path}
}

// Current returns the level this handle holds.
func (h *Handle) Current() Level { return h.current }

// Acquire attempts to raise this handle's lock to the requested level and
// reports whether that exact level was reached.
//
// An Exclusive request that finds other shared holders acquires Pending
// instead and reports false; the caller retries once the readers drain.
func (h *Handle) Acquire(to Level) bool {
	if to <= h.current {
		return true
	}

	h.reg.mu.Lock()
	defer h.reg.mu.Unlock()
	e := h.reg.files[h.path]

	switch to {
	case LevelShared:
		// Readers are shut out while a writer is pending or exclusive.
		if e.writer && e.level >= LevelPending {
			return false
		}
		e.shared++
		h.current = LevelShared
		return true

	case LevelReserved:
		if e.writer {
			return false
		}
		e.writer = true
		e.level = LevelReserved
		h.current = LevelReserved
		return true

	case LevelExclusive:
		if e.writer && h.current < LevelReserved {
			return false
		}
		if h.current == LevelNone {
			// Exclusive is never requested from None.
			return false
		}
		e.writer = true
		if e.shared > 1 {
			// Other readers remain: park at Pending.
			e.level = LevelPending
			h.current = LevelPending
			return false
		}
		e.level = LevelExclusive
		h.current = LevelExclusive
		return true

	default:
		// Pending is only ever reached via a blocked Exclusive request.
		return false
	}
}

// Downgrade lowers this handle's lock to Shared or None, releasing the
// writer slot and the reader count as appropriate.
func (h *Handle) Downgrade(to Level) {
	if to >= h.current || (to != LevelNone && to != LevelShared) {
		return
	}

	h.reg.mu.Lock()
	defer h.reg.mu.Unlock()
	e := h.reg.files[h.path]

	if h.current >= LevelReserved {
		e.writer = false
		e.level = LevelNone
	}
	if to == LevelNone && h.current >= LevelShared {
		e.shared--
	}
	h.current = to
}

// Reserved reports whether any handle on this path holds Reserved or
// higher.
func (h *Handle) Reserved() bool {
	h.reg.mu.Lock()
	defer h.reg.mu.Unlock()
	return h.reg.files[h.path].writer
}

// Release drops whatever the handle holds. Called on file close.
func (h *Handle) Release() {
	h.Downgrade(LevelNone)
}
