package lock

import "sync"

// SlotCount is the number of lock slots in the shared-memory index.
const SlotCount = 8

// RangeKind is the mode of a range lock on shared-memory index slots.
type RangeKind int

const (
	RangeUnlock RangeKind = iota
	RangeShared
	RangeExclusive
)

// RangeLock guards the shared-memory index with per-slot shared and
// exclusive locks. Like Registry it is process-memory only; all handles
// on the same path share one RangeLock.
type RangeLock struct {
	mu        sync.Mutex
	shared    [SlotCount]int
	exclusive [SlotCount]bool
}

// NewRangeLock returns a RangeLock with all slots free.
func NewRangeLock() *RangeLock {
	return &RangeLock{}
}

// Lock applies kind to the slot range [start, end) and reports whether
// the whole range could be locked. Partially conflicting requests leave
// the range untouched.
func (r *RangeLock) Lock(start, end int, kind RangeKind) bool {
	if start < 0 || end > SlotCount || start >= end {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch kind {
	case RangeShared:
		for i := start; i < end; i++ {
			if r.exclusive[i] {
				return false
			}
		}
		for i := start; i < end; i++ {
			r.shared[i]++
		}
		return true

	case RangeExclusive:
		for i := start; i < end; i++ {
			if r.exclusive[i] || r.shared[i] > 0 {
				return false
			}
		}
		for i := start; i < end; i++ {
			r.exclusive[i] = true
		}
		return true

	case RangeUnlock:
		for i := start; i < end; i++ {
			if r.exclusive[i] {
				r.exclusive[i] = false
			} else if r.shared[i] > 0 {
				r.shared[i]--
			}
		}
		return true

	default:
		return false
	}
}
