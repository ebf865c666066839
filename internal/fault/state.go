package fault

// State is the instrumentation and fault-injection state for one test run.
//
// The zero value is ready to use: every counter starts at zero, which
// means "no faults armed, simulated clock off".
//
// Not safe for concurrent use. See the package documentation.
type State struct {
	syncCount     int64
	fullsyncCount int64

	openFileCount int64

	// currentTime is the simulated clock in Unix seconds.
	// Zero means the real clock is used.
	currentTime int64

	ioErrorPending int64
	ioErrorHit     int64
	ioErrorHardhit int64
	ioErrorBenign  int64
	ioErrorPersist int64

	diskfullPending int64
	diskfull        int64
}

// NewState returns a fresh State with all counters at zero.
func NewState() *State {
	return &State{}
}

// IncSyncCount records one sync operation.
func (s *State) IncSyncCount() { s.syncCount++ }

// SyncCount returns the number of sync operations recorded.
func (s *State) SyncCount() int64 { return s.syncCount }

// IncFullsyncCount records one full (metadata-inclusive) sync operation.
func (s *State) IncFullsyncCount() { s.fullsyncCount++ }

// FullsyncCount returns the number of full sync operations recorded.
func (s *State) FullsyncCount() int64 { return s.fullsyncCount }

// IncOpenFileCount records one opened file handle.
func (s *State) IncOpenFileCount() { s.openFileCount++ }

// DecOpenFileCount records one closed file handle.
func (s *State) DecOpenFileCount() { s.openFileCount-- }

// OpenFileCount returns the number of file handles currently open.
func (s *State) OpenFileCount() int64 { return s.openFileCount }

// SetCurrentTime sets the simulated clock, in Unix seconds.
// Setting zero switches back to the real clock.
func (s *State) SetCurrentTime(t int64) { s.currentTime = t }

// CurrentTime returns the simulated clock, in Unix seconds.
// Zero means no simulated time is set.
func (s *State) CurrentTime() int64 { return s.currentTime }

// SetIOErrorPending arms an io-error after n-1 successful operations.
// The counter is decremented on every injection check, including past
// zero; no clamping is performed.
func (s *State) SetIOErrorPending(n int64) { s.ioErrorPending = n }

// IOErrorPending returns the remaining countdown to the armed io-error.
func (s *State) IOErrorPending() int64 { return s.ioErrorPending }

// decIOErrorPending decrements the pending counter and returns the value
// it held before the decrement.
func (s *State) decIOErrorPending() int64 {
	v := s.ioErrorPending
	s.ioErrorPending--
	return v
}

// SetIOErrorHit sets the hit flag/counter directly.
func (s *State) SetIOErrorHit(n int64) { s.ioErrorHit = n }

// IOErrorHit returns how many times an io-error has fired.
func (s *State) IOErrorHit() int64 { return s.ioErrorHit }

// IOErrorHardhit returns how many non-benign io-errors have fired.
func (s *State) IOErrorHardhit() int64 { return s.ioErrorHardhit }

// SetIOErrorBenign marks subsequent injected errors as benign (expected
// and tolerated by the caller); benign hits are excluded from hardhit.
func (s *State) SetIOErrorBenign(n int64) { s.ioErrorBenign = n }

// IOErrorBenign returns the benign flag.
func (s *State) IOErrorBenign() int64 { return s.ioErrorBenign }

// SetIOErrorPersist makes every operation fail once an io-error has hit,
// instead of firing only at the armed countdown.
func (s *State) SetIOErrorPersist(n int64) { s.ioErrorPersist = n }

// IOErrorPersist returns the persist flag.
func (s *State) IOErrorPersist() int64 { return s.ioErrorPersist }

// SetDiskfullPending arms a disk-full condition after n-1 successful
// writes. Once fired the condition persists until the state is reset.
func (s *State) SetDiskfullPending(n int64) { s.diskfullPending = n }

// DiskfullPending returns the remaining countdown to the armed disk-full.
func (s *State) DiskfullPending() int64 { return s.diskfullPending }

// Diskfull reports whether a simulated disk-full condition has fired.
func (s *State) Diskfull() int64 { return s.diskfull }

// Reset returns every counter and flag to zero, for reuse of a State
// across scenarios.
func (s *State) Reset() { *s = State{} }

// Counters returns a snapshot of all counters keyed by their canonical
// names, for final-state assertions and trace recording.
func (s *State) Counters() map[string]int64 {
	return map[string]int64{
		"sync_count":       s.syncCount,
		"fullsync_count":   s.fullsyncCount,
		"open_file_count":  s.openFileCount,
		"current_time":     s.currentTime,
		"io_error_pending": s.ioErrorPending,
		"io_error_hit":     s.ioErrorHit,
		"io_error_hardhit": s.ioErrorHardhit,
		"io_error_benign":  s.ioErrorBenign,
		"io_error_persist": s.ioErrorPersist,
		"diskfull_pending": s.diskfullPending,
		"diskfull":         s.diskfull,
	}
}

// Set assigns a counter by its canonical name, as used in scenario setup
// sections. Unknown names report false.
func (s *State) Set(name string, value int64) bool {
	switch name {
	case "sync_count":
		s.syncCount = value
	case "fullsync_count":
		s.fullsyncCount = value
	case "open_file_count":
		s.openFileCount = value
	case "current_time":
		s.currentTime = value
	case "io_error_pending":
		s.ioErrorPending = value
	case "io_error_hit":
		s.ioErrorHit = value
	case "io_error_hardhit":
		s.ioErrorHardhit = value
	case "io_error_benign":
		s.ioErrorBenign = value
	case "io_error_persist":
		s.ioErrorPersist = value
	case "diskfull_pending":
		s.diskfullPending = value
	case "diskfull":
		s.diskfull = value
	default:
		return false
	}
	return true
}
