package fault

// InjectIOError decides whether the next instrumented operation should
// fail with a simulated io-error.
//
// The pending countdown is decremented on every call. The error fires
// when the countdown reaches its final step, or on every call once an
// error has hit and the persist flag is set. Firing increments hit, and
// hardhit unless the benign flag is set.
func (s *State) InjectIOError() bool {
	if (s.ioErrorPersist != 0 && s.ioErrorHit != 0) || s.decIOErrorPending() == 1 {
		s.ioErrorHit++
		if s.ioErrorBenign == 0 {
			s.ioErrorHardhit++
		}
		return true
	}
	return false
}

// InjectDiskFull decides whether the next instrumented write should fail
// with a simulated disk-full condition.
//
// While the countdown is above one it is decremented without firing. At
// one, the condition fires: the diskfull flag is latched, the io-error
// hit flag is forced on, and hardhit is incremented unless benign. The
// countdown is deliberately left at one so every subsequent write keeps
// failing until the state is reset.
func (s *State) InjectDiskFull() bool {
	if s.diskfullPending != 0 {
		if s.diskfullPending == 1 {
			if s.ioErrorBenign == 0 {
				s.ioErrorHardhit++
			}
			s.diskfull = 1
			s.ioErrorHit = 1
			return true
		}
		s.diskfullPending--
	}
	return false
}
