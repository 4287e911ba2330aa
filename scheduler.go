package canopy

// FrameHandle identifies a pending frame request. The zero handle means
// "nothing scheduled".
type FrameHandle uint64

// FrameFunc is a frame callback. A non-nil error is fatal to the host loop.
type FrameFunc func() error

// FrameScheduler delivers frame callbacks, one per display frame. At most one
// request is pending at a time; requesting again replaces it.
type FrameScheduler interface {
	RequestFrame(fn FrameFunc) FrameHandle
	CancelFrame(h FrameHandle)
}

// frameSlot holds the single pending frame request. Shared by Stage and
// ManualScheduler.
type frameSlot struct {
	pending FrameFunc
	handle  FrameHandle
	next    FrameHandle
}

func (s *frameSlot) request(fn FrameFunc) FrameHandle {
	s.next++
	s.pending = fn
	s.handle = s.next
	return s.handle
}

func (s *frameSlot) cancel(h FrameHandle) {
	if h != 0 && h == s.handle {
		s.pending = nil
		s.handle = 0
	}
}

// fire runs the pending callback, if any. The slot is cleared before the
// call so the callback can request the following frame.
func (s *frameSlot) fire() (ran bool, err error) {
	fn := s.pending
	if fn == nil {
		return false, nil
	}
	s.pending = nil
	s.handle = 0
	return true, fn()
}

// ManualScheduler is a FrameScheduler advanced explicitly with Step. It is
// used in tests and headless runs.
type ManualScheduler struct {
	slot   frameSlot
	frames int
}

// NewManualScheduler creates an idle ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// RequestFrame implements FrameScheduler.
func (m *ManualScheduler) RequestFrame(fn FrameFunc) FrameHandle {
	return m.slot.request(fn)
}

// CancelFrame implements FrameScheduler.
func (m *ManualScheduler) CancelFrame(h FrameHandle) {
	m.slot.cancel(h)
}

// Pending reports whether a frame is scheduled.
func (m *ManualScheduler) Pending() bool {
	return m.slot.pending != nil
}

// Frames returns how many callbacks have run.
func (m *ManualScheduler) Frames() int {
	return m.frames
}

// Step runs the pending frame callback. It reports false when nothing was
// scheduled.
func (m *ManualScheduler) Step() (bool, error) {
	ran, err := m.slot.fire()
	if ran {
		m.frames++
	}
	return ran, err
}
