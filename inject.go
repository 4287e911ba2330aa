package canopy

// syntheticPointerEvent is a single injected pointer event in stage
// coordinates, matching what a screenshot shows.
type syntheticPointerEvent struct {
	x, y  float64
	moved bool
}

// InjectPress queues a pointer press at the given stage coordinates. The
// event is consumed on the next frame and replaces real input for that
// frame.
func (s *Stage) InjectPress(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{x: x, y: y})
}

// InjectMove queues a pointer move to the given stage coordinates.
func (s *Stage) InjectMove(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{x: x, y: y, moved: true})
}

// InjectClick queues a press at the given stage coordinates. Leaves react
// on press, so a click is a single event.
func (s *Stage) InjectClick(x, y float64) {
	s.InjectPress(x, y)
}

// InjectSwipe queues moves from (fromX, fromY) to (toX, toY), linearly
// interpolated over frames frames. Minimum frames is 2.
func (s *Stage) InjectSwipe(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(frames-1)
		s.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
}

// pendingInjections returns the number of queued events.
func (s *Stage) pendingInjections() int {
	return len(s.injectQueue)
}

// processInjectedInput pops one event from the inject queue and fires the
// matching pointer listeners. Returns true if an event was consumed.
func (s *Stage) processInjectedInput() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	ctx := PointerContext{X: evt.x, Y: evt.y, Injected: true}
	if evt.moved {
		s.pointerMove.fire(ctx)
	} else {
		s.pointerDown.fire(ctx)
	}
	return true
}
