package canopy

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestStageIsKernelSurface(t *testing.T) {
	s := newHeadlessStage(t)
	if s.Kernel().Surface() != Surface(s) {
		t.Error("kernel surface is not the stage")
	}
	if !s.Kernel().Running() {
		t.Error("kernel should have a frame pending")
	}
	if w, h := s.Size(); w != 400 || h != 300 {
		t.Errorf("Size() = %d, %d, want 400, 300", w, h)
	}
}

func TestStageUpdateRunsFrames(t *testing.T) {
	s := newHeadlessStage(t)
	p := &testPlayer{}
	if err := s.Kernel().AddPlayer("p", p); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := s.Update(); err != nil {
			t.Fatalf("Update() = %v", err)
		}
	}
	if p.updates != 3 {
		t.Errorf("updates = %d, want 3", p.updates)
	}
}

func TestStageUpdateReturnsFatalError(t *testing.T) {
	buf := captureLog(t)
	s := newHeadlessStage(t)
	p := &testPlayer{failAt: 2}
	s.Kernel().AddPlayer("bad", p)

	if err := s.Update(); err != nil {
		t.Fatalf("first Update() = %v", err)
	}
	err := s.Update()
	if err == nil {
		t.Fatal("second Update() = nil, want error")
	}
	if IsTermination(err) {
		t.Error("a failing frame is not a normal termination")
	}
	if !errors.Is(s.Err(), err) {
		t.Errorf("Err() = %v, want %v", s.Err(), err)
	}
	if again := s.Update(); again != err {
		t.Errorf("Update after failure = %v, want the same error", again)
	}
	if p.updates != 2 {
		t.Errorf("updates = %d, want 2", p.updates)
	}
	if buf.Len() == 0 {
		t.Error("failure was not logged")
	}
}

func TestStageDestroyTerminates(t *testing.T) {
	captureLog(t)
	s := newHeadlessStage(t)
	p := &testPlayer{}
	s.Kernel().AddPlayer("p", p)

	s.Destroy()
	err := s.Update()
	if !errors.Is(err, ebiten.Termination) || !IsTermination(err) {
		t.Errorf("Update() = %v, want termination", err)
	}
	if p.destroyed != 1 || p.updates != 0 {
		t.Errorf("destroyed = %d updates = %d, want 1 and 0", p.destroyed, p.updates)
	}
}

func TestStagePlayerDestroysKernel(t *testing.T) {
	captureLog(t)
	s := newHeadlessStage(t)
	p := &testPlayer{}
	p.onUpdate = func() { s.Kernel().Destroy() }
	s.Kernel().AddPlayer("p", p)

	if err := s.Update(); !IsTermination(err) {
		t.Errorf("Update() = %v, want termination", err)
	}
}

func TestStageResizeListeners(t *testing.T) {
	s := newHeadlessStage(t)

	var sizes [][2]int
	h := s.OnResize(func(w, h int) { sizes = append(sizes, [2]int{w, h}) })

	s.Resize(400, 300)
	if len(sizes) != 0 {
		t.Errorf("unchanged size notified %d times", len(sizes))
	}

	w, hh := s.Layout(640, 480)
	if w != 640 || hh != 480 {
		t.Errorf("Layout() = %d, %d, want 640, 480", w, hh)
	}
	if len(sizes) != 1 || sizes[0] != [2]int{640, 480} {
		t.Errorf("sizes = %v, want [[640 480]]", sizes)
	}

	h.Remove()
	s.Resize(100, 100)
	if len(sizes) != 1 {
		t.Errorf("removed listener still notified: %v", sizes)
	}
}

func TestStagePauseStopsFrames(t *testing.T) {
	s := newHeadlessStage(t)
	p := &testPlayer{}
	s.Kernel().AddPlayer("p", p)

	s.Update()
	s.Kernel().Pause()
	s.Update()
	s.Update()
	if p.updates != 1 {
		t.Errorf("updates while paused = %d, want 1", p.updates)
	}

	s.Kernel().Resume()
	s.Update()
	if p.updates != 2 {
		t.Errorf("updates after resume = %d, want 2", p.updates)
	}
}
