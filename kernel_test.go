package canopy

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
	"time"
)

// captureLog redirects the package logger into a buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := logger
	SetLogger(log.New(&buf, "", 0))
	t.Cleanup(func() { SetLogger(prev) })
	return &buf
}

type testPlayer struct {
	PlayerBase
	attached   int
	updates    int
	dts        []float64
	nows       []float64
	failAt     int
	destroyed  int
	destroyErr error
	onUpdate   func()
}

func (p *testPlayer) Attach(k *Kernel) {
	p.attached++
	p.PlayerBase.Attach(k)
}

func (p *testPlayer) Update(dt, now float64) error {
	p.updates++
	p.dts = append(p.dts, dt)
	p.nows = append(p.nows, now)
	if p.onUpdate != nil {
		p.onUpdate()
	}
	if p.failAt > 0 && p.updates == p.failAt {
		return errors.New("boom")
	}
	return nil
}

func (p *testPlayer) Destroy() error {
	p.destroyed++
	return p.destroyErr
}

func newTestKernel(t *testing.T) (*Kernel, *ManualScheduler, *ManualClock) {
	t.Helper()
	clock := NewManualClock(testEpoch)
	sched := NewManualScheduler()
	k := NewKernel(nil, sched, WithClock(clock))
	return k, sched, clock
}

// runFrames advances the clock by step and fires up to n frames.
func runFrames(t *testing.T, sched *ManualScheduler, clock *ManualClock, n int, step time.Duration) error {
	t.Helper()
	for i := 0; i < n; i++ {
		clock.Advance(step)
		ran, err := sched.Step()
		if err != nil {
			return err
		}
		if !ran {
			return nil
		}
	}
	return nil
}

func TestKernelRequestsFirstFrame(t *testing.T) {
	k, sched, _ := newTestKernel(t)
	if !sched.Pending() {
		t.Fatal("NewKernel should request a frame")
	}
	if !k.Running() {
		t.Error("Running() = false, want true")
	}
}

func TestKernelAddPlayerAttachesOnce(t *testing.T) {
	k, _, _ := newTestKernel(t)
	p := &testPlayer{}
	if err := k.AddPlayer("leaves", p); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	if p.attached != 1 {
		t.Errorf("attached = %d, want 1", p.attached)
	}
	if p.Kernel() != k {
		t.Error("player kernel back-reference not set")
	}
	got, ok := k.Player("leaves")
	if !ok || got != p {
		t.Error("Player(leaves) did not return the registered player")
	}
	if _, ok := k.Player("missing"); ok {
		t.Error("Player(missing) should report false")
	}
}

func TestKernelDuplicatePlayerIgnored(t *testing.T) {
	buf := captureLog(t)
	k, _, _ := newTestKernel(t)
	first := &testPlayer{}
	second := &testPlayer{}

	_ = k.AddPlayer("fps", first)
	err := k.AddPlayer("fps", second)
	if !errors.Is(err, ErrPlayerExists) {
		t.Errorf("err = %v, want ErrPlayerExists", err)
	}
	if second.attached != 0 {
		t.Error("duplicate player should not be attached")
	}
	if got, _ := k.Player("fps"); got != first {
		t.Error("duplicate replaced the original player")
	}
	if !strings.Contains(buf.String(), "already exists") {
		t.Errorf("log = %q, want duplicate notice", buf.String())
	}
}

func TestKernelTickDeltaAndOrder(t *testing.T) {
	k, sched, clock := newTestKernel(t)
	var order []string
	a := &testPlayer{onUpdate: func() { order = append(order, "a") }}
	b := &testPlayer{onUpdate: func() { order = append(order, "b") }}
	_ = k.AddPlayer("a", a)
	_ = k.AddPlayer("b", b)

	if err := runFrames(t, sched, clock, 3, 16*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	if strings.Join(order, "") != "ababab" {
		t.Errorf("update order = %v, want a,b repeated", order)
	}
	for i, dt := range a.dts {
		if !approxEqual(dt, 16, 1e-9) {
			t.Errorf("dt[%d] = %v, want 16", i, dt)
		}
	}
	if !approxEqual(a.nows[2], 48, 1e-9) {
		t.Errorf("now[2] = %v, want 48", a.nows[2])
	}
	if !approxEqual(k.LastUpdated(), 48, 1e-9) {
		t.Errorf("LastUpdated() = %v, want 48", k.LastUpdated())
	}
}

func TestKernelSkipsDisabledAndPaused(t *testing.T) {
	k, sched, clock := newTestKernel(t)
	on := &testPlayer{}
	off := &testPlayer{}
	off.SetEnabled(false)
	paused := &testPlayer{}
	paused.SetPaused(true)
	_ = k.AddPlayer("on", on)
	_ = k.AddPlayer("off", off)
	_ = k.AddPlayer("paused", paused)

	if err := runFrames(t, sched, clock, 2, 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if on.updates != 2 {
		t.Errorf("on.updates = %d, want 2", on.updates)
	}
	if off.updates != 0 || paused.updates != 0 {
		t.Errorf("disabled/paused updated: %d, %d", off.updates, paused.updates)
	}
}

func TestKernelUpdateErrorHaltsLoop(t *testing.T) {
	buf := captureLog(t)
	k, sched, clock := newTestKernel(t)
	bad := &testPlayer{failAt: 5}
	good := &testPlayer{}
	_ = k.AddPlayer("bad", bad)
	_ = k.AddPlayer("good", good)

	err := runFrames(t, sched, clock, 10, 16*time.Millisecond)
	if err == nil {
		t.Fatal("expected fatal error from tick 5")
	}
	if sched.Frames() != 5 {
		t.Errorf("frames = %d, want 5", sched.Frames())
	}
	if sched.Pending() {
		t.Error("no frame should be scheduled after a failed tick")
	}

	// Nothing is scheduled, so later steps are no-ops.
	for i := 0; i < 3; i++ {
		if ran, _ := sched.Step(); ran {
			t.Fatal("tick ran after fatal error")
		}
	}
	if bad.updates != 5 {
		t.Errorf("bad.updates = %d, want 5", bad.updates)
	}
	if good.updates != 4 {
		t.Errorf("good.updates = %d, want 4", good.updates)
	}
	if k.Err() != err {
		t.Errorf("Err() = %v, want %v", k.Err(), err)
	}
	if !strings.Contains(err.Error(), `player "bad"`) {
		t.Errorf("err = %q, want player name", err)
	}
	if n := strings.Count(buf.String(), "(bad) boom"); n != 1 {
		t.Errorf("error logged %d times, want 1; log:\n%s", n, buf.String())
	}
}

func TestKernelDestroyIsolatesErrors(t *testing.T) {
	buf := captureLog(t)
	k, sched, _ := newTestKernel(t)
	a := &testPlayer{destroyErr: errors.New("stuck")}
	b := &testPlayer{}
	_ = k.AddPlayer("a", a)
	_ = k.AddPlayer("b", b)

	k.Destroy()

	if a.destroyed != 1 || b.destroyed != 1 {
		t.Errorf("destroyed = %d, %d, want 1, 1", a.destroyed, b.destroyed)
	}
	if sched.Pending() {
		t.Error("Destroy should cancel the pending frame")
	}
	if ran, _ := sched.Step(); ran {
		t.Error("tick ran after Destroy")
	}
	if !strings.Contains(buf.String(), "(a) destroy: stuck") {
		t.Errorf("log = %q, want destroy error", buf.String())
	}

	k.Destroy()
	if a.destroyed != 1 {
		t.Error("second Destroy should be a no-op")
	}
	if err := k.AddPlayer("c", &testPlayer{}); !errors.Is(err, ErrKernelDestroyed) {
		t.Errorf("AddPlayer after Destroy = %v, want ErrKernelDestroyed", err)
	}
}

func TestKernelDestroyDuringUpdate(t *testing.T) {
	k, sched, clock := newTestKernel(t)
	p := &testPlayer{}
	p.onUpdate = func() { k.Destroy() }
	_ = k.AddPlayer("p", p)

	if err := runFrames(t, sched, clock, 3, time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if p.updates != 1 {
		t.Errorf("updates = %d, want 1", p.updates)
	}
	if sched.Pending() {
		t.Error("destroyed kernel rescheduled itself")
	}
}

func TestKernelDestroyDuringUpdateSkipsLaterPlayers(t *testing.T) {
	captureLog(t)
	k, sched, clock := newTestKernel(t)
	first := &testPlayer{}
	first.onUpdate = func() { k.Destroy() }
	second := &testPlayer{}
	_ = k.AddPlayer("first", first)
	_ = k.AddPlayer("second", second)

	if err := runFrames(t, sched, clock, 1, time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if second.destroyed != 1 {
		t.Errorf("second destroyed = %d, want 1", second.destroyed)
	}
	if second.updates != 0 {
		t.Errorf("second updates = %d, want 0 after destroy", second.updates)
	}
}

func TestKernelPauseResume(t *testing.T) {
	k, sched, clock := newTestKernel(t)
	p := &testPlayer{}
	_ = k.AddPlayer("p", p)

	_ = runFrames(t, sched, clock, 1, 16*time.Millisecond)
	k.Pause()
	if !k.Paused() || sched.Pending() {
		t.Fatal("Pause should cancel the pending frame")
	}

	clock.Advance(10 * time.Second)
	k.Resume()
	if !sched.Pending() {
		t.Fatal("Resume should request a frame")
	}

	_ = runFrames(t, sched, clock, 1, 16*time.Millisecond)
	if got := p.dts[len(p.dts)-1]; !approxEqual(got, 16, 1e-9) {
		t.Errorf("dt after resume = %v, want 16 (paused time excluded)", got)
	}
}

func TestKernelNames(t *testing.T) {
	k, _, _ := newTestKernel(t)
	for _, name := range []string{"leaves", "fps", "model"} {
		_ = k.AddPlayer(name, &testPlayer{})
	}
	if got := strings.Join(k.Names(), ","); got != "leaves,fps,model" {
		t.Errorf("Names() = %q, want registration order", got)
	}
}
