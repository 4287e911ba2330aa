package canopy

import (
	"errors"
	"fmt"
	"time"
)

const kernelTag = "Kernel"

var (
	// ErrPlayerExists is returned by AddPlayer when the name is taken.
	ErrPlayerExists = errors.New("canopy: player already exists")
	// ErrKernelDestroyed is returned by AddPlayer after Destroy.
	ErrKernelDestroyed = errors.New("canopy: kernel destroyed")
)

// Kernel drives named players once per frame. Frames come from a
// FrameScheduler; timestamps come from a Clock and are expressed in
// milliseconds since the kernel was created.
//
// Players are updated in registration order. If a player's Update fails the
// error is logged with the player's name and the kernel stops requesting
// frames, halting every player. Destroy failures are isolated.
type Kernel struct {
	surface   Surface
	scheduler FrameScheduler
	clock     Clock
	epoch     time.Time

	players map[string]Player
	order   []string

	lastUpdated float64
	frame       FrameHandle

	paused    bool
	destroyed bool
	err       error
	debug     bool
}

// KernelOption configures a Kernel.
type KernelOption func(*Kernel)

// WithClock sets the kernel's time source. The default is SystemClock.
func WithClock(c Clock) KernelOption {
	return func(k *Kernel) {
		k.clock = c
	}
}

// WithKernelDebug enables per-tick timing logs.
func WithKernelDebug(enabled bool) KernelOption {
	return func(k *Kernel) {
		k.debug = enabled
	}
}

// NewKernel creates a kernel bound to surface and requests its first frame
// from scheduler.
func NewKernel(surface Surface, scheduler FrameScheduler, opts ...KernelOption) *Kernel {
	k := &Kernel{
		surface:   surface,
		scheduler: scheduler,
		clock:     SystemClock{},
		players:   make(map[string]Player),
	}
	for _, opt := range opts {
		opt(k)
	}
	k.epoch = k.clock.Now()
	k.frame = k.scheduler.RequestFrame(k.tick)
	return k
}

// Surface returns the rendering surface the kernel was created with.
func (k *Kernel) Surface() Surface {
	return k.surface
}

// Now returns the current kernel timestamp in milliseconds.
func (k *Kernel) Now() float64 {
	return millisSince(k.epoch, k.clock.Now())
}

// LastUpdated returns the timestamp recorded at the end of the last tick.
func (k *Kernel) LastUpdated() float64 {
	return k.lastUpdated
}

// Err returns the fatal update error that halted the loop, if any.
func (k *Kernel) Err() error {
	return k.err
}

// Running reports whether a frame is currently scheduled.
func (k *Kernel) Running() bool {
	return k.frame != 0
}

// AddPlayer registers p under name and attaches it. A duplicate name is
// logged and ignored; ErrPlayerExists is returned so callers can tell.
func (k *Kernel) AddPlayer(name string, p Player) error {
	if k.destroyed {
		return ErrKernelDestroyed
	}
	if _, ok := k.players[name]; ok {
		logf(kernelTag, "Player %q already exists, ignored.", name)
		return ErrPlayerExists
	}

	logf(kernelTag, "Add player %q", name)
	k.players[name] = p
	k.order = append(k.order, name)
	p.Attach(k)
	return nil
}

// Player returns the player registered under name.
func (k *Kernel) Player(name string) (Player, bool) {
	p, ok := k.players[name]
	return p, ok
}

// Names returns the registered player names in registration order.
func (k *Kernel) Names() []string {
	names := make([]string, len(k.order))
	copy(names, k.order)
	return names
}

// Each calls fn for every player in registration order.
func (k *Kernel) Each(fn func(name string, p Player)) {
	for _, name := range k.order {
		fn(name, k.players[name])
	}
}

// tick is the recurring frame callback.
func (k *Kernel) tick() error {
	k.frame = 0

	var t0 time.Time
	if k.debug {
		t0 = k.clock.Now()
	}

	now := k.Now()
	delta := now - k.lastUpdated

	updated := 0
	for _, name := range k.order {
		// A player may destroy the kernel; later players are already torn down.
		if k.destroyed {
			return nil
		}
		p := k.players[name]
		if !p.Enabled() || p.Paused() {
			continue
		}
		if err := p.Update(delta, now); err != nil {
			logf(kernelTag, "(%s) %v", name, err)
			k.err = fmt.Errorf("player %q: %w", name, err)
			return k.err
		}
		updated++
	}

	k.lastUpdated = k.Now()

	if k.debug {
		k.debugLog(tickStats{
			elapsed: k.clock.Now().Sub(t0),
			delta:   delta,
			players: len(k.order),
			updated: updated,
		})
	}

	// A player may have paused or destroyed the kernel during its update.
	if k.destroyed || k.paused {
		return nil
	}
	k.frame = k.scheduler.RequestFrame(k.tick)
	return nil
}

// Pause cancels the pending frame. Players keep their state.
func (k *Kernel) Pause() {
	if k.destroyed || k.paused {
		return
	}
	k.paused = true
	k.scheduler.CancelFrame(k.frame)
	k.frame = 0
}

// Resume schedules frames again after Pause. The time spent paused is not
// reported as frame delta.
func (k *Kernel) Resume() {
	if k.destroyed || !k.paused {
		return
	}
	k.paused = false
	if k.err != nil {
		return
	}
	k.lastUpdated = k.Now()
	k.frame = k.scheduler.RequestFrame(k.tick)
}

// Paused reports whether the kernel is paused.
func (k *Kernel) Paused() bool {
	return k.paused
}

// Destroy cancels the pending frame and destroys every player. A failing
// player's Destroy is logged and the remaining players are still destroyed.
// Calling Destroy more than once has no effect.
func (k *Kernel) Destroy() {
	if k.destroyed {
		return
	}
	k.destroyed = true

	if k.frame != 0 {
		k.scheduler.CancelFrame(k.frame)
		k.frame = 0
	}

	for _, name := range k.order {
		logf(kernelTag, "Destroying player %q...", name)
		if err := k.players[name].Destroy(); err != nil {
			logf(kernelTag, "(%s) destroy: %v", name, err)
		}
	}
}

// Destroyed reports whether Destroy has been called.
func (k *Kernel) Destroyed() bool {
	return k.destroyed
}
