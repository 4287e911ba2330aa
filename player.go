package canopy

import "github.com/hajimehoshi/ebiten/v2"

// Player is a pluggable subsystem driven by the Kernel once per frame.
//
// Update errors are fatal: the Kernel logs them and stops scheduling frames.
// Destroy errors are logged and do not prevent other players from being
// destroyed.
type Player interface {
	// Attach is called once, synchronously, when the player is registered.
	// It receives the owning kernel.
	Attach(k *Kernel)
	// Enabled and Paused gate Update. Only enabled, unpaused players run.
	Enabled() bool
	Paused() bool
	// Update advances the player. dt is the milliseconds since the previous
	// frame and now the current frame timestamp in milliseconds.
	Update(dt, now float64) error
	// Destroy releases the player's resources.
	Destroy() error
}

// Drawer is implemented by players that render to the screen. The Stage
// calls Draw for every enabled Drawer in registration order.
type Drawer interface {
	Draw(screen *ebiten.Image)
}

// Surface is the rendering surface a Kernel is created with. The kernel does
// not interpret it; players read it through Kernel.Surface.
type Surface interface {
	Size() (width, height int)
}

// PlayerBase provides the bookkeeping half of Player. Embed it and implement
// Update to get a complete player. Players start enabled and unpaused.
type PlayerBase struct {
	kernel   *Kernel
	disabled bool
	paused   bool
}

// Attach stores the kernel back-reference.
func (p *PlayerBase) Attach(k *Kernel) {
	p.kernel = k
}

// Kernel returns the kernel the player is attached to, or nil.
func (p *PlayerBase) Kernel() *Kernel {
	return p.kernel
}

// Enabled reports whether the player is enabled.
func (p *PlayerBase) Enabled() bool {
	return !p.disabled
}

// SetEnabled enables or disables the player.
func (p *PlayerBase) SetEnabled(enabled bool) {
	p.disabled = !enabled
}

// Paused reports whether the player is paused.
func (p *PlayerBase) Paused() bool {
	return p.paused
}

// SetPaused pauses or resumes the player.
func (p *PlayerBase) SetPaused(paused bool) {
	p.paused = paused
}

// Destroy is a no-op.
func (p *PlayerBase) Destroy() error {
	return nil
}
