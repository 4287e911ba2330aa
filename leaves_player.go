package canopy

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

// defaultFadeDuration is the layer fade time of SetVisible, in seconds.
const defaultFadeDuration = 0.5

// PointerSource delivers pointer and resize notifications. Stage implements
// it; a LeavesPlayer attached to a kernel whose Surface is a PointerSource
// hit-tests pointer presses automatically.
type PointerSource interface {
	OnPointerDown(fn func(PointerContext)) CallbackHandle
	OnPointerMove(fn func(PointerContext)) CallbackHandle
	OnResize(fn func(width, height int)) CallbackHandle
}

// LeavesPlayer hosts a Leaves pool in a Kernel and draws it.
type LeavesPlayer struct {
	PlayerBase

	// X and Y place the layer on the surface.
	X, Y float64
	// Tint multiplies every leaf color.
	Tint Color
	// Blend is the compositing mode used for leaves.
	Blend BlendMode
	// HitOnMove also hit-tests cursor movement, so leaves can be knocked
	// down without clicking. Useful with mouse passthrough windows.
	HitOnMove bool
	// FadeDuration is the SetVisible fade time in seconds.
	FadeDuration float32

	leaves *Leaves
	atlas  *Atlas

	alpha   float64
	opacity float64
	visible bool
	fade    *TweenGroup

	handles []CallbackHandle
	cmds    []leafCommand
	op      ebiten.DrawImageOptions
}

// NewLeavesPlayer creates a player drawing leaves with regions from atlas.
func NewLeavesPlayer(atlas *Atlas, leaves *Leaves) *LeavesPlayer {
	return &LeavesPlayer{
		Tint:         ColorWhite,
		FadeDuration: defaultFadeDuration,
		leaves:       leaves,
		atlas:        atlas,
		alpha:        1,
		opacity:      1,
		visible:      true,
	}
}

// Leaves returns the hosted pool.
func (p *LeavesPlayer) Leaves() *Leaves {
	return p.leaves
}

// Attach sizes the leaves to the surface and subscribes to its pointer
// events when it provides them.
func (p *LeavesPlayer) Attach(k *Kernel) {
	p.PlayerBase.Attach(k)

	surface := k.Surface()
	if surface == nil {
		return
	}
	if w, h := surface.Size(); w > 0 && h > 0 {
		p.leaves.Resize(float64(w), float64(h))
	}

	src, ok := surface.(PointerSource)
	if !ok {
		return
	}
	p.handles = append(p.handles,
		src.OnPointerDown(func(ctx PointerContext) {
			p.HitAt(ctx.X, ctx.Y)
		}),
		src.OnPointerMove(func(ctx PointerContext) {
			if p.HitOnMove {
				p.HitAt(ctx.X, ctx.Y)
			}
		}),
		src.OnResize(func(w, h int) {
			p.leaves.Resize(float64(w), float64(h))
		}),
	)
}

// HitAt hit-tests the surface point (x, y). Disabled, paused, and hidden
// layers ignore hits.
func (p *LeavesPlayer) HitAt(x, y float64) HitResult {
	if !p.Enabled() || p.Paused() || !p.visible {
		return HitResult{}
	}
	return p.leaves.HitTest(x-p.X, y-p.Y)
}

// Update advances the leaves and the layer fade.
func (p *LeavesPlayer) Update(dt, now float64) error {
	p.leaves.Update(dt, now)

	if p.fade != nil {
		p.fade.Update(float32(dt / 1000))
		if p.fade.Done {
			p.fade = nil
			if !p.visible {
				p.SetEnabled(false)
			}
		}
	}
	return nil
}

// Draw renders every visible leaf.
func (p *LeavesPlayer) Draw(screen *ebiten.Image) {
	layer := [6]float64{1, 0, 0, 1, p.X, p.Y}
	p.cmds = emitLeafCommands(p.cmds[:0], p.leaves, layer, p.alpha*p.opacity)
	submitLeafCommands(screen, p.atlas, p.cmds, p.Tint, p.Blend, &p.op)
}

// Destroy unsubscribes from the surface.
func (p *LeavesPlayer) Destroy() error {
	for _, h := range p.handles {
		h.Remove()
	}
	p.handles = nil
	return nil
}

// Visible reports whether the layer is shown or fading in.
func (p *LeavesPlayer) Visible() bool {
	return p.visible
}

// SetVisible fades the layer in or out. A hidden layer is disabled once the
// fade ends so its leaves stop simulating.
func (p *LeavesPlayer) SetVisible(visible bool) {
	if visible == p.visible && p.fade == nil {
		return
	}
	p.visible = visible
	to := 0.0
	if visible {
		to = 1
		p.SetEnabled(true)
	}
	p.fade = TweenValue(&p.alpha, to, p.FadeDuration, ease.InOutQuad)
}

// Opacity returns the layer opacity.
func (p *LeavesPlayer) Opacity() float64 {
	return p.opacity
}

// SetOpacity sets the layer opacity. Values outside [0, 1] are clamped.
func (p *LeavesPlayer) SetOpacity(opacity float64) {
	if opacity < 0 || opacity > 1 {
		logf(leavesTag, "opacity %v out of range, clamped", opacity)
		opacity = clamp(opacity, 0, 1)
	}
	p.opacity = opacity
}

// ApplySettings applies persisted user settings to the layer.
func (p *LeavesPlayer) ApplySettings(s Settings) {
	p.leaves.SetNumber(s.Number)
	p.leaves.SetAutoFall(s.AutoFall)
	p.SetOpacity(s.Opacity)
	p.SetVisible(s.LeavesEnabled)
}
