package canopy

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsRefresh is how often the overlay text is rebuilt, in milliseconds.
const fpsRefresh = 500

// FPSPlayer draws FPS, TPS, and the live leaf count in the top-left corner.
type FPSPlayer struct {
	PlayerBase

	leaves *Leaves
	img    *ebiten.Image
	text   string
	dirty  bool
	since  float64
}

// NewFPSPlayer creates an FPS overlay. leaves may be nil.
func NewFPSPlayer(leaves *Leaves) *FPSPlayer {
	return &FPSPlayer{leaves: leaves, since: fpsRefresh}
}

// Text returns the overlay text as of the last refresh.
func (p *FPSPlayer) Text() string {
	return p.text
}

// Update rebuilds the text every fpsRefresh milliseconds.
func (p *FPSPlayer) Update(dt, _ float64) error {
	p.since += dt
	if p.since < fpsRefresh {
		return nil
	}
	p.since = 0
	p.text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
	if p.leaves != nil {
		p.text += fmt.Sprintf("\nLeaves: %d/%d", p.leaves.Len(), p.leaves.Limit())
	}
	p.dirty = true
	return nil
}

// Draw renders the overlay.
func (p *FPSPlayer) Draw(screen *ebiten.Image) {
	if p.img == nil {
		// 120x48 fits three lines of debug text.
		p.img = ebiten.NewImage(120, 48)
	}
	if p.dirty {
		p.dirty = false
		p.img.Clear()
		p.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(p.img, p.text)
	}
	screen.DrawImage(p.img, nil)
}

// Destroy releases the overlay image.
func (p *FPSPlayer) Destroy() error {
	if p.img != nil {
		p.img.Deallocate()
		p.img = nil
	}
	return nil
}
