package canopy

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// leafCommand is one leaf ready to draw: its region and final screen
// transform and alpha.
type leafCommand struct {
	region    TextureRegion
	transform [6]float64
	alpha     float32
}

// emitLeafCommands appends a command for every visible live leaf of l in
// draw order. layer is the layer-to-screen matrix and alpha the layer
// opacity.
func emitLeafCommands(dst []leafCommand, l *Leaves, layer [6]float64, alpha float64) []leafCommand {
	if alpha <= 0 {
		return dst
	}
	for i := 0; i < l.live; i++ {
		lf := &l.pool[i]
		a := lf.Alpha * alpha
		if a <= 0 || lf.Width <= 0 || lf.Height <= 0 {
			continue
		}
		dst = append(dst, leafCommand{
			region:    lf.Texture,
			transform: multiplyAffine(layer, lf.Transform().Matrix()),
			alpha:     float32(a),
		})
	}
	return dst
}

// submitLeafCommands draws cmds onto target. Regions resolve through atlas;
// a nil atlas draws magenta placeholders.
func submitLeafCommands(target *ebiten.Image, atlas *Atlas, cmds []leafCommand, tint Color, blend BlendMode, op *ebiten.DrawImageOptions) {
	for i := range cmds {
		cmd := &cmds[i]

		var img *ebiten.Image
		if atlas != nil {
			img = atlas.image(cmd.region)
		} else {
			img = ensureMagentaImage()
		}

		op.GeoM = regionGeoM(&cmd.region)
		op.GeoM.Concat(affineGeoM(cmd.transform))

		// Premultiplied color scale.
		op.ColorScale.Reset()
		a := cmd.alpha * float32(tint.A)
		op.ColorScale.Scale(float32(tint.R)*a, float32(tint.G)*a, float32(tint.B)*a, a)

		op.Blend = blend.EbitenBlend()

		target.DrawImage(img, op)
	}
}

// regionGeoM places a region's stored pixels inside its untrimmed frame.
func regionGeoM(r *TextureRegion) ebiten.GeoM {
	var m ebiten.GeoM
	if r.Rotated {
		// Stored 90° clockwise: rotate back and shift down by the width.
		m.Rotate(-1.5707963267948966) // -π/2
		m.Translate(0, float64(r.Width))
	}
	if r.OffsetX != 0 || r.OffsetY != 0 {
		m.Translate(float64(r.OffsetX), float64(r.OffsetY))
	}
	return m
}

// affineGeoM converts a [6]float64 affine matrix into an ebiten.GeoM.
func affineGeoM(t [6]float64) ebiten.GeoM {
	var m ebiten.GeoM
	m.SetElement(0, 0, t[0])
	m.SetElement(1, 0, t[1])
	m.SetElement(0, 1, t[2])
	m.SetElement(1, 1, t[3])
	m.SetElement(0, 2, t[4])
	m.SetElement(1, 2, t[5])
	return m
}
