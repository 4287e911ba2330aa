package canopy

import (
	"math"
	"math/rand/v2"
)

// LeafState is the lifecycle state of a Leaf.
//
//	Idle ──drop/hit──▶ Falling ──hit──▶ Split
//	  ▲                   │               │
//	  └──────ground───────┴───────────────┘
//
//	Piece ──ground──▶ removed
type LeafState uint8

const (
	LeafIdle    LeafState = iota // resting near the top edge, fading in
	LeafFalling                  // falling, can still be split
	LeafSplit                    // falling, already split, fading out
	LeafPiece                    // spawned by a split; removed at the ground
)

// String returns a readable name for the state.
func (s LeafState) String() string {
	switch s {
	case LeafIdle:
		return "idle"
	case LeafFalling:
		return "falling"
	case LeafSplit:
		return "split"
	case LeafPiece:
		return "piece"
	default:
		return "unknown"
	}
}

// Falling reports whether the leaf is moving toward the ground.
func (s LeafState) Falling() bool {
	return s != LeafIdle
}

const (
	maxAnchorOffset      = 5
	pieceRatioMin        = 0.7
	pieceRatioMax        = 0.9
	fadingStepNormal     = 0.02
	fadingStepSplit      = 0.1
	pieceSpeedFactor     = 1.5
	pieceRotationLimit   = 0.003
	leafRotationSpeedMin = 0.0002
	leafRotationSpeedMax = 0.0005
)

// Leaf is one simulated leaf. Geometry follows the texture: the leaf is
// drawn as its texture scaled to Width x Height, rotated around the pivot
// (AnchorX, AnchorY), given as fractions of the texture size, which sits at
// (X, Y).
type Leaf struct {
	X, Y     float64
	VY       float64 // vertical velocity, px/ms
	Rotation float64 // radians
	Alpha    float64 // opacity in [0, 1]

	Width, Height    float64
	AnchorX, AnchorY float64

	MaxY          float64 // ground threshold
	MaxSpeed      float64 // terminal fall speed, px/ms
	MaxRotation   float64 // absolute rotation bound; +Inf for pieces
	Direction     float64 // rotation sign, -1 or 1
	RotationSpeed float64 // signed, rad/ms
	FadingStep    float64 // alpha change per frame; negative fades out

	State   LeafState
	Texture TextureRegion

	removed bool
}

// textureSize returns the texture size in unscaled pixels, falling back to
// the leaf size for texture-less leaves.
func (l *Leaf) textureSize() (w, h float64) {
	w, h = l.Texture.Size()
	if w == 0 {
		w = l.Width
	}
	if h == 0 {
		h = l.Height
	}
	return w, h
}

// Transform returns the leaf's local transform within the leaves layer.
func (l *Leaf) Transform() Transform {
	tw, th := l.textureSize()
	sx, sy := 1.0, 1.0
	if tw != 0 {
		sx = l.Width / tw
	}
	if th != 0 {
		sy = l.Height / th
	}
	return Transform{
		X:        l.X,
		Y:        l.Y,
		ScaleX:   sx,
		ScaleY:   sy,
		Rotation: l.Rotation,
		PivotX:   l.AnchorX * tw,
		PivotY:   l.AnchorY * th,
	}
}

// Contains reports whether the layer-space point (x, y) lies on the leaf.
// shape is in texture-local coordinates; nil means the texture rectangle.
func (l *Leaf) Contains(x, y float64, shape HitShape) bool {
	lx, ly := l.Transform().ToLocal(x, y)
	if shape != nil {
		return shape.Contains(lx, ly)
	}
	tw, th := l.textureSize()
	return lx >= 0 && lx <= tw && ly >= 0 && ly <= th
}

// initLeaf sets up l as a fresh original leaf inside a width x height area.
func initLeaf(l *Leaf, tex TextureRegion, cfg *LeavesConfig, width, height float64, rng *rand.Rand) {
	size := math.Floor(randIn(rng, cfg.MinSize, cfg.MaxSize))
	dir := 1.0
	if float01(rng) <= 0.5 {
		dir = -1
	}
	*l = Leaf{
		Width:         size,
		Height:        size,
		AnchorX:       0.5,
		AnchorY:       0.5,
		MaxY:          height + size*0.5,
		MaxSpeed:      randIn(rng, cfg.MinSpeed, cfg.MaxSpeed),
		MaxRotation:   randIn(rng, math.Pi/2.5, math.Pi/1.5),
		Direction:     dir,
		RotationSpeed: dir * randIn(rng, leafRotationSpeedMin, leafRotationSpeedMax),
		Texture:       tex,
	}
	l.reset(width, rng)
}

// reset puts the leaf back at the top edge, idle and transparent.
func (l *Leaf) reset(width float64, rng *rand.Rand) {
	l.State = LeafIdle
	l.X = randIn(rng, 0, width)
	l.Y = randIn(rng, -0.3, 0.3) * l.Height
	l.VY = 0
	l.Alpha = 0
	l.FadingStep = fadingStepNormal
	l.Rotation = l.Direction * randIn(rng, 0, math.Pi/3)
}

// initPiece sets up p as a piece of src. The piece gets its own size and
// pivot; its position is corrected so it appears where src was hit instead
// of jumping by the pivot difference.
func initPiece(p *Leaf, src *Leaf, cfg *LeavesConfig, width, height float64, rng *rand.Rand) {
	initLeaf(p, src.Texture, cfg, width, height, rng)

	p.State = LeafPiece

	ratio := randIn(rng, pieceRatioMin, pieceRatioMax)
	p.Width = src.Width * ratio
	p.Height = src.Height * ratio

	p.VY = src.VY * pieceSpeedFactor
	p.Rotation = src.Rotation
	p.Direction = src.Direction
	p.FadingStep = fadingStepSplit

	ax := randIn(rng, -maxAnchorOffset, maxAnchorOffset)
	ay := randIn(rng, -maxAnchorOffset, maxAnchorOffset)
	p.AnchorX, p.AnchorY = ax, ay
	p.X, p.Y = src.X, src.Y

	// The exact bound is height + p.Height*hypot(ax, ay); the max offset is
	// close enough and avoids the sqrt.
	p.MaxY = height + p.Height*maxAnchorOffset

	// Offset from the pivot that lands on src's position under the piece
	// transform:
	//
	//	origin = w * [(ax' - 0.5) - (ax - 0.5) / R]
	//
	// ax' is the piece anchor, ax the source anchor, R the size ratio.
	tw, th := p.textureSize()
	ox := tw * (ax - 0.5 - (src.AnchorX-0.5)/ratio) * randIn(rng, 0.9, 1.1)
	oy := th * (ay - 0.5 - (src.AnchorY-0.5)/ratio) * randIn(rng, 0.9, 1.1)
	p.X, p.Y = p.Transform().ToParent(ox+ax*tw, oy+ay*th)

	p.RotationSpeed = clamp(src.RotationSpeed, -pieceRotationLimit, pieceRotationLimit) * randIn(rng, 2, 3)
	p.MaxRotation = math.Inf(1)
}

// integrate advances a falling leaf by dt milliseconds under gravity g.
func (l *Leaf) integrate(dt, g float64) {
	if l.VY < l.MaxSpeed {
		l.VY = math.Min(l.VY+g*dt, l.MaxSpeed)
	}

	if l.State == LeafPiece {
		l.Rotation += l.VY * l.RotationSpeed * dt
	} else {
		l.Rotation = easeRotation(l.Rotation, l.MaxRotation, l.RotationSpeed*dt)
	}

	l.Y += l.VY * dt
}

// easeRotation steps rotation toward ±limit along an ease-in-out curve of the
// remaining angle t: t²/(2(t²-t)+1). The step shrinks to zero at the limit
// and the result never passes it.
func easeRotation(rotation, limit, step float64) float64 {
	t := limit - math.Abs(rotation)
	if t <= 0 {
		return math.Copysign(limit, rotation)
	}
	sqt := t * t
	next := rotation + sqt/(2*(sqt-t)+1)*step
	if math.Abs(next) > limit {
		next = math.Copysign(limit, next)
	}
	return next
}
