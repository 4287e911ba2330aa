package canopy

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const leavesTag = "Leaves"

// poolLimit returns the pool capacity for maxNumber originals: 1.2x rounded
// up, so split pieces have room.
func poolLimit(maxNumber int) int {
	return (maxNumber*6 + 4) / 5
}

// HitResult reports what a HitTest did.
type HitResult struct {
	// Dropped is true when an idle leaf under the point started falling.
	Dropped bool
	// Split is true when a falling leaf under the point was split.
	Split bool
	// Pieces is the number of pieces spawned by the split.
	Pieces int
}

// LeavesOption configures a Leaves at construction.
type LeavesOption func(*Leaves)

// WithRand makes the leaves draw all randomness from rng instead of the
// global source.
func WithRand(rng *rand.Rand) LeavesOption {
	return func(l *Leaves) { l.rng = rng }
}

// WithHitShape sets the texture-local shape used by HitTest. The default is
// the full texture rectangle.
func WithHitShape(shape HitShape) LeavesOption {
	return func(l *Leaves) { l.hitShape = shape }
}

// WithEventSink forwards every LeafEvent to sink.
func WithEventSink(sink EventSink) LeavesOption {
	return func(l *Leaves) { l.sink = sink }
}

// WithLeavesDebug enables pool capacity warnings.
func WithLeavesDebug(enabled bool) LeavesOption {
	return func(l *Leaves) { l.debug = enabled }
}

// Leaves is a pool of falling leaves. The pool is preallocated at
// construction and never grows: live leaves occupy pool[0:live] in draw
// order, so the last one is topmost.
//
// Leaves is not safe for concurrent use. Update and HitTest are expected to
// run on the frame goroutine.
type Leaves struct {
	cfg      LeavesConfig
	textures []TextureRegion
	hitShape HitShape
	rng      *rand.Rand
	sink     EventSink
	handlers handlerList[LeafEvent]

	number    int // target count of original leaves
	originals int // live original leaves
	limit     int // pool capacity

	width, height float64
	nextFallTime  float64

	pool []Leaf
	live int

	debug      bool
	warnedFull bool
}

// NewLeaves creates a leaves pool drawing its textures from textures. cfg is
// normalized first. With no textures the pool stays empty and every
// operation is a no-op.
func NewLeaves(textures []TextureRegion, cfg LeavesConfig, opts ...LeavesOption) *Leaves {
	cfg.Normalize()
	l := &Leaves{
		cfg:      cfg,
		textures: textures,
		number:   cfg.Number,
		limit:    poolLimit(cfg.MaxNumber),
		width:    cfg.Width,
		height:   cfg.Height,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.pool = make([]Leaf, l.limit)
	if len(textures) == 0 {
		logf(leavesTag, "no textures, pool stays empty")
		return l
	}
	l.reconcile()
	return l
}

// Config returns the current tuning. Number reflects the last SetNumber.
func (l *Leaves) Config() LeavesConfig {
	return l.cfg
}

// Number returns the target count of original leaves.
func (l *Leaves) Number() int {
	return l.number
}

// SetNumber sets the target count of original leaves and grows or shrinks
// the pool to match. n is clamped to [0, Limit()]. Growing appends new idle
// leaves on top; shrinking removes the most recently added originals.
func (l *Leaves) SetNumber(n int) {
	if n < 0 {
		logf(leavesTag, "number %d below 0, clamped", n)
		n = 0
	}
	if n > l.limit {
		logf(leavesTag, "number %d above limit %d, clamped", n, l.limit)
		n = l.limit
	}
	l.number = n
	l.cfg.Number = n
	l.reconcile()
}

// Limit returns the pool capacity.
func (l *Leaves) Limit() int {
	return l.limit
}

// Len returns the number of live leaves, pieces included.
func (l *Leaves) Len() int {
	return l.live
}

// Leaf returns a copy of the i-th live leaf in draw order. It panics if i
// is not in [0, Len()).
func (l *Leaves) Leaf(i int) Leaf {
	if i < 0 || i >= l.live {
		panic(fmt.Sprintf("canopy: leaf index %d out of range [0, %d)", i, l.live))
	}
	return l.pool[i]
}

// Each calls fn for every live leaf in draw order. fn must not keep the
// pointer past the call.
func (l *Leaves) Each(fn func(i int, lf *Leaf)) {
	for i := 0; i < l.live; i++ {
		fn(i, &l.pool[i])
	}
}

// AutoFall reports whether leaves drop on the pacing schedule.
func (l *Leaves) AutoFall() bool {
	return l.cfg.AutoFall
}

// SetAutoFall enables or disables scheduled drops.
func (l *Leaves) SetAutoFall(enabled bool) {
	l.cfg.AutoFall = enabled
}

// Resize sets the logical area used for new spawn positions and ground
// levels. Existing leaves keep their ground level until they are
// reinitialized.
func (l *Leaves) Resize(width, height float64) {
	l.width = width
	l.height = height
	l.cfg.Width = width
	l.cfg.Height = height
}

// Size returns the logical area.
func (l *Leaves) Size() (width, height float64) {
	return l.width, l.height
}

// Bounds returns the logical area as a rectangle at the origin.
func (l *Leaves) Bounds() Rect {
	return Rect{Width: l.width, Height: l.height}
}

// Clone returns a new pool with the same textures, tuning, hit shape, and
// event sink. Leaf state is not copied; the clone starts fresh.
func (l *Leaves) Clone() *Leaves {
	cfg := l.cfg
	cfg.Number = l.number
	return NewLeaves(l.textures, cfg,
		WithRand(l.rng),
		WithHitShape(l.hitShape),
		WithEventSink(l.sink),
		WithLeavesDebug(l.debug),
	)
}

// OnEvent registers fn to receive every LeafEvent.
func (l *Leaves) OnEvent(fn func(LeafEvent)) CallbackHandle {
	return l.handlers.add(fn)
}

// SetEventSink replaces the event sink. nil disables forwarding.
func (l *Leaves) SetEventSink(sink EventSink) {
	l.sink = sink
}

func (l *Leaves) emit(ev LeafEvent) {
	l.handlers.fire(ev)
	if l.sink != nil {
		l.sink.EmitEvent(ev)
	}
}

// HitTest applies a pointer hit at (x, y) in leaves-local space. Leaves are
// visited from top to bottom and fully transparent ones are skipped. The
// topmost idle leaf under the point starts falling. Independently, the
// topmost falling, unsplit leaf under the point is split into pieces if the
// pool has room. At most one leaf drops and one splits per call.
func (l *Leaves) HitTest(x, y float64) HitResult {
	var res HitResult
	for i := l.live - 1; i >= 0; i-- {
		if res.Dropped && res.Split {
			break
		}
		lf := &l.pool[i]
		if lf.Alpha <= 0 {
			continue
		}
		switch lf.State {
		case LeafIdle:
			// Only the topmost idle leaf drops, so one click knocks down one leaf.
			if res.Dropped || !lf.Contains(x, y, l.hitShape) {
				continue
			}
			lf.State = LeafFalling
			res.Dropped = true
			l.emit(LeafEvent{Type: LeafDropped, X: lf.X, Y: lf.Y, Hit: true})
		case LeafFalling:
			if res.Split || l.live >= l.limit || !lf.Contains(x, y, l.hitShape) {
				continue
			}
			res.Split = true
			res.Pieces = l.split(lf)
			l.emit(LeafEvent{Type: LeafSplitEvent, X: lf.X, Y: lf.Y, Hit: true, Pieces: res.Pieces})
		}
	}
	if l.debug {
		l.debugWarnCapacity()
	}
	return res
}

// split marks src as split and appends pieces on top of the pool. The
// piece count is random in [2, max(2, Multiply)], capped by the free room.
func (l *Leaves) split(src *Leaf) int {
	src.State = LeafSplit
	src.FadingStep = -fadingStepSplit

	n := randIntIn(l.rng, 2, max(2, l.cfg.Multiply))
	if room := l.limit - l.live; n > room {
		n = room
	}
	for j := 0; j < n; j++ {
		initPiece(&l.pool[l.live], src, &l.cfg, l.width, l.height, l.rng)
		l.live++
	}
	return n
}

// NextFallTime returns the next automatic drop time after now. The wait is
// minDropRate scaled by 1 - max(s, 0) with s = sin(now/dropInterval) - 0.4,
// which alternates lulls at the full wait with bursts of quicker drops. The
// result always lies in [now, now+minDropRate].
func NextFallTime(now, dropInterval, minDropRate float64) float64 {
	s := math.Sin(now/dropInterval) - 0.4
	return now + (1-(s+math.Abs(s))/2)*minDropRate
}

// Update advances every live leaf by dt milliseconds. now is the current
// time in milliseconds and drives the automatic drop schedule; at most one
// idle leaf drops per call. Pieces that reach the ground are removed after
// the pass; original leaves that reach the ground are reset to the top.
func (l *Leaves) Update(dt, now float64) {
	shouldFall := l.cfg.AutoFall && now > l.nextFallTime
	if shouldFall {
		l.nextFallTime = NextFallTime(now, l.cfg.DropInterval, l.cfg.MinDropRate)
	}

	removed := 0
	for i := l.live - 1; i >= 0; i-- {
		lf := &l.pool[i]

		lf.Alpha = clamp(lf.Alpha+lf.FadingStep, 0, 1)

		switch {
		case lf.State.Falling():
			if lf.Y < lf.MaxY {
				lf.integrate(dt, l.cfg.G)
			} else if lf.State == LeafPiece {
				lf.removed = true
				removed++
				l.emit(LeafEvent{Type: LeafPieceRemoved, X: lf.X, Y: lf.Y})
			} else {
				l.emit(LeafEvent{Type: LeafLanded, X: lf.X, Y: lf.Y})
				lf.reset(l.width, l.rng)
			}
		case shouldFall:
			shouldFall = false
			lf.State = LeafFalling
			l.emit(LeafEvent{Type: LeafDropped, X: lf.X, Y: lf.Y})
		}
	}

	if removed > 0 {
		l.compact()
		if l.originals < l.number {
			l.reconcile()
		}
	}
	if l.debug {
		l.debugWarnCapacity()
	}
}

// reconcile grows or shrinks the original leaves toward number. Growth is
// capped by the free pool room; the shortfall is made up once pieces leave.
func (l *Leaves) reconcile() {
	if len(l.textures) == 0 {
		return
	}
	delta := l.number - l.originals
	switch {
	case delta > 0:
		if room := l.limit - l.live; delta > room {
			if l.debug {
				logf(leavesTag, "pool full, deferring %d of %d leaves", delta-room, delta)
			}
			delta = room
		}
		for j := 0; j < delta; j++ {
			initLeaf(&l.pool[l.live], l.randomTexture(), &l.cfg, l.width, l.height, l.rng)
			l.live++
			l.originals++
		}
	case delta < 0:
		for i := l.live - 1; i >= 0 && delta < 0; i-- {
			if l.pool[i].State == LeafPiece {
				continue
			}
			l.pool[i].removed = true
			l.originals--
			delta++
		}
		l.compact()
	}
}

// compact drops removed leaves from pool[0:live], keeping draw order.
func (l *Leaves) compact() {
	n := 0
	for i := 0; i < l.live; i++ {
		if l.pool[i].removed {
			continue
		}
		if n != i {
			l.pool[n] = l.pool[i]
		}
		n++
	}
	for i := n; i < l.live; i++ {
		l.pool[i] = Leaf{}
	}
	l.live = n
}

func (l *Leaves) randomTexture() TextureRegion {
	return l.textures[randIntIn(l.rng, 0, len(l.textures)-1)]
}
