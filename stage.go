package canopy

import (
	"errors"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const stageTag = "Stage"

// resizeEvent is the payload of resize listeners.
type resizeEvent struct {
	width, height int
}

// Stage hosts a Kernel inside Ebitengine. It implements ebiten.Game, and it
// is both the kernel's Surface and its FrameScheduler: each Ebitengine
// Update fires the pending frame callback, and each Draw renders the
// kernel's Drawer players in registration order.
type Stage struct {
	// ClearColor fills the screen before players draw. The zero value leaves
	// the screen transparent.
	ClearColor Color
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string

	kernel *Kernel
	slot   frameSlot

	width, height int

	pointerDown handlerList[PointerContext]
	pointerMove handlerList[PointerContext]
	resize      handlerList[resizeEvent]

	cursorX, cursorY int
	touchBuf         []ebiten.TouchID

	injectQueue     []syntheticPointerEvent
	testRunner      *TestRunner
	screenshotQueue []string

	headless   bool
	err        error
	terminated bool
}

// NewStage creates a stage with the given logical size and a kernel driven
// by it. opts configure the kernel.
func NewStage(width, height int, opts ...KernelOption) *Stage {
	s := &Stage{
		width:         width,
		height:        height,
		ScreenshotDir: "screenshots",
		cursorX:       -1,
		cursorY:       -1,
	}
	s.kernel = NewKernel(s, s, opts...)
	return s
}

// Kernel returns the kernel driven by the stage.
func (s *Stage) Kernel() *Kernel {
	return s.kernel
}

// Size implements Surface.
func (s *Stage) Size() (width, height int) {
	return s.width, s.height
}

// RequestFrame implements FrameScheduler. The callback runs on the next
// Ebitengine Update.
func (s *Stage) RequestFrame(fn FrameFunc) FrameHandle {
	return s.slot.request(fn)
}

// CancelFrame implements FrameScheduler.
func (s *Stage) CancelFrame(h FrameHandle) {
	s.slot.cancel(h)
}

// OnPointerDown registers fn for pointer presses (left mouse button, touch,
// or injected).
func (s *Stage) OnPointerDown(fn func(PointerContext)) CallbackHandle {
	return s.pointerDown.add(fn)
}

// OnPointerMove registers fn for mouse cursor movement and injected moves.
func (s *Stage) OnPointerMove(fn func(PointerContext)) CallbackHandle {
	return s.pointerMove.add(fn)
}

// OnResize registers fn to be called when the layout size changes.
func (s *Stage) OnResize(fn func(width, height int)) CallbackHandle {
	return s.resize.add(func(e resizeEvent) { fn(e.width, e.height) })
}

// Resize sets the logical size and notifies resize listeners when it
// changed.
func (s *Stage) Resize(width, height int) {
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	s.resize.fire(resizeEvent{width, height})
}

// Destroy destroys the kernel and makes the next Update end the game.
func (s *Stage) Destroy() {
	s.kernel.Destroy()
	s.terminated = true
}

// SetHeadless disables polling of real mouse and touch input. Injected input
// still works.
func (s *Stage) SetHeadless(headless bool) {
	s.headless = headless
}

// Err returns the fatal error that stopped the stage, if any.
func (s *Stage) Err() error {
	return s.err
}

// Update implements ebiten.Game. It handles input, then runs the pending
// kernel frame. A fatal frame error is returned as is and stops the game.
func (s *Stage) Update() error {
	if s.err != nil {
		return s.err
	}
	if s.terminated || s.kernel.Destroyed() {
		return ebiten.Termination
	}

	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInput()

	if _, err := s.slot.fire(); err != nil {
		logf(stageTag, "frame failed, stopping: %v", err)
		s.err = err
		return err
	}
	if s.kernel.Destroyed() {
		s.terminated = true
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (s *Stage) Draw(screen *ebiten.Image) {
	if s.ClearColor.A > 0 {
		r, g, b, a := s.ClearColor.premultiplied()
		screen.Fill(color.RGBA{R: r, G: g, B: b, A: a})
	}
	s.kernel.Each(func(_ string, p Player) {
		if !p.Enabled() {
			return
		}
		if d, ok := p.(Drawer); ok {
			d.Draw(screen)
		}
	})
	s.flushScreenshots(screen)
}

// Layout implements ebiten.Game. The stage follows the window size.
func (s *Stage) Layout(outsideWidth, outsideHeight int) (int, int) {
	s.Resize(outsideWidth, outsideHeight)
	return s.width, s.height
}

// processInput feeds one injected event, or real pointer input when the
// inject queue is empty.
func (s *Stage) processInput() {
	if s.processInjectedInput() || s.headless {
		return
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		s.pointerDown.fire(PointerContext{X: float64(x), Y: float64(y)})
	}

	s.touchBuf = inpututil.AppendJustPressedTouchIDs(s.touchBuf[:0])
	for _, id := range s.touchBuf {
		x, y := ebiten.TouchPosition(id)
		s.pointerDown.fire(PointerContext{X: float64(x), Y: float64(y), PointerID: int(id) + 1})
	}

	if s.pointerMove.len() > 0 {
		x, y := ebiten.CursorPosition()
		if x != s.cursorX || y != s.cursorY {
			s.cursorX, s.cursorY = x, y
			s.pointerMove.fire(PointerContext{X: float64(x), Y: float64(y)})
		}
	}
}

// IsTermination reports whether err is the normal end of a stage run.
func IsTermination(err error) bool {
	return errors.Is(err, ebiten.Termination)
}
