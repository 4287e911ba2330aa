package canopy

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTweenValueReachesTarget(t *testing.T) {
	v := 10.0
	g := TweenValue(&v, 100, 1.0, ease.Linear)

	// Exact halves avoid float32 accumulation drift.
	g.Update(0.5)
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	if math.Abs(v-100) > 0.5 {
		t.Errorf("v = %f, want ~100", v)
	}
}

func TestTweenValueInterpolates(t *testing.T) {
	alpha := 1.0
	g := TweenValue(&alpha, 0, 1.0, ease.Linear)

	g.Update(0.5)
	if g.Done {
		t.Fatal("should not be Done at half duration")
	}
	if math.Abs(alpha-0.5) > 0.01 {
		t.Errorf("alpha = %f, want ~0.5", alpha)
	}
}

func TestTweenColorAllComponents(t *testing.T) {
	c := Color{R: 1, G: 0, B: 0, A: 1}
	target := Color{R: 0, G: 1, B: 0.5, A: 0.5}

	g := TweenColor(&c, target, 1.0, ease.Linear)
	g.Update(0.5)
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	if math.Abs(c.R-target.R) > 0.01 {
		t.Errorf("R = %f, want %f", c.R, target.R)
	}
	if math.Abs(c.G-target.G) > 0.01 {
		t.Errorf("G = %f, want %f", c.G, target.G)
	}
	if math.Abs(c.B-target.B) > 0.01 {
		t.Errorf("B = %f, want %f", c.B, target.B)
	}
	if math.Abs(c.A-target.A) > 0.01 {
		t.Errorf("A = %f, want %f", c.A, target.A)
	}
}

func TestTweenDoneStopsWriting(t *testing.T) {
	v := 0.0
	g := TweenValue(&v, 1, 0.5, ease.Linear)
	g.Update(0.5)
	if !g.Done {
		t.Fatal("expected Done")
	}

	v = 42
	g.Update(0.5)
	if v != 42 {
		t.Errorf("finished tween wrote %f", v)
	}
}
