package canopy

import (
	"encoding/json"
	"fmt"
)

// testStep is a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
}

type testScript struct {
	Steps []testStep `json:"steps"`
}

var testActions = map[string]bool{
	"screenshot": true,
	"click":      true,
	"swipe":      true,
	"wait":       true,
	"resize":     true,
	"pause":      true,
	"resume":     true,
}

// TestRunner sequences injected input, resizes, and screenshots across
// frames for scripted visual runs. Attach it with Stage.SetTestRunner.
//
// Script format:
//
//	{"steps": [
//	  {"action": "wait", "frames": 60},
//	  {"action": "click", "x": 200, "y": 40},
//	  {"action": "swipe", "fromX": 0, "fromY": 100, "toX": 400, "toY": 100, "frames": 20},
//	  {"action": "resize", "width": 640, "height": 480},
//	  {"action": "screenshot", "label": "after-swipe"}
//	]}
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !testActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches runner to the stage. It steps once per Update,
// before input is processed.
func (s *Stage) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether every step has run.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame.
func (r *TestRunner) step(s *Stage) {
	if r.done {
		return
	}
	// Let pending injections drain first.
	if s.pendingInjections() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		s.Screenshot(st.Label)
	case "click":
		s.InjectClick(st.X, st.Y)
	case "swipe":
		s.InjectSwipe(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "resize":
		s.Resize(st.Width, st.Height)
	case "pause":
		s.kernel.Pause()
	case "resume":
		s.kernel.Resume()
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && s.pendingInjections() == 0 {
		r.done = true
	}
}
