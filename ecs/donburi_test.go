package ecs

import (
	"testing"

	"github.com/phanxgames/canopy"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	if NewDonburiSink(world) == nil {
		t.Fatal("NewDonburiSink returned nil")
	}
}

func TestDonburiSink_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []canopy.LeafEvent
	LeafEventType.Subscribe(world, func(w donburi.World, e canopy.LeafEvent) {
		received = append(received, e)
	})

	sink.EmitEvent(canopy.LeafEvent{Type: canopy.LeafDropped, X: 10, Y: 20, Hit: true})
	sink.EmitEvent(canopy.LeafEvent{Type: canopy.LeafSplitEvent, Pieces: 3})

	// Events are queued until processed.
	if len(received) != 0 {
		t.Fatalf("received %d events before processing", len(received))
	}
	LeafEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	if e := received[0]; e.Type != canopy.LeafDropped || e.X != 10 || e.Y != 20 || !e.Hit {
		t.Errorf("event 0: %+v", e)
	}
	if e := received[1]; e.Type != canopy.LeafSplitEvent || e.Pieces != 3 {
		t.Errorf("event 1: %+v", e)
	}
}

func TestDonburiSink_FromLeaves(t *testing.T) {
	world := donburi.NewWorld()

	tex := canopy.TextureRegion{Width: 100, Height: 100}
	cfg := canopy.DefaultLeavesConfig()
	cfg.AutoFall = false
	cfg.Number = 1
	cfg.Width, cfg.Height = 400, 300
	leaves := canopy.NewLeaves([]canopy.TextureRegion{tex}, cfg, canopy.WithEventSink(NewDonburiSink(world)))

	var dropped int
	LeafEventType.Subscribe(world, func(w donburi.World, e canopy.LeafEvent) {
		if e.Type == canopy.LeafDropped && e.Hit {
			dropped++
		}
	})

	leaves.Each(func(_ int, lf *canopy.Leaf) {
		lf.X, lf.Y, lf.Rotation, lf.Alpha = 200, 150, 0, 1
	})
	if res := leaves.HitTest(200, 150); !res.Dropped {
		t.Fatalf("HitTest = %+v, want a drop", res)
	}
	events.ProcessAllEvents(world)

	if dropped != 1 {
		t.Errorf("dropped events = %d, want 1", dropped)
	}
}

func TestDonburiSink_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var count1, count2 int
	LeafEventType.Subscribe(world, func(w donburi.World, e canopy.LeafEvent) {
		count1++
	})
	LeafEventType.Subscribe(world, func(w donburi.World, e canopy.LeafEvent) {
		count2++
	})

	sink.EmitEvent(canopy.LeafEvent{Type: canopy.LeafLanded})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}
