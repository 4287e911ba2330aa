package ecs

import (
	"github.com/phanxgames/canopy"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// LeafEventType is the Donburi event type for canopy leaf events.
var LeafEventType = events.NewEventType[canopy.LeafEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Leaf
// events are queued on LeafEventType and delivered by ProcessEvents.
func NewDonburiSink(world donburi.World) canopy.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event canopy.LeafEvent) {
	LeafEventType.Publish(s.world, event)
}
