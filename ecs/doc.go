// Package ecs provides ECS adapters for canopy's leaf events.
//
// The primary adapter is [NewDonburiSink], which publishes leaf lifecycle
// events (dropped, split, landed, piece removed) into a [Donburi] world as
// typed events. Subscribe to [LeafEventType] in your ECS systems to receive
// them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	leaves.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
