// Package canopy is an animated falling leaves layer for [Ebitengine].
//
// Canopy provides a small frame kernel that drives pluggable players, a
// pooled leaf simulation with pointer interaction, and an Ebitengine stage
// that hosts both in a window, optionally transparent and click-through.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window and runs a
// [Stage] until it is destroyed:
//
//	stage := canopy.NewStage(800, 600)
//	leaves := canopy.NewLeaves(atlas.RegionsWithPrefix("leaf"), canopy.DefaultLeavesConfig())
//	stage.Kernel().AddPlayer("leaves", canopy.NewLeavesPlayer(atlas, leaves))
//	canopy.Run(stage, canopy.DefaultConfig().Window)
//
// # Kernel and players
//
// A [Kernel] owns named [Player] values and updates every enabled, unpaused
// player once per frame with the elapsed milliseconds and the current
// timestamp. Frames come from a [FrameScheduler]; the Stage schedules them
// on Ebitengine's Update and [ManualScheduler] steps them by hand in tests.
// An Update error is fatal: the kernel logs it and stops scheduling.
//
// # Leaves
//
// [Leaves] is a fixed-capacity pool. Idle leaves rest near the top edge and
// drop on a paced schedule or when hit. A hit on a falling leaf splits it
// into pieces that fade in, spin, and are removed when they land. Original
// leaves that land are recycled to the top. Lifecycle events are delivered
// to [Leaves.OnEvent] callbacks and an optional [EventSink]; the
// canopy/ecs submodule publishes them into a [Donburi] world.
//
// # Configuration
//
// [LoadConfigFile] reads YAML, [ApplyEnv] overlays CANOPY_* environment
// variables, and [SettingsStore] persists user settings between runs.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package canopy
