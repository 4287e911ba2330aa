package canopy

// LeafEventType identifies a leaf lifecycle event.
type LeafEventType uint8

const (
	LeafDropped LeafEventType = iota // an idle leaf started falling (pacing or hit)
	LeafSplitEvent                   // a falling leaf was hit and spawned pieces
	LeafLanded                       // an original leaf reached the ground and was reset
	LeafPieceRemoved                 // a piece reached the ground and was removed
)

// String returns a readable name for the event type.
func (t LeafEventType) String() string {
	switch t {
	case LeafDropped:
		return "dropped"
	case LeafSplitEvent:
		return "split"
	case LeafLanded:
		return "landed"
	case LeafPieceRemoved:
		return "piece-removed"
	default:
		return "unknown"
	}
}

// LeafEvent carries leaf lifecycle data to callbacks and EventSinks.
type LeafEvent struct {
	Type LeafEventType
	// X, Y is the leaf position in leaves-local space when the event fired.
	X, Y float64
	// Hit is true when the event was caused by a pointer hit.
	Hit bool
	// Pieces is the number of pieces spawned (LeafSplitEvent only).
	Pieces int
}

// EventSink receives every LeafEvent. The ecs submodule provides a Donburi
// backed implementation.
type EventSink interface {
	EmitEvent(event LeafEvent)
}

// PointerContext carries pointer press data in stage coordinates.
type PointerContext struct {
	X, Y      float64
	PointerID int
	Injected  bool
}

// --- Handler registry ---

type handler[T any] struct {
	id uint32
	fn func(T)
}

// handlerList is an ordered set of callbacks with stable removal ids.
type handlerList[T any] struct {
	items  []handler[T]
	nextID uint32
}

func (l *handlerList[T]) add(fn func(T)) CallbackHandle {
	l.nextID++
	l.items = append(l.items, handler[T]{id: l.nextID, fn: fn})
	return CallbackHandle{id: l.nextID, reg: l}
}

func (l *handlerList[T]) remove(id uint32) {
	for i := range l.items {
		if l.items[i].id == id {
			copy(l.items[i:], l.items[i+1:])
			l.items[len(l.items)-1] = handler[T]{}
			l.items = l.items[:len(l.items)-1]
			return
		}
	}
}

func (l *handlerList[T]) fire(v T) {
	for _, h := range l.items {
		h.fn(v)
	}
}

func (l *handlerList[T]) len() int {
	return len(l.items)
}

type remover interface {
	remove(id uint32)
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id  uint32
	reg remover
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	h.reg.remove(h.id)
}
