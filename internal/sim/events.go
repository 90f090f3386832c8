package sim

// EventKind identifies the kind of device event.
type EventKind int

const (
	EventInit EventKind = iota
	EventHit
	EventUnHit
	EventSwitch
	EventLimitEOS // travel reached the retracted limit
	EventLimitBOS // travel returned to the resting limit
)

func (k EventKind) String() string {
	switch k {
	case EventInit:
		return "init"
	case EventHit:
		return "hit"
	case EventUnHit:
		return "unhit"
	case EventSwitch:
		return "switch"
	case EventLimitEOS:
		return "limit_eos"
	case EventLimitBOS:
		return "limit_bos"
	default:
		return "unknown"
	}
}

// Event is a single typed device event delivered to observers.
type Event struct {
	Kind   EventKind `json:"kind"`
	Device string    `json:"device"`
	Value  bool      `json:"value"`   // switch events
	Speed  float64   `json:"speed"`   // stroke-limit events
	BallID int       `json:"ball_id"` // hit/unhit events, -1 when not ball-related
}

type observer struct {
	id int
	fn func(Event)
}

// EventBus is a per-device ordered observer list per event kind. Observers
// fire in registration order; dispatch snapshots the list first so handlers
// may subscribe or unsubscribe mid-dispatch.
type EventBus struct {
	nextID    int
	observers map[EventKind][]observer
}

func NewEventBus() *EventBus {
	return &EventBus{observers: make(map[EventKind][]observer)}
}

// Subscribe registers fn for events of the given kind and returns a handle
// usable with Unsubscribe.
func (b *EventBus) Subscribe(kind EventKind, fn func(Event)) int {
	b.nextID++
	b.observers[kind] = append(b.observers[kind], observer{id: b.nextID, fn: fn})
	return b.nextID
}

// SubscribeAll registers fn for every event kind under a single handle.
func (b *EventBus) SubscribeAll(fn func(Event)) int {
	b.nextID++
	for _, kind := range []EventKind{EventInit, EventHit, EventUnHit, EventSwitch, EventLimitEOS, EventLimitBOS} {
		b.observers[kind] = append(b.observers[kind], observer{id: b.nextID, fn: fn})
	}
	return b.nextID
}

// Unsubscribe removes the observer with the given handle from all kinds.
func (b *EventBus) Unsubscribe(id int) {
	for kind, list := range b.observers {
		kept := list[:0]
		for _, o := range list {
			if o.id != id {
				kept = append(kept, o)
			}
		}
		b.observers[kind] = kept
	}
}

// Fire delivers the event to all observers of its kind in registration order.
func (b *EventBus) Fire(ev Event) {
	list := b.observers[ev.Kind]
	if len(list) == 0 {
		return
	}
	snapshot := make([]observer, len(list))
	copy(snapshot, list)
	for _, o := range snapshot {
		o.fn(ev)
	}
}
