package sim

import "testing"

func TestEventBusFiresInRegistrationOrder(t *testing.T) {
	bus := NewEventBus()
	var order []int
	bus.Subscribe(EventHit, func(Event) { order = append(order, 1) })
	bus.Subscribe(EventHit, func(Event) { order = append(order, 2) })
	bus.Subscribe(EventHit, func(Event) { order = append(order, 3) })

	bus.Fire(Event{Kind: EventHit})

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("dispatch order = %v, want [1 2 3]", order)
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	id := bus.Subscribe(EventSwitch, func(Event) { calls++ })
	bus.Fire(Event{Kind: EventSwitch})
	bus.Unsubscribe(id)
	bus.Fire(Event{Kind: EventSwitch})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestEventBusMutationDuringDispatch(t *testing.T) {
	// An observer may unsubscribe itself (or add others) mid-dispatch; the
	// in-flight dispatch uses the snapshot taken before iterating.
	bus := NewEventBus()
	calls := 0
	var selfID int
	selfID = bus.Subscribe(EventHit, func(Event) {
		calls++
		bus.Unsubscribe(selfID)
		bus.Subscribe(EventHit, func(Event) { calls += 10 })
	})

	bus.Fire(Event{Kind: EventHit})
	if calls != 1 {
		t.Errorf("calls after first fire = %d, want 1 (snapshot dispatch)", calls)
	}

	bus.Fire(Event{Kind: EventHit})
	if calls != 11 {
		t.Errorf("calls after second fire = %d, want 11", calls)
	}
}

func TestEventBusSubscribeAll(t *testing.T) {
	bus := NewEventBus()
	var kinds []EventKind
	id := bus.SubscribeAll(func(ev Event) { kinds = append(kinds, ev.Kind) })

	bus.Fire(Event{Kind: EventInit})
	bus.Fire(Event{Kind: EventLimitEOS})
	if len(kinds) != 2 || kinds[0] != EventInit || kinds[1] != EventLimitEOS {
		t.Errorf("kinds = %v, want [init limit_eos]", kinds)
	}

	bus.Unsubscribe(id)
	bus.Fire(Event{Kind: EventHit})
	if len(kinds) != 2 {
		t.Error("SubscribeAll handle did not unsubscribe from all kinds")
	}
}
