package sim

import "testing"

func demoPlungerParams() PlungerParams {
	return PlungerParams{
		Name:       "Plunger",
		X:          470,
		Width:      25,
		FrameEnd:   900,
		FrameStart: 950,
		PullSpeed:  50,
		FireSpeed:  80,
	}
}

func newPlungerWorld(t *testing.T, params PlungerParams) (*World, *Plunger) {
	t.Helper()
	w := NewWorld(quietSettings())
	p := NewPlunger(params)
	if err := w.AddDevice(p); err != nil {
		t.Fatalf("AddDevice: %v", err)
	}
	return w, p
}

func TestPlungerStrokeRatioBounds(t *testing.T) {
	p := NewPlunger(demoPlungerParams())

	if got := p.StrokeRatio(); got != 0 {
		t.Errorf("ratio at frame end = %v, want 0", got)
	}

	p.SetAnalog(1)
	if got := p.StrokeRatio(); got != 1 {
		t.Errorf("ratio at frame start = %v, want 1", got)
	}

	p.SetAnalog(0.5)
	if got := p.StrokeRatio(); got != 0.5 {
		t.Errorf("ratio at mid stroke = %v, want 0.5", got)
	}
}

func TestPlungerAnalogStoredVerbatim(t *testing.T) {
	p := NewPlunger(demoPlungerParams())

	p.SetAnalog(1.7)
	if got := p.Analog(); got != 1.7 {
		t.Errorf("analog = %v, want 1.7 stored verbatim", got)
	}
	// The derived position saturates even though the raw input does not.
	if got := p.Position(); got != 950 {
		t.Errorf("position = %v, want saturated frame start 950", got)
	}

	p.SetAnalog(-0.3)
	if got := p.Analog(); got != -0.3 {
		t.Errorf("analog = %v, want -0.3 stored verbatim", got)
	}
	if got := p.Position(); got != 900 {
		t.Errorf("position = %v, want saturated frame end 900", got)
	}
}

func TestPlungerPullHoldsAtRetractedLimit(t *testing.T) {
	_, p := newPlungerWorld(t, demoPlungerParams())

	var eosSpeed float64
	eosCount := 0
	p.Events().Subscribe(EventLimitEOS, func(ev Event) {
		eosCount++
		eosSpeed = ev.Speed
	})

	p.PullBack()
	for i := 0; i < 120; i++ {
		p.Advance(1.0 / 60)
	}

	if p.Position() != 950 {
		t.Errorf("position = %v, want held at 950", p.Position())
	}
	if p.State() != "holding" {
		t.Errorf("state = %s, want holding", p.State())
	}
	if eosCount != 1 {
		t.Errorf("retracted-limit event fired %d times, want 1", eosCount)
	}
	if eosSpeed != 50 {
		t.Errorf("limit event speed = %v, want pull speed 50", eosSpeed)
	}
}

func TestPlungerFireReturnsToRest(t *testing.T) {
	_, p := newPlungerWorld(t, demoPlungerParams())

	bosCount := 0
	p.Events().Subscribe(EventLimitBOS, func(Event) { bosCount++ })

	p.SetAnalog(1)
	p.Fire()
	for i := 0; i < 120; i++ {
		p.Advance(1.0 / 60)
	}

	if p.State() != "resting" {
		t.Errorf("state = %s, want resting", p.State())
	}
	if p.Position() != 900 {
		t.Errorf("position = %v, want 900", p.Position())
	}
	if bosCount != 1 {
		t.Errorf("resting-limit event fired %d times, want 1", bosCount)
	}
}

func TestPlungerRetractModeAutoFires(t *testing.T) {
	params := demoPlungerParams()
	params.EnableRetract = true
	_, p := newPlungerWorld(t, params)

	p.PullBack()
	for i := 0; i < 70 && p.State() != "firing"; i++ {
		p.Advance(1.0 / 60)
	}

	if p.State() != "firing" {
		t.Errorf("state = %s, want firing after auto-retract", p.State())
	}
}

func TestPlungerManualFireScalesWithStroke(t *testing.T) {
	w, p := newPlungerWorld(t, demoPlungerParams())

	// Ball resting just above the tip.
	b := w.CreateBall(nil, NewVec3(470, 890, 12.5), 12.5, 1)
	b.Velocity = NewVec3(0, 20, 0)
	w.Step(1.0 / 60) // registers the resting contact

	p.SetAnalog(0.5)
	p.Fire()

	want := fix(-0.5 * 80)
	if b.Velocity.Y != want {
		t.Errorf("launch vy = %v, want %v", b.Velocity.Y, want)
	}
}

func TestAutoPlungerFiresAtFullStrength(t *testing.T) {
	params := demoPlungerParams()
	params.AutoPlunger = true
	w, p := newPlungerWorld(t, params)

	b := w.CreateBall(nil, NewVec3(470, 890, 12.5), 12.5, 1)
	b.Velocity = NewVec3(0, 20, 0)
	w.Step(1.0 / 60)

	// Never pulled back, yet fires as if fully retracted.
	p.Fire()

	if b.Velocity.Y != -80 {
		t.Errorf("launch vy = %v, want -80 (constant force)", b.Velocity.Y)
	}
}

func TestPlungerCoilBindings(t *testing.T) {
	_, p := newPlungerWorld(t, demoPlungerParams())

	pull, err := p.CoilByName("Pull")
	if err != nil {
		t.Fatalf("CoilByName: %v", err)
	}

	// Enable pulls; release fires.
	pull.Set(true)
	if p.State() != "pulling" {
		t.Errorf("state after pull enable = %s, want pulling", p.State())
	}
	pull.Set(false)
	if p.State() != "firing" {
		t.Errorf("state after pull release = %s, want firing", p.State())
	}

	// Direct auto-fire path.
	_, p2 := newPlungerWorld(t, demoPlungerParams())
	fire, err := p2.CoilByName("Fire")
	if err != nil {
		t.Fatalf("CoilByName: %v", err)
	}
	fire.Set(true)
	if p2.State() != "firing" {
		t.Errorf("state after fire enable = %s, want firing", p2.State())
	}
}

func TestPlungerUnknownCoilListsValidNames(t *testing.T) {
	p := NewPlunger(demoPlungerParams())
	_, err := p.CoilByName("Foo")
	if err == nil {
		t.Fatal("expected invalid-reference error")
	}
	refErr, ok := err.(*InvalidReferenceError)
	if !ok {
		t.Fatalf("error type = %T, want *InvalidReferenceError", err)
	}
	want := map[string]bool{"Pull": true, "Fire": true}
	if len(refErr.Valid) != 2 || !want[refErr.Valid[0]] || !want[refErr.Valid[1]] {
		t.Errorf("valid set = %v, want exactly [Pull Fire]", refErr.Valid)
	}
}

func TestPlungerFireWhileFiringIsNoOp(t *testing.T) {
	_, p := newPlungerWorld(t, demoPlungerParams())

	p.SetAnalog(1)
	p.Fire()
	p.Advance(1.0 / 60)
	posAfterFirst := p.Position()

	p.Fire() // already firing
	if p.Position() != posAfterFirst {
		t.Error("second fire mutated the stroke")
	}
}
