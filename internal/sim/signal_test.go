package sim

import (
	"strings"
	"testing"
)

// newSignalWorld builds a world with one kicker (switch source) and one
// plunger (coil destinations).
func newSignalWorld(t *testing.T) (*World, *Kicker, *Plunger) {
	t.Helper()
	w := NewWorld(quietSettings())
	k := NewKicker(KickerParams{Name: "Scoop", Radius: 25})
	p := NewPlunger(demoPlungerParams())
	if err := w.AddDevice(k); err != nil {
		t.Fatalf("AddDevice kicker: %v", err)
	}
	if err := w.AddDevice(p); err != nil {
		t.Fatalf("AddDevice plunger: %v", err)
	}
	return w, k, p
}

func TestWireAddRemoveRoundTrip(t *testing.T) {
	w, _, _ := newSignalWorld(t)
	n := w.Network()

	before := len(n.wires["Scoop"])
	cfg := WireConfig{ID: "w1", Source: "Scoop", DestDevice: "Plunger", DestCoil: "Fire"}
	if err := n.AddWireDest(cfg); err != nil {
		t.Fatalf("AddWireDest: %v", err)
	}
	if err := n.RemoveWireDest("w1"); err != nil {
		t.Fatalf("RemoveWireDest: %v", err)
	}
	if got := len(n.wires["Scoop"]); got != before {
		t.Errorf("destination set size = %d, want pre-add %d", got, before)
	}

	// Removing again is an invalid reference.
	err := n.RemoveWireDest("w1")
	if err == nil {
		t.Fatal("expected invalid-reference error on double remove")
	}
	if _, ok := err.(*InvalidReferenceError); !ok {
		t.Fatalf("error type = %T, want *InvalidReferenceError", err)
	}
}

func TestWirePropagationInRegistrationOrder(t *testing.T) {
	w, k, p := newSignalWorld(t)
	n := w.Network()

	if err := n.AddWireDest(WireConfig{ID: "first", Source: "Scoop", DestDevice: "Plunger", DestCoil: "Pull"}); err != nil {
		t.Fatalf("AddWireDest: %v", err)
	}
	if err := n.AddWireDest(WireConfig{ID: "second", Source: "Scoop", DestDevice: "Plunger", DestCoil: "Fire"}); err != nil {
		t.Fatalf("AddWireDest: %v", err)
	}

	if err := n.SetSwitch("Scoop", true); err != nil {
		t.Fatalf("SetSwitch: %v", err)
	}

	pull, _ := p.CoilByName("Pull")
	fire, _ := p.CoilByName("Fire")
	if !pull.Enabled() || !fire.Enabled() {
		t.Error("wire destinations not driven")
	}
	if k.sw.Value != true {
		t.Error("switch value not persisted")
	}
}

func TestPulsedWireRevertsAfterAction(t *testing.T) {
	w, _, p := newSignalWorld(t)
	n := w.Network()

	pulse := true
	if err := n.AddWireDest(WireConfig{ID: "pw", Source: "Scoop", DestDevice: "Plunger", DestCoil: "Fire", Pulse: &pulse}); err != nil {
		t.Fatalf("AddWireDest: %v", err)
	}

	if err := n.SetSwitch("Scoop", true); err != nil {
		t.Fatalf("SetSwitch: %v", err)
	}

	// The action ran (plunger fired) but the coil reverted to disabled.
	if p.State() != "firing" {
		t.Errorf("plunger state = %s, want firing (action ran)", p.State())
	}
	fire, _ := p.CoilByName("Fire")
	if fire.Enabled() {
		t.Error("pulsed destination held its state instead of reverting")
	}
}

func TestPulsedSwitchRevertsValue(t *testing.T) {
	w := NewWorld(quietSettings())
	r := NewRubber(RubberParams{
		Name: "Sling",
		DragPoints: []DragPoint{
			{Pos: NewVec3(0, 0, 0)},
			{Pos: NewVec3(10, 0, 0)},
			{Pos: NewVec3(5, 10, 0)},
		},
	})
	if err := w.AddDevice(r); err != nil {
		t.Fatalf("AddDevice: %v", err)
	}

	if err := w.Network().SetSwitch("Sling", true); err != nil {
		t.Fatalf("SetSwitch: %v", err)
	}
	sw, _ := w.Network().SwitchByName("Sling")
	if sw.Value {
		t.Error("pulsed switch held its value after propagation")
	}
}

func TestAddSwitchDestAppliesInitialStatus(t *testing.T) {
	w, _, p := newSignalWorld(t)

	if err := w.Network().AddSwitchDest(WireConfig{ID: "sd", Source: "Scoop", DestDevice: "Plunger", DestCoil: "Pull"}, true); err != nil {
		t.Fatalf("AddSwitchDest: %v", err)
	}
	if p.State() != "pulling" {
		t.Errorf("plunger state = %s, want pulling from initial status", p.State())
	}
}

func TestWireUnknownDestinationNamesValidSet(t *testing.T) {
	w, _, _ := newSignalWorld(t)

	err := w.Network().AddWireDest(WireConfig{ID: "bad", Source: "Scoop", DestDevice: "Plunger", DestCoil: "Foo"})
	if err == nil {
		t.Fatal("expected invalid-reference error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Pull") || !strings.Contains(msg, "Fire") {
		t.Errorf("error %q does not name the valid coil set", msg)
	}
}

func TestWireUnknownSourceSwitch(t *testing.T) {
	w, _, _ := newSignalWorld(t)

	err := w.Network().AddWireDest(WireConfig{ID: "bad", Source: "Ghost", DestDevice: "Plunger", DestCoil: "Fire"})
	if err == nil {
		t.Fatal("expected invalid-reference error")
	}
	refErr, ok := err.(*InvalidReferenceError)
	if !ok {
		t.Fatalf("error type = %T, want *InvalidReferenceError", err)
	}
	if refErr.Kind != "switch" {
		t.Errorf("error kind = %s, want switch", refErr.Kind)
	}
}

func TestSwitchDrivenKickThroughWire(t *testing.T) {
	// Full loop: capture raises the kicker switch, the wire fires the
	// kicker's own coil, the coil kick re-launches the ball.
	w := NewWorld(quietSettings())
	k := NewKicker(KickerParams{
		Name: "Scoop", X: 100, Y: 500, Radius: 25,
		KickAngle: 0, KickSpeed: 300,
	})
	if err := w.AddDevice(k); err != nil {
		t.Fatalf("AddDevice: %v", err)
	}
	pulse := true
	if err := w.Network().AddWireDest(WireConfig{
		ID: "eject", Source: "Scoop", DestDevice: "Scoop", DestCoil: "Kick", Pulse: &pulse,
	}); err != nil {
		t.Fatalf("AddWireDest: %v", err)
	}

	b := w.CreateBall(nil, NewVec3(100, 540, 12.5), 12.5, 1)
	b.Velocity = NewVec3(0, -200, 0)

	for i := 0; i < 120; i++ {
		w.Step(1.0 / 60)
	}

	// The scoop captured and immediately ejected: empty again, ball moving
	// up the table.
	if k.HasBall() {
		t.Error("auto-eject wire did not fire")
	}
	if b.Velocity.Y >= 0 {
		t.Errorf("ball vy = %v, want negative after eject", b.Velocity.Y)
	}
}
