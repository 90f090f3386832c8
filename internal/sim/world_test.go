package sim

import "testing"

func TestStepSlopeAcceleratesTowardDrain(t *testing.T) {
	w := NewWorld(Settings{Difficulty: 1, Slope: 90, Seed: 1})
	b := w.CreateBall(nil, NewVec3(250, 100, 10), 10, 1)

	w.Step(1.0 / 60)

	if b.Velocity.Y != 1.5 {
		t.Errorf("vy after one tick = %v, want 1.5", b.Velocity.Y)
	}
	if b.Position.Y <= 100 {
		t.Errorf("y = %v, want drifted toward drain", b.Position.Y)
	}
}

func TestStepFloorClampsFallingBall(t *testing.T) {
	w := NewWorld(Settings{Difficulty: 1, Gravity: 980, Seed: 1})
	b := w.CreateBall(nil, NewVec3(250, 100, 60), 10, 1)

	for i := 0; i < 60; i++ {
		w.Step(1.0 / 60)
	}

	if b.Position.Z != 10 {
		t.Errorf("z = %v, want resting at ball radius 10", b.Position.Z)
	}
	if b.Velocity.Z != 0 {
		t.Errorf("vz = %v, want 0 at the floor", b.Velocity.Z)
	}
}

func TestStepFrictionStopsSlowBall(t *testing.T) {
	w := NewWorld(Settings{Difficulty: 1, Friction: 8, MinVelocity: 0.5, Seed: 1})
	b := w.CreateBall(nil, NewVec3(250, 100, 10), 10, 1)
	b.Velocity = NewVec3(0.4, 0, 0)

	w.Step(1.0 / 60)

	if b.Velocity.X != 0 || b.Velocity.Y != 0 {
		t.Errorf("velocity = %+v, want flat stop below min velocity", b.Velocity)
	}
}

func TestStepFrozenBallDoesNotMove(t *testing.T) {
	w := NewWorld(Settings{Difficulty: 1, Gravity: 980, Slope: 90, Seed: 1})
	b := w.CreateBall(nil, NewVec3(250, 100, 10), 10, 1)
	b.Frozen = true

	for i := 0; i < 10; i++ {
		w.Step(1.0 / 60)
	}

	if !b.Position.IsEqualTo(NewVec3(250, 100, 10)) {
		t.Errorf("frozen ball moved to %+v", b.Position)
	}
}

func TestDestroyBallDrainsAtStepBoundary(t *testing.T) {
	w := NewWorld(quietSettings())
	b := w.CreateBall(nil, NewVec3(250, 100, 10), 10, 1)

	w.DestroyBall(b)
	w.DestroyBall(b) // second request is a no-op

	if len(w.Balls()) != 1 {
		t.Fatalf("balls before step = %d, want 1 (removal deferred)", len(w.Balls()))
	}

	w.Step(1.0 / 60)

	if len(w.Balls()) != 0 {
		t.Errorf("balls after step = %d, want 0", len(w.Balls()))
	}
}

func TestRampReflectsApproachingBall(t *testing.T) {
	w := NewWorld(quietSettings())
	ramp := NewRamp(RampParams{
		Name: "Wall",
		DragPoints: []DragPoint{
			{Pos: NewVec3(0, 0, 0)},
			{Pos: NewVec3(100, 0, 0)},
		},
		HeightTop:  40,
		Elasticity: 0.6,
	})
	if err := w.AddDevice(ramp); err != nil {
		t.Fatalf("AddDevice: %v", err)
	}

	hits := 0
	ramp.Events().Subscribe(EventHit, func(Event) { hits++ })

	b := w.CreateBall(nil, NewVec3(50, 5, 10), 10, 1)
	b.Velocity = NewVec3(0, -100, 0)

	w.Step(1.0 / 60)

	if b.Velocity.Y != 60 {
		t.Errorf("vy = %v, want 60 (normal component flipped at 0.6)", b.Velocity.Y)
	}
	if b.Position.Y < 10 {
		t.Errorf("y = %v, want pushed clear of the wall", b.Position.Y)
	}
	if hits != 1 {
		t.Errorf("hit events = %d, want 1", hits)
	}
	if !b.Contact.HitNormal.IsEqualTo(NewVec3(0, 1, 0)) {
		t.Errorf("contact normal = %+v, want (0,1,0)", b.Contact.HitNormal)
	}
}

func TestRampIgnoresRecedingBall(t *testing.T) {
	w := NewWorld(quietSettings())
	ramp := NewRamp(RampParams{
		Name: "Wall",
		DragPoints: []DragPoint{
			{Pos: NewVec3(0, 0, 0)},
			{Pos: NewVec3(100, 0, 0)},
		},
		HeightTop: 40,
	})
	if err := w.AddDevice(ramp); err != nil {
		t.Fatalf("AddDevice: %v", err)
	}

	b := w.CreateBall(nil, NewVec3(50, 5, 10), 10, 1)
	b.Velocity = NewVec3(0, 100, 0) // moving away along the normal

	w.Step(1.0 / 60)

	if b.Velocity.Y <= 0 {
		t.Errorf("vy = %v, want unchanged positive (receding)", b.Velocity.Y)
	}
}

func TestRubberSlingshotKicksOutward(t *testing.T) {
	w := NewWorld(quietSettings())
	rubber := NewRubber(RubberParams{
		Name: "Sling",
		DragPoints: []DragPoint{
			{Pos: NewVec3(0, 0, 0), Slingshot: true},
			{Pos: NewVec3(100, 0, 0)},
			{Pos: NewVec3(50, 50, 0)},
		},
		Elasticity:     0.8,
		SlingshotForce: 220,
	})
	if err := w.AddDevice(rubber); err != nil {
		t.Fatalf("AddDevice: %v", err)
	}

	b := w.CreateBall(nil, NewVec3(50, 5, 10), 10, 1)
	b.Velocity = NewVec3(0, -100, 0)

	w.Step(1.0 / 60)

	// Elastic rebound (100 * 0.8) plus the slingshot kick along the normal.
	if b.Velocity.Y != 300 {
		t.Errorf("vy = %v, want 300", b.Velocity.Y)
	}
}

func TestUnknownDeviceListsRegisteredNames(t *testing.T) {
	w, _, _ := newSignalWorld(t)

	_, err := w.Device("Ghost")
	if err == nil {
		t.Fatal("expected invalid-reference error")
	}
	refErr, ok := err.(*InvalidReferenceError)
	if !ok {
		t.Fatalf("error type = %T, want *InvalidReferenceError", err)
	}
	if refErr.Kind != "device" || len(refErr.Valid) != 2 {
		t.Errorf("error = %v, want device kind naming both registered devices", refErr)
	}
}

func TestDuplicateDeviceNameRejected(t *testing.T) {
	w := NewWorld(quietSettings())
	if err := w.AddDevice(NewKicker(KickerParams{Name: "K", Radius: 25})); err != nil {
		t.Fatalf("AddDevice: %v", err)
	}
	if err := w.AddDevice(NewKicker(KickerParams{Name: "K", Radius: 25})); err == nil {
		t.Error("duplicate device name accepted")
	}
}

func TestDemoPlayfieldBuilds(t *testing.T) {
	w, err := NewDemoPlayfield().BuildWorld()
	if err != nil {
		t.Fatalf("BuildWorld: %v", err)
	}

	if got := len(w.Devices()); got != 6 {
		t.Errorf("device count = %d, want 6", got)
	}
	for _, name := range []string{"Plunger", "LeftKicker", "RightKicker", "LeftSling", "RightSling", "RightRamp"} {
		if _, err := w.Device(name); err != nil {
			t.Errorf("Device(%q): %v", name, err)
		}
	}
}

func seededDemoWorld(t *testing.T, seed int64) (*World, *Ball) {
	t.Helper()
	pf := NewDemoPlayfield()
	pf.Settings.Seed = seed
	w, err := pf.BuildWorld()
	if err != nil {
		t.Fatalf("BuildWorld: %v", err)
	}

	d, err := w.Device("LeftKicker")
	if err != nil {
		t.Fatalf("Device: %v", err)
	}
	k := d.(*Kicker)
	b := k.CreateBall()

	coil, err := k.CoilByName("Kick")
	if err != nil {
		t.Fatalf("CoilByName: %v", err)
	}
	coil.Set(true)
	return w, b
}

func TestStepDeterminismWithFixedSeed(t *testing.T) {
	w1, b1 := seededDemoWorld(t, 99)
	w2, b2 := seededDemoWorld(t, 99)

	for i := 0; i < 90; i++ {
		w1.Step(1.0 / 60)
		w2.Step(1.0 / 60)

		if !b1.Position.IsEqualTo(b2.Position) {
			t.Fatalf("tick %d: positions diverged: %+v vs %+v", i, b1.Position, b2.Position)
		}
		if !b1.Velocity.IsEqualTo(b2.Velocity) {
			t.Fatalf("tick %d: velocities diverged: %+v vs %+v", i, b1.Velocity, b2.Velocity)
		}
	}
}
