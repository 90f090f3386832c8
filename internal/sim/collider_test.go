package sim

import "testing"

func TestProfileColliderCounts(t *testing.T) {
	points := []DragPoint{
		{Pos: NewVec3(0, 0, 0)},
		{Pos: NewVec3(10, 0, 0)},
		{Pos: NewVec3(10, 10, 0)},
		{Pos: NewVec3(0, 10, 0)},
	}

	ramp := NewRamp(RampParams{Name: "R", DragPoints: points})
	if got := len(ramp.Colliders()); got != 3 {
		t.Errorf("open profile segments = %d, want 3", got)
	}

	rubber := NewRubber(RubberParams{Name: "B", DragPoints: points})
	if got := len(rubber.Colliders()); got != 4 {
		t.Errorf("closed profile segments = %d, want 4", got)
	}
}

func TestProfileColliderMarginOffset(t *testing.T) {
	points := []DragPoint{
		{Pos: NewVec3(0, 0, 0)},
		{Pos: NewVec3(100, 0, 0)},
	}
	ramp := NewRamp(RampParams{Name: "R", DragPoints: points, Margin: 5})
	col := ramp.Colliders()[0]

	// Direction +X, left normal +Y: the collision surface sits margin
	// units off the authored line.
	if col.P1.Y != 5 || col.P2.Y != 5 {
		t.Errorf("surface offset = (%v, %v), want margin 5", col.P1.Y, col.P2.Y)
	}
	if !col.Normal.IsEqualTo(NewVec3(0, 1, 0)) {
		t.Errorf("normal = %+v, want (0,1,0)", col.Normal)
	}
}

func TestRampHeightBoundedByPlayfield(t *testing.T) {
	w := NewWorld(Settings{Difficulty: 1, TableHeight: 120, Seed: 1})
	ramp := NewRamp(RampParams{
		Name: "R",
		DragPoints: []DragPoint{
			{Pos: NewVec3(0, 0, 0)},
			{Pos: NewVec3(100, 0, 0)},
		},
		HeightBottom: 0,
		HeightTop:    500,
	})
	if err := w.AddDevice(ramp); err != nil {
		t.Fatalf("AddDevice: %v", err)
	}

	for _, col := range ramp.Colliders() {
		if col.ZHigh > 120 {
			t.Errorf("ZHigh = %v, want clamped to table height 120", col.ZHigh)
		}
	}
}

func TestRubberSlingshotFlagPropagates(t *testing.T) {
	rubber := NewRubber(RubberParams{
		Name: "S",
		DragPoints: []DragPoint{
			{Pos: NewVec3(0, 0, 0), Slingshot: true},
			{Pos: NewVec3(10, 0, 0)},
			{Pos: NewVec3(5, 10, 0)},
		},
	})
	cols := rubber.Colliders()
	if !cols[0].Slingshot {
		t.Error("leading slingshot segment not tagged")
	}
	if cols[1].Slingshot || cols[2].Slingshot {
		t.Error("non-slingshot segments tagged")
	}
}

func TestBuilderIsPure(t *testing.T) {
	params := KickerParams{Name: "K", X: 10, Y: 20, Radius: 25, LegacyMode: true}
	a := NewKicker(params).Colliders()
	b := NewKicker(params).Colliders()

	if a[0].Radius != b[0].Radius || !a[0].Center.IsEqualTo(b[0].Center) {
		t.Error("same authored shape produced different geometry")
	}
}

func TestPlungerColliderFromFrameParams(t *testing.T) {
	p := NewPlunger(demoPlungerParams())
	cols := p.Colliders()
	if len(cols) != 1 {
		t.Fatalf("expected 1 collider, got %d", len(cols))
	}
	col := cols[0]
	if col.Kind != SegmentCollider {
		t.Errorf("kind = %s, want segment", col.Kind)
	}
	if col.P1.Y != 900 || col.P2.Y != 900 {
		t.Errorf("tip at y = (%v, %v), want frame end 900", col.P1.Y, col.P2.Y)
	}
	if col.P1.X != 457.5 || col.P2.X != 482.5 {
		t.Errorf("tip span = (%v, %v), want 457.5..482.5", col.P1.X, col.P2.X)
	}
}
