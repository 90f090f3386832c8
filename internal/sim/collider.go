package sim

// ColliderKind discriminates the collision primitive.
type ColliderKind int

const (
	CircleCollider ColliderKind = iota
	SegmentCollider
	KickerCollider // circle variant that captures instead of reflecting
)

func (k ColliderKind) String() string {
	switch k {
	case CircleCollider:
		return "circle"
	case SegmentCollider:
		return "segment"
	case KickerCollider:
		return "kicker-circle"
	default:
		return "unknown"
	}
}

// Collider is an immutable collision primitive tagged with its owning
// device. Rebuilt from scratch whenever authored shape parameters change.
type Collider struct {
	Kind   ColliderKind
	Owner  Device
	Margin float64

	// Circle kinds
	Center Vec3
	Radius float64

	// Segment kind, with precomputed collision surface offset by the margin
	P1        Vec3
	P2        Vec3
	Direction Vec3 // normalized P1->P2
	Normal    Vec3 // left normal of Direction in the playfield plane

	// Active height range on the playfield
	ZLow  float64
	ZHigh float64

	// Slingshot marks rubber segments that kick on contact.
	Slingshot bool
}

func newCircleCollider(kind ColliderKind, owner Device, center Vec3, radius, zLow, zHigh float64) *Collider {
	return &Collider{
		Kind:   kind,
		Owner:  owner,
		Center: center,
		Radius: fix(radius),
		ZLow:   zLow,
		ZHigh:  zHigh,
	}
}

func newSegmentCollider(owner Device, p1, p2 Vec3, margin, zLow, zHigh float64) *Collider {
	dir := p2.Minus(p1).Normalize()
	normal := NewVec3(-dir.Y, dir.X, 0)
	offset := normal.Times(margin)
	return &Collider{
		Kind:      SegmentCollider,
		Owner:     owner,
		Margin:    margin,
		P1:        p1.Plus(offset),
		P2:        p2.Plus(offset),
		Direction: dir,
		Normal:    normal,
		ZLow:      zLow,
		ZHigh:     zHigh,
	}
}

// kickerRadiusScale is the capture-radius policy table. Legacy tables shrink
// the authored radius so balls do not rattle out of the cup.
func kickerRadiusScale(legacyMode, fallThrough bool) float64 {
	if legacyMode && fallThrough {
		return 0.6
	}
	if legacyMode {
		return 0.75
	}
	return 1.0
}

// buildKickerColliders produces the kicker's single capture circle.
func buildKickerColliders(k *Kicker) []*Collider {
	p := k.params
	radius := p.Radius * kickerRadiusScale(p.LegacyMode, p.FallThrough)
	center := NewVec3(p.X, p.Y, p.Height)
	return []*Collider{
		newCircleCollider(KickerCollider, k, center, radius, p.Height, p.Height+p.HitHeight),
	}
}

// buildPlungerColliders produces the plunger tip segment straight from the
// static frame parameters.
func buildPlungerColliders(pl *Plunger) []*Collider {
	p := pl.params
	left := NewVec3(p.X-p.Width/2, p.FrameEnd, p.Height)
	right := NewVec3(p.X+p.Width/2, p.FrameEnd, p.Height)
	return []*Collider{
		newSegmentCollider(pl, left, right, 0, p.Height, p.Height+p.HitHeight),
	}
}

// buildProfileColliders produces wall segments along an authored drag-point
// profile, offset outward by margin and height-bounded by the playfield.
// Closed profiles (rubbers) connect the last point back to the first.
func buildProfileColliders(owner Device, points []DragPoint, margin, zLow, zHigh, playfieldHeight float64, closed bool) []*Collider {
	if zHigh > playfieldHeight && playfieldHeight > 0 {
		zHigh = playfieldHeight
	}
	n := len(points)
	if n < 2 {
		return nil
	}
	last := n - 1
	if closed {
		last = n
	}
	colliders := make([]*Collider, 0, last)
	for i := 0; i < last; i++ {
		a := points[i]
		b := points[(i+1)%n]
		col := newSegmentCollider(owner,
			NewVec3(a.Pos.X, a.Pos.Y, zLow),
			NewVec3(b.Pos.X, b.Pos.Y, zLow),
			margin, zLow, zHigh)
		colliders = append(colliders, col)
	}
	return colliders
}
