package sim

// Ramp is a passive profile of wall segments generated from the editor's
// drag points. Contacts reflect the ball and pulse the ramp's switch.
type Ramp struct {
	deviceBase
	params    RampParams
	colliders []*Collider
	sw        *SwitchState
}

func NewRamp(params RampParams) *Ramp {
	if params.Elasticity == 0 {
		params.Elasticity = 0.6
	}
	r := &Ramp{
		deviceBase: newDeviceBase(params.Name, KindRamp),
		params:     params,
		sw:         &SwitchState{Name: params.Name, Pulse: true},
	}
	// Built unbounded here; rebound against the table height on bind.
	r.colliders = buildProfileColliders(r, params.DragPoints, params.Margin,
		params.HeightBottom, params.HeightTop, 0, false)
	return r
}

func (r *Ramp) bind(w *World) {
	r.deviceBase.bind(w)
	r.colliders = buildProfileColliders(r, r.params.DragPoints, r.params.Margin,
		r.params.HeightBottom, r.params.HeightTop, w.Settings.TableHeight, false)
}

func (r *Ramp) Params() RampParams      { return r.params }
func (r *Ramp) Colliders() []*Collider  { return r.colliders }
func (r *Ramp) Switches() []*SwitchState { return []*SwitchState{r.sw} }

// ResolveContact reflects the ball about the wall normal with the ramp's
// elasticity, keeping the vertical component.
func (r *Ramp) ResolveContact(b *Ball, col *Collider) {
	if b.Frozen {
		return
	}
	approach := b.Velocity.Dot(col.Normal)
	if approach >= 0 {
		return
	}
	reflectSegment(b, col, r.params.Elasticity)
	r.fire(EventHit, b.ID)
	if r.world != nil {
		r.world.network.Trigger(r.sw, true)
	}
}

// reflectSegment rebounds a ball off a wall segment: the normal component
// flips scaled by elasticity, the tangential and vertical components are
// kept, and the ball is pushed clear of the surface by the penetration
// depth recorded on its contact event.
func reflectSegment(b *Ball, col *Collider, elasticity float64) {
	normalComp := col.Normal.Times(b.Velocity.Dot(col.Normal))
	tangentComp := col.Direction.Times(b.Velocity.Dot(col.Direction))
	v := tangentComp.Plus(normalComp.Times(-elasticity))
	b.Velocity = NewVec3(v.X, v.Y, b.Velocity.Z)
	if b.Contact.HitDistance > 0 {
		b.Position = b.Position.Plus(col.Normal.Times(b.Contact.HitDistance))
	}
	b.Contact.HitNormal = col.Normal
	b.Contact.HitVelocity = Vec2{X: b.Velocity.X, Y: b.Velocity.Y}
	b.Contact.Contact = true
}
