package sim

// Rubber is a closed elastic loop. Segments whose leading drag point
// carries the slingshot flag add an outward kick on top of the rebound.
type Rubber struct {
	deviceBase
	params    RubberParams
	colliders []*Collider
	sw        *SwitchState
}

func NewRubber(params RubberParams) *Rubber {
	if params.Elasticity == 0 {
		params.Elasticity = 0.8
	}
	if params.HitHeight == 0 {
		params.HitHeight = 40
	}
	r := &Rubber{
		deviceBase: newDeviceBase(params.Name, KindRubber),
		params:     params,
		sw:         &SwitchState{Name: params.Name, Pulse: true},
	}
	r.colliders = buildRubberColliders(r)
	return r
}

// buildRubberColliders closes the drag-point loop and tags each segment
// with its leading point's slingshot flag.
func buildRubberColliders(r *Rubber) []*Collider {
	p := r.params
	colliders := buildProfileColliders(r, p.DragPoints, p.Margin,
		p.Height, p.Height+p.HitHeight, 0, true)
	for i, col := range colliders {
		col.Slingshot = p.DragPoints[i].Slingshot
	}
	return colliders
}

func (r *Rubber) Params() RubberParams     { return r.params }
func (r *Rubber) Colliders() []*Collider   { return r.colliders }
func (r *Rubber) Switches() []*SwitchState { return []*SwitchState{r.sw} }

// ResolveContact rebounds the ball; slingshot segments add an outward kick
// along the segment normal.
func (r *Rubber) ResolveContact(b *Ball, col *Collider) {
	if b.Frozen {
		return
	}
	approach := b.Velocity.Dot(col.Normal)
	if approach >= 0 {
		return
	}
	reflectSegment(b, col, r.params.Elasticity)
	if col.Slingshot && r.params.SlingshotForce > 0 {
		b.Velocity = b.Velocity.Plus(col.Normal.Times(r.params.SlingshotForce))
	}
	r.fire(EventHit, b.ID)
	if r.world != nil {
		r.world.network.Trigger(r.sw, true)
	}
}
