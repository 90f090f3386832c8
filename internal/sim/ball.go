package sim

// ContactEvent records a single resolved contact between a ball and a
// collider. The external step produces one per contact; the owning device's
// responder consumes and clears it.
type ContactEvent struct {
	HitDistance    float64 `json:"hit_distance"`
	HitTime        float64 `json:"hit_time"`
	HitNormal      Vec3    `json:"hit_normal"`
	HitVelocity    Vec2    `json:"hit_velocity"` // tangent-plane velocity at contact
	Contact        bool    `json:"contact"`
	RestingContact bool    `json:"resting_contact"`
}

// Clear resets the record to its sentinel state: zero distance, time -1,
// zeroed normal and velocity, flags down.
func (c *ContactEvent) Clear() {
	c.HitDistance = 0
	c.HitTime = -1
	c.HitNormal = Vec3{}
	c.HitVelocity = Vec2{}
	c.Contact = false
	c.RestingContact = false
}

// Ball is a single ball's physics state. The world owns ball lifetimes;
// devices read and conditionally overwrite the kinematic fields when a
// contact is resolved.
type Ball struct {
	ID              int     `json:"id"`
	Position        Vec3    `json:"position"`
	Velocity        Vec3    `json:"velocity"`
	AngularMomentum Vec3    `json:"angular_momentum"`
	Frozen          bool    `json:"frozen"`
	Radius          float64 `json:"radius"`
	Mass            float64 `json:"mass"`

	Contact ContactEvent `json:"-"`
}

func NewBall(id int, pos Vec3, radius, mass float64) *Ball {
	b := &Ball{
		ID:       id,
		Position: pos,
		Radius:   radius,
		Mass:     mass,
	}
	b.Contact.Clear()
	return b
}
