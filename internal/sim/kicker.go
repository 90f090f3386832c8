package sim

import "math"

// scatterShape normalizes the quadratic scatter transform's peak to a
// linear distribution's extremes (3*sqrt(3)/2). The exact constant keeps
// kick tables bit-compatible across reference implementations.
const scatterShape = 2.59808

// Kicker is a capture cup: a ball resolved against its collider freezes in
// the cup until kicked back out or destroyed.
type Kicker struct {
	deviceBase
	params    KickerParams
	colliders []*Collider
	coil      *DeviceCoil
	sw        *SwitchState

	ball           *Ball
	pendingDestroy bool
	escaping       *Ball // just-kicked ball, immune to recapture until clear of the cup
}

func NewKicker(params KickerParams) *Kicker {
	if params.HitHeight == 0 {
		params.HitHeight = 40
	}
	if params.BallRadius == 0 {
		params.BallRadius = 25
	}
	if params.BallMass == 0 {
		params.BallMass = 1
	}
	k := &Kicker{
		deviceBase: newDeviceBase(params.Name, KindKicker),
		params:     params,
		sw:         &SwitchState{Name: params.Name},
	}
	k.colliders = buildKickerColliders(k)
	k.coil = NewDeviceCoil("Kick", func() {
		k.Kick(params.KickAngle, params.KickSpeed, params.KickInclination)
	}, nil)
	return k
}

func (k *Kicker) Params() KickerParams   { return k.params }
func (k *Kicker) Colliders() []*Collider { return k.colliders }

func (k *Kicker) CoilNames() []string { return []string{"Kick"} }

func (k *Kicker) CoilByName(name string) (*DeviceCoil, error) {
	if name == "Kick" {
		return k.coil, nil
	}
	return nil, newInvalidReference("coil", name, k.CoilNames())
}

func (k *Kicker) Switches() []*SwitchState { return []*SwitchState{k.sw} }

// HasBall reports current occupancy. Read-only; safe to poll every step.
func (k *Kicker) HasBall() bool {
	return k.ball != nil
}

// Ball returns the resident ball, or nil when empty.
func (k *Kicker) Ball() *Ball {
	return k.ball
}

// BallVelocity returns the resident ball's velocity.
func (k *Kicker) BallVelocity() (Vec3, bool) {
	if k.ball == nil {
		return Vec3{}, false
	}
	return k.ball.Velocity, true
}

// CreateBall materializes a new ball resting in the cup.
func (k *Kicker) CreateBall() *Ball {
	if k.world == nil {
		return nil
	}
	if k.ball != nil {
		return k.ball
	}
	pos := NewVec3(k.params.X, k.params.Y, k.params.Height+k.params.BallRadius)
	b := k.world.CreateBall(k, pos, k.params.BallRadius, k.params.BallMass)
	b.Frozen = true
	k.ball = b
	return b
}

// DestroyBall schedules removal of the resident ball. Removal and the
// occupancy clear complete at the next step boundary, never mid-step.
// A second request while one is pending is a no-op.
func (k *Kicker) DestroyBall() {
	if k.ball == nil || k.pendingDestroy || k.world == nil {
		return
	}
	k.pendingDestroy = true
	k.world.DestroyBall(k.ball)
}

func (k *Kicker) ballRemoved(b *Ball) {
	if k.escaping == b {
		k.escaping = nil
	}
	if k.ball == b {
		k.ball = nil
		k.pendingDestroy = false
		k.triggerSwitch(false)
	}
}

// Advance releases the recapture guard once the kicked ball has cleared
// the capture circle.
func (k *Kicker) Advance(dt float64) {
	if k.escaping == nil {
		return
	}
	col := k.colliders[0]
	if _, inside := colliderOverlap(col, k.escaping); !inside {
		k.escaping = nil
	}
}

// ResolveContact captures a free ball into the cup.
func (k *Kicker) ResolveContact(b *Ball, col *Collider) {
	if k.ball != nil || b.Frozen || b == k.escaping {
		return
	}
	b.Position = NewVec3(k.params.X, k.params.Y, k.params.Height+b.Radius)
	b.Velocity = Vec3{}
	b.Frozen = true
	b.Contact.Contact = true
	b.Contact.RestingContact = true
	k.ball = b
	k.fire(EventHit, b.ID)
	k.triggerSwitch(true)
}

// Kick ejects the resident ball. Angle is in degrees, 0 pointing along the
// negative Y axis. Kicking an empty cup is a no-op.
func (k *Kicker) Kick(angle, speed, inclination float64) {
	k.KickXYZ(angle, speed, inclination, Vec3{})
}

// KickXYZ ejects the resident ball with a positional offset applied before
// launch.
func (k *Kicker) KickXYZ(angle, speed, inclination float64, offset Vec3) {
	if k.ball == nil {
		return
	}

	yaw := angle * math.Pi / 180
	if math.Abs(inclination) > math.Pi/2 {
		// Callers pass degrees or radians; anything beyond pi/2 is assumed
		// degrees. Inherited heuristic, preserved as-is.
		inclination *= math.Pi / 180
	}

	yaw += k.scatterOffset()

	speedZ := fix(speed * math.Sin(inclination))
	if speedZ > 0 {
		speed = fix(speed * math.Cos(inclination))
	}

	b := k.ball
	b.Position = b.Position.Plus(offset)
	b.Velocity = NewVec3(math.Sin(yaw)*speed, -math.Cos(yaw)*speed, speedZ)
	b.AngularMomentum = Vec3{}
	b.Frozen = false
	b.Contact.Clear()

	k.ball = nil
	k.pendingDestroy = false
	k.escaping = b
	k.fire(EventUnHit, b.ID)
	k.triggerSwitch(false)
}

// scatterOffset draws the randomized yaw perturbation for one kick. The
// device scatter applies unless negative, in which case the table-wide
// global scatter takes over; both scale by the difficulty multiplier.
func (k *Kicker) scatterOffset() float64 {
	if k.world == nil {
		return 0
	}
	scatter := k.params.Scatter
	if scatter < 0 {
		scatter = k.world.Settings.GlobalScatter
	}
	scatterAngle := scatter * math.Pi / 180 * clamp01(k.world.Settings.Difficulty)
	if scatterAngle <= 1e-5 {
		return 0
	}
	u := k.world.rng.Float64()*2 - 1
	return u * (1 - u*u) * scatterShape * scatterAngle
}

func (k *Kicker) triggerSwitch(value bool) {
	if k.world != nil {
		k.world.network.Trigger(k.sw, value)
	} else {
		k.sw.Value = value
	}
	k.events.Fire(Event{Kind: EventSwitch, Device: k.name, Value: value, BallID: -1})
}
