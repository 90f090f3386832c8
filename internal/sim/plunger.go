package sim

type plungerState int

const (
	plungerResting plungerState = iota
	plungerPulling
	plungerHolding
	plungerFiring
)

func (s plungerState) String() string {
	switch s {
	case plungerResting:
		return "resting"
	case plungerPulling:
		return "pulling"
	case plungerHolding:
		return "holding"
	case plungerFiring:
		return "firing"
	default:
		return "unknown"
	}
}

// Plunger is a spring-loaded launcher. The stroke position moves within
// [FrameEnd, FrameStart] (rest to fully retracted); firing strength scales
// with the fractional stroke unless the device is an auto-plunger, which
// always fires at full strength.
type Plunger struct {
	deviceBase
	params    PlungerParams
	colliders []*Collider
	pullCoil  *DeviceCoil
	fireCoil  *DeviceCoil

	pos      float64
	speed    float64
	state    plungerState
	analog   float64 // stored verbatim; consumers saturate
	restBall *Ball
}

func NewPlunger(params PlungerParams) *Plunger {
	if params.Width == 0 {
		params.Width = 25
	}
	if params.HitHeight == 0 {
		params.HitHeight = 40
	}
	if params.PullSpeed == 0 {
		params.PullSpeed = 50
	}
	if params.FireSpeed == 0 {
		params.FireSpeed = 80
	}
	if params.FrameStart < params.FrameEnd {
		params.FrameStart, params.FrameEnd = params.FrameEnd, params.FrameStart
	}
	p := &Plunger{
		deviceBase: newDeviceBase(params.Name, KindPlunger),
		params:     params,
		pos:        params.FrameEnd,
	}
	p.colliders = buildPlungerColliders(p)
	// Release-to-fire: the pull signal launches when released, not when
	// asserted. The fire coil is the direct auto-fire path.
	p.pullCoil = NewDeviceCoil("Pull", p.PullBack, p.Fire)
	p.fireCoil = NewDeviceCoil("Fire", p.Fire, nil)
	return p
}

func (p *Plunger) Params() PlungerParams  { return p.params }
func (p *Plunger) Colliders() []*Collider { return p.colliders }

func (p *Plunger) CoilNames() []string { return []string{"Pull", "Fire"} }

func (p *Plunger) CoilByName(name string) (*DeviceCoil, error) {
	switch name {
	case "Pull":
		return p.pullCoil, nil
	case "Fire":
		return p.fireCoil, nil
	}
	return nil, newInvalidReference("coil", name, p.CoilNames())
}

// Position returns the current stroke position.
func (p *Plunger) Position() float64 { return p.pos }

// State returns the stroke state as a string for host inspection.
func (p *Plunger) State() string { return p.state.String() }

// Analog returns the last analog input exactly as provided.
func (p *Plunger) Analog() float64 { return p.analog }

// SetAnalog stores a continuous stroke input (0 rest, 1 fully retracted).
// Out-of-range values are stored verbatim; the derived position saturates.
func (p *Plunger) SetAnalog(v float64) {
	p.analog = v
	p.pos = fix(p.params.FrameEnd + clamp01(v)*(p.params.FrameStart-p.params.FrameEnd))
}

// StrokeRatio is the fractional retraction: 0 at FrameEnd, 1 at FrameStart.
func (p *Plunger) StrokeRatio() float64 {
	denom := p.params.FrameStart - p.params.FrameEnd
	if denom == 0 {
		return 0
	}
	return fix((p.pos - p.params.FrameEnd) / denom)
}

// PullBack starts retracting at the configured pull speed. With retract
// mode enabled the plunger auto-fires on reaching the limit; otherwise it
// holds there until released.
func (p *Plunger) PullBack() {
	if p.state == plungerHolding && p.pos >= p.params.FrameStart {
		return
	}
	p.state = plungerPulling
	p.speed = p.params.PullSpeed
}

// Fire launches. Auto-plungers fire as if fully retracted; manual plungers
// fire proportionally to the actual stroke. Firing an already-firing
// plunger is a no-op.
func (p *Plunger) Fire() {
	if p.state == plungerFiring {
		return
	}
	ratio := 1.0
	if !p.params.AutoPlunger {
		ratio = clamp01(p.StrokeRatio())
	}
	p.state = plungerFiring
	p.speed = p.params.FireSpeed

	if p.restBall != nil && ratio > 0 {
		b := p.restBall
		b.Velocity = NewVec3(0, -ratio*p.params.FireSpeed, 0)
		b.Frozen = false
		b.Contact.Clear()
		p.restBall = nil
		p.fire(EventUnHit, b.ID)
	}
}

// Advance integrates the stroke and raises end-of-stroke events at the
// travel limits, carrying the instantaneous speed.
func (p *Plunger) Advance(dt float64) {
	switch p.state {
	case plungerPulling:
		p.pos = fix(p.pos + p.params.PullSpeed*dt)
		if p.pos >= p.params.FrameStart {
			p.pos = p.params.FrameStart
			p.fireLimit(EventLimitEOS, p.speed)
			if p.params.EnableRetract {
				p.Fire()
			} else {
				p.state = plungerHolding
				p.speed = 0
			}
		}
	case plungerFiring:
		p.pos = fix(p.pos - p.params.FireSpeed*dt)
		if p.pos <= p.params.FrameEnd {
			p.pos = p.params.FrameEnd
			p.state = plungerResting
			p.fireLimit(EventLimitBOS, p.speed)
			p.speed = 0
		}
	}
}

// ResolveContact rests an incoming ball against the plunger tip.
func (p *Plunger) ResolveContact(b *Ball, col *Collider) {
	if b.Frozen {
		return
	}
	p.restBall = b
	b.Contact.Contact = true
	b.Contact.RestingContact = true
	b.Contact.HitNormal = col.Normal
	b.Contact.HitVelocity = Vec2{X: b.Velocity.X, Y: b.Velocity.Y}
	if b.Velocity.Y > 0 {
		b.Velocity = NewVec3(b.Velocity.X, 0, b.Velocity.Z)
	}
	p.fire(EventHit, b.ID)
}

func (p *Plunger) ballRemoved(b *Ball) {
	if p.restBall == b {
		p.restBall = nil
	}
}

func (p *Plunger) fireLimit(kind EventKind, speed float64) {
	p.events.Fire(Event{Kind: kind, Device: p.name, Speed: speed, BallID: -1})
}
