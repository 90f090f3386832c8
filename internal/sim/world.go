package sim

import (
	"fmt"
	"math/rand"
	"time"
)

// Settings is the simulation configuration threaded into every responder
// through the world; there is no ambient global state.
type Settings struct {
	// GlobalScatter is the table-wide kick perturbation in degrees, used
	// by devices whose own scatter is negative.
	GlobalScatter float64 `json:"global_scatter"`
	// Difficulty scales all scatter angles, clamped to [0,1].
	Difficulty float64 `json:"difficulty"`

	Gravity     float64 `json:"gravity"`      // vertical pull toward the playfield
	Slope       float64 `json:"slope"`        // playfield tilt acceleration toward the drain (+Y)
	Friction    float64 `json:"friction"`     // rolling friction, speed loss per second
	MinVelocity float64 `json:"min_velocity"` // below this, a ball stops
	TableHeight float64 `json:"table_height"` // glass height bounding ramp walls

	// Seed fixes the scatter RNG: the same seed replays the same scatter
	// sequence. Zero seeds from the clock (run-to-run variance accepted).
	Seed int64 `json:"seed"`
}

func DefaultSettings() Settings {
	return Settings{
		GlobalScatter: 2,
		Difficulty:    1,
		Gravity:       980,
		Slope:         90,
		Friction:      8,
		MinVelocity:   0.5,
		TableHeight:   220,
	}
}

// World owns balls, devices, and the signal network for one playfield. The
// step is single-threaded and cooperative: all contact resolution, device
// responses, and signal propagation for a tick complete before the next
// tick begins. Hosts marshal access through the session layer rather than
// mutating concurrently.
type World struct {
	Settings Settings

	devices map[string]Device
	order   []Device
	balls   []*Ball
	network *Network
	rng     *rand.Rand

	nextBallID int
	pending    []*Ball
	tick       int64
}

func NewWorld(settings Settings) *World {
	settings.Difficulty = clamp01(settings.Difficulty)
	seed := settings.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	w := &World{
		Settings: settings,
		devices:  make(map[string]Device),
		rng:      rand.New(rand.NewSource(seed)),
	}
	w.network = newNetwork(w)
	return w
}

func (w *World) Network() *Network { return w.network }
func (w *World) Tick() int64       { return w.tick }
func (w *World) Balls() []*Ball    { return w.balls }
func (w *World) Devices() []Device { return w.order }

// AddDevice registers a device, its switches, and fires its Init event.
func (w *World) AddDevice(d Device) error {
	if _, exists := w.devices[d.Name()]; exists {
		return fmt.Errorf("device %q already registered", d.Name())
	}
	d.bind(w)
	if sb, ok := d.(SwitchBearer); ok {
		for _, sw := range sb.Switches() {
			if err := w.network.registerSwitch(sw); err != nil {
				return err
			}
		}
	}
	w.devices[d.Name()] = d
	w.order = append(w.order, d)
	d.Events().Fire(Event{Kind: EventInit, Device: d.Name(), BallID: -1})
	return nil
}

// Device looks up a registered device by name.
func (w *World) Device(name string) (Device, error) {
	d, ok := w.devices[name]
	if !ok {
		return nil, newInvalidReference("device", name, w.DeviceNames())
	}
	return d, nil
}

func (w *World) DeviceNames() []string {
	names := make([]string, 0, len(w.devices))
	for name := range w.devices {
		names = append(names, name)
	}
	return names
}

// CreateBall adds a ball on behalf of the owning device.
func (w *World) CreateBall(owner Device, pos Vec3, radius, mass float64) *Ball {
	w.nextBallID++
	b := NewBall(w.nextBallID, pos, radius, mass)
	w.balls = append(w.balls, b)
	return b
}

// DestroyBall schedules removal at the next step boundary. Requesting
// removal of an already-pending ball is a no-op.
func (w *World) DestroyBall(b *Ball) {
	for _, p := range w.pending {
		if p == b {
			return
		}
	}
	w.pending = append(w.pending, b)
}

// Step advances the simulation one tick: pending removals drain first so no
// device resolves a half-destroyed ball, then device strokes advance, then
// balls integrate and their contacts resolve through the owning devices.
func (w *World) Step(dt float64) {
	w.drainRemovals()
	for _, d := range w.order {
		if s, ok := d.(Stepper); ok {
			s.Advance(dt)
		}
	}
	for _, b := range w.balls {
		if b.Frozen {
			continue
		}
		w.integrate(b, dt)
		w.resolveContacts(b)
		w.applyFriction(b, dt)
	}
	w.tick++
}

func (w *World) drainRemovals() {
	if len(w.pending) == 0 {
		return
	}
	for _, b := range w.pending {
		for i, x := range w.balls {
			if x == b {
				w.balls = append(w.balls[:i], w.balls[i+1:]...)
				break
			}
		}
		for _, d := range w.order {
			if o, ok := d.(ballObserver); ok {
				o.ballRemoved(b)
			}
		}
	}
	w.pending = w.pending[:0]
}

func (w *World) integrate(b *Ball, dt float64) {
	b.Velocity = NewVec3(
		b.Velocity.X,
		b.Velocity.Y+w.Settings.Slope*dt,
		b.Velocity.Z-w.Settings.Gravity*dt,
	)
	b.Position = b.Position.Plus(b.Velocity.Times(dt))
	// Playfield floor
	if b.Position.Z < b.Radius {
		b.Position = NewVec3(b.Position.X, b.Position.Y, b.Radius)
		if b.Velocity.Z < 0 {
			b.Velocity = NewVec3(b.Velocity.X, b.Velocity.Y, 0)
		}
	}
}

func (w *World) resolveContacts(b *Ball) {
	for _, d := range w.order {
		responder, ok := d.(ContactResponder)
		if !ok {
			continue
		}
		for _, col := range d.Colliders() {
			if b.Frozen {
				return
			}
			pen, hit := colliderOverlap(col, b)
			if !hit {
				continue
			}
			b.Contact.HitDistance = pen
			b.Contact.HitTime = float64(w.tick)
			responder.ResolveContact(b, col)
		}
	}
}

func (w *World) applyFriction(b *Ball, dt float64) {
	speed := b.Velocity.FlatMagnitude()
	if speed == 0 {
		return
	}
	reduced := speed - w.Settings.Friction*dt
	if reduced < w.Settings.MinVelocity {
		b.Velocity = NewVec3(0, 0, b.Velocity.Z)
		return
	}
	scale := reduced / speed
	b.Velocity = NewVec3(b.Velocity.X*scale, b.Velocity.Y*scale, b.Velocity.Z)
}
