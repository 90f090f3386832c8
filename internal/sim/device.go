package sim

// DeviceKind tags the playfield element type.
type DeviceKind string

const (
	KindKicker  DeviceKind = "kicker"
	KindPlunger DeviceKind = "plunger"
	KindRamp    DeviceKind = "ramp"
	KindRubber  DeviceKind = "rubber"
)

// Device is a playfield element with collision geometry and an event bus.
// Capability interfaces below cover the optional surfaces; the signal
// network and the world probe for them instead of assuming a full set.
type Device interface {
	Name() string
	Kind() DeviceKind
	Colliders() []*Collider
	Events() *EventBus

	bind(w *World)
}

// CoilBearer is a device exposing named coils to the signal network.
type CoilBearer interface {
	CoilByName(name string) (*DeviceCoil, error)
	CoilNames() []string
}

// SwitchBearer is a device exposing logical switches.
type SwitchBearer interface {
	Switches() []*SwitchState
}

// ContactResponder resolves a reported ball contact against one of the
// device's colliders.
type ContactResponder interface {
	ResolveContact(b *Ball, col *Collider)
}

// Stepper is a device with continuous internal motion (plunger stroke).
type Stepper interface {
	Advance(dt float64)
}

// ballObserver is notified when a ball is removed at a step boundary, so
// occupancy records never outlive the ball they reference.
type ballObserver interface {
	ballRemoved(b *Ball)
}

// deviceBase carries the common identity and event plumbing.
type deviceBase struct {
	name   string
	kind   DeviceKind
	events *EventBus
	world  *World
}

func newDeviceBase(name string, kind DeviceKind) deviceBase {
	return deviceBase{name: name, kind: kind, events: NewEventBus()}
}

func (d *deviceBase) Name() string      { return d.name }
func (d *deviceBase) Kind() DeviceKind  { return d.kind }
func (d *deviceBase) Events() *EventBus { return d.events }

func (d *deviceBase) bind(w *World) {
	d.world = w
}

func (d *deviceBase) fire(kind EventKind, ballID int) {
	d.events.Fire(Event{Kind: kind, Device: d.name, BallID: ballID})
}
