package sim

import "fmt"

// SwitchState is a boolean logical signal owned by a device. A pulsed
// switch reverts to its prior value once propagation has run, instead of
// holding the new state.
type SwitchState struct {
	Name  string `json:"name"`
	Value bool   `json:"value"`
	Pulse bool   `json:"pulse"`
}

// WireConfig is the authored form of a directed switch->coil edge. Pulse
// overrides the source switch's pulse flag when non-nil.
type WireConfig struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	DestDevice string `json:"dest_device"`
	DestCoil   string `json:"dest_coil"`
	Pulse      *bool  `json:"pulse,omitempty"`
}

// Wire is a registered directed edge.
type Wire struct {
	ID         string
	Source     string
	DestDevice string
	DestCoil   string
	Pulse      bool
}

// Network couples device switches to coil destinations by logical name.
// Propagation is synchronous: a switch change drives every registered wire
// in registration order before the call returns.
type Network struct {
	world    *World
	switches map[string]*SwitchState
	wires    map[string][]*Wire // source switch name -> ordered wires
	byID     map[string]*Wire
}

func newNetwork(w *World) *Network {
	return &Network{
		world:    w,
		switches: make(map[string]*SwitchState),
		wires:    make(map[string][]*Wire),
		byID:     make(map[string]*Wire),
	}
}

func (n *Network) registerSwitch(sw *SwitchState) error {
	if _, exists := n.switches[sw.Name]; exists {
		return fmt.Errorf("switch %q already registered", sw.Name)
	}
	n.switches[sw.Name] = sw
	return nil
}

// SwitchByName looks up a registered switch by logical name.
func (n *Network) SwitchByName(name string) (*SwitchState, error) {
	sw, ok := n.switches[name]
	if !ok {
		return nil, newInvalidReference("switch", name, n.SwitchNames())
	}
	return sw, nil
}

func (n *Network) SwitchNames() []string {
	names := make([]string, 0, len(n.switches))
	for name := range n.switches {
		names = append(names, name)
	}
	return names
}

func (n *Network) wireIDs() []string {
	ids := make([]string, 0, len(n.byID))
	for id := range n.byID {
		ids = append(ids, id)
	}
	return ids
}

// resolveDest resolves the wire's destination coil, surfacing an
// invalid-reference error with the valid name set when it does not exist.
func (n *Network) resolveDest(w *Wire) (*DeviceCoil, error) {
	dev, err := n.world.Device(w.DestDevice)
	if err != nil {
		return nil, err
	}
	bearer, ok := dev.(CoilBearer)
	if !ok {
		return nil, newInvalidReference("coil", w.DestCoil, nil)
	}
	return bearer.CoilByName(w.DestCoil)
}

func (n *Network) addWire(cfg WireConfig) (*Wire, error) {
	sw, err := n.SwitchByName(cfg.Source)
	if err != nil {
		return nil, err
	}
	pulse := sw.Pulse
	if cfg.Pulse != nil {
		pulse = *cfg.Pulse
	}
	id := cfg.ID
	if id == "" {
		id = fmt.Sprintf("%s->%s:%s", cfg.Source, cfg.DestDevice, cfg.DestCoil)
	}
	if _, exists := n.byID[id]; exists {
		return nil, fmt.Errorf("wire %q already registered", id)
	}
	wire := &Wire{
		ID:         id,
		Source:     cfg.Source,
		DestDevice: cfg.DestDevice,
		DestCoil:   cfg.DestCoil,
		Pulse:      pulse,
	}
	// Surface an invalid destination at registration time, not mid-step.
	if _, err := n.resolveDest(wire); err != nil {
		return nil, err
	}
	n.wires[cfg.Source] = append(n.wires[cfg.Source], wire)
	n.byID[id] = wire
	return wire, nil
}

// AddWireDest registers a directed edge by logical identifier.
func (n *Network) AddWireDest(cfg WireConfig) error {
	_, err := n.addWire(cfg)
	return err
}

// AddSwitchDest registers a destination observer for a switch and drives it
// to the given initial status immediately.
func (n *Network) AddSwitchDest(cfg WireConfig, status bool) error {
	wire, err := n.addWire(cfg)
	if err != nil {
		return err
	}
	n.drive(wire, status)
	return nil
}

// RemoveWireDest removes the edge with the given identifier, restoring the
// source switch's destination set to its pre-add state.
func (n *Network) RemoveWireDest(id string) error {
	wire, ok := n.byID[id]
	if !ok {
		return newInvalidReference("wire", id, n.wireIDs())
	}
	delete(n.byID, id)
	list := n.wires[wire.Source]
	kept := list[:0]
	for _, w := range list {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	n.wires[wire.Source] = kept
	return nil
}

// drive pushes a value through one wire. A pulsed wire reverts the
// destination to its prior state after the propagated action has run; the
// revert is silent so the edge behaves as a momentary trigger, not a second
// transition.
func (n *Network) drive(wire *Wire, value bool) {
	coil, err := n.resolveDest(wire)
	if err != nil {
		// Destination was validated at registration; it can only vanish if
		// the device was torn down. Drop the propagation.
		return
	}
	prev := coil.Enabled()
	coil.Set(value)
	if wire.Pulse {
		coil.force(prev)
	}
}

// Trigger records a switch-state change and propagates it synchronously to
// every registered destination in registration order.
func (n *Network) Trigger(sw *SwitchState, value bool) {
	prev := sw.Value
	sw.Value = value
	for _, wire := range n.wires[sw.Name] {
		n.drive(wire, value)
	}
	if sw.Pulse {
		sw.Value = prev
	}
}

// SetSwitch looks up a switch by name and triggers it.
func (n *Network) SetSwitch(name string, value bool) error {
	sw, err := n.SwitchByName(name)
	if err != nil {
		return err
	}
	n.Trigger(sw, value)
	return nil
}
