package sim

// DeviceCoil is a named boolean-driven actuator. A transition fires the
// bound action at most once; re-asserting the current state does nothing.
type DeviceCoil struct {
	Name      string
	enabled   bool
	onEnable  func()
	onDisable func()
}

func NewDeviceCoil(name string, onEnable, onDisable func()) *DeviceCoil {
	return &DeviceCoil{Name: name, onEnable: onEnable, onDisable: onDisable}
}

func (c *DeviceCoil) Enabled() bool {
	return c.enabled
}

// Set transitions the coil and fires the bound action for the edge taken.
func (c *DeviceCoil) Set(enabled bool) {
	if c.enabled == enabled {
		return
	}
	c.enabled = enabled
	if enabled {
		if c.onEnable != nil {
			c.onEnable()
		}
	} else if c.onDisable != nil {
		c.onDisable()
	}
}

// force overwrites the state without firing actions. Used by pulse reverts
// on the signal network, which emulate a momentary trigger.
func (c *DeviceCoil) force(enabled bool) {
	c.enabled = enabled
}
