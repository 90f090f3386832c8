package sim

// Playfield is the authored layout document: device parameters plus the
// wiring table, serializable as JSON and stored per layout row.
type Playfield struct {
	Name     string          `json:"name"`
	Settings Settings        `json:"settings"`
	Kickers  []KickerParams  `json:"kickers,omitempty"`
	Plungers []PlungerParams `json:"plungers,omitempty"`
	Ramps    []RampParams    `json:"ramps,omitempty"`
	Rubbers  []RubberParams  `json:"rubbers,omitempty"`
	Wires    []WireConfig    `json:"wires,omitempty"`
}

// BuildWorld instantiates the simulation world from the layout: devices
// first, then the wiring, so wire destinations can be validated against
// the registered coil tables.
func (p *Playfield) BuildWorld() (*World, error) {
	w := NewWorld(p.Settings)
	for _, kp := range p.Kickers {
		if err := w.AddDevice(NewKicker(kp)); err != nil {
			return nil, err
		}
	}
	for _, pp := range p.Plungers {
		if err := w.AddDevice(NewPlunger(pp)); err != nil {
			return nil, err
		}
	}
	for _, rp := range p.Ramps {
		if err := w.AddDevice(NewRamp(rp)); err != nil {
			return nil, err
		}
	}
	for _, rp := range p.Rubbers {
		if err := w.AddDevice(NewRubber(rp)); err != nil {
			return nil, err
		}
	}
	for _, wc := range p.Wires {
		if err := w.network.AddWireDest(wc); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// NewDemoPlayfield is the built-in demo table: a plunger lane, two kickers,
// two slingshot rubbers, and one ramp. Playfield coordinates run x 0..500,
// y 0 (top) to 1000 (drain).
func NewDemoPlayfield() *Playfield {
	pulse := true
	return &Playfield{
		Name:     "demo",
		Settings: DefaultSettings(),
		Plungers: []PlungerParams{
			{
				Name:       "Plunger",
				X:          470,
				Width:      25,
				Height:     0,
				HitHeight:  40,
				FrameEnd:   900,
				FrameStart: 950,
				PullSpeed:  60,
				FireSpeed:  700,
			},
		},
		Kickers: []KickerParams{
			{
				Name:            "LeftKicker",
				X:               120,
				Y:               300,
				Radius:          25,
				HitHeight:       40,
				Scatter:         -1, // table-wide scatter
				KickAngle:       135,
				KickSpeed:       420,
				KickInclination: 8,
			},
			{
				Name:            "RightKicker",
				X:               380,
				Y:               300,
				Radius:          25,
				HitHeight:       40,
				Scatter:         5,
				KickAngle:       -135,
				KickSpeed:       420,
				KickInclination: 8,
			},
		},
		Rubbers: []RubberParams{
			{
				Name: "LeftSling",
				DragPoints: []DragPoint{
					{Pos: NewVec3(120, 650, 0), Slingshot: true},
					{Pos: NewVec3(160, 730, 0)},
					{Pos: NewVec3(120, 730, 0), Locked: true},
				},
				Height:         0,
				HitHeight:      40,
				Elasticity:     0.8,
				SlingshotForce: 220,
			},
			{
				Name: "RightSling",
				DragPoints: []DragPoint{
					{Pos: NewVec3(380, 650, 0), Slingshot: true},
					{Pos: NewVec3(380, 730, 0), Locked: true},
					{Pos: NewVec3(340, 730, 0)},
				},
				Height:         0,
				HitHeight:      40,
				Elasticity:     0.8,
				SlingshotForce: 220,
			},
		},
		Ramps: []RampParams{
			{
				Name: "RightRamp",
				DragPoints: []DragPoint{
					{Pos: NewVec3(440, 700, 0), Locked: true},
					{Pos: NewVec3(430, 500, 0)},
					{Pos: NewVec3(400, 250, 30)},
					{Pos: NewVec3(330, 120, 60)},
				},
				HeightBottom: 0,
				HeightTop:    60,
				Margin:       6,
				Elasticity:   0.6,
			},
		},
		Wires: []WireConfig{
			// Scoop auto-eject: capturing a ball fires the kicker's own coil.
			{ID: "left-eject", Source: "LeftKicker", DestDevice: "LeftKicker", DestCoil: "Kick", Pulse: &pulse},
			// The right sling pulse pops the right kicker when it holds a ball.
			{ID: "sling-pop", Source: "RightSling", DestDevice: "RightKicker", DestCoil: "Kick"},
		},
	}
}
