package sim

// Authored shape and movement parameters for each device kind. These mirror
// what the external editor produces and are the JSON documents stored as
// playfield layouts. Geometry is rebuilt from them; they are never mutated
// by the simulation.

// DragPoint is one anchor of an editor-authored profile: an ordered 3D
// point with per-point lock and slingshot flags.
type DragPoint struct {
	Pos       Vec3 `json:"pos"`
	Locked    bool `json:"locked"`
	Slingshot bool `json:"slingshot"`
}

// KickerParams describes a kicker cup.
type KickerParams struct {
	Name        string  `json:"name"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Radius      float64 `json:"radius"`
	Height      float64 `json:"height"`
	HitHeight   float64 `json:"hit_height"`
	LegacyMode  bool    `json:"legacy_mode"`
	FallThrough bool    `json:"fall_through"`

	// Scatter is the randomized kick perturbation in degrees. Negative
	// means "use the table-wide global scatter".
	Scatter float64 `json:"scatter"`

	// Default kick used when the kicker's coil fires.
	KickAngle       float64 `json:"kick_angle"`
	KickSpeed       float64 `json:"kick_speed"`
	KickInclination float64 `json:"kick_inclination"`

	BallRadius float64 `json:"ball_radius"`
	BallMass   float64 `json:"ball_mass"`
}

// PlungerParams describes a spring plunger lane. The stroke position lives
// in [FrameEnd, FrameStart]: FrameEnd is the resting tip position, FrameStart
// the fully retracted one.
type PlungerParams struct {
	Name      string  `json:"name"`
	X         float64 `json:"x"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	HitHeight float64 `json:"hit_height"`

	FrameEnd   float64 `json:"frame_end"`
	FrameStart float64 `json:"frame_start"`

	PullSpeed     float64 `json:"pull_speed"`
	FireSpeed     float64 `json:"fire_speed"` // launch speed at full stroke
	AutoPlunger   bool    `json:"auto_plunger"`
	EnableRetract bool    `json:"enable_retract"`
}

// RampParams describes a ramp profile.
type RampParams struct {
	Name         string      `json:"name"`
	DragPoints   []DragPoint `json:"drag_points"`
	HeightBottom float64     `json:"height_bottom"`
	HeightTop    float64     `json:"height_top"`
	Margin       float64     `json:"margin"`
	Elasticity   float64     `json:"elasticity"`
}

// RubberParams describes a closed rubber loop. Segments starting at a
// slingshot-flagged drag point kick the ball outward on contact.
type RubberParams struct {
	Name           string      `json:"name"`
	DragPoints     []DragPoint `json:"drag_points"`
	Height         float64     `json:"height"`
	HitHeight      float64     `json:"hit_height"`
	Margin         float64     `json:"margin"`
	Elasticity     float64     `json:"elasticity"`
	SlingshotForce float64     `json:"slingshot_force"`
}
