package sim

import "math"

// Vec3 is a 3D vector with fixed-precision arithmetic so that simulation
// results replay identically across hosts.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec2 is the tangent-plane component of a contact velocity.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// fix rounds to 4 decimal places so repeated runs produce bit-identical state.
func fix(n float64) float64 {
	if math.IsNaN(n) {
		return 0
	}
	return math.Round(n*10000) / 10000
}

func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: fix(x), Y: fix(y), Z: fix(z)}
}

func (v Vec3) Plus(o Vec3) Vec3 {
	return Vec3{X: fix(v.X + o.X), Y: fix(v.Y + o.Y), Z: fix(v.Z + o.Z)}
}

func (v Vec3) Minus(o Vec3) Vec3 {
	return Vec3{X: fix(v.X - o.X), Y: fix(v.Y - o.Y), Z: fix(v.Z - o.Z)}
}

func (v Vec3) Times(s float64) Vec3 {
	return Vec3{X: fix(v.X * s), Y: fix(v.Y * s), Z: fix(v.Z * s)}
}

func (v Vec3) Dot(o Vec3) float64 {
	return fix(v.X*o.X + v.Y*o.Y + v.Z*o.Z)
}

func (v Vec3) Magnitude() float64 {
	return fix(math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z))
}

func (v Vec3) MagnitudeSquared() float64 {
	return fix(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vec3) Normalize() Vec3 {
	m := v.Magnitude()
	if m == 0 {
		return Vec3{}
	}
	return v.Times(1.0 / m)
}

func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

func (v Vec3) IsEqualTo(o Vec3) bool {
	return v.X == o.X && v.Y == o.Y && v.Z == o.Z
}

// FlatMagnitude is the speed in the playfield plane, ignoring Z.
func (v Vec3) FlatMagnitude() float64 {
	return fix(math.Sqrt(v.X*v.X + v.Y*v.Y))
}
