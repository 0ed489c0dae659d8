package world

import "math"

// Vec3 is a position, direction or angle triple (pitch, yaw, roll for angles).
type Vec3 [3]float64

const (
	Pitch = 0
	Yaw   = 1
	Roll  = 2
)

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a[0] * s, a[1] * s, a[2] * s}
}

// MA returns a + s*b.
func (a Vec3) MA(s float64, b Vec3) Vec3 {
	return Vec3{a[0] + s*b[0], a[1] + s*b[1], a[2] + s*b[2]}
}

func (a Vec3) Dot(b Vec3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func (a Vec3) Len() float64       { return math.Sqrt(a.Dot(a)) }
func (a Vec3) IsZero() bool       { return a[0] == 0 && a[1] == 0 && a[2] == 0 }

// Normalize returns the unit vector and the original length. The zero vector
// normalizes to itself.
func (a Vec3) Normalize() (Vec3, float64) {
	l := a.Len()
	if l == 0 {
		return a, 0
	}
	return a.Scale(1 / l), l
}

// AngleVectors converts pitch/yaw/roll degrees into basis vectors.
func AngleVectors(angles Vec3) (forward, right, up Vec3) {
	sy, cy := math.Sincos(angles[Yaw] * math.Pi / 180)
	sp, cp := math.Sincos(angles[Pitch] * math.Pi / 180)
	sr, cr := math.Sincos(angles[Roll] * math.Pi / 180)

	forward = Vec3{cp * cy, cp * sy, -sp}
	right = Vec3{-sr*sp*cy + cr*sy, -sr*sp*sy - cr*cy, -sr * cp}
	up = Vec3{cr*sp*cy + sr*sy, cr*sp*sy - sr*cy, cr * cp}
	return forward, right, up
}

// VecToYaw returns the yaw in degrees [0, 360) of a direction.
func VecToYaw(v Vec3) float64 {
	if v[0] == 0 && v[1] == 0 {
		return 0
	}
	yaw := math.Atan2(v[1], v[0]) * 180 / math.Pi
	if yaw < 0 {
		yaw += 360
	}
	return yaw
}

// AngleMod wraps an angle into [0, 360).
func AngleMod(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// YawVector is the horizontal unit vector for a yaw in degrees.
func YawVector(yaw float64) Vec3 {
	s, c := math.Sincos(yaw * math.Pi / 180)
	return Vec3{c, s, 0}
}

// VecToAngles returns the pitch and yaw that look along v.
func VecToAngles(v Vec3) Vec3 {
	yaw := VecToYaw(v)
	pitch := math.Atan2(v[2], math.Hypot(v[0], v[1])) * 180 / math.Pi
	if pitch < 0 {
		pitch += 360
	}
	return Vec3{AngleMod(-pitch), yaw, 0}
}
