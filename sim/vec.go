package sim

import "github.com/go-gl/mathgl/mgl64"

// Vec2 is the 2D vector type used by all primitives.
type Vec2 = mgl64.Vec2

// V returns the vector (x, y).
func V(x, y float64) Vec2 {
	return Vec2{x, y}
}

// SafeNormalize returns v scaled to unit length, or the zero vector when v
// has no length.
func SafeNormalize(v Vec2) Vec2 {
	l := length(v)
	if l == 0 {
		return Vec2{}
	}
	return v.Mul(1 / l)
}

// ClampLength limits the length of v to max.
func ClampLength(v Vec2, max float64) Vec2 {
	l := length(v)
	if l <= max || l == 0 {
		return v
	}
	return v.Mul(max / l)
}

func length(v Vec2) float64 {
	return sqrt(v[0]*v[0] + v[1]*v[1])
}
