// internal/humanoid/vector.go
package humanoid

import "math"

// Vector2D represents a point or vector in screen space.
type Vector2D struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Origin is the top-left corner of the viewport.
var Origin = Vector2D{}

// Add performs vector addition, returning `v + other`.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub performs vector subtraction, returning `v - other`.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul performs scalar multiplication.
func (v Vector2D) Mul(scalar float64) Vector2D {
	return Vector2D{X: v.X * scalar, Y: v.Y * scalar}
}

// Div performs scalar division. Dividing by zero yields the zero vector.
func (v Vector2D) Div(scalar float64) Vector2D {
	if scalar == 0 {
		return Vector2D{}
	}
	return Vector2D{X: v.X / scalar, Y: v.Y / scalar}
}

// Mag calculates the magnitude (Euclidean length) of the vector.
func (v Vector2D) Mag() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist calculates the Euclidean distance between two points.
func (v Vector2D) Dist(other Vector2D) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}

// Normalize returns the unit vector pointing in the same direction as `v`.
// The zero vector normalizes to itself.
func (v Vector2D) Normalize() Vector2D {
	mag := v.Mag()
	if mag < 1e-9 {
		return Vector2D{}
	}
	return v.Mul(1.0 / mag)
}

// SetMag returns a vector with the direction of `v` and the given length.
func (v Vector2D) SetMag(length float64) Vector2D {
	return v.Normalize().Mul(length)
}

// Perpendicular returns `v` rotated a quarter turn clockwise in screen space: (y, -x).
func (v Vector2D) Perpendicular() Vector2D {
	return Vector2D{X: v.Y, Y: -v.X}
}

// ClampPositive clamps both coordinates to be >= 0.
func (v Vector2D) ClampPositive() Vector2D {
	return Vector2D{X: math.Max(0, v.X), Y: math.Max(0, v.Y)}
}

// Direction returns the vector from a to b.
func Direction(a, b Vector2D) Vector2D {
	return b.Sub(a)
}

// Clamp bounds target to [lo, hi].
func Clamp(target, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, target))
}

// RandomPointOnLine picks a uniformly distributed point on the segment a-b.
func RandomPointOnLine(rng Rand, a, b Vector2D) Vector2D {
	return a.Add(Direction(a, b).Mul(rng.Float64()))
}

// RandomPointInDisc picks a point uniformly over the area of the disc
// centred on center. Taking the square root of the radial sample keeps the
// density flat instead of piling up near the centre.
func RandomPointInDisc(rng Rand, center Vector2D, radius float64) Vector2D {
	angle := rng.Float64() * 2 * math.Pi
	r := radius * math.Sqrt(rng.Float64())
	return center.Add(Vector2D{X: r * math.Cos(angle), Y: r * math.Sin(angle)})
}
