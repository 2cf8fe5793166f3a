// FILE: ./internal/humanoid/vector_test.go
package humanoid

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector2D_Operations(t *testing.T) {
	v1 := Vector2D{X: 3, Y: 4}
	v2 := Vector2D{X: 1, Y: 2}

	t.Run("Add", func(t *testing.T) {
		assert.Equal(t, Vector2D{X: 4, Y: 6}, v1.Add(v2))
	})

	t.Run("Sub", func(t *testing.T) {
		assert.Equal(t, Vector2D{X: 2, Y: 2}, v1.Sub(v2))
	})

	t.Run("Mul", func(t *testing.T) {
		assert.Equal(t, Vector2D{X: 6, Y: 8}, v1.Mul(2.0))
	})

	t.Run("Div", func(t *testing.T) {
		assert.Equal(t, Vector2D{X: 1.5, Y: 2}, v1.Div(2.0))
		assert.Equal(t, Vector2D{}, v1.Div(0))
	})

	t.Run("Mag", func(t *testing.T) {
		assert.Equal(t, 5.0, v1.Mag())
	})

	t.Run("Dist", func(t *testing.T) {
		// sqrt((3-1)^2 + (4-2)^2) = sqrt(8)
		assert.InDelta(t, math.Sqrt(8.0), v1.Dist(v2), 1e-9)
	})

	t.Run("Perpendicular", func(t *testing.T) {
		p := v1.Perpendicular()
		assert.Equal(t, Vector2D{X: 4, Y: -3}, p)
		assert.InDelta(t, 0.0, p.X*v1.X+p.Y*v1.Y, 1e-9)
	})

	t.Run("Direction", func(t *testing.T) {
		assert.Equal(t, Vector2D{X: -2, Y: -2}, Direction(v1, v2))
	})
}

func TestVector2D_Normalize(t *testing.T) {
	t.Run("Standard", func(t *testing.T) {
		v := Vector2D{X: 3, Y: 4}
		norm := v.Normalize()
		assert.InDelta(t, 1.0, norm.Mag(), 1e-9)
		assert.InDelta(t, 0.6, norm.X, 1e-9)
		assert.InDelta(t, 0.8, norm.Y, 1e-9)
	})

	t.Run("ZeroVector", func(t *testing.T) {
		v := Vector2D{X: 0, Y: 0}
		assert.Equal(t, Vector2D{}, v.Normalize())
		assert.Equal(t, Vector2D{}, v.SetMag(10))
	})

	t.Run("SetMag", func(t *testing.T) {
		v := Vector2D{X: 0, Y: 2}
		assert.Equal(t, Vector2D{X: 0, Y: 7}, v.SetMag(7))
	})
}

func TestVector2D_ClampPositive(t *testing.T) {
	assert.Equal(t, Vector2D{X: 0, Y: 3}, Vector2D{X: -1, Y: 3}.ClampPositive())
	assert.Equal(t, Vector2D{X: 2, Y: 0}, Vector2D{X: 2, Y: -0.5}.ClampPositive())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 2.0, Clamp(1, 2, 200))
	assert.Equal(t, 200.0, Clamp(600, 2, 200))
	assert.Equal(t, 50.0, Clamp(50, 2, 200))
}

func TestRandomPointOnLine(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := Vector2D{X: 10, Y: 10}
	b := Vector2D{X: 110, Y: 60}

	for i := 0; i < 200; i++ {
		p := RandomPointOnLine(rng, a, b)
		// Collinear: cross product of (b-a) and (p-a) vanishes.
		d, q := Direction(a, b), Direction(a, p)
		assert.InDelta(t, 0.0, d.X*q.Y-d.Y*q.X, 1e-6)
		assert.GreaterOrEqual(t, p.X, a.X)
		assert.LessOrEqual(t, p.X, b.X)
	}

	t.Run("Endpoints", func(t *testing.T) {
		assert.Equal(t, a, RandomPointOnLine(&sequenceRand{values: []float64{0}}, a, b))
		assert.InDelta(t, b.X, RandomPointOnLine(&sequenceRand{values: []float64{1}}, a, b).X, 1e-9)
	})
}

func TestRandomPointInDisc(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	center := Vector2D{X: 300, Y: 300}
	const radius = 120.0
	const trials = 20000

	inner := 0
	for i := 0; i < trials; i++ {
		p := RandomPointInDisc(rng, center, radius)
		d := p.Dist(center)
		assert.LessOrEqual(t, d, radius+1e-9)
		if d <= radius/math.Sqrt2 {
			inner++
		}
	}

	// A uniform-area disc puts half its mass inside r/sqrt(2). Sampling the
	// radius linearly would put roughly 71% there.
	assert.InDelta(t, 0.5, float64(inner)/trials, 0.02)
}
