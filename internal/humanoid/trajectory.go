// internal/humanoid/trajectory.go
package humanoid

// arcLengthSegments is the chord count used to approximate curve length.
const arcLengthSegments = 64

// Curve is a cubic Bezier from Start to End shaped by two anchors.
type Curve struct {
	Start, Anchor1, Anchor2, End Vector2D
}

// Point evaluates the curve at t in [0, 1].
func (c Curve) Point(t float64) Vector2D {
	omt := 1.0 - t
	omt2 := omt * omt
	omt3 := omt2 * omt
	t2 := t * t
	t3 := t2 * t

	return c.Start.Mul(omt3).
		Add(c.Anchor1.Mul(3 * omt2 * t)).
		Add(c.Anchor2.Mul(3 * omt * t2)).
		Add(c.End.Mul(t3))
}

// Length approximates the arc length by summing chords.
func (c Curve) Length() float64 {
	length := 0.0
	prev := c.Start
	for i := 1; i <= arcLengthSegments; i++ {
		p := c.Point(float64(i) / arcLengthSegments)
		length += prev.Dist(p)
		prev = p
	}
	return length
}

// BezierCurve builds a randomized single-arc curve between start and finish.
// The anchor spread scales with travel distance, bounded to [2, 200], unless
// spreadOverride is given.
func BezierCurve(rng Rand, start, finish Vector2D, spreadOverride *float64) Curve {
	spread := Clamp(Direction(start, finish).Mag(), spreadMin, spreadMax)
	if spreadOverride != nil {
		spread = *spreadOverride
	}
	a1, a2 := bezierAnchors(rng, start, finish, spread)
	return Curve{Start: start, Anchor1: a1, Anchor2: a2, End: finish}
}

// bezierAnchors places both anchors on the same side of the start-finish
// line so the curve arcs once instead of forming an S. The result is ordered
// by ascending X.
func bezierAnchors(rng Rand, a, b Vector2D, spread float64) (Vector2D, Vector2D) {
	side := -1.0
	if rng.Float64() >= 0.5 {
		side = 1.0
	}

	anchor := func() Vector2D {
		randMid, normal := randomNormalLine(rng, a, b, spread)
		return RandomPointOnLine(rng, randMid, randMid.Add(normal.Mul(side)))
	}

	first, second := anchor(), anchor()
	if second.X < first.X {
		first, second = second, first
	}
	return first, second
}

// randomNormalLine picks a random point on a-b and the normal of length
// spread at that point.
func randomNormalLine(rng Rand, a, b Vector2D, spread float64) (Vector2D, Vector2D) {
	randMid := RandomPointOnLine(rng, a, b)
	normal := Direction(a, randMid).Perpendicular().SetMag(spread)
	return randMid, normal
}
