package humanoid

// Path builds the waypoint list from start into end. The curve terminates
// on end's origin and the step count is sized by end's width. Every
// coordinate is clamped to be non-negative.
func Path(rng Rand, start Vector2D, end Box, spreadOverride *float64) []Vector2D {
	curve := BezierCurve(rng, start, end.Origin(), spreadOverride)
	steps := StepCount(rng, curve.Length(), end.Width)
	return clampPositive(sampleCurve(curve, steps))
}

// sampleCurve subdivides the curve into steps evenly parametrized points,
// from t=0 to t=1 inclusive. It is deterministic for a fixed curve and step
// count.
func sampleCurve(c Curve, steps int) []Vector2D {
	if steps < minSteps {
		steps = minSteps
	}
	points := make([]Vector2D, steps)
	last := float64(steps - 1)
	for i := range points {
		points[i] = c.Point(float64(i) / last)
	}
	return points
}

func clampPositive(points []Vector2D) []Vector2D {
	for i, p := range points {
		points[i] = p.ClampPositive()
	}
	return points
}

// RandomPointInBox samples a destination inside box after shrinking it by
// paddingPercentage on each axis. Padding outside (0, 100) is ignored.
func RandomPointInBox(rng Rand, box Box, paddingPercentage int) Vector2D {
	var paddingWidth, paddingHeight float64
	if paddingPercentage > 0 && paddingPercentage < 100 {
		paddingWidth = box.Width * float64(paddingPercentage) / 100
		paddingHeight = box.Height * float64(paddingPercentage) / 100
	}

	return Vector2D{
		X: box.X + paddingWidth/2 + rng.Float64()*(box.Width-paddingWidth),
		Y: box.Y + paddingHeight/2 + rng.Float64()*(box.Height-paddingHeight),
	}
}
