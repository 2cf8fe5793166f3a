package humanoid

import "math"

// minSteps is the floor on samples per path so it always has a start and an end.
const minSteps = 2

// Fitts returns the Fitts's law movement time index for a target of the
// given width at the given distance: 2 * log2(distance/width + 1).
// Degenerate inputs are recovered locally: a non-positive or NaN width counts
// as minTargetWidth and negative distances count as zero. Any positive width
// is used as given, so the index keeps falling as the width grows.
func Fitts(distance, width float64) float64 {
	if width <= 0 || math.IsNaN(width) {
		width = minTargetWidth
	}
	if distance < 0 || math.IsNaN(distance) {
		distance = 0
	}
	const a, b = 0.0, 2.0
	ratio := distance / width
	id := math.Log2(ratio + 1)
	if math.IsInf(ratio, 1) {
		// Tiny widths overflow the ratio; the +1 is negligible there.
		id = math.Log2(distance) - math.Log2(width)
	}
	return a + b*id
}

// StepCount converts curve length and target width into the number of
// waypoints to sample. Longer or harder moves get more samples, and the
// random base keeps repeated moves over the same endpoints from sampling
// identically.
func StepCount(rng Rand, arcLength, width float64) int {
	baseTime := rng.Float64() * MinStepsBasis
	length := arcLength * 0.8
	steps := int(math.Ceil((math.Log2(Fitts(length, width)+1) + baseTime) * 3))
	if steps < minSteps {
		return minSteps
	}
	return steps
}
