// internal/humanoid/types.go
package humanoid

import "time"

// Motion constants. These are not configurable.
const (
	// OvershootThreshold is the travel distance above which a directed move
	// overshoots the destination and corrects back.
	OvershootThreshold = 500.0
	// OvershootRadius bounds how far from the destination the overshoot lands.
	OvershootRadius = 120.0
	// OvershootSpread is the curve spread used for the corrective path.
	OvershootSpread = 10.0
	// MinStepsBasis scales the random jitter added to every step count.
	MinStepsBasis = 25.0

	spreadMin = 2.0
	spreadMax = 200.0

	// defaultPointBoxSize is the width and height used when a bare point is
	// the destination.
	defaultPointBoxSize = 100.0
	// minTargetWidth stands in for zero or negative target widths.
	minTargetWidth = 1e-3

	// DefaultDelayRangeMs is the upper bound of post-click and wander pauses.
	DefaultDelayRangeMs = 2000
)

// Box is an axis-aligned target region in viewport coordinates.
type Box struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Origin returns the top-left corner, the point a path into the box ends on.
func (b Box) Origin() Vector2D {
	return Vector2D{X: b.X, Y: b.Y}
}

// Contains reports whether p lies within the closed box.
func (b Box) Contains(p Vector2D) bool {
	return p.X >= b.X && p.X <= b.X+b.Width && p.Y >= b.Y && p.Y <= b.Y+b.Height
}

// pointBox builds the default destination box for a bare point.
func pointBox(p Vector2D) Box {
	return Box{X: p.X, Y: p.Y, Width: defaultPointBoxSize, Height: defaultPointBoxSize}
}

// Target identifies an element for the driver. Both shipped drivers treat it
// as a CSS selector. The empty Target means "no element".
type Target string

// String implements fmt.Stringer.
func (t Target) String() string { return string(t) }

// MoveOptions configures Move and Click. Optional fields are pointers; a nil
// pointer means "use the default for this operation".
type MoveOptions struct {
	// PaddingPercentage shrinks the target box symmetrically before a
	// destination point is sampled inside it. Only 0 < p < 100 is applied.
	PaddingPercentage int
	// WaitBeforeMoveMs pauses before any motion starts.
	WaitBeforeMoveMs *int
	// PostMoveDelayRangeMs is the upper bound of the uniform pause after the
	// operation. Click defaults to DefaultDelayRangeMs when nil or negative.
	// Move only pauses when it is set and >= 0.
	PostMoveDelayRangeMs *int
	// HoldDurationMs is how long Click holds the button down. Nil or
	// negative releases immediately. Move ignores it.
	HoldDurationMs *int
}

// Int returns a pointer to v, for filling optional option fields.
func Int(v int) *int { return &v }

// TrajectoryKind names the operation that produced a trajectory.
type TrajectoryKind string

const (
	KindMoveTo TrajectoryKind = "move_to"
	KindMove   TrajectoryKind = "move"
	KindClick  TrajectoryKind = "click"
	KindWander TrajectoryKind = "wander"
	KindTrace  TrajectoryKind = "trace"
)

// Trajectory describes one traced motion, for recording and analysis.
type Trajectory struct {
	ID          string         `json:"id" yaml:"id"`
	SessionID   string         `json:"session_id" yaml:"session_id"`
	Kind        TrajectoryKind `json:"kind" yaml:"kind"`
	Start       Vector2D       `json:"start" yaml:"start"`
	Destination Vector2D       `json:"destination" yaml:"destination"`
	Points      []Vector2D     `json:"points" yaml:"points"`
	Overshoot   bool           `json:"overshoot" yaml:"overshoot"`
	Aborted     bool           `json:"aborted" yaml:"aborted"`
	StartedAt   time.Time      `json:"started_at" yaml:"started_at"`
	Duration    time.Duration  `json:"duration" yaml:"duration"`
}
