// internal/humanoid/interface.go
package humanoid

import (
	"context"
	"time"
)

// Driver defines the low-level capabilities the cursor needs from a browser
// automation backend. Implementations own the real browser session.
type Driver interface {
	// MoveMouse dispatches a single pointer move to (x, y).
	MoveMouse(ctx context.Context, x, y float64) error
	// MouseDown presses the primary button at the current pointer position.
	MouseDown(ctx context.Context) error
	// MouseUp releases the primary button at the current pointer position.
	MouseUp(ctx context.Context) error
	// ElementBox resolves the target's on-screen box. Implementations try a
	// precise query first and fall back to a coarser one. A nil box with a
	// nil error is treated as unavailable geometry.
	ElementBox(ctx context.Context, target Target) (*Box, error)
	// ScrollIntoView brings the target into the viewport.
	ScrollIntoView(ctx context.Context, target Target) error
	// ViewportSize returns the visible page area.
	ViewportSize(ctx context.Context) (width, height float64, err error)
	// IsConnected reports whether the browser session is still alive. It is
	// polled after failures, never pushed.
	IsConnected() bool
	// Sleep pauses for d, returning early with ctx's error on cancellation.
	Sleep(ctx context.Context, d time.Duration) error
}

// Recorder receives every traced trajectory. Implementations must not block
// for long; the cursor calls it inline after each motion.
type Recorder interface {
	RecordTrajectory(ctx context.Context, t Trajectory) error
}

// Controller is the high-level pointer interface implemented by Cursor.
type Controller interface {
	MoveTo(ctx context.Context, destination Vector2D) error
	Move(ctx context.Context, target Target, opts *MoveOptions) error
	Click(ctx context.Context, target Target, opts *MoveOptions) error
	SetWanderEnabled(enabled bool)
	Position() Vector2D
}
