// internal/humanoid/movement.go
package humanoid

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// phase is one leg of a planned move: a waypoint list plus where the leg
// nominally ends.
type phase struct {
	points []Vector2D
	end    Vector2D
}

// MoveTo moves the pointer along a curved path to destination. The believed
// position is set to destination exactly when the path finishes.
func (c *Cursor) MoveTo(ctx context.Context, destination Vector2D) error {
	release := c.beginDirected()
	defer release()

	start := c.Position()
	startedAt := time.Now()
	points := Path(c.rng, start, pointBox(destination), nil)

	reached, err := c.tracePath(ctx, points, false)
	c.record(ctx, Trajectory{
		Kind:        KindMoveTo,
		Start:       start,
		Destination: destination,
		Points:      reached,
		Aborted:     err != nil,
		StartedAt:   startedAt,
		Duration:    time.Since(startedAt),
	})
	if err != nil {
		return err
	}

	c.setPosition(destination)
	return nil
}

// Move scrolls target into view, picks a point inside its padded box and
// moves there, overshooting and correcting on long journeys.
func (c *Cursor) Move(ctx context.Context, target Target, opts *MoveOptions) error {
	release := c.beginDirected()
	defer release()

	if opts == nil {
		opts = &MoveOptions{}
	}
	if err := c.moveToTarget(ctx, target, *opts, KindMove); err != nil {
		return err
	}
	if opts.PostMoveDelayRangeMs != nil && *opts.PostMoveDelayRangeMs >= 0 {
		return c.pause(ctx, time.Duration(*opts.PostMoveDelayRangeMs)*time.Millisecond)
	}
	return nil
}

// moveToTarget is the body of Move without flag handling or post delay.
func (c *Cursor) moveToTarget(ctx context.Context, target Target, opts MoveOptions, kind TrajectoryKind) error {
	if opts.WaitBeforeMoveMs != nil && *opts.WaitBeforeMoveMs > 0 {
		if err := c.driver.Sleep(ctx, time.Duration(*opts.WaitBeforeMoveMs)*time.Millisecond); err != nil {
			return err
		}
	}

	if err := c.driver.ScrollIntoView(ctx, target); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Debug("Could not scroll target into view, continuing", zap.Stringer("target", target), zap.Error(err))
	}

	box, err := c.driver.ElementBox(ctx, target)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !c.driver.IsConnected() {
			return fmt.Errorf("humanoid: locating '%s': %w", target, ErrDriverDisconnected)
		}
		return fmt.Errorf("humanoid: locating '%s': %w", target, err)
	}
	if box == nil {
		return fmt.Errorf("humanoid: locating '%s': %w", target, ErrGeometryUnavailable)
	}

	start := c.Position()
	destination := RandomPointInBox(c.rng, *box, opts.PaddingPercentage)
	phases := c.planMove(start, destination, *box)

	startedAt := time.Now()
	var traced []Vector2D
	var traceErr error
	for i, ph := range phases {
		reached, err := c.tracePath(ctx, ph.points, false)
		traced = append(traced, reached...)
		if err != nil {
			traceErr = err
			break
		}
		c.logger.Debug("Move leg complete",
			zap.Int("leg", i),
			zap.Float64("x", ph.end.X),
			zap.Float64("y", ph.end.Y),
			zap.Int("points", len(reached)))
	}
	c.record(ctx, Trajectory{
		Kind:        kind,
		Start:       start,
		Destination: destination,
		Points:      traced,
		Overshoot:   len(phases) > 1,
		Aborted:     traceErr != nil,
		StartedAt:   startedAt,
		Duration:    time.Since(startedAt),
	})
	if traceErr != nil {
		return traceErr
	}

	// The nominal destination is reported even if the last sampled
	// waypoint differs from it.
	c.setPosition(destination)
	return nil
}

// planMove splits a move into its legs. Journeys longer than
// OvershootThreshold first aim at a perturbed point near the destination and
// then take a tight corrective path into the target box.
func (c *Cursor) planMove(start, destination Vector2D, box Box) []phase {
	if Direction(start, destination).Mag() <= OvershootThreshold {
		return []phase{{
			points: Path(c.rng, start, pointBox(destination), nil),
			end:    destination,
		}}
	}

	overshoot := RandomPointInDisc(c.rng, destination, OvershootRadius)
	spread := OvershootSpread
	correctionBox := Box{X: destination.X, Y: destination.Y, Width: box.Width, Height: box.Height}
	return []phase{
		{points: Path(c.rng, start, pointBox(overshoot), nil), end: overshoot},
		{points: Path(c.rng, overshoot, correctionBox, &spread), end: destination},
	}
}

// tracePath feeds points to the driver one at a time and returns the
// waypoints actually reached. With abortOnMove set, it stops at the first
// checkpoint where a directed operation owns the pointer. A failed
// waypoint is skipped unless the driver has disconnected.
func (c *Cursor) tracePath(ctx context.Context, points []Vector2D, abortOnMove bool) ([]Vector2D, error) {
	reached := make([]Vector2D, 0, len(points))
	for _, p := range points {
		if abortOnMove && c.directed.Load() {
			return reached, nil
		}
		if err := ctx.Err(); err != nil {
			return reached, err
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return reached, err
			}
		}

		if err := c.driver.MoveMouse(ctx, p.X, p.Y); err != nil {
			if ctx.Err() != nil {
				return reached, ctx.Err()
			}
			if !c.driver.IsConnected() {
				return reached, fmt.Errorf("humanoid: moving pointer: %w", ErrDriverDisconnected)
			}
			c.logger.Warn("Could not move mouse, skipping waypoint",
				zap.Float64("x", p.X), zap.Float64("y", p.Y), zap.Error(err))
			continue
		}
		c.setPosition(p)
		reached = append(reached, p)
	}
	return reached, nil
}

// pause sleeps a uniform random duration in [0, upper].
func (c *Cursor) pause(ctx context.Context, upper time.Duration) error {
	d := c.randomDelay(upper)
	if d <= 0 {
		return nil
	}
	return c.driver.Sleep(ctx, d)
}
