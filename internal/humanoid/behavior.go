package humanoid

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// wanderPollInterval is how often a parked wanderer rechecks the flag.
const wanderPollInterval = 50 * time.Millisecond

// wanderLoop fills idle time with plausible pointer motion. It runs until
// ctx is cancelled or the driver fails structurally, and never restarts
// itself after a failure.
func (c *Cursor) wanderLoop(ctx context.Context) {
	defer c.wg.Done()
	c.logger.Debug("Starting idle wander")

	for {
		if c.directed.Load() {
			if err := c.driver.Sleep(ctx, wanderPollInterval); err != nil {
				c.logger.Debug("Stopping idle wander", zap.Error(err))
				return
			}
			continue
		}
		if err := c.wanderOnce(ctx); err != nil {
			c.logger.Debug("Stopping idle wander", zap.Error(err))
			return
		}
		if err := c.pause(ctx, c.wanderDelay); err != nil {
			c.logger.Debug("Stopping idle wander", zap.Error(err))
			return
		}
		if ctx.Err() != nil {
			c.logger.Debug("Stopping idle wander", zap.Error(ctx.Err()))
			return
		}
	}
}

// wanderOnce traces one path to a random viewport point, abandoning it at
// the first checkpoint where a directed operation holds the pointer. The
// believed position becomes the last waypoint actually reached.
func (c *Cursor) wanderOnce(ctx context.Context) error {
	width, height, err := c.driver.ViewportSize(ctx)
	if err != nil {
		return fmt.Errorf("humanoid: reading viewport: %w", err)
	}
	if !c.driver.IsConnected() {
		return ErrDriverDisconnected
	}

	start := c.Position()
	destination := RandomPointInBox(c.rng, Box{X: Origin.X, Y: Origin.Y, Width: width, Height: height}, 0)
	startedAt := time.Now()

	reached, err := c.tracePath(ctx, Path(c.rng, start, pointBox(destination), nil), true)
	c.record(ctx, Trajectory{
		Kind:        KindWander,
		Start:       start,
		Destination: destination,
		Points:      reached,
		Aborted:     err != nil || c.directed.Load(),
		StartedAt:   startedAt,
		Duration:    time.Since(startedAt),
	})
	return err
}
