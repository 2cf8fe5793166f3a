package humanoid

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Click optionally moves to target, then presses and releases the primary
// button and pauses for a random post-click delay. Failures of the
// down/up sequence are logged and swallowed; only a disconnected driver is
// reported. The exclusivity flag is released on every exit path.
func (c *Cursor) Click(ctx context.Context, target Target, opts *MoveOptions) error {
	release := c.beginDirected()
	defer release()

	if opts == nil {
		opts = &MoveOptions{}
	}

	if target != "" {
		if err := c.moveToTarget(ctx, target, *opts, KindClick); err != nil {
			return err
		}
	}

	if err := c.press(ctx, opts.HoldDurationMs); err != nil {
		return err
	}

	delayRange := time.Duration(DefaultDelayRangeMs) * time.Millisecond
	if opts.PostMoveDelayRangeMs != nil && *opts.PostMoveDelayRangeMs >= 0 {
		delayRange = time.Duration(*opts.PostMoveDelayRangeMs) * time.Millisecond
	}
	return c.pause(ctx, delayRange)
}

// releaseTimeout bounds the button release sent after ctx is done.
const releaseTimeout = 2 * time.Second

// press runs the down, hold, up sequence. Once the button is down it is
// always released, even when ctx ends during the hold.
func (c *Cursor) press(ctx context.Context, holdMs *int) error {
	var failed bool

	if err := c.driver.MouseDown(ctx); err != nil {
		failed = true
		c.logger.Warn("Could not press mouse button", zap.Error(err))
	} else {
		if holdMs != nil && *holdMs > 0 {
			if err := c.driver.Sleep(ctx, time.Duration(*holdMs)*time.Millisecond); err != nil {
				c.logger.Debug("Click hold interrupted", zap.Error(err))
			}
		}
		upCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		err := c.driver.MouseUp(upCtx)
		cancel()
		if err != nil {
			failed = true
			c.logger.Warn("Could not release mouse button", zap.Error(err))
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if failed && !c.driver.IsConnected() {
		return fmt.Errorf("humanoid: clicking: %w", ErrDriverDisconnected)
	}
	return nil
}
