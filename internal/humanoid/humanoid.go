// internal/humanoid/humanoid.go
package humanoid

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Cursor drives one pointer session. Directed operations (Move, MoveTo,
// Click) and the background wanderer share the pointer through a single
// atomic flag. The flag is a checkpoint convention, not a lock: the
// wanderer observes it between waypoints, so a directed move may start
// while the last wander waypoint is still in flight.
type Cursor struct {
	driver   Driver
	logger   *zap.Logger
	rng      Rand
	recorder Recorder
	limiter  *rate.Limiter

	sessionID   string
	wander      bool
	wanderDelay time.Duration

	// directed is true while a caller-initiated operation owns the pointer.
	directed atomic.Bool

	// mu protects currentPos. All other fields are immutable after New.
	mu         sync.Mutex
	currentPos Vector2D

	wanderCtx    context.Context
	cancelWander context.CancelFunc
	wg           sync.WaitGroup
	closeOnce    sync.Once
}

// Option customizes a Cursor at construction.
type Option func(*Cursor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cursor) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRand injects the random source used for every path and delay.
func WithRand(rng Rand) Option {
	return func(c *Cursor) {
		if rng != nil {
			c.rng = shareable(rng)
		}
	}
}

// WithSeed seeds the random source, for reproducible sessions.
func WithSeed(seed int64) Option {
	return func(c *Cursor) { c.rng = NewRand(seed) }
}

// WithWander enables background idle motion.
func WithWander(enabled bool) Option {
	return func(c *Cursor) { c.wander = enabled }
}

// WithWanderDelay sets the upper bound of the pause between wander moves.
// Negative values restore the default.
func WithWanderDelay(d time.Duration) Option {
	return func(c *Cursor) {
		if d >= 0 {
			c.wanderDelay = d
		}
	}
}

// WithRecorder receives every traced trajectory.
func WithRecorder(r Recorder) Option {
	return func(c *Cursor) { c.recorder = r }
}

// WithMaxEventRate caps pointer move dispatch to perSecond events. Zero or
// negative leaves dispatch unthrottled.
func WithMaxEventRate(perSecond float64) Option {
	return func(c *Cursor) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithSessionID overrides the generated session identifier.
func WithSessionID(id string) Option {
	return func(c *Cursor) {
		if id != "" {
			c.sessionID = id
		}
	}
}

// New creates a cursor bound to driver at start. If wander is enabled, the
// background loop starts immediately and runs until Close.
func New(driver Driver, start Vector2D, opts ...Option) *Cursor {
	c := &Cursor{
		driver:      driver,
		logger:      zap.NewNop(),
		sessionID:   uuid.NewString(),
		wanderDelay: DefaultDelayRangeMs * time.Millisecond,
		currentPos:  start,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = newTimeSeededRand()
	}
	c.logger = c.logger.Named("humanoid").With(zap.String("session", c.sessionID))
	c.wanderCtx, c.cancelWander = context.WithCancel(context.Background())

	if c.wander {
		c.wg.Add(1)
		go c.wanderLoop(c.wanderCtx)
	}
	return c
}

// Close stops the wanderer and waits for it to exit. It is safe to call
// more than once.
func (c *Cursor) Close() error {
	c.closeOnce.Do(func() {
		c.cancelWander()
		c.wg.Wait()
	})
	return nil
}

// SessionID returns the identifier attached to logs and trajectories.
func (c *Cursor) SessionID() string { return c.sessionID }

// Position returns the cursor's believed pointer location.
func (c *Cursor) Position() Vector2D {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPos
}

func (c *Cursor) setPosition(p Vector2D) {
	c.mu.Lock()
	c.currentPos = p
	c.mu.Unlock()
}

// Moving reports whether a directed operation currently owns the pointer.
func (c *Cursor) Moving() bool { return c.directed.Load() }

// ToggleWander sets the exclusivity flag directly: enabled clears it so the
// wanderer may run, disabled raises it. A subsequent directed operation
// clears the flag when it finishes.
func (c *Cursor) ToggleWander(enabled bool) {
	c.directed.Store(!enabled)
}

// SetWanderEnabled is the public name for ToggleWander.
func (c *Cursor) SetWanderEnabled(enabled bool) { c.ToggleWander(enabled) }

// beginDirected raises the flag and returns the release to defer.
func (c *Cursor) beginDirected() func() {
	c.directed.Store(true)
	return func() { c.directed.Store(false) }
}

// randomDelay returns a uniform duration in [0, upper].
func (c *Cursor) randomDelay(upper time.Duration) time.Duration {
	return time.Duration(c.rng.Float64() * float64(upper))
}

// record hands a trajectory to the recorder. Failures never affect motion.
func (c *Cursor) record(ctx context.Context, t Trajectory) {
	if c.recorder == nil {
		return
	}
	t.ID = uuid.NewString()
	t.SessionID = c.sessionID
	if err := c.recorder.RecordTrajectory(context.WithoutCancel(ctx), t); err != nil {
		c.logger.Warn("Failed to record trajectory", zap.String("kind", string(t.Kind)), zap.Error(err))
	}
}

var _ Controller = (*Cursor)(nil)
