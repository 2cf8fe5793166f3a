// internal/browser/session/driver.go
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghostcursor/internal/humanoid"
)

// defaultOpTimeout bounds every CDP round trip except Sleep.
const defaultOpTimeout = 10 * time.Second

// Driver implements humanoid.Driver on top of a chromedp tab context. It
// bridges the browser-agnostic cursor with concrete CDP commands.
type Driver struct {
	ctx     context.Context // The tab context returned by chromedp.NewContext.
	logger  *zap.Logger
	timeout time.Duration

	// frame scopes element lookups to an iframe's document.
	frame               humanoid.Target
	relativeToMainFrame bool

	// Points to runActions; replaced in tests.
	runActionsFunc func(ctx context.Context, actions ...chromedp.Action) error

	// Overridable strategy chains, tried in order.
	boxQueries      []humanoid.BoxQuery
	scrollers       []humanoid.ScrollStrategy
	viewportQueries []viewportQuery

	mu      sync.Mutex
	pointer humanoid.Vector2D
}

// ensure Driver implements the interface
var _ humanoid.Driver = (*Driver)(nil)

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the driver's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithTimeout overrides the per-command timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithFrame resolves targets inside the iframe matched by owner. Unless
// relativeToMainFrame is set, boxes are reported relative to the frame.
func WithFrame(owner humanoid.Target, relativeToMainFrame bool) Option {
	return func(d *Driver) {
		d.frame = owner
		d.relativeToMainFrame = relativeToMainFrame
	}
}

// NewDriver wraps a chromedp tab context. The context must already be
// attached to a target (see browser.Launch).
func NewDriver(ctx context.Context, opts ...Option) *Driver {
	d := &Driver{
		ctx:                 ctx,
		logger:              zap.NewNop(),
		timeout:             defaultOpTimeout,
		relativeToMainFrame: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("cdp_driver")
	d.runActionsFunc = d.runActions
	d.boxQueries = []humanoid.BoxQuery{d.contentQuadsBox, d.boxModelBox, d.clientRectBox}
	d.scrollers = []humanoid.ScrollStrategy{d.nativeScroll, d.scriptScroll}
	d.viewportQueries = []viewportQuery{d.windowBounds, d.layoutMetrics}
	return d
}

// runActions executes actions against the tab, bounded by both the tab's
// lifetime and the caller's context.
func (d *Driver) runActions(ctx context.Context, actions ...chromedp.Action) error {
	combined, cancel := CombineContext(d.ctx, ctx)
	defer cancel()
	return chromedp.Run(combined, actions...)
}

// run applies the per-command timeout and wraps failures.
func (d *Driver) run(ctx context.Context, op string, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.runActionsFunc(opCtx, actions...)
	if err == nil {
		return nil
	}
	if ctx.Err() == nil && errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		d.logger.Debug("CDP command timed out.", zap.String("op", op), zap.Duration("timeout", d.timeout))
		return fmt.Errorf("cdp driver: %s timed out after %v: %w", op, d.timeout, opCtx.Err())
	}
	return fmt.Errorf("cdp driver: %s: %w", op, err)
}

// MoveMouse dispatches a mouseMoved event and remembers the pointer.
func (d *Driver) MoveMouse(ctx context.Context, x, y float64) error {
	p := input.DispatchMouseEvent(input.MouseMoved, x, y)
	if err := d.run(ctx, "mouse move", p); err != nil {
		return err
	}
	d.mu.Lock()
	d.pointer = humanoid.Vector2D{X: x, Y: y}
	d.mu.Unlock()
	return nil
}

// MouseDown presses the left button where the pointer last moved.
func (d *Driver) MouseDown(ctx context.Context) error {
	pos := d.lastPointer()
	p := input.DispatchMouseEvent(input.MousePressed, pos.X, pos.Y).
		WithButton(input.Left).
		WithButtons(1).
		WithClickCount(1)
	return d.run(ctx, "mouse down", p)
}

// MouseUp releases the left button where the pointer last moved.
func (d *Driver) MouseUp(ctx context.Context) error {
	pos := d.lastPointer()
	p := input.DispatchMouseEvent(input.MouseReleased, pos.X, pos.Y).
		WithButton(input.Left).
		WithButtons(0).
		WithClickCount(1)
	return d.run(ctx, "mouse up", p)
}

func (d *Driver) lastPointer() humanoid.Vector2D {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pointer
}

// ElementBox resolves target via content quads, then the box model, then
// getBoundingClientRect.
func (d *Driver) ElementBox(ctx context.Context, target humanoid.Target) (*humanoid.Box, error) {
	box, err := humanoid.ResolveBox(ctx, target, d.boxQueries...)
	if err != nil {
		return nil, err
	}
	if d.frame == "" || d.relativeToMainFrame {
		return box, nil
	}

	// Report the box in the frame's own coordinate space.
	owner, err := d.frameOwnerBox(ctx)
	if err != nil {
		d.logger.Debug("Could not resolve frame owner; using main frame coordinates.", zap.Stringer("frame", d.frame), zap.Error(err))
		return box, nil
	}
	box.X -= owner.X
	box.Y -= owner.Y
	return box, nil
}

// ScrollIntoView tries DOM.scrollIntoViewIfNeeded, then a smooth JS scroll.
func (d *Driver) ScrollIntoView(ctx context.Context, target humanoid.Target) error {
	return humanoid.ScrollWithFallback(ctx, target, d.scrollers...)
}

// ViewportSize reports the window bounds, falling back to the CSS visual
// viewport from the layout metrics.
func (d *Driver) ViewportSize(ctx context.Context) (float64, float64, error) {
	var errs []error
	for _, query := range d.viewportQueries {
		w, h, err := query(ctx)
		if err == nil && w > 0 && h > 0 {
			return w, h, nil
		}
		if ctx.Err() != nil {
			return 0, 0, ctx.Err()
		}
		if err == nil {
			err = fmt.Errorf("empty viewport %vx%v", w, h)
		}
		errs = append(errs, err)
	}
	return 0, 0, fmt.Errorf("cdp driver: viewport size unavailable: %w", errors.Join(errs...))
}

// IsConnected reports whether the tab context is still alive.
func (d *Driver) IsConnected() bool {
	return d.ctx.Err() == nil
}

// Sleep pauses execution for the specified duration, respecting the context.
func (d *Driver) Sleep(ctx context.Context, dur time.Duration) error {
	return d.runActionsFunc(ctx, chromedp.Sleep(dur))
}
