// Package rodsession adapts a go-rod page to the cursor's Driver interface.
package rodsession

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghostcursor/internal/humanoid"
)

const defaultOpTimeout = 10 * time.Second

// Driver implements humanoid.Driver with go-rod.
type Driver struct {
	page    *rod.Page
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	pointer humanoid.Vector2D
}

var _ humanoid.Driver = (*Driver)(nil)

// New wraps page. A nil logger discards output.
func New(page *rod.Page, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		page:    page,
		logger:  logger.Named("rod_driver"),
		timeout: defaultOpTimeout,
	}
}

// scoped returns the page bound to ctx and the per-command timeout.
func (d *Driver) scoped(ctx context.Context) (*rod.Page, context.CancelFunc) {
	opCtx, cancel := context.WithTimeout(ctx, d.timeout)
	return d.page.Context(opCtx), cancel
}

func (d *Driver) dispatch(ctx context.Context, ev proto.InputDispatchMouseEvent) error {
	page, cancel := d.scoped(ctx)
	defer cancel()
	if err := ev.Call(page); err != nil {
		return fmt.Errorf("rod driver: %s: %w", ev.Type, err)
	}
	return nil
}

func (d *Driver) MoveMouse(ctx context.Context, x, y float64) error {
	err := d.dispatch(ctx, proto.InputDispatchMouseEvent{
		Type: proto.InputDispatchMouseEventTypeMouseMoved,
		X:    x,
		Y:    y,
	})
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.pointer = humanoid.Vector2D{X: x, Y: y}
	d.mu.Unlock()
	return nil
}

func (d *Driver) MouseDown(ctx context.Context) error {
	return d.press(ctx, proto.InputDispatchMouseEventTypeMousePressed)
}

func (d *Driver) MouseUp(ctx context.Context) error {
	return d.press(ctx, proto.InputDispatchMouseEventTypeMouseReleased)
}

func (d *Driver) press(ctx context.Context, typ proto.InputDispatchMouseEventType) error {
	d.mu.Lock()
	pos := d.pointer
	d.mu.Unlock()
	return d.dispatch(ctx, buttonEvent(typ, pos))
}

// buttonEvent builds a primary button event at pos. The buttons bitmask
// reports the left button held while pressed.
func buttonEvent(typ proto.InputDispatchMouseEventType, pos humanoid.Vector2D) proto.InputDispatchMouseEvent {
	buttons := 0
	if typ == proto.InputDispatchMouseEventTypeMousePressed {
		buttons = 1
	}
	return proto.InputDispatchMouseEvent{
		Type:       typ,
		X:          pos.X,
		Y:          pos.Y,
		Button:     proto.InputMouseButtonLeft,
		Buttons:    gson.Int(buttons),
		ClickCount: 1,
	}
}

// element finds target without rod's implicit retry loop.
func (d *Driver) element(ctx context.Context, target humanoid.Target) (*rod.Element, context.CancelFunc, error) {
	page, cancel := d.scoped(ctx)
	has, el, err := page.Has(string(target))
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("rod driver: finding '%s': %w", target, err)
	}
	if !has {
		cancel()
		return nil, nil, fmt.Errorf("rod driver: no element matches '%s'", target)
	}
	return el, cancel, nil
}

// ElementBox prefers content quads and falls back to the border box.
func (d *Driver) ElementBox(ctx context.Context, target humanoid.Target) (*humanoid.Box, error) {
	return humanoid.ResolveBox(ctx, target, d.shapeBox, d.borderBox)
}

func (d *Driver) shapeBox(ctx context.Context, target humanoid.Target) (*humanoid.Box, error) {
	el, cancel, err := d.element(ctx, target)
	if err != nil {
		return nil, err
	}
	defer cancel()

	shape, err := el.Shape()
	if err != nil {
		return nil, fmt.Errorf("rod driver: content quads: %w", err)
	}
	if len(shape.Quads) == 0 {
		return nil, errors.New("rod driver: element has no content quads")
	}
	box, ok := humanoid.BoxFromQuad(shape.Quads[0])
	if !ok {
		return nil, errors.New("rod driver: malformed quad")
	}
	return box, nil
}

func (d *Driver) borderBox(ctx context.Context, target humanoid.Target) (*humanoid.Box, error) {
	el, cancel, err := d.element(ctx, target)
	if err != nil {
		return nil, err
	}
	defer cancel()

	res, err := proto.DOMGetBoxModel{ObjectID: el.Object.ObjectID}.Call(el)
	if err != nil {
		return nil, fmt.Errorf("rod driver: box model: %w", err)
	}
	if res.Model == nil {
		return nil, nil
	}
	box, ok := humanoid.BoxFromQuad(res.Model.Border)
	if !ok {
		return nil, errors.New("rod driver: malformed border quad")
	}
	return box, nil
}

// ScrollIntoView uses DOM.scrollIntoViewIfNeeded, then a smooth JS scroll.
func (d *Driver) ScrollIntoView(ctx context.Context, target humanoid.Target) error {
	return humanoid.ScrollWithFallback(ctx, target, d.nativeScroll, d.scriptScroll)
}

func (d *Driver) nativeScroll(ctx context.Context, target humanoid.Target) error {
	el, cancel, err := d.element(ctx, target)
	if err != nil {
		return err
	}
	defer cancel()
	return el.ScrollIntoView()
}

func (d *Driver) scriptScroll(ctx context.Context, target humanoid.Target) error {
	el, cancel, err := d.element(ctx, target)
	if err != nil {
		return err
	}
	defer cancel()
	_, err = el.Eval(`() => this.scrollIntoView({ behavior: 'smooth', block: 'center', inline: 'center' })`)
	return err
}

// ViewportSize reads the CSS visual viewport, falling back to the window's
// inner size.
func (d *Driver) ViewportSize(ctx context.Context) (float64, float64, error) {
	page, cancel := d.scoped(ctx)
	defer cancel()

	metrics, err := proto.PageGetLayoutMetrics{}.Call(page)
	if err == nil && metrics.CSSVisualViewport != nil &&
		metrics.CSSVisualViewport.ClientWidth > 0 && metrics.CSSVisualViewport.ClientHeight > 0 {
		return metrics.CSSVisualViewport.ClientWidth, metrics.CSSVisualViewport.ClientHeight, nil
	}
	if ctx.Err() != nil {
		return 0, 0, ctx.Err()
	}
	d.logger.Debug("Layout metrics unavailable, falling back to window size.", zap.Error(err))

	res, evalErr := page.Eval(`() => ({ width: window.innerWidth, height: window.innerHeight })`)
	if evalErr != nil {
		return 0, 0, fmt.Errorf("rod driver: viewport size unavailable: %w", errors.Join(err, evalErr))
	}
	return res.Value.Get("width").Num(), res.Value.Get("height").Num(), nil
}

// IsConnected reports whether the page's context is still alive.
func (d *Driver) IsConnected() bool {
	return d.page.GetContext().Err() == nil
}

// Sleep waits for dur or until ctx or the page is done.
func (d *Driver) Sleep(ctx context.Context, dur time.Duration) error {
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.page.GetContext().Done():
		return fmt.Errorf("rod driver: page closed: %w", humanoid.ErrDriverDisconnected)
	}
}
