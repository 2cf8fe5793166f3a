package humanoid

import (
	"context"
	"errors"
	"fmt"
)

// BoxQuery is one strategy for resolving a target's geometry.
type BoxQuery func(ctx context.Context, target Target) (*Box, error)

// ResolveBox runs queries in order and returns the first usable box. When
// every query fails, the returned error wraps ErrGeometryUnavailable and the
// last failure.
func ResolveBox(ctx context.Context, target Target, queries ...BoxQuery) (*Box, error) {
	var lastErr error
	for _, query := range queries {
		box, err := query(ctx, target)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		if box != nil {
			return box, nil
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w for '%s': %w", ErrGeometryUnavailable, target, lastErr)
	}
	return nil, fmt.Errorf("%w for '%s'", ErrGeometryUnavailable, target)
}

// ScrollStrategy is one way of bringing a target into view.
type ScrollStrategy func(ctx context.Context, target Target) error

// ScrollWithFallback runs strategies in order until one succeeds.
func ScrollWithFallback(ctx context.Context, target Target, strategies ...ScrollStrategy) error {
	var errs []error
	for _, scroll := range strategies {
		err := scroll(ctx, target)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("humanoid: could not scroll '%s' into view: %w", target, errors.Join(errs...))
}

// BoxFromQuad converts an 8-value quad [x0 y0 x1 y1 x2 y2 x3 y3] into a box,
// using the first vertex as origin and the opposite vertex for size.
func BoxFromQuad(quad []float64) (*Box, bool) {
	if len(quad) < 8 {
		return nil, false
	}
	return &Box{
		X:      quad[0],
		Y:      quad[1],
		Width:  quad[4] - quad[0],
		Height: quad[5] - quad[1],
	}, true
}
