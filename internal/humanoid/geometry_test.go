// FILE: ./internal/humanoid/geometry_test.go
package humanoid

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBox(t *testing.T) {
	ctx := context.Background()
	want := &Box{X: 1, Y: 2, Width: 3, Height: 4}

	precise := func(ctx context.Context, target Target) (*Box, error) {
		return nil, errors.New("no content quads")
	}
	coarse := func(ctx context.Context, target Target) (*Box, error) {
		return want, nil
	}
	empty := func(ctx context.Context, target Target) (*Box, error) {
		return nil, nil
	}

	t.Run("FallsBack", func(t *testing.T) {
		box, err := ResolveBox(ctx, "#a", precise, coarse)
		require.NoError(t, err)
		assert.Equal(t, want, box)
	})

	t.Run("FirstWins", func(t *testing.T) {
		calls := 0
		second := func(ctx context.Context, target Target) (*Box, error) {
			calls++
			return nil, nil
		}
		box, err := ResolveBox(ctx, "#a", coarse, second)
		require.NoError(t, err)
		assert.Equal(t, want, box)
		assert.Zero(t, calls)
	})

	t.Run("AllFail", func(t *testing.T) {
		_, err := ResolveBox(ctx, "#a", precise, empty)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrGeometryUnavailable)
		assert.Contains(t, err.Error(), "no content quads")
		assert.Contains(t, err.Error(), "#a")
	})

	t.Run("NoQueries", func(t *testing.T) {
		_, err := ResolveBox(ctx, "#a")
		assert.ErrorIs(t, err, ErrGeometryUnavailable)
	})

	t.Run("Cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := ResolveBox(cctx, "#a", precise, coarse)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestScrollWithFallback(t *testing.T) {
	ctx := context.Background()
	var order []string
	native := func(ctx context.Context, target Target) error {
		order = append(order, "native")
		return errors.New("not supported")
	}
	script := func(ctx context.Context, target Target) error {
		order = append(order, "script")
		return nil
	}
	broken := func(ctx context.Context, target Target) error {
		return errors.New("script failed")
	}

	require.NoError(t, ScrollWithFallback(ctx, "#a", native, script))
	assert.Equal(t, []string{"native", "script"}, order)

	err := ScrollWithFallback(ctx, "#a", native, broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
	assert.Contains(t, err.Error(), "script failed")

	assert.NoError(t, ScrollWithFallback(ctx, "#a"))
}

func TestBoxFromQuad(t *testing.T) {
	box, ok := BoxFromQuad([]float64{100, 100, 150, 100, 150, 150, 100, 150})
	require.True(t, ok)
	assert.Equal(t, &Box{X: 100, Y: 100, Width: 50, Height: 50}, box)

	_, ok = BoxFromQuad([]float64{1, 2, 3})
	assert.False(t, ok)
}
