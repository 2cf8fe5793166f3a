// FILE: ./internal/humanoid/clickmodel_test.go
package humanoid

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestClick_HoldDuration(t *testing.T) {
	driver := newMockDriver(t)
	driver.box = &Box{X: 100, Y: 100, Width: 40, Height: 20}
	c := newTestCursor(t, driver, Vector2D{})

	opts := &MoveOptions{HoldDurationMs: Int(50), PostMoveDelayRangeMs: Int(0)}
	require.NoError(t, c.Click(context.Background(), "#button", opts))

	events := driver.getEvents()
	assert.Equal(t, 1, countEvents(events, "down"))
	assert.Equal(t, 1, countEvents(events, "up"))

	// The hold sleep sits between down and up.
	var downAt, upAt int
	for i, e := range events {
		switch e {
		case "down":
			downAt = i
		case "up":
			upAt = i
		}
	}
	require.Equal(t, downAt+2, upAt)
	assert.Equal(t, "sleep", events[downAt+1])

	sleeps := driver.getSleeps()
	require.NotEmpty(t, sleeps)
	assert.GreaterOrEqual(t, sleeps[0], 50*time.Millisecond)

	assert.True(t, driver.box.Contains(c.Position()))
	assert.False(t, c.Moving())
}

func TestClick_NoTargetClicksInPlace(t *testing.T) {
	driver := newMockDriver(t)
	c := newTestCursor(t, driver, Vector2D{X: 5, Y: 5})

	require.NoError(t, c.Click(context.Background(), "", &MoveOptions{PostMoveDelayRangeMs: Int(0)}))

	events := driver.getEvents()
	assert.Equal(t, []string{"down", "up"}, events)
	assert.Equal(t, Vector2D{X: 5, Y: 5}, c.Position())
}

func TestClick_DefaultPostDelay(t *testing.T) {
	driver := newMockDriver(t)
	c := newTestCursor(t, driver, Vector2D{}, WithRand(&sequenceRand{values: []float64{0.25}}))

	require.NoError(t, c.Click(context.Background(), "", nil))

	sleeps := driver.getSleeps()
	require.Len(t, sleeps, 1)
	assert.Equal(t, 500*time.Millisecond, sleeps[0])
}

func TestClick_ButtonFailuresSwallowed(t *testing.T) {
	driver := newMockDriver(t)
	driver.downErr = errors.New("input domain busy")

	core, logs := observer.New(zapcore.WarnLevel)
	c := newTestCursor(t, driver, Vector2D{}, WithLogger(zap.New(core)))

	err := c.Click(context.Background(), "", &MoveOptions{PostMoveDelayRangeMs: Int(0)})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("Could not press mouse button").Len())
	assert.Zero(t, countEvents(driver.getEvents(), "up"), "no release without a press")
	assert.False(t, c.Moving(), "flag must be released on failure")
}

func TestClick_DisconnectReported(t *testing.T) {
	driver := newMockDriver(t)
	driver.upErr = errors.New("target closed")
	driver.connected.Store(false)
	c := newTestCursor(t, driver, Vector2D{})

	err := c.Click(context.Background(), "", &MoveOptions{PostMoveDelayRangeMs: Int(0)})
	assert.ErrorIs(t, err, ErrDriverDisconnected)
	assert.False(t, c.Moving())
}

func TestClick_GeometryFailureReleasesFlag(t *testing.T) {
	driver := newMockDriver(t)
	c := newTestCursor(t, driver, Vector2D{})

	err := c.Click(context.Background(), "#missing", nil)
	assert.ErrorIs(t, err, ErrGeometryUnavailable)
	assert.Zero(t, countEvents(driver.getEvents(), "down"))
	assert.False(t, c.Moving())
}

func TestClick_CanceledHoldStillReleases(t *testing.T) {
	driver := newMockDriver(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	driver.MockSleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}
	c := newTestCursor(t, driver, Vector2D{})

	err := c.Click(ctx, "", &MoveOptions{HoldDurationMs: Int(500), PostMoveDelayRangeMs: Int(0)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"down", "up"}, driver.getEvents(), "button must not stay pressed")
	assert.False(t, c.Moving())
}
