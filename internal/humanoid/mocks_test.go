// FILE: ./internal/humanoid/mocks_test.go
package humanoid

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// mockDriver implements Driver for testing. It records every call so tests
// can assert on the exact event stream.
type mockDriver struct {
	t  *testing.T
	mu sync.Mutex

	moves          []Vector2D
	events         []string
	sleepDurations []time.Duration

	box      *Box
	boxErr   error
	viewport Vector2D

	// moveErr is returned from MoveMouse once moveCalls reaches failOnMove
	// (every call when failOnMove is 0).
	moveErr    error
	failOnMove int
	moveCalls  int
	downErr    error
	upErr      error
	scrollErr  error

	connected atomic.Bool

	// Function overrides for specific behaviors. Overrides must not call
	// back into the Cursor.
	MockMoveMouse func(ctx context.Context, x, y float64) error
	MockSleep     func(ctx context.Context, d time.Duration) error
}

func newMockDriver(t *testing.T) *mockDriver {
	m := &mockDriver{
		t:        t,
		viewport: Vector2D{X: 1280, Y: 720},
	}
	m.connected.Store(true)
	return m
}

func (m *mockDriver) MoveMouse(ctx context.Context, x, y float64) error {
	if m.MockMoveMouse != nil {
		if err := m.MockMoveMouse(ctx, x, y); err != nil {
			return err
		}
	}
	return m.DefaultMoveMouse(ctx, x, y)
}

// DefaultMoveMouse is the standard mock behavior, callable from overrides.
func (m *mockDriver) DefaultMoveMouse(ctx context.Context, x, y float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moveCalls++
	if m.moveErr != nil && (m.failOnMove == 0 || m.moveCalls == m.failOnMove) {
		return m.moveErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.moves = append(m.moves, Vector2D{X: x, Y: y})
	m.events = append(m.events, "move")
	return nil
}

func (m *mockDriver) MouseDown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, "down")
	return m.downErr
}

func (m *mockDriver) MouseUp(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.events = append(m.events, "up")
	return m.upErr
}

func (m *mockDriver) ElementBox(ctx context.Context, target Target) (*Box, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, "box")
	if m.boxErr != nil {
		return nil, m.boxErr
	}
	if m.box == nil {
		return nil, nil
	}
	b := *m.box
	return &b, nil
}

func (m *mockDriver) ScrollIntoView(ctx context.Context, target Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, "scroll")
	return m.scrollErr
}

func (m *mockDriver) ViewportSize(ctx context.Context) (float64, float64, error) {
	if !m.connected.Load() {
		return 0, 0, errors.New("target closed")
	}
	return m.viewport.X, m.viewport.Y, nil
}

func (m *mockDriver) IsConnected() bool { return m.connected.Load() }

func (m *mockDriver) Sleep(ctx context.Context, d time.Duration) error {
	if m.MockSleep != nil {
		return m.MockSleep(ctx, d)
	}
	return m.DefaultSleep(ctx, d)
}

// DefaultSleep records d and yields briefly so background loops do not spin.
func (m *mockDriver) DefaultSleep(ctx context.Context, d time.Duration) error {
	m.mu.Lock()
	m.sleepDurations = append(m.sleepDurations, d)
	m.events = append(m.events, "sleep")
	m.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Millisecond):
		return nil
	}
}

func (m *mockDriver) getMoves() []Vector2D {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Vector2D, len(m.moves))
	copy(out, m.moves)
	return out
}

func (m *mockDriver) getEvents() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	copy(out, m.events)
	return out
}

func (m *mockDriver) getSleeps() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.sleepDurations))
	copy(out, m.sleepDurations)
	return out
}

// countEvents counts occurrences of name in the recorded event stream.
func countEvents(events []string, name string) int {
	n := 0
	for _, e := range events {
		if e == name {
			n++
		}
	}
	return n
}

// newTestCursor creates a deterministic cursor without wandering.
func newTestCursor(t *testing.T, driver Driver, start Vector2D, opts ...Option) *Cursor {
	t.Helper()
	opts = append([]Option{WithSeed(12345)}, opts...)
	c := New(driver, start, opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// sequenceRand replays fixed values, cycling when exhausted.
type sequenceRand struct {
	values []float64
	i      int
}

func (s *sequenceRand) Float64() float64 {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}
