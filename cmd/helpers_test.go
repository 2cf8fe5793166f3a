// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghostcursor/internal/browser"
	"github.com/xkilldash9x/ghostcursor/internal/config"
	"github.com/xkilldash9x/ghostcursor/internal/humanoid"
	"github.com/xkilldash9x/ghostcursor/internal/observability"
)

// executeCommand runs a fresh root command in an empty working directory
// with HOME pointed at it, so no real config file is picked up.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCommandIn(t, t.TempDir(), args...)
}

// executeCommandIn runs a fresh root command with dir as both the working
// directory and HOME.
func executeCommandIn(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	homedir.DisableCache = true

	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	rootCmd := NewRootCommand()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// createTempConfig writes content to a config file and returns its path.
func createTempConfig(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "ghostcursor-*.yaml")
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

// -- Store mocks --

type mockStore struct {
	mock.Mock
}

func (m *mockStore) RecordTrajectory(ctx context.Context, t humanoid.Trajectory) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockStore) RecordTrajectories(ctx context.Context, trajectories []humanoid.Trajectory) error {
	args := m.Called(ctx, trajectories)
	return args.Error(0)
}

func (m *mockStore) RecentTrajectories(ctx context.Context, sessionID string, limit int) ([]humanoid.Trajectory, error) {
	args := m.Called(ctx, sessionID, limit)
	trajectories, _ := args.Get(0).([]humanoid.Trajectory)
	return trajectories, args.Error(1)
}

type mockStoreProvider struct {
	mock.Mock
}

func (m *mockStoreProvider) Create(ctx context.Context, cfg config.Interface) (trajectoryStore, func(), error) {
	args := m.Called(ctx, cfg)
	st, _ := args.Get(0).(trajectoryStore)
	cleanup, _ := args.Get(1).(func())
	return st, cleanup, args.Error(2)
}

// -- Browser fakes --

// fakeDriver is an in-memory page with one element at box.
type fakeDriver struct {
	mu     sync.Mutex
	box    humanoid.Box
	moves  int
	events []string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{box: humanoid.Box{X: 200, Y: 150, Width: 80, Height: 40}}
}

func (d *fakeDriver) record(event string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *fakeDriver) count(event string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, e := range d.events {
		if e == event {
			n++
		}
	}
	return n
}

func (d *fakeDriver) MoveMouse(ctx context.Context, x, y float64) error {
	d.mu.Lock()
	d.moves++
	d.mu.Unlock()
	return ctx.Err()
}

func (d *fakeDriver) MouseDown(ctx context.Context) error { d.record("down"); return nil }
func (d *fakeDriver) MouseUp(ctx context.Context) error   { d.record("up"); return nil }

func (d *fakeDriver) ElementBox(ctx context.Context, target humanoid.Target) (*humanoid.Box, error) {
	if target != "#go" {
		return nil, humanoid.ErrGeometryUnavailable
	}
	b := d.box
	return &b, nil
}

func (d *fakeDriver) ScrollIntoView(ctx context.Context, target humanoid.Target) error { return nil }

func (d *fakeDriver) ViewportSize(ctx context.Context) (float64, float64, error) {
	return 1280, 720, nil
}

func (d *fakeDriver) IsConnected() bool { return true }

func (d *fakeDriver) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

type fakeSession struct {
	driver      *fakeDriver
	navigateErr error
	navigated   []string
	closed      bool
}

func (s *fakeSession) Driver() humanoid.Driver { return s.driver }

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	s.navigated = append(s.navigated, url)
	return s.navigateErr
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

// fakeLauncher returns sess, or err when set.
func fakeLauncher(sess *fakeSession, err error) launchFunc {
	return func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (browser.Session, error) {
		if err != nil {
			return nil, err
		}
		return sess, nil
	}
}

var errLaunch = errors.New("no browser")
