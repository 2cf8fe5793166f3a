// internal/browser/rod.go
package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghostcursor/internal/browser/rodsession"
	"github.com/xkilldash9x/ghostcursor/internal/config"
	"github.com/xkilldash9x/ghostcursor/internal/humanoid"
)

// NewLauncher configures a rod launcher for cfg without starting it.
func NewLauncher(ctx context.Context, cfg config.BrowserConfig) *launcher.Launcher {
	l := launcher.New().Context(ctx).
		Headless(cfg.Headless).
		NoSandbox(true).
		Set("disable-dev-shm-usage")

	if cfg.DisableGPU {
		l = l.Set("disable-gpu")
	}
	if cfg.ExecPath != "" {
		l = l.Bin(cfg.ExecPath)
	}

	w, h := viewport(cfg)
	l = l.Set("window-size", fmt.Sprintf("%d,%d", w, h))

	for key, value := range parseArgs(cfg.Args) {
		if value == "" {
			l = l.Set(flags.Flag(key))
			continue
		}
		l = l.Set(flags.Flag(key), value)
	}
	return l
}

type rodSession struct {
	cfg      config.BrowserConfig
	logger   *zap.Logger
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	driver   *rodsession.Driver
}

func launchRod(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*rodSession, error) {
	l := NewLauncher(ctx, cfg)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Cleanup()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	w, h := viewport(cfg)
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{Width: w, Height: h, DeviceScaleFactor: 1}); err != nil {
		logger.Warn("Failed to set viewport, keeping the window size.", zap.Error(err))
	}
	logger.Info("Browser launched.", zap.String("engine", config.EngineRod), zap.Bool("headless", cfg.Headless))

	return &rodSession{
		cfg:      cfg,
		logger:   logger,
		launcher: l,
		browser:  browser,
		page:     page,
		driver:   rodsession.New(page, logger),
	}, nil
}

func (s *rodSession) Driver() humanoid.Driver { return s.driver }

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	page := s.page.Context(navCtx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for %s: %w", url, err)
	}
	s.logger.Debug("Navigated.", zap.String("url", url))
	return nil
}

func (s *rodSession) Close() error {
	err := s.browser.Close()
	s.launcher.Cleanup()
	if err != nil {
		return fmt.Errorf("failed to close rod browser: %w", err)
	}
	return nil
}
