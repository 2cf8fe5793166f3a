// internal/browser/chromedp.go
package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghostcursor/internal/browser/session"
	"github.com/xkilldash9x/ghostcursor/internal/config"
	"github.com/xkilldash9x/ghostcursor/internal/humanoid"
)

// AllocatorOptions builds the exec allocator options for cfg.
func AllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	// Start with chromedp defaults
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		// Sandboxing fails on hardened container hosts.
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	// DefaultExecAllocatorOptions is headless already.
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.DisableGPU {
		opts = append(opts, chromedp.DisableGPU)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	w, h := viewport(cfg)
	opts = append(opts, chromedp.WindowSize(w, h))

	// Add additional flags from the config file's 'args' slice.
	for key, value := range parseArgs(cfg.Args) {
		if value == "" {
			opts = append(opts, chromedp.Flag(key, true))
			continue
		}
		opts = append(opts, chromedp.Flag(key, value))
	}
	return opts
}

type chromedpSession struct {
	cfg         config.BrowserConfig
	logger      *zap.Logger
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	driver      *session.Driver
}

func launchChromedp(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*chromedpSession, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, AllocatorOptions(cfg)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Sugar().Debugf))

	w, h := viewport(cfg)
	// The first Run starts the browser process.
	if err := chromedp.Run(tabCtx, chromedp.EmulateViewport(int64(w), int64(h))); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start chromedp browser: %w", err)
	}
	logger.Info("Browser launched.", zap.String("engine", config.EngineChromedp), zap.Bool("headless", cfg.Headless))

	return &chromedpSession{
		cfg:         cfg,
		logger:      logger,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		driver:      session.NewDriver(tabCtx, session.WithLogger(logger)),
	}, nil
}

func (s *chromedpSession) Driver() humanoid.Driver { return s.driver }

func (s *chromedpSession) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := session.CombineContext(s.tabCtx, ctx)
	defer cancel()
	navCtx, timeoutCancel := context.WithTimeout(navCtx, s.cfg.Timeout)
	defer timeoutCancel()

	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	s.logger.Debug("Navigated.", zap.String("url", url))
	return nil
}

func (s *chromedpSession) Close() error {
	// Cancel closes the tab and the browser gracefully.
	err := chromedp.Cancel(s.tabCtx)
	s.tabCancel()
	s.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close chromedp browser: %w", err)
	}
	return nil
}
