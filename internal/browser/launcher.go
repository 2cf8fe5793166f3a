// internal/browser/launcher.go
package browser

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ghostcursor/internal/config"
	"github.com/xkilldash9x/ghostcursor/internal/humanoid"
)

// Session is a launched browser with one page the cursor drives.
type Session interface {
	// Driver returns the cursor driver bound to the page.
	Driver() humanoid.Driver
	// Navigate loads url and waits for the page to load.
	Navigate(ctx context.Context, url string) error
	// Close shuts the browser down.
	Close() error
}

// Launch starts the engine named by cfg.Engine.
func Launch(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("browser")

	var (
		sess Session
		err  error
	)
	switch cfg.Engine {
	case config.EngineChromedp, "":
		sess, err = launchChromedp(ctx, cfg, logger)
	case config.EngineRod:
		sess, err = launchRod(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported browser engine %q", cfg.Engine)
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// viewport returns the configured window size, falling back to 1280x720.
func viewport(cfg config.BrowserConfig) (int, int) {
	w, h := cfg.Viewport["width"], cfg.Viewport["height"]
	if w <= 0 {
		w = 1280
	}
	if h <= 0 {
		h = 720
	}
	return w, h
}

// parseArgs turns command line style browser args into a flag map. Leading
// dashes are dropped and a bare flag maps to the empty string.
func parseArgs(args []string) map[string]string {
	flags := make(map[string]string, len(args))
	for _, arg := range args {
		arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
		if arg == "" {
			continue
		}
		key, value, _ := strings.Cut(arg, "=")
		flags[key] = value
	}
	return flags
}
