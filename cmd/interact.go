// File: cmd/interact.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghostcursor/internal/browser"
	"github.com/xkilldash9x/ghostcursor/internal/config"
	"github.com/xkilldash9x/ghostcursor/internal/humanoid"
	"github.com/xkilldash9x/ghostcursor/internal/observability"
)

// launchFunc starts a browser session. browser.Launch in production.
type launchFunc func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (browser.Session, error)

// interaction is what a move or click does once the page is loaded.
type interaction func(ctx context.Context, cursor *humanoid.Cursor, target humanoid.Target, opts *humanoid.MoveOptions) error

func newMoveCmd(launch launchFunc, provider storeProvider) *cobra.Command {
	var padding int

	moveCmd := &cobra.Command{
		Use:   "move <url> <selector>",
		Short: "Open a page and move the cursor onto an element",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("padding") {
				cfg.CursorCfg.PaddingPercentage = padding
			}
			move := func(ctx context.Context, c *humanoid.Cursor, target humanoid.Target, opts *humanoid.MoveOptions) error {
				return c.Move(ctx, target, opts)
			}
			return runInteraction(ctx, observability.GetLogger(), cfg, args[0], humanoid.Target(args[1]), launch, provider, move)
		},
	}
	moveCmd.Flags().IntVar(&padding, "padding", 0, "shrink the target box by this percentage before picking a point")
	return moveCmd
}

func newClickCmd(launch launchFunc, provider storeProvider) *cobra.Command {
	var hold, padding int

	clickCmd := &cobra.Command{
		Use:   "click <url> <selector>",
		Short: "Open a page, move onto an element and click it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("hold") {
				cfg.SetCursorHoldDurationMs(hold)
			}
			if cmd.Flags().Changed("padding") {
				cfg.CursorCfg.PaddingPercentage = padding
			}
			click := func(ctx context.Context, c *humanoid.Cursor, target humanoid.Target, opts *humanoid.MoveOptions) error {
				return c.Click(ctx, target, opts)
			}
			return runInteraction(ctx, observability.GetLogger(), cfg, args[0], humanoid.Target(args[1]), launch, provider, click)
		},
	}
	clickCmd.Flags().IntVar(&hold, "hold", 0, "hold the button down for this many milliseconds")
	clickCmd.Flags().IntVar(&padding, "padding", 0, "shrink the target box by this percentage before picking a point")
	return clickCmd
}

// runInteraction launches the configured engine, loads url and performs act
// on target with a cursor built from the config.
func runInteraction(
	ctx context.Context,
	logger *zap.Logger,
	cfg config.Interface,
	url string,
	target humanoid.Target,
	launch launchFunc,
	provider storeProvider,
	act interaction,
) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Browser().Timeout)
	defer cancel()

	sess, err := launch(ctx, cfg.Browser(), logger)
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn("Failed to close browser session", zap.Error(err))
		}
	}()

	if err := sess.Navigate(ctx, url); err != nil {
		return err
	}

	cursorOpts := append(cfg.Cursor().CursorOptions(), humanoid.WithLogger(logger))
	if cfg.Database().Record {
		st, cleanup, err := provider.Create(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}
		if cleanup != nil {
			defer cleanup()
		}
		cursorOpts = append(cursorOpts, humanoid.WithRecorder(st))
	}

	cursor := humanoid.New(sess.Driver(), humanoid.Origin, cursorOpts...)
	// Close before the session so the wanderer stops using the driver first.
	defer cursor.Close()

	if err := act(ctx, cursor, target, cfg.Cursor().MoveOptions()); err != nil {
		return fmt.Errorf("%s on %s failed: %w", target, url, err)
	}

	pos := cursor.Position()
	logger.Info("Interaction complete",
		zap.String("url", url),
		zap.String("target", target.String()),
		zap.Float64("x", pos.X),
		zap.Float64("y", pos.Y),
		zap.String("session", cursor.SessionID()))
	return nil
}
