// File: cmd/trace.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/ghostcursor/internal/config"
	"github.com/xkilldash9x/ghostcursor/internal/humanoid"
	"github.com/xkilldash9x/ghostcursor/internal/observability"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// traceOptions holds the parsed flags of the trace command.
type traceOptions struct {
	From   humanoid.Vector2D
	To     humanoid.Box
	Count  int
	Seed   int64
	Spread float64
	Format string
}

func newTraceCmd(provider storeProvider) *cobra.Command {
	var (
		from, to      string
		width, height float64
		opts          traceOptions
	)

	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "Generate pointer paths without a browser",
		Long: `Generates one or more independent paths from --from into the box at --to
and prints them as JSON or YAML. Each path is seeded separately, so a fixed
--seed reproduces the whole batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}

			if opts.From, err = parsePoint(from); err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			dest, err := parsePoint(to)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}
			opts.To = humanoid.Box{X: dest.X, Y: dest.Y, Width: width, Height: height}
			if !cmd.Flags().Changed("seed") {
				opts.Seed = time.Now().UnixNano()
			}

			return runTrace(ctx, logger, cfg, cmd.OutOrStdout(), opts, provider)
		},
	}

	traceCmd.Flags().StringVar(&from, "from", "0,0", "start point as x,y")
	traceCmd.Flags().StringVar(&to, "to", "", "destination box origin as x,y (required)")
	_ = traceCmd.MarkFlagRequired("to")
	traceCmd.Flags().Float64Var(&width, "width", 100, "destination box width")
	traceCmd.Flags().Float64Var(&height, "height", 100, "destination box height")
	traceCmd.Flags().IntVarP(&opts.Count, "count", "n", 1, "number of paths to generate")
	traceCmd.Flags().Int64Var(&opts.Seed, "seed", 0, "base seed; path i uses seed+i (default: time based)")
	traceCmd.Flags().Float64Var(&opts.Spread, "spread", 0, "fixed curve spread (default: derived from distance)")
	traceCmd.Flags().StringVarP(&opts.Format, "format", "f", "json", "output format: json or yaml")

	return traceCmd
}

// runTrace contains the core, testable logic for the trace command.
func runTrace(
	ctx context.Context,
	logger *zap.Logger,
	cfg config.Interface,
	out io.Writer,
	opts traceOptions,
	provider storeProvider,
) error {
	if opts.Count < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", opts.Count)
	}
	if opts.Format != "json" && opts.Format != "yaml" {
		return fmt.Errorf("unsupported format %q", opts.Format)
	}

	trajectories, err := generateTrajectories(ctx, opts)
	if err != nil {
		return err
	}
	logger.Debug("Generated trajectories", zap.Int("count", len(trajectories)), zap.Int64("seed", opts.Seed))

	if cfg.Database().Record {
		if err := recordBatch(ctx, logger, cfg, provider, trajectories); err != nil {
			return err
		}
	}

	return writeTrajectories(out, opts.Format, trajectories)
}

// generateTrajectories builds opts.Count paths concurrently, each from its
// own seeded source.
func generateTrajectories(ctx context.Context, opts traceOptions) ([]humanoid.Trajectory, error) {
	var spread *float64
	if opts.Spread > 0 {
		spread = &opts.Spread
	}

	sessionID := uuid.NewString()
	startedAt := time.Now().UTC()
	trajectories := make([]humanoid.Trajectory, opts.Count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range trajectories {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := humanoid.NewRand(opts.Seed + int64(i))
			points := humanoid.Path(rng, opts.From, opts.To, spread)
			trajectories[i] = humanoid.Trajectory{
				ID:          uuid.NewString(),
				SessionID:   sessionID,
				Kind:        humanoid.KindTrace,
				Start:       opts.From,
				Destination: points[len(points)-1],
				Points:      points,
				StartedAt:   startedAt,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trajectories, nil
}

func recordBatch(ctx context.Context, logger *zap.Logger, cfg config.Interface, provider storeProvider, trajectories []humanoid.Trajectory) error {
	st, cleanup, err := provider.Create(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}
	if err := st.RecordTrajectories(ctx, trajectories); err != nil {
		return fmt.Errorf("failed to record trajectories: %w", err)
	}
	logger.Info("Recorded trajectories", zap.Int("count", len(trajectories)))
	return nil
}

func writeTrajectories(out io.Writer, format string, trajectories []humanoid.Trajectory) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(trajectories); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		data, err := jsonAPI.MarshalIndent(trajectories, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
}

// parsePoint parses "x,y".
func parsePoint(s string) (humanoid.Vector2D, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return humanoid.Vector2D{}, fmt.Errorf("expected x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return humanoid.Vector2D{}, fmt.Errorf("bad x in %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return humanoid.Vector2D{}, fmt.Errorf("bad y in %q: %w", s, err)
	}
	return humanoid.Vector2D{X: x, Y: y}, nil
}
