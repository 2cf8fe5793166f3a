// File: cmd/history.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghostcursor/internal/config"
	"github.com/xkilldash9x/ghostcursor/internal/humanoid"
	"github.com/xkilldash9x/ghostcursor/internal/observability"
	"github.com/xkilldash9x/ghostcursor/internal/store"
)

// trajectoryStore is the subset of store.Store the commands use.
type trajectoryStore interface {
	humanoid.Recorder
	RecordTrajectories(ctx context.Context, trajectories []humanoid.Trajectory) error
	RecentTrajectories(ctx context.Context, sessionID string, limit int) ([]humanoid.Trajectory, error)
}

// storeProvider creates a trajectory store and a cleanup function. Tests
// inject a mock in place of a live database.
type storeProvider interface {
	Create(ctx context.Context, cfg config.Interface) (trajectoryStore, func(), error)
}

// defaultStoreProvider connects to PostgreSQL.
type defaultStoreProvider struct{}

// NewStoreProvider returns the production store provider.
func NewStoreProvider() storeProvider {
	return &defaultStoreProvider{}
}

// Create connects to the database, ensures the schema exists and returns
// the store with a cleanup that closes the pool.
func (p *defaultStoreProvider) Create(ctx context.Context, cfg config.Interface) (trajectoryStore, func(), error) {
	logger := observability.GetLogger()
	if cfg.Database().URL == "" {
		return nil, nil, fmt.Errorf("database URL is not configured (GHOSTCURSOR_DATABASE_URL)")
	}

	pool, err := pgxpool.New(ctx, cfg.Database().URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	st, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to initialize store service: %w", err)
	}
	if err := st.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		logger.Debug("Database connection pool closed.")
	}
	return st, cleanup, nil
}

func newHistoryCmd(provider storeProvider) *cobra.Command {
	var (
		sessionID string
		limit     int
	)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded trajectories, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			return runHistory(ctx, observability.GetLogger(), cfg, cmd.OutOrStdout(), sessionID, limit, provider)
		},
	}

	historyCmd.Flags().StringVar(&sessionID, "session", "", "only list this session (default: all sessions)")
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of trajectories")

	return historyCmd
}

// runHistory contains the core, testable logic for the history command.
func runHistory(
	ctx context.Context,
	logger *zap.Logger,
	cfg config.Interface,
	out io.Writer,
	sessionID string,
	limit int,
	provider storeProvider,
) error {
	st, cleanup, err := provider.Create(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	trajectories, err := st.RecentTrajectories(ctx, sessionID, limit)
	if err != nil {
		return err
	}
	logger.Debug("Loaded trajectories", zap.Int("count", len(trajectories)), zap.String("session", sessionID))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSESSION\tKIND\tFROM\tTO\tPOINTS\tDURATION\tFLAGS")
	for _, t := range trajectories {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f,%.0f\t%.0f,%.0f\t%d\t%s\t%s\n",
			t.StartedAt.Local().Format(time.DateTime),
			t.SessionID, t.Kind,
			t.Start.X, t.Start.Y,
			t.Destination.X, t.Destination.Y,
			len(t.Points), t.Duration,
			trajectoryFlags(t))
	}
	return tw.Flush()
}

func trajectoryFlags(t humanoid.Trajectory) string {
	switch {
	case t.Overshoot && t.Aborted:
		return "overshoot,aborted"
	case t.Overshoot:
		return "overshoot"
	case t.Aborted:
		return "aborted"
	}
	return "-"
}
