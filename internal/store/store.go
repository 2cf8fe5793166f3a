package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghostcursor/internal/humanoid"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists traced trajectories to PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

var _ humanoid.Recorder = (*Store)(nil)

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS trajectories (
    id UUID PRIMARY KEY,
    session_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    start_x DOUBLE PRECISION NOT NULL,
    start_y DOUBLE PRECISION NOT NULL,
    dest_x DOUBLE PRECISION NOT NULL,
    dest_y DOUBLE PRECISION NOT NULL,
    points JSONB NOT NULL,
    overshoot BOOLEAN NOT NULL DEFAULT FALSE,
    aborted BOOLEAN NOT NULL DEFAULT FALSE,
    started_at TIMESTAMPTZ NOT NULL,
    duration_ms BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS trajectories_session_started_idx ON trajectories (session_id, started_at DESC);
`

// EnsureSchema creates the trajectories table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

const insertTrajectorySQL = `
INSERT INTO trajectories (id, session_id, kind, start_x, start_y, dest_x, dest_y, points, overshoot, aborted, started_at, duration_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO NOTHING;
`

var trajectoryColumns = []string{
	"id", "session_id", "kind", "start_x", "start_y", "dest_x", "dest_y",
	"points", "overshoot", "aborted", "started_at", "duration_ms",
}

// RecordTrajectory stores a single trajectory. It implements humanoid.Recorder.
func (s *Store) RecordTrajectory(ctx context.Context, t humanoid.Trajectory) error {
	row, err := trajectoryRow(t)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, insertTrajectorySQL, row...); err != nil {
		return fmt.Errorf("failed to insert trajectory %s: %w", t.ID, err)
	}
	s.log.Debug("Recorded trajectory",
		zap.String("id", t.ID),
		zap.String("kind", string(t.Kind)),
		zap.Int("points", len(t.Points)))
	return nil
}

// RecordTrajectories stores a batch in one transaction using COPY.
func (s *Store) RecordTrajectories(ctx context.Context, trajectories []humanoid.Trajectory) error {
	if len(trajectories) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(trajectories))
	for i, t := range trajectories {
		row, err := trajectoryRow(t)
		if err != nil {
			return err
		}
		rows[i] = row
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback after a successful commit reports ErrTxClosed.
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	copyCount, err := tx.CopyFrom(ctx, pgx.Identifier{"trajectories"}, trajectoryColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy trajectories: %w", err)
	}
	if int(copyCount) != len(trajectories) {
		return fmt.Errorf("mismatch in copied trajectories count: expected %d, got %d", len(trajectories), copyCount)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// trajectoryRow flattens t into column order. Timestamps are stored in UTC.
func trajectoryRow(t humanoid.Trajectory) ([]interface{}, error) {
	points := t.Points
	if points == nil {
		points = []humanoid.Vector2D{}
	}
	encoded, err := jsonAPI.Marshal(points)
	if err != nil {
		return nil, fmt.Errorf("failed to encode points for trajectory %s: %w", t.ID, err)
	}
	return []interface{}{
		t.ID, t.SessionID, string(t.Kind),
		t.Start.X, t.Start.Y,
		t.Destination.X, t.Destination.Y,
		encoded,
		t.Overshoot, t.Aborted,
		t.StartedAt.UTC(),
		t.Duration.Milliseconds(),
	}, nil
}

// RecentTrajectories returns up to limit trajectories, newest first. An empty
// sessionID matches every session.
func (s *Store) RecentTrajectories(ctx context.Context, sessionID string, limit int) ([]humanoid.Trajectory, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
        SELECT id, session_id, kind, start_x, start_y, dest_x, dest_y, points, overshoot, aborted, started_at, duration_ms
        FROM trajectories
        WHERE ($1 = '' OR session_id = $1)
        ORDER BY started_at DESC
        LIMIT $2;
    `
	rows, err := s.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trajectories: %w", err)
	}
	defer rows.Close()

	var trajectories []humanoid.Trajectory
	for rows.Next() {
		var (
			t          humanoid.Trajectory
			kind       string
			points     []byte
			durationMs int64
		)
		err := rows.Scan(
			&t.ID, &t.SessionID, &kind,
			&t.Start.X, &t.Start.Y,
			&t.Destination.X, &t.Destination.Y,
			&points,
			&t.Overshoot, &t.Aborted,
			&t.StartedAt, &durationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trajectory row: %w", err)
		}
		if err := jsonAPI.Unmarshal(points, &t.Points); err != nil {
			return nil, fmt.Errorf("failed to decode points for trajectory %s: %w", t.ID, err)
		}
		t.Kind = humanoid.TrajectoryKind(kind)
		t.Duration = time.Duration(durationMs) * time.Millisecond
		trajectories = append(trajectories, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return trajectories, nil
}
