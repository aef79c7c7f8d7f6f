package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"dev.helix.consensus/internal/consensus"
)

// PostgresStore persists deliberation history in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

// NewPostgresStore creates a PostgreSQL-backed history store.
func NewPostgresStore(pool *pgxpool.Pool, log *logrus.Logger) *PostgresStore {
	if log == nil {
		log = logrus.New()
	}
	return &PostgresStore{pool: pool, log: log}
}

// CreateTable creates the deliberations table if it doesn't exist.
func (s *PostgresStore) CreateTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS deliberations (
			id UUID PRIMARY KEY,
			task_id TEXT NOT NULL,
			strategy VARCHAR(64) NOT NULL,
			voting_method VARCHAR(64) NOT NULL,
			consensus_level VARCHAR(64),
			confidence DECIMAL(5,4),
			conflict_count INTEGER NOT NULL DEFAULT 0,
			payload JSONB NOT NULL,
			started_at TIMESTAMP WITH TIME ZONE NOT NULL,
			ended_at TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_deliberations_task_id
			ON deliberations(task_id);
		CREATE INDEX IF NOT EXISTS idx_deliberations_strategy
			ON deliberations(strategy);
		CREATE INDEX IF NOT EXISTS idx_deliberations_started_at
			ON deliberations(started_at);
	`

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create deliberations table: %w", err)
	}

	s.log.Info("Deliberations table created/verified")
	return nil
}

// Append records a completed deliberation.
func (s *PostgresStore) Append(ctx context.Context, delib *consensus.Deliberation) error {
	payload, err := json.Marshal(delib)
	if err != nil {
		return fmt.Errorf("failed to marshal deliberation: %w", err)
	}

	level := ""
	confidence := 0.0
	if delib.FinalInsight != nil {
		level = string(delib.FinalInsight.ConsensusLevel)
		confidence = delib.FinalInsight.ConfidenceScore
	}

	query := `
		INSERT INTO deliberations (
			id, task_id, strategy, voting_method, consensus_level,
			confidence, conflict_count, payload, started_at, ended_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	taskID := ""
	if delib.Task != nil {
		taskID = delib.Task.ID
	}

	if _, err := s.pool.Exec(ctx, query,
		delib.ID, taskID, string(delib.Strategy), string(delib.VotingMethod), level,
		confidence, len(delib.ConflictLog), payload, delib.StartedAt, delib.EndedAt,
	); err != nil {
		return fmt.Errorf("failed to insert deliberation: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"id":       delib.ID,
		"task_id":  taskID,
		"strategy": delib.Strategy,
	}).Debug("Deliberation recorded")

	return nil
}

// Recent returns up to limit deliberations, most recent first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]*consensus.Deliberation, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT payload FROM deliberations
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliberations: %w", err)
	}
	defer rows.Close()

	deliberations := make([]*consensus.Deliberation, 0, limit)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan deliberation: %w", err)
		}
		var delib consensus.Deliberation
		if err := json.Unmarshal(payload, &delib); err != nil {
			return nil, fmt.Errorf("failed to unmarshal deliberation: %w", err)
		}
		deliberations = append(deliberations, &delib)
	}
	return deliberations, rows.Err()
}

// Count returns the total number of recorded deliberations.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM deliberations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count deliberations: %w", err)
	}
	return count, nil
}
