package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/martin/tailorproof/internal/types"
)

// SaveTrace stores the trace for a run, replacing any earlier one.
func (s *Store) SaveTrace(ctx context.Context, runID uuid.UUID, tr *types.Trace) error {
	content, err := json.Marshal(tr)
	if err != nil {
		return fmt.Errorf("failed to marshal trace: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO traces (run_id, content)
		 VALUES ($1, $2)
		 ON CONFLICT (run_id) DO UPDATE SET content = $2, created_at = now()`,
		runID, content,
	)
	if err != nil {
		return fmt.Errorf("failed to save trace: %w", err)
	}
	return nil
}

// GetTrace retrieves the trace for a run. Returns nil when no trace exists.
func (s *Store) GetTrace(ctx context.Context, runID uuid.UUID) (*types.Trace, error) {
	var content []byte
	err := s.pool.QueryRow(ctx,
		`SELECT content FROM traces WHERE run_id = $1`,
		runID,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trace: %w", err)
	}

	var tr types.Trace
	if err := json.Unmarshal(content, &tr); err != nil {
		return nil, fmt.Errorf("failed to decode trace: %w", err)
	}
	return &tr, nil
}
