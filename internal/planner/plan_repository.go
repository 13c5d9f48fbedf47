package planner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// StateRepository is a database-backed BlobStore for planner state.
type StateRepository struct {
	db *sql.DB
}

// NewStateRepository creates a new StateRepository.
func NewStateRepository(d *sql.DB) *StateRepository {
	return &StateRepository{db: d}
}

// Get returns the blob stored under (kind, key), or nil if there is none.
func (r *StateRepository) Get(ctx context.Context, kind, key string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM plan_state WHERE kind = ? AND state_key = ?`, kind, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query plan state: %w", err)
	}
	return data, nil
}

// Put upserts the blob under (kind, key).
func (r *StateRepository) Put(ctx context.Context, kind, key string, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO plan_state (kind, state_key, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (kind, state_key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		kind, key, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save plan state: %w", err)
	}
	return nil
}

// Keys lists the keys stored for kind, most recently updated first.
func (r *StateRepository) Keys(ctx context.Context, kind string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT state_key FROM plan_state WHERE kind = ? ORDER BY updated_at DESC`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan state keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan plan state key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
