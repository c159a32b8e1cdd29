package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/finflow/internal/database"
)

// StateRepository is the engine's state cache backed by the engine_state
// table. Values are small integers keyed by opaque strings.
type StateRepository struct {
	db database.PGXDB
}

// NewStateRepository creates a new StateRepository.
func NewStateRepository(db database.PGXDB) *StateRepository {
	return &StateRepository{db: db}
}

// Get returns the stored value and whether the key exists.
func (r *StateRepository) Get(ctx context.Context, key string) (int, bool, error) {
	var value int
	err := r.db.QueryRow(ctx, `SELECT value FROM engine_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read engine state: %w", err)
	}
	return value, true, nil
}

// CompareAndSet stores newValue only if the current value equals
// expected; a missing key counts as 0. Returns whether the swap
// happened.
func (r *StateRepository) CompareAndSet(ctx context.Context, key string, expected, newValue int) (bool, error) {
	if expected == 0 {
		tag, err := r.db.Exec(ctx, `
			INSERT INTO engine_state (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
			WHERE engine_state.value = 0
		`, key, newValue)
		if err != nil {
			return false, fmt.Errorf("failed to initialize engine state: %w", err)
		}
		return tag.RowsAffected() == 1, nil
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE engine_state SET value = $3, updated_at = NOW()
		WHERE key = $1 AND value = $2
	`, key, expected, newValue)
	if err != nil {
		return false, fmt.Errorf("failed to swap engine state: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
