package repository

import (
	"context"
	"fmt"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// RecurringRepository handles recurring definition database operations.
type RecurringRepository struct {
	db database.PGXDB
}

// NewRecurringRepository creates a new RecurringRepository.
func NewRecurringRepository(db database.PGXDB) *RecurringRepository {
	return &RecurringRepository{db: db}
}

const recurringColumns = `id, user_id, base_transaction_id, amount, currency, category, type, note,
	frequency, start_date, end_date, occurrences, created_instances, last_created_date, active,
	created_at, updated_at`

// Create inserts a new recurring definition.
func (r *RecurringRepository) Create(ctx context.Context, def *models.RecurringDefinition) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO recurring_definitions
			(id, user_id, base_transaction_id, amount, currency, category, type, note,
			 frequency, start_date, end_date, occurrences, created_instances, last_created_date, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`, def.ID, def.UserID, def.Base.ID, def.Base.Amount, def.Base.Currency,
		def.Base.Category, def.Base.Type, def.Base.Note,
		def.Frequency, def.StartDate, def.EndDate, def.Occurrences,
		def.CreatedInstances, def.LastCreatedDate, def.Active).
		Scan(&def.CreatedAt, &def.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create recurring definition: %w", err)
	}
	return nil
}

// GetByID retrieves a definition by id.
func (r *RecurringRepository) GetByID(ctx context.Context, id string) (*models.RecurringDefinition, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+recurringColumns+` FROM recurring_definitions WHERE id = $1`, id)
	def, err := scanDefinition(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring definition: %w", err)
	}
	return def, nil
}

// ListByUserID retrieves definitions for a user, optionally only active
// ones.
func (r *RecurringRepository) ListByUserID(ctx context.Context, userID string, onlyActive bool) ([]models.RecurringDefinition, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_definitions WHERE user_id = $1`
	if onlyActive {
		query += ` AND active`
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring definitions: %w", err)
	}
	defer rows.Close()

	var defs []models.RecurringDefinition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring definition: %w", err)
		}
		defs = append(defs, *def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring definitions: %w", err)
	}
	return defs, nil
}

// WriteCursor applies a materializer cursor advance compare-and-set to
// the greater value: the write lands only if the stored cursor is unset
// or strictly behind the new one. Returns whether it was applied.
func (r *RecurringRepository) WriteCursor(ctx context.Context, def *models.RecurringDefinition) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE recurring_definitions SET
			created_instances = $2,
			last_created_date = $3,
			active = $4,
			updated_at = NOW()
		WHERE id = $1
		  AND (last_created_date IS NULL OR last_created_date < $3)
	`, def.ID, def.CreatedInstances, def.LastCreatedDate, def.Active)
	if err != nil {
		return false, fmt.Errorf("failed to advance definition cursor: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes a definition by id.
func (r *RecurringRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM recurring_definitions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recurring definition: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDefinition(row rowScanner) (*models.RecurringDefinition, error) {
	var def models.RecurringDefinition
	err := row.Scan(
		&def.ID, &def.UserID, &def.Base.ID, &def.Base.Amount, &def.Base.Currency,
		&def.Base.Category, &def.Base.Type, &def.Base.Note,
		&def.Frequency, &def.StartDate, &def.EndDate, &def.Occurrences,
		&def.CreatedInstances, &def.LastCreatedDate, &def.Active,
		&def.CreatedAt, &def.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &def, nil
}
