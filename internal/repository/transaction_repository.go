package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// TransactionRepository handles transaction database operations.
type TransactionRepository struct {
	db database.PGXDB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db database.PGXDB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Upsert inserts a transaction, ignoring the write when the id already
// exists. Materialized instances rely on this to collapse retries and
// concurrent emissions. Returns whether a new row was inserted.
func (r *TransactionRepository) Upsert(ctx context.Context, t *models.Transaction) (bool, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	tag, err := r.db.Exec(ctx, `
		INSERT INTO transactions (id, user_id, amount, currency, category, type, occurred_at, note, recurring_id, instance_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`, t.ID, t.UserID, t.Amount, t.Currency, t.Category, t.Type, t.Date, t.Note,
		t.RecurringID, t.InstanceIndex)
	if err != nil {
		return false, fmt.Errorf("failed to upsert transaction: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID retrieves a transaction by id.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, amount, currency, category, type, occurred_at, note, recurring_id, instance_index, created_at, updated_at
		FROM transactions WHERE id = $1
	`, id).Scan(&t.ID, &t.UserID, &t.Amount, &t.Currency, &t.Category, &t.Type,
		&t.Date, &t.Note, &t.RecurringID, &t.InstanceIndex, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &t, nil
}

// ListExpensesByDateRange retrieves expense transactions for a user with
// dates in [startDate, endDate).
func (r *TransactionRepository) ListExpensesByDateRange(
	ctx context.Context,
	userID string,
	startDate, endDate time.Time,
) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount, currency, category, type, occurred_at, note, recurring_id, instance_index, created_at, updated_at
		FROM transactions
		WHERE user_id = $1 AND type = 'expense' AND occurred_at >= $2 AND occurred_at < $3
		ORDER BY occurred_at ASC, id ASC
	`, userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses by date range: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListByRecurringID retrieves the materialized instances of a recurring
// definition, dates ascending.
func (r *TransactionRepository) ListByRecurringID(ctx context.Context, recurringID string) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount, currency, category, type, occurred_at, note, recurring_id, instance_index, created_at, updated_at
		FROM transactions
		WHERE recurring_id = $1
		ORDER BY occurred_at ASC, instance_index ASC
	`, recurringID)
	if err != nil {
		return nil, fmt.Errorf("failed to query instances: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// Delete removes a transaction by id.
func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// scanTransactions is a helper to scan transaction rows.
func scanTransactions(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
},
) ([]models.Transaction, error) {
	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Amount, &t.Currency, &t.Category, &t.Type,
			&t.Date, &t.Note, &t.RecurringID, &t.InstanceIndex, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}
