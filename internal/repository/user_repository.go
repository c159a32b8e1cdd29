// Package repository provides PostgreSQL-backed implementations of the
// engine's store, state cache and notification queue ports.
package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// UserRepository handles user database operations.
type UserRepository struct {
	db database.PGXDB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db database.PGXDB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert creates or updates a user.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	if user.CurrencyCode == "" {
		user.CurrencyCode = models.DefaultCurrency
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (id, currency_code, monthly_budget)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			currency_code = EXCLUDED.currency_code,
			monthly_budget = EXCLUDED.monthly_budget,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`, user.ID, user.CurrencyCode, user.MonthlyBudget).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, currency_code, monthly_budget, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.CurrencyCode, &user.MonthlyBudget, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ListIDs returns all user ids.
func (r *UserRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user ids: %w", err)
	}
	return ids, nil
}

// SetMonthlyBudget updates a user's monthly budget. A nil budget clears it.
func (r *UserRepository) SetMonthlyBudget(ctx context.Context, userID string, budget *decimal.Decimal) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET monthly_budget = $2, updated_at = NOW() WHERE id = $1
	`, userID, budget)
	if err != nil {
		return fmt.Errorf("failed to set monthly budget: %w", err)
	}
	return nil
}
