package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// BillRepository handles bill database operations.
type BillRepository struct {
	db database.PGXDB
}

// NewBillRepository creates a new BillRepository.
func NewBillRepository(db database.PGXDB) *BillRepository {
	return &BillRepository{db: db}
}

// Upsert creates or updates a bill.
func (r *BillRepository) Upsert(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.NewString()
	}
	if bill.Category == "" {
		bill.Category = models.DefaultBillCategory
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO bills (id, user_id, name, amount, due_date, frequency, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			amount = EXCLUDED.amount,
			due_date = EXCLUDED.due_date,
			frequency = EXCLUDED.frequency,
			category = EXCLUDED.category,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`, bill.ID, bill.UserID, bill.Name, bill.Amount, bill.DueDate, bill.Frequency, bill.Category).
		Scan(&bill.CreatedAt, &bill.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert bill: %w", err)
	}
	return nil
}

// ListByUserID retrieves all bills for a user, due date ascending.
func (r *BillRepository) ListByUserID(ctx context.Context, userID string) ([]models.Bill, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, name, amount, due_date, frequency, category, created_at, updated_at
		FROM bills
		WHERE user_id = $1
		ORDER BY due_date ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		var b models.Bill
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.DueDate,
			&b.Frequency, &b.Category, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bills: %w", err)
	}
	return bills, nil
}

// Delete removes a bill by id.
func (r *BillRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM bills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return nil
}
