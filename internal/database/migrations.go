package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunMigrations creates the database schema.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			currency_code TEXT NOT NULL DEFAULT 'USD',
			monthly_budget DECIMAL(12, 2),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			amount DECIMAL(12, 2) NOT NULL,
			currency TEXT NOT NULL DEFAULT 'USD',
			category TEXT NOT NULL DEFAULT 'other',
			type TEXT NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL,
			note TEXT,
			recurring_id TEXT,
			instance_index INTEGER,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_occurred_at ON transactions(occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_recurring_id ON transactions(recurring_id)`,

		`CREATE TABLE IF NOT EXISTS bills (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			name TEXT NOT NULL,
			amount DECIMAL(12, 2) NOT NULL,
			due_date TIMESTAMPTZ NOT NULL,
			frequency TEXT NOT NULL DEFAULT 'monthly',
			category TEXT NOT NULL DEFAULT 'bills',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_bills_user_id ON bills(user_id)`,

		`CREATE TABLE IF NOT EXISTS recurring_definitions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			base_transaction_id TEXT NOT NULL,
			amount DECIMAL(12, 2) NOT NULL,
			currency TEXT NOT NULL DEFAULT 'USD',
			category TEXT NOT NULL DEFAULT 'other',
			type TEXT NOT NULL,
			note TEXT,
			frequency TEXT NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ,
			occurrences INTEGER,
			created_instances INTEGER NOT NULL DEFAULT 0,
			last_created_date TIMESTAMPTZ,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (end_date IS NULL OR occurrences IS NULL)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_recurring_user_active ON recurring_definitions(user_id, active)`,

		`CREATE TABLE IF NOT EXISTS engine_state (
			key TEXT PRIMARY KEY,
			value INTEGER NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			fire_at TIMESTAMPTZ NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			payload JSONB,
			delivered BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_fire_at ON notifications(fire_at) WHERE NOT delivered`,
	}

	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
