package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// seedUser inserts a user row so FK-constrained inserts succeed.
func seedUser(t *testing.T, db database.PGXDB, id string) {
	t.Helper()
	err := NewUserRepository(db).Upsert(context.Background(), &models.User{
		ID:           id,
		CurrencyCode: "USD",
	})
	require.NoError(t, err)
}

func utcDate(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func money(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
