package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/models"
)

func TestTransactionRepository_Upsert(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	seedUser(t, tx, "user-1")
	repo := NewTransactionRepository(tx)

	t.Run("inserts a transaction", func(t *testing.T) {
		txn := &models.Transaction{
			ID:       "txn-1",
			UserID:   "user-1",
			Amount:   money(-25.50),
			Currency: "USD",
			Category: "food",
			Type:     models.TransactionTypeExpense,
			Date:     utcDate(2024, time.June, 5),
			Note:     "Lunch",
		}

		inserted, err := repo.Upsert(ctx, txn)
		require.NoError(t, err)
		require.True(t, inserted)

		fetched, err := repo.GetByID(ctx, "txn-1")
		require.NoError(t, err)
		require.True(t, money(-25.50).Equal(fetched.Amount))
		require.Equal(t, "food", fetched.Category)
	})

	t.Run("repeat insert with same id reports not inserted", func(t *testing.T) {
		txn := &models.Transaction{
			ID:       "txn-1",
			UserID:   "user-1",
			Amount:   money(-99),
			Currency: "USD",
			Category: "food",
			Type:     models.TransactionTypeExpense,
			Date:     utcDate(2024, time.June, 5),
		}

		inserted, err := repo.Upsert(ctx, txn)
		require.NoError(t, err)
		require.False(t, inserted)

		// The original row is untouched.
		fetched, err := repo.GetByID(ctx, "txn-1")
		require.NoError(t, err)
		require.True(t, money(-25.50).Equal(fetched.Amount))
	})

	t.Run("generates an id when empty", func(t *testing.T) {
		txn := &models.Transaction{
			UserID:   "user-1",
			Amount:   money(-5),
			Currency: "USD",
			Category: "other",
			Type:     models.TransactionTypeExpense,
			Date:     utcDate(2024, time.June, 6),
		}

		inserted, err := repo.Upsert(ctx, txn)
		require.NoError(t, err)
		require.True(t, inserted)
		require.NotEmpty(t, txn.ID)
	})

	t.Run("carries recurring linkage", func(t *testing.T) {
		recurringID := "def-1"
		index := 3
		txn := &models.Transaction{
			ID:            "base-1_3",
			UserID:        "user-1",
			Amount:        money(-12.50),
			Currency:      "USD",
			Category:      "subscriptions",
			Type:          models.TransactionTypeExpense,
			Date:          utcDate(2024, time.April, 15),
			RecurringID:   &recurringID,
			InstanceIndex: &index,
		}

		inserted, err := repo.Upsert(ctx, txn)
		require.NoError(t, err)
		require.True(t, inserted)

		fetched, err := repo.GetByID(ctx, "base-1_3")
		require.NoError(t, err)
		require.NotNil(t, fetched.RecurringID)
		require.Equal(t, "def-1", *fetched.RecurringID)
		require.NotNil(t, fetched.InstanceIndex)
		require.Equal(t, 3, *fetched.InstanceIndex)
	})
}

func TestTransactionRepository_ListExpensesByDateRange(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	seedUser(t, tx, "user-1")
	repo := NewTransactionRepository(tx)

	put := func(id string, amount float64, txnType string, date time.Time) {
		t.Helper()
		_, err := repo.Upsert(ctx, &models.Transaction{
			ID: id, UserID: "user-1", Amount: money(amount), Currency: "USD",
			Category: "other", Type: txnType, Date: date,
		})
		require.NoError(t, err)
	}

	put("in-1", -100, models.TransactionTypeExpense, utcDate(2024, time.June, 1))
	put("in-2", -50, models.TransactionTypeExpense, utcDate(2024, time.June, 30))
	put("before", -10, models.TransactionTypeExpense, utcDate(2024, time.May, 31))
	put("after", -10, models.TransactionTypeExpense, utcDate(2024, time.July, 1))
	put("salary", 3000, models.TransactionTypeIncome, utcDate(2024, time.June, 15))

	expenses, err := repo.ListExpensesByDateRange(ctx, "user-1",
		utcDate(2024, time.June, 1), utcDate(2024, time.July, 1))
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	require.Equal(t, "in-1", expenses[0].ID)
	require.Equal(t, "in-2", expenses[1].ID)
}

func TestTransactionRepository_ListByRecurringID(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	seedUser(t, tx, "user-1")
	repo := NewTransactionRepository(tx)

	recurringID := "def-1"
	for i, date := range []time.Time{
		utcDate(2024, time.March, 15),
		utcDate(2024, time.January, 15),
		utcDate(2024, time.February, 15),
	} {
		index := i
		_, err := repo.Upsert(ctx, &models.Transaction{
			ID: "base-1_" + string(rune('0'+i)), UserID: "user-1",
			Amount: money(-12.50), Currency: "USD", Category: "subscriptions",
			Type: models.TransactionTypeExpense, Date: date,
			RecurringID: &recurringID, InstanceIndex: &index,
		})
		require.NoError(t, err)
	}

	instances, err := repo.ListByRecurringID(ctx, "def-1")
	require.NoError(t, err)
	require.Len(t, instances, 3)
	for i := 1; i < len(instances); i++ {
		require.True(t, instances[i-1].Date.Before(instances[i].Date))
	}
}

func TestTransactionRepository_Delete(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	seedUser(t, tx, "user-1")
	repo := NewTransactionRepository(tx)

	_, err := repo.Upsert(ctx, &models.Transaction{
		ID: "txn-1", UserID: "user-1", Amount: money(-5), Currency: "USD",
		Category: "other", Type: models.TransactionTypeExpense,
		Date: utcDate(2024, time.June, 5),
	})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "txn-1"))

	_, err = repo.GetByID(ctx, "txn-1")
	require.Error(t, err)
}
