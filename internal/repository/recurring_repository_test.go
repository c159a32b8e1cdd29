package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/models"
)

func makeTestDefinition(id string) *models.RecurringDefinition {
	return &models.RecurringDefinition{
		ID:     id,
		UserID: "user-1",
		Base: models.BaseTransaction{
			ID:       "base-" + id,
			Amount:   money(-12.50),
			Currency: "USD",
			Category: "subscriptions",
			Type:     models.TransactionTypeExpense,
			Note:     "Streaming service",
		},
		Frequency: models.FrequencyMonthly,
		StartDate: utcDate(2024, time.January, 15),
		Active:    true,
	}
}

func TestRecurringRepository_CreateAndGet(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	seedUser(t, tx, "user-1")
	repo := NewRecurringRepository(tx)

	def := makeTestDefinition("def-1")
	require.NoError(t, repo.Create(ctx, def))
	require.False(t, def.CreatedAt.IsZero())

	fetched, err := repo.GetByID(ctx, "def-1")
	require.NoError(t, err)
	require.Equal(t, "user-1", fetched.UserID)
	require.Equal(t, "base-def-1", fetched.Base.ID)
	require.True(t, money(-12.50).Equal(fetched.Base.Amount))
	require.Equal(t, models.FrequencyMonthly, fetched.Frequency)
	require.True(t, utcDate(2024, time.January, 15).Equal(fetched.StartDate))
	require.Nil(t, fetched.EndDate)
	require.Nil(t, fetched.Occurrences)
	require.Zero(t, fetched.CreatedInstances)
	require.Nil(t, fetched.LastCreatedDate)
	require.True(t, fetched.Active)
}

func TestRecurringRepository_RejectsBothBounds(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	seedUser(t, tx, "user-1")
	repo := NewRecurringRepository(tx)

	def := makeTestDefinition("def-1")
	end := utcDate(2024, time.December, 31)
	n := 6
	def.EndDate = &end
	def.Occurrences = &n

	err := repo.Create(ctx, def)
	require.Error(t, err, "end date and occurrence cap are mutually exclusive")
}

func TestRecurringRepository_ListByUserID(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	seedUser(t, tx, "user-1")
	repo := NewRecurringRepository(tx)

	active := makeTestDefinition("def-active")
	require.NoError(t, repo.Create(ctx, active))

	inactive := makeTestDefinition("def-inactive")
	inactive.Active = false
	require.NoError(t, repo.Create(ctx, inactive))

	t.Run("all definitions", func(t *testing.T) {
		defs, err := repo.ListByUserID(ctx, "user-1", false)
		require.NoError(t, err)
		require.Len(t, defs, 2)
	})

	t.Run("only active", func(t *testing.T) {
		defs, err := repo.ListByUserID(ctx, "user-1", true)
		require.NoError(t, err)
		require.Len(t, defs, 1)
		require.Equal(t, "def-active", defs[0].ID)
	})

	t.Run("other users see nothing", func(t *testing.T) {
		defs, err := repo.ListByUserID(ctx, "user-2", false)
		require.NoError(t, err)
		require.Empty(t, defs)
	})
}

func TestRecurringRepository_WriteCursor(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	seedUser(t, tx, "user-1")
	repo := NewRecurringRepository(tx)

	def := makeTestDefinition("def-1")
	require.NoError(t, repo.Create(ctx, def))

	t.Run("advances an unset cursor", func(t *testing.T) {
		last := utcDate(2024, time.February, 15)
		def.CreatedInstances = 2
		def.LastCreatedDate = &last

		applied, err := repo.WriteCursor(ctx, def)
		require.NoError(t, err)
		require.True(t, applied)

		fetched, err := repo.GetByID(ctx, "def-1")
		require.NoError(t, err)
		require.Equal(t, 2, fetched.CreatedInstances)
		require.True(t, last.Equal(*fetched.LastCreatedDate))
	})

	t.Run("advances a stale cursor", func(t *testing.T) {
		last := utcDate(2024, time.April, 15)
		def.CreatedInstances = 4
		def.LastCreatedDate = &last

		applied, err := repo.WriteCursor(ctx, def)
		require.NoError(t, err)
		require.True(t, applied)
	})

	t.Run("refuses to move the cursor backwards", func(t *testing.T) {
		last := utcDate(2024, time.March, 15)
		stale := makeTestDefinition("def-1")
		stale.CreatedInstances = 3
		stale.LastCreatedDate = &last

		applied, err := repo.WriteCursor(ctx, stale)
		require.NoError(t, err)
		require.False(t, applied)

		fetched, err := repo.GetByID(ctx, "def-1")
		require.NoError(t, err)
		require.Equal(t, 4, fetched.CreatedInstances)
	})

	t.Run("refuses an equal cursor", func(t *testing.T) {
		last := utcDate(2024, time.April, 15)
		same := makeTestDefinition("def-1")
		same.CreatedInstances = 4
		same.LastCreatedDate = &last

		applied, err := repo.WriteCursor(ctx, same)
		require.NoError(t, err)
		require.False(t, applied)
	})

	t.Run("deactivates along a cursor advance", func(t *testing.T) {
		last := utcDate(2024, time.June, 15)
		def.CreatedInstances = 6
		def.LastCreatedDate = &last
		def.Active = false

		applied, err := repo.WriteCursor(ctx, def)
		require.NoError(t, err)
		require.True(t, applied)

		fetched, err := repo.GetByID(ctx, "def-1")
		require.NoError(t, err)
		require.False(t, fetched.Active)
	})
}

func TestRecurringRepository_Delete(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	seedUser(t, tx, "user-1")
	repo := NewRecurringRepository(tx)

	def := makeTestDefinition("def-1")
	require.NoError(t, repo.Create(ctx, def))
	require.NoError(t, repo.Delete(ctx, "def-1"))

	_, err := repo.GetByID(ctx, "def-1")
	require.Error(t, err)
}
