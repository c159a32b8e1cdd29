package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/models"
)

func queueNotification(t *testing.T, repo *NotificationRepository, userID string, fireAt time.Time) *models.Notification {
	t.Helper()
	n := &models.Notification{
		UserID: userID,
		FireAt: fireAt,
		Title:  "Upcoming Bills Reminder",
		Body:   "You have bills due on the 15th: Internet (Total: $49.99)",
		Payload: map[string]string{
			"type": "bill_reminder",
			"due":  fireAt.Format("2006-01-02"),
		},
	}
	require.NoError(t, repo.Insert(context.Background(), n))
	return n
}

func TestNotificationRepository_Insert(t *testing.T) {
	tx := database.TestTx(t)

	repo := NewNotificationRepository(tx)

	n := queueNotification(t, repo, "user-1", utcDate(2024, time.June, 12))
	require.NotZero(t, n.ID)
	require.False(t, n.CreatedAt.IsZero())
}

func TestNotificationRepository_ListDue(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	repo := NewNotificationRepository(tx)

	early := queueNotification(t, repo, "user-1", utcDate(2024, time.June, 10))
	late := queueNotification(t, repo, "user-1", utcDate(2024, time.June, 12))
	queueNotification(t, repo, "user-1", utcDate(2024, time.June, 20)) // not yet due

	t.Run("returns only due rows soonest first", func(t *testing.T) {
		due, err := repo.ListDue(ctx, utcDate(2024, time.June, 15), 100)
		require.NoError(t, err)
		require.Len(t, due, 2)
		require.Equal(t, early.ID, due[0].ID)
		require.Equal(t, late.ID, due[1].ID)
		require.Equal(t, "bill_reminder", due[0].Payload["type"])
	})

	t.Run("respects the limit", func(t *testing.T) {
		due, err := repo.ListDue(ctx, utcDate(2024, time.June, 15), 1)
		require.NoError(t, err)
		require.Len(t, due, 1)
		require.Equal(t, early.ID, due[0].ID)
	})

	t.Run("delivered rows are excluded", func(t *testing.T) {
		require.NoError(t, repo.MarkDelivered(ctx, early.ID))

		due, err := repo.ListDue(ctx, utcDate(2024, time.June, 15), 100)
		require.NoError(t, err)
		require.Len(t, due, 1)
		require.Equal(t, late.ID, due[0].ID)
	})
}

func TestNotificationRepository_DeleteAllForUser(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	repo := NewNotificationRepository(tx)

	delivered := queueNotification(t, repo, "user-1", utcDate(2024, time.June, 10))
	require.NoError(t, repo.MarkDelivered(ctx, delivered.ID))
	queueNotification(t, repo, "user-1", utcDate(2024, time.June, 12))
	other := queueNotification(t, repo, "user-2", utcDate(2024, time.June, 12))

	require.NoError(t, repo.DeleteAllForUser(ctx, "user-1"))

	t.Run("pending rows for the user are gone", func(t *testing.T) {
		count, err := repo.CountPendingForUser(ctx, "user-1")
		require.NoError(t, err)
		require.Zero(t, count)
	})

	t.Run("remaining due rows belong to other users", func(t *testing.T) {
		due, err := repo.ListDue(ctx, utcDate(2024, time.June, 15), 100)
		require.NoError(t, err)
		require.Len(t, due, 1)
		require.Equal(t, other.ID, due[0].ID)
	})

	t.Run("other users are untouched", func(t *testing.T) {
		count, err := repo.CountPendingForUser(ctx, "user-2")
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})
}
