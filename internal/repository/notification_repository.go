package repository

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// NotificationRepository handles the queued-notification table.
type NotificationRepository struct {
	db database.PGXDB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db database.PGXDB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Insert queues a notification for delivery at the given instant.
func (r *NotificationRepository) Insert(ctx context.Context, n *models.Notification) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO notifications (user_id, fire_at, title, body, payload)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, n.UserID, n.FireAt, n.Title, n.Body, n.Payload).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// DeleteAllForUser clears a user's pending notifications. Delivered rows
// stay for auditing.
func (r *NotificationRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM notifications WHERE user_id = $1 AND NOT delivered
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}
	return nil
}

// ListDue returns undelivered notifications whose fire instant has
// passed, soonest first.
func (r *NotificationRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, fire_at, title, body, payload, delivered, created_at
		FROM notifications
		WHERE NOT delivered AND fire_at <= $1
		ORDER BY fire_at ASC, id ASC
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.FireAt, &n.Title, &n.Body,
			&n.Payload, &n.Delivered, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}

// MarkDelivered flags a notification as delivered.
func (r *NotificationRepository) MarkDelivered(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notifications SET delivered = TRUE WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification delivered: %w", err)
	}
	return nil
}

// CountPendingForUser returns how many undelivered notifications a user
// has queued.
func (r *NotificationRepository) CountPendingForUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT delivered
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending notifications: %w", err)
	}
	return count, nil
}
