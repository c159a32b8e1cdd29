// Package notify queues local notifications in the database and
// delivers the due ones through a pluggable sender.
package notify

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/yelinaung/finflow/internal/engine"
	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/repository"
)

// Scheduler implements engine.Notifier on top of the notifications
// table.
type Scheduler struct {
	repo  *repository.NotificationRepository
	clock engine.Clock
}

// NewScheduler creates a scheduler. A nil clock defaults to the system
// clock.
func NewScheduler(repo *repository.NotificationRepository, clock engine.Clock) *Scheduler {
	if clock == nil {
		clock = engine.SystemClock{}
	}
	return &Scheduler{repo: repo, clock: clock}
}

var _ engine.Notifier = (*Scheduler)(nil)

// CancelAllForUser drops the user's pending notifications.
func (s *Scheduler) CancelAllForUser(ctx context.Context, userID string) error {
	if err := s.repo.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("%w: %w", engine.ErrNotifierUnavailable, err)
	}
	return nil
}

// Schedule queues a notification for a future instant. Instants at or
// before the current time are a no-op.
func (s *Scheduler) Schedule(ctx context.Context, userID string, at time.Time, title, body string, payload map[string]string) error {
	if !at.After(s.clock.Now()) {
		return nil
	}
	n := &models.Notification{
		UserID:  userID,
		FireAt:  at,
		Title:   title,
		Body:    body,
		Payload: payload,
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return fmt.Errorf("%w: %w", engine.ErrNotifierUnavailable, err)
	}
	return nil
}
