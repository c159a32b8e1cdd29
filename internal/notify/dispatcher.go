package notify

import (
	"context"
	"time"

	"gitlab.com/yelinaung/finflow/internal/engine"
	"gitlab.com/yelinaung/finflow/internal/logger"
	"gitlab.com/yelinaung/finflow/internal/models"
	"gitlab.com/yelinaung/finflow/internal/repository"
)

// DispatchBatchSize caps how many due notifications one poll delivers.
const DispatchBatchSize = 100

// Sender delivers a single notification to the device or channel.
type Sender interface {
	Send(ctx context.Context, n *models.Notification) error
}

// LogSender writes notifications to the structured log. It stands in for
// a platform notification channel in development and tests.
type LogSender struct{}

// Send implements Sender.
func (LogSender) Send(_ context.Context, n *models.Notification) error {
	logger.Log.Info().
		Str("user_hash", logger.HashUserID(n.UserID)).
		Str("title", n.Title).
		Str("body", n.Body).
		Time("fire_at", n.FireAt).
		Msg("Notification delivered")
	return nil
}

// Dispatcher polls the notification queue and delivers due entries.
type Dispatcher struct {
	repo     *repository.NotificationRepository
	sender   Sender
	clock    engine.Clock
	interval time.Duration
}

// NewDispatcher creates a dispatcher polling at the given interval.
func NewDispatcher(repo *repository.NotificationRepository, sender Sender, clock engine.Clock, interval time.Duration) *Dispatcher {
	if sender == nil {
		sender = LogSender{}
	}
	if clock == nil {
		clock = engine.SystemClock{}
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Dispatcher{repo: repo, sender: sender, clock: clock, interval: interval}
}

// Run blocks until the context is cancelled, delivering due
// notifications once per interval.
func (d *Dispatcher) Run(ctx context.Context) {
	logger.Log.Info().Dur("interval", d.interval).Msg("Notification dispatcher started")

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("Notification dispatcher stopped")
			return
		case <-ticker.C:
			d.DispatchDue(ctx)
		}
	}
}

// DispatchDue delivers every notification whose fire instant has passed.
// Rows are only marked delivered after a successful send, so a failed
// delivery is retried on the next poll.
func (d *Dispatcher) DispatchDue(ctx context.Context) {
	due, err := d.repo.ListDue(ctx, d.clock.Now(), DispatchBatchSize)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list due notifications")
		return
	}

	for i := range due {
		n := &due[i]
		if err := d.sender.Send(ctx, n); err != nil {
			logger.Log.Error().Err(err).
				Int64("notification_id", n.ID).
				Msg("Failed to deliver notification")
			continue
		}
		if err := d.repo.MarkDelivered(ctx, n.ID); err != nil {
			logger.Log.Error().Err(err).
				Int64("notification_id", n.ID).
				Msg("Failed to mark notification delivered")
		}
	}
}
