package engine

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"gitlab.com/yelinaung/finflow/internal/logger"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// SweepTimeout is the maximum time a single per-user engine pass can take.
const SweepTimeout = 2 * time.Minute

var tracer = otel.Tracer("gitlab.com/yelinaung/finflow/internal/engine")

// Runner periodically sweeps every user through the engine: materialize
// due instances, check budget thresholds, rebuild bill reminders.
type Runner struct {
	engine      *Engine
	interval    time.Duration
	concurrency int
}

// NewRunner creates a runner sweeping at the given interval with at most
// concurrency users processed in parallel.
func NewRunner(engine *Engine, interval time.Duration, concurrency int) *Runner {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Runner{engine: engine, interval: interval, concurrency: concurrency}
}

// Run blocks until the context is cancelled, running one sweep
// immediately and then one per interval.
func (r *Runner) Run(ctx context.Context) {
	logger.Log.Info().
		Dur("interval", r.interval).
		Int("concurrency", r.concurrency).
		Msg("Engine sweep loop started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("Engine sweep loop stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep runs one engine pass for every known user.
func (r *Runner) Sweep(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "engine.sweep")
	defer span.End()

	userIDs, err := r.engine.store.ListUserIDs(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list users for sweep")
		return
	}
	span.SetAttributes(attribute.Int("users", len(userIDs)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, userID := range userIDs {
		g.Go(func() error {
			r.sweepUser(ctx, userID)
			return nil
		})
	}
	_ = g.Wait()
}

// sweepUser runs the three engine operations for one user. Failures are
// logged and never abort the sweep for other users.
func (r *Runner) sweepUser(ctx context.Context, userID string) {
	ctx, cancel := context.WithTimeout(ctx, SweepTimeout)
	defer cancel()

	asOf := r.engine.clock.Now()
	userHash := logger.HashUserID(userID)

	emitted, err := r.engine.MaterializeDue(ctx, userID, asOf)
	if err != nil {
		logger.Log.Error().Err(err).
			Str("user_hash", userHash).
			Bool("retryable", Retryable(err)).
			Msg("Materialization failed")
	} else if emitted > 0 {
		logger.Log.Info().
			Str("user_hash", userHash).
			Int("emitted", emitted).
			Msg("Materialized due instances")
	}

	// The rebuild cancels the user's pending notifications, so it must
	// run before the budget alert is queued.
	if _, err := r.engine.RebuildBillReminders(ctx, userID, asOf); err != nil {
		logger.Log.Error().Err(err).
			Str("user_hash", userHash).
			Bool("retryable", Retryable(err)).
			Msg("Bill reminder rebuild failed")
	}

	event, err := r.engine.CheckBudgetThresholds(ctx, userID, asOf)
	if err != nil {
		logger.Log.Error().Err(err).
			Str("user_hash", userHash).
			Bool("retryable", Retryable(err)).
			Msg("Budget threshold check failed")
	} else if event != nil {
		r.notifyBudgetEvent(ctx, event, asOf)
	}
}

// notifyBudgetEvent schedules an immediate budget alert. The threshold
// state is already persisted, so a delivery failure here loses the alert
// rather than re-firing it; the monitor's dedup contract stays intact.
func (r *Runner) notifyBudgetEvent(ctx context.Context, event *models.ThresholdEvent, asOf time.Time) {
	at := asOf.Add(time.Minute)
	err := r.engine.notifier.Schedule(ctx, event.UserID, at,
		BudgetAlertTitle, BudgetAlertBody(event), map[string]string{
			"type":    "budget_alert",
			"percent": strconv.Itoa(event.Percent),
		})
	if err != nil {
		logger.Log.Error().Err(err).
			Str("user_hash", logger.HashUserID(event.UserID)).
			Int("percent", event.Percent).
			Msg("Failed to schedule budget alert")
		return
	}
	logger.Log.Info().
		Str("user_hash", logger.HashUserID(event.UserID)).
		Int("percent", event.Percent).
		Msg("Budget alert scheduled")
}
