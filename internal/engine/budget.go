package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/finflow/internal/logger"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// ThresholdLadder lists the budget-use percents at which an alert fires,
// at most once each per calendar month.
var ThresholdLadder = []int{80, 90, 100, 110}

// BudgetStateKey is the state-cache key holding the last fired threshold
// for a (user, year, month).
func BudgetStateKey(userID string, year int, month time.Month) string {
	return fmt.Sprintf("budget_notification_%s_%d_%d", userID, year, int(month))
}

// CheckBudgetThresholds compares current-month spending against the
// user's monthly budget and returns the highest newly crossed threshold,
// or nil when nothing new was crossed. The threshold state is persisted
// before the event is returned; an event the engine cannot record is
// never emitted.
//
// Within one calendar month the emitted percents are strictly
// increasing. Deleting expenses or lowering the budget never re-arms a
// threshold that already fired; the month rollover resets the ladder by
// changing the cache key.
func (e *Engine) CheckBudgetThresholds(ctx context.Context, userID string, asOf time.Time) (*models.ThresholdEvent, error) {
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.MonthlyBudget == nil || !user.MonthlyBudget.IsPositive() {
		return nil, nil
	}

	local := asOf.In(e.loc)
	monthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, e.loc)
	monthEnd := monthStart.AddDate(0, 1, 0)

	expenses, err := e.store.ListExpenses(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	totalSpent := decimal.Zero
	for i := range expenses {
		if expenses[i].IsExpense() {
			totalSpent = totalSpent.Add(expenses[i].Amount.Abs())
		}
	}

	used := totalSpent.Div(*user.MonthlyBudget).Mul(decimal.NewFromInt(100))

	key := BudgetStateKey(userID, local.Year(), local.Month())
	last, _, err := e.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read threshold state: %w", err)
	}

	crossed := 0
	for _, threshold := range ThresholdLadder {
		if threshold > last && used.GreaterThanOrEqual(decimal.NewFromInt(int64(threshold))) {
			crossed = threshold
		}
	}
	if crossed == 0 {
		return nil, nil
	}

	ok, err := e.cache.CompareAndSet(ctx, key, last, crossed)
	if err != nil {
		return nil, fmt.Errorf("persist threshold state: %w", err)
	}
	if !ok {
		// A concurrent call raised the threshold first.
		logger.Log.Debug().
			Str("user_hash", logger.HashUserID(userID)).
			Int("percent", crossed).
			Msg("Budget threshold already recorded by a concurrent call")
		return nil, nil
	}

	return &models.ThresholdEvent{
		UserID:        userID,
		Percent:       crossed,
		TotalSpent:    totalSpent,
		MonthlyBudget: *user.MonthlyBudget,
		CurrencyCode:  user.CurrencyCode,
		Year:          local.Year(),
		Month:         local.Month(),
	}, nil
}
