package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/finflow/internal/logger"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// dueAlertHour is the local hour at which bill notifications fire.
const dueAlertHour = 9

// billGroup collects the bills sharing a due day-of-month.
type billGroup struct {
	names []string
	total decimal.Decimal
}

// RebuildBillReminders replaces the user's entire bill notification
// schedule: for every day-of-month with bills due, one reminder
// leadDays ahead of the next occurrence and one alert on the due date
// itself. The previous schedule is cancelled first, so the rebuild is
// idempotent and the sole mutator of the user's notification tag-space.
//
// A notifier outage is non-fatal: the rebuild returns zero scheduled and
// reports the subsystem error through the log.
func (e *Engine) RebuildBillReminders(ctx context.Context, userID string, asOf time.Time) (int, error) {
	bills, err := e.store.ListBills(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list bills: %w", err)
	}
	defs, err := e.store.ListRecurringDefinitions(ctx, userID, true)
	if err != nil {
		return 0, fmt.Errorf("list definitions: %w", err)
	}

	groups := make(map[int]*billGroup)
	add := func(day int, name string, amount decimal.Decimal) {
		g, ok := groups[day]
		if !ok {
			g = &billGroup{total: decimal.Zero}
			groups[day] = g
		}
		g.names = append(g.names, name)
		g.total = g.total.Add(amount.Abs())
	}

	for i := range bills {
		add(bills[i].DueDate.In(e.loc).Day(), bills[i].Name, bills[i].Amount)
	}
	// Recurring expense definitions in the bills category contribute
	// their start day-of-month.
	for i := range defs {
		def := &defs[i]
		if def.Base.Category != models.DefaultBillCategory || def.Base.Type != models.TransactionTypeExpense {
			continue
		}
		name := def.Base.Note
		if name == "" {
			name = models.DefaultBillCategory
		}
		add(def.StartDate.In(e.loc).Day(), name, def.Base.Amount)
	}

	if err := e.notifier.CancelAllForUser(ctx, userID); err != nil {
		if errors.Is(err, ErrNotifierUnavailable) {
			logger.Log.Error().Err(err).
				Str("user_hash", logger.HashUserID(userID)).
				Msg("Notifier unavailable, skipping bill reminder rebuild")
			return 0, nil
		}
		return 0, fmt.Errorf("cancel previous schedule: %w", err)
	}

	days := make([]int, 0, len(groups))
	for day := range groups {
		days = append(days, day)
	}
	sort.Ints(days)

	local := asOf.In(e.loc)
	scheduled := 0
	for _, day := range days {
		group := groups[day]
		next := nextDueDate(local, day, e.loc)

		reminderAt := next.AddDate(0, 0, -e.leadDays)
		if reminderAt.After(local) {
			err := e.notifier.Schedule(ctx, userID, reminderAt,
				BillReminderTitle,
				billReminderBody(next.Day(), group.names, group.total),
				billPayload("bill_reminder", next))
			if err != nil {
				return e.notifierFailure(userID, scheduled, err)
			}
			scheduled++
		}

		if next.After(local) {
			err := e.notifier.Schedule(ctx, userID, next,
				BillDueTitle,
				billDueBody(group.names, group.total),
				billPayload("bill_due", next))
			if err != nil {
				return e.notifierFailure(userID, scheduled, err)
			}
			scheduled++
		}
	}

	logger.Log.Debug().
		Str("user_hash", logger.HashUserID(userID)).
		Int("scheduled", scheduled).
		Int("groups", len(groups)).
		Msg("Rebuilt bill reminders")

	return scheduled, nil
}

// nextDueDate finds the next occurrence of a due day-of-month strictly
// after asOf, at the notification hour. Days past the end of a short
// month clamp to its last day.
func nextDueDate(asOf time.Time, day int, loc *time.Location) time.Time {
	candidate := dueOnDay(asOf.Year(), asOf.Month(), day, loc)
	if !candidate.After(asOf) {
		candidate = dueOnDay(asOf.Year(), asOf.Month()+1, day, loc)
	}
	return candidate
}

func dueOnDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, dueAlertHour, 0, 0, 0, loc)
	if last := daysInMonth(first); day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

func billPayload(kind string, due time.Time) map[string]string {
	return map[string]string{
		"type": kind,
		"due":  due.Format("2006-01-02"),
		"day":  strconv.Itoa(due.Day()),
	}
}

// notifierFailure handles a mid-rebuild notifier outage. The cancel has
// already run, so the tag-space is in the legal empty-or-partial state;
// the next rebuild starts from cancel again.
func (e *Engine) notifierFailure(userID string, scheduled int, err error) (int, error) {
	if errors.Is(err, ErrNotifierUnavailable) {
		logger.Log.Error().Err(err).
			Str("user_hash", logger.HashUserID(userID)).
			Int("scheduled_before_failure", scheduled).
			Msg("Notifier unavailable during rebuild")
		return 0, nil
	}
	return scheduled, fmt.Errorf("schedule notification: %w", err)
}
