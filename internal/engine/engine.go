// Package engine implements the recurring-transaction and bill-reminder
// engine: recurrence expansion, instance materialization, budget
// threshold monitoring and bill reminder scheduling.
package engine

import (
	"context"
	"time"

	"gitlab.com/yelinaung/finflow/internal/models"
)

// Store is the engine's view of the transaction store. The engine is the
// only writer of definition cursor fields; everything else treats them
// as read-only.
type Store interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	ListRecurringDefinitions(ctx context.Context, userID string, onlyActive bool) ([]models.RecurringDefinition, error)
	// WriteDefinition upserts a definition by id. Cursor fields
	// (LastCreatedDate, CreatedInstances, Active) are applied
	// compare-and-set to the greater cursor value; returns whether the
	// write was applied.
	WriteDefinition(ctx context.Context, def *models.RecurringDefinition) (bool, error)
	ListBills(ctx context.Context, userID string) ([]models.Bill, error)
	ListExpenses(ctx context.Context, userID string, monthStart, monthEnd time.Time) ([]models.Transaction, error)
	// UpsertTransaction is idempotent on the transaction id. Returns
	// whether a new row was inserted.
	UpsertTransaction(ctx context.Context, t *models.Transaction) (bool, error)
}

// Notifier schedules local notifications at future wall-clock instants.
// Scheduling at or before the current instant is a no-op.
type Notifier interface {
	CancelAllForUser(ctx context.Context, userID string) error
	Schedule(ctx context.Context, userID string, at time.Time, title, body string, payload map[string]string) error
}

// StateCache is a small key/value store for idempotency state, currently
// the last budget threshold fired per (user, year, month).
type StateCache interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (int, bool, error)
	// CompareAndSet stores newValue only if the current value equals
	// expected (a missing key counts as 0). Returns whether the swap
	// happened.
	CompareAndSet(ctx context.Context, key string, expected, newValue int) (bool, error)
}

// Clock returns the current instant; injectable so tests are hermetic.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Deps bundles the engine's injected collaborators.
type Deps struct {
	Store    Store
	Notifier Notifier
	Cache    StateCache
	Clock    Clock
	// Location is the user's local time zone, used for calendar month
	// boundaries and reminder instants. Defaults to UTC.
	Location *time.Location
	// ReminderLeadDays is how many days before a due date the upcoming
	// bills reminder fires. Defaults to 3.
	ReminderLeadDays int
}

// Engine coordinates the store, notifier, state cache and clock to run
// the recurring-transaction and bill-reminder operations.
type Engine struct {
	store    Store
	notifier Notifier
	cache    StateCache
	clock    Clock
	loc      *time.Location
	leadDays int
}

// New creates an engine with the given dependencies.
func New(deps Deps) *Engine {
	e := &Engine{
		store:    deps.Store,
		notifier: deps.Notifier,
		cache:    deps.Cache,
		clock:    deps.Clock,
		loc:      deps.Location,
		leadDays: deps.ReminderLeadDays,
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.leadDays <= 0 {
		e.leadDays = 3
	}
	return e
}
