// Package enginetest provides in-memory implementations of the engine's
// store, notifier, state cache and clock ports for hermetic tests.
package enginetest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gitlab.com/yelinaung/finflow/internal/models"
)

var errUserNotFound = errors.New("user not found")

// Clock is a settable test clock.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// NewClock returns a clock frozen at t.
func NewClock(t time.Time) *Clock {
	return &Clock{t: t}
}

// Now returns the frozen instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set moves the clock.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// Store is an in-memory engine.Store. All methods are safe for
// concurrent use; upserts and cursor writes follow the same idempotency
// rules as the Postgres implementation.
type Store struct {
	mu           sync.Mutex
	users        map[string]*models.User
	definitions  map[string]*models.RecurringDefinition
	transactions map[string]*models.Transaction
	bills        map[string][]models.Bill

	// Err, when set, is returned by every store method.
	Err error
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:        make(map[string]*models.User),
		definitions:  make(map[string]*models.RecurringDefinition),
		transactions: make(map[string]*models.Transaction),
		bills:        make(map[string][]models.Bill),
	}
}

// PutUser adds or replaces a user.
func (s *Store) PutUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[user.ID] = &u
}

// PutDefinition adds or replaces a recurring definition.
func (s *Store) PutDefinition(def *models.RecurringDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := *def
	s.definitions[def.ID] = &d
}

// PutBill adds a bill.
func (s *Store) PutBill(bill models.Bill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills[bill.UserID] = append(s.bills[bill.UserID], bill)
}

// PutTransaction adds or replaces a transaction unconditionally.
func (s *Store) PutTransaction(t *models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := *t
	s.transactions[t.ID] = &tx
}

// DeleteTransaction removes a transaction by id.
func (s *Store) DeleteTransaction(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transactions, id)
}

// Definition returns a copy of a stored definition.
func (s *Store) Definition(id string) (models.RecurringDefinition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.definitions[id]
	if !ok {
		return models.RecurringDefinition{}, false
	}
	return *def, true
}

// TransactionsByRecurringID returns the stored instances of a
// definition, dates ascending.
func (s *Store) TransactionsByRecurringID(recurringID string) []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transaction
	for _, t := range s.transactions {
		if t.RecurringID != nil && *t.RecurringID == recurringID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// GetUser implements engine.Store.
func (s *Store) GetUser(_ context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	user, ok := s.users[userID]
	if !ok {
		return nil, errUserNotFound
	}
	u := *user
	return &u, nil
}

// ListUserIDs implements engine.Store.
func (s *Store) ListUserIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ListRecurringDefinitions implements engine.Store.
func (s *Store) ListRecurringDefinitions(_ context.Context, userID string, onlyActive bool) ([]models.RecurringDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.RecurringDefinition
	for _, def := range s.definitions {
		if def.UserID != userID {
			continue
		}
		if onlyActive && !def.Active {
			continue
		}
		out = append(out, *def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// WriteDefinition implements engine.Store with compare-and-set to the
// greater cursor value.
func (s *Store) WriteDefinition(_ context.Context, def *models.RecurringDefinition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	stored, ok := s.definitions[def.ID]
	if !ok {
		d := *def
		s.definitions[def.ID] = &d
		return true, nil
	}
	if def.LastCreatedDate != nil &&
		(stored.LastCreatedDate == nil || stored.LastCreatedDate.Before(*def.LastCreatedDate)) {
		d := *def
		s.definitions[def.ID] = &d
		return true, nil
	}
	return false, nil
}

// ListBills implements engine.Store.
func (s *Store) ListBills(_ context.Context, userID string) ([]models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]models.Bill(nil), s.bills[userID]...), nil
}

// ListExpenses implements engine.Store.
func (s *Store) ListExpenses(_ context.Context, userID string, monthStart, monthEnd time.Time) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.Transaction
	for _, t := range s.transactions {
		if t.UserID != userID || t.Type != models.TransactionTypeExpense {
			continue
		}
		if t.Date.Before(monthStart) || !t.Date.Before(monthEnd) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// UpsertTransaction implements engine.Store; idempotent on id.
func (s *Store) UpsertTransaction(_ context.Context, t *models.Transaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	if _, exists := s.transactions[t.ID]; exists {
		return false, nil
	}
	tx := *t
	s.transactions[t.ID] = &tx
	return true, nil
}

// Notifier is an in-memory engine.Notifier recording scheduled
// notifications.
type Notifier struct {
	mu        sync.Mutex
	scheduled []Scheduled
	now       func() time.Time

	// Err, when set, is returned by every notifier method.
	Err error
}

// Scheduled is one recorded notification.
type Scheduled struct {
	UserID  string
	At      time.Time
	Title   string
	Body    string
	Payload map[string]string
}

// NewNotifier returns a notifier judging "in the past" against the given
// clock.
func NewNotifier(clock *Clock) *Notifier {
	n := &Notifier{now: time.Now}
	if clock != nil {
		n.now = clock.Now
	}
	return n
}

// CancelAllForUser implements engine.Notifier.
func (n *Notifier) CancelAllForUser(_ context.Context, userID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	kept := n.scheduled[:0]
	for _, sch := range n.scheduled {
		if sch.UserID != userID {
			kept = append(kept, sch)
		}
	}
	n.scheduled = kept
	return nil
}

// Schedule implements engine.Notifier. Instants at or before the clock
// are dropped.
func (n *Notifier) Schedule(_ context.Context, userID string, at time.Time, title, body string, payload map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	if !at.After(n.now()) {
		return nil
	}
	n.scheduled = append(n.scheduled, Scheduled{
		UserID: userID, At: at, Title: title, Body: body, Payload: payload,
	})
	return nil
}

// ScheduledFor returns the recorded notifications for a user, soonest
// first.
func (n *Notifier) ScheduledFor(userID string) []Scheduled {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Scheduled
	for _, sch := range n.scheduled {
		if sch.UserID == userID {
			out = append(out, sch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

// Cache is an in-memory engine.StateCache.
type Cache struct {
	mu     sync.Mutex
	values map[string]int

	// Err, when set, is returned by every cache method.
	Err error
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{values: make(map[string]int)}
}

// Get implements engine.StateCache.
func (c *Cache) Get(_ context.Context, key string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, false, c.Err
	}
	v, ok := c.values[key]
	return v, ok, nil
}

// CompareAndSet implements engine.StateCache. A missing key counts as 0.
func (c *Cache) CompareAndSet(_ context.Context, key string, expected, newValue int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return false, c.Err
	}
	if current := c.values[key]; current != expected {
		return false, nil
	}
	c.values[key] = newValue
	return true, nil
}
