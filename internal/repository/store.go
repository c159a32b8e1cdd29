package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gitlab.com/yelinaung/finflow/internal/database"
	"gitlab.com/yelinaung/finflow/internal/engine"
	"gitlab.com/yelinaung/finflow/internal/models"
)

// Store composes the per-table repositories into the engine's Store
// port. Failures are classified into the engine's error kinds so callers
// can tell retryable outages from terminal rejections.
type Store struct {
	Users        *UserRepository
	Transactions *TransactionRepository
	Bills        *BillRepository
	Recurring    *RecurringRepository
}

// NewStore creates a Store over a single database handle.
func NewStore(db database.PGXDB) *Store {
	return &Store{
		Users:        NewUserRepository(db),
		Transactions: NewTransactionRepository(db),
		Bills:        NewBillRepository(db),
		Recurring:    NewRecurringRepository(db),
	}
}

var _ engine.Store = (*Store)(nil)

// GetUser implements engine.Store.
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}
	return user, nil
}

// ListUserIDs implements engine.Store.
func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	ids, err := s.Users.ListIDs(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return ids, nil
}

// ListRecurringDefinitions implements engine.Store.
func (s *Store) ListRecurringDefinitions(ctx context.Context, userID string, onlyActive bool) ([]models.RecurringDefinition, error) {
	defs, err := s.Recurring.ListByUserID(ctx, userID, onlyActive)
	if err != nil {
		return nil, classify(err)
	}
	return defs, nil
}

// WriteDefinition implements engine.Store.
func (s *Store) WriteDefinition(ctx context.Context, def *models.RecurringDefinition) (bool, error) {
	applied, err := s.Recurring.WriteCursor(ctx, def)
	if err != nil {
		return false, classify(err)
	}
	return applied, nil
}

// ListBills implements engine.Store.
func (s *Store) ListBills(ctx context.Context, userID string) ([]models.Bill, error) {
	bills, err := s.Bills.ListByUserID(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}
	return bills, nil
}

// ListExpenses implements engine.Store.
func (s *Store) ListExpenses(ctx context.Context, userID string, monthStart, monthEnd time.Time) ([]models.Transaction, error) {
	expenses, err := s.Transactions.ListExpensesByDateRange(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return nil, classify(err)
	}
	return expenses, nil
}

// UpsertTransaction implements engine.Store.
func (s *Store) UpsertTransaction(ctx context.Context, t *models.Transaction) (bool, error) {
	inserted, err := s.Transactions.Upsert(ctx, t)
	if err != nil {
		return false, classify(err)
	}
	return inserted, nil
}

// pgInsufficientPrivilege is SQLSTATE 42501.
const pgInsufficientPrivilege = "42501"

// classify maps low-level database failures onto the engine's error
// kinds while keeping the original chain intact.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgInsufficientPrivilege {
		return fmt.Errorf("%w: %w", engine.ErrPermissionDenied, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %w", engine.ErrStoreUnavailable, err)
	}
	return err
}
