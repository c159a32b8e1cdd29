package engine

import (
	"context"
	"errors"
)

// Error kinds the engine surfaces across its public boundary.
var (
	// ErrInvalidDefinition marks a recurring definition that can never
	// produce instances: unknown frequency, startDate after endDate, or
	// both endDate and occurrences set.
	ErrInvalidDefinition = errors.New("invalid recurring definition")

	// ErrStoreUnavailable marks a transient store failure. Retryable.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrPermissionDenied marks a store rejection that retrying cannot
	// fix. Terminal for the call.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotifierUnavailable marks a notifier outage. The engine treats
	// it as non-fatal: a rebuild returns zero scheduled and logs the
	// subsystem error instead of failing.
	ErrNotifierUnavailable = errors.New("notifier unavailable")
)

// Retryable reports whether the caller may retry the failed operation.
func Retryable(err error) bool {
	if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrInvalidDefinition) {
		return false
	}
	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}
