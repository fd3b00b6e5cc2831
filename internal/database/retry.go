package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConcurrencyConflict is returned after a conflicting operation could not
// be committed within the retry budget.
var ErrConcurrencyConflict = errors.New("concurrency conflict")

const maxAttempts = 3

// WithRetry runs fn, retrying on serialization failures and deadlocks.
// Conflicts of this kind are expected under per-row locking when two
// operations touch the same accounts; the retry re-runs the whole unit of
// work so every check is re-validated against the committed state.
func WithRetry[T any](fn func() (T, error)) (T, error) {
	var (
		res T
		err error
	)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		res, err = fn()
		if err == nil || !IsSerializationError(err) {
			return res, err
		}
	}

	var zero T

	return zero, fmt.Errorf("%w: %w", ErrConcurrencyConflict, err)
}

// IsSerializationError reports whether err is a transient locking conflict
// that is safe to retry from the top of the unit of work.
func IsSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return true
	}

	return false
}

// IsUniqueViolation reports whether err is a unique-constraint violation,
// optionally on a specific constraint name.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	if pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}

	return constraint == "" || pgErr.ConstraintName == constraint
}
