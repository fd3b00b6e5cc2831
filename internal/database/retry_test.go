package database_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewtab/brewtab/internal/database"
)

func serializationErr() error {
	return &pgconn.PgError{Code: pgerrcode.SerializationFailure}
}

func TestWithRetry_SucceedsAfterConflict(t *testing.T) {
	attempts := 0

	got, err := database.WithRetry(func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, serializationErr()
		}

		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_GivesUp(t *testing.T) {
	attempts := 0

	_, err := database.WithRetry(func() (int, error) {
		attempts++
		return 0, serializationErr()
	})

	assert.ErrorIs(t, err, database.ErrConcurrencyConflict)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_NonRetryableError(t *testing.T) {
	attempts := 0
	boom := errors.New("boom")

	_, err := database.WithRetry(func() (int, error) {
		attempts++
		return 0, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}

func TestIsSerializationError(t *testing.T) {
	assert.True(t, database.IsSerializationError(&pgconn.PgError{Code: pgerrcode.SerializationFailure}))
	assert.True(t, database.IsSerializationError(&pgconn.PgError{Code: pgerrcode.DeadlockDetected}))

	// Wrapped errors are still recognized.
	wrapped := fmt.Errorf("applying delta: %w", &pgconn.PgError{Code: pgerrcode.DeadlockDetected})
	assert.True(t, database.IsSerializationError(wrapped))

	assert.False(t, database.IsSerializationError(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.False(t, database.IsSerializationError(errors.New("boom")))
	assert.False(t, database.IsSerializationError(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: "pending_share_transfers_code_key",
	}

	assert.True(t, database.IsUniqueViolation(err, ""))
	assert.True(t, database.IsUniqueViolation(err, "pending_share_transfers_code_key"))
	assert.False(t, database.IsUniqueViolation(err, "accounts_phone_number_key"))
	assert.False(t, database.IsUniqueViolation(errors.New("boom"), ""))
}
