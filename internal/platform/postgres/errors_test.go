package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/studyforge/studyforge-api/internal/store"
)

func pgError(code string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ConstraintName: "some_constraint"}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, MapError(nil))
	})

	t.Run("no rows maps to not found", func(t *testing.T) {
		err := MapError(sql.ErrNoRows)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unique violation maps to duplicate", func(t *testing.T) {
		err := MapError(pgError(uniqueViolationCode))
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("foreign key violation maps to invalid entity", func(t *testing.T) {
		err := MapError(pgError(foreignKeyViolationCode))
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("check violation maps to invalid entity", func(t *testing.T) {
		err := MapError(pgError(checkViolationCode))
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("not null violation maps to invalid entity", func(t *testing.T) {
		err := MapError(pgError(notNullViolationCode))
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("unknown errors pass through", func(t *testing.T) {
		original := errors.New("connection reset")
		assert.Equal(t, original, MapError(original))
	})

	t.Run("wrapped pg errors are still detected", func(t *testing.T) {
		wrapped := fmt.Errorf("insert failed: %w", pgError(uniqueViolationCode))
		assert.ErrorIs(t, MapError(wrapped), store.ErrDuplicate)
	})
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(pgError(uniqueViolationCode)))
	assert.False(t, IsUniqueViolation(pgError(foreignKeyViolationCode)))
	assert.False(t, IsUniqueViolation(errors.New("plain error")))

	assert.True(t, IsForeignKeyViolation(pgError(foreignKeyViolationCode)))
	assert.True(t, IsCheckConstraintViolation(pgError(checkViolationCode)))
	assert.True(t, IsNotNullViolation(pgError(notNullViolationCode)))
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(store.ErrNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("lookup: %w", store.ErrRequestNotFound)))
	assert.False(t, IsNotFoundError(errors.New("other")))
}
