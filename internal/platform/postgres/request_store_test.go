package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyforge/studyforge-api/internal/domain"
)

func testStoreLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingDB captures the query text and arguments so assertions can run
// without a live database. Calls fail so the store returns before scanning.
type recordingDB struct {
	query string
	args  []any
}

func (r *recordingDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	r.query = query
	r.args = args
	return nil, errors.New("recording only")
}

func (r *recordingDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	r.query = query
	r.args = args
	return nil, errors.New("recording only")
}

func (r *recordingDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	panic("not used")
}

func TestFindByStatusLimitClause(t *testing.T) {
	t.Parallel()

	t.Run("positive limit bounds the query", func(t *testing.T) {
		db := &recordingDB{}
		s := NewPostgresStudyRequestStore(db, testStoreLogger())

		_, err := s.FindByStatus(context.Background(), domain.StudyRequestStatusQueued, 25)
		require.Error(t, err)

		assert.Contains(t, db.query, "LIMIT")
		assert.Equal(t, []any{domain.StudyRequestStatusQueued, 25}, db.args)
	})

	t.Run("zero limit fetches every matching row", func(t *testing.T) {
		db := &recordingDB{}
		s := NewPostgresStudyRequestStore(db, testStoreLogger())

		_, err := s.FindByStatus(context.Background(), domain.StudyRequestStatusProcessing, 0)
		require.Error(t, err)

		assert.NotContains(t, db.query, "LIMIT")
		assert.Equal(t, []any{domain.StudyRequestStatusProcessing}, db.args)
	})
}
