package store

import (
	"context"
	"database/sql"
)

// DBTX abstracts the database handle a store operates on. Both *sql.DB and
// *sql.Tx satisfy it, so the same store code runs standalone or inside a
// transaction started by a TxRunner. Stores issue queries directly and
// never prepare statements, so the interface stays at these three methods.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
