// Package postgres provides PostgreSQL implementations of the storage
// interfaces defined in internal/store. It handles query execution,
// mapping between domain entities and database rows, and translation of
// driver-level errors (unique violations, foreign key failures, missing
// rows) into the store package's sentinel errors.
package postgres
