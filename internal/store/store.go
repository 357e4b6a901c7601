// Package store is the MySQL persistence layer. All SQL lives here;
// services depend on narrow interfaces that *Store satisfies, so the
// quota and subscription logic can be exercised against in-memory
// fakes. Every query is parameterized; no query text is ever built
// from request data.
package store

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Store wraps the primary read/write connection pool.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}
