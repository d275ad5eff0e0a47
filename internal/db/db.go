// Package db provides typed query access to the analytics database.
// Row and Params structs mirror the table schema in internal/database.
package db

import "database/sql"

// Queries wraps a database handle with typed query methods.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance backed by the given database.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}
