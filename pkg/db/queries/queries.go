package queries

import "github.com/jmoiron/sqlx"

// Queries runs the chat statements against one connection pool. Statements
// are written with ? placeholders and rebound for the active driver.
type Queries struct {
	db *sqlx.DB
}

func New(conn *sqlx.DB) *Queries {
	return &Queries{db: conn}
}
