package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver for local runs and tests
	log "github.com/sirupsen/logrus"
)

// Open connects to the database and verifies the connection pool.
// driver is either "postgres" or "sqlite3".
func Open(driver, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.Connect(driver, dsn)
	if err != nil {
		log.Errorf("Failed to connect to database: %v", err)
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	switch driver {
	case "sqlite3":
		// A single connection keeps in-memory databases shared and serializes writers.
		conn.SetMaxOpenConns(1)
		if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	default:
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(10)
	}

	log.Info("Database connection pool initialized successfully.")
	return conn, nil
}

// Close releases the connection pool.
func Close(conn *sqlx.DB) {
	if conn == nil {
		return
	}
	if err := conn.Close(); err != nil {
		log.Errorf("Error closing database connection: %v", err)
		return
	}
	log.Info("Database connection pool closed.")
}
