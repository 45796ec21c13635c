package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrate creates the chat tables when they do not exist yet. Deployments
// backed by a managed schema can skip it.
func Migrate(conn *sqlx.DB) error {
	var stmts []string
	switch conn.DriverName() {
	case "postgres":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS chat_sessions (
				id UUID PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE TABLE IF NOT EXISTS messages (
				id UUID PRIMARY KEY,
				session_id UUID NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
				role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
				content TEXT NOT NULL,
				animation_prompt TEXT,
				needs_animation BOOLEAN NOT NULL DEFAULT FALSE,
				status TEXT NOT NULL DEFAULT 'completed'
					CHECK (status IN ('pending', 'generating', 'completed', 'failed')),
				video_url TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`ALTER TABLE messages ADD COLUMN IF NOT EXISTS needs_animation BOOLEAN NOT NULL DEFAULT FALSE`,
			`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at)`,
		}
	case "sqlite3":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS chat_sessions (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS messages (
				id TEXT PRIMARY KEY,
				session_id TEXT NOT NULL,
				role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
				content TEXT NOT NULL,
				animation_prompt TEXT,
				needs_animation BOOLEAN NOT NULL DEFAULT FALSE,
				status TEXT NOT NULL DEFAULT 'completed'
					CHECK (status IN ('pending', 'generating', 'completed', 'failed')),
				video_url TEXT,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				FOREIGN KEY(session_id) REFERENCES chat_sessions(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at)`,
		}
	default:
		return fmt.Errorf("unsupported driver for migration: %s", conn.DriverName())
	}

	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("migrate (%s): %w", conn.DriverName(), err)
		}
	}
	return nil
}
