package queries

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ASHISH26940/manim-chat-api/pkg/db"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// CreateSession inserts an empty chat session and reads it back.
func (q *Queries) CreateSession(ctx context.Context) (*db.ChatSession, error) {
	session := &db.ChatSession{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
	}

	_, err := q.db.NamedExecContext(ctx,
		`INSERT INTO chat_sessions (id, created_at) VALUES (:id, :created_at)`, session)
	if err != nil {
		log.Errorf("Error creating chat session: %v", err)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	created, err := q.FindSessionByID(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("no rows returned after session creation")
	}

	log.Infof("Chat session created (ID: %s)", created.ID.String())
	return created, nil
}

// FindSessionByID returns nil, nil when the session does not exist.
func (q *Queries) FindSessionByID(ctx context.Context, id uuid.UUID) (*db.ChatSession, error) {
	session := &db.ChatSession{}
	err := q.db.GetContext(ctx, session,
		q.db.Rebind(`SELECT id, created_at FROM chat_sessions WHERE id = ?`), id)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Debugf("Chat session '%s' not found.", id.String())
			return nil, nil
		}
		log.Errorf("Error finding chat session '%s': %v", id.String(), err)
		return nil, fmt.Errorf("error finding session by ID: %w", err)
	}
	return session, nil
}
