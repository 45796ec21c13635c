package queries

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ASHISH26940/manim-chat-api/pkg/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

const messageColumns = `id, session_id, role, content, animation_prompt, needs_animation, status, video_url, created_at, updated_at`

// CreateMessage inserts a message and returns the stored row.
// Status defaults to completed when unset.
func (q *Queries) CreateMessage(ctx context.Context, msg *db.Message) (*db.Message, error) {
	if msg.Status == "" {
		msg.Status = db.StatusCompleted
	}
	now := time.Now().UTC()
	msg.ID = uuid.New()
	msg.CreatedAt = now
	msg.UpdatedAt = now

	query := `
		INSERT INTO messages (` + messageColumns + `)
		VALUES (:id, :session_id, :role, :content, :animation_prompt, :needs_animation, :status, :video_url, :created_at, :updated_at)`

	if _, err := q.db.NamedExecContext(ctx, query, msg); err != nil {
		log.Errorf("Error creating %s message in session %s: %v", msg.Role, msg.SessionID.String(), err)
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	created, err := q.FindMessageByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("no rows returned after message creation")
	}

	log.Infof("Message %s (%s, %s) created in session %s", created.ID.String(), created.Role, created.Status, created.SessionID.String())
	return created, nil
}

// FindMessageByID returns nil, nil when the message does not exist.
func (q *Queries) FindMessageByID(ctx context.Context, id uuid.UUID) (*db.Message, error) {
	msg := &db.Message{}
	err := q.db.GetContext(ctx, msg,
		q.db.Rebind(`SELECT `+messageColumns+` FROM messages WHERE id = ?`), id)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Debugf("Message '%s' not found.", id.String())
			return nil, nil
		}
		log.Errorf("Error finding message '%s': %v", id.String(), err)
		return nil, fmt.Errorf("error finding message by ID: %w", err)
	}
	return msg, nil
}

// TransitionMessage moves a message to status `to`, optionally recording the
// video URL. The update only applies when the current status is a legal
// predecessor of `to`; otherwise db.ErrInvalidTransition is returned, or
// sql.ErrNoRows when the message is missing.
func (q *Queries) TransitionMessage(ctx context.Context, id uuid.UUID, to db.MessageStatus, videoURL *string) error {
	from := db.AllowedFrom(to)
	if len(from) == 0 {
		return fmt.Errorf("%w: nothing moves to %s", db.ErrInvalidTransition, to)
	}

	url := sql.NullString{}
	if videoURL != nil {
		url = sql.NullString{String: *videoURL, Valid: true}
	}

	query, args, err := sqlx.In(
		`UPDATE messages SET status = ?, video_url = COALESCE(?, video_url), updated_at = ?
		WHERE id = ? AND status IN (?)`,
		to, url, time.Now().UTC(), id, from)
	if err != nil {
		return fmt.Errorf("build status update: %w", err)
	}

	result, err := q.db.ExecContext(ctx, q.db.Rebind(query), args...)
	if err != nil {
		log.Errorf("Error updating message %s to '%s': %v", id.String(), to, err)
		return fmt.Errorf("failed to update message status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		current, err := q.FindMessageByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			log.Warnf("No message found with ID '%s' for status update.", id.String())
			return sql.ErrNoRows
		}
		log.Warnf("Rejected status change %s -> %s for message %s", current.Status, to, id.String())
		return fmt.Errorf("%w: %s -> %s", db.ErrInvalidTransition, current.Status, to)
	}

	log.Infof("Message %s status set to '%s'.", id.String(), to)
	return nil
}
