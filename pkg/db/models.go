package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageStatus tracks the animation lifecycle of a message. Messages that
// never requested an animation are created as StatusCompleted.
type MessageStatus string

const (
	StatusPending    MessageStatus = "pending"
	StatusGenerating MessageStatus = "generating"
	StatusCompleted  MessageStatus = "completed"
	StatusFailed     MessageStatus = "failed"
)

// ErrInvalidTransition is returned when a status update does not follow
// pending -> generating -> completed|failed.
var ErrInvalidTransition = errors.New("invalid message status transition")

var allowedPrior = map[MessageStatus][]MessageStatus{
	StatusGenerating: {StatusPending},
	StatusCompleted:  {StatusGenerating},
	StatusFailed:     {StatusGenerating},
}

// AllowedFrom lists the statuses a message may hold right before moving to s.
func AllowedFrom(s MessageStatus) []MessageStatus {
	return allowedPrior[s]
}

// CanTransition reports whether from -> to is a legal forward step.
func CanTransition(from, to MessageStatus) bool {
	for _, s := range allowedPrior[to] {
		if s == from {
			return true
		}
	}
	return false
}

type ChatSession struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}

type Message struct {
	ID              uuid.UUID      `db:"id"`
	SessionID       uuid.UUID      `db:"session_id"`
	Role            Role           `db:"role"`
	Content         string         `db:"content"`
	AnimationPrompt sql.NullString `db:"animation_prompt"` // manim source requested by the model
	NeedsAnimation  bool           `db:"needs_animation"`
	Status          MessageStatus  `db:"status"`
	VideoURL        sql.NullString `db:"video_url"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}
