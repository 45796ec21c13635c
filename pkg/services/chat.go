package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ASHISH26940/manim-chat-api/pkg/animation"
	"github.com/ASHISH26940/manim-chat-api/pkg/db"
	"github.com/ASHISH26940/manim-chat-api/pkg/llm"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ChatStore is the persistence the chat flow needs.
type ChatStore interface {
	CreateSession(ctx context.Context) (*db.ChatSession, error)
	CreateMessage(ctx context.Context, msg *db.Message) (*db.Message, error)
}

// Launcher starts an animation run without blocking the caller.
type Launcher interface {
	Launch(messageID uuid.UUID, code string) *animation.Run
}

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

type ChatResult struct {
	SessionID      uuid.UUID `json:"sessionId"`
	MessageID      uuid.UUID `json:"messageId"`
	Response       string    `json:"response"`
	NeedsAnimation bool      `json:"needsAnimation"`
}

type ChatService struct {
	store     ChatStore
	llm       llm.Completer
	animation Launcher
	prompt    string
}

func NewChatService(store ChatStore, completer llm.Completer, launcher Launcher) *ChatService {
	return &ChatService{
		store:     store,
		llm:       completer,
		animation: launcher,
		prompt:    llm.SystemPrompt,
	}
}

// HandleMessage runs one chat turn: resolve the session, persist the user
// message, ask the model, persist its reply and, when the reply carries manim
// code, hand it to the animation launcher without waiting for it.
func (s *ChatService) HandleMessage(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if req.Message == "" {
		return nil, &ValidationError{Msg: "Message is required"}
	}

	var sessionID uuid.UUID
	if raw := strings.TrimSpace(req.SessionID); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, &ValidationError{Msg: "sessionId must be a valid UUID"}
		}
		sessionID = parsed
	} else {
		session, err := s.store.CreateSession(ctx)
		if err != nil {
			return nil, &StoreError{Op: "create session", Err: err}
		}
		sessionID = session.ID
	}

	if _, err := s.store.CreateMessage(ctx, &db.Message{
		SessionID: sessionID,
		Role:      db.RoleUser,
		Content:   req.Message,
		Status:    db.StatusCompleted,
	}); err != nil {
		return nil, &StoreError{Op: "save user message", Err: err}
	}

	raw, err := s.llm.Complete(ctx, s.prompt, req.Message)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	reply, ok := llm.ParseReply(raw)
	if !ok {
		log.Warnf("HandleMessage: model reply for session %s was not JSON, stored as text", sessionID.String())
	}

	status := db.StatusCompleted
	if reply.NeedsAnimation {
		status = db.StatusPending
	}
	prompt := sql.NullString{}
	if reply.ManimCode != nil {
		prompt = sql.NullString{String: *reply.ManimCode, Valid: true}
	}

	assistant, err := s.store.CreateMessage(ctx, &db.Message{
		SessionID:       sessionID,
		Role:            db.RoleAssistant,
		Content:         reply.Response,
		AnimationPrompt: prompt,
		NeedsAnimation:  reply.NeedsAnimation,
		Status:          status,
	})
	if err != nil {
		return nil, &StoreError{Op: "save assistant message", Err: err}
	}

	if reply.HasAnimationCode() {
		log.Infof("HandleMessage: starting animation generation for message %s", assistant.ID.String())
		s.animation.Launch(assistant.ID, *reply.ManimCode)
	}

	return &ChatResult{
		SessionID:      sessionID,
		MessageID:      assistant.ID,
		Response:       reply.Response,
		NeedsAnimation: reply.NeedsAnimation,
	}, nil
}
