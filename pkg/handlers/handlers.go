package handlers

import (
	"context"

	"github.com/ASHISH26940/manim-chat-api/pkg/db"
	"github.com/ASHISH26940/manim-chat-api/pkg/middleware"
	"github.com/ASHISH26940/manim-chat-api/pkg/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatService interface {
	HandleMessage(ctx context.Context, req services.ChatRequest) (*services.ChatResult, error)
}

type MessageFinder interface {
	FindMessageByID(ctx context.Context, id uuid.UUID) (*db.Message, error)
}

// HealthProber reports whether a downstream dependency answers.
type HealthProber interface {
	Health(ctx context.Context) error
}

// Handlers holds the dependencies of the HTTP endpoints.
type Handlers struct {
	Chat     ChatService
	Messages MessageFinder
	Renderer HealthProber
}

func NewHandlers(chat ChatService, messages MessageFinder, renderer HealthProber) *Handlers {
	return &Handlers{
		Chat:     chat,
		Messages: messages,
		Renderer: renderer,
	}
}

// RegisterRoutes mounts every endpoint on router. CORS middleware is expected
// to be installed by the caller with the same origins.
func (h *Handlers) RegisterRoutes(router *gin.Engine, corsOrigins []string) {
	router.OPTIONS("/*path", middleware.Preflight(corsOrigins))
	router.POST("/", h.HandleChat)
	router.GET("/messages/:id", h.GetMessage)
	router.GET("/health", h.HealthCheck)
}
