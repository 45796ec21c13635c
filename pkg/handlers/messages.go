package handlers

import (
	"net/http"
	"time"

	"github.com/ASHISH26940/manim-chat-api/pkg/db"
	"github.com/ASHISH26940/manim-chat-api/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// MessageResponse is the client view of a stored message.
type MessageResponse struct {
	ID             uuid.UUID        `json:"id"`
	SessionID      uuid.UUID        `json:"sessionId"`
	Role           db.Role          `json:"role"`
	Content        string           `json:"content"`
	Status         db.MessageStatus `json:"status"`
	VideoURL       string           `json:"videoUrl,omitempty"`
	NeedsAnimation bool             `json:"needsAnimation"`
	CreatedAt      string           `json:"createdAt"`
	UpdatedAt      string           `json:"updatedAt"`
}

func toMessageResponse(m *db.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		SessionID:      m.SessionID,
		Role:           m.Role,
		Content:        m.Content,
		Status:         m.Status,
		VideoURL:       m.VideoURL.String,
		NeedsAnimation: m.NeedsAnimation,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      m.UpdatedAt.Format(time.RFC3339),
	}
}

// GetMessage handles GET /messages/:id, the polling path for animation status.
func (h *Handlers) GetMessage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid message ID format")
		return
	}

	msg, err := h.Messages.FindMessageByID(c.Request.Context(), id)
	if err != nil {
		log.Errorf("GetMessage: error fetching message %s: %v", id.String(), err)
		utils.ResponseWithError(c, http.StatusInternalServerError, "Failed to retrieve message")
		return
	}
	if msg == nil {
		utils.ResponseWithError(c, http.StatusNotFound, "Message not found")
		return
	}

	utils.ResponseWithSuccess(c, http.StatusOK, toMessageResponse(msg))
}
