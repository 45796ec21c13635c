package handlers

import (
	"errors"
	"net/http"

	"github.com/ASHISH26940/manim-chat-api/pkg/services"
	"github.com/ASHISH26940/manim-chat-api/pkg/utils"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// HandleChat handles POST /: one user turn in, one assistant turn out.
func (h *Handlers) HandleChat(c *gin.Context) {
	var req services.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debugf("HandleChat: invalid request body: %v", err)
		utils.ResponseWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.Chat.HandleMessage(c.Request.Context(), req)
	if err != nil {
		respondChatError(c, err)
		return
	}

	utils.ResponseWithSuccess(c, http.StatusOK, result)
}

func respondChatError(c *gin.Context, err error) {
	var (
		verr *services.ValidationError
		serr *services.StoreError
		uerr *services.UpstreamError
	)
	switch {
	case errors.As(err, &verr):
		utils.ResponseWithError(c, http.StatusBadRequest, verr.Msg)
	case errors.As(err, &serr):
		log.Errorf("HandleChat: store failure during %s: %v", serr.Op, serr.Err)
		utils.ResponseWithError(c, http.StatusInternalServerError, serr.Error())
	case errors.As(err, &uerr):
		log.Errorf("HandleChat: model call failed: %v", uerr.Err)
		utils.ResponseWithError(c, http.StatusInternalServerError, uerr.Error())
	default:
		log.Errorf("HandleChat: unexpected error: %v", err)
		utils.ResponseWithError(c, http.StatusInternalServerError, err.Error())
	}
}
