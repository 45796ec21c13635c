package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// HealthCheck reports the API as up; the renderer state is informational.
func (h *Handlers) HealthCheck(c *gin.Context) {
	log.Debug("Health check endpoint hit")

	renderer := "unknown"
	if h.Renderer != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := h.Renderer.Health(ctx); err != nil {
			log.Warnf("HealthCheck: renderer unreachable: %v", err)
			renderer = "unreachable"
		} else {
			renderer = "ok"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"message":  "Manim Chat API is running",
		"renderer": renderer,
	})
}
