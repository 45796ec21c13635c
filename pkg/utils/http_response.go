package utils

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

func ResponseWithSuccess(
	c *gin.Context,
	statusCode int,
	data interface{},
) {
	c.JSON(statusCode, data)
}

func ResponseWithError(
	c *gin.Context,
	statusCode int,
	message string,
) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{Error: message})
}
