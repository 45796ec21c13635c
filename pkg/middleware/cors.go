package middleware

import (
	"net/http"
	"strings"
	"time"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// AllowedHeaders are the request headers browser clients send with a chat call.
var AllowedHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

// CORS returns the cross-origin middleware. A single "*" entry allows any origin.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: AllowedHeaders,
		MaxAge:       12 * time.Hour,
	}
	if allowsAll(origins) {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func allowsAll(origins []string) bool {
	return len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
}

// Preflight answers OPTIONS requests the CORS middleware lets through, which
// are those without an Origin header. The wildcard origin is only sent when
// every origin is allowed.
func Preflight(origins []string) gin.HandlerFunc {
	allowAll := allowsAll(origins)
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(c *gin.Context) {
		if allowAll {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin := c.GetHeader("Origin"); allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Headers", strings.Join(AllowedHeaders, ", "))
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.AbortWithStatus(http.StatusNoContent)
	}
}
