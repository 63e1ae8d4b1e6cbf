package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/pkg/ratelimiter"
)

// RateLimit rejects requests with 429 once the limiter runs dry. It guards
// the endpoints that fan out to model and academic APIs.
func RateLimit(limiter ratelimiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
