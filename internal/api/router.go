package api

import (
	"github.com/gin-gonic/gin"

	"docuchat/pkg/ratelimiter"
)

// documentRate bounds how many document-processing requests per second the
// service accepts; each one can trigger a full embedding batch.
const (
	documentRate  = 2.0
	documentBurst = 5
)

// SetupRouter configures and returns the Gin engine with every endpoint
// registered.
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	heavy := RateLimit(ratelimiter.NewTokenBucket(documentRate, documentBurst))

	r.POST("/upload", heavy, h.Upload)
	r.POST("/ask", h.Ask)
	r.POST("/summarize", heavy, h.Summarize)
	r.POST("/voice/ask", h.VoiceAsk)

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/extract_keywords", h.ExtractKeywords)
		apiGroup.POST("/search_related", heavy, h.SearchRelated)
		apiGroup.POST("/probe", heavy, h.Probe)
	}

	return r
}
