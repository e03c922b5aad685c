package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UnixMilli()})
}

// ServiceDescriptor is the root endpoint clients hit to discover the API.
func ServiceDescriptor(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "FreshTrack",
		"version":     "1.0.0",
		"description": "Privacy-focused developer activity tracking",
		"endpoints": gin.H{
			"health": "GET /healthcheck",
			"sessions": gin.H{
				"start":      "POST /api/sessions/start",
				"end":        "POST /api/sessions/:sessionId/end",
				"pause":      "POST /api/sessions/:sessionId/pause",
				"resume":     "POST /api/sessions/:sessionId/resume",
				"get":        "GET /api/sessions/:sessionId",
				"list":       "GET /api/sessions",
				"activities": "GET /api/sessions/:sessionId/activities",
				"summary":    "GET /api/sessions/:sessionId/summary",
				"status":     "GET /api/sessions/:sessionId/status",
				"stream":     "GET /api/sessions/:sessionId/stream",
			},
			"activity": gin.H{"track": "POST /api/activity"},
			"webhooks": gin.H{"github": "POST /api/webhooks/github"},
		},
		"privacy": gin.H{
			"screenshotProcessing": "local only, classifications never raw images",
			"llmAnalysis":          "local models only",
		},
	})
}
