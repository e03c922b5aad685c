package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/freshtrack-backend/internal/errs"
	"github.com/yungbote/freshtrack-backend/internal/logger"
	"github.com/yungbote/freshtrack-backend/internal/services"
)

type ActivityHandler struct {
	log     *logger.Logger
	tracker services.TrackerService
}

func NewActivityHandler(log *logger.Logger, tracker services.TrackerService) *ActivityHandler {
	return &ActivityHandler{log: log.With("handler", "ActivityHandler"), tracker: tracker}
}

func (h *ActivityHandler) Track(c *gin.Context) {
	var input services.ActivityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, fmt.Errorf("%w: %v", errs.ErrValidation, err))
		return
	}
	event, err := h.tracker.TrackActivity(c.Request.Context(), input)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"event": event})
}

// GitHubWebhook accepts a GitHub-style payload for the session named in the
// X-Session-ID header. Payloads that classify to nothing are acknowledged
// without recording an event.
func (h *ActivityHandler) GitHubWebhook(c *gin.Context) {
	sessionID, err := uuid.Parse(c.GetHeader("X-Session-ID"))
	if err != nil {
		RespondError(c, fmt.Errorf("%w: missing or invalid X-Session-ID header", errs.ErrValidation))
		return
	}
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		RespondError(c, fmt.Errorf("%w: %v", errs.ErrValidation, err))
		return
	}
	event, err := h.tracker.IngestWebhook(c.Request.Context(), sessionID, payload)
	if err != nil {
		RespondError(c, err)
		return
	}
	if event == nil {
		c.JSON(http.StatusOK, gin.H{"message": "event ignored"})
		return
	}
	RespondCreated(c, gin.H{"event": event})
}
