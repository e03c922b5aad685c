package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/freshtrack-backend/internal/errs"
	"github.com/yungbote/freshtrack-backend/internal/logger"
	"github.com/yungbote/freshtrack-backend/internal/services"
)

type SessionHandler struct {
	log     *logger.Logger
	tracker services.TrackerService
}

func NewSessionHandler(log *logger.Logger, tracker services.TrackerService) *SessionHandler {
	return &SessionHandler{log: log.With("handler", "SessionHandler"), tracker: tracker}
}

func (h *SessionHandler) Start(c *gin.Context) {
	var body struct {
		ProjectID uuid.UUID `json:"project_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, fmt.Errorf("%w: %v", errs.ErrValidation, err))
		return
	}
	session, err := h.tracker.StartSession(c.Request.Context(), body.ProjectID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"session": session})
}

func (h *SessionHandler) End(c *gin.Context) {
	sessionID, err := sessionParam(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	session, err := h.tracker.EndSession(c.Request.Context(), sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": session})
}

func (h *SessionHandler) Pause(c *gin.Context) {
	sessionID, err := sessionParam(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	session, err := h.tracker.PauseSession(c.Request.Context(), sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": session})
}

func (h *SessionHandler) Resume(c *gin.Context) {
	sessionID, err := sessionParam(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	session, err := h.tracker.ResumeSession(c.Request.Context(), sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": session})
}

func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, err := sessionParam(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	session, err := h.tracker.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"session": session})
}

func (h *SessionHandler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			RespondError(c, fmt.Errorf("%w: limit must be a positive integer", errs.ErrValidation))
			return
		}
		limit = n
	}
	sessions, err := h.tracker.ListSessions(c.Request.Context(), limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"sessions": sessions})
}

func (h *SessionHandler) Activities(c *gin.Context) {
	sessionID, err := sessionParam(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	activities, err := h.tracker.SessionActivities(c.Request.Context(), sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"activities": activities})
}

func (h *SessionHandler) Summary(c *gin.Context) {
	sessionID, err := sessionParam(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	result, err := h.tracker.SessionSummary(c.Request.Context(), sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *SessionHandler) Status(c *gin.Context) {
	sessionID, err := sessionParam(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	status, err := h.tracker.SessionStatus(c.Request.Context(), sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, status)
}

func sessionParam(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("sessionId"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid session id", errs.ErrValidation)
	}
	return id, nil
}
