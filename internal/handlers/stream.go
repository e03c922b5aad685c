package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/freshtrack-backend/internal/errs"
	"github.com/yungbote/freshtrack-backend/internal/logger"
	"github.com/yungbote/freshtrack-backend/internal/realtime"
	"github.com/yungbote/freshtrack-backend/internal/services"
)

type StreamHandler struct {
	log       *logger.Logger
	tracker   services.TrackerService
	heartbeat time.Duration
}

func NewStreamHandler(log *logger.Logger, tracker services.TrackerService, heartbeat time.Duration) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &StreamHandler{
		log:       log.With("handler", "StreamHandler"),
		tracker:   tracker,
		heartbeat: heartbeat,
	}
}

// Stream serves the live broadcast feed of one session over SSE. The
// subscription is released when the client goes away or the actor is torn
// down at session end.
func (h *StreamHandler) Stream(c *gin.Context) {
	sessionID, err := sessionParam(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	sub, err := h.tracker.Subscribe(c.Request.Context(), sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		RespondError(c, fmt.Errorf("streaming unsupported"))
		return
	}

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": ping\n\n")
			flusher.Flush()
		case msg, open := <-sub.Messages():
			if !open {
				return
			}
			raw, err := json.Marshal(msg)
			if err != nil {
				h.log.Warn("failed to marshal stream message", "error", err)
				continue
			}
			fmt.Fprintf(c.Writer, "event: message\ndata: %s\n\n", raw)
			flusher.Flush()
		}
	}
}

// Control accepts one inbound control frame from a streaming client. Pings
// get an immediate pong; anything else is ignored with 204.
func (h *StreamHandler) Control(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondError(c, fmt.Errorf("%w: %v", errs.ErrValidation, err))
		return
	}
	reply, ok := realtime.HandleControl(raw)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	RespondOK(c, reply)
}
