package realtime

import (
	"encoding/json"
	"time"

	"github.com/yungbote/freshtrack-backend/internal/types"
)

type EventType string

const (
	EventSessionStarted EventType = "session-started"
	EventSessionPaused  EventType = "session-paused"
	EventSessionResumed EventType = "session-resumed"
	EventSessionEnded   EventType = "session-ended"
	EventActivity       EventType = "activity"
	EventPong           EventType = "pong"
)

// Message is one broadcast frame fanned out to session observers. State
// change frames carry the session snapshot, activity frames the event.
type Message struct {
	Type      EventType            `json:"type"`
	Session   *types.Session       `json:"session,omitempty"`
	Activity  *types.ActivityEvent `json:"activity,omitempty"`
	Timestamp int64                `json:"timestamp,omitempty"`
}

func SessionMessage(event EventType, session *types.Session) Message {
	return Message{Type: event, Session: session}
}

func ActivityMessage(activity *types.ActivityEvent) Message {
	return Message{Type: EventActivity, Activity: activity}
}

// HandleControl interprets one inbound client control frame. A ping gets an
// immediate pong carrying the server clock; every other frame is ignored so
// transport adapters can layer their own extensions on top.
func HandleControl(raw []byte) (Message, bool) {
	var frame struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &frame); err != nil {
		return Message{}, false
	}
	if frame.Type != "ping" {
		return Message{}, false
	}
	return Message{Type: EventPong, Timestamp: time.Now().UnixMilli()}, true
}
