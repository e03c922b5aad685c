package types

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
)

// Session is one bounded tracking interval for a user against a project.
// EndTime and Duration are set exactly once, when the session completes.
type Session struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	ProjectID uuid.UUID      `json:"project_id"`
	StartTime time.Time      `json:"start_time"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	Duration  *time.Duration `json:"duration,omitempty"`
	Status    SessionStatus  `json:"status"`
}

// ValidEdge reports whether moving from one status to another is a legal
// state-machine edge. Completed is terminal; everything out of it is illegal,
// as is any self-edge (a pause of an already paused session must fail loudly
// so the broadcast audit trail stays accurate).
func ValidEdge(from, to SessionStatus) bool {
	switch from {
	case SessionActive:
		return to == SessionPaused || to == SessionCompleted
	case SessionPaused:
		return to == SessionActive || to == SessionCompleted
	default:
		return false
	}
}

// Complete stamps the terminal fields. Duration is derived from StartTime and
// never recomputed once set.
func (s *Session) Complete(now time.Time) {
	end := now
	d := end.Sub(s.StartTime)
	s.EndTime = &end
	s.Duration = &d
	s.Status = SessionCompleted
}
