package types

import "github.com/google/uuid"

type Productivity string

const (
	ProductivityHigh   Productivity = "high"
	ProductivityMedium Productivity = "medium"
	ProductivityLow    Productivity = "low"
)

// ActivitySummary is a derived view over one session's activity set. It is
// computed fresh on every request and never persisted.
//
// IdleTimeMS is carried for wire compatibility but no signal feeds it today,
// so it is always 0.
type ActivitySummary struct {
	SessionID       uuid.UUID    `json:"session_id"`
	TotalDurationMS int64        `json:"total_duration_ms"`
	ActiveTimeMS    int64        `json:"active_time_ms"`
	IdleTimeMS      int64        `json:"idle_time_ms"`
	GitHubEvents    int          `json:"github_events"`
	KeyboardEvents  int          `json:"keyboard_events"`
	MouseEvents     int          `json:"mouse_events"`
	AgentPrompts    int          `json:"agent_prompts"`
	Screenshots     int          `json:"screenshots"`
	Productivity    Productivity `json:"productivity"`
}

// AgentStats breaks agent-prompt usage down per agent for one session.
type AgentStats struct {
	TotalPrompts    int            `json:"total_prompts"`
	AgentBreakdown  map[string]int `json:"agent_breakdown"`
	AvgPromptLength float64        `json:"avg_prompt_length"`
}
