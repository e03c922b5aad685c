package summary

import (
	"github.com/yungbote/freshtrack-backend/internal/types"
)

// Productivity scoring weights and tier thresholds. These are a fixed wire
// contract shared with existing clients; do not tune them.
const (
	githubWeight      = 3
	keyboardWeight    = 2
	mouseWeight       = 1
	agentPromptWeight = 2

	highThreshold = 50
	lowThreshold  = 20
)

// Summarize aggregates one session's activity set into an ActivitySummary.
// It is a pure function: deterministic for the same input multiset and it
// never touches storage. Idle time is carried but has no feeding signal, so
// it stays 0.
func Summarize(session *types.Session, activities []*types.ActivityEvent) *types.ActivitySummary {
	out := &types.ActivitySummary{
		SessionID:    session.ID,
		Productivity: types.ProductivityMedium,
	}
	if session.Duration != nil {
		out.TotalDurationMS = session.Duration.Milliseconds()
	}

	for _, event := range activities {
		switch event.Type {
		case types.ActivityGitHub:
			out.GitHubEvents++
		case types.ActivityKeyboard:
			out.KeyboardEvents++
			if event.Data.Keyboard != nil {
				out.ActiveTimeMS += event.Data.Keyboard.ActiveTimeMS
			}
		case types.ActivityMouse:
			out.MouseEvents++
			if event.Data.Mouse != nil {
				out.ActiveTimeMS += event.Data.Mouse.ActiveTimeMS
			}
		case types.ActivityAgentPrompt:
			out.AgentPrompts++
		case types.ActivityScreenshot:
			out.Screenshots++
		}
	}

	score := Score(out)
	switch {
	case score > highThreshold:
		out.Productivity = types.ProductivityHigh
	case score < lowThreshold:
		out.Productivity = types.ProductivityLow
	}
	return out
}

// Score computes the weighted activity score a summary's tier derives from.
func Score(s *types.ActivitySummary) int {
	return s.GitHubEvents*githubWeight +
		s.KeyboardEvents*keyboardWeight +
		s.MouseEvents*mouseWeight +
		s.AgentPrompts*agentPromptWeight
}

// AgentStats breaks down agent-prompt usage across the given events.
func AgentStats(activities []*types.ActivityEvent) *types.AgentStats {
	stats := &types.AgentStats{AgentBreakdown: map[string]int{}}
	totalPromptLength := 0
	for _, event := range activities {
		if event.Type != types.ActivityAgentPrompt || event.Data.AgentPrompt == nil {
			continue
		}
		stats.TotalPrompts++
		stats.AgentBreakdown[event.Data.AgentPrompt.AgentName]++
		totalPromptLength += event.Data.AgentPrompt.PromptLength
	}
	if stats.TotalPrompts > 0 {
		stats.AvgPromptLength = float64(totalPromptLength) / float64(stats.TotalPrompts)
	}
	return stats
}
