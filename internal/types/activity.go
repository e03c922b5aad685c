package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/freshtrack-backend/internal/errs"
)

type ActivityType string

const (
	ActivityGitHub      ActivityType = "github"
	ActivityKeyboard    ActivityType = "keyboard"
	ActivityMouse       ActivityType = "mouse"
	ActivityAgentPrompt ActivityType = "agent-prompt"
	ActivityScreenshot  ActivityType = "screenshot"
)

type GitHubAction string

const (
	GitHubCommit      GitHubAction = "commit"
	GitHubPush        GitHubAction = "push"
	GitHubPullRequest GitHubAction = "pull-request"
	GitHubIssue       GitHubAction = "issue"
	GitHubReview      GitHubAction = "review"
	GitHubComment     GitHubAction = "comment"
)

// ActivityEvent is one immutable fact recorded during a session. Events are
// never updated or deleted; ordering for replay is the session index order,
// not the wall-clock timestamp.
type ActivityEvent struct {
	ID        uuid.UUID    `json:"id"`
	SessionID uuid.UUID    `json:"session_id"`
	UserID    uuid.UUID    `json:"user_id"`
	Type      ActivityType `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Data      ActivityData `json:"data"`
}

type GitHubActivity struct {
	Action     GitHubAction `json:"action"`
	Repository string       `json:"repository"`
	Branch     string       `json:"branch,omitempty"`
	CommitSHA  string       `json:"commit_sha,omitempty"`
	URL        string       `json:"url,omitempty"`
}

type KeyboardActivity struct {
	KeyCount     int   `json:"key_count"`
	ActiveTimeMS int64 `json:"active_time_ms"`
	IdleTimeMS   int64 `json:"idle_time_ms"`
}

type MouseActivity struct {
	ClickCount   int     `json:"click_count"`
	MoveDistance float64 `json:"move_distance"`
	ActiveTimeMS int64   `json:"active_time_ms"`
}

type AgentPromptActivity struct {
	AgentName      string `json:"agent_name"`
	PromptLength   int    `json:"prompt_length"`
	ResponseLength int    `json:"response_length,omitempty"`
	Context        string `json:"context,omitempty"`
}

// ScreenshotActivity carries only the locally computed classification. Raw
// screenshots never reach the backend.
type ScreenshotActivity struct {
	LocalAnalysisID string         `json:"local_analysis_id"`
	Analysis        *LocalAnalysis `json:"analysis,omitempty"`
	CapturedAt      time.Time      `json:"captured_at"`
}

type LocalAnalysis struct {
	Activity         string  `json:"activity"`
	Confidence       float64 `json:"confidence"`
	ProcessedLocally bool    `json:"processed_locally"`
	Summary          string  `json:"summary,omitempty"`
}

// ActivityData is a closed tagged union: exactly one variant pointer is set,
// and its tag must match the owning event's Type.
type ActivityData struct {
	GitHub      *GitHubActivity
	Keyboard    *KeyboardActivity
	Mouse       *MouseActivity
	AgentPrompt *AgentPromptActivity
	Screenshot  *ScreenshotActivity
}

// Tag returns the type tag of the populated variant. ok is false when zero or
// more than one variant is set.
func (d ActivityData) Tag() (ActivityType, bool) {
	var (
		tag ActivityType
		n   int
	)
	if d.GitHub != nil {
		tag, n = ActivityGitHub, n+1
	}
	if d.Keyboard != nil {
		tag, n = ActivityKeyboard, n+1
	}
	if d.Mouse != nil {
		tag, n = ActivityMouse, n+1
	}
	if d.AgentPrompt != nil {
		tag, n = ActivityAgentPrompt, n+1
	}
	if d.Screenshot != nil {
		tag, n = ActivityScreenshot, n+1
	}
	return tag, n == 1
}

func (d ActivityData) MarshalJSON() ([]byte, error) {
	switch {
	case d.GitHub != nil:
		return json.Marshal(struct {
			Type ActivityType `json:"type"`
			*GitHubActivity
		}{ActivityGitHub, d.GitHub})
	case d.Keyboard != nil:
		return json.Marshal(struct {
			Type ActivityType `json:"type"`
			*KeyboardActivity
		}{ActivityKeyboard, d.Keyboard})
	case d.Mouse != nil:
		return json.Marshal(struct {
			Type ActivityType `json:"type"`
			*MouseActivity
		}{ActivityMouse, d.Mouse})
	case d.AgentPrompt != nil:
		return json.Marshal(struct {
			Type ActivityType `json:"type"`
			*AgentPromptActivity
		}{ActivityAgentPrompt, d.AgentPrompt})
	case d.Screenshot != nil:
		return json.Marshal(struct {
			Type ActivityType `json:"type"`
			*ScreenshotActivity
		}{ActivityScreenshot, d.Screenshot})
	}
	return nil, fmt.Errorf("%w: activity data has no variant", errs.ErrValidation)
}

func (d *ActivityData) UnmarshalJSON(raw []byte) error {
	var probe struct {
		Type ActivityType `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return err
	}
	*d = ActivityData{}
	switch probe.Type {
	case ActivityGitHub:
		d.GitHub = &GitHubActivity{}
		return json.Unmarshal(raw, d.GitHub)
	case ActivityKeyboard:
		d.Keyboard = &KeyboardActivity{}
		return json.Unmarshal(raw, d.Keyboard)
	case ActivityMouse:
		d.Mouse = &MouseActivity{}
		return json.Unmarshal(raw, d.Mouse)
	case ActivityAgentPrompt:
		d.AgentPrompt = &AgentPromptActivity{}
		return json.Unmarshal(raw, d.AgentPrompt)
	case ActivityScreenshot:
		d.Screenshot = &ScreenshotActivity{}
		return json.Unmarshal(raw, d.Screenshot)
	}
	return fmt.Errorf("%w: unknown activity type %q", errs.ErrValidation, probe.Type)
}

// Validate enforces the event invariants: ids present, exactly one data
// variant, and the variant tag matching the event type.
func (e *ActivityEvent) Validate() error {
	if e.ID == uuid.Nil || e.SessionID == uuid.Nil || e.UserID == uuid.Nil {
		return fmt.Errorf("%w: event missing id, session_id or user_id", errs.ErrValidation)
	}
	tag, ok := e.Data.Tag()
	if !ok {
		return fmt.Errorf("%w: event data must carry exactly one variant", errs.ErrValidation)
	}
	if tag != e.Type {
		return fmt.Errorf("%w: event type %q does not match data tag %q", errs.ErrValidation, e.Type, tag)
	}
	return nil
}
