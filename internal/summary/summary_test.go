package summary

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/freshtrack-backend/internal/types"
)

func eventOf(sessionID uuid.UUID, data types.ActivityData) *types.ActivityEvent {
	tag, _ := data.Tag()
	return &types.ActivityEvent{
		ID:        uuid.New(),
		SessionID: sessionID,
		UserID:    uuid.New(),
		Type:      tag,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

func repeat(sessionID uuid.UUID, n int, build func() types.ActivityData) []*types.ActivityEvent {
	out := make([]*types.ActivityEvent, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, eventOf(sessionID, build()))
	}
	return out
}

func TestSummarizeProductivityTiers(t *testing.T) {
	sessionID := uuid.New()
	session := &types.Session{ID: sessionID, Status: types.SessionCompleted}

	github := func() types.ActivityData {
		return types.ActivityData{GitHub: &types.GitHubActivity{Action: types.GitHubCommit, Repository: "acme/api"}}
	}
	keyboard := func() types.ActivityData {
		return types.ActivityData{Keyboard: &types.KeyboardActivity{KeyCount: 10}}
	}
	mouse := func() types.ActivityData {
		return types.ActivityData{Mouse: &types.MouseActivity{ClickCount: 2}}
	}

	cases := []struct {
		name      string
		events    []*types.ActivityEvent
		wantScore int
		wantTier  types.Productivity
	}{
		{name: "no_activity_is_low", events: nil, wantScore: 0, wantTier: types.ProductivityLow},
		{name: "five_mouse_is_low", events: repeat(sessionID, 5, mouse), wantScore: 5, wantTier: types.ProductivityLow},
		{name: "twenty_keyboard_is_medium", events: repeat(sessionID, 20, keyboard), wantScore: 40, wantTier: types.ProductivityMedium},
		{
			name:      "mixed_forty_is_medium",
			events:    append(repeat(sessionID, 10, github), repeat(sessionID, 5, keyboard)...),
			wantScore: 40,
			wantTier:  types.ProductivityMedium,
		},
		{name: "boundary_fifty_is_medium", events: repeat(sessionID, 25, keyboard), wantScore: 50, wantTier: types.ProductivityMedium},
		{name: "twenty_github_is_high", events: repeat(sessionID, 20, github), wantScore: 60, wantTier: types.ProductivityHigh},
		{name: "boundary_twenty_is_medium", events: repeat(sessionID, 20, mouse), wantScore: 20, wantTier: types.ProductivityMedium},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Summarize(session, tc.events)
			if score := Score(got); score != tc.wantScore {
				t.Fatalf("score=%d, want %d", score, tc.wantScore)
			}
			if got.Productivity != tc.wantTier {
				t.Fatalf("tier=%s, want %s", got.Productivity, tc.wantTier)
			}
		})
	}
}

func TestSummarizeCountsAndActiveTime(t *testing.T) {
	sessionID := uuid.New()
	duration := 45 * time.Minute
	session := &types.Session{ID: sessionID, Status: types.SessionCompleted, Duration: &duration}

	events := []*types.ActivityEvent{
		eventOf(sessionID, types.ActivityData{Keyboard: &types.KeyboardActivity{KeyCount: 100, ActiveTimeMS: 30000}}),
		eventOf(sessionID, types.ActivityData{Keyboard: &types.KeyboardActivity{KeyCount: 50, ActiveTimeMS: 15000}}),
		eventOf(sessionID, types.ActivityData{Mouse: &types.MouseActivity{ClickCount: 8, ActiveTimeMS: 5000}}),
		eventOf(sessionID, types.ActivityData{GitHub: &types.GitHubActivity{Action: types.GitHubPush, Repository: "acme/api"}}),
		eventOf(sessionID, types.ActivityData{AgentPrompt: &types.AgentPromptActivity{AgentName: "copilot", PromptLength: 120}}),
		eventOf(sessionID, types.ActivityData{Screenshot: &types.ScreenshotActivity{LocalAnalysisID: "an-1"}}),
	}

	got := Summarize(session, events)
	if got.SessionID != sessionID {
		t.Fatalf("session id=%s, want %s", got.SessionID, sessionID)
	}
	if got.TotalDurationMS != duration.Milliseconds() {
		t.Fatalf("total duration=%d, want %d", got.TotalDurationMS, duration.Milliseconds())
	}
	if got.KeyboardEvents != 2 || got.MouseEvents != 1 || got.GitHubEvents != 1 || got.AgentPrompts != 1 || got.Screenshots != 1 {
		t.Fatalf("counts wrong: %+v", got)
	}
	if got.ActiveTimeMS != 50000 {
		t.Fatalf("active time=%d, want 50000", got.ActiveTimeMS)
	}
	if got.IdleTimeMS != 0 {
		t.Fatalf("idle time=%d, want 0", got.IdleTimeMS)
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	sessionID := uuid.New()
	session := &types.Session{ID: sessionID, Status: types.SessionCompleted}

	events := []*types.ActivityEvent{
		eventOf(sessionID, types.ActivityData{Keyboard: &types.KeyboardActivity{KeyCount: 10, ActiveTimeMS: 1000}}),
		eventOf(sessionID, types.ActivityData{Mouse: &types.MouseActivity{ClickCount: 1, ActiveTimeMS: 2000}}),
		eventOf(sessionID, types.ActivityData{GitHub: &types.GitHubActivity{Action: types.GitHubCommit}}),
		eventOf(sessionID, types.ActivityData{AgentPrompt: &types.AgentPromptActivity{AgentName: "claude", PromptLength: 80}}),
	}
	want := Summarize(session, events)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := append([]*types.ActivityEvent(nil), events...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Summarize(session, shuffled)
		if *got != *want {
			t.Fatalf("summary depends on event order: got %+v, want %+v", got, want)
		}
	}
}

func TestAgentStats(t *testing.T) {
	sessionID := uuid.New()
	events := []*types.ActivityEvent{
		eventOf(sessionID, types.ActivityData{AgentPrompt: &types.AgentPromptActivity{AgentName: "claude", PromptLength: 100}}),
		eventOf(sessionID, types.ActivityData{AgentPrompt: &types.AgentPromptActivity{AgentName: "claude", PromptLength: 200}}),
		eventOf(sessionID, types.ActivityData{AgentPrompt: &types.AgentPromptActivity{AgentName: "copilot", PromptLength: 60}}),
		eventOf(sessionID, types.ActivityData{Keyboard: &types.KeyboardActivity{KeyCount: 5}}),
	}

	got := AgentStats(events)
	if got.TotalPrompts != 3 {
		t.Fatalf("total prompts=%d, want 3", got.TotalPrompts)
	}
	if got.AgentBreakdown["claude"] != 2 || got.AgentBreakdown["copilot"] != 1 {
		t.Fatalf("breakdown wrong: %+v", got.AgentBreakdown)
	}
	if got.AvgPromptLength != 120 {
		t.Fatalf("avg prompt length=%v, want 120", got.AvgPromptLength)
	}
}

func TestAgentStatsEmpty(t *testing.T) {
	got := AgentStats(nil)
	if got.TotalPrompts != 0 || got.AvgPromptLength != 0 {
		t.Fatalf("empty stats wrong: %+v", got)
	}
	if got.AgentBreakdown == nil {
		t.Fatalf("breakdown map should be non-nil")
	}
}
