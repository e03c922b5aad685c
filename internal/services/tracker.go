package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/freshtrack-backend/internal/actor"
	"github.com/yungbote/freshtrack-backend/internal/errs"
	"github.com/yungbote/freshtrack-backend/internal/github"
	"github.com/yungbote/freshtrack-backend/internal/logger"
	"github.com/yungbote/freshtrack-backend/internal/requestdata"
	"github.com/yungbote/freshtrack-backend/internal/store"
	"github.com/yungbote/freshtrack-backend/internal/summary"
	"github.com/yungbote/freshtrack-backend/internal/types"
)

// ActivityInput is the adapter-facing shape for submitting one activity.
type ActivityInput struct {
	SessionID uuid.UUID          `json:"session_id"`
	Type      types.ActivityType `json:"type"`
	Data      types.ActivityData `json:"data"`
}

// SummaryResult pairs the productivity summary with the per-agent breakdown.
type SummaryResult struct {
	Summary    *types.ActivitySummary `json:"summary"`
	AgentStats *types.AgentStats      `json:"agent_stats"`
}

// TrackerService is the ingestion surface adapters call into. Mutations are
// routed through the actor manager so each session keeps a single writer;
// reads go straight to the registry and store, which may trail writes still
// in flight inside an actor.
type TrackerService interface {
	StartSession(ctx context.Context, projectID uuid.UUID) (*types.Session, error)
	EndSession(ctx context.Context, sessionID uuid.UUID) (*types.Session, error)
	PauseSession(ctx context.Context, sessionID uuid.UUID) (*types.Session, error)
	ResumeSession(ctx context.Context, sessionID uuid.UUID) (*types.Session, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*types.Session, error)
	ListSessions(ctx context.Context, limit int) ([]*types.Session, error)
	TrackActivity(ctx context.Context, input ActivityInput) (*types.ActivityEvent, error)
	SessionActivities(ctx context.Context, sessionID uuid.UUID) ([]*types.ActivityEvent, error)
	SessionSummary(ctx context.Context, sessionID uuid.UUID) (*SummaryResult, error)
	SessionStatus(ctx context.Context, sessionID uuid.UUID) (*actor.Status, error)
	Subscribe(ctx context.Context, sessionID uuid.UUID) (*actor.Subscription, error)
	IngestWebhook(ctx context.Context, sessionID uuid.UUID, payload map[string]any) (*types.ActivityEvent, error)
}

type trackerService struct {
	log        *logger.Logger
	registry   store.SessionRegistry
	activities store.ActivityStore
	manager    *actor.Manager
}

func NewTrackerService(registry store.SessionRegistry, activities store.ActivityStore, manager *actor.Manager, baseLog *logger.Logger) TrackerService {
	return &trackerService{
		log:        baseLog.With("service", "TrackerService"),
		registry:   registry,
		activities: activities,
		manager:    manager,
	}
}

func caller(ctx context.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, errs.ErrForbidden
	}
	return rd.UserID, nil
}

func (s *trackerService) StartSession(ctx context.Context, projectID uuid.UUID) (*types.Session, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if projectID == uuid.Nil {
		return nil, fmt.Errorf("%w: project_id required", errs.ErrValidation)
	}
	session, err := s.manager.StartSession(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	s.log.Info("session started", "session_id", session.ID, "user_id", userID, "project_id", projectID)
	return session, nil
}

func (s *trackerService) EndSession(ctx context.Context, sessionID uuid.UUID) (*types.Session, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.manager.End(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	s.log.Info("session ended", "session_id", sessionID, "duration", session.Duration)
	return session, nil
}

func (s *trackerService) PauseSession(ctx context.Context, sessionID uuid.UUID) (*types.Session, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return s.manager.Pause(ctx, userID, sessionID)
}

func (s *trackerService) ResumeSession(ctx context.Context, sessionID uuid.UUID) (*types.Session, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return s.manager.Resume(ctx, userID, sessionID)
}

func (s *trackerService) GetSession(ctx context.Context, sessionID uuid.UUID) (*types.Session, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return s.ownedSession(ctx, userID, sessionID)
}

func (s *trackerService) ListSessions(ctx context.Context, limit int) ([]*types.Session, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return s.registry.ListByUser(ctx, userID, limit)
}

func (s *trackerService) TrackActivity(ctx context.Context, input ActivityInput) (*types.ActivityEvent, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if input.SessionID == uuid.Nil {
		return nil, fmt.Errorf("%w: session_id required", errs.ErrValidation)
	}
	event := &types.ActivityEvent{
		ID:        uuid.New(),
		SessionID: input.SessionID,
		UserID:    userID,
		Type:      input.Type,
		Timestamp: time.Now().UTC(),
		Data:      input.Data,
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if err := s.manager.SubmitActivity(ctx, userID, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *trackerService) SessionActivities(ctx context.Context, sessionID uuid.UUID) ([]*types.ActivityEvent, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.activities.ListBySession(ctx, sessionID)
}

func (s *trackerService) SessionSummary(ctx context.Context, sessionID uuid.UUID) (*SummaryResult, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	activities, err := s.activities.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &SummaryResult{
		Summary:    summary.Summarize(session, activities),
		AgentStats: summary.AgentStats(activities),
	}, nil
}

func (s *trackerService) SessionStatus(ctx context.Context, sessionID uuid.UUID) (*actor.Status, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.manager.Status(ctx, sessionID)
}

func (s *trackerService) Subscribe(ctx context.Context, sessionID uuid.UUID) (*actor.Subscription, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.manager.Subscribe(ctx, sessionID)
}

// IngestWebhook classifies a GitHub payload and, when it maps to an event,
// records it through the session's actor. Unrecognized payloads and retried
// deliveries of an already recorded event return (nil, nil) so the adapter
// can acknowledge without recording anything.
func (s *trackerService) IngestWebhook(ctx context.Context, sessionID uuid.UUID, payload map[string]any) (*types.ActivityEvent, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	event, ok := github.ParseWebhook(userID, sessionID, payload)
	if !ok {
		return nil, nil
	}

	existing, err := s.activities.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fingerprint := github.Fingerprint(event.Data.GitHub)
	for _, prior := range existing {
		if prior.Data.GitHub != nil && github.Fingerprint(prior.Data.GitHub) == fingerprint {
			s.log.Debug("duplicate webhook delivery ignored", "session_id", sessionID, "fingerprint", fingerprint)
			return nil, nil
		}
	}

	if err := s.manager.SubmitActivity(ctx, userID, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *trackerService) ownedSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.Session, error) {
	session, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, errs.ErrForbidden
	}
	return session, nil
}
