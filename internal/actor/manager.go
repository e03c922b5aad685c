package actor

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/freshtrack-backend/internal/logger"
	"github.com/yungbote/freshtrack-backend/internal/store"
	"github.com/yungbote/freshtrack-backend/internal/types"
)

// Manager routes every write for a session id through the one live actor for
// it (actor-per-key). Writes for a persisted session with no live actor get
// one spun up with the stored state adopted, so the single-writer discipline
// holds across restarts. Actors are fully independent of each other.
//
// Only sessions that can still change state are cached: a completed session
// is served by a throwaway actor that is stopped as soon as the call returns,
// so ended sessions never pin a goroutine.
type Manager struct {
	log        *logger.Logger
	registry   store.SessionRegistry
	activities store.ActivityStore

	mu     sync.Mutex
	actors map[uuid.UUID]*SessionActor
}

func NewManager(registry store.SessionRegistry, activities store.ActivityStore, baseLog *logger.Logger) *Manager {
	return &Manager{
		log:        baseLog.With("component", "ActorManager"),
		registry:   registry,
		activities: activities,
		actors:     make(map[uuid.UUID]*SessionActor),
	}
}

// StartSession creates a fresh actor, starts a session on it and registers
// it as the writer for that session id.
func (m *Manager) StartSession(ctx context.Context, userID, projectID uuid.UUID) (*types.Session, error) {
	a := New(m.registry, m.activities, m.log)
	session, err := a.Start(ctx, userID, projectID)
	if err != nil {
		a.Stop()
		return nil, err
	}
	m.mu.Lock()
	m.actors[session.ID] = a
	m.mu.Unlock()
	return session, nil
}

func (m *Manager) Pause(ctx context.Context, callerID, sessionID uuid.UUID) (*types.Session, error) {
	a, release, err := m.actorFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()
	return a.Pause(ctx, callerID)
}

func (m *Manager) Resume(ctx context.Context, callerID, sessionID uuid.UUID) (*types.Session, error) {
	a, release, err := m.actorFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()
	return a.Resume(ctx, callerID)
}

// End completes the session and retires its actor. The actor broadcasts
// session-ended to observers before their channels close.
func (m *Manager) End(ctx context.Context, callerID, sessionID uuid.UUID) (*types.Session, error) {
	a, release, err := m.actorFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()
	session, err := a.End(ctx, callerID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	delete(m.actors, sessionID)
	m.mu.Unlock()
	a.Stop()
	return session, nil
}

func (m *Manager) SubmitActivity(ctx context.Context, callerID uuid.UUID, event *types.ActivityEvent) error {
	a, release, err := m.actorFor(ctx, event.SessionID)
	if err != nil {
		return err
	}
	defer release()
	return a.SubmitActivity(ctx, callerID, event)
}

func (m *Manager) Status(ctx context.Context, sessionID uuid.UUID) (*Status, error) {
	a, release, err := m.actorFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()
	return a.Status(ctx)
}

// Subscribe attaches an observer to the session's broadcast stream. For a
// completed session the returned channel closes right away: nothing will
// ever broadcast on it again.
func (m *Manager) Subscribe(ctx context.Context, sessionID uuid.UUID) (*Subscription, error) {
	a, release, err := m.actorFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()
	return a.Subscribe(ctx)
}

// Shutdown stops every live actor; used on process exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.actors {
		a.Stop()
		delete(m.actors, id)
	}
}

// actorFor resolves the writer for a session id. The caller must invoke the
// returned release function once it is done with the actor; for cached actors
// it is a no-op, for throwaway actors it tears them down.
//
// Storage loads happen outside the manager lock so one slow adoption cannot
// stall calls for unrelated sessions; a recheck under the lock keeps at most
// one cached actor per id.
func (m *Manager) actorFor(ctx context.Context, sessionID uuid.UUID) (*SessionActor, func(), error) {
	m.mu.Lock()
	if a, ok := m.actors[sessionID]; ok {
		m.mu.Unlock()
		return a, func() {}, nil
	}
	m.mu.Unlock()

	session, err := m.registry.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	events, err := m.activities.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	a := New(m.registry, m.activities, m.log)
	if err := a.Adopt(ctx, session, events); err != nil {
		a.Stop()
		return nil, nil, err
	}

	if session.Status == types.SessionCompleted {
		return a, a.Stop, nil
	}

	m.mu.Lock()
	if existing, ok := m.actors[sessionID]; ok {
		m.mu.Unlock()
		// Another call adopted the same session while we were loading; that
		// actor is the writer, ours never served anything.
		a.Stop()
		return existing, func() {}, nil
	}
	m.actors[sessionID] = a
	m.mu.Unlock()
	return a, func() {}, nil
}
