package actor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/freshtrack-backend/internal/errs"
	"github.com/yungbote/freshtrack-backend/internal/logger"
	"github.com/yungbote/freshtrack-backend/internal/realtime"
	"github.com/yungbote/freshtrack-backend/internal/store"
	"github.com/yungbote/freshtrack-backend/internal/types"
)

const (
	inboxSize      = 64
	subscriberSize = 16
)

// SessionActor owns the authoritative in-memory state of one session and is
// the single writer for it. Every call is funneled through one inbox and
// processed to completion (mutate, persist, broadcast, respond) before the
// next is accepted, so broadcasts are observed in commit order and appends
// never interleave. No locks are needed around the actor-owned fields.
type SessionActor struct {
	log        *logger.Logger
	registry   store.SessionRegistry
	activities store.ActivityStore

	inbox    chan func()
	done     chan struct{}
	stopOnce sync.Once
	now      func() time.Time

	// Owned by the run loop; never touched from outside it.
	session *types.Session
	events  []*types.ActivityEvent
	subs    map[uuid.UUID]*Subscription
}

// Status is the snapshot returned by SessionActor.Status.
type Status struct {
	Session       *types.Session `json:"session"`
	ActivityCount int            `json:"activity_count"`
	ObserverCount int            `json:"observer_count"`
}

func New(registry store.SessionRegistry, activities store.ActivityStore, baseLog *logger.Logger) *SessionActor {
	a := &SessionActor{
		log:        baseLog.With("component", "SessionActor"),
		registry:   registry,
		activities: activities,
		inbox:      make(chan func(), inboxSize),
		done:       make(chan struct{}),
		now:        time.Now,
		subs:       make(map[uuid.UUID]*Subscription),
	}
	go a.run()
	return a
}

func (a *SessionActor) run() {
	for {
		select {
		case fn := <-a.inbox:
			fn()
		case <-a.done:
			// Drain anything already accepted, then release observers.
			for {
				select {
				case fn := <-a.inbox:
					fn()
				default:
					for _, sub := range a.subs {
						sub.closeChannel()
					}
					a.subs = map[uuid.UUID]*Subscription{}
					return
				}
			}
		}
	}
}

// do runs fn inside the actor loop and waits for it to finish.
func (a *SessionActor) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case a.inbox <- func() { fn(); close(finished) }:
	case <-a.done:
		return errs.ErrNoActiveSession
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-a.done:
		// Teardown raced the enqueue. The drain loop may still have run fn;
		// check once before reporting the actor gone.
		select {
		case <-finished:
			return nil
		default:
			return errs.ErrNoActiveSession
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop tears the actor down. Calls already accepted still run; later calls
// fail with ErrNoActiveSession. Observer channels are closed on exit.
func (a *SessionActor) Stop() {
	a.stopOnce.Do(func() { close(a.done) })
}

// Adopt loads persisted state into a fresh actor, making it the single
// writer for an already existing session. Only the manager calls this,
// before the actor is visible to anyone else.
func (a *SessionActor) Adopt(ctx context.Context, session *types.Session, events []*types.ActivityEvent) error {
	return a.do(ctx, func() {
		a.session = session
		a.events = events
	})
}

// Start creates the session and broadcasts session-started.
func (a *SessionActor) Start(ctx context.Context, userID, projectID uuid.UUID) (*types.Session, error) {
	var (
		session *types.Session
		err     error
	)
	doErr := a.do(ctx, func() {
		if a.session != nil {
			err = fmt.Errorf("%w: actor already owns session %s", errs.ErrInvalidTransition, a.session.ID)
			return
		}
		session, err = a.registry.Create(ctx, userID, projectID)
		if err != nil {
			return
		}
		a.session = session
		a.broadcast(realtime.SessionMessage(realtime.EventSessionStarted, snapshot(session)))
	})
	if doErr != nil {
		return nil, doErr
	}
	if err != nil {
		return nil, err
	}
	return snapshot(session), nil
}

func (a *SessionActor) Pause(ctx context.Context, callerID uuid.UUID) (*types.Session, error) {
	return a.transition(ctx, callerID, types.SessionPaused, realtime.EventSessionPaused)
}

func (a *SessionActor) Resume(ctx context.Context, callerID uuid.UUID) (*types.Session, error) {
	return a.transition(ctx, callerID, types.SessionActive, realtime.EventSessionResumed)
}

func (a *SessionActor) End(ctx context.Context, callerID uuid.UUID) (*types.Session, error) {
	return a.transition(ctx, callerID, types.SessionCompleted, realtime.EventSessionEnded)
}

// transition applies one state-machine edge. The in-memory copy is replaced
// only after the persist succeeds, so a storage failure leaves the actor
// exactly as it was and it stays usable.
func (a *SessionActor) transition(ctx context.Context, callerID uuid.UUID, target types.SessionStatus, event realtime.EventType) (*types.Session, error) {
	var (
		session *types.Session
		err     error
	)
	doErr := a.do(ctx, func() {
		if a.session == nil {
			err = errs.ErrNoActiveSession
			return
		}
		if a.session.UserID != callerID {
			err = errs.ErrForbidden
			return
		}
		if !types.ValidEdge(a.session.Status, target) {
			err = fmt.Errorf("%w: %s -> %s", errs.ErrInvalidTransition, a.session.Status, target)
			return
		}
		updated := *a.session
		if target == types.SessionCompleted {
			updated.Complete(a.now().UTC())
		} else {
			updated.Status = target
		}
		if err = a.registry.Save(ctx, &updated); err != nil {
			return
		}
		a.session = &updated
		session = &updated
		a.broadcast(realtime.SessionMessage(event, snapshot(&updated)))
	})
	if doErr != nil {
		return nil, doErr
	}
	if err != nil {
		return nil, err
	}
	return snapshot(session), nil
}

// SubmitActivity appends one event regardless of pause state; a paused
// session can still receive trailing client buffers.
func (a *SessionActor) SubmitActivity(ctx context.Context, callerID uuid.UUID, event *types.ActivityEvent) error {
	var err error
	doErr := a.do(ctx, func() {
		if a.session == nil {
			err = errs.ErrNoActiveSession
			return
		}
		if a.session.UserID != callerID {
			err = errs.ErrForbidden
			return
		}
		if event.SessionID != a.session.ID {
			err = fmt.Errorf("%w: event session %s does not match actor session %s", errs.ErrValidation, event.SessionID, a.session.ID)
			return
		}
		if err = a.activities.Append(ctx, event); err != nil {
			return
		}
		a.events = append(a.events, event)
		a.broadcast(realtime.ActivityMessage(event))
	})
	if doErr != nil {
		return doErr
	}
	return err
}

func (a *SessionActor) Status(ctx context.Context) (*Status, error) {
	var status *Status
	doErr := a.do(ctx, func() {
		status = &Status{
			Session:       snapshot(a.session),
			ActivityCount: len(a.events),
			ObserverCount: len(a.subs),
		}
	})
	if doErr != nil {
		return nil, doErr
	}
	return status, nil
}

// SessionID reports the owned session's id, or uuid.Nil before Start/Adopt.
func (a *SessionActor) SessionID(ctx context.Context) (uuid.UUID, error) {
	var id uuid.UUID
	doErr := a.do(ctx, func() {
		if a.session != nil {
			id = a.session.ID
		}
	})
	return id, doErr
}

func (a *SessionActor) broadcast(msg realtime.Message) {
	for id, sub := range a.subs {
		select {
		case sub.ch <- msg:
		default:
			// Saturated or abandoned observer: evict it rather than block
			// or fail the triggering call.
			a.log.Warn("dropping saturated observer", "subscription_id", id)
			delete(a.subs, id)
			sub.closeChannel()
		}
	}
}

func snapshot(s *types.Session) *types.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
