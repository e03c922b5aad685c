package actor

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/freshtrack-backend/internal/realtime"
)

// Subscription is one observer's live handle on an actor's broadcast stream.
// The channel is closed when the subscription is closed, the observer falls
// behind, or the actor is torn down.
type Subscription struct {
	id        uuid.UUID
	actor     *SessionActor
	ch        chan realtime.Message
	closeOnce sync.Once
}

// Subscribe registers a new observer. Fan-out to it is best effort: if its
// buffer saturates it is dropped without affecting other observers.
func (a *SessionActor) Subscribe(ctx context.Context) (*Subscription, error) {
	sub := &Subscription{
		id:    uuid.New(),
		actor: a,
		ch:    make(chan realtime.Message, subscriberSize),
	}
	doErr := a.do(ctx, func() {
		a.subs[sub.id] = sub
	})
	if doErr != nil {
		return nil, doErr
	}
	return sub, nil
}

// Messages is the receive side of the broadcast stream.
func (s *Subscription) Messages() <-chan realtime.Message {
	return s.ch
}

// Close detaches the observer. Safe to call more than once and after the
// actor has stopped; other observers are unaffected.
func (s *Subscription) Close() {
	select {
	case s.actor.inbox <- func() {
		delete(s.actor.subs, s.id)
		s.closeChannel()
	}:
	case <-s.actor.done:
		s.closeChannel()
	}
}

func (s *Subscription) closeChannel() {
	s.closeOnce.Do(func() { close(s.ch) })
}
