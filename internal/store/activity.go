package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/freshtrack-backend/internal/errs"
	"github.com/yungbote/freshtrack-backend/internal/kv"
	"github.com/yungbote/freshtrack-backend/internal/logger"
	"github.com/yungbote/freshtrack-backend/internal/types"
)

// ActivityStore is append-only storage for activity events plus the ordered
// per-session index of event ids. The index order, not the event timestamp,
// is authoritative for replay. No update or delete is exposed.
type ActivityStore interface {
	Append(ctx context.Context, event *types.ActivityEvent) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*types.ActivityEvent, error)
}

type activityStore struct {
	kv  kv.Store
	log *logger.Logger
}

func NewActivityStore(store kv.Store, baseLog *logger.Logger) ActivityStore {
	return &activityStore{kv: store, log: baseLog.With("store", "ActivityStore")}
}

// Append stores the event and appends its id to the session index. Callers
// needing the write serialized against concurrent appends for the same
// session must go through the session actor; the store itself does not lock
// across the two puts.
func (s *activityStore) Append(ctx context.Context, event *types.ActivityEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode activity %s: %w", event.ID, err)
	}
	if err := s.kv.Put(ctx, activityKey(event.ID), raw); err != nil {
		return err
	}

	ids, err := s.readIndex(ctx, event.SessionID)
	if err != nil {
		return err
	}
	ids = append(ids, event.ID)
	idxRaw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode activity index for %s: %w", event.SessionID, err)
	}
	return s.kv.Put(ctx, sessionIndexKey(event.SessionID), idxRaw)
}

// ListBySession resolves the index and fetches each event. Ids whose record
// is missing (a torn write) are skipped on purpose; callers that need strong
// consistency read through the actor instead.
func (s *activityStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*types.ActivityEvent, error) {
	ids, err := s.readIndex(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	events := make([]*types.ActivityEvent, 0, len(ids))
	for _, id := range ids {
		raw, err := s.kv.Get(ctx, activityKey(id))
		if errors.Is(err, errs.ErrNotFound) {
			s.log.Warn("activity record missing from store, skipping", "activity_id", id, "session_id", sessionID)
			continue
		}
		if err != nil {
			return nil, err
		}
		var event types.ActivityEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("decode activity %s: %w", id, err)
		}
		events = append(events, &event)
	}
	return events, nil
}

func (s *activityStore) readIndex(ctx context.Context, sessionID uuid.UUID) ([]uuid.UUID, error) {
	raw, err := s.kv.Get(ctx, sessionIndexKey(sessionID))
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("decode activity index for %s: %w", sessionID, err)
	}
	return ids, nil
}
