package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/freshtrack-backend/internal/errs"
	"github.com/yungbote/freshtrack-backend/internal/kv"
	"github.com/yungbote/freshtrack-backend/internal/logger"
	"github.com/yungbote/freshtrack-backend/internal/types"
)

// SessionRegistry owns Session records and their lifecycle transitions.
// Sessions are never deleted here; retention is an external policy.
type SessionRegistry interface {
	Create(ctx context.Context, userID, projectID uuid.UUID) (*types.Session, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*types.Session, error)
	Transition(ctx context.Context, sessionID uuid.UUID, target types.SessionStatus) (*types.Session, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Session, error)
	Save(ctx context.Context, session *types.Session) error
}

type sessionRegistry struct {
	kv  kv.Store
	log *logger.Logger
	now func() time.Time
}

func NewSessionRegistry(store kv.Store, baseLog *logger.Logger) SessionRegistry {
	return &sessionRegistry{
		kv:  store,
		log: baseLog.With("store", "SessionRegistry"),
		now: time.Now,
	}
}

func (r *sessionRegistry) Create(ctx context.Context, userID, projectID uuid.UUID) (*types.Session, error) {
	if userID == uuid.Nil || projectID == uuid.Nil {
		return nil, fmt.Errorf("%w: user_id and project_id required", errs.ErrValidation)
	}
	session := &types.Session{
		ID:        uuid.New(),
		UserID:    userID,
		ProjectID: projectID,
		StartTime: r.now().UTC(),
		Status:    types.SessionActive,
	}
	if err := r.Save(ctx, session); err != nil {
		return nil, err
	}
	r.log.Debug("session created", "session_id", session.ID, "user_id", userID)
	return session, nil
}

func (r *sessionRegistry) Get(ctx context.Context, sessionID uuid.UUID) (*types.Session, error) {
	raw, err := r.kv.Get(ctx, sessionKey(sessionID))
	if err != nil {
		return nil, err
	}
	var session types.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &session, nil
}

// Transition applies exactly one state-machine edge and persists the result
// before returning. Illegal edges, including self-edges and anything out of
// Completed, fail with ErrInvalidTransition and leave the record untouched.
func (r *sessionRegistry) Transition(ctx context.Context, sessionID uuid.UUID, target types.SessionStatus) (*types.Session, error) {
	session, err := r.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !types.ValidEdge(session.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", errs.ErrInvalidTransition, session.Status, target)
	}
	if target == types.SessionCompleted {
		session.Complete(r.now().UTC())
	} else {
		session.Status = target
	}
	if err := r.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ListByUser scans the session prefix and filters in memory, which is fine at
// this scale. Ordering is newest start first with the id as tie-break so the
// result is stable for equal timestamps.
func (r *sessionRegistry) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	keys, err := r.kv.List(ctx, sessionPrefix)
	if err != nil {
		return nil, err
	}
	sessions := make([]*types.Session, 0, limit)
	for _, key := range keys {
		if strings.HasSuffix(key, activityIdxSuffix) {
			continue
		}
		raw, err := r.kv.Get(ctx, key)
		if errors.Is(err, errs.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var session types.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			r.log.Warn("skipping undecodable session record", "key", key, "error", err)
			continue
		}
		if session.UserID == userID {
			sessions = append(sessions, &session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].StartTime.Equal(sessions[j].StartTime) {
			return sessions[i].StartTime.After(sessions[j].StartTime)
		}
		return sessions[i].ID.String() < sessions[j].ID.String()
	})
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (r *sessionRegistry) Save(ctx context.Context, session *types.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	return r.kv.Put(ctx, sessionKey(session.ID), raw)
}
