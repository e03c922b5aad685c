package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/freshtrack-backend/internal/errs"
	"github.com/yungbote/freshtrack-backend/internal/kv"
	"github.com/yungbote/freshtrack-backend/internal/logger"
	"github.com/yungbote/freshtrack-backend/internal/types"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func testRegistry(t *testing.T) (*sessionRegistry, *kv.MemoryStore) {
	t.Helper()
	mem := kv.NewMemoryStore()
	reg := &sessionRegistry{
		kv:  mem,
		log: mustTestLogger(t),
		now: time.Now,
	}
	return reg, mem
}

func TestRegistryCreateAndGet(t *testing.T) {
	reg, _ := testRegistry(t)
	ctx := context.Background()
	userID, projectID := uuid.New(), uuid.New()

	created, err := reg.Create(ctx, userID, projectID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != types.SessionActive {
		t.Fatalf("new session status=%s, want active", created.Status)
	}
	if created.EndTime != nil || created.Duration != nil {
		t.Fatalf("new session has terminal fields set: %+v", created)
	}

	got, err := reg.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != created.ID || got.UserID != userID || got.ProjectID != projectID {
		t.Fatalf("persisted session mismatch: %+v", got)
	}
}

func TestRegistryGetMissing(t *testing.T) {
	reg, _ := testRegistry(t)
	_, err := reg.Get(context.Background(), uuid.New())
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("Get missing: got %v, want ErrNotFound", err)
	}
}

func TestRegistryTransitionEdges(t *testing.T) {
	cases := []struct {
		name    string
		path    []types.SessionStatus
		target  types.SessionStatus
		wantErr bool
	}{
		{name: "active_to_paused", target: types.SessionPaused},
		{name: "active_to_completed", target: types.SessionCompleted},
		{name: "paused_to_active", path: []types.SessionStatus{types.SessionPaused}, target: types.SessionActive},
		{name: "paused_to_completed", path: []types.SessionStatus{types.SessionPaused}, target: types.SessionCompleted},
		{name: "active_to_active", target: types.SessionActive, wantErr: true},
		{name: "paused_to_paused", path: []types.SessionStatus{types.SessionPaused}, target: types.SessionPaused, wantErr: true},
		{name: "completed_is_terminal", path: []types.SessionStatus{types.SessionCompleted}, target: types.SessionActive, wantErr: true},
		{name: "completed_no_reend", path: []types.SessionStatus{types.SessionCompleted}, target: types.SessionCompleted, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg, _ := testRegistry(t)
			ctx := context.Background()
			session, err := reg.Create(ctx, uuid.New(), uuid.New())
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			for _, step := range tc.path {
				if _, err := reg.Transition(ctx, session.ID, step); err != nil {
					t.Fatalf("setup transition to %s: %v", step, err)
				}
			}
			before, _ := reg.Get(ctx, session.ID)

			got, err := reg.Transition(ctx, session.ID, tc.target)
			if tc.wantErr {
				if !errors.Is(err, errs.ErrInvalidTransition) {
					t.Fatalf("Transition=%v, want ErrInvalidTransition", err)
				}
				after, _ := reg.Get(ctx, session.ID)
				if after.Status != before.Status {
					t.Fatalf("failed transition changed state: %s -> %s", before.Status, after.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("Transition: %v", err)
			}
			if got.Status != tc.target {
				t.Fatalf("status=%s, want %s", got.Status, tc.target)
			}
			if tc.target == types.SessionCompleted && (got.EndTime == nil || got.Duration == nil) {
				t.Fatalf("completed session missing terminal fields: %+v", got)
			}
		})
	}
}

func TestRegistryTransitionMissingSession(t *testing.T) {
	reg, _ := testRegistry(t)
	_, err := reg.Transition(context.Background(), uuid.New(), types.SessionPaused)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("Transition missing: got %v, want ErrNotFound", err)
	}
}

func TestRegistryListByUser(t *testing.T) {
	reg, _ := testRegistry(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	clock := base
	reg.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	var aliceSessions []*types.Session
	for i := 0; i < 3; i++ {
		s, err := reg.Create(ctx, alice, uuid.New())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		aliceSessions = append(aliceSessions, s)
	}
	if _, err := reg.Create(ctx, bob, uuid.New()); err != nil {
		t.Fatalf("Create bob: %v", err)
	}

	got, err := reg.ListByUser(ctx, alice, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len=%d, want 3 (bob's session must not leak)", len(got))
	}
	for _, s := range got {
		if s.UserID != alice {
			t.Fatalf("foreign session in result: %+v", s)
		}
	}
	// Newest start first.
	if got[0].ID != aliceSessions[2].ID || got[2].ID != aliceSessions[0].ID {
		t.Fatalf("ordering wrong: got %v", []uuid.UUID{got[0].ID, got[1].ID, got[2].ID})
	}

	limited, err := reg.ListByUser(ctx, alice, 2)
	if err != nil {
		t.Fatalf("ListByUser limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limit not respected: len=%d", len(limited))
	}
}

func TestRegistryListByUserStableTieBreak(t *testing.T) {
	reg, _ := testRegistry(t)
	ctx := context.Background()
	user := uuid.New()

	fixed := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return fixed }

	for i := 0; i < 4; i++ {
		if _, err := reg.Create(ctx, user, uuid.New()); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	first, err := reg.ListByUser(ctx, user, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	second, err := reg.ListByUser(ctx, user, 10)
	if err != nil {
		t.Fatalf("ListByUser again: %v", err)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("ordering not deterministic at index %d", i)
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].ID.String() > first[i].ID.String() {
			t.Fatalf("equal timestamps not tie-broken by id")
		}
	}
}

func TestRegistryStorageFailure(t *testing.T) {
	reg, mem := testRegistry(t)
	mem.FailWrites = true
	_, err := reg.Create(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, errs.ErrStorageUnavailable) {
		t.Fatalf("Create with failing store: got %v, want ErrStorageUnavailable", err)
	}
}
