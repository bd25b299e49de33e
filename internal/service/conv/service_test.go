package conv

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxline/voxline/internal/model/conv"
	"github.com/voxline/voxline/internal/model/persona"
)

func newTestService(idleTTL time.Duration) *Service {
	store := persona.NewMemoryStore(persona.Seed())
	return NewService(store, zerolog.Nop(), idleTTL, time.Minute)
}

func TestCreateRejectsUnknownMode(t *testing.T) {
	svc := newTestService(time.Hour)

	if _, err := svc.Create(context.Background(), "call-1", "banking", conv.Metadata{}); err != ErrUnknownMode {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}

func TestCreateReplacesExistingSession(t *testing.T) {
	svc := newTestService(time.Hour)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "call-1", "dental", conv.Metadata{}); err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if _, err := svc.Append(ctx, "call-1", conv.RoleUser, "salut", conv.Annotations{}); err != nil {
		t.Fatalf("Append err: %v", err)
	}

	session, err := svc.Create(ctx, "call-1", "tarot", conv.Metadata{})
	if err != nil {
		t.Fatalf("Create (replace) err: %v", err)
	}
	if session.Mode != "tarot" {
		t.Fatalf("replacement kept old mode: %s", session.Mode)
	}
	if len(session.Messages) != 0 {
		t.Fatalf("replacement kept old history: %d messages", len(session.Messages))
	}
}

func TestGetTouchesLastActive(t *testing.T) {
	svc := newTestService(time.Hour)
	ctx := context.Background()

	base := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	if _, err := svc.Create(ctx, "call-1", "dental", conv.Metadata{}); err != nil {
		t.Fatalf("Create err: %v", err)
	}

	svc.now = func() time.Time { return base.Add(10 * time.Minute) }
	session, ok := svc.Get(ctx, "call-1")
	if !ok {
		t.Fatal("expected session")
	}
	if !session.LastActiveAt.Equal(base.Add(10 * time.Minute)) {
		t.Fatalf("Get did not refresh last activity: %v", session.LastActiveAt)
	}
}

func TestAppendToMissingSession(t *testing.T) {
	svc := newTestService(time.Hour)

	if _, err := svc.Append(context.Background(), "missing", conv.RoleUser, "hello", conv.Annotations{}); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAddStatsIsAdditiveAndTolerant(t *testing.T) {
	svc := newTestService(time.Hour)
	ctx := context.Background()

	// No-op against a missing session, must not panic.
	svc.AddStats(ctx, "missing", conv.Stats{TotalTurnDuration: time.Second})

	if _, err := svc.Create(ctx, "call-1", "dental", conv.Metadata{}); err != nil {
		t.Fatalf("Create err: %v", err)
	}
	svc.AddStats(ctx, "call-1", conv.Stats{AudioProcessing: 200 * time.Millisecond, TotalTurnDuration: time.Second})
	svc.AddStats(ctx, "call-1", conv.Stats{AudioProcessing: 300 * time.Millisecond, TotalTurnDuration: 2 * time.Second})

	session, _ := svc.Get(ctx, "call-1")
	if session.Stats.AudioProcessing != 500*time.Millisecond {
		t.Fatalf("audio processing not additive: %v", session.Stats.AudioProcessing)
	}
	if session.Stats.TotalTurnDuration != 3*time.Second {
		t.Fatalf("turn duration not additive: %v", session.Stats.TotalTurnDuration)
	}
}

func TestEndRemovesAndArchives(t *testing.T) {
	svc := newTestService(time.Hour)
	ctx := context.Background()

	var gotReason conv.EndReason
	var gotMessages int
	svc.OnArchive(func(session conv.Session, reason conv.EndReason) {
		gotReason = reason
		gotMessages = len(session.Messages)
	})

	if _, err := svc.Create(ctx, "call-1", "dental", conv.Metadata{}); err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if _, err := svc.Append(ctx, "call-1", conv.RoleUser, "salut", conv.Annotations{}); err != nil {
		t.Fatalf("Append err: %v", err)
	}

	svc.End(ctx, "call-1", conv.ReasonReset)

	if _, ok := svc.Get(ctx, "call-1"); ok {
		t.Fatal("session still present after End")
	}
	if gotReason != conv.ReasonReset {
		t.Fatalf("archive reason: got %s", gotReason)
	}
	if gotMessages != 1 {
		t.Fatalf("archive snapshot messages: got %d", gotMessages)
	}

	// Idempotent: a second End must not re-archive.
	gotReason = ""
	svc.End(ctx, "call-1", conv.ReasonCompleted)
	if gotReason != "" {
		t.Fatal("End archived an already-removed session")
	}
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	svc := newTestService(30 * time.Minute)
	ctx := context.Background()

	base := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	var reasons []conv.EndReason
	svc.OnArchive(func(_ conv.Session, reason conv.EndReason) {
		reasons = append(reasons, reason)
	})

	if _, err := svc.Create(ctx, "stale", "dental", conv.Metadata{}); err != nil {
		t.Fatalf("Create err: %v", err)
	}

	svc.now = func() time.Time { return base.Add(20 * time.Minute) }
	if _, err := svc.Create(ctx, "fresh", "tarot", conv.Metadata{}); err != nil {
		t.Fatalf("Create err: %v", err)
	}

	svc.now = func() time.Time { return base.Add(45 * time.Minute) }
	if evicted := svc.Sweep(ctx); evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}

	if _, ok := svc.Get(ctx, "stale"); ok {
		t.Fatal("stale session survived the sweep")
	}
	if _, ok := svc.Get(ctx, "fresh"); !ok {
		t.Fatal("fresh session was evicted")
	}
	if len(reasons) != 1 || reasons[0] != conv.ReasonTimeout {
		t.Fatalf("unexpected archive reasons: %v", reasons)
	}
}

func TestSummary(t *testing.T) {
	svc := newTestService(time.Hour)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if _, err := svc.Create(ctx, id, "dental", conv.Metadata{}); err != nil {
			t.Fatalf("Create err: %v", err)
		}
	}
	if _, err := svc.Create(ctx, "c", "tarot", conv.Metadata{}); err != nil {
		t.Fatalf("Create err: %v", err)
	}

	count, modes := svc.Summary(ctx)
	if count != 3 {
		t.Fatalf("expected 3 live sessions, got %d", count)
	}
	if modes["dental"] != 2 || modes["tarot"] != 1 {
		t.Fatalf("unexpected mode distribution: %v", modes)
	}
}

func TestConcurrentIndependentSessions(t *testing.T) {
	svc := newTestService(time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := []string{"c1", "c2", "c3", "c4"}
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := svc.Create(ctx, id, "dental", conv.Metadata{}); err != nil {
				t.Errorf("Create %s: %v", id, err)
				return
			}
			for i := 0; i < 20; i++ {
				if _, err := svc.Append(ctx, id, conv.RoleUser, "msg", conv.Annotations{}); err != nil {
					t.Errorf("Append %s: %v", id, err)
					return
				}
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		session, ok := svc.Get(ctx, id)
		if !ok {
			t.Fatalf("session %s missing", id)
		}
		if len(session.Messages) != 20 {
			t.Fatalf("session %s: expected 20 messages, got %d", id, len(session.Messages))
		}
	}
}
