package history

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func openTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := Open(slog.Default(), filepath.Join(t.TempDir(), "livecare.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

type snapshot struct {
	UserID   string `json:"user_id"`
	Warnings int    `json:"warnings"`
}

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()

	svc := openTestService(t)
	ctx := context.Background()

	var missing snapshot
	if svc.LoadState(ctx, "chat-1", &missing) {
		t.Fatal("LoadState on unknown chat should report false")
	}

	want := snapshot{UserID: "maxpro88", Warnings: 2}
	if err := svc.SaveState(ctx, "chat-1", want); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}
	// upsert
	want.Warnings = 3
	if err := svc.SaveState(ctx, "chat-1", want); err != nil {
		t.Fatalf("SaveState() upsert error = %v", err)
	}

	var got snapshot
	if !svc.LoadState(ctx, "chat-1", &got) {
		t.Fatal("LoadState should find the saved snapshot")
	}
	if got != want {
		t.Fatalf("LoadState = %+v, want %+v", got, want)
	}
}

func TestMessagesNewestFirstAndLimited(t *testing.T) {
	t.Parallel()

	svc := openTestService(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		stamp := base.Add(time.Duration(i) * time.Second)
		svc.now = func() time.Time { return stamp }
		if err := svc.AddMessage(ctx, "chat-1", "user", time.Duration(i).String()); err != nil {
			t.Fatalf("AddMessage() error = %v", err)
		}
	}

	got, err := svc.RecentMessages(ctx, "chat-1", 3)
	if err != nil {
		t.Fatalf("RecentMessages() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Content != time.Duration(4).String() {
		t.Fatalf("first message = %q, want the newest", got[0].Content)
	}
}

func TestCleanupOldChats(t *testing.T) {
	t.Parallel()

	svc := openTestService(t)
	ctx := context.Background()

	old := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return old }
	if err := svc.SaveState(ctx, "stale", snapshot{}); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddMessage(ctx, "stale", "user", "hello"); err != nil {
		t.Fatal(err)
	}

	now := old.Add(72 * time.Hour)
	svc.now = func() time.Time { return now }
	if err := svc.SaveState(ctx, "fresh", snapshot{}); err != nil {
		t.Fatal(err)
	}

	removed, err := svc.CleanupOldChats(ctx, 48*time.Hour)
	if err != nil {
		t.Fatalf("CleanupOldChats() error = %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	var s snapshot
	if svc.LoadState(ctx, "stale", &s) {
		t.Fatal("stale chat should be gone")
	}
	if !svc.LoadState(ctx, "fresh", &s) {
		t.Fatal("fresh chat should survive")
	}
	msgs, err := svc.RecentMessages(ctx, "stale", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Fatalf("stale messages remaining = %d, want 0", len(msgs))
	}
}
