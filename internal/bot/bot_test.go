package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goodcasino/livecare/internal/livechat"
	"github.com/goodcasino/livecare/internal/state"
)

type fakeResponder struct {
	reply string
	calls int
}

func (f *fakeResponder) Resolve(_ context.Context, _ *state.Conversation, _ string) string {
	f.calls++
	return f.reply
}

type fakeSender struct {
	err  error
	sent []string
}

func (f *fakeSender) SendMessage(_ context.Context, chatID, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func newTestService(t *testing.T, responder Responder, sender Sender, now *time.Time) *Service {
	t.Helper()
	clock := func() time.Time { return *now }
	store := state.NewStore().WithClock(clock)
	guard := state.NewGuard().WithClock(clock)
	responses := state.NewResponseTracker().WithClock(clock)
	return NewService(slog.Default(), store, guard, responses, nil, responder, sender, 1000, 7*time.Second).WithClock(clock)
}

func TestHandleTurnDeliversAndRecords(t *testing.T) {
	t.Parallel()

	now := time.Now()
	responder := &fakeResponder{reply: "Halo bosku!"}
	sender := &fakeSender{}
	svc := newTestService(t, responder, sender, &now)

	reply, sent := svc.HandleTurn(context.Background(), "chat-1", "halo", "m1")
	if !sent || reply != "Halo bosku!" {
		t.Fatalf("HandleTurn = %q %v, want delivery", reply, sent)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %v", sender.sent)
	}

	conv, ok := svc.store.Get("chat-1")
	if !ok {
		t.Fatal("conversation missing")
	}
	if len(conv.History) != 2 || conv.History[0].Type != state.HistoryTypeUser || conv.History[1].Type != state.HistoryTypeAgent {
		t.Fatalf("history = %+v", conv.History)
	}
	if conv.LastProcessedMessageID != "m1" {
		t.Fatalf("LastProcessedMessageID = %q", conv.LastProcessedMessageID)
	}
}

func TestHandleTurnIdempotentOnMessageID(t *testing.T) {
	t.Parallel()

	now := time.Now()
	responder := &fakeResponder{reply: "ok bosku"}
	svc := newTestService(t, responder, &fakeSender{}, &now)
	ctx := context.Background()

	svc.HandleTurn(ctx, "chat-1", "halo", "m1")
	if _, sent := svc.HandleTurn(ctx, "chat-1", "halo", "m1"); sent {
		t.Fatal("same message id must not be processed twice")
	}
	if responder.calls != 1 {
		t.Fatalf("responder calls = %d, want 1", responder.calls)
	}
}

func TestHandleTurnEnforcesResponseGap(t *testing.T) {
	t.Parallel()

	now := time.Now()
	responder := &fakeResponder{reply: "balasan pertama"}
	svc := newTestService(t, responder, &fakeSender{}, &now)
	ctx := context.Background()

	if _, sent := svc.HandleTurn(ctx, "chat-1", "halo", "m1"); !sent {
		t.Fatal("first turn should deliver")
	}
	responder.reply = "balasan kedua"
	if _, sent := svc.HandleTurn(ctx, "chat-1", "lanjut", "m2"); sent {
		t.Fatal("turn within the gap must stay silent")
	}
	now = now.Add(8 * time.Second)
	if _, sent := svc.HandleTurn(ctx, "chat-1", "lanjut", "m3"); !sent {
		t.Fatal("turn after the gap should deliver")
	}
}

func TestHandleTurnSuppressesDuplicateReply(t *testing.T) {
	t.Parallel()

	now := time.Now()
	responder := &fakeResponder{reply: "jawaban sama"}
	sender := &fakeSender{}
	svc := newTestService(t, responder, sender, &now)
	ctx := context.Background()

	svc.HandleTurn(ctx, "chat-1", "halo", "m1")
	now = now.Add(10 * time.Second)
	if _, sent := svc.HandleTurn(ctx, "chat-1", "halo lagi", "m2"); sent {
		t.Fatal("identical reply within the window must be suppressed")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %v, want exactly one delivery", sender.sent)
	}
}

func TestSendFailureLeavesTurnRetryable(t *testing.T) {
	t.Parallel()

	now := time.Now()
	responder := &fakeResponder{reply: "halo bosku"}
	sender := &fakeSender{err: errors.New("boom")}
	svc := newTestService(t, responder, sender, &now)
	ctx := context.Background()

	if _, sent := svc.HandleTurn(ctx, "chat-1", "halo", "m1"); sent {
		t.Fatal("failed send must not report delivery")
	}

	sender.err = nil
	if _, sent := svc.HandleTurn(ctx, "chat-1", "halo", "m1"); !sent {
		t.Fatal("turn should be retryable after a send failure")
	}

	conv, ok := svc.store.Get("chat-1")
	if !ok {
		t.Fatal("conversation missing")
	}
	if len(conv.History) != 2 {
		t.Fatalf("history = %+v, want one user and one agent entry after the retry", conv.History)
	}
	if conv.History[0].Type != state.HistoryTypeUser || conv.History[1].Type != state.HistoryTypeAgent {
		t.Fatalf("history types = %q %q", conv.History[0].Type, conv.History[1].Type)
	}
}

func TestHandleTurnTruncatesLongReply(t *testing.T) {
	t.Parallel()

	now := time.Now()
	responder := &fakeResponder{reply: strings.Repeat("a", 1500)}
	sender := &fakeSender{}
	svc := newTestService(t, responder, sender, &now)

	reply, sent := svc.HandleTurn(context.Background(), "chat-1", "kirim semua promo json dong", "m1")
	if !sent {
		t.Fatal("turn should deliver")
	}
	if len(reply) != 1000 {
		t.Fatalf("reply length = %d, want 1000", len(reply))
	}
	if len(sender.sent) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(sender.sent))
	}
	if len(sender.sent[0]) != 1000 {
		t.Fatalf("delivered length = %d, want 1000", len(sender.sent[0]))
	}
}

type fakeSource struct {
	chats    []livechat.Chat
	message  *livechat.Message
	archived bool
}

func (f *fakeSource) ListActiveConversations(context.Context) ([]livechat.Chat, error) {
	return f.chats, nil
}

func (f *fakeSource) LatestCustomerMessage(context.Context, string) (*livechat.Message, error) {
	return f.message, nil
}

func (f *fakeSource) IsArchived(context.Context, string) bool {
	return f.archived
}

type countingHandler struct {
	calls atomic.Int64
}

func (c *countingHandler) HandleTurn(context.Context, string, string, string) (string, bool) {
	c.calls.Add(1)
	return "ok", true
}

func waitForCalls(t *testing.T, counter *atomic.Int64, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if counter.Load() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("calls = %d, want %d", counter.Load(), want)
}

func TestPollerTickHandsMessageToHandler(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		chats:   []livechat.Chat{{ID: "chat-1", Status: "active"}},
		message: &livechat.Message{ID: "e1", MessageID: "chat-1_e1", Text: "halo"},
	}
	handler := &countingHandler{}
	poller := NewPoller(slog.Default(), source, handler, time.Minute)

	poller.Tick(context.Background())
	waitForCalls(t, &handler.calls, 1)
}

func TestPollerSkipsArchivedChats(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		chats:    []livechat.Chat{{ID: "chat-1", Status: "active"}},
		message:  &livechat.Message{ID: "e1", MessageID: "chat-1_e1", Text: "halo"},
		archived: true,
	}
	handler := &countingHandler{}
	poller := NewPoller(slog.Default(), source, handler, time.Minute)

	poller.Tick(context.Background())
	time.Sleep(50 * time.Millisecond)
	if handler.calls.Load() != 0 {
		t.Fatalf("handler calls = %d, want 0 for archived chat", handler.calls.Load())
	}
}

func TestPollerSkipsEmptyChats(t *testing.T) {
	t.Parallel()

	source := &fakeSource{chats: []livechat.Chat{{ID: "chat-1", Status: "active"}}}
	handler := &countingHandler{}
	poller := NewPoller(slog.Default(), source, handler, time.Minute)

	poller.Tick(context.Background())
	time.Sleep(50 * time.Millisecond)
	if handler.calls.Load() != 0 {
		t.Fatalf("handler calls = %d, want 0 for chat without messages", handler.calls.Load())
	}
}
