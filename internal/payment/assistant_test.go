package payment

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type pingRecorder struct {
	types   []string
	amounts []int64
}

func (p *pingRecorder) SupportPing(_ context.Context, pingType, _, _ string, amount int64, _ string) {
	p.types = append(p.types, pingType)
	p.amounts = append(p.amounts, amount)
}

func newTestAssistant(t *testing.T) (*Assistant, *pingRecorder) {
	t.Helper()
	rec := &pingRecorder{}
	assistant := NewAssistant(slog.Default(), NewStore(), NewStaticDirectory(), rec,
		IndonesianTemplates("GoodCasino", "@csgoodcasino"), 0)
	return assistant, rec
}

func TestExtendHappyPath(t *testing.T) {
	t.Parallel()

	assistant, rec := newTestAssistant(t)
	ctx := context.Background()

	if got := assistant.Handle(ctx, "chat-1", "halo"); !strings.Contains(got, "CID") {
		t.Fatalf("greeting reply = %q, want the CID request", got)
	}
	got := assistant.Handle(ctx, "chat-1", "cid: 12345")
	if !strings.Contains(got, "Premium Monthly") || !strings.Contains(got, "125") {
		t.Fatalf("cid reply = %q, want extension payment details", got)
	}
	if !strings.Contains(got, "0x1dC45622D4ba8B70e11190873cbEB03408Df3f08") {
		t.Fatalf("cid reply = %q, want the transfer address", got)
	}
	if got := assistant.Handle(ctx, "chat-1", "sudah saya kirim, ini screenshot nya"); !strings.Contains(got, "verifikasi") {
		t.Fatalf("proof reply = %q, want the received confirmation", got)
	}
	got = assistant.Handle(ctx, "chat-1", "oke lanjut proses pembayaran")
	if !strings.Contains(got, "Semua beres") {
		t.Fatalf("completion reply = %q", got)
	}
	if len(rec.types) != 1 || rec.types[0] != "payment_submission" || rec.amounts[0] != 125 {
		t.Fatalf("pings = %v %v, want one payment_submission for 125", rec.types, rec.amounts)
	}
}

func TestUpgradeShowsOptionsThenCollectsSelection(t *testing.T) {
	t.Parallel()

	assistant, _ := newTestAssistant(t)
	ctx := context.Background()

	assistant.Handle(ctx, "chat-1", "halo")
	got := assistant.Handle(ctx, "chat-1", "mau upgrade, cid 99887")
	if !strings.Contains(got, "Business Yearly: 2400 USDT") || !strings.Contains(got, "upgrade") {
		t.Fatalf("options reply = %q, want the plan list", got)
	}
	got = assistant.Handle(ctx, "chat-1", "business yearly dong kak")
	if !strings.Contains(got, "2400") {
		t.Fatalf("selection reply = %q, want business yearly payment details", got)
	}
}

func TestCIDAttemptsExhaustedHandsOff(t *testing.T) {
	t.Parallel()

	assistant, _ := newTestAssistant(t)
	ctx := context.Background()

	assistant.Handle(ctx, "chat-1", "halo")
	templates := IndonesianTemplates("GoodCasino", "@csgoodcasino")
	for i := 0; i < 2; i++ {
		if got := assistant.Handle(ctx, "chat-1", "mau bayar dong"); got != templates.Welcome {
			t.Fatalf("attempt %d reply = %q, want the welcome re-ask", i+1, got)
		}
	}
	if got := assistant.Handle(ctx, "chat-1", "mau bayar"); got != templates.Handoff {
		t.Fatalf("third failure reply = %q, want handoff", got)
	}
	if got := assistant.Handle(ctx, "chat-1", "pembayaran gimana?"); got != templates.Handoff {
		t.Fatalf("post-handoff reply = %q, want handoff to stick", got)
	}
}

func TestBadPlanSelectionHandsOffAfterThreeTries(t *testing.T) {
	t.Parallel()

	assistant, _ := newTestAssistant(t)
	ctx := context.Background()
	templates := IndonesianTemplates("GoodCasino", "@csgoodcasino")

	assistant.Handle(ctx, "chat-1", "halo")
	assistant.Handle(ctx, "chat-1", "mau upgrade, cid 99887")
	for i := 0; i < 2; i++ {
		if got := assistant.Handle(ctx, "chat-1", "paket apa ya"); got != templates.SelectPlan {
			t.Fatalf("attempt %d reply = %q, want the re-ask", i+1, got)
		}
	}
	if got := assistant.Handle(ctx, "chat-1", "paket bingung"); got != templates.Handoff {
		t.Fatalf("third failure reply = %q, want handoff", got)
	}
}

func TestOffTopicDuringFlow(t *testing.T) {
	t.Parallel()

	assistant, _ := newTestAssistant(t)
	ctx := context.Background()
	templates := IndonesianTemplates("GoodCasino", "@csgoodcasino")

	assistant.Handle(ctx, "chat-1", "halo")
	got := assistant.Handle(ctx, "chat-1", "kemarin aku jalan-jalan sama pacar ke mall, ceritanya seru banget deh")
	if got != templates.OutOfScope {
		t.Fatalf("off-topic reply = %q, want the out-of-scope notice", got)
	}
}

func TestExtractors(t *testing.T) {
	t.Parallel()

	if cid, ok := ExtractCID("cid: 12345"); !ok || cid != "12345" {
		t.Errorf("ExtractCID(labeled) = %q %v", cid, ok)
	}
	if cid, ok := ExtractCID("id saya 99887766 ya"); !ok || cid != "99887766" {
		t.Errorf("ExtractCID(bare) = %q %v", cid, ok)
	}
	if _, ok := ExtractCID("123"); ok {
		t.Error("ExtractCID should reject runs shorter than 4 digits")
	}
	if got := ExtractPlanType("mau upgrade dong"); got != PlanUpgrade {
		t.Errorf("ExtractPlanType = %q", got)
	}
	if got := ExtractPlanType("perpanjang aja"); got != PlanExtend {
		t.Errorf("ExtractPlanType = %q", got)
	}
	if got, ok := ExtractCurrency("pakai rupiah bisa?"); !ok || got != "IDR" {
		t.Errorf("ExtractCurrency = %q %v", got, ok)
	}
	if got, ok := ExtractCurrency("balik ke usdt saja"); !ok || got != "USDT" {
		t.Errorf("ExtractCurrency = %q %v", got, ok)
	}
	if _, ok := ExtractCurrency("mau perpanjang aja kak"); ok {
		t.Error("ExtractCurrency must not read a currency out of perpanjang")
	}
	if name, ok := ExtractPlanSelection("saya pilih premium yearly"); !ok || name != "Premium Yearly" {
		t.Errorf("ExtractPlanSelection = %q %v", name, ok)
	}
}

func TestCurrencySwitchesBothWays(t *testing.T) {
	t.Parallel()

	assistant, _ := newTestAssistant(t)
	ctx := context.Background()

	assistant.Handle(ctx, "chat-1", "halo")
	assistant.Handle(ctx, "chat-1", "cid: 12345, pakai idr ya")
	session := assistant.store.GetOrCreate("chat-1")
	if session.Currency != "IDR" {
		t.Fatalf("currency = %q, want IDR", session.Currency)
	}

	assistant.Handle(ctx, "chat-1", "eh ganti ke usdt saja kak")
	if session.Currency != "USDT" {
		t.Fatalf("currency = %q, want USDT after switching back", session.Currency)
	}
}

func TestStoreEviction(t *testing.T) {
	t.Parallel()

	now := time.Now()
	store := NewStore().WithClock(func() time.Time { return now })
	store.GetOrCreate("chat-1")
	store.GetOrCreate("chat-2")

	now = now.Add(25 * time.Hour)
	// chat-2 stays fresh
	store.GetOrCreate("chat-2")

	if evicted := store.EvictOlderThan(24 * time.Hour); evicted != 1 {
		t.Fatalf("evicted = %d, want 1", evicted)
	}
	if session := store.GetOrCreate("chat-1"); session.State != StateGreeting {
		t.Fatal("chat-1 should have been recreated fresh")
	}
}
