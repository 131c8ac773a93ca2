package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goodcasino/livecare/internal/topic"
)

// DefaultOffTopicThreshold is stricter than the support bot: the payment
// assistant only ever talks about payments.
const DefaultOffTopicThreshold = 3

// Templates are the customer-facing assistant strings. The zero value is
// unusable; use IndonesianTemplates.
type Templates struct {
	Welcome         string
	CIDCollected    string
	UpgradeOptions  string
	SelectPlan      string
	AwaitingProof   string
	PaymentReceived string
	Completion      string
	OutOfScope      string
	Handoff         string
}

// IndonesianTemplates are the stock assistant prompts. brand names the
// product, supportContact is where handoffs point.
func IndonesianTemplates(brand, supportContact string) Templates {
	return Templates{
		Welcome:         fmt.Sprintf("Halo! Saya di sini untuk membantu kakak dengan pembayaran %s nya. Bisakah bagikan CID kakak?", brand),
		CIDCollected:    "Sempurna! CID kakak sudah saya dapat. Saya lihat kakak punya %s. Untuk perpanjangan, ini detail pembayaran nya: Jumlah: %d USDT. Kirim pembayaran ke: %s. Setelah kakak kirim, upload saja screenshot pembayaran nya di sini dan saya akan verifikasi!",
		UpgradeOptions:  "Baik kakak! Kakak mau %s. Ini pilihan langganan yang tersedia:\n%s\nMana yang mau kakak pilih?",
		SelectPlan:      "Silakan pilih salah satu paket langganan dari pilihan di atas ya kak.",
		AwaitingProof:   "Silakan upload screenshot pembayaran nya kalau sudah siap ya kak!",
		PaymentReceived: "Mantap, kak! Saya sudah verifikasi detail pembayaran kakak dan semua oke! Sekarang saya submit ke tim untuk proses final. Kakak akan dapat kabar segera! Makasih ya sabar nya.",
		Completion:      fmt.Sprintf("Sempurna, kak! Semua beres! Saya sudah submit detail pembayaran kakak ke tim untuk diproses. Agen kami akan verifikasi pembayaran kakak, langganan %%s kakak akan diaktifkan, dan kakak akan dapat konfirmasi setelah selesai! Makasih sudah pilih %s!", brand),
		OutOfScope:      "Saya hanya membantu untuk proses pembayaran saja, kak. Untuk pertanyaan lain, saya bisa hubungkan kakak dengan tim support yang bisa kasih info lengkap!",
		Handoff:         fmt.Sprintf("Saya agak kesulitan membantu kakak untuk ini. Biar saya hubungkan dengan tim support ya. Silakan hubungi %s untuk bantuan langsung.", supportContact),
	}
}

// Notifier receives the collected payment details on submission.
type Notifier interface {
	SupportPing(ctx context.Context, pingType, chatID, userID string, amount int64, message string)
}

// Assistant drives the payment state machine, one message per transition.
type Assistant struct {
	store     *Store
	directory Directory
	notifier  Notifier
	templates Templates
	threshold int
	logger    *slog.Logger
}

// NewAssistant builds the assistant. threshold <= 0 uses
// DefaultOffTopicThreshold.
func NewAssistant(log *slog.Logger, store *Store, directory Directory, notifier Notifier, templates Templates, threshold int) *Assistant {
	if threshold <= 0 {
		threshold = DefaultOffTopicThreshold
	}
	return &Assistant{
		store:     store,
		directory: directory,
		notifier:  notifier,
		templates: templates,
		threshold: threshold,
		logger:    log.With(slog.String("service", "payment")),
	}
}

// Handle advances the chat's session with one customer message and returns
// the reply. An empty reply means stay silent.
func (a *Assistant) Handle(ctx context.Context, chatID, message string) string {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return ""
	}

	session := a.store.GetOrCreate(chatID)
	session.remember(trimmed)

	// Sticky context: any message may refine the plan or currency.
	if cid, ok := ExtractCID(trimmed); ok {
		session.CID = cid
	}
	if plan := ExtractPlanType(trimmed); plan != PlanExtend {
		session.Plan = plan
	}
	if currency, ok := ExtractCurrency(trimmed); ok {
		session.Currency = currency
	}

	if !isPaymentContext(trimmed) && session.State != StateGreeting {
		if score := topic.Score(trimmed, a.threshold); score.OffTopic {
			a.logger.Debug("off-topic during payment flow",
				slog.String("chat_id", chatID),
				slog.Int("score", score.Score),
			)
			return a.templates.OutOfScope
		}
	}

	switch session.State {
	case StateGreeting:
		session.State = StateCollectingCID
		return a.templates.Welcome

	case StateCollectingCID:
		return a.collectCID(ctx, session)

	case StateShowingOptions:
		return a.selectPlan(ctx, session, trimmed)

	case StateReadyForPayment:
		if mentionsPaymentProof(trimmed) {
			session.State = StateProcessing
			return a.templates.PaymentReceived
		}
		return a.templates.AwaitingProof

	case StateProcessing:
		session.State = StateSubmitted
		plan := session.SubscriptionType
		if plan == "" {
			plan = session.Plan
		}
		a.submit(ctx, session)
		return fmt.Sprintf(a.templates.Completion, plan)

	case StateSubmitted:
		return "Pembayaran kakak sudah masuk antrian proses. Konfirmasi akan dikirim segera ya kak!"

	case StateHandoff:
		return a.templates.Handoff
	}
	return ""
}

func (a *Assistant) collectCID(ctx context.Context, session *Session) string {
	if session.CID == "" {
		session.CIDAttempts++
		if session.CIDAttempts >= maxAttempts {
			session.State = StateHandoff
			return a.templates.Handoff
		}
		return a.templates.Welcome
	}

	account, err := a.directory.Lookup(ctx, session.CID)
	if err != nil {
		a.logger.Warn("cid lookup failed",
			slog.String("chat_id", session.ChatID),
			slog.Any("error", err),
		)
		session.State = StateHandoff
		return a.templates.Handoff
	}
	session.TransferAddress = account.TransferAddress
	session.IDRRate = account.IDRRate

	if session.Plan == PlanExtend {
		for _, plan := range account.AvailablePlans {
			if plan.Name == account.CurrentSubscription {
				session.TransferAmount = plan.Price
				session.State = StateReadyForPayment
				return fmt.Sprintf(a.templates.CIDCollected,
					account.CurrentSubscription, plan.Price, account.TransferAddress)
			}
		}
		session.State = StateHandoff
		return a.templates.Handoff
	}

	session.State = StateShowingOptions
	var options strings.Builder
	for i, plan := range account.AvailablePlans {
		if i > 0 {
			options.WriteString("\n")
		}
		fmt.Fprintf(&options, "- %s: %d %s", plan.Name, plan.Price, plan.Currency)
	}
	return fmt.Sprintf(a.templates.UpgradeOptions, strings.ToLower(session.Plan), options.String())
}

func (a *Assistant) selectPlan(ctx context.Context, session *Session, message string) string {
	name, ok := ExtractPlanSelection(message)
	if !ok {
		session.SubscriptionAttempts++
		if session.SubscriptionAttempts >= maxAttempts {
			session.State = StateHandoff
			return a.templates.Handoff
		}
		return a.templates.SelectPlan
	}

	account, err := a.directory.Lookup(ctx, session.CID)
	if err != nil {
		session.State = StateHandoff
		return a.templates.Handoff
	}
	for _, plan := range account.AvailablePlans {
		if plan.Name == name {
			session.SubscriptionType = name
			session.TransferAmount = plan.Price
			session.State = StateReadyForPayment
			return fmt.Sprintf(a.templates.CIDCollected,
				account.CurrentSubscription, plan.Price, account.TransferAddress)
		}
	}

	session.SubscriptionAttempts++
	if session.SubscriptionAttempts >= maxAttempts {
		session.State = StateHandoff
		return a.templates.Handoff
	}
	return a.templates.SelectPlan
}

func (a *Assistant) submit(ctx context.Context, session *Session) {
	if a.notifier == nil {
		return
	}
	plan := session.SubscriptionType
	if plan == "" {
		plan = session.Plan
	}
	a.notifier.SupportPing(ctx, "payment_submission", session.ChatID, session.CID, session.TransferAmount,
		fmt.Sprintf("payment submitted: cid=%s plan=%s amount=%d %s", session.CID, plan, session.TransferAmount, session.Currency))
	a.logger.Info("payment submitted",
		slog.String("chat_id", session.ChatID),
		slog.String("cid", session.CID),
		slog.String("plan", plan),
		slog.Int64("amount", session.TransferAmount),
	)
}

// isPaymentContext reports whether the message plainly belongs to the
// payment flow and must never be scored as off-topic.
func isPaymentContext(message string) bool {
	if _, ok := ExtractCID(message); ok {
		return true
	}
	if _, ok := ExtractPlanSelection(message); ok {
		return true
	}
	if mentionsPaymentProof(message) {
		return true
	}
	text := strings.ToLower(message)
	for _, kw := range []string{
		"cid", "payment", "pembayaran", "bayar", "langganan", "subscription",
		"extend", "perpanjang", "upgrade", "downgrade", "paket", "plan",
		"usdt", "idr", "rupiah", "transfer", "harga", "price",
	} {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func mentionsPaymentProof(message string) bool {
	text := strings.ToLower(message)
	for _, kw := range []string{"upload", "screenshot", "bukti", "kirim"} {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
