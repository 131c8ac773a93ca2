package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goodcasino/livecare/internal/state"
)

// Flow kinds, also used as the support-ping type tag.
const (
	KindDeposit  = "deposit_check"
	KindWithdraw = "withdraw_check"
)

// Notifier delivers the fire-and-forget support ping fired when a flow
// completes. Failures must be swallowed by the implementation.
type Notifier interface {
	SupportPing(ctx context.Context, pingType, chatID, userID string, amount int64, message string)
}

// Templates holds the per-kind user-facing strings.
type Templates struct {
	AskID     string
	AskAmount string
	// Confirm is a format string taking the user id and the formatted amount.
	Confirm string
}

// DepositTemplates are the stock Indonesian deposit-check prompts.
func DepositTemplates() Templates {
	return Templates{
		AskID:     "Boleh minta User ID-nya dulu bosku? 😊",
		AskAmount: "Oke bosku! Nominal depositnya berapa ya? (contoh: Rp 150.000) 😊",
		Confirm:   "Baik, saya akan cek deposit untuk User ID: %s sejumlah Rp %s. Mohon ditunggu sebentar.",
	}
}

// WithdrawTemplates are the stock Indonesian withdraw-check prompts.
func WithdrawTemplates() Templates {
	return Templates{
		AskID:     "Boleh minta User ID-nya dulu bosku? 😊",
		AskAmount: "Oke bosku! Nominal penarikannya berapa ya? (contoh: Rp 150.000) 😊",
		Confirm:   "Baik, saya akan cek penarikan untuk User ID: %s sejumlah Rp %s. Mohon ditunggu sebentar.",
	}
}

// Result is one engine turn: the reply to send, and the captured slots when
// the flow completed this turn.
type Result struct {
	Reply     string
	Completed bool
	UserID    string
	Amount    int64
}

// Engine drives one flow kind. All slot mutation for that kind happens here;
// nothing else may write the FlowState fields.
type Engine struct {
	kind      string
	templates Templates
	notifier  Notifier
	logger    *slog.Logger
}

// NewEngine builds a flow engine for one kind.
func NewEngine(log *slog.Logger, kind string, templates Templates, notifier Notifier) *Engine {
	return &Engine{
		kind:      kind,
		templates: templates,
		notifier:  notifier,
		logger:    log.With(slog.String("service", "flow"), slog.String("kind", kind)),
	}
}

// Handle advances the flow with one customer message. triggered marks a turn
// where the inquiry phrase matched; a trigger on an inactive flow discards
// any stale slots before extracting, so an old id cannot leak into a new
// inquiry. While active, every message is a slot-fill candidate.
func (e *Engine) Handle(ctx context.Context, chatID string, fs *state.FlowState, message string, triggered bool) Result {
	if !fs.Active {
		if !triggered {
			return Result{}
		}
		fs.Reset()
		fs.Active = true
	}

	// Amount first, and its span removed, so digits never become an id.
	remainder := message
	if amount, rest, ok := ExtractAmount(message); ok {
		fs.Amount = amount
		remainder = rest
	}
	if userID, ok := ExtractUserID(remainder); ok {
		fs.UserID = userID
	}

	// Ask in fixed order: identifier, then amount.
	if fs.UserID == "" {
		return Result{Reply: e.templates.AskID}
	}
	if fs.Amount <= 0 {
		return Result{Reply: e.templates.AskAmount}
	}

	userID, amount := fs.UserID, fs.Amount
	reply := fmt.Sprintf(e.templates.Confirm, userID, FormatAmount(amount))

	if e.notifier != nil {
		e.notifier.SupportPing(ctx, e.kind, chatID, userID, amount,
			fmt.Sprintf("%s request: %s / Rp %s", e.kind, userID, FormatAmount(amount)))
	}
	e.logger.Info("flow completed",
		slog.String("chat_id", chatID),
		slog.String("user_id", userID),
		slog.Int64("amount", amount),
	)

	fs.Reset()
	return Result{Reply: reply, Completed: true, UserID: userID, Amount: amount}
}
