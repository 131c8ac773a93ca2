// Package bot ties the message pipeline together: it turns one polled
// customer message into at most one delivered reply, and owns the
// idempotency, duplicate-suppression, and persistence rules around sending.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/goodcasino/livecare/internal/history"
	"github.com/goodcasino/livecare/internal/state"
)

// Responder resolves one customer message into at most one reply.
type Responder interface {
	Resolve(ctx context.Context, conv *state.Conversation, message string) string
}

// Sender delivers replies to the chat transport.
type Sender interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// Service is the per-message turn handler. One goroutine per chat at a time;
// the poller's lock set enforces that.
type Service struct {
	store     *state.Store
	guard     *state.Guard
	responses *state.ResponseTracker
	history   *history.Service
	responder Responder
	sender    Sender

	replyMaxLength int
	minResponseGap time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

// NewService builds the turn handler. history may be nil to run without
// persistence.
func NewService(log *slog.Logger, store *state.Store, guard *state.Guard, responses *state.ResponseTracker, hist *history.Service, responder Responder, sender Sender, replyMaxLength int, minResponseGap time.Duration) *Service {
	return &Service{
		store:          store,
		guard:          guard,
		responses:      responses,
		history:        hist,
		responder:      responder,
		sender:         sender,
		replyMaxLength: replyMaxLength,
		minResponseGap: minResponseGap,
		now:            time.Now,
		logger:         log.With(slog.String("service", "bot")),
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// HandleTurn processes one customer message and reports whether a reply was
// delivered. Processing is idempotent on messageID, and state is only
// persisted after the transport confirmed delivery.
func (s *Service) HandleTurn(ctx context.Context, chatID, text, messageID string) (string, bool) {
	conv := s.store.GetOrCreate(chatID)

	if messageID != "" && conv.LastProcessedMessageID == messageID {
		return "", false
	}
	if !s.responses.AllowedAfter(chatID, s.minResponseGap) {
		s.logger.Debug("response gap not met", slog.String("chat_id", chatID))
		return "", false
	}

	// A retried turn (send failure last time) must not log the customer
	// message a second time.
	if messageID == "" || conv.LastRecordedMessageID != messageID {
		conv.HasReceivedCustomerMessage = true
		conv.AppendHistory(text, state.HistoryTypeUser, s.now())
		s.recordMessage(ctx, chatID, state.HistoryTypeUser, text)
		conv.LastRecordedMessageID = messageID
	}

	reply := truncate(s.responder.Resolve(ctx, conv, text), s.replyMaxLength)
	if reply == "" {
		conv.LastProcessedMessageID = messageID
		s.persist(ctx, conv)
		return "", false
	}
	if s.guard.WasSent(chatID, reply) {
		s.logger.Info("duplicate reply suppressed", slog.String("chat_id", chatID))
		conv.LastProcessedMessageID = messageID
		s.persist(ctx, conv)
		return "", false
	}

	if err := s.sender.SendMessage(ctx, chatID, reply); err != nil {
		// The message id stays unprocessed, so the next poll retries the turn.
		s.logger.Error("send failed",
			slog.String("chat_id", chatID),
			slog.Any("error", err),
		)
		return "", false
	}

	conv.LastProcessedMessageID = messageID
	s.guard.MarkSent(chatID, reply)
	s.responses.Record(chatID)
	conv.LastResponseAt = s.now()
	conv.AppendHistory(reply, state.HistoryTypeAgent, s.now())
	s.recordMessage(ctx, chatID, state.HistoryTypeAgent, reply)
	s.persist(ctx, conv)
	return reply, true
}

func (s *Service) persist(ctx context.Context, conv *state.Conversation) {
	if s.history == nil {
		return
	}
	if err := s.history.SaveState(ctx, conv.ChatID, conv); err != nil {
		s.logger.Warn("state not persisted",
			slog.String("chat_id", conv.ChatID),
			slog.Any("error", err),
		)
	}
}

func (s *Service) recordMessage(ctx context.Context, chatID, role, content string) {
	if s.history == nil {
		return
	}
	if err := s.history.AddMessage(ctx, chatID, role, content); err != nil {
		s.logger.Warn("message not persisted",
			slog.String("chat_id", chatID),
			slog.Any("error", err),
		)
	}
}

func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
