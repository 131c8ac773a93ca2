package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/goodcasino/livecare/internal/livechat"
	"github.com/goodcasino/livecare/internal/state"
)

// ChatSource is the transport surface the poller reads from.
type ChatSource interface {
	ListActiveConversations(ctx context.Context) ([]livechat.Chat, error)
	LatestCustomerMessage(ctx context.Context, chatID string) (*livechat.Message, error)
	IsArchived(ctx context.Context, chatID string) bool
}

// TurnHandler consumes one customer message per chat turn.
type TurnHandler interface {
	HandleTurn(ctx context.Context, chatID, text, messageID string) (string, bool)
}

// Poller drives the tick loop: list active chats, fan out one goroutine per
// chat, and hand each newest customer message to the turn handler. The lock
// set guarantees a chat is never processed concurrently; a busy chat is
// simply skipped until the next tick.
type Poller struct {
	source   ChatSource
	handler  TurnHandler
	locks    *state.LockSet
	interval time.Duration
	logger   *slog.Logger

	stop chan struct{}
	done sync.WaitGroup
}

// NewPoller builds the poll loop.
func NewPoller(log *slog.Logger, source ChatSource, handler TurnHandler, interval time.Duration) *Poller {
	return &Poller{
		source:   source,
		handler:  handler,
		locks:    state.NewLockSet(),
		interval: interval,
		logger:   log.With(slog.String("service", "poller")),
		stop:     make(chan struct{}),
	}
}

// Start runs the loop until Stop is called.
func (p *Poller) Start() {
	p.done.Add(1)
	go func() {
		defer p.done.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		p.logger.Info("poller started", slog.Duration("interval", p.interval))
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				p.Tick(context.Background())
			}
		}
	}()
}

// Stop halts the loop and waits for it to exit. In-flight chat goroutines
// finish on their own.
func (p *Poller) Stop() {
	close(p.stop)
	p.done.Wait()
}

// Tick runs one polling round. Transport failures make the round a no-op.
func (p *Poller) Tick(ctx context.Context) {
	chats, err := p.source.ListActiveConversations(ctx)
	if err != nil {
		p.logger.Warn("list chats failed", slog.Any("error", err))
		return
	}
	for _, chat := range chats {
		chatID := chat.ID
		if !p.locks.TryLock(chatID) {
			continue
		}
		p.done.Add(1)
		go func() {
			defer p.done.Done()
			defer p.locks.Unlock(chatID)
			p.processChat(ctx, chatID)
		}()
	}
}

func (p *Poller) processChat(ctx context.Context, chatID string) {
	msg, err := p.source.LatestCustomerMessage(ctx, chatID)
	if err != nil {
		p.logger.Debug("read chat failed", slog.String("chat_id", chatID), slog.Any("error", err))
		return
	}
	if msg == nil {
		return
	}
	if p.source.IsArchived(ctx, chatID) {
		p.logger.Debug("chat archived, skipping", slog.String("chat_id", chatID))
		return
	}
	if reply, sent := p.handler.HandleTurn(ctx, chatID, msg.Text, msg.MessageID); sent {
		p.logger.Info("reply sent",
			slog.String("chat_id", chatID),
			slog.Int("length", len(reply)),
		)
	}
}
