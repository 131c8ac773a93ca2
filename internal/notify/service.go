// Package notify delivers fire-and-forget support pings that alert human
// staff to a pending customer request.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	pingTimeout    = 5 * time.Second
	maxRecentPings = 100
)

// Ping is one support notification.
type Ping struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	ChatID    string    `json:"chatId"`
	UserID    string    `json:"userId,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Language  string    `json:"language"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service posts pings to the configured sink and keeps a bounded in-memory
// log served by the admin API. Delivery failures are logged, never surfaced.
type Service struct {
	url    string
	client *http.Client
	logger *slog.Logger

	mu     sync.Mutex
	recent []Ping
}

// NewService builds the sink client. An empty url disables delivery but
// still records pings for the admin API.
func NewService(log *slog.Logger, url string) *Service {
	return &Service{
		url:    strings.TrimSpace(url),
		client: &http.Client{Timeout: pingTimeout},
		logger: log.With(slog.String("service", "notify")),
	}
}

// SupportPing records the ping and delivers it in the background. The caller
// never waits on, or learns about, delivery.
func (s *Service) SupportPing(ctx context.Context, pingType, chatID, userID string, amount int64, message string) {
	ping := Ping{
		ID:        uuid.NewString(),
		Type:      pingType,
		ChatID:    chatID,
		UserID:    userID,
		Amount:    amount,
		Language:  "id",
		Message:   message,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.recent = append(s.recent, ping)
	if len(s.recent) > maxRecentPings {
		s.recent = s.recent[len(s.recent)-maxRecentPings:]
	}
	s.mu.Unlock()

	if s.url == "" {
		return
	}
	go s.deliver(ping)
}

func (s *Service) deliver(ping Ping) {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := s.post(ctx, ping); err != nil {
		s.logger.Warn("support ping failed",
			slog.String("type", ping.Type),
			slog.String("chat_id", ping.ChatID),
			slog.Any("error", err),
		)
		return
	}
	s.logger.Info("support ping delivered",
		slog.String("type", ping.Type),
		slog.String("chat_id", ping.ChatID),
	)
}

func (s *Service) post(ctx context.Context, ping Ping) error {
	body, err := json.Marshal(ping)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sink returned status %d", resp.StatusCode)
	}
	return nil
}

// Recent returns the buffered pings, newest last.
func (s *Service) Recent() []Ping {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Ping, len(s.recent))
	copy(out, s.recent)
	return out
}
