// Package livechat is the client for the LiveChat Agent API: listing active
// chats, reading the newest customer message, sending events, and checking
// archival status.
package livechat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/goodcasino/livecare/internal/config"
	"github.com/goodcasino/livecare/internal/resilience"
)

// ErrNoToken is returned when neither a PAT nor a bearer token is configured.
var ErrNoToken = errors.New("livechat access token not configured")

// Chat is one active conversation summary.
type Chat struct {
	ID     string
	Status string
}

// Message is the newest customer message in a chat. MessageID is the
// idempotency key: chat id plus event id.
type Message struct {
	ID        string
	MessageID string
	Text      string
	AuthorID  string
	CreatedAt time.Time
}

type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("livechat api status %d: %s", e.Status, e.Body)
}

var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)

// Phrases that mark a message as one of our own replies echoed back; such
// events never count as customer messages.
var botIndicators = []string{
	"hello boss", "how can i help", "bosku", "mohon ditunggu", "baik bosku",
	"selamat bermain", "good luck", "terima kasih", "thank you",
	"deposit has been processed", "withdrawal has been processed",
	"please wait", "mohon menunggu", "will be processed", "ty", "thanks",
	"thank", "terimakasih", "makasih", "tq", "thx", "tyvm", "tysm",
}

// Client talks to the Agent API with rate limiting, bounded retries, and a
// circuit breaker. Auth tries Basic and Bearer variants, preferring whichever
// matches the token shape, and falls through on 401/403 only.
type Client struct {
	baseURL string
	token   string
	bearer  string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	retry   resilience.RetryConfig
	logger  *slog.Logger
}

// NewClient builds the transport client from config.
func NewClient(log *slog.Logger, cfg config.LiveChatConfig) *Client {
	retry := resilience.DefaultRetryConfig()
	if cfg.RetryCount > 0 {
		retry.MaxAttempts = cfg.RetryCount + 1
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   strings.TrimSpace(cfg.PAT),
		bearer:  strings.TrimSpace(cfg.BearerToken),
		http:    &http.Client{Timeout: cfg.RequestTimeoutDuration()},
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		breaker: resilience.NewCircuitBreaker("livechat"),
		retry:   retry,
		logger:  log.With(slog.String("service", "livechat")),
	}
}

// ListActiveConversations returns the chats currently worth polling. A
// transport failure yields an empty slice so the tick is a no-op.
func (c *Client) ListActiveConversations(ctx context.Context) ([]Chat, error) {
	payload := map[string]any{
		"filters": map[string]any{"status": []string{"active", "queued", "pending"}},
		"limit":   20,
	}
	raw, err := c.post(ctx, "/agent/action/list_chats", payload)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		ChatsSummary []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"chats_summary"`
		Chats []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"chats"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse list_chats: %w", err)
	}

	summaries := parsed.ChatsSummary
	if len(summaries) == 0 {
		summaries = parsed.Chats
	}
	chats := make([]Chat, 0, len(summaries))
	for _, item := range summaries {
		if item.Status == "archived" || item.Status == "closed" {
			continue
		}
		chats = append(chats, Chat{ID: item.ID, Status: item.Status})
	}
	return chats, nil
}

// LatestCustomerMessage returns the newest message authored by the customer,
// or nil when the chat holds none. Agent, bot, and system events are
// filtered out, as are echoes of our own reply templates.
func (c *Client) LatestCustomerMessage(ctx context.Context, chatID string) (*Message, error) {
	raw, err := c.post(ctx, "/agent/action/list_threads", map[string]any{"chat_id": chatID})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Threads []struct {
			Events []struct {
				ID        string    `json:"id"`
				Type      string    `json:"type"`
				Text      string    `json:"text"`
				AuthorID  string    `json:"author_id"`
				CreatedAt time.Time `json:"created_at"`
			} `json:"events"`
		} `json:"threads"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse list_threads: %w", err)
	}

	var candidates []Message
	for _, thread := range parsed.Threads {
		for _, event := range thread.Events {
			if event.Type != "message" || event.Text == "" || event.AuthorID == "" {
				continue
			}
			if !isCustomerAuthor(event.AuthorID) || looksLikeBotReply(event.Text) {
				continue
			}
			candidates = append(candidates, Message{
				ID:        event.ID,
				MessageID: chatID + "_" + event.ID,
				Text:      event.Text,
				AuthorID:  event.AuthorID,
				CreatedAt: event.CreatedAt,
			})
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	latest := candidates[0]
	return &latest, nil
}

// SendMessage posts a message event to the chat. The returned error is for
// logging only; callers treat failure as "no-op this tick".
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	payload := map[string]any{
		"chat_id": chatID,
		"event": map[string]any{
			"type":       "message",
			"text":       text,
			"recipients": "all",
		},
	}
	if _, err := c.post(ctx, "/agent/action/send_event", payload); err != nil {
		return err
	}
	c.logger.Debug("message sent", slog.String("chat_id", chatID))
	return nil
}

// IsArchived reports whether the chat is archived or closed. Errors resolve
// to false so an unreachable API never silences an active chat.
func (c *Client) IsArchived(ctx context.Context, chatID string) bool {
	raw, err := c.post(ctx, "/agent/action/get_chat", map[string]any{"chat_id": chatID})
	if err != nil {
		c.logger.Debug("get_chat failed", slog.String("chat_id", chatID), slog.Any("error", err))
		return false
	}
	var parsed struct {
		Status string `json:"status"`
		Chat   struct {
			Status string `json:"status"`
		} `json:"chat"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return false
	}
	status := parsed.Chat.Status
	if status == "" {
		status = parsed.Status
	}
	return status == "archived" || status == "closed"
}

func isCustomerAuthor(authorID string) bool {
	lower := strings.ToLower(authorID)
	return !strings.Contains(lower, "agent") &&
		!strings.Contains(lower, "bot") &&
		!strings.Contains(lower, "system")
}

func looksLikeBotReply(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range botIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// authHeaders returns the Authorization values to try, ordered by token
// shape: base64-looking tokens try Basic first, everything else Bearer
// first. A dedicated bearer token always wins.
func (c *Client) authHeaders() ([]string, error) {
	if c.bearer != "" {
		return []string{"Bearer " + c.bearer}, nil
	}
	if c.token == "" {
		return nil, ErrNoToken
	}
	if base64Pattern.MatchString(c.token) && strings.Contains(c.token, "=") {
		return []string{"Basic " + c.token, "Bearer " + c.token}, nil
	}
	return []string{"Bearer " + c.token, "Basic " + c.token}, nil
}

func (c *Client) post(ctx context.Context, action string, body any) (json.RawMessage, error) {
	headers, err := c.authHeaders()
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, auth := range headers {
		raw, err := c.breaker.Execute(func() (any, error) {
			var out json.RawMessage
			retryErr := resilience.RetryWithBackoff(ctx, c.retry, func() error {
				var doErr error
				out, doErr = c.doOnce(ctx, action, payload, auth)
				return doErr
			})
			return out, retryErr
		})
		if err == nil {
			return raw.(json.RawMessage), nil
		}
		lastErr = err

		var apiErr *apiError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
			c.logger.Warn("auth scheme rejected, trying alternative",
				slog.String("action", action),
				slog.Int("status", apiErr.Status),
			)
			continue
		}
		break
	}
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, action string, payload []byte, auth string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", resilience.ErrNonRetryable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+action, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", resilience.ErrNonRetryable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", auth)

	resp, err := c.http.Do(req)
	if err != nil {
		// timeouts and connection resets are retryable
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return json.RawMessage(data), nil
	}

	apiErr := &apiError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, apiErr
	}
	return nil, fmt.Errorf("%w: %w", resilience.ErrNonRetryable, apiErr)
}
