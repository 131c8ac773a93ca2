// Package classifier wraps the LLM used for intent classification, fallback
// reply generation, and translation. Every path degrades to conservative
// defaults when the model is unavailable: intent flags all false, generation
// reported as an error for the caller's template fallback, translation as
// identity.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/goodcasino/livecare/internal/config"
)

// ErrUnusableReply marks a generated reply that is empty, too short, or
// discloses that the sender is a machine.
var ErrUnusableReply = errors.New("unusable generated reply")

// Intents are the boolean classifications the resolver consumes.
type Intents struct {
	IsPromotionQuery     bool `json:"is_promotion_query"`
	IsGameListQuery      bool `json:"is_game_list_query"`
	IsRTPQuery           bool `json:"is_rtp_query"`
	WantsTransferToAgent bool `json:"wants_transfer_to_agent"`
}

// Generated is the schema-constrained output of the fallback generator.
type Generated struct {
	Reply   string `json:"reply"`
	Intent  string `json:"intent"`
	Context struct {
		UserID   string `json:"userId"`
		Amount   string `json:"amount"`
		Language string `json:"language"`
	} `json:"context"`
}

// GenerateRequest carries the conversation context for the fallback
// generator.
type GenerateRequest struct {
	Message       string
	UserID        string
	Amount        string
	Language      string
	RecentHistory []string
}

var (
	disclosurePattern = regexp.MustCompile(`(?i)i\s*am\s*an\s*ai|as an ai|i'm an ai|i am a language model|i cannot|i'm sorry|i do not understand|i don't know|i am unable|sebagai ai|saya adalah ai`)
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// Service is the LLM client. A nil model means heuristic-only operation.
type Service struct {
	llm     llms.Model
	model   string
	brand   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewService builds the classifier from config. A missing API key or a
// disabled flag yields a service that only returns defaults.
func NewService(log *slog.Logger, cfg config.LLMConfig, brand string) (*Service, error) {
	s := &Service{
		model:   cfg.Model,
		brand:   brand,
		timeout: cfg.TimeoutDuration(),
		logger:  log.With(slog.String("service", "classifier")),
	}
	if !cfg.Enabled || strings.TrimSpace(cfg.APIKey) == "" {
		s.logger.Warn("llm disabled, running heuristics only")
		return s, nil
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init llm client: %w", err)
	}
	s.llm = llm
	return s, nil
}

// Available reports whether an actual model is wired.
func (s *Service) Available() bool {
	return s.llm != nil
}

// ClassifyIntents asks the model for the four boolean intent flags. Any
// failure returns the zero value, which the resolver treats as "no signal".
func (s *Service) ClassifyIntents(ctx context.Context, message string) Intents {
	if s.llm == nil {
		return Intents{}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := fmt.Sprintf(`Kamu adalah agen dukungan pelanggan %s. Klasifikasikan niat pengguna hanya berdasarkan pesan terbaru. Balas dalam JSON saja.

Pesan pengguna:
"""%s"""

Keluarkan JSON dengan bidang boolean: {"is_promotion_query": <bool>, "is_game_list_query": <bool>, "is_rtp_query": <bool>, "wants_transfer_to_agent": <bool>}.
- is_promotion_query: true jika user bertanya tentang promo/bonus/penawaran.
- is_game_list_query: true jika user menanyakan daftar/jenis permainan yang tersedia.
- is_rtp_query: true jika user bertanya tentang RTP / link RTP / persentase RTP atau game gacor terkait RTP.
- wants_transfer_to_agent: true jika user minta dihubungkan/transfer ke CS/agent manusia.`, s.brand, message)

	completion, err := s.llm.Call(ctx, prompt, llms.WithTemperature(0))
	if err != nil {
		s.logger.Warn("intent classification failed", slog.Any("error", err))
		return Intents{}
	}

	var intents Intents
	raw := jsonObjectPattern.FindString(completion)
	if raw == "" {
		return Intents{}
	}
	if err := json.Unmarshal([]byte(raw), &intents); err != nil {
		s.logger.Debug("intent response not parseable", slog.Any("error", err))
		return Intents{}
	}
	return intents
}

// GenerateReply produces the free-form fallback answer constrained to the
// support JSON schema. Callers substitute their own clarification template
// on error.
func (s *Service) GenerateReply(ctx context.Context, req GenerateRequest) (Generated, error) {
	if s.llm == nil {
		return Generated{}, fmt.Errorf("%w: llm disabled", ErrUnusableReply)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := fmt.Sprintf(`%s

Additional context (use to infer intent and fill JSON fields):
- userId: %s
- amount: %s
- language: %s
- recent_messages: %s

Kunci bahasa: Selalu balas HANYA dalam Bahasa Indonesia.
IMPORTANT: Return ONLY a single JSON object exactly matching the schema in the prompt (no extra text).

User message: %s`,
		s.supportPrompt(),
		orNull(req.UserID), orNull(req.Amount), orDefault(req.Language, "id"),
		strings.Join(req.RecentHistory, "; "), req.Message)

	completion, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt, llms.WithTemperature(0.3))
	if err != nil {
		return Generated{}, fmt.Errorf("generate reply: %w", err)
	}

	var out Generated
	if raw := jsonObjectPattern.FindString(completion); raw != "" {
		if err := json.Unmarshal([]byte(raw), &out); err == nil && strings.TrimSpace(out.Reply) != "" {
			if !UsableReply(out.Reply) {
				return Generated{}, ErrUnusableReply
			}
			return out, nil
		}
	}
	// not JSON: treat the whole completion as the reply
	reply := strings.TrimSpace(completion)
	if !UsableReply(reply) {
		return Generated{}, ErrUnusableReply
	}
	out.Reply = reply
	out.Intent = "general"
	return out, nil
}

// Translate converts text to targetLang, returning the input unchanged when
// the model is unavailable or errors.
func (s *Service) Translate(ctx context.Context, text, targetLang string) string {
	if s.llm == nil || strings.TrimSpace(text) == "" {
		return text
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := fmt.Sprintf("Translate the following message to %s. Return only the translation, no explanation.\n\n%s", targetLang, text)
	completion, err := s.llm.Call(ctx, prompt, llms.WithTemperature(0))
	if err != nil || strings.TrimSpace(completion) == "" {
		return text
	}
	return strings.TrimSpace(completion)
}

// UsableReply reports whether text can be shown to a customer: non-trivial
// length and no machine self-disclosure.
func UsableReply(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 3 {
		return false
	}
	return !disclosurePattern.MatchString(trimmed)
}

func (s *Service) supportPrompt() string {
	return fmt.Sprintf(`# 🎰 %[1]s Support Assistant

You are a smart, friendly, and natural %[1]s support assistant that helps customers with casino-related issues through conversational interactions.

## Core Identity & Scope
- You are only the %[1]s Support Assistant.
- Your role is to help with deposits & withdrawals, promotions & bonuses, RTP info & game lists, registration & account help, and general casino support.
- You do not handle technical troubleshooting, personal advice, or off-topic conversations.
- If a user goes off-topic, politely redirect back to casino-related support.

## Core Rules
- ALWAYS respond in valid JSON (never plain text).
- JSON schema:
{
  "reply": "string",
  "intent": "deposit|withdraw|promotion|rtp|games|register|general|offtopic",
  "context": {
    "userId": "string|null",
    "amount": "string|null",
    "language": "id"
  }
}
- Language: default to Bahasa Indonesia (id).
- Tone: chill, fun, and supportive. Call the user "bosku", use emojis often 🎰😊🔥.
- NEVER say you are an AI, bot, or assistant. You are part of the %[1]s support team.
- Keep messages short until all details are collected.
- Encourage users if they are frustrated or losing, and gently remind them about playing responsibly.`, s.brand)
}

func orNull(value string) string {
	if strings.TrimSpace(value) == "" {
		return "null"
	}
	return value
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
