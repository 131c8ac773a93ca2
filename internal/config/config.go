// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath         = "livecare.toml"
	DefaultHTTPAddr           = ":3001"
	DefaultLiveChatBaseURL    = "https://api.livechatinc.com/v3.5"
	DefaultPollInterval       = "5s"
	DefaultRequestTimeout     = "8s"
	DefaultRetryCount         = 2
	DefaultLanguage           = "id"
	DefaultBrandName          = "GoodCasino"
	DefaultOffTopicThreshold  = 4
	DefaultPaymentThreshold   = 3
	DefaultMinResponseGap     = "7s"
	DefaultReplyMaxLength     = 1000
	DefaultDataDir            = "data"
	DefaultHistoryPath        = "data/livecare.db"
	DefaultLLMModel           = "gpt-4o-mini"
	DefaultLLMTimeout         = "10s"
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	LiveChat LiveChatConfig `toml:"livechat"`
	LLM      LLMConfig      `toml:"llm"`
	Bot      BotConfig      `toml:"bot"`
	Payment  PaymentConfig  `toml:"payment"`
	Data     DataConfig     `toml:"data"`
	History  HistoryConfig  `toml:"history"`
	Support  SupportConfig  `toml:"support"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the admin HTTP server listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LiveChatConfig holds LiveChat Agent API credentials and polling behavior.
type LiveChatConfig struct {
	BaseURL        string `toml:"base_url"`
	PAT            string `toml:"pat"`
	BearerToken    string `toml:"bearer_token"`
	LicenseID      string `toml:"license_id"`
	GroupID        int    `toml:"group_id"`
	PollInterval   string `toml:"poll_interval"`
	RequestTimeout string `toml:"request_timeout"`
	RetryCount     int    `toml:"retry_count"`
}

// LLMConfig holds the OpenAI-compatible endpoint used for intent
// classification and fallback reply generation.
type LLMConfig struct {
	Enabled bool   `toml:"enabled"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	APIKey  string `toml:"api_key"`
	Timeout string `toml:"timeout"`
}

// BotConfig holds support-bot behavior knobs.
type BotConfig struct {
	BrandName         string `toml:"brand_name"`
	Language          string `toml:"language"`
	OffTopicThreshold int    `toml:"off_topic_threshold"`
	MinResponseGap    string `toml:"min_response_gap"`
	ReplyMaxLength    int    `toml:"reply_max_length"`
}

// PaymentConfig holds the payment-assistant variant knobs.
type PaymentConfig struct {
	Enabled           bool `toml:"enabled"`
	OffTopicThreshold int  `toml:"off_topic_threshold"`
}

// DataConfig holds the directory for promotions/rtp/game data files.
type DataConfig struct {
	Dir string `toml:"dir"`
}

// HistoryConfig holds the SQLite database path for durable chat history.
type HistoryConfig struct {
	Path string `toml:"path"`
}

// SupportConfig holds the support-ping sink endpoint.
type SupportConfig struct {
	PingURL string `toml:"ping_url"`
}

// PollIntervalDuration parses the configured poll interval, falling back to the default.
func (c LiveChatConfig) PollIntervalDuration() time.Duration {
	return parseDuration(c.PollInterval, DefaultPollInterval)
}

// RequestTimeoutDuration parses the configured request timeout, falling back to the default.
func (c LiveChatConfig) RequestTimeoutDuration() time.Duration {
	return parseDuration(c.RequestTimeout, DefaultRequestTimeout)
}

// MinResponseGapDuration parses the minimum gap between bot replies to one chat.
func (c BotConfig) MinResponseGapDuration() time.Duration {
	return parseDuration(c.MinResponseGap, DefaultMinResponseGap)
}

// TimeoutDuration parses the LLM call timeout, falling back to the default.
func (c LLMConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout, DefaultLLMTimeout)
}

func parseDuration(value, fallback string) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
}

// Load reads and parses the TOML config file at path and applies default
// values for missing fields. Environment variables override credentials so
// tokens can stay out of the file.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		LiveChat: LiveChatConfig{
			BaseURL:        DefaultLiveChatBaseURL,
			PollInterval:   DefaultPollInterval,
			RequestTimeout: DefaultRequestTimeout,
			RetryCount:     DefaultRetryCount,
		},
		LLM: LLMConfig{
			Enabled: true,
			Model:   DefaultLLMModel,
			Timeout: DefaultLLMTimeout,
		},
		Bot: BotConfig{
			BrandName:         DefaultBrandName,
			Language:          DefaultLanguage,
			OffTopicThreshold: DefaultOffTopicThreshold,
			MinResponseGap:    DefaultMinResponseGap,
			ReplyMaxLength:    DefaultReplyMaxLength,
		},
		Payment: PaymentConfig{
			OffTopicThreshold: DefaultPaymentThreshold,
		},
		Data: DataConfig{
			Dir: DefaultDataDir,
		},
		History: HistoryConfig{
			Path: DefaultHistoryPath,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("LIVECHAT_PAT")); v != "" {
		cfg.LiveChat.PAT = v
	}
	if v := strings.TrimSpace(os.Getenv("LIVECHAT_BEARER_TOKEN")); v != "" {
		cfg.LiveChat.BearerToken = v
	}
	if v := strings.TrimSpace(os.Getenv("LIVECHAT_LICENSE_ID")); v != "" {
		cfg.LiveChat.LicenseID = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("SERVER_ADDR")); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("SUPPORT_PING_URL")); v != "" {
		cfg.Support.PingURL = v
	}
}
