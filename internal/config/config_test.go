package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != DefaultHTTPAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultHTTPAddr)
	}
	if cfg.Bot.OffTopicThreshold != DefaultOffTopicThreshold {
		t.Errorf("Bot.OffTopicThreshold = %d, want %d", cfg.Bot.OffTopicThreshold, DefaultOffTopicThreshold)
	}
	if got := cfg.LiveChat.PollIntervalDuration(); got != 5*time.Second {
		t.Errorf("PollIntervalDuration() = %v, want 5s", got)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livecare.toml")
	content := `
[server]
addr = ":9999"

[bot]
brand_name = "TESTBRAND"
off_topic_threshold = 6

[livechat]
poll_interval = "2s"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %q, want :9999", cfg.Server.Addr)
	}
	if cfg.Bot.BrandName != "TESTBRAND" {
		t.Errorf("Bot.BrandName = %q, want TESTBRAND", cfg.Bot.BrandName)
	}
	if cfg.Bot.OffTopicThreshold != 6 {
		t.Errorf("Bot.OffTopicThreshold = %d, want 6", cfg.Bot.OffTopicThreshold)
	}
	if got := cfg.LiveChat.PollIntervalDuration(); got != 2*time.Second {
		t.Errorf("PollIntervalDuration() = %v, want 2s", got)
	}
	// untouched sections keep defaults
	if cfg.Bot.ReplyMaxLength != DefaultReplyMaxLength {
		t.Errorf("Bot.ReplyMaxLength = %d, want %d", cfg.Bot.ReplyMaxLength, DefaultReplyMaxLength)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LIVECHAT_PAT", "pat-from-env")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LiveChat.PAT != "pat-from-env" {
		t.Errorf("LiveChat.PAT = %q, want pat-from-env", cfg.LiveChat.PAT)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("LLM.APIKey = %q, want sk-test", cfg.LLM.APIKey)
	}
}
