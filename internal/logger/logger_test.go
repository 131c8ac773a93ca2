package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitHonorsLevel(t *testing.T) {
	Init("warn", "json")

	ctx := context.Background()
	if L.Enabled(ctx, slog.LevelInfo) {
		t.Fatal("info records should be dropped at warn level")
	}
	if !L.Enabled(ctx, slog.LevelWarn) {
		t.Fatal("warn records should pass at warn level")
	}
}
