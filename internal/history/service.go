// Package history persists chat state snapshots and message logs to SQLite
// so conversations survive a restart.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultMessageLimit = 50

const schema = `
CREATE TABLE IF NOT EXISTS chats (
    id TEXT PRIMARY KEY,
    state TEXT NOT NULL,
    last_activity INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    chat_id TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_chat_id ON messages(chat_id);
CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages(timestamp);
CREATE INDEX IF NOT EXISTS idx_chats_last_activity ON chats(last_activity);
`

// Message is one durable chat log line.
type Message struct {
	ID        int64     `json:"id"`
	ChatID    string    `json:"chat_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Service wraps the SQLite database.
type Service struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open creates or opens the database at path, applies the schema, and
// enables WAL journaling.
func Open(log *slog.Logger, path string) (*Service, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Service{
		db:     db,
		logger: log.With(slog.String("service", "history")),
		now:    time.Now,
	}, nil
}

// Close closes the underlying database.
func (s *Service) Close() error {
	return s.db.Close()
}

// SaveState upserts a JSON snapshot of the chat state.
func (s *Service) SaveState(ctx context.Context, chatID string, state any) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	now := s.now().UnixMilli()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO chats (id, state, last_activity, created_at) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET state = excluded.state, last_activity = excluded.last_activity`,
		chatID, string(payload), now, now)
	return err
}

// LoadState reads the snapshot for chatID into out. A missing row or a
// corrupt snapshot returns false so the caller re-initializes defaults
// instead of failing the poll cycle.
func (s *Service) LoadState(ctx context.Context, chatID string, out any) bool {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM chats WHERE id = ?`, chatID).Scan(&payload)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("load state failed", slog.String("chat_id", chatID), slog.Any("error", err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		s.logger.Warn("corrupt state snapshot, using defaults", slog.String("chat_id", chatID), slog.Any("error", err))
		return false
	}
	return true
}

// AddMessage appends one message to the durable log.
func (s *Service) AddMessage(ctx context.Context, chatID, role, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (chat_id, role, content, timestamp) VALUES (?, ?, ?, ?)`,
		chatID, role, content, s.now().UnixMilli())
	return err
}

// RecentMessages returns up to limit newest messages for chatID, newest
// first.
func (s *Service) RecentMessages(ctx context.Context, chatID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, chat_id, role, content, timestamp FROM messages
WHERE chat_id = ? ORDER BY timestamp DESC LIMIT ?`, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var ts int64
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &ts); err != nil {
			return nil, err
		}
		m.Timestamp = time.UnixMilli(ts)
		out = append(out, m)
	}
	return out, rows.Err()
}

// CleanupOldChats deletes chats (and their messages) idle longer than
// maxAge, returning the number of chats removed.
func (s *Service) CleanupOldChats(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge).UnixMilli()

	if _, err := s.db.ExecContext(ctx, `
DELETE FROM messages WHERE chat_id IN (SELECT id FROM chats WHERE last_activity < ?)`, cutoff); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE last_activity < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("cleaned up idle chats", slog.Int64("count", removed))
	}
	return removed, nil
}
