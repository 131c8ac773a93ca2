// Package state holds the per-chat conversation state, the duplicate-send
// guard, and the shared trackers swept on a schedule.
package state

import (
	"sync"
	"time"
)

// Store keeps one Conversation per chat id. Creation is lazy; removal is
// time-based via EvictOlderThan.
type Store struct {
	mu     sync.Mutex
	chats  map[string]*Conversation
	now    func() time.Time
	loader func(chatID string) (*Conversation, bool)
}

// NewStore builds an empty in-memory store.
func NewStore() *Store {
	return &Store{
		chats: make(map[string]*Conversation),
		now:   time.Now,
	}
}

// WithClock overrides the store clock. Test hook.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// WithLoader installs a lazy loader consulted on first reference to a chat,
// typically backed by a durable snapshot. A loader failure falls back to a
// fresh default state.
func (s *Store) WithLoader(loader func(chatID string) (*Conversation, bool)) *Store {
	s.loader = loader
	return s
}

// GetOrCreate returns the state for chatID, creating it with defaults on
// first reference. Idempotent until the state is mutated or evicted.
func (s *Store) GetOrCreate(chatID string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv, ok := s.chats[chatID]; ok {
		return conv
	}
	if s.loader != nil {
		if conv, ok := s.loader(chatID); ok && conv != nil {
			conv.ChatID = chatID
			s.chats[chatID] = conv
			return conv
		}
	}
	conv := &Conversation{
		ChatID:   chatID,
		Language: "id",
		Started:  s.now(),
	}
	s.chats[chatID] = conv
	return conv
}

// Get returns the state for chatID without creating it.
func (s *Store) Get(chatID string) (*Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.chats[chatID]
	return conv, ok
}

// Reset drops the state for chatID so the next reference starts fresh.
func (s *Store) Reset(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, chatID)
}

// EvictOlderThan removes states started more than maxAge ago and returns the
// number removed.
func (s *Store) EvictOlderThan(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	removed := 0
	for id, conv := range s.chats {
		if conv.Started.Before(cutoff) {
			delete(s.chats, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked chats.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats)
}
