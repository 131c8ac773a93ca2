// Package payment implements the subscription payment assistant: a small
// state machine that collects a customer id, looks up the subscription,
// presents plan options, and hands the collected payment details to an agent.
package payment

import (
	"sync"
	"time"
)

// Assistant states, advanced one transition per customer message.
const (
	StateGreeting        = "greeting"
	StateCollectingCID   = "collecting_cid"
	StateShowingOptions  = "showing_subscription_options"
	StateReadyForPayment = "ready_for_payment"
	StateProcessing      = "processing"
	StateSubmitted       = "submitted_to_agent"
	StateHandoff         = "handoff"
)

// maxAttempts bounds repeated failures in one state before handoff.
const maxAttempts = 3

// Session is the per-chat assistant state.
type Session struct {
	ChatID string
	State  string

	CID              string
	Plan             string
	Currency         string
	SubscriptionType string
	TransferAddress  string
	TransferAmount   int64
	IDRRate          int64

	CIDAttempts          int
	SubscriptionAttempts int

	RecentMessages []string
	Started        time.Time
	LastSeen       time.Time
}

// Store holds assistant sessions keyed by chat id.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewStore builds an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// WithClock overrides the time source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// GetOrCreate returns the session for chatID, creating a fresh one in the
// greeting state when none exists.
func (s *Store) GetOrCreate(chatID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[chatID]; ok {
		session.LastSeen = s.now()
		return session
	}
	session := &Session{
		ChatID:   chatID,
		State:    StateGreeting,
		Plan:     PlanExtend,
		Currency: "USDT",
		Started:  s.now(),
		LastSeen: s.now(),
	}
	s.sessions[chatID] = session
	return session
}

// Reset discards the session for chatID.
func (s *Store) Reset(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

// EvictOlderThan drops sessions idle beyond maxAge and reports the count.
func (s *Store) EvictOlderThan(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	evicted := 0
	for chatID, session := range s.sessions {
		if session.LastSeen.Before(cutoff) {
			delete(s.sessions, chatID)
			evicted++
		}
	}
	return evicted
}

// remember appends message to the bounded recent-message window.
func (sess *Session) remember(message string) {
	sess.RecentMessages = append(sess.RecentMessages, message)
	if len(sess.RecentMessages) > 10 {
		sess.RecentMessages = sess.RecentMessages[len(sess.RecentMessages)-10:]
	}
}
