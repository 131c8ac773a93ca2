package state

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// fingerprintLength bounds the normalized text used as a send fingerprint.
	fingerprintLength = 100
	// suppressionWindow is how long an identical reply stays suppressed.
	suppressionWindow = 5 * time.Minute
	// maxRecordsPerChat caps retained fingerprints per chat, newest kept.
	maxRecordsPerChat = 20
)

type sentRecord struct {
	hash string
	at   time.Time
}

// Guard suppresses re-sending an identical reply to the same chat within a
// short window. The livechat transport is polled, so overlapping cycles can
// re-derive the same reply for the same input; this guard is the only
// defense against double-sending to the customer.
type Guard struct {
	mu   sync.Mutex
	sent map[string][]sentRecord
	now  func() time.Time
}

// NewGuard builds an empty duplicate-send guard.
func NewGuard() *Guard {
	return &Guard{
		sent: make(map[string][]sentRecord),
		now:  time.Now,
	}
}

// WithClock overrides the guard clock. Test hook.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// Fingerprint normalizes text for comparison: lowercased, trimmed, first 100
// chars. Empty input yields an empty fingerprint.
func Fingerprint(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if len(normalized) > fingerprintLength {
		normalized = normalized[:fingerprintLength]
	}
	return normalized
}

// WasSent reports whether text was already delivered to chatID within the
// suppression window. Empty text is never a duplicate.
func (g *Guard) WasSent(chatID, text string) bool {
	hash := Fingerprint(text)
	if hash == "" {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	cutoff := g.now().Add(-suppressionWindow)
	for _, rec := range g.sent[chatID] {
		if rec.hash == hash && !rec.at.Before(cutoff) {
			return true
		}
	}
	return false
}

// MarkSent records a delivered text for chatID, pruning expired entries and
// keeping at most the 20 newest. Empty text is never recorded.
func (g *Guard) MarkSent(chatID, text string) {
	hash := Fingerprint(text)
	if hash == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	cutoff := now.Add(-suppressionWindow)

	kept := g.sent[chatID][:0]
	for _, rec := range g.sent[chatID] {
		if !rec.at.Before(cutoff) {
			kept = append(kept, rec)
		}
	}
	kept = append(kept, sentRecord{hash: hash, at: now})

	if len(kept) > maxRecordsPerChat {
		sort.Slice(kept, func(i, j int) bool { return kept[i].at.After(kept[j].at) })
		kept = kept[:maxRecordsPerChat]
	}
	g.sent[chatID] = kept
}

// Sweep drops all fingerprints older than maxAge across every chat and
// removes chats left empty.
func (g *Guard) Sweep(maxAge time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cutoff := g.now().Add(-maxAge)
	for chatID, records := range g.sent {
		kept := records[:0]
		for _, rec := range records {
			if !rec.at.Before(cutoff) {
				kept = append(kept, rec)
			}
		}
		if len(kept) == 0 {
			delete(g.sent, chatID)
			continue
		}
		g.sent[chatID] = kept
	}
}
