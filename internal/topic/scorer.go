// Package topic scores messages for relevance to supported support topics.
// The scorer is pure: same message in, same result out, no side effects.
package topic

import (
	"regexp"
	"strings"
)

// Off-topic categories, in detection priority order.
const (
	TypeStory    = "story"
	TypeRant     = "rant"
	TypeOffTopic = "offtopic"
)

// DefaultThreshold is the score at or above which a message counts as
// off-topic in the main support bot. The payment assistant uses a lower one.
const DefaultThreshold = 4

// Result is the scorer verdict for one message.
type Result struct {
	OffTopic bool
	Type     string
	Score    int
}

var storyKeywords = []string{
	"kemarin", "cerita", "ceritanya", "curhat", "teman", "temen",
	"keluarga", "pacar", "mantan", "tetangga", "sekolah", "kuliah",
	"mimpi", "jalan-jalan", "liburan",
}

var rantKeywords = []string{
	"kesal", "kesel", "marah", "benci", "capek", "cape", "males",
	"bete", "emosi", "muak", "jengkel", "sebel", "stress", "stres",
}

// Greeting words must match as whole tokens; substring matching would fire
// on ordinary words like "hidup" ("hi") or "nih" ("hi").
var greetingPattern = regexp.MustCompile(`(?i)\b(halo|hai|hello|hi|hay|helo|pagi|siang|sore|malam|assalamualaikum)\b`)

var businessKeywords = []string{
	"deposit", "depo", "withdraw", "wd", "penarikan", "tarik dana",
	"akun", "account", "bank", "transfer", "bonus", "promo", "promosi",
	"game", "slot", "rtp", "user id", "userid", "saldo", "menang",
	"kalah", "daftar", "login", "masuk", "cek", "bantuan", "bantu",
}

var negativeEmojis = []string{
	"😢", "😭", "😡", "🤬", "😤", "💔", "😞", "😔", "😟", "😠", "🥺",
}

var storyPattern = regexp.MustCompile(`(?i)\b(aku|saya|gue|gw|gua)\b.*\b(tadi|kemarin|barusan|habis|abis)\b|jadi\s+(gini|begini|ceritanya)`)

func containsAny(message string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(message, kw) {
			return true
		}
	}
	return false
}

// Score rates message relevance. threshold <= 0 falls back to
// DefaultThreshold. Callers may invoke it any number of times per message.
func Score(message string, threshold int) Result {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	trimmed := strings.TrimSpace(message)
	lower := strings.ToLower(trimmed)
	length := len([]rune(trimmed))

	isGreeting := greetingPattern.MatchString(lower)
	isBusiness := containsAny(lower, businessKeywords)
	isStory := containsAny(lower, storyKeywords)
	isRant := containsAny(lower, rantKeywords)

	score := 0
	if isStory {
		score += 3
	}
	if isRant {
		score += 3
	}
	if length > 100 {
		score += 2
	}
	if length <= 10 && length > 0 && !isGreeting && !isBusiness {
		score += 3
	}
	if containsAny(trimmed, negativeEmojis) {
		score++
	}
	storyMatch := storyPattern.MatchString(lower)
	if storyMatch {
		score += 2
	}
	if isGreeting {
		score -= 5
	}
	if isBusiness {
		score -= 2
	}

	result := Result{Score: score, OffTopic: score >= threshold}
	switch {
	case isStory || storyMatch:
		result.Type = TypeStory
	case isRant:
		result.Type = TypeRant
	default:
		result.Type = TypeOffTopic
	}
	return result
}
