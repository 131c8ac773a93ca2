package payment

import (
	"regexp"
	"strings"
)

// Plan change kinds.
const (
	PlanExtend    = "EXTEND"
	PlanUpgrade   = "UPGRADE"
	PlanDowngrade = "DOWNGRADE"
)

var cidPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)cid[:\s]*(\d+)`),
	regexp.MustCompile(`(\d{4,10})`),
}

var planSelectionPattern = regexp.MustCompile(`(?i)(premium|business)\s+(monthly|yearly)`)

// ExtractCID pulls a customer id from message: a labeled "cid" form first,
// then any 4 to 10 digit run.
func ExtractCID(message string) (string, bool) {
	for _, pattern := range cidPatterns {
		if m := pattern.FindStringSubmatch(message); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ExtractPlanType reads the requested plan change; the default is extension.
func ExtractPlanType(message string) string {
	text := strings.ToLower(message)
	switch {
	case strings.Contains(text, "upgrade") || strings.Contains(text, "naik"):
		return PlanUpgrade
	case strings.Contains(text, "downgrade") || strings.Contains(text, "turun"):
		return PlanDowngrade
	default:
		return PlanExtend
	}
}

// Currency words must match as whole tokens; "rp" as a substring would fire
// on words like "perpanjang".
var currencyPattern = regexp.MustCompile(`(?i)\b(idr|rupiah|rp|usdt|usd|dollar|dolar)\b`)

// ExtractCurrency reads an explicitly mentioned settlement currency. The
// second return is false when the message names no currency.
func ExtractCurrency(message string) (string, bool) {
	m := currencyPattern.FindString(strings.ToLower(message))
	switch m {
	case "":
		return "", false
	case "idr", "rupiah", "rp":
		return "IDR", true
	default:
		return "USDT", true
	}
}

// ExtractPlanSelection matches a concrete plan choice such as "premium
// monthly" and returns its canonical name.
func ExtractPlanSelection(message string) (string, bool) {
	m := planSelectionPattern.FindStringSubmatch(strings.ToLower(message))
	if m == nil {
		return "", false
	}
	return title(m[1]) + " " + title(m[2]), true
}

func title(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
