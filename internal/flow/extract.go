// Package flow implements the two-slot collection engine behind the deposit
// and withdraw status inquiries: extract a user id and an amount across
// turns, ask for whatever is missing, confirm and ping support when both are
// present.
package flow

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Bare-token identifier limits.
const (
	maxBareTokenMessageLength = 40
	minIdentifierLength       = 3
	maxIdentifierLength       = 20
)

var (
	amountPattern = regexp.MustCompile(`(?i)(^|[^a-z0-9])(?:rp\.?\s*)?(\d+(?:[.,]\d+)*)\s*(k|rb\.?|ribu|jt|juta|m|million|thousand)?\b`)

	labeledIDPattern = regexp.MustCompile(`(?i)\b(?:user\s*id|user_id|user-id|userid|username|user|id)\s*[:=\s]\s*([A-Za-z0-9_-]{3,20})`)

	bareTokenPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)
	amountShaped      = regexp.MustCompile(`(?i)^(?:rp\.?\s*)?\d+(?:[.,]\d+)*\s*(k|rb\.?|ribu|jt|juta|m|million|thousand)?$`)
	hasLetterPattern  = regexp.MustCompile(`[A-Za-z]`)
	separatorStripper = strings.NewReplacer(".", "", ",", "")
)

// Tokens that look like identifiers but are slang, greetings, or deposit
// verbs and must never fill the id slot.
var identifierStopWords = map[string]struct{}{
	"depo": {}, "deposit": {}, "withdraw": {}, "penarikan": {},
	"cek": {}, "check": {}, "sudah": {}, "udah": {}, "belum": {}, "blm": {},
	"masuk": {}, "woi": {}, "woy": {}, "gua": {}, "gw": {}, "saya": {},
	"aku": {}, "bosku": {}, "halo": {}, "hai": {}, "hello": {}, "hi": {},
	"bang": {}, "kak": {}, "gan": {}, "admin": {}, "tolong": {}, "bantu": {},
	"user": {}, "userid": {}, "username": {}, "akun": {},
	"dong": {}, "donk": {}, "deh": {}, "nih": {}, "kok": {}, "min": {},
	"mas": {}, "mbak": {}, "mohon": {}, "please": {}, "pls": {},
	"yaa": {}, "gak": {}, "nggak": {}, "ngga": {},
}

func unitMultiplier(unit string) int64 {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(unit)), ".") {
	case "k", "rb", "ribu", "thousand":
		return 1_000
	case "jt", "juta", "m", "million":
		return 1_000_000
	default:
		return 1
	}
}

// ExtractAmount finds the first amount-looking span in message and returns
// the resolved integer amount plus the message with that span removed, so a
// numeric amount cannot later be misread as an identifier. A bare number
// without a unit is taken literally after stripping thousands separators.
func ExtractAmount(message string) (amount int64, remainder string, ok bool) {
	loc := amountPattern.FindStringSubmatchIndex(message)
	if loc == nil {
		return 0, message, false
	}

	prefix := message[loc[2]:loc[3]]
	number := message[loc[4]:loc[5]]
	unit := ""
	if loc[6] >= 0 {
		unit = message[loc[6]:loc[7]]
	}

	mult := unitMultiplier(unit)
	var value float64
	if mult == 1 {
		digits := separatorStripper.Replace(number)
		parsed, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return 0, message, false
		}
		value = float64(parsed)
	} else {
		parsed, err := strconv.ParseFloat(normalizeDecimal(number), 64)
		if err != nil {
			return 0, message, false
		}
		value = parsed
	}

	amount = int64(math.Floor(value * float64(mult)))
	if amount <= 0 {
		return 0, message, false
	}
	remainder = strings.TrimSpace(message[:loc[0]] + prefix + " " + message[loc[1]:])
	return amount, remainder, true
}

// normalizeDecimal turns Indonesian-style numbers into ParseFloat input:
// separators followed by three digits are thousands groups, a trailing short
// group is a decimal fraction ("1,5" -> "1.5", "100.000" -> "100000").
func normalizeDecimal(number string) string {
	parts := strings.FieldsFunc(number, func(r rune) bool { return r == '.' || r == ',' })
	if len(parts) == 1 {
		return parts[0]
	}
	last := parts[len(parts)-1]
	if len(last) == 3 {
		return strings.Join(parts, "")
	}
	return strings.Join(parts[:len(parts)-1], "") + "." + last
}

// ExtractLabeledUserID pulls an identifier only from an explicit "user id:"
// style label. Used where a bare-token guess would be too aggressive, such
// as support pings.
func ExtractLabeledUserID(message string) (string, bool) {
	for _, m := range labeledIDPattern.FindAllStringSubmatch(message, -1) {
		if _, stop := identifierStopWords[strings.ToLower(m[1])]; !stop {
			return m[1], true
		}
	}
	return "", false
}

// ExtractUserID pulls an account identifier out of message, trying a labeled
// form first and falling back to a bare token only for short messages.
func ExtractUserID(message string) (string, bool) {
	if id, ok := ExtractLabeledUserID(message); ok {
		return id, true
	}

	trimmed := strings.TrimSpace(message)
	if len(trimmed) > maxBareTokenMessageLength {
		return "", false
	}
	for _, token := range strings.Fields(trimmed) {
		if isBareIdentifier(token) {
			return token, true
		}
	}
	return "", false
}

func isBareIdentifier(token string) bool {
	if !bareTokenPattern.MatchString(token) {
		return false
	}
	if !hasLetterPattern.MatchString(token) {
		return false
	}
	if amountShaped.MatchString(token) {
		return false
	}
	_, stop := identifierStopWords[strings.ToLower(token)]
	return !stop
}
