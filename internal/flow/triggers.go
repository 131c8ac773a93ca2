package flow

import "regexp"

var (
	depositTriggerPattern = regexp.MustCompile(`(?i)(cek\s*(deposit|depo)|periksa\s+.*deposit|deposit.*\b(sudah|udah|belum|blm)\b.*\b(masuk|terkirim)\b|\b(deposit|depo)\b.*\b(masuk|status|cek|check)\b|\bcek\b.*\b(depo|deposit)\b|(depo|deposit)\s*(saya|ku|gw|gua)?\s*(sudah|udah|belum|blm)?\s*(masuk)?\??$)`)

	withdrawKeywordPattern = regexp.MustCompile(`(?i)(\b(withdraw|wd)\b|penarikan|tarik\s*dana)`)
	withdrawTriggerPattern = regexp.MustCompile(`(?i)(cek\s*(withdraw|wd|penarikan|tarik\s*dana)|\b(withdraw|wd)\b|penarikan|tarik\s*dana)`)
)

// IsDepositInquiry reports whether message asks about deposit status.
// Withdraw wording wins when both appear.
func IsDepositInquiry(message string) bool {
	if withdrawKeywordPattern.MatchString(message) {
		return false
	}
	return depositTriggerPattern.MatchString(message)
}

// IsWithdrawInquiry reports whether message asks about withdrawal status.
func IsWithdrawInquiry(message string) bool {
	return withdrawTriggerPattern.MatchString(message)
}
