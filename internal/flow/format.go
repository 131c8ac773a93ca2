package flow

import "strconv"

// FormatAmount renders an integer rupiah amount with Indonesian thousands
// separators: 150000 -> "150.000".
func FormatAmount(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	if amount < 0 {
		return "-" + FormatAmount(-amount)
	}
	if len(digits) <= 3 {
		return digits
	}

	var out []byte
	lead := len(digits) % 3
	if lead > 0 {
		out = append(out, digits[:lead]...)
	}
	for i := lead; i < len(digits); i += 3 {
		if len(out) > 0 {
			out = append(out, '.')
		}
		out = append(out, digits[i:i+3]...)
	}
	return string(out)
}
