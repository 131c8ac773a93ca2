package flow

import "testing"

func TestExtractAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"500rb", 500_000, true},
		{"2jt", 2_000_000, true},
		{"150k", 150_000, true},
		{"100.000", 100_000, true},
		{"Rp 150.000", 150_000, true},
		{"rp. 25.000", 25_000, true},
		{"1,5jt", 1_500_000, true},
		{"depo 50 ribu", 50_000, true},
		{"2 juta sudah masuk belum", 2_000_000, true},
		{"5 million", 5_000_000, true},
		{"300 thousand", 300_000, true},
		{"maxpro88", 0, false},
		{"cek deposit saya", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, _, ok := ExtractAmount(tt.in)
		if ok != tt.wantOK {
			t.Errorf("ExtractAmount(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractAmount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestExtractAmountRemovesSpan(t *testing.T) {
	t.Parallel()

	amount, remainder, ok := ExtractAmount("150k maxpro88")
	if !ok || amount != 150_000 {
		t.Fatalf("ExtractAmount = %d, %v; want 150000, true", amount, ok)
	}
	if got, ok := ExtractUserID(remainder); !ok || got != "maxpro88" {
		t.Fatalf("ExtractUserID(%q) = %q, %v; want maxpro88, true", remainder, got, ok)
	}
}

func TestExtractUserID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"user id: maxpro88", "maxpro88", true},
		{"userid=abc123", "abc123", true},
		{"ID maxwin_77", "maxwin_77", true},
		{"maxpro88", "maxpro88", true},
		{"user id saya budi123 bosku", "budi123", true},
		{"150k", "", false},
		{"150000", "", false},
		{"depo", "", false},
		{"bosku", "", false},
		{"hi", "", false},
		{"tolong dicek ya bosku, kemarin saya sudah transfer tapi belum masuk juga sampai sekarang", "", false},
	}

	for _, tt := range tests {
		got, ok := ExtractUserID(tt.in)
		if ok != tt.wantOK {
			t.Errorf("ExtractUserID(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractUserID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.000"},
		{150000, "150.000"},
		{2000000, "2.000.000"},
		{1234567, "1.234.567"},
	}

	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTriggers(t *testing.T) {
	t.Parallel()

	deposits := []string{
		"cek deposit saya",
		"cek depo",
		"depo sudah masuk belum",
		"deposit saya belum masuk",
		"tolong cek status deposit",
	}
	for _, msg := range deposits {
		if !IsDepositInquiry(msg) {
			t.Errorf("IsDepositInquiry(%q) = false, want true", msg)
		}
	}

	withdraws := []string{
		"cek wd saya",
		"withdraw belum masuk",
		"penarikan saya gimana",
		"mau tarik dana",
	}
	for _, msg := range withdraws {
		if !IsWithdrawInquiry(msg) {
			t.Errorf("IsWithdrawInquiry(%q) = false, want true", msg)
		}
		if IsDepositInquiry(msg) {
			t.Errorf("IsDepositInquiry(%q) = true, want false (withdraw wording wins)", msg)
		}
	}

	if IsDepositInquiry("halo bosku") {
		t.Error("greeting should not trigger the deposit flow")
	}
}
