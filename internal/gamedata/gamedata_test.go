package gamedata

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestRTPRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewRTPStore(filepath.Join(t.TempDir(), "rtp.json"))

	cfg, err := store.Get()
	if err != nil {
		t.Fatalf("Get() on missing file error = %v", err)
	}
	if cfg.RTPLink != "" {
		t.Fatalf("missing file RTPLink = %q, want empty", cfg.RTPLink)
	}

	want := RTPConfig{RTPLink: "https://example.com/rtp"}
	if err := store.Set(want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := store.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != want {
		t.Fatalf("Get() = %+v, want %+v", got, want)
	}

	reply := FormatRTPReply(got)
	if !strings.Contains(reply, want.RTPLink) {
		t.Fatalf("FormatRTPReply() = %q, want it to contain the link", reply)
	}
}

func TestGameStorePersistsOffTopicQuestions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	store, err := NewGameStore(path)
	if err != nil {
		t.Fatalf("NewGameStore() error = %v", err)
	}

	if err := store.AddOffTopicQuestion("kemarin aku ke pantai"); err != nil {
		t.Fatalf("AddOffTopicQuestion() error = %v", err)
	}
	// duplicates are ignored
	if err := store.AddOffTopicQuestion("kemarin aku ke pantai"); err != nil {
		t.Fatalf("AddOffTopicQuestion() duplicate error = %v", err)
	}

	reopened, err := NewGameStore(path)
	if err != nil {
		t.Fatalf("NewGameStore() reopen error = %v", err)
	}
	if got := reopened.OffTopicQuestions(); len(got) != 1 || got[0] != "kemarin aku ke pantai" {
		t.Fatalf("OffTopicQuestions() = %v, want one entry", got)
	}
}

func TestFormatGameList(t *testing.T) {
	t.Parallel()

	games := Games{
		SlotProviders:   []string{"Pragmatic Play", "PG Soft"},
		LiveCasinoGames: []string{"Baccarat", "Roulette"},
	}
	out := FormatGameList(games)
	for _, want := range []string{"Penyedia Slot", "Pragmatic Play, PG Soft", "Baccarat, Roulette", "Tembak Ikan"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatGameList() missing %q:\n%s", want, out)
		}
	}
}

func TestBrandStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "brand-config.json")
	store, err := NewBrandStore(path)
	if err != nil {
		t.Fatalf("NewBrandStore() error = %v", err)
	}
	if store.Name() != DefaultBrandName {
		t.Fatalf("Name() = %q, want %q", store.Name(), DefaultBrandName)
	}

	if !store.SetName("MaxWin Casino") {
		t.Fatal("SetName should accept a non-blank name")
	}
	if store.SetName("   ") {
		t.Fatal("SetName should reject a blank name")
	}

	reopened, err := NewBrandStore(path)
	if err != nil {
		t.Fatalf("NewBrandStore() reopen error = %v", err)
	}
	if reopened.Name() != "MaxWin Casino" {
		t.Fatalf("reopened Name() = %q, want MaxWin Casino", reopened.Name())
	}
}

func TestFormatBankListContainsAllBanks(t *testing.T) {
	t.Parallel()

	out := FormatBankList()
	for _, bank := range SupportedBanks {
		if !strings.Contains(out, bank) {
			t.Errorf("FormatBankList() missing %q", bank)
		}
	}
}
