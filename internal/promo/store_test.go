package promo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "promotions.json"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func TestSeedsDefaultsOnFirstRun(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	promotions, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(promotions) != 3 {
		t.Fatalf("len(promotions) = %d, want 3 stock entries", len(promotions))
	}
	if promotions[0].Title != "Welcome Bonus" || promotions[0].Code != "WELCOME10" {
		t.Fatalf("first stock promotion = %+v", promotions[0])
	}
}

func TestAddAssignsUniqueID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	added, err := store.Add(Promotion{Title: "Cashback Tuesday", Discount: 15})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if added.ID != 4 {
		t.Fatalf("assigned id = %d, want 4 (max existing + 1)", added.ID)
	}

	promotions, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	seen := map[int]bool{}
	found := false
	for _, p := range promotions {
		if seen[p.ID] {
			t.Fatalf("duplicate id %d in catalog", p.ID)
		}
		seen[p.ID] = true
		if p.Title == "Cashback Tuesday" {
			found = true
		}
	}
	if !found {
		t.Fatal("added promotion missing from List()")
	}
}

func TestUpdateAndDelete(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	updated, err := store.Update(2, Promotion{Title: "Weekend Special", Discount: 30, Code: "WEEKEND30"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.ID != 2 || updated.Discount != 30 {
		t.Fatalf("updated = %+v", updated)
	}

	if err := store.Delete(1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(1); !errors.Is(err, ErrPromotionNotFound) {
		t.Fatalf("second Delete() error = %v, want ErrPromotionNotFound", err)
	}
	if _, err := store.Update(99, Promotion{}); !errors.Is(err, ErrPromotionNotFound) {
		t.Fatalf("Update(99) error = %v, want ErrPromotionNotFound", err)
	}
}

func TestWriteLeavesOnlyCatalogFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "promotions.json"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, err := store.Add(Promotion{Title: "Spin Friday"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "promotions.json" {
		t.Fatalf("directory entries = %v, want only promotions.json", entries)
	}
}

func TestIsAskingForDetails(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"cara klaim bonusnya gimana", true},
		{"how to claim", true},
		{"syarat promo apa aja", true},
		{"more details about the bonus", true},
		{"promo apa aja hari ini", false},
		{"details", false},
		{"halo", false},
	}
	for _, tt := range tests {
		if got := IsAskingForDetails(tt.in); got != tt.want {
			t.Errorf("IsAskingForDetails(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatViews(t *testing.T) {
	t.Parallel()

	promotions := []Promotion{
		{ID: 1, Title: "Welcome Bonus", Description: "10% off", Code: "WELCOME10", Terms: []string{"New members only"}},
	}

	brief := Format(promotions, "promo apa aja")
	if !strings.Contains(brief, "Current Promotions") || !strings.Contains(brief, "WELCOME10") {
		t.Fatalf("brief view = %q", brief)
	}
	if strings.Contains(brief, "New members only") {
		t.Fatal("brief view should not include terms")
	}

	detailed := Format(promotions, "syarat promo nya apa")
	if !strings.Contains(detailed, "Promotion Details") || !strings.Contains(detailed, "New members only") {
		t.Fatalf("detailed view = %q", detailed)
	}

	if got := Format(nil, "promo"); !strings.Contains(got, "No current promotions") {
		t.Fatalf("empty catalog view = %q", got)
	}
}
