// Package promo manages the promotions catalog backed by a JSON file.
package promo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrPromotionNotFound is returned when a promotion id does not exist.
var ErrPromotionNotFound = errors.New("promotion not found")

// Promotion is one catalog entry. Optional fields are omitted from the file
// when empty so the catalog round-trips unchanged.
type Promotion struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Code            string   `json:"code,omitempty"`
	Discount        int      `json:"discount,omitempty"`
	BonusPercentage int      `json:"bonusPercentage,omitempty"`
	MaxBonus        string   `json:"maxBonus,omitempty"`
	StartDate       string   `json:"startDate,omitempty"`
	EndDate         string   `json:"endDate,omitempty"`
	EligibleGames   []string `json:"eligibleGames,omitempty"`
	Terms           []string `json:"terms,omitempty"`
	HowToClaim      []string `json:"howToClaim,omitempty"`
}

type catalog struct {
	Promotions []Promotion `json:"promotions"`
}

// Store reads and writes the promotions file. Writes are serialized; the
// whole file is rewritten on every mutation, matching the small catalog size.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore opens the catalog at path, seeding the stock promotions when the
// file does not exist yet.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := s.write(defaultPromotions()); err != nil {
			return nil, fmt.Errorf("seed promotions: %w", err)
		}
	}
	return s, nil
}

func defaultPromotions() []Promotion {
	return []Promotion{
		{ID: 1, Title: "Welcome Bonus", Description: "Get 10% off on your first deposit", Discount: 10, Code: "WELCOME10"},
		{ID: 2, Title: "Weekend Special", Description: "25% bonus on weekend deposits", Discount: 25, Code: "WEEKEND25"},
		{ID: 3, Title: "VIP Bonus", Description: "Exclusive 50% bonus for VIP members", Discount: 50, Code: "VIP50"},
	}
}

// List returns all promotions.
func (s *Store) List() ([]Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Add appends a promotion, assigning the next free id (max existing + 1).
func (s *Store) Add(p Promotion) (Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	promotions, err := s.read()
	if err != nil {
		return Promotion{}, err
	}

	nextID := 1
	for _, existing := range promotions {
		if existing.ID >= nextID {
			nextID = existing.ID + 1
		}
	}
	p.ID = nextID
	promotions = append(promotions, p)

	if err := s.write(promotions); err != nil {
		return Promotion{}, err
	}
	return p, nil
}

// Update merges changes into the promotion with the given id.
func (s *Store) Update(id int, updated Promotion) (Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	promotions, err := s.read()
	if err != nil {
		return Promotion{}, err
	}
	for i, existing := range promotions {
		if existing.ID != id {
			continue
		}
		updated.ID = id
		promotions[i] = updated
		if err := s.write(promotions); err != nil {
			return Promotion{}, err
		}
		return updated, nil
	}
	return Promotion{}, ErrPromotionNotFound
}

// Delete removes the promotion with the given id.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	promotions, err := s.read()
	if err != nil {
		return err
	}
	for i, existing := range promotions {
		if existing.ID != id {
			continue
		}
		promotions = append(promotions[:i], promotions[i+1:]...)
		return s.write(promotions)
	}
	return ErrPromotionNotFound
}

func (s *Store) read() ([]Promotion, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var c catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse promotions file: %w", err)
	}
	return c.Promotions, nil
}

// write replaces the catalog file through a temp file and rename so a crash
// mid-write never leaves a truncated catalog behind.
func (s *Store) write(promotions []Promotion) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(catalog{Promotions: promotions}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
