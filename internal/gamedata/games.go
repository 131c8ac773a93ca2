package gamedata

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Games groups the catalog by category.
type Games struct {
	SlotProviders     []string `json:"slot_providers"`
	LiveCasinoGames   []string `json:"live_casino_games"`
	FishShootingGames []string `json:"fish_shooting_games"`
	MiniGames         []string `json:"mini_games"`
}

// GameData is the data.json shape: the game catalog plus a log of off-topic
// questions kept for later content review.
type GameData struct {
	OffTopicQuestions []string `json:"offtopic_questions"`
	Games             Games    `json:"games"`
}

// GameStore reads and writes data.json.
type GameStore struct {
	mu   sync.Mutex
	path string
	data GameData
}

// NewGameStore loads data.json from path, starting empty when missing or
// unreadable.
func NewGameStore(path string) (*GameStore, error) {
	s := &GameStore{path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parse game data file: %w", err)
	}
	return s, nil
}

// Games returns a copy of the current catalog.
func (s *GameStore) Games() Games {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Games
}

// SetGames replaces the catalog and persists it.
func (s *GameStore) SetGames(games Games) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Games = games
	return s.save()
}

// AddOffTopicQuestion appends question to the log once and persists it.
func (s *GameStore) AddOffTopicQuestion(question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data.OffTopicQuestions {
		if existing == question {
			return nil
		}
	}
	s.data.OffTopicQuestions = append(s.data.OffTopicQuestions, question)
	return s.save()
}

// OffTopicQuestions returns the logged questions.
func (s *GameStore) OffTopicQuestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.data.OffTopicQuestions))
	copy(out, s.data.OffTopicQuestions)
	return out
}

func (s *GameStore) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, raw)
}

// FormatGameList renders the Indonesian game catalog reply.
func FormatGameList(games Games) string {
	lines := []string{
		"🎰 *Penyedia Slot:*",
		strings.Join(games.SlotProviders, ", "),
		"",
		"🎲 *Permainan Live Casino:*",
		strings.Join(games.LiveCasinoGames, ", "),
		"",
		"🐠 *Game Tembak Ikan:*",
		strings.Join(games.FishShootingGames, ", "),
		"",
		"🎮 *Permainan Lainnya:*",
		strings.Join(games.MiniGames, ", "),
	}
	return strings.Join(lines, "\n")
}
