// Package gamedata manages the flat JSON data the bot serves: RTP link,
// game catalog, off-topic question log, brand name, and the supported-bank
// list.
package gamedata

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// RTPConfig is the persisted RTP configuration.
type RTPConfig struct {
	RTPLink string `json:"rtpLink"`
}

// RTPStore reads and writes rtp.json.
type RTPStore struct {
	mu   sync.Mutex
	path string
}

// NewRTPStore opens the RTP config at path.
func NewRTPStore(path string) *RTPStore {
	return &RTPStore{path: path}
}

// Get returns the current RTP config; a missing file yields an empty config.
func (s *RTPStore) Get() (RTPConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return RTPConfig{}, nil
		}
		return RTPConfig{}, err
	}
	var cfg RTPConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RTPConfig{}, fmt.Errorf("parse rtp file: %w", err)
	}
	return cfg, nil
}

// Set replaces the RTP config.
func (s *RTPStore) Set(cfg RTPConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, data)
}

// Raw returns the raw file bytes for verbatim "json please" replies.
func (s *RTPStore) Raw() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.ReadFile(s.path)
}

// FormatRTPReply renders the customer-facing RTP answer.
func FormatRTPReply(cfg RTPConfig) string {
	link := strings.TrimSpace(cfg.RTPLink)
	if link == "" {
		return "Untuk info RTP terbaru silakan hubungi CS kami ya bosku 😊"
	}
	return fmt.Sprintf("Untuk RTP live slot terupdate bisa dicek di sini bosku: %s 🎰", link)
}
