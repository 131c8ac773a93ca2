package gamedata

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
)

// DefaultBrandName is used until a brand config file exists.
const DefaultBrandName = "GoodCasino"

// SupportedBanks lists the banks customers can transfer with.
var SupportedBanks = []string{
	"BCA", "BNI", "BRI", "Mandiri", "CIMB Niaga", "Permata",
	"Danamon", "Maybank", "OCBC NISP", "BSI", "SeaBank",
}

// FormatBankList renders the supported-bank reply.
func FormatBankList() string {
	return "Bank yang kami dukung bosku: " + strings.Join(SupportedBanks, ", ") + " 🏦\nAda lagi yang bisa saya bantu? 😊"
}

type brandFile struct {
	Name string `json:"name"`
}

// BrandStore holds the configurable brand name, persisted to a small JSON
// file so the admin panel can rename the deployment.
type BrandStore struct {
	mu   sync.Mutex
	path string
	name string
}

// NewBrandStore loads the brand name from path, creating the file with the
// default name when missing.
func NewBrandStore(path string) (*BrandStore, error) {
	s := &BrandStore{path: path, name: DefaultBrandName}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, s.save()
		}
		return nil, err
	}
	var f brandFile
	if err := json.Unmarshal(raw, &f); err == nil && strings.TrimSpace(f.Name) != "" {
		s.name = f.Name
	}
	return s, nil
}

// Name returns the current brand name.
func (s *BrandStore) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName updates and persists the brand name; blank names are rejected.
func (s *BrandStore) SetName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	return s.save() == nil
}

func (s *BrandStore) save() error {
	raw, err := json.MarshalIndent(brandFile{Name: s.name}, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, raw)
}
