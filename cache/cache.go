// Package cache keeps small string values between runs in a JSON file.
// Keys are case insensitive.
package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

// DefaultPath is ~/.walletkit/cache.json, or cache.json in the working
// directory when there is no home.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "cache.json"
	}
	return filepath.Join(home, ".walletkit", "cache.json")
}

type Store struct {
	path string

	mu   sync.Mutex
	data map[string]string
}

// Open does not touch the file until the first Get or Set.
func Open(path string) *Store {
	return &Store{path: path}
}

type file struct {
	Data map[string]string `json:"Data"`
}

// load reads the file once. A missing or broken file starts an empty cache.
func (s *Store) load() map[string]string {
	if s.data != nil {
		return s.data
	}
	s.data = map[string]string{}
	content, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Debug("Couldn't read cache", "path", s.path, "err", err)
		}
		return s.data
	}
	var f file
	if err := json.Unmarshal(content, &f); err != nil {
		log.Debug("Ignoring broken cache", "path", s.path, "err", err)
		return s.data
	}
	for k, v := range f.Data {
		s.data[strings.ToLower(k)] = v
	}
	return s.data
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, found := s.load()[strings.ToLower(key)]
	return v, found
}

// Set stores value and writes the whole cache back to disk.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()[strings.ToLower(key)] = value
	return s.persist()
}

func (s *Store) persist() error {
	content, err := json.MarshalIndent(file{Data: s.data}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, content, 0o644)
}
