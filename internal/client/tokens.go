// Package client is the Go consumer of the store API.  It keeps the token
// pair on disk, attaches the access token to outgoing requests and
// transparently refreshes an expired session before replaying the failed
// request.
package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Pair is the access/refresh token pair returned by the session endpoints.
// Refresh may be empty right after registration; the first login fills it.
type Pair struct {
	Acceso  string `json:"tokenAcceso"`
	Refresh string `json:"tokenRefresh"`
}

// TokenStore persists a Pair to a JSON file.  All methods are safe for
// concurrent use; the zero value (no path) keeps tokens in memory only.
type TokenStore struct {
	mu   sync.Mutex
	pair Pair
	path string
}

// NewTokenStore returns a store backed by path.  An existing file is read
// eagerly; a missing or corrupt file simply yields an empty pair.
func NewTokenStore(path string) *TokenStore {
	s := &TokenStore{path: path}
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			_ = json.Unmarshal(data, &s.pair)
		}
	}
	return s
}

// Get returns the current pair.
func (s *TokenStore) Get() Pair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair
}

// Set stores a new pair and persists it.
func (s *TokenStore) Set(p Pair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = p
	s.persistLocked()
}

// Clear drops the pair and removes the backing file.  Used when a refresh
// attempt fails and the session is over.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Pair{}
	if s.path != "" {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			// Fall back to writing an empty pair so stale tokens do not linger.
			s.persistLocked()
		}
	}
}

func (s *TokenStore) persistLocked() {
	if s.path == "" {
		return
	}
	data, err := json.Marshal(s.pair)
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(s.path), 0o755)
	_ = os.WriteFile(s.path, data, 0o600)
}
