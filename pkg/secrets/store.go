// Package secrets holds session-scoped values shared between sibling form
// fields, such as the OAuth token the template selector obtains.
package secrets

import (
	"sort"
	"strings"
	"sync"
)

// GoogleOAuthToken is the key under which the selector shares its token.
const GoogleOAuthToken = "googleOAuthToken"

// Store is the read/write surface a field needs from the session.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// MemoryStore is an in-process Store. The zero value is ready to use.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns a store seeded with values.
func NewMemoryStore(values map[string]string) *MemoryStore {
	store := &MemoryStore{}
	for key, value := range values {
		store.Set(key, value)
	}
	return store
}

// Get returns the value for key. Empty values are reported as missing.
func (s *MemoryStore) Get(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[normalize(key)]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// Set stores value under key. An empty value deletes the key.
func (s *MemoryStore) Set(key, value string) {
	if s == nil {
		return
	}
	key = normalize(key)
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		delete(s.values, key)
		return
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
}

// Keys lists the stored keys, sorted.
func (s *MemoryStore) Keys() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func normalize(key string) string {
	return strings.TrimSpace(key)
}
