// Package memory provides an in-process storage backend. It backs tests and
// dry runs where nothing should touch disk.
package memory

import (
	"context"
	"sync"

	"github.com/julianstephens/pillbox/internal/storage"
)

// Store is a map-backed KV with write accounting and failure injection.
type Store struct {
	*storage.Collections

	mu     sync.Mutex
	data   map[string][]byte
	writes map[string]int

	// FailGet and FailSet, when set, are returned for the matching key.
	FailGet map[string]error
	FailSet map[string]error
}

func New() *Store {
	s := &Store{
		data:    map[string][]byte{},
		writes:  map[string]int{},
		FailGet: map[string]error{},
		FailSet: map[string]error{},
	}
	s.Collections = storage.NewCollections(s)
	return s
}

func (s *Store) Init() error {
	return s.EnsureDefaultSettings(context.Background())
}

func (s *Store) Load() error           { return nil }
func (s *Store) Close() error          { return nil }
func (s *Store) GetConfigPath() string { return "memory" }

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailGet[key]; err != nil {
		return nil, err
	}
	v, ok := s.data[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailSet[key]; err != nil {
		return err
	}
	s.data[key] = append([]byte(nil), value...)
	s.writes[key]++
	return nil
}

// Writes reports how many times key has been written.
func (s *Store) Writes(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[key]
}

// ResetWrites clears the write counters.
func (s *Store) ResetWrites() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = map[string]int{}
}

// Raw stores value under key without counting it as a write.
func (s *Store) Raw(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}
