package conversation

import (
	"fmt"
	"sort"
	"sync"
)

// Store is an in-memory registry of conversation logs keyed by id. It backs
// multi-conversation hosts where each chat keeps its own transcript.
type Store struct {
	mu   sync.RWMutex
	logs map[string]*Log
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{logs: make(map[string]*Log)}
}

// Create builds a new log from the system prompt and registers it.
func (s *Store) Create(systemPrompt string, optFns ...func(o *LogOptions)) (*Log, error) {
	log, err := NewLog(systemPrompt, optFns...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.logs[log.ID()]; exists {
		return nil, fmt.Errorf("conversation: log %q already exists", log.ID())
	}
	s.logs[log.ID()] = log

	return log, nil
}

// Get returns the log for id, or an error when it is unknown.
func (s *Store) Get(id string) (*Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log, ok := s.logs[id]
	if !ok {
		return nil, fmt.Errorf("conversation: log %q not found", id)
	}

	return log, nil
}

// Delete removes the log for id. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.logs, id)
}

// List returns all registered log ids, newest first by creation time.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.logs))
	for id := range s.logs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.logs[ids[i]].CreatedAt().After(s.logs[ids[j]].CreatedAt())
	})

	return ids
}

// Len returns the number of registered logs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.logs)
}
