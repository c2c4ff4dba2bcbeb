package kvstore

import (
	"encoding/json"
	"sync"
)

// Memory is an in-process store for tests. It round-trips values through
// JSON so test behaviour matches the durable drivers, corrupt-snapshot
// handling included.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

func (s *Memory) Get(key string, dest interface{}) bool {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (s *Memory) Put(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *Memory) Delete(key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// Corrupt overwrites a key with bytes that are not valid JSON. Tests use it
// to exercise the hydrate-from-corrupt-state path.
func (s *Memory) Corrupt(key string) {
	s.mu.Lock()
	s.data[key] = []byte("{not json")
	s.mu.Unlock()
}
