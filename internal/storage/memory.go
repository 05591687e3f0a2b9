package storage

import "sync"

// MemoryStore keeps records in process memory. It backs tests and
// ephemeral runs; WriteErr, when set, makes every write fail with it.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[string]string
	WriteErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]string)}
}

func (s *MemoryStore) Read(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.records[key]
	return value, ok, nil
}

func (s *MemoryStore) Write(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.records[key] = value
	return nil
}

func (s *MemoryStore) Ping() error {
	return nil
}
