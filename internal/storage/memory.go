package storage

import "sync"

// MemorySlots keeps slots in process memory only.
type MemorySlots struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemorySlots() *MemorySlots {
	return &MemorySlots{records: map[string][]byte{}}
}

func (s *MemorySlots) Get(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), val...), nil
}

func (s *MemorySlots) Set(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemorySlots) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}
