package storage

import (
	"context"
	"sync"
)

type MemSlot struct {
	mu    sync.RWMutex
	data  []byte
	saves int
}

func NewMemSlot() *MemSlot {
	return &MemSlot{}
}

// NewMemSlotWith returns a slot preloaded with data.
func NewMemSlotWith(data []byte) *MemSlot {
	return &MemSlot{data: clone(data)}
}

func (s *MemSlot) Load(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.data), nil
}

func (s *MemSlot) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = clone(data)
	s.saves++
	return nil
}

// Saves reports how many times Save was called.
func (s *MemSlot) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
