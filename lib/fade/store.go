package fade

import (
	"fmt"
	"sync"
)

const (
	MinValue = 0
	MaxValue = 100
)

// Store holds the channel vector: the last value sent to the console for
// each channel. Indexes are zero-based. Values are always within
// [MinValue, MaxValue].
type Store struct {
	mu     sync.RWMutex
	values []int
}

// NewStore returns a store of n channels, all at zero.
func NewStore(n int) *Store {
	return &Store{values: make([]int, n)}
}

func (s *Store) Len() int {
	return len(s.values)
}

// Get returns a copy of the current vector.
func (s *Store) Get() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, len(s.values))
	copy(out, s.values)
	return out
}

func (s *Store) Set(index, value int) error {
	if index < 0 || index >= len(s.values) {
		return fmt.Errorf("fade: channel index %d out of range [0,%d)", index, len(s.values))
	}
	s.mu.Lock()
	s.values[index] = clamp(value)
	s.mu.Unlock()
	return nil
}

func (s *Store) ReplaceAll(values []int) error {
	if len(values) != len(s.values) {
		return fmt.Errorf("fade: vector length %d, want %d", len(values), len(s.values))
	}
	s.mu.Lock()
	for i, v := range values {
		s.values[i] = clamp(v)
	}
	s.mu.Unlock()
	return nil
}

func clamp(v int) int {
	if v < MinValue {
		return MinValue
	}
	if v > MaxValue {
		return MaxValue
	}
	return v
}
