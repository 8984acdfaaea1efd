package robot

import (
	"slices"
	"sync"
)

// pressedSet tracks held keys or buttons in press order. It is written from
// UI-goroutine tasks and read by callers, hence the lock.
type pressedSet[T comparable] struct {
	mu    sync.Mutex
	items []T
}

func (s *pressedSet[T]) add(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.items, v) {
		s.items = append(s.items, v)
	}
}

// remove reports whether v was held.
func (s *pressedSet[T]) remove(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.items, v)
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

// snapshot returns the held items in press order.
func (s *pressedSet[T]) snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// reversed returns the held items, most recently pressed first.
func (s *pressedSet[T]) reversed() []T {
	out := s.snapshot()
	slices.Reverse(out)
	return out
}
