package monitor

import "sync"

// DefaultMaxNotified bounds the set of remembered visit ids
const DefaultMaxNotified = 1000

// NotifiedSet remembers notified visit ids, evicting the oldest beyond its limit
type NotifiedSet struct {
	mu    sync.Mutex
	limit int
	ids   map[string]struct{}
	order []string
}

// NewNotifiedSet creates a set holding at most limit ids
func NewNotifiedSet(limit int) *NotifiedSet {
	if limit <= 0 {
		limit = DefaultMaxNotified
	}
	return &NotifiedSet{
		limit: limit,
		ids:   make(map[string]struct{}, limit),
	}
}

// Add marks id as notified and reports whether it was new
func (s *NotifiedSet) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Contains reports whether id was notified
func (s *NotifiedSet) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Trim drops the oldest ids until the set is within its limit
func (s *NotifiedSet) Trim() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	excess := len(s.order) - s.limit
	if excess <= 0 {
		return 0
	}
	for _, id := range s.order[:excess] {
		delete(s.ids, id)
	}
	s.order = append([]string(nil), s.order[excess:]...)
	return excess
}

// Len returns the number of remembered ids
func (s *NotifiedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
