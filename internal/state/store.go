// Package state keeps per-user console state in memory.
package state

import (
	"sync"
	"time"

	"contentbot/internal/domain"
)

// Store owns every UserState of the process
type Store struct {
	mu    sync.RWMutex
	users map[int64]*domain.UserState
	now   func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users: make(map[int64]*domain.UserState),
		now:   time.Now,
	}
}

// NewStoreWithClock creates a store with a custom clock
func NewStoreWithClock(now func() time.Time) *Store {
	s := NewStore()
	s.now = now
	return s
}

// Init replaces the user's state with a fresh idle one and returns a copy
func (s *Store) Init(userID int64) *domain.UserState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := domain.NewUserState(userID, s.now())
	s.users[userID] = st
	return st.Clone()
}

// Get returns a copy of the user's state
func (s *Store) Get(userID int64) (*domain.UserState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.users[userID]
	if !ok {
		return nil, false
	}
	return st.Clone(), true
}

// GetOrInit returns a copy of the user's state, creating it on first use
func (s *Store) GetOrInit(userID int64) *domain.UserState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ensure(userID).Clone()
}

// Update applies fn to the user's state under the store lock
func (s *Store) Update(userID int64, fn func(st *domain.UserState)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.ensure(userID)
	fn(st)
	st.Navigation.LastInteraction = s.now()
}

// Delete removes the user's state entirely
func (s *Store) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
}

// Count returns the number of tracked users
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// ActiveWorkflows returns the number of users in a workflow
func (s *Store) ActiveWorkflows() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, st := range s.users {
		if st.InActiveWorkflow() {
			n++
		}
	}
	return n
}

// StartWorkflow sets the active command and its first step, replacing any previous data
func (s *Store) StartWorkflow(userID int64, kind domain.WorkflowKind, step domain.StepID, data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	s.Update(userID, func(st *domain.UserState) {
		st.ActiveCommand = kind
		st.CurrentStep = step
		st.WorkflowData = data
		st.StartedAt = s.now()
		st.Navigation.CurrentMenu = domain.MenuActiveWorkflow
	})
}

// Advance stores a field value and moves to the next step
func (s *Store) Advance(userID int64, field string, value any, next domain.StepID) {
	s.Update(userID, func(st *domain.UserState) {
		if field != "" {
			st.WorkflowData[field] = value
		}
		st.CurrentStep = next
	})
}

// ClearWorkflow drops wizard data and resets navigation to the main menu
func (s *Store) ClearWorkflow(userID int64) {
	s.Update(userID, func(st *domain.UserState) {
		messageID := st.Navigation.MessageID
		st.ActiveCommand = domain.WorkflowNone
		st.CurrentStep = domain.StepNone
		st.WorkflowData = make(map[string]any)
		st.Navigation = domain.NewNavigation(s.now())
		st.Navigation.MessageID = messageID
	})
}

// SetMessageID records the message that is edited on the next interaction
func (s *Store) SetMessageID(userID int64, messageID int) {
	if messageID == 0 {
		return
	}
	s.Update(userID, func(st *domain.UserState) {
		st.Navigation.MessageID = messageID
	})
}

// SetLastAction records the last handled action
func (s *Store) SetLastAction(userID int64, action string) {
	s.Update(userID, func(st *domain.UserState) {
		st.Navigation.LastAction = action
	})
}

func (s *Store) ensure(userID int64) *domain.UserState {
	st, ok := s.users[userID]
	if !ok {
		st = domain.NewUserState(userID, s.now())
		s.users[userID] = st
	}
	return st
}
