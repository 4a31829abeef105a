package dialogue

import (
	"sync"
	"time"
)

// PendingCancellation bridges the two messages of a cancel dialogue.
// Ephemeral and process-local: a restart drops all pending entries.
type PendingCancellation struct {
	TaskID    int64
	StartedAt time.Time
}

// SessionStore keeps at most one pending cancellation per owner. Starting a
// new dialogue silently overwrites any previous entry for that owner.
type SessionStore struct {
	mu      sync.Mutex
	pending map[int64]PendingCancellation
}

func NewSessionStore() *SessionStore {
	return &SessionStore{pending: make(map[int64]PendingCancellation)}
}

// Begin records a pending cancellation for the owner, last entry wins.
func (s *SessionStore) Begin(userID, taskID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[userID] = PendingCancellation{TaskID: taskID, StartedAt: time.Now()}
}

// Waiting reports whether the owner has a dialogue awaiting a reason.
func (s *SessionStore) Waiting(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[userID]
	return ok
}

// Take consumes and returns the owner's pending entry, if any.
func (s *SessionStore) Take(userID int64) (PendingCancellation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[userID]
	if ok {
		delete(s.pending, userID)
	}
	return p, ok
}
