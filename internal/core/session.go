package core

// session.go keeps multi-month stacking sessions in memory.
//
// Each session holds an immutable mapping.Stack; updates swap the value
// under the store lock. Sessions idle longer than the TTL are evicted by
// Sweep, which the service runs periodically.

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/perizinan/internal/mapping"
)

var (
	ErrSessionNotFound = errors.New("stacking session not found")
	ErrTooManySessions = errors.New("too many stacking sessions open")
)

type session struct {
	stack     mapping.Stack
	createdAt time.Time
	touchedAt time.Time
}

// SessionStore is a TTL-bounded map of stacking sessions.
type SessionStore struct {
	ttl time.Duration
	max int
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionStore creates a store. Non-positive ttl or max disable the
// respective bound.
func NewSessionStore(ttl time.Duration, max int) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		max:      max,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Create starts an empty session and returns its ID.
func (s *SessionStore) Create() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && len(s.sessions) >= s.max {
		s.sweepLocked()
		if len(s.sessions) >= s.max {
			return "", ErrTooManySessions
		}
	}

	id := uuid.NewString()
	now := s.now()
	s.sessions[id] = &session{createdAt: now, touchedAt: now}
	return id, nil
}

// Get returns the session's stack.
func (s *SessionStore) Get(id string) (mapping.Stack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(id)
	if err != nil {
		return mapping.Stack{}, err
	}
	sess.touchedAt = s.now()
	return sess.stack, nil
}

// View summarizes the session.
func (s *SessionStore) View(id string) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(id)
	if err != nil {
		return SessionView{}, err
	}
	return SessionView{
		ID:        id,
		Rows:      sess.stack.Len(),
		Months:    sess.stack.Months(),
		CreatedAt: sess.createdAt,
		UpdatedAt: sess.touchedAt,
	}, nil
}

// Update replaces the session's stack with fn's result.
func (s *SessionStore) Update(id string, fn func(mapping.Stack) mapping.Stack) (mapping.Stack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(id)
	if err != nil {
		return mapping.Stack{}, err
	}
	sess.stack = fn(sess.stack)
	sess.touchedAt = s.now()
	return sess.stack, nil
}

// Delete removes the session. Deleting an unknown ID is not an error.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

func (s *SessionStore) sweepLocked() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, sess := range s.sessions {
		if sess.touchedAt.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *SessionStore) lookupLocked(id string) (*session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.ttl > 0 && s.now().Sub(sess.touchedAt) > s.ttl {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	return sess, nil
}
