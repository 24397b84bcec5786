package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by strict lookups for an unknown session ID.
var ErrNotFound = errors.New("session: not found")

// Store is a thread-safe, in-memory session registry. The zero value is not
// usable; construct with [NewStore].
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore returns an initialised [Store].
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers a fresh day-1 session under a random ID.
func (st *Store) Create() (*Session, error) {
	id, err := generateID()
	if err != nil {
		return nil, fmt.Errorf("session: generate id: %w", err)
	}
	s := newSession(id)

	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()
	return s, nil
}

// Get returns the session with the given ID, or [ErrNotFound].
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// GetOrCreate returns the session with the given ID, registering a fresh
// day-1 session under that ID when none exists. Interrogation uses this so a
// restarted client keeps working with its old session ID. created reports
// whether a new session was registered by this call.
func (st *Store) GetOrCreate(id string) (s *Session, created bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok {
		return s, false
	}
	s = newSession(id)
	st.sessions[id] = s
	return s, true
}

// Count returns the number of live sessions.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// generateID produces a random 16-byte hex string using crypto/rand.
func generateID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
