// Package session keeps per-client request/response history for the
// lifetime of the process.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/infofact/internal/model"
)

// ErrNotFound is returned for unknown session ids
var ErrNotFound = errors.New("session not found")

// Store manages sessions
type Store interface {
	// Ensure returns id if it names a live session; otherwise it creates a
	// new session and returns its id. created reports which happened.
	Ensure(id string) (sid string, created bool)

	// Append adds an exchange to a session's history
	Append(id string, ex model.Exchange) error

	// History returns a copy of a session's exchanges, oldest first
	History(id string) ([]model.Exchange, error)

	// Len returns the number of sessions
	Len() int
}

type session struct {
	createdAt time.Time
	history   []model.Exchange
}

// MemoryStore is a Store backed by a map. Sessions never expire.
type MemoryStore struct {
	sessions map[string]*session
	mu       sync.RWMutex
	newID    func() string
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*session),
		newID:    uuid.NewString,
	}
}

func (s *MemoryStore) Ensure(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if _, ok := s.sessions[id]; ok {
			return id, false
		}
	}

	sid := s.newID()
	s.sessions[sid] = &session{createdAt: time.Now().UTC()}
	return sid, true
}

func (s *MemoryStore) Append(id string, ex model.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if ex.At.IsZero() {
		ex.At = time.Now().UTC()
	}
	sess.history = append(sess.history, ex)
	return nil
}

func (s *MemoryStore) History(id string) ([]model.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]model.Exchange, len(sess.history))
	copy(out, sess.history)
	return out, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
