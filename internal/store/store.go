package store

import (
	"errors"
	"strings"
	"sync"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/models"
	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/metrics"
)

// ErrNotFound indicates the requested session is absent from the registry.
var ErrNotFound = errors.New("session store: session not found")

// ErrDuplicateCode indicates the join code collides with a live session.
var ErrDuplicateCode = errors.New("session store: join code already in use")

// SessionStore is the in-memory registry of session aggregates, indexed by id
// and by join code. The code index only covers sessions that have not ended,
// so codes recycle the moment a session ends while the aggregate itself stays
// readable by id until retention cleanup removes it.
//
// Mutate is the single mutual-exclusion point for aggregate mutations: the
// closure runs under the store lock and must complete synchronously without
// blocking I/O.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	byCode   map[string]string
}

// New constructs an empty session store.
func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.Session),
		byCode:   make(map[string]string),
	}
}

// Create registers the session under both indices.
func (s *SessionStore) Create(session *models.Session) error {
	if session == nil || session.ID == "" {
		return errors.New("session store: session with id is required")
	}
	code := normalizeCode(session.Code)
	if code == "" {
		return errors.New("session store: join code is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return errors.New("session store: session id already registered")
	}
	if _, exists := s.byCode[code]; exists {
		return ErrDuplicateCode
	}

	s.sessions[session.ID] = session.Clone()
	s.byCode[code] = session.ID
	metrics.LiveSessions.Set(float64(len(s.sessions)))
	return nil
}

// Get returns a deep copy of the session with the supplied id.
func (s *SessionStore) Get(id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return session.Clone(), nil
}

// FindByCode returns a deep copy of the non-ended session registered under
// the supplied join code.
func (s *SessionStore) FindByCode(code string) (*models.Session, error) {
	code = normalizeCode(code)

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byCode[code]
	if !ok {
		return nil, ErrNotFound
	}
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return session.Clone(), nil
}

// HasCode reports whether a live session currently owns the code.
func (s *SessionStore) HasCode(code string) bool {
	code = normalizeCode(code)

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byCode[code]
	return ok
}

// Mutate runs fn against the authoritative aggregate under the store lock and
// returns a snapshot of the session after the mutation. When fn returns an
// error the mutation is surfaced as-is along with the pre-error snapshot.
func (s *SessionStore) Mutate(id string, fn func(*models.Session) error) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	if err := fn(session); err != nil {
		return session.Clone(), err
	}
	return session.Clone(), nil
}

// ReleaseCode drops the code index entry so the code becomes reusable. The
// session remains readable by id.
func (s *SessionStore) ReleaseCode(code string) {
	code = normalizeCode(code)
	if code == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byCode, code)
}

// Delete removes the session and any code index entry still pointing at it.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return
	}
	delete(s.sessions, id)

	code := normalizeCode(session.Code)
	if owner, ok := s.byCode[code]; ok && owner == id {
		delete(s.byCode, code)
	}
	metrics.LiveSessions.Set(float64(len(s.sessions)))
}

// List returns snapshots of every stored session.
func (s *SessionStore) List() []*models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*models.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		results = append(results, session.Clone())
	}
	return results
}

// Count returns the number of stored sessions.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
