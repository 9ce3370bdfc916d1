package sessions

import (
	"context"
	"errors"
	"sync"
	"time"
)

const stateKey = "oauth_state"

func tokenKey(provider string) string { return "token:" + provider }

type memorySession struct {
	values    map[string]string
	flashes   []string
	expiresAt time.Time
}

// MemoryStore keeps session state in process memory. Sessions expire ttl
// after their last read or write. Suitable for a single instance.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*memorySession
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*memorySession),
	}
}

// lookup returns the live session for id and extends its expiry, dropping
// it if already expired. Caller must hold s.mu.
func (s *MemoryStore) lookup(id string) *memorySession {
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	now := s.now()
	if !now.Before(sess.expiresAt) {
		delete(s.sessions, id)
		return nil
	}
	sess.expiresAt = now.Add(s.ttl)
	return sess
}

// touch returns the session for id, creating it if needed, and extends its expiry.
// Caller must hold s.mu.
func (s *MemoryStore) touch(id string) *memorySession {
	sess := s.lookup(id)
	if sess == nil {
		sess = &memorySession{values: make(map[string]string)}
		s.sessions[id] = sess
	}
	sess.expiresAt = s.now().Add(s.ttl)
	return sess
}

func (s *MemoryStore) get(id, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.lookup(id)
	if sess == nil {
		return "", false
	}
	v, ok := sess.values[key]
	return v, ok
}

func (s *MemoryStore) set(id, key, value string) error {
	if id == "" {
		return errors.New("memory session: session id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch(id).values[key] = value
	return nil
}

func (s *MemoryStore) del(id, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess := s.lookup(id); sess != nil {
		delete(sess.values, key)
	}
}

func (s *MemoryStore) Token(_ context.Context, sessionID, provider string) (string, bool, error) {
	v, ok := s.get(sessionID, tokenKey(provider))
	return v, ok, nil
}

func (s *MemoryStore) SetToken(_ context.Context, sessionID, provider, token string) error {
	return s.set(sessionID, tokenKey(provider), token)
}

func (s *MemoryStore) DeleteToken(_ context.Context, sessionID, provider string) error {
	s.del(sessionID, tokenKey(provider))
	return nil
}

func (s *MemoryStore) SetState(_ context.Context, sessionID, state string) error {
	return s.set(sessionID, stateKey, state)
}

func (s *MemoryStore) TakeState(_ context.Context, sessionID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.lookup(sessionID)
	if sess == nil {
		return "", false, nil
	}
	v, ok := sess.values[stateKey]
	delete(sess.values, stateKey)
	return v, ok, nil
}

func (s *MemoryStore) AddFlash(_ context.Context, sessionID, message string) error {
	if sessionID == "" {
		return errors.New("memory session: session id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(sessionID)
	sess.flashes = append(sess.flashes, message)
	return nil
}

func (s *MemoryStore) Flashes(_ context.Context, sessionID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.lookup(sessionID)
	if sess == nil || len(sess.flashes) == 0 {
		return []string{}, nil
	}
	out := sess.flashes
	sess.flashes = nil
	return out, nil
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	now := s.now()
	for id, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}
