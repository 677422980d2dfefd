// Package session keeps planner sessions in memory with an LRU bound and a TTL.
package session

import (
	"sync"
	"time"

	"ai-supply-planner/internal/planner"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store maps session keys to planner sessions. Each access extends the TTL.
type Store struct {
	planner *planner.Planner

	mu    sync.Mutex
	cache *expirable.LRU[string, *planner.Session]
}

func NewStore(p *planner.Planner, capacity int, ttl time.Duration) *Store {
	return &Store{
		planner: p,
		cache:   expirable.NewLRU[string, *planner.Session](capacity, nil, ttl),
	}
}

// Create starts a new session under a random key.
func (s *Store) Create() (string, *planner.Session) {
	id := uuid.NewString()
	sess := planner.NewSession(s.planner)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(id, sess)
	return id, sess
}

// Get returns the live session for key.
func (s *Store) Get(key string) (*planner.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.cache.Get(key)
	if ok {
		s.cache.Add(key, sess)
	}
	return sess, ok
}

// GetOrCreate returns the session for key, creating it when missing or expired.
func (s *Store) GetOrCreate(key string) *planner.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.cache.Get(key)
	if !ok {
		sess = planner.NewSession(s.planner)
	}
	s.cache.Add(key, sess)
	return sess
}

func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(key)
}

// Len is the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
