package repo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/pkordes/wayfarer/internal/domain"
)

// SessionStore is the only way to read or change a user's Session.
type SessionStore interface {
	// GetOrCreate returns the user's session, creating one with defaults
	// (friends mode, empty history) when none exists.
	GetOrCreate(ctx context.Context, userID string) (domain.Session, error)

	// Get returns the user's session or domain.ErrNotFound.
	Get(ctx context.Context, userID string) (domain.Session, error)

	// Update merges patch into the user's session and returns the result.
	// A missing session is created first, so Update never fails on absence.
	Update(ctx context.Context, userID string, patch domain.SessionPatch) (domain.Session, error)

	// Lock serializes work on one user's session across goroutines. The
	// returned function releases the lock. Lock is not reentrant.
	Lock(userID string) (unlock func())
}

// MemorySessionStore keeps sessions in process memory. With a positive TTL,
// sessions untouched by GetOrCreate-on-create or Update for that long are
// evicted; a zero TTL keeps them for the life of the process.
type MemorySessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time

	// mu makes each read-modify-write of a single Update atomic.
	// It is independent of the per-user locks handed out by Lock.
	mu    sync.Mutex
	users keyedMutex
}

// NewMemorySessionStore returns an empty store. ttl <= 0 disables eviction.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	expiration, cleanup := cache.NoExpiration, time.Duration(0)
	if ttl > 0 {
		expiration, cleanup = ttl, ttl
	}
	return &MemorySessionStore{
		cache: cache.New(expiration, cleanup),
		ttl:   ttl,
		now:   time.Now,
	}
}

// GetOrCreate returns the stored session or creates a default one.
func (s *MemorySessionStore) GetOrCreate(ctx context.Context, userID string) (domain.Session, error) {
	if err := validUserID(userID); err != nil {
		return domain.Session{}, fmt.Errorf("repo.SessionStore.GetOrCreate: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.load(userID); ok {
		return sess.Clone(), nil
	}
	sess := domain.NewSession(userID, s.now().UTC())
	s.cache.SetDefault(userID, sess)
	return sess.Clone(), nil
}

// Get returns the stored session without creating one.
func (s *MemorySessionStore) Get(ctx context.Context, userID string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.load(userID)
	if !ok {
		return domain.Session{}, fmt.Errorf("repo.SessionStore.Get: %w", domain.ErrNotFound)
	}
	return sess.Clone(), nil
}

// Update merges patch into the session and refreshes its TTL.
func (s *MemorySessionStore) Update(ctx context.Context, userID string, patch domain.SessionPatch) (domain.Session, error) {
	if err := validUserID(userID); err != nil {
		return domain.Session{}, fmt.Errorf("repo.SessionStore.Update: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	sess, ok := s.load(userID)
	if !ok {
		sess = domain.NewSession(userID, now)
	}
	sess = sess.Clone()
	sess.Apply(patch)
	sess.UpdatedAt = now
	s.cache.SetDefault(userID, sess)
	return sess.Clone(), nil
}

// Lock acquires the per-user lock.
func (s *MemorySessionStore) Lock(userID string) func() {
	return s.users.Lock(userID)
}

// Len reports how many unexpired sessions are held.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for range s.cache.Items() {
		n++
	}
	return n
}

func (s *MemorySessionStore) load(userID string) (domain.Session, bool) {
	v, ok := s.cache.Get(userID)
	if !ok {
		return domain.Session{}, false
	}
	sess, ok := v.(domain.Session)
	return sess, ok
}

func validUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required: %w", domain.ErrValidation)
	}
	return nil
}
