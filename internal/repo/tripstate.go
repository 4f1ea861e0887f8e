package repo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkordes/wayfarer/internal/domain"
)

// TripStateStore tracks trips that are in progress.
type TripStateStore interface {
	// GetOrCreate returns the trip state for tripID, creating an active one
	// owned by userID with the given profile snapshot when it is not tracked
	// yet. created reports whether a new state was made.
	GetOrCreate(ctx context.Context, tripID, userID string, profile domain.UserProfile) (state domain.TripState, created bool, err error)

	// Get returns the trip state or domain.ErrNotFound.
	Get(ctx context.Context, tripID string) (domain.TripState, error)

	// RecordMessage counts one message on the trip and appends location if it
	// is new. Returns domain.ErrNotFound for an untracked trip.
	RecordMessage(ctx context.Context, tripID, location string) (domain.TripState, error)

	// Close marks the trip closed. Returns domain.ErrNotFound for an untracked trip.
	Close(ctx context.Context, tripID string) (domain.TripState, error)
}

// MemoryTripStateStore keeps trip states in a map behind an RWMutex.
type MemoryTripStateStore struct {
	mu     sync.RWMutex
	states map[string]domain.TripState
	now    func() time.Time
}

// NewMemoryTripStateStore returns an empty store.
func NewMemoryTripStateStore() *MemoryTripStateStore {
	return &MemoryTripStateStore{
		states: make(map[string]domain.TripState),
		now:    time.Now,
	}
}

// GetOrCreate returns the tracked state or starts a new active trip.
func (s *MemoryTripStateStore) GetOrCreate(ctx context.Context, tripID, userID string, profile domain.UserProfile) (domain.TripState, bool, error) {
	if strings.TrimSpace(tripID) == "" {
		return domain.TripState{}, false, fmt.Errorf("repo.TripStateStore.GetOrCreate: trip id is required: %w", domain.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.states[tripID]; ok {
		return st.Clone(), false, nil
	}
	st := domain.NewTripState(tripID, userID, profile, s.now().UTC())
	s.states[tripID] = st
	return st.Clone(), true, nil
}

// Get returns the tracked state.
func (s *MemoryTripStateStore) Get(ctx context.Context, tripID string) (domain.TripState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[tripID]
	if !ok {
		return domain.TripState{}, fmt.Errorf("repo.TripStateStore.Get: %w", domain.ErrNotFound)
	}
	return st.Clone(), nil
}

// RecordMessage updates message count, last activity and locations atomically.
func (s *MemoryTripStateStore) RecordMessage(ctx context.Context, tripID, location string) (domain.TripState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[tripID]
	if !ok {
		return domain.TripState{}, fmt.Errorf("repo.TripStateStore.RecordMessage: %w", domain.ErrNotFound)
	}
	st = st.Clone()
	st.RecordMessage(location, s.now().UTC())
	s.states[tripID] = st
	return st.Clone(), nil
}

// Close marks the trip closed. Closing a closed trip is a no-op.
func (s *MemoryTripStateStore) Close(ctx context.Context, tripID string) (domain.TripState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[tripID]
	if !ok {
		return domain.TripState{}, fmt.Errorf("repo.TripStateStore.Close: %w", domain.ErrNotFound)
	}
	st.Status = domain.TripClosed
	s.states[tripID] = st
	return st.Clone(), nil
}
