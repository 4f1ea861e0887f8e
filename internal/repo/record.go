package repo

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/wayfarer/internal/domain"
)

// TripRecordStore is the append-only log of post-trip records.
// The service layer depends on this interface so it can run against either
// the in-memory or the Postgres implementation.
type TripRecordStore interface {
	// Append stores a new record. A zero ID is replaced with a fresh UUID and
	// a zero CreatedAt with the current time; the stored record is returned.
	Append(ctx context.Context, rec domain.TripRecord) (domain.TripRecord, error)

	// LatestForTrip returns the most recently appended record for tripID.
	// Returns domain.ErrNotFound if the trip has no records.
	LatestForTrip(ctx context.Context, tripID string) (domain.TripRecord, error)

	// ListByUser returns one page of a user's records, newest first, and the
	// total number of records the user has.
	ListByUser(ctx context.Context, userID string, p domain.PaginationParams) ([]domain.TripRecord, int64, error)
}

// MemoryTripRecordStore keeps records in process memory.
type MemoryTripRecordStore struct {
	mu      sync.RWMutex
	records []domain.TripRecord
	byTrip  map[string][]int
	byUser  map[string][]int
	now     func() time.Time
}

// NewMemoryTripRecordStore returns an empty store.
func NewMemoryTripRecordStore() *MemoryTripRecordStore {
	return &MemoryTripRecordStore{
		byTrip: make(map[string][]int),
		byUser: make(map[string][]int),
		now:    time.Now,
	}
}

// Append stores rec and indexes it by trip and user.
func (s *MemoryTripRecordStore) Append(ctx context.Context, rec domain.TripRecord) (domain.TripRecord, error) {
	if rec.TripID == "" || rec.UserID == "" {
		return domain.TripRecord{}, fmt.Errorf("repo.TripRecordStore.Append: trip id and user id are required: %w", domain.ErrValidation)
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	rec = cloneRecord(rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := len(s.records)
	s.records = append(s.records, rec)
	s.byTrip[rec.TripID] = append(s.byTrip[rec.TripID], idx)
	s.byUser[rec.UserID] = append(s.byUser[rec.UserID], idx)
	return cloneRecord(rec), nil
}

// LatestForTrip returns the last record appended for tripID.
func (s *MemoryTripRecordStore) LatestForTrip(ctx context.Context, tripID string) (domain.TripRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.byTrip[tripID]
	if len(idx) == 0 {
		return domain.TripRecord{}, fmt.Errorf("repo.TripRecordStore.LatestForTrip: %w", domain.ErrNotFound)
	}
	return cloneRecord(s.records[idx[len(idx)-1]]), nil
}

// ListByUser pages through a user's records in reverse append order.
func (s *MemoryTripRecordStore) ListByUser(ctx context.Context, userID string, p domain.PaginationParams) ([]domain.TripRecord, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.byUser[userID]
	start, end := p.Bounds(len(idx))
	out := make([]domain.TripRecord, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, cloneRecord(s.records[idx[len(idx)-1-i]]))
	}
	return out, int64(len(idx)), nil
}

func cloneRecord(r domain.TripRecord) domain.TripRecord {
	out := r
	out.TripData.Activities = slices.Clone(r.TripData.Activities)
	out.Analysis.FavoriteExperiences = slices.Clone(r.Analysis.FavoriteExperiences)
	out.Analysis.LeastFavoriteExperiences = slices.Clone(r.Analysis.LeastFavoriteExperiences)
	out.Analysis.Improvements = slices.Clone(r.Analysis.Improvements)
	out.Preferences = r.Preferences.Clone()
	return out
}
