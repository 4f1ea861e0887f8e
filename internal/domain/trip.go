package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Phase is the stage of a trip a message belongs to.
type Phase string

const (
	PhasePlanning Phase = "planning"
	PhasePreTrip  Phase = "pre-trip"
	PhaseInTrip   Phase = "in-trip"
	PhasePostTrip Phase = "post-trip"
)

// TripStatus is the lifecycle state of a TripState.
type TripStatus string

const (
	TripActive TripStatus = "active"
	TripClosed TripStatus = "closed"
)

// TripState tracks one active trip during the in-trip phase.
// It is created on the first in-trip message for an unknown trip id and
// updated on every message after that.
type TripState struct {
	TripID       string      `json:"trip_id"`
	UserID       string      `json:"user_id"`
	UserProfile  UserProfile `json:"user_profile"`
	StartTime    time.Time   `json:"start_time"`
	LastActivity time.Time   `json:"last_activity"`
	MessageCount int         `json:"message_count"`
	Locations    []string    `json:"locations"` // ordered, no consecutive or repeated duplicates
	Status       TripStatus  `json:"status"`
}

// NewTripState returns an active trip with no messages recorded yet.
func NewTripState(tripID, userID string, profile UserProfile, now time.Time) TripState {
	return TripState{
		TripID:       tripID,
		UserID:       userID,
		UserProfile:  profile,
		StartTime:    now,
		LastActivity: now,
		Locations:    []string{},
		Status:       TripActive,
	}
}

// RecordMessage counts one more message, bumps LastActivity and appends
// location if it has not been seen on this trip before.
func (t *TripState) RecordMessage(location string, now time.Time) {
	t.MessageCount++
	t.LastActivity = now
	location = strings.TrimSpace(location)
	if location != "" && !slices.ContainsFunc(t.Locations, func(l string) bool {
		return strings.EqualFold(l, location)
	}) {
		t.Locations = append(t.Locations, location)
	}
}

// Clone returns a deep copy of the trip state.
func (t TripState) Clone() TripState {
	out := t
	out.Locations = slices.Clone(t.Locations)
	if out.Locations == nil {
		out.Locations = []string{}
	}
	return out
}

// TripData is the caller's description of a completed trip.
type TripData struct {
	Destination string   `json:"destination"`
	DurationDay int      `json:"duration_days"`
	Budget      string   `json:"budget,omitempty"`
	Activities  []string `json:"activities,omitempty"`
}

// FeedbackAnalysis is the structured reading of a traveller's free-text
// feedback. Ratings are on a 1-10 scale.
type FeedbackAnalysis struct {
	OverallSatisfaction      int      `json:"overall_satisfaction"`
	FavoriteExperiences      []string `json:"favorite_experiences"`
	LeastFavoriteExperiences []string `json:"least_favorite_experiences"`
	BudgetSatisfaction       string   `json:"budget_satisfaction"` // Excellent, Good, Fair or Poor
	SafetyRating             int      `json:"safety_rating"`
	CulturalExperienceRating int      `json:"cultural_experience_rating"`
	Recommendation           string   `json:"recommendation"`
	Improvements             []string `json:"improvements"`
	TravelStyle              string   `json:"travel_style,omitempty"`
	Sentiment                string   `json:"sentiment"`
}

// TripRecord is the immutable post-trip snapshot kept for learning.
// Every post-trip processing call produces exactly one record.
type TripRecord struct {
	ID          uuid.UUID         `json:"id"`
	TripID      string            `json:"trip_id"`
	UserID      string            `json:"user_id"`
	TripData    TripData          `json:"trip_data"`
	Analysis    FeedbackAnalysis  `json:"analysis"`
	Preferences PreferenceProfile `json:"preferences"`
	CreatedAt   time.Time         `json:"created_at"`
}
