// Package domain contains the core data types for the Wayfarer assistant.
// This package has no dependencies on other internal packages and is imported
// by every one of them (repo, service, handler).
package domain

import (
	"slices"
	"strings"
	"time"
)

// Mode is the travel-party archetype that biases recommendations and vocabulary.
type Mode string

const (
	ModeFamily     Mode = "family"
	ModeFriends    Mode = "friends"
	ModeSolo       Mode = "solo"
	ModeSoloFemale Mode = "solo_female"
	ModePets       Mode = "pets"
)

// DefaultMode is the mode assigned to every new session.
const DefaultMode = ModeFriends

// ParseMode converts free text ("solo-female", "Family") into a Mode.
// The second return value is false when s names no known mode.
func ParseMode(s string) (Mode, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch Mode(norm) {
	case ModeFamily, ModeFriends, ModeSolo, ModeSoloFemale, ModePets:
		return Mode(norm), true
	}
	return "", false
}

// PreferenceProfile is the long-lived, learned view of what a user likes.
// It is filled by post-trip processing and only ever grows: destinations,
// activities and dislikes have set semantics.
type PreferenceProfile struct {
	LikedDestinations []string          `json:"liked_destinations"`
	LikedActivities   []string          `json:"liked_activities"`
	Dislikes          []string          `json:"dislikes"`
	BudgetTier        string            `json:"budget_tier,omitempty"`
	TravelStyle       string            `json:"travel_style,omitempty"`
	Extra             map[string]string `json:"extra,omitempty"`
}

// AddLikedDestination inserts d unless an equal value (case-insensitive) is
// already present. Reports whether the set changed.
func (p *PreferenceProfile) AddLikedDestination(d string) bool {
	return addUnique(&p.LikedDestinations, d)
}

// AddLikedActivity inserts a into the liked-activities set.
func (p *PreferenceProfile) AddLikedActivity(a string) bool {
	return addUnique(&p.LikedActivities, a)
}

// AddDislike inserts d into the dislikes set.
func (p *PreferenceProfile) AddDislike(d string) bool {
	return addUnique(&p.Dislikes, d)
}

// Clone returns a deep copy so callers can mutate it without touching the
// stored profile.
func (p PreferenceProfile) Clone() PreferenceProfile {
	out := p
	out.LikedDestinations = slices.Clone(p.LikedDestinations)
	out.LikedActivities = slices.Clone(p.LikedActivities)
	out.Dislikes = slices.Clone(p.Dislikes)
	if p.Extra != nil {
		out.Extra = make(map[string]string, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

func addUnique(set *[]string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	for _, existing := range *set {
		if strings.EqualFold(existing, v) {
			return false
		}
	}
	*set = append(*set, v)
	return true
}

// UserProfile is the traveller description handed to the phase handlers.
// It is derived from a Session and snapshotted into TripState.
type UserProfile struct {
	Mode              Mode   `json:"mode"`
	Age               string `json:"age,omitempty"`
	Gender            string `json:"gender,omitempty"`
	Nationality       string `json:"nationality,omitempty"`
	GroupSize         string `json:"group_size,omitempty"`
	Dietary           string `json:"dietary,omitempty"`
	MedicalConditions string `json:"medical_conditions,omitempty"`
	Allergies         string `json:"allergies,omitempty"`
	BudgetHint        string `json:"budget_hint,omitempty"`
}

// Session is the per-user conversational memory. One exists per user id and
// lives until the store evicts it (never, unless a TTL is configured).
type Session struct {
	UserID            string            `json:"user_id"`
	Mode              Mode              `json:"mode"`
	BudgetHint        string            `json:"budget_hint,omitempty"`
	Dietary           string            `json:"dietary,omitempty"`
	GroupSize         string            `json:"group_size,omitempty"`
	Nationality       string            `json:"nationality,omitempty"`
	Age               string            `json:"age,omitempty"`
	MedicalConditions string            `json:"medical_conditions,omitempty"`
	Allergies         string            `json:"allergies,omitempty"`
	Gender            string            `json:"gender,omitempty"`
	Preferences       PreferenceProfile `json:"preferences"`
	TripHistory       []string          `json:"trip_history"`
	CurrentTripID     string            `json:"current_trip_id,omitempty"` // empty when no trip is active
	LastDestination   string            `json:"last_destination,omitempty"`
	Origin            string            `json:"origin,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// NewSession returns a session with the documented defaults: friends mode,
// empty history, no active trip.
func NewSession(userID string, now time.Time) Session {
	return Session{
		UserID:      userID,
		Mode:        DefaultMode,
		TripHistory: []string{},
		Preferences: PreferenceProfile{
			LikedDestinations: []string{},
			LikedActivities:   []string{},
			Dislikes:          []string{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasActiveTrip reports whether the session is linked to an in-progress trip.
func (s Session) HasActiveTrip() bool {
	return s.CurrentTripID != ""
}

// Profile projects the session onto the fields the phase handlers use.
func (s Session) Profile() UserProfile {
	return UserProfile{
		Mode:              s.Mode,
		Age:               s.Age,
		Gender:            s.Gender,
		Nationality:       s.Nationality,
		GroupSize:         s.GroupSize,
		Dietary:           s.Dietary,
		MedicalConditions: s.MedicalConditions,
		Allergies:         s.Allergies,
		BudgetHint:        s.BudgetHint,
	}
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	out := s
	out.Preferences = s.Preferences.Clone()
	out.TripHistory = slices.Clone(s.TripHistory)
	if out.TripHistory == nil {
		out.TripHistory = []string{}
	}
	return out
}

// SessionPatch describes a partial session update. Nil fields are left
// untouched, so applying a patch merges rather than replaces.
// Setting CurrentTripID to a pointer to "" clears the active trip.
type SessionPatch struct {
	Mode              *Mode
	BudgetHint        *string
	Dietary           *string
	GroupSize         *string
	Nationality       *string
	Age               *string
	MedicalConditions *string
	Allergies         *string
	Gender            *string
	Preferences       *PreferenceProfile
	CurrentTripID     *string
	LastDestination   *string
	Origin            *string

	// AppendTrip adds a trip id to TripHistory if it is not already there.
	AppendTrip string
}

// IsEmpty reports whether applying the patch would change nothing.
func (p SessionPatch) IsEmpty() bool {
	return p == (SessionPatch{})
}

// Apply merges p into s.
func (s *Session) Apply(p SessionPatch) {
	setIf := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	if p.Mode != nil {
		s.Mode = *p.Mode
	}
	setIf(&s.BudgetHint, p.BudgetHint)
	setIf(&s.Dietary, p.Dietary)
	setIf(&s.GroupSize, p.GroupSize)
	setIf(&s.Nationality, p.Nationality)
	setIf(&s.Age, p.Age)
	setIf(&s.MedicalConditions, p.MedicalConditions)
	setIf(&s.Allergies, p.Allergies)
	setIf(&s.Gender, p.Gender)
	setIf(&s.CurrentTripID, p.CurrentTripID)
	setIf(&s.LastDestination, p.LastDestination)
	setIf(&s.Origin, p.Origin)
	if p.Preferences != nil {
		s.Preferences = p.Preferences.Clone()
	}
	if p.AppendTrip != "" && !slices.Contains(s.TripHistory, p.AppendTrip) {
		s.TripHistory = append(s.TripHistory, p.AppendTrip)
	}
}
