package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wayfarer/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestParseMode(t *testing.T) {
	tests := []struct {
		in     string
		want   domain.Mode
		wantOK bool
	}{
		{"family", domain.ModeFamily, true},
		{" Friends ", domain.ModeFriends, true},
		{"Solo-Female", domain.ModeSoloFemale, true},
		{"solo female", domain.ModeSoloFemale, true},
		{"PETS", domain.ModePets, true},
		{"backpacker", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := domain.ParseMode(tc.in)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewSession_Defaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s := domain.NewSession("u1", now)

	assert.Equal(t, domain.ModeFriends, s.Mode)
	assert.NotNil(t, s.TripHistory)
	assert.NotNil(t, s.Preferences.LikedDestinations)
	assert.False(t, s.HasActiveTrip())
	assert.Equal(t, now, s.CreatedAt)
}

func TestSession_Apply_MergesOnlySetFields(t *testing.T) {
	s := domain.NewSession("u1", time.Now())
	s.Dietary = "vegan"

	s.Apply(domain.SessionPatch{
		Mode:          ptr(domain.ModeFamily),
		GroupSize:     ptr("4"),
		CurrentTripID: ptr("trip-1"),
	})

	assert.Equal(t, domain.ModeFamily, s.Mode)
	assert.Equal(t, "4", s.GroupSize)
	assert.Equal(t, "vegan", s.Dietary)
	assert.True(t, s.HasActiveTrip())

	s.Apply(domain.SessionPatch{CurrentTripID: ptr("")})
	assert.False(t, s.HasActiveTrip())
}

func TestSession_Apply_AppendTripIsIdempotent(t *testing.T) {
	s := domain.NewSession("u1", time.Now())

	s.Apply(domain.SessionPatch{AppendTrip: "t1"})
	s.Apply(domain.SessionPatch{AppendTrip: "t1"})
	s.Apply(domain.SessionPatch{AppendTrip: "t2"})

	assert.Equal(t, []string{"t1", "t2"}, s.TripHistory)
}

func TestSession_Apply_PreferencesAreCopied(t *testing.T) {
	s := domain.NewSession("u1", time.Now())
	prefs := domain.PreferenceProfile{LikedDestinations: []string{"Rome"}}

	s.Apply(domain.SessionPatch{Preferences: &prefs})
	prefs.LikedDestinations[0] = "Paris"

	assert.Equal(t, []string{"Rome"}, s.Preferences.LikedDestinations)
}

func TestSessionPatch_IsEmpty(t *testing.T) {
	assert.True(t, domain.SessionPatch{}.IsEmpty())
	assert.False(t, domain.SessionPatch{AppendTrip: "t1"}.IsEmpty())
	assert.False(t, domain.SessionPatch{Origin: ptr("")}.IsEmpty())
}

func TestPreferenceProfile_SetSemantics(t *testing.T) {
	var p domain.PreferenceProfile

	require.True(t, p.AddLikedDestination("Lisbon"))
	assert.False(t, p.AddLikedDestination("lisbon"))
	assert.False(t, p.AddLikedActivity("  "))
	assert.True(t, p.AddDislike("crowds"))
	assert.False(t, p.AddDislike("Crowds"))

	assert.Equal(t, []string{"Lisbon"}, p.LikedDestinations)
	assert.Equal(t, []string{"crowds"}, p.Dislikes)
}

func TestSession_Clone_IsDeep(t *testing.T) {
	s := domain.NewSession("u1", time.Now())
	s.TripHistory = append(s.TripHistory, "t1")
	s.Preferences.Extra = map[string]string{"seat": "window"}

	c := s.Clone()
	c.TripHistory[0] = "changed"
	c.Preferences.Extra["seat"] = "aisle"

	assert.Equal(t, "t1", s.TripHistory[0])
	assert.Equal(t, "window", s.Preferences.Extra["seat"])
}
