package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/nlg"
	"github.com/pkordes/wayfarer/internal/nlg/mock"
	"github.com/pkordes/wayfarer/internal/repo"
	"github.com/pkordes/wayfarer/internal/service"
)

// mockRecords is a hand-written test double for repo.TripRecordStore.
type mockRecords struct {
	appendFn      func(ctx context.Context, rec domain.TripRecord) (domain.TripRecord, error)
	latestForTrip func(ctx context.Context, tripID string) (domain.TripRecord, error)
	listByUser    func(ctx context.Context, userID string, p domain.PaginationParams) ([]domain.TripRecord, int64, error)
}

func (m *mockRecords) Append(ctx context.Context, rec domain.TripRecord) (domain.TripRecord, error) {
	return m.appendFn(ctx, rec)
}
func (m *mockRecords) LatestForTrip(ctx context.Context, tripID string) (domain.TripRecord, error) {
	return m.latestForTrip(ctx, tripID)
}
func (m *mockRecords) ListByUser(ctx context.Context, userID string, p domain.PaginationParams) ([]domain.TripRecord, int64, error) {
	return m.listByUser(ctx, userID, p)
}

// compile-time check: mockRecords must satisfy repo.TripRecordStore.
var _ repo.TripRecordStore = (*mockRecords)(nil)

// ---- helpers ---------------------------------------------------------------

const romeAnalysis = `{
  "overall_satisfaction": 9,
  "favorite_experiences": ["Colosseum tour in Rome", "Cooking class"],
  "least_favorite_experiences": ["Crowded buses"],
  "budget_satisfaction": "Excellent",
  "safety_rating": 9,
  "cultural_experience_rating": 10,
  "recommendation": "Go in spring",
  "improvements": ["Book the Vatican earlier"],
  "travel_style": "cultural explorer",
  "sentiment": "positive"
}`

func newPostTrip(sessions repo.SessionStore, records repo.TripRecordStore, gw nlg.Gateway) *service.PostTripProcessor {
	return service.NewPostTripProcessor(sessions, records, nil, nlg.NewGuard(gw, nlg.WithTimeout(time.Second)), nil)
}

func romeRequest() domain.PostTripRequest {
	return domain.PostTripRequest{
		UserID: "user-1",
		TripID: "trip-rome",
		Trip: domain.TripData{
			Destination: "Rome",
			DurationDay: 5,
			Budget:      "$2000",
			Activities:  []string{"museums", "food"},
		},
		Feedback: "Loved Rome, the Colosseum was amazing",
	}
}

// ---- Process tests ---------------------------------------------------------

func TestPostTripProcessor_Process_LearnsPreferences(t *testing.T) {
	sessions := repo.NewMemorySessionStore(0)
	records := repo.NewMemoryTripRecordStore()
	gw := mock.ByTask(map[string]string{
		"feedback_analysis":      romeAnalysis,
		"trip_summary":           "A wonderful week of history and food.",
		"future_recommendations": "Try Florence next.",
	}, errGatewayDown)
	p := newPostTrip(sessions, records, gw)
	ctx := context.Background()

	res := p.Process(ctx, romeRequest())

	require.True(t, res.Success)
	assert.Equal(t, "trip-rome", res.TripID)
	assert.Equal(t, 9, res.Analysis.OverallSatisfaction)
	assert.Equal(t, "A wonderful week of history and food.", res.Summary.Overview)
	assert.False(t, res.Summary.FallbackUsed)
	assert.Equal(t, "Try Florence next.", res.Recommendations.Narrative)
	assert.Equal(t, []string{"Rome"}, res.Preferences.LikedDestinations)
	assert.Equal(t, "High/Luxury", res.Preferences.BudgetTier)
	assert.Equal(t, "cultural explorer", res.Preferences.TravelStyle)
	assert.Contains(t, res.Insights, "Cultural experiences were a highlight for you.")
	assert.Contains(t, res.Improvements, "Book the Vatican earlier")
	assert.NotEqual(t, uuid.Nil, res.RecordID)

	sess, err := sessions.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"trip-rome"}, sess.TripHistory)
	assert.Equal(t, "Rome", sess.LastDestination)
	assert.Equal(t, []string{"Crowded buses"}, sess.Preferences.Dislikes)

	rec, err := records.LatestForTrip(ctx, "trip-rome")
	require.NoError(t, err)
	assert.Equal(t, res.RecordID, rec.ID)
	assert.Equal(t, "Rome", rec.TripData.Destination)
}

func TestPostTripProcessor_Process_IsIdempotentForPreferences(t *testing.T) {
	sessions := repo.NewMemorySessionStore(0)
	records := repo.NewMemoryTripRecordStore()
	p := newPostTrip(sessions, records, mock.ByTask(map[string]string{"feedback_analysis": romeAnalysis}, errGatewayDown))
	ctx := context.Background()

	first := p.Process(ctx, romeRequest())
	second := p.Process(ctx, romeRequest())

	assert.Equal(t, first.Preferences, second.Preferences)
	assert.Equal(t, []string{"Rome"}, second.Preferences.LikedDestinations)
	assert.Len(t, second.Preferences.LikedActivities, 2)

	sess, err := sessions.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, sess.TripHistory, 1)

	list, total, err := records.ListByUser(ctx, "user-1", domain.NewPaginationParams(nil, nil))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "every processing run appends a record")
	assert.Len(t, list, 2)
}

func TestPostTripProcessor_Process_DefaultAnalysisFollowsSentiment(t *testing.T) {
	tests := []struct {
		name     string
		feedback string
		wantSat  int
		wantTier string
	}{
		{"positive", "trip was amazing, loved Paris", 8, "Medium/Comfortable"},
		{"negative", "the hotel was dirty and the food terrible", 4, "Budget/Basic"},
		{"neutral", "we took some trains", 6, "Budget/Basic"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newPostTrip(repo.NewMemorySessionStore(0), repo.NewMemoryTripRecordStore(), mock.Failing(errGatewayDown))
			req := romeRequest()
			req.Feedback = tc.feedback

			res := p.Process(context.Background(), req)

			require.True(t, res.Success)
			assert.Equal(t, tc.wantSat, res.Analysis.OverallSatisfaction)
			assert.Equal(t, tc.wantTier, res.Preferences.BudgetTier)
			assert.True(t, res.Summary.FallbackUsed)
			assert.Contains(t, res.Summary.Overview, "Rome")
			assert.True(t, res.Recommendations.FallbackUsed)
		})
	}
}

func TestPostTripProcessor_Process_ExplicitRatingOverrides(t *testing.T) {
	p := newPostTrip(repo.NewMemorySessionStore(0), repo.NewMemoryTripRecordStore(),
		mock.ByTask(map[string]string{"feedback_analysis": romeAnalysis}, errGatewayDown))
	req := romeRequest()
	rating := 14
	req.Rating = &rating

	res := p.Process(context.Background(), req)

	assert.Equal(t, 10, res.Analysis.OverallSatisfaction)
}

func TestPostTripProcessor_Process_ClearsMatchingActiveTrip(t *testing.T) {
	sessions := repo.NewMemorySessionStore(0)
	ctx := context.Background()
	active := "trip-rome"
	_, err := sessions.Update(ctx, "user-1", domain.SessionPatch{CurrentTripID: &active})
	require.NoError(t, err)
	p := newPostTrip(sessions, repo.NewMemoryTripRecordStore(), mock.Failing(errGatewayDown))

	p.Process(ctx, romeRequest())

	sess, err := sessions.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, sess.HasActiveTrip())
}

func TestPostTripProcessor_Process_ClosesMatchingActiveTrip(t *testing.T) {
	sessions := repo.NewMemorySessionStore(0)
	trips := repo.NewMemoryTripStateStore()
	ctx := context.Background()
	active := "trip-rome"
	_, err := sessions.Update(ctx, "user-1", domain.SessionPatch{CurrentTripID: &active})
	require.NoError(t, err)
	_, _, err = trips.GetOrCreate(ctx, active, "user-1", domain.UserProfile{})
	require.NoError(t, err)
	_, _, err = trips.GetOrCreate(ctx, "trip-other", "user-1", domain.UserProfile{})
	require.NoError(t, err)

	p := service.NewPostTripProcessor(sessions, repo.NewMemoryTripRecordStore(), trips,
		nlg.NewGuard(mock.Failing(errGatewayDown), nlg.WithTimeout(time.Second)), nil)

	res := p.Process(ctx, romeRequest())
	require.True(t, res.Success)

	st, err := trips.Get(ctx, active)
	require.NoError(t, err)
	assert.Equal(t, domain.TripClosed, st.Status)

	other, err := trips.Get(ctx, "trip-other")
	require.NoError(t, err)
	assert.Equal(t, domain.TripActive, other.Status)
}

func TestPostTripProcessor_Process_RecordStoreFailureIsAbsorbed(t *testing.T) {
	records := &mockRecords{appendFn: func(context.Context, domain.TripRecord) (domain.TripRecord, error) {
		return domain.TripRecord{}, errors.New("disk full")
	}}
	sessions := repo.NewMemorySessionStore(0)
	p := newPostTrip(sessions, records, mock.Failing(errGatewayDown))

	res := p.Process(context.Background(), romeRequest())

	assert.True(t, res.Success)
	assert.Equal(t, uuid.Nil, res.RecordID)
	sess, err := sessions.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"trip-rome"}, sess.TripHistory, "preferences are still learned")
}

func TestPostTripProcessor_Process_OuterGuard(t *testing.T) {
	records := &mockRecords{appendFn: func(context.Context, domain.TripRecord) (domain.TripRecord, error) {
		panic("unexpected nil")
	}}
	p := newPostTrip(repo.NewMemorySessionStore(0), records, mock.Failing(errGatewayDown))

	res := p.Process(context.Background(), romeRequest())

	assert.False(t, res.Success)
	assert.Equal(t, "trip-rome", res.TripID)
	assert.NotEmpty(t, res.Fallback)
}

func TestApplyFeedback(t *testing.T) {
	t.Run("destination liked only when a favourite mentions it", func(t *testing.T) {
		var prefs domain.PreferenceProfile
		service.ApplyFeedback(&prefs, "Lisbon", domain.FeedbackAnalysis{FavoriteExperiences: []string{"Tram 28"}})
		assert.Empty(t, prefs.LikedDestinations)
		assert.Equal(t, []string{"Tram 28"}, prefs.LikedActivities)
	})

	t.Run("budget tiers", func(t *testing.T) {
		for label, want := range map[string]string{
			"Excellent": "High/Luxury",
			"good":      "Medium/Comfortable",
			"Fair":      "Budget/Basic",
			"Poor":      "Budget/Basic",
			"":          "Budget/Basic",
		} {
			var prefs domain.PreferenceProfile
			service.ApplyFeedback(&prefs, "", domain.FeedbackAnalysis{BudgetSatisfaction: label})
			assert.Equal(t, want, prefs.BudgetTier, label)
		}
	})

	t.Run("travel style kept when absent", func(t *testing.T) {
		prefs := domain.PreferenceProfile{TravelStyle: "slow traveller"}
		service.ApplyFeedback(&prefs, "", domain.FeedbackAnalysis{})
		assert.Equal(t, "slow traveller", prefs.TravelStyle)
	})
}

func TestPostTripProcessor_Profile(t *testing.T) {
	sessions := repo.NewMemorySessionStore(0)
	records := repo.NewMemoryTripRecordStore()
	p := newPostTrip(sessions, records, mock.Failing(errGatewayDown))
	ctx := context.Background()

	_, err := p.Profile(ctx, "nobody", domain.NewPaginationParams(nil, nil))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p.Process(ctx, romeRequest())
	profile, err := p.Profile(ctx, "user-1", domain.NewPaginationParams(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.UserID)
	assert.EqualValues(t, 1, profile.Total)
	require.Len(t, profile.Records, 1)
	assert.Equal(t, "trip-rome", profile.Records[0].TripID)
}
