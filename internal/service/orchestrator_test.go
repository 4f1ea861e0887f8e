package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/location"
	"github.com/pkordes/wayfarer/internal/nlg"
	"github.com/pkordes/wayfarer/internal/nlg/mock"
	"github.com/pkordes/wayfarer/internal/repo"
	"github.com/pkordes/wayfarer/internal/service"
)

// mockSessions is a hand-written test double for repo.SessionStore.
type mockSessions struct {
	getOrCreate func(ctx context.Context, userID string) (domain.Session, error)
	get         func(ctx context.Context, userID string) (domain.Session, error)
	update      func(ctx context.Context, userID string, patch domain.SessionPatch) (domain.Session, error)
}

func (m *mockSessions) GetOrCreate(ctx context.Context, userID string) (domain.Session, error) {
	return m.getOrCreate(ctx, userID)
}
func (m *mockSessions) Get(ctx context.Context, userID string) (domain.Session, error) {
	return m.get(ctx, userID)
}
func (m *mockSessions) Update(ctx context.Context, userID string, patch domain.SessionPatch) (domain.Session, error) {
	return m.update(ctx, userID, patch)
}
func (m *mockSessions) Lock(string) func() { return func() {} }

// compile-time check: mockSessions must satisfy repo.SessionStore.
var _ repo.SessionStore = (*mockSessions)(nil)

// phaseRecorder collects observed phases.
type phaseRecorder struct {
	mu     sync.Mutex
	phases []string
}

func (r *phaseRecorder) ObservePhase(phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, phase)
}

// ---- helpers ---------------------------------------------------------------

type fixture struct {
	orch     *service.Orchestrator
	sessions *repo.MemorySessionStore
	trips    *repo.MemoryTripStateStore
	records  *repo.MemoryTripRecordStore
	phases   *phaseRecorder
}

func newFixture(gw nlg.Gateway) fixture {
	f := fixture{
		sessions: repo.NewMemorySessionStore(0),
		trips:    repo.NewMemoryTripStateStore(),
		records:  repo.NewMemoryTripRecordStore(),
		phases:   &phaseRecorder{},
	}
	f.orch = service.NewOrchestrator(
		service.Stores{Sessions: f.sessions, Trips: f.trips, Records: f.records},
		nlg.NewGuard(gw, nlg.WithTimeout(time.Second)),
		location.Directory{},
		service.WithPhaseObserver(f.phases),
	)
	return f
}

// ---- HandleMessage tests ---------------------------------------------------

func TestOrchestrator_HandleMessage_Validation(t *testing.T) {
	f := newFixture(mock.Failing(errGatewayDown))

	_, err := f.orch.HandleMessage(context.Background(), "", "hello", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.orch.HandleMessage(context.Background(), "user-1", "   ", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOrchestrator_HandleMessage_Planning(t *testing.T) {
	f := newFixture(mock.Failing(errGatewayDown))
	ctx := context.Background()

	env, err := f.orch.HandleMessage(ctx, "user-1", "plan a 5 day trip to Tokyo with my kids", "")

	require.NoError(t, err)
	assert.Equal(t, domain.PhasePlanning, env.Phase)
	assert.Equal(t, domain.ActionItinerary, env.Action)
	assert.Equal(t, domain.ModeFamily, env.Mode)
	require.NotNil(t, env.Itinerary)
	assert.Len(t, env.Itinerary.Days, 5)

	sess, err := f.sessions.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Tokyo", sess.LastDestination)
	assert.Equal(t, domain.ModeFamily, sess.Mode)
	assert.Equal(t, []string{"planning"}, f.phases.phases)
}

func TestOrchestrator_HandleMessage_PreTripUsesRememberedDestination(t *testing.T) {
	f := newFixture(mock.Failing(errGatewayDown))
	ctx := context.Background()

	_, err := f.orch.HandleMessage(ctx, "user-1", "plan a trip to Tokyo", "")
	require.NoError(t, err)
	env, err := f.orch.HandleMessage(ctx, "user-1", "Which documents do I need?", "")

	require.NoError(t, err)
	assert.Equal(t, domain.PhasePreTrip, env.Phase)
	assert.Equal(t, domain.ActionPreTrip, env.Action)
	require.NotNil(t, env.PreTrip)
	assert.Equal(t, "Tokyo", env.PreTrip.Destination)
	assert.Equal(t, 5, env.PreTrip.FallbackCount())
	assert.Contains(t, env.Message, "pre-trip plan for Tokyo")
	assert.Equal(t, domain.DefaultMode, env.Mode)
}

func TestOrchestrator_HandleMessage_InTripStartsAndKeepsTrip(t *testing.T) {
	f := newFixture(mock.Failing(errGatewayDown))
	ctx := context.Background()

	first, err := f.orch.HandleMessage(ctx, "user-1", "I'm lost near the station", "Kyoto")
	require.NoError(t, err)
	require.NotEmpty(t, first.TripID)
	assert.Equal(t, domain.PhaseInTrip, first.Phase)
	require.NotNil(t, first.InTrip)
	assert.True(t, first.InTrip.Success)

	// No in-trip vocabulary: the active trip keeps the user in-trip.
	second, err := f.orch.HandleMessage(ctx, "user-1", "Any good ramen?", "Kyoto")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseInTrip, second.Phase)
	assert.Equal(t, first.TripID, second.TripID)
	assert.Equal(t, 2, second.InTrip.MessageCount)

	sess, err := f.sessions.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first.TripID, sess.CurrentTripID)
}

func TestOrchestrator_PostTripScenario(t *testing.T) {
	gw := mock.ByTask(map[string]string{"feedback_analysis": `{
		"overall_satisfaction": 9,
		"favorite_experiences": ["Sunset at Oia in Santorini"],
		"budget_satisfaction": "Good",
		"sentiment": "positive"
	}`}, errGatewayDown)
	f := newFixture(gw)
	ctx := context.Background()

	inTrip, err := f.orch.HandleMessage(ctx, "user-1", "where is the ferry right now?", "Santorini")
	require.NoError(t, err)
	require.NoError(t, f.orch.CloseTrip(ctx, inTrip.TripID))

	st, err := f.trips.Get(ctx, inTrip.TripID)
	require.NoError(t, err)
	assert.Equal(t, domain.TripClosed, st.Status)

	env, err := f.orch.HandleMessage(ctx, "user-1", "Loved my week in Santorini, I'd give it 10/10", "")
	require.NoError(t, err)

	assert.Equal(t, domain.PhasePostTrip, env.Phase)
	assert.Equal(t, domain.ActionPostTrip, env.Action)
	require.NotNil(t, env.PostTrip)
	assert.True(t, env.PostTrip.Success)
	assert.Equal(t, 10, env.PostTrip.Analysis.OverallSatisfaction)
	assert.Equal(t, []string{"Santorini"}, env.PostTrip.Preferences.LikedDestinations)

	profile, err := f.orch.Profile(ctx, "user-1", domain.NewPaginationParams(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, "Medium/Comfortable", profile.Preferences.BudgetTier)
	assert.EqualValues(t, 1, profile.Total)
	assert.Contains(t, profile.TripHistory, env.TripID)

	assert.Equal(t, []string{"in-trip", "post-trip"}, f.phases.phases)
}

func TestOrchestrator_HandleMessage_ConcurrentMessagesShareOneTrip(t *testing.T) {
	f := newFixture(mock.Failing(errGatewayDown))
	ctx := context.Background()
	const n = 20

	var wg sync.WaitGroup
	tripIDs := make([]string, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			env, err := f.orch.HandleMessage(ctx, "user-1", "help, I need directions", "Paris")
			assert.NoError(t, err)
			tripIDs[i] = env.TripID
		}()
	}
	wg.Wait()

	for _, id := range tripIDs {
		assert.Equal(t, tripIDs[0], id)
	}
	st, err := f.trips.Get(ctx, tripIDs[0])
	require.NoError(t, err)
	assert.Equal(t, n, st.MessageCount)
}

func TestOrchestrator_HandleMessage_DifferentUsersAreIndependent(t *testing.T) {
	f := newFixture(mock.Failing(errGatewayDown))
	ctx := context.Background()

	a, err := f.orch.HandleMessage(ctx, "alice", "I'm lost", "Rome")
	require.NoError(t, err)
	b, err := f.orch.HandleMessage(ctx, "bob", "plan a trip to Oslo", "")
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseInTrip, a.Phase)
	assert.Equal(t, domain.PhasePlanning, b.Phase)
	assert.Empty(t, b.TripID)
}

func TestOrchestrator_HandleMessage_StoreFailureYieldsFallbackEnvelope(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		sessions := &mockSessions{getOrCreate: func(context.Context, string) (domain.Session, error) {
			return domain.Session{}, errGatewayDown
		}}
		orch := service.NewOrchestrator(service.Stores{Sessions: sessions}, nlg.NewGuard(mock.Failing(errGatewayDown)), nil)

		env, err := orch.HandleMessage(context.Background(), "user-1", "hello", "")

		require.NoError(t, err)
		assert.NotEmpty(t, env.Message)
		assert.Equal(t, domain.ActionChat, env.Action)
		assert.NotNil(t, env.Suggestions)
	})

	t.Run("panic", func(t *testing.T) {
		sessions := &mockSessions{getOrCreate: func(context.Context, string) (domain.Session, error) {
			panic("corrupted session")
		}}
		orch := service.NewOrchestrator(service.Stores{Sessions: sessions}, nlg.NewGuard(mock.Failing(errGatewayDown)), nil)

		env, err := orch.HandleMessage(context.Background(), "user-1", "hello", "")

		require.NoError(t, err)
		assert.NotEmpty(t, env.Message)
		assert.Equal(t, domain.DefaultMode, env.Mode)
	})
}

// ---- direct operations -----------------------------------------------------

func TestOrchestrator_HandleTripMessage(t *testing.T) {
	f := newFixture(mock.Failing(errGatewayDown))
	ctx := context.Background()

	_, err := f.orch.HandleTripMessage(ctx, "", "user-1", "hi", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	res, err := f.orch.HandleTripMessage(ctx, "trip-9", "user-1", "what's the weather", "Bergen")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "trip-9", res.TripID)

	sess, err := f.sessions.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "trip-9", sess.CurrentTripID)
	assert.Equal(t, []string{"in-trip"}, f.phases.phases)
}

func TestOrchestrator_HandleTripMessage_ClosedTripIsRejected(t *testing.T) {
	f := newFixture(mock.Failing(errGatewayDown))
	ctx := context.Background()

	_, err := f.orch.HandleTripMessage(ctx, "trip-1", "user-1", "where is the museum", "Paris")
	require.NoError(t, err)
	require.NoError(t, f.orch.CloseTrip(ctx, "trip-1"))

	_, err = f.orch.HandleTripMessage(ctx, "trip-1", "user-1", "one more thing", "Paris")
	assert.ErrorIs(t, err, domain.ErrValidation)

	sess, err := f.sessions.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, sess.HasActiveTrip())

	st, err := f.trips.Get(ctx, "trip-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TripClosed, st.Status)
	assert.Equal(t, 1, st.MessageCount)

	env, err := f.orch.HandleMessage(ctx, "user-1", "trip was amazing, loved Paris", "")
	require.NoError(t, err)
	assert.Equal(t, domain.PhasePostTrip, env.Phase)
}

func TestOrchestrator_HandleTripMessage_ForeignTripIsNotFound(t *testing.T) {
	f := newFixture(mock.Failing(errGatewayDown))
	ctx := context.Background()

	_, err := f.orch.HandleTripMessage(ctx, "trip-alice", "alice", "where is the ferry", "Oslo")
	require.NoError(t, err)

	_, err = f.orch.HandleTripMessage(ctx, "trip-alice", "bob", "hello", "Oslo")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	bob, err := f.sessions.Get(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, bob.HasActiveTrip())

	st, err := f.trips.Get(ctx, "trip-alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", st.UserID)
	assert.Equal(t, 1, st.MessageCount)

	require.NoError(t, f.orch.CloseTrip(ctx, "trip-alice"))
	alice, err := f.sessions.Get(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, alice.HasActiveTrip())
}

func TestOrchestrator_SubmitFeedback_ClosesActiveTrip(t *testing.T) {
	f := newFixture(mock.Failing(errGatewayDown))
	ctx := context.Background()

	env, err := f.orch.HandleMessage(ctx, "user-1", "I'm lost near the Colosseum", "Rome")
	require.NoError(t, err)
	require.NotEmpty(t, env.TripID)

	req := romeRequest()
	req.TripID = env.TripID
	_, err = f.orch.SubmitFeedback(ctx, req)
	require.NoError(t, err)

	st, err := f.trips.Get(ctx, env.TripID)
	require.NoError(t, err)
	assert.Equal(t, domain.TripClosed, st.Status)

	sess, err := f.sessions.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, sess.HasActiveTrip())
}

func TestOrchestrator_PlanPreTrip(t *testing.T) {
	f := newFixture(mock.Failing(errGatewayDown))
	ctx := context.Background()

	_, err := f.orch.PlanPreTrip(ctx, "", domain.PreTripRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	plan, err := f.orch.PlanPreTrip(ctx, "user-1", domain.PreTripRequest{
		Destination: "Reykjavik, Iceland",
		Nationality: "Canadian",
		Mode:        domain.ModeSolo,
	})
	require.NoError(t, err)
	assert.Equal(t, "Reykjavik, Iceland", plan.Destination)
	assert.Contains(t, plan.PackingList, "Thermal base layers")

	sess, err := f.sessions.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Canadian", sess.Nationality)
	assert.Equal(t, domain.ModeSolo, sess.Mode)
	assert.Equal(t, "Reykjavik, Iceland", sess.LastDestination)
}

func TestOrchestrator_SubmitFeedback(t *testing.T) {
	f := newFixture(mock.Failing(errGatewayDown))
	ctx := context.Background()

	_, err := f.orch.SubmitFeedback(ctx, domain.PostTripRequest{UserID: "user-1"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	res, err := f.orch.SubmitFeedback(ctx, romeRequest())
	require.NoError(t, err)
	assert.True(t, res.Success)

	rows, err := f.orch.ExportRecords(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "trip-rome", rows[0].TripID)
}

func TestOrchestrator_CloseTrip(t *testing.T) {
	f := newFixture(mock.Failing(errGatewayDown))
	ctx := context.Background()

	assert.ErrorIs(t, f.orch.CloseTrip(ctx, "missing"), domain.ErrNotFound)

	env, err := f.orch.HandleMessage(ctx, "user-1", "I'm lost", "Rome")
	require.NoError(t, err)
	require.NoError(t, f.orch.CloseTrip(ctx, env.TripID))

	sess, err := f.sessions.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, sess.HasActiveTrip())

	next, err := f.orch.HandleMessage(ctx, "user-1", "plan a trip to Oslo", "")
	require.NoError(t, err)
	assert.Equal(t, domain.PhasePlanning, next.Phase)
}

func TestOrchestrator_Profile_UnknownUser(t *testing.T) {
	f := newFixture(mock.Failing(errGatewayDown))

	_, err := f.orch.Profile(context.Background(), "ghost", domain.NewPaginationParams(nil, nil))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
