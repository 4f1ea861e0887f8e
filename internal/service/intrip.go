package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/location"
	"github.com/pkordes/wayfarer/internal/nlg"
	"github.com/pkordes/wayfarer/internal/repo"
)

// inTripFallback is returned to the traveller when the assistant itself fails.
const inTripFallback = "I'm having trouble right now. If this is an emergency, call 112 or the local emergency number."

// reply is what a responder contributes to an InTripResult.
type reply struct {
	text              string
	fallbackUsed      bool
	emergencyContacts []domain.EmergencyContact
	nearby            []domain.Place
	transport         []string
	safetyTips        []string
	phrases           *domain.PhraseBook
}

type responder func(ctx context.Context, req domain.InTripRequest, intent domain.Intent, where string) reply

// InTripAssistant answers messages sent during an active trip.
type InTripAssistant struct {
	trips      repo.TripStateStore
	intents    *IntentClassifier
	guard      *nlg.Guard
	places     location.Service
	logger     *slog.Logger
	responders map[domain.IntentType]responder
}

// NewInTripAssistant constructs an InTripAssistant. places may be nil, in
// which case replies carry no nearby services.
func NewInTripAssistant(trips repo.TripStateStore, intents *IntentClassifier, guard *nlg.Guard, places location.Service, logger *slog.Logger) *InTripAssistant {
	if logger == nil {
		logger = slog.Default()
	}
	a := &InTripAssistant{
		trips:   trips,
		intents: intents,
		guard:   guard,
		places:  places,
		logger:  logger,
	}
	a.responders = map[domain.IntentType]responder{
		domain.IntentEmergency:      a.respondEmergency,
		domain.IntentNavigation:     a.respondNavigation,
		domain.IntentBookingChange:  a.respondBookingChange,
		domain.IntentRecommendation: a.respondRecommendation,
		domain.IntentTranslation:    a.respondTranslation,
		domain.IntentWeather:        a.respondWeather,
		domain.IntentSafety:         a.respondSafety,
		domain.IntentGeneral:        a.respondGeneral,
	}
	return a
}

// Handle never fails. Responder-level problems degrade to canned text; any
// other failure yields a result with Success false and a fallback reply.
// The result's TripID is the trip the message was recorded on, which differs
// from req.TripID when that trip is closed or belongs to another user.
func (a *InTripAssistant) Handle(ctx context.Context, req domain.InTripRequest) (res domain.InTripResult) {
	if req.TripID == "" {
		req.TripID = uuid.NewString()
	}
	defer func() {
		if r := recover(); r != nil {
			a.logger.ErrorContext(ctx, "in-trip handling failed", "trip_id", req.TripID, "panic", fmt.Sprint(r))
			res = failedInTrip(req.TripID, fmt.Errorf("unexpected failure: %v", r))
		}
	}()

	st, created, err := a.trips.GetOrCreate(ctx, req.TripID, req.UserID, req.Profile)
	if err != nil {
		a.logger.ErrorContext(ctx, "load trip state", "trip_id", req.TripID, "error", err)
		return failedInTrip(req.TripID, err)
	}
	// A closed trip, or one owned by someone else, is not this user's active
	// trip. The message starts a fresh one instead.
	if st.Status == domain.TripClosed || st.UserID != req.UserID {
		a.logger.InfoContext(ctx, "trip not usable, starting a new one",
			"trip_id", req.TripID, "status", string(st.Status), "user_id", req.UserID)
		req.TripID = uuid.NewString()
		if _, created, err = a.trips.GetOrCreate(ctx, req.TripID, req.UserID, req.Profile); err != nil {
			a.logger.ErrorContext(ctx, "load trip state", "trip_id", req.TripID, "error", err)
			return failedInTrip(req.TripID, err)
		}
	}
	if created {
		a.logger.InfoContext(ctx, "trip started", "trip_id", req.TripID, "user_id", req.UserID)
	}

	intent := a.intents.Classify(ctx, req.Message, req.Location)
	where := req.Location
	if intent.LocationMentioned != nil {
		where = *intent.LocationMentioned
	}

	respond, ok := a.responders[intent.Type]
	if !ok {
		respond = a.respondGeneral
	}
	r := respond(ctx, req, intent, where)

	state, err := a.trips.RecordMessage(ctx, req.TripID, req.Location)
	if err != nil {
		a.logger.WarnContext(ctx, "record trip message", "trip_id", req.TripID, "error", err)
	}

	return domain.InTripResult{
		Success:           true,
		TripID:            req.TripID,
		Intent:            intent,
		Response:          r.text,
		Suggestions:       slices.Clone(suggestionsByIntent[intent.Type]),
		EmergencyContacts: nonNil(r.emergencyContacts),
		NearbyServices:    nonNil(r.nearby),
		TransportOptions:  r.transport,
		SafetyTips:        r.safetyTips,
		Phrases:           r.phrases,
		FallbackUsed:      r.fallbackUsed,
		MessageCount:      state.MessageCount,
	}
}

// Close marks a trip closed. Returns domain.ErrNotFound for an unknown trip.
func (a *InTripAssistant) Close(ctx context.Context, tripID string) (domain.TripState, error) {
	st, err := a.trips.Close(ctx, tripID)
	if err != nil {
		return domain.TripState{}, fmt.Errorf("service.InTripAssistant.Close: %w", err)
	}
	a.logger.InfoContext(ctx, "trip closed", "trip_id", tripID, "messages", st.MessageCount)
	return st, nil
}

// nearby looks up places of the given kinds. Failures are logged and skipped.
func (a *InTripAssistant) nearby(ctx context.Context, where string, kinds ...location.Kind) []domain.Place {
	if a.places == nil || strings.TrimSpace(where) == "" {
		return nil
	}
	var out []domain.Place
	for _, k := range kinds {
		places, err := a.places.Nearby(ctx, where, k)
		if err != nil {
			a.logger.DebugContext(ctx, "nearby lookup failed", "location", where, "kind", string(k), "error", err)
			continue
		}
		out = append(out, places...)
	}
	return out
}

func failedInTrip(tripID string, err error) domain.InTripResult {
	return domain.InTripResult{
		Success:           false,
		TripID:            tripID,
		Intent:            domain.DefaultIntent(),
		Response:          inTripFallback,
		Suggestions:       slices.Clone(suggestionsByIntent[domain.IntentEmergency]),
		EmergencyContacts: slices.Clone(emergencyContacts),
		NearbyServices:    []domain.Place{},
		FallbackUsed:      true,
		Error:             err.Error(),
		Fallback:          inTripFallback,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
