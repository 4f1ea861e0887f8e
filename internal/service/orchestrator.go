// Package service contains the conversational core of the Wayfarer assistant:
// phase and intent classification, the pre-trip, in-trip and post-trip
// handlers, planning chat, and the Orchestrator that ties them together.
// Services depend on repo interfaces and the nlg.Guard, never on transports.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/location"
	"github.com/pkordes/wayfarer/internal/nlg"
	"github.com/pkordes/wayfarer/internal/repo"
)

// genericFallback is the Envelope message used when the orchestrator itself fails.
const genericFallback = "Sorry, something went wrong on my side. Please try again in a moment."

// PhaseObserver is notified of the phase each message is routed to.
type PhaseObserver interface {
	ObservePhase(phase string)
}

// Stores groups the state stores the orchestrator needs.
type Stores struct {
	Sessions repo.SessionStore
	Trips    repo.TripStateStore
	Records  repo.TripRecordStore
}

// Orchestrator is the entry point for every inbound message: it loads the
// user's session, classifies the phase, dispatches to the matching handler
// and always returns a well-formed Envelope.
type Orchestrator struct {
	sessions repo.SessionStore
	trips    repo.TripStateStore
	preTrip  *PreTripPlanner
	inTrip   *InTripAssistant
	postTrip *PostTripProcessor
	planning *PlanningAssistant
	export   *ExportService
	observer PhaseObserver
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used by the orchestrator and its handlers.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithPhaseObserver sets the phase observer (usually metrics).
func WithPhaseObserver(p PhaseObserver) Option {
	return func(o *Orchestrator) { o.observer = p }
}

// NewOrchestrator wires the phase handlers around the given stores, guard
// and location service.
func NewOrchestrator(stores Stores, guard *nlg.Guard, places location.Service, opts ...Option) *Orchestrator {
	o := &Orchestrator{sessions: stores.Sessions, trips: stores.Trips, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	o.preTrip = NewPreTripPlanner(guard, o.logger)
	o.inTrip = NewInTripAssistant(stores.Trips, NewIntentClassifier(guard), guard, places, o.logger)
	o.postTrip = NewPostTripProcessor(stores.Sessions, stores.Records, stores.Trips, guard, o.logger)
	o.planning = NewPlanningAssistant(guard)
	o.export = NewExportService(stores.Records)
	return o
}

// HandleMessage processes one free-form message. It returns an error only
// for a missing user id or message (domain.ErrValidation); every other
// failure degrades into the returned Envelope.
func (o *Orchestrator) HandleMessage(ctx context.Context, userID, message, currentLocation string) (env domain.Envelope, err error) {
	if err := validateMessage(userID, message); err != nil {
		return domain.Envelope{}, fmt.Errorf("service.Orchestrator.HandleMessage: %w", err)
	}

	unlock := o.sessions.Lock(userID)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			o.logger.ErrorContext(ctx, "message handling failed", "user_id", userID, "panic", fmt.Sprint(r))
			env, err = fallbackEnvelope(domain.PhasePlanning), nil
		}
	}()

	sess, err := o.sessions.GetOrCreate(ctx, userID)
	if err != nil {
		o.logger.ErrorContext(ctx, "load session", "user_id", userID, "error", err)
		return fallbackEnvelope(domain.PhasePlanning), nil
	}

	details := ExtractTripDetails(message)
	patch := detailsPatch(details)
	sess.Apply(patch)

	phase := ClassifyPhase(message, sess)
	if o.observer != nil {
		o.observer.ObservePhase(string(phase))
	}
	o.logger.DebugContext(ctx, "message classified", "user_id", userID, "phase", string(phase))

	switch phase {
	case domain.PhasePreTrip:
		env = o.preTripEnvelope(ctx, sess, details)
	case domain.PhaseInTrip:
		env = o.inTripEnvelope(ctx, sess, message, currentLocation, &patch)
	case domain.PhasePostTrip:
		env = o.postTripEnvelope(ctx, sess, message, details)
	default:
		r := o.planning.Respond(ctx, message, sess, details)
		env = domain.Envelope{Message: r.Message, Action: r.Action, Suggestions: r.Suggestions, Itinerary: r.Itinerary}
	}
	env.Phase = phase

	updated, err := o.sessions.Update(ctx, userID, patch)
	if err != nil {
		o.logger.ErrorContext(ctx, "update session", "user_id", userID, "error", err)
		updated = sess
	}
	env.Mode = updated.Mode
	if env.Suggestions == nil {
		env.Suggestions = []string{}
	}
	return env, nil
}

// HandleTripMessage sends a message to a specific trip, making it the
// user's active trip. A trip owned by another user is reported as
// domain.ErrNotFound and a closed trip as domain.ErrValidation.
func (o *Orchestrator) HandleTripMessage(ctx context.Context, tripID, userID, message, currentLocation string) (domain.InTripResult, error) {
	if err := validateMessage(userID, message); err != nil {
		return domain.InTripResult{}, fmt.Errorf("service.Orchestrator.HandleTripMessage: %w", err)
	}
	if strings.TrimSpace(tripID) == "" {
		return domain.InTripResult{}, fmt.Errorf("service.Orchestrator.HandleTripMessage: trip id is required: %w", domain.ErrValidation)
	}

	unlock := o.sessions.Lock(userID)
	defer unlock()

	sess, err := o.sessions.GetOrCreate(ctx, userID)
	if err != nil {
		o.logger.ErrorContext(ctx, "load session", "user_id", userID, "error", err)
		return failedInTrip(tripID, err), nil
	}
	st, err := o.trips.Get(ctx, tripID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		o.logger.ErrorContext(ctx, "load trip state", "trip_id", tripID, "error", err)
		return failedInTrip(tripID, err), nil
	case st.UserID != userID:
		return domain.InTripResult{}, fmt.Errorf("service.Orchestrator.HandleTripMessage: %w", domain.ErrNotFound)
	case st.Status == domain.TripClosed:
		return domain.InTripResult{}, fmt.Errorf("service.Orchestrator.HandleTripMessage: trip %s is closed: %w", tripID, domain.ErrValidation)
	}
	if o.observer != nil {
		o.observer.ObservePhase(string(domain.PhaseInTrip))
	}

	res := o.inTrip.Handle(ctx, domain.InTripRequest{
		TripID:   tripID,
		UserID:   userID,
		Message:  message,
		Location: currentLocation,
		Profile:  sess.Profile(),
	})
	if res.Success && sess.CurrentTripID != res.TripID {
		linked := res.TripID
		if _, err := o.sessions.Update(ctx, userID, domain.SessionPatch{CurrentTripID: &linked}); err != nil {
			o.logger.ErrorContext(ctx, "link active trip", "user_id", userID, "trip_id", linked, "error", err)
		}
	}
	return res, nil
}

// PlanPreTrip builds a pre-trip plan from explicit fields. Empty fields fall
// back to what the session remembers.
func (o *Orchestrator) PlanPreTrip(ctx context.Context, userID string, req domain.PreTripRequest) (domain.PreTripPlan, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.PreTripPlan{}, fmt.Errorf("service.Orchestrator.PlanPreTrip: user id is required: %w", domain.ErrValidation)
	}

	unlock := o.sessions.Lock(userID)
	defer unlock()

	sess, err := o.sessions.GetOrCreate(ctx, userID)
	if err != nil {
		o.logger.ErrorContext(ctx, "load session", "user_id", userID, "error", err)
		sess = domain.NewSession(userID, time.Now())
	}
	if o.observer != nil {
		o.observer.ObservePhase(string(domain.PhasePreTrip))
	}

	if req.Destination == "" {
		req.Destination = sess.LastDestination
	}
	if req.Origin == "" {
		req.Origin = sess.Origin
	}
	plan := o.preTrip.Plan(ctx, req, sess.Profile())

	patch := domain.SessionPatch{}
	if req.Destination != "" {
		patch.LastDestination = &req.Destination
	}
	if req.Origin != "" {
		patch.Origin = &req.Origin
	}
	if req.Nationality != "" {
		patch.Nationality = &req.Nationality
	}
	if req.Mode != "" {
		patch.Mode = &req.Mode
	}
	if !patch.IsEmpty() {
		if _, err := o.sessions.Update(ctx, userID, patch); err != nil {
			o.logger.ErrorContext(ctx, "update session", "user_id", userID, "error", err)
		}
	}
	return plan, nil
}

// SubmitFeedback runs post-trip processing for an explicit trip report.
func (o *Orchestrator) SubmitFeedback(ctx context.Context, req domain.PostTripRequest) (domain.PostTripResult, error) {
	if err := validateMessage(req.UserID, req.Feedback); err != nil {
		return domain.PostTripResult{}, fmt.Errorf("service.Orchestrator.SubmitFeedback: %w", err)
	}

	unlock := o.sessions.Lock(req.UserID)
	defer unlock()

	if o.observer != nil {
		o.observer.ObservePhase(string(domain.PhasePostTrip))
	}
	return o.postTrip.Process(ctx, req), nil
}

// CloseTrip marks a trip closed and unlinks it from its owner's session.
// Returns domain.ErrNotFound for an unknown trip.
func (o *Orchestrator) CloseTrip(ctx context.Context, tripID string) error {
	st, err := o.inTrip.Close(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.Orchestrator.CloseTrip: %w", err)
	}
	if st.UserID == "" {
		return nil
	}

	unlock := o.sessions.Lock(st.UserID)
	defer unlock()

	sess, err := o.sessions.Get(ctx, st.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("service.Orchestrator.CloseTrip: %w", err)
	}
	if sess.CurrentTripID == tripID {
		cleared := ""
		if _, err := o.sessions.Update(ctx, st.UserID, domain.SessionPatch{CurrentTripID: &cleared}); err != nil {
			return fmt.Errorf("service.Orchestrator.CloseTrip: %w", err)
		}
	}
	return nil
}

// Profile returns the user's learned preferences and trip records.
// Returns domain.ErrNotFound for a user the assistant has never seen.
func (o *Orchestrator) Profile(ctx context.Context, userID string, page domain.PaginationParams) (domain.UserTravelProfile, error) {
	p, err := o.postTrip.Profile(ctx, userID, page)
	if err != nil {
		return domain.UserTravelProfile{}, fmt.Errorf("service.Orchestrator.Profile: %w", err)
	}
	return p, nil
}

// ExportRecords returns every trip record of the user as flat rows.
func (o *Orchestrator) ExportRecords(ctx context.Context, userID string) ([]domain.ExportRow, error) {
	rows, err := o.export.Export(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.Orchestrator.ExportRecords: %w", err)
	}
	return rows, nil
}

func (o *Orchestrator) preTripEnvelope(ctx context.Context, sess domain.Session, d TripDetails) domain.Envelope {
	req := domain.PreTripRequest{
		Destination:   firstNonEmpty(d.Destination, sess.LastDestination),
		Origin:        firstNonEmpty(d.Origin, sess.Origin),
		DepartureDate: d.DepartureDate,
		Nationality:   sess.Nationality,
		GroupSize:     d.GroupSize,
		Mode:          sess.Mode,
	}
	plan := o.preTrip.Plan(ctx, req, sess.Profile())

	var b strings.Builder
	fmt.Fprintf(&b, "Here is your pre-trip plan for %s, departing %s.", plan.Destination, plan.DepartureDate.Format("2 January 2006"))
	for _, c := range domain.Categories {
		fmt.Fprintf(&b, "\n- %s: %s", c, plan.Summaries()[c])
	}
	return domain.Envelope{
		Message:     b.String(),
		Action:      domain.ActionPreTrip,
		Suggestions: []string{"Show packing list", "Check visa requirements", "View preparation timeline"},
		PreTrip:     &plan,
	}
}

func (o *Orchestrator) inTripEnvelope(ctx context.Context, sess domain.Session, message, currentLocation string, patch *domain.SessionPatch) domain.Envelope {
	tripID := sess.CurrentTripID
	if tripID == "" {
		tripID = uuid.NewString()
	}
	res := o.inTrip.Handle(ctx, domain.InTripRequest{
		TripID:   tripID,
		UserID:   sess.UserID,
		Message:  message,
		Location: currentLocation,
		Profile:  sess.Profile(),
	})
	if res.Success {
		tripID = res.TripID
	}
	if tripID != sess.CurrentTripID {
		patch.CurrentTripID = &tripID
	}
	text := res.Response
	if !res.Success {
		text = res.Fallback
	}
	return domain.Envelope{
		Message:     text,
		Action:      domain.ActionInTrip,
		Suggestions: res.Suggestions,
		InTrip:      &res,
		TripID:      tripID,
	}
}

// postTripEnvelope files chat feedback as a new trip. Feedback reaches this
// phase only when no trip is active.
func (o *Orchestrator) postTripEnvelope(ctx context.Context, sess domain.Session, message string, d TripDetails) domain.Envelope {
	budget := d.BudgetHint
	if budget == "" {
		budget = sess.BudgetHint
	}
	res := o.postTrip.Process(ctx, domain.PostTripRequest{
		UserID: sess.UserID,
		TripID: uuid.NewString(),
		Trip: domain.TripData{
			Destination: firstNonEmpty(d.Destination, sess.LastDestination),
			DurationDay: d.DurationDays,
			Budget:      budget,
		},
		Feedback: message,
		Rating:   d.Rating,
	})
	text := res.Summary.Overview
	if !res.Success {
		text = res.Fallback
	}
	return domain.Envelope{
		Message:     text,
		Action:      domain.ActionPostTrip,
		Suggestions: []string{"Plan your next trip", "View your travel profile", "Share your trip summary"},
		PostTrip:    &res,
		TripID:      res.TripID,
	}
}

// detailsPatch turns extracted details into a session patch. Only mentioned
// details are set, so the patch never erases remembered values.
func detailsPatch(d TripDetails) domain.SessionPatch {
	var p domain.SessionPatch
	if d.Mode != "" {
		mode := d.Mode
		p.Mode = &mode
	}
	if d.BudgetHint != "" {
		p.BudgetHint = &d.BudgetHint
	}
	if d.Dietary != "" {
		p.Dietary = &d.Dietary
	}
	if d.GroupSize > 0 {
		gs := strconv.Itoa(d.GroupSize)
		p.GroupSize = &gs
	}
	if d.Destination != "" {
		p.LastDestination = &d.Destination
	}
	if d.Origin != "" {
		p.Origin = &d.Origin
	}
	return p
}

func validateMessage(userID, message string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user_id is required: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message is required: %w", domain.ErrValidation)
	}
	return nil
}

func fallbackEnvelope(phase domain.Phase) domain.Envelope {
	return domain.Envelope{
		Message:     genericFallback,
		Mode:        domain.DefaultMode,
		Phase:       phase,
		Action:      domain.ActionChat,
		Suggestions: []string{"Try again"},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
