package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/nlg"
	"github.com/pkordes/wayfarer/internal/repo"
)

const postTripFallback = "Thanks for sharing your trip! I couldn't process all of your feedback right now, but it has been noted."

// Budget satisfaction labels and the comfort tiers they map to.
var budgetTiers = map[string]string{
	"excellent": "High/Luxury",
	"good":      "Medium/Comfortable",
}

const defaultBudgetTier = "Budget/Basic"

// PostTripProcessor turns a finished trip and its feedback into learned
// preferences, a summary, recommendations and a stored TripRecord.
type PostTripProcessor struct {
	sessions repo.SessionStore
	records  repo.TripRecordStore
	trips    repo.TripStateStore
	guard    *nlg.Guard
	logger   *slog.Logger
}

// NewPostTripProcessor constructs a PostTripProcessor. trips may be nil, in
// which case feedback on the active trip only unlinks it from the session.
func NewPostTripProcessor(sessions repo.SessionStore, records repo.TripRecordStore, trips repo.TripStateStore, guard *nlg.Guard, logger *slog.Logger) *PostTripProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostTripProcessor{sessions: sessions, records: records, trips: trips, guard: guard, logger: logger}
}

// Process never fails. Generation problems degrade to default content; a
// record store failure is logged and absorbed; anything else yields a result
// with Success false and a fallback message.
// The caller must hold the user's session lock.
func (p *PostTripProcessor) Process(ctx context.Context, req domain.PostTripRequest) (res domain.PostTripResult) {
	if req.TripID == "" {
		req.TripID = uuid.NewString()
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "post-trip processing failed", "trip_id", req.TripID, "panic", fmt.Sprint(r))
			res = domain.PostTripResult{Success: false, TripID: req.TripID, Fallback: postTripFallback}
		}
	}()

	sess, err := p.sessions.GetOrCreate(ctx, req.UserID)
	if err != nil {
		p.logger.ErrorContext(ctx, "load session", "user_id", req.UserID, "error", err)
		return domain.PostTripResult{Success: false, TripID: req.TripID, Fallback: postTripFallback}
	}

	analysis := p.analyze(ctx, req)

	prefs := sess.Preferences.Clone()
	ApplyFeedback(&prefs, req.Trip.Destination, analysis)

	patch := domain.SessionPatch{Preferences: &prefs, AppendTrip: req.TripID}
	if req.Trip.Destination != "" {
		patch.LastDestination = &req.Trip.Destination
	}
	if sess.CurrentTripID == req.TripID {
		cleared := ""
		patch.CurrentTripID = &cleared
		if p.trips != nil {
			if _, err := p.trips.Close(ctx, req.TripID); err != nil && !errors.Is(err, domain.ErrNotFound) {
				p.logger.WarnContext(ctx, "close trip after feedback", "trip_id", req.TripID, "error", err)
			}
		}
	}
	if _, err := p.sessions.Update(ctx, req.UserID, patch); err != nil {
		p.logger.ErrorContext(ctx, "update preferences", "user_id", req.UserID, "error", err)
	}

	res = domain.PostTripResult{
		Success:         true,
		TripID:          req.TripID,
		Analysis:        analysis,
		Summary:         p.summarize(ctx, req, analysis),
		Recommendations: p.recommend(ctx, req, analysis, prefs),
		Insights:        insights(analysis),
		Improvements:    improvements(analysis),
		Preferences:     prefs,
	}

	rec, err := p.records.Append(ctx, domain.TripRecord{
		TripID:      req.TripID,
		UserID:      req.UserID,
		TripData:    req.Trip,
		Analysis:    analysis,
		Preferences: prefs,
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "store trip record", "trip_id", req.TripID, "error", err)
	} else {
		res.RecordID = rec.ID
	}
	return res
}

// Profile returns the learned preferences and one page of trip records.
func (p *PostTripProcessor) Profile(ctx context.Context, userID string, page domain.PaginationParams) (domain.UserTravelProfile, error) {
	sess, err := p.sessions.Get(ctx, userID)
	if err != nil {
		return domain.UserTravelProfile{}, fmt.Errorf("service.PostTripProcessor.Profile: %w", err)
	}
	records, total, err := p.records.ListByUser(ctx, userID, page)
	if err != nil {
		return domain.UserTravelProfile{}, fmt.Errorf("service.PostTripProcessor.Profile: %w", err)
	}
	return domain.UserTravelProfile{
		UserID:      userID,
		Mode:        sess.Mode,
		Preferences: sess.Preferences,
		TripHistory: sess.TripHistory,
		Records:     records,
		Total:       total,
	}, nil
}

// ApplyFeedback folds one analysis into a preference profile. Repeated
// application with the same input leaves the profile unchanged.
func ApplyFeedback(prefs *domain.PreferenceProfile, destination string, a domain.FeedbackAnalysis) {
	destination = strings.TrimSpace(destination)
	if destination != "" && slices.ContainsFunc(a.FavoriteExperiences, func(f string) bool {
		return strings.Contains(strings.ToLower(f), strings.ToLower(destination))
	}) {
		prefs.AddLikedDestination(destination)
	}
	for _, f := range a.FavoriteExperiences {
		prefs.AddLikedActivity(f)
	}
	for _, l := range a.LeastFavoriteExperiences {
		prefs.AddDislike(l)
	}
	if tier, ok := budgetTiers[strings.ToLower(strings.TrimSpace(a.BudgetSatisfaction))]; ok {
		prefs.BudgetTier = tier
	} else {
		prefs.BudgetTier = defaultBudgetTier
	}
	if s := strings.TrimSpace(a.TravelStyle); s != "" {
		prefs.TravelStyle = s
	}
}

func (p *PostTripProcessor) analyze(ctx context.Context, req domain.PostTripRequest) domain.FeedbackAnalysis {
	fallback := defaultAnalysis(req.Feedback)
	a, fellBack := nlg.JSON(ctx, p.guard, "feedback_analysis", analysisPrompt(req), acceptAnalysis, fallback)
	if !fellBack && a.Sentiment == "" {
		a.Sentiment = Sentiment(req.Feedback)
	}
	if req.Rating != nil {
		a.OverallSatisfaction = clampRating(*req.Rating)
	}
	a.FavoriteExperiences = nonNil(a.FavoriteExperiences)
	a.LeastFavoriteExperiences = nonNil(a.LeastFavoriteExperiences)
	a.Improvements = nonNil(a.Improvements)
	return a
}

func acceptAnalysis(a *domain.FeedbackAnalysis) bool {
	if a.OverallSatisfaction < 1 || a.OverallSatisfaction > 10 {
		return false
	}
	if a.SafetyRating != 0 {
		a.SafetyRating = clampRating(a.SafetyRating)
	}
	if a.CulturalExperienceRating != 0 {
		a.CulturalExperienceRating = clampRating(a.CulturalExperienceRating)
	}
	a.Sentiment = strings.ToLower(strings.TrimSpace(a.Sentiment))
	switch a.Sentiment {
	case SentimentPositive, SentimentNegative, SentimentNeutral, "":
	default:
		a.Sentiment = ""
	}
	return true
}

// defaultAnalysis is used whenever feedback cannot be analysed by generation.
// Scores follow the rule-based sentiment of the raw feedback.
func defaultAnalysis(feedback string) domain.FeedbackAnalysis {
	sentiment := Sentiment(feedback)
	a := domain.FeedbackAnalysis{
		OverallSatisfaction:      6,
		FavoriteExperiences:      []string{},
		LeastFavoriteExperiences: []string{},
		BudgetSatisfaction:       "Fair",
		SafetyRating:             7,
		CulturalExperienceRating: 7,
		Recommendation:           "Consider sharing more detail about your trip next time.",
		Improvements:             []string{},
		Sentiment:                sentiment,
	}
	switch sentiment {
	case SentimentPositive:
		a.OverallSatisfaction = 8
		a.BudgetSatisfaction = "Good"
		a.Recommendation = "Would recommend this destination."
	case SentimentNegative:
		a.OverallSatisfaction = 4
		a.Recommendation = "Look for ways to avoid the issues you ran into."
	}
	return a
}

func analysisPrompt(req domain.PostTripRequest) string {
	return fmt.Sprintf(`Task: feedback_analysis
Analyse this traveller's feedback about a finished trip.
Destination: %s
Duration: %d days
Budget: %s
Activities: %s
Feedback: %q

Reply with only a JSON object of this shape:
{"overall_satisfaction": 1-10, "favorite_experiences": [string], "least_favorite_experiences": [string],
 "budget_satisfaction": "Excellent" | "Good" | "Fair" | "Poor", "safety_rating": 1-10,
 "cultural_experience_rating": 1-10, "recommendation": string, "improvements": [string],
 "travel_style": string, "sentiment": "positive" | "negative" | "neutral"}
`, orUnknown(req.Trip.Destination), req.Trip.DurationDay, orNotSpecified(req.Trip.Budget),
		orNotSpecified(strings.Join(req.Trip.Activities, ", ")), req.Feedback)
}

func (p *PostTripProcessor) summarize(ctx context.Context, req domain.PostTripRequest, a domain.FeedbackAnalysis) domain.TripSummary {
	dest := orUnknown(req.Trip.Destination)
	fallback := fmt.Sprintf("Your trip to %s is complete. You rated it %d/10.", dest, a.OverallSatisfaction)
	if req.Trip.DurationDay > 0 {
		fallback = fmt.Sprintf("Your %d-day trip to %s is complete. You rated it %d/10.", req.Trip.DurationDay, dest, a.OverallSatisfaction)
	}
	prompt := fmt.Sprintf(`Task: trip_summary
Write a warm three-sentence overview of this trip.
Destination: %s
Duration: %d days
Highlights: %s
Feedback: %q
`, dest, req.Trip.DurationDay, strings.Join(a.FavoriteExperiences, "; "), req.Feedback)
	overview, fb := p.guard.Text(ctx, "trip_summary", prompt, fallback)

	memories := []string{fmt.Sprintf("Visited %s", dest)}
	for _, f := range a.FavoriteExperiences {
		memories = append(memories, "Favourite moment: "+f)
	}
	if len(req.Trip.Activities) > 0 {
		memories = append(memories, "Activities: "+strings.Join(req.Trip.Activities, ", "))
	}

	return domain.TripSummary{
		Overview:   overview,
		Highlights: slices.Clone(a.FavoriteExperiences),
		Budget:     fmt.Sprintf("Budget: %s (satisfaction: %s)", orNotSpecified(req.Trip.Budget), orNotSpecified(a.BudgetSatisfaction)),
		Memories:   memories,
		LessonsLearned: []string{
			"Book popular experiences ahead of time",
			"Leave free time in the schedule for discoveries",
			"Keep digital and paper copies of key documents",
		},
		FallbackUsed: fb,
	}
}

func (p *PostTripProcessor) recommend(ctx context.Context, req domain.PostTripRequest, a domain.FeedbackAnalysis, prefs domain.PreferenceProfile) domain.FutureRecommendations {
	dest := orUnknown(req.Trip.Destination)
	prompt := fmt.Sprintf(`Task: future_recommendations
Suggest where this traveller could go next and why, in three sentences.
Last destination: %s
Liked: %s
Disliked: %s
Budget tier: %s
`, dest, strings.Join(prefs.LikedActivities, "; "), strings.Join(prefs.Dislikes, "; "), prefs.BudgetTier)
	narrative, fb := p.guard.Text(ctx, "future_recommendations", prompt,
		fmt.Sprintf("Based on your trip to %s, look for destinations with similar experiences.", dest))

	return domain.FutureRecommendations{
		Narrative:           narrative,
		SimilarDestinations: fmt.Sprintf("Destinations similar to %s", dest),
		NewExperiences:      "Experience types you have not tried yet",
		BudgetOptions:       fmt.Sprintf("Options for a %s budget", prefs.BudgetTier),
		Timing:              "Shoulder season usually balances price, weather and crowds",
		FallbackUsed:        fb,
	}
}

func insights(a domain.FeedbackAnalysis) []string {
	out := []string{}
	switch {
	case a.OverallSatisfaction >= 8:
		out = append(out, "This trip was a strong match for your travel preferences.")
	case a.OverallSatisfaction <= 4:
		out = append(out, "This trip fell short of your expectations.")
	}
	if a.SafetyRating >= 8 {
		out = append(out, "You felt safe throughout the trip.")
	}
	if a.CulturalExperienceRating >= 8 {
		out = append(out, "Cultural experiences were a highlight for you.")
	}
	if len(a.FavoriteExperiences) > 0 {
		out = append(out, fmt.Sprintf("You enjoyed %d standout experience(s).", len(a.FavoriteExperiences)))
	}
	return out
}

func improvements(a domain.FeedbackAnalysis) []string {
	out := []string{}
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	if strings.EqualFold(a.BudgetSatisfaction, "Poor") {
		add("Consider budget planning tools")
	}
	if a.SafetyRating > 0 && a.SafetyRating <= 5 {
		add("Research safer neighbourhoods before booking")
	}
	if a.CulturalExperienceRating > 0 && a.CulturalExperienceRating <= 5 {
		add("Try a local guided experience to connect with the culture")
	}
	for _, s := range a.Improvements {
		add(s)
	}
	return out
}
