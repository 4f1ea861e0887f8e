package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/nlg"
)

const (
	defaultItineraryDays = 3
	maxItineraryDays     = 14
)

var restaurantPattern = regexp.MustCompile(`(?i)\b(restaurants?|food|eat|eating|dinner|lunch|breakfast|cuisine|cafes?)\b`)

// PlanningReply is the phase-specific part of a planning Envelope.
type PlanningReply struct {
	Message     string
	Action      domain.Action
	Suggestions []string
	Itinerary   *domain.Itinerary
}

// PlanningAssistant handles messages that belong to no specific trip phase:
// itinerary sketches, restaurant ideas and general travel chat.
type PlanningAssistant struct {
	guard *nlg.Guard
}

// NewPlanningAssistant constructs a PlanningAssistant.
func NewPlanningAssistant(guard *nlg.Guard) *PlanningAssistant {
	return &PlanningAssistant{guard: guard}
}

// Respond picks restaurants, itinerary or chat, in that order.
func (p *PlanningAssistant) Respond(ctx context.Context, message string, sess domain.Session, d TripDetails) PlanningReply {
	destination := d.Destination
	if destination == "" {
		destination = sess.LastDestination
	}

	switch {
	case restaurantPattern.MatchString(message):
		return p.restaurants(ctx, message, destination, sess)
	case d.Destination != "":
		return p.itinerary(ctx, destination, d.DurationDays, sess)
	default:
		return p.chat(ctx, message, sess)
	}
}

func (p *PlanningAssistant) restaurants(ctx context.Context, message, destination string, sess domain.Session) PlanningReply {
	where := orUnknown(destination)
	dietary := orNotSpecified(sess.Dietary)
	prompt := fmt.Sprintf(`Task: restaurants
Suggest three places or styles of food to try.
Destination: %s
Dietary needs: %s
Budget: %s
Travel mode: %s
Message: %q
`, where, dietary, orNotSpecified(sess.BudgetHint), sess.Mode, message)

	fallback := fmt.Sprintf("Look for busy local spots and markets in %s; places full of residents are usually a good sign.", where)
	if destination == "" {
		fallback = "Tell me where you are heading and I'll suggest places to eat."
	}
	if sess.Dietary != "" {
		fallback += fmt.Sprintf(" Search for \"%s\" options and learn how to explain your diet in the local language.", sess.Dietary)
	}
	text, _ := p.guard.Text(ctx, "restaurants", prompt, fallback)
	return PlanningReply{
		Message:     text,
		Action:      domain.ActionRestaurants,
		Suggestions: []string{"Local specialities", "Budget eats", "Book a food tour"},
	}
}

type itineraryReply struct {
	Days []domain.ItineraryDay `json:"days"`
}

func (p *PlanningAssistant) itinerary(ctx context.Context, destination string, days int, sess domain.Session) PlanningReply {
	if days <= 0 {
		days = defaultItineraryDays
	}
	days = min(days, maxItineraryDays)

	prompt := fmt.Sprintf(`Task: itinerary
Draft a %d-day itinerary.
Destination: %s
Travel mode: %s
Budget: %s
Dietary needs: %s
Liked activities: %s

Reply with only a JSON object: {"days": [{"day": 1, "title": string, "activities": [string]}]}
`, days, destination, sess.Mode, orNotSpecified(sess.BudgetHint), orNotSpecified(sess.Dietary),
		orNotSpecified(strings.Join(sess.Preferences.LikedActivities, "; ")))

	accept := func(r *itineraryReply) bool {
		if len(r.Days) == 0 {
			return false
		}
		for i := range r.Days {
			if r.Days[i].Day == 0 {
				r.Days[i].Day = i + 1
			}
			if r.Days[i].Activities == nil {
				r.Days[i].Activities = []string{}
			}
		}
		return true
	}
	got, fellBack := nlg.JSON(ctx, p.guard, "itinerary", prompt, accept, itineraryReply{Days: skeletonItinerary(destination, days)})

	return PlanningReply{
		Message: fmt.Sprintf("Here is a %d-day plan for %s. Ask me to adjust any day.", len(got.Days), destination),
		Action:  domain.ActionItinerary,
		Itinerary: &domain.Itinerary{
			Destination:  destination,
			Days:         got.Days,
			FallbackUsed: fellBack,
		},
		Suggestions: []string{"Prepare for the trip", "Find restaurants", "Adjust the budget"},
	}
}

// skeletonItinerary is the deterministic outline used when generation fails.
func skeletonItinerary(destination string, days int) []domain.ItineraryDay {
	out := make([]domain.ItineraryDay, 0, days)
	for i := 1; i <= days; i++ {
		day := domain.ItineraryDay{Day: i}
		switch {
		case i == 1:
			day.Title = "Arrival in " + destination
			day.Activities = []string{"Check in and settle", "Walk the neighbourhood", "Dinner at a local restaurant"}
		case i == days:
			day.Title = "Last day in " + destination
			day.Activities = []string{"Souvenir shopping", "Revisit a favourite spot", "Departure"}
		default:
			day.Title = fmt.Sprintf("Exploring %s", destination)
			day.Activities = []string{"Morning sightseeing", "Local lunch", "Afternoon museum or park", "Evening free"}
		}
		out = append(out, day)
	}
	return out
}

func (p *PlanningAssistant) chat(ctx context.Context, message string, sess domain.Session) PlanningReply {
	prompt := fmt.Sprintf(`Task: chat
You are a friendly travel planning assistant. Reply briefly.
Travel mode: %s
Last destination discussed: %s
Message: %q
`, sess.Mode, orNotSpecified(sess.LastDestination), message)
	text, _ := p.guard.Text(ctx, "chat", prompt,
		"I can help you plan a trip, prepare for departure, assist while you travel and learn from your feedback afterwards. Where would you like to go?")
	return PlanningReply{
		Message:     text,
		Action:      domain.ActionChat,
		Suggestions: []string{"Plan a trip", "Pre-trip checklist", "Restaurant ideas"},
	}
}
