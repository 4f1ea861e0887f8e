package domain

import "github.com/google/uuid"

// Action tags the kind of content an Envelope carries so clients know how
// to render it.
type Action string

const (
	ActionChat        Action = "chat"
	ActionItinerary   Action = "itinerary"
	ActionPreTrip     Action = "pre-trip"
	ActionInTrip      Action = "in-trip"
	ActionPostTrip    Action = "post-trip"
	ActionRestaurants Action = "restaurants"
)

// Place is one entry returned by a location lookup.
type Place struct {
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	Address    string  `json:"address,omitempty"`
	DistanceKm float64 `json:"distance_km,omitempty"`
}

// EmergencyContact is a fixed emergency number attached to emergency replies.
type EmergencyContact struct {
	Name   string `json:"name"`
	Number string `json:"number"`
	Note   string `json:"note,omitempty"`
}

// Phrase is a translated phrase suggestion.
type Phrase struct {
	English string `json:"english"`
	Usage   string `json:"usage"`
}

// PhraseBook groups phrases attached to translation replies.
type PhraseBook struct {
	Common    []Phrase `json:"common"`
	Emergency []Phrase `json:"emergency"`
}

// InTripRequest is one message sent while travelling.
type InTripRequest struct {
	TripID   string      `json:"trip_id"`
	UserID   string      `json:"user_id"`
	Message  string      `json:"message"`
	Location string      `json:"location"`
	Profile  UserProfile `json:"profile"`
}

// InTripResult is the in-trip reply. Success is false only when the outer
// guard caught an unexpected failure; Fallback then holds the reply text.
type InTripResult struct {
	Success           bool               `json:"success"`
	TripID            string             `json:"trip_id"`
	Intent            Intent             `json:"intent"`
	Response          string             `json:"response"`
	Suggestions       []string           `json:"suggestions"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts"`
	NearbyServices    []Place            `json:"nearby_services"`
	TransportOptions  []string           `json:"transport_options,omitempty"`
	SafetyTips        []string           `json:"safety_tips,omitempty"`
	Phrases           *PhraseBook        `json:"phrases,omitempty"`
	FallbackUsed      bool               `json:"fallback_used"`
	MessageCount      int                `json:"message_count"`
	Error             string             `json:"error,omitempty"`
	Fallback          string             `json:"fallback,omitempty"`
}

// PostTripRequest carries a finished trip and the traveller's feedback.
type PostTripRequest struct {
	UserID   string   `json:"user_id"`
	TripID   string   `json:"trip_id"`
	Trip     TripData `json:"trip"`
	Feedback string   `json:"feedback"`
	Rating   *int     `json:"rating,omitempty"` // explicit 1-10 rating, overrides the analysed one
}

// TripSummary is the narrative and extracted highlights of a trip.
type TripSummary struct {
	Overview       string   `json:"overview"`
	Highlights     []string `json:"highlights"`
	Budget         string   `json:"budget"`
	Memories       []string `json:"memories"`
	LessonsLearned []string `json:"lessons_learned"`
	FallbackUsed   bool     `json:"fallback_used"`
}

// FutureRecommendations pairs a generated narrative with labelled
// placeholder categories. The categories are not computed similarity results.
type FutureRecommendations struct {
	Narrative           string `json:"narrative"`
	SimilarDestinations string `json:"similar_destinations"`
	NewExperiences      string `json:"new_experiences"`
	BudgetOptions       string `json:"budget_options"`
	Timing              string `json:"timing"`
	FallbackUsed        bool   `json:"fallback_used"`
}

// PostTripResult is the outcome of post-trip processing.
type PostTripResult struct {
	Success         bool                  `json:"success"`
	TripID          string                `json:"trip_id"`
	RecordID        uuid.UUID             `json:"record_id"`
	Analysis        FeedbackAnalysis      `json:"analysis"`
	Summary         TripSummary           `json:"summary"`
	Recommendations FutureRecommendations `json:"recommendations"`
	Insights        []string              `json:"insights"`
	Improvements    []string              `json:"improvements"`
	Preferences     PreferenceProfile     `json:"preferences"`
	Fallback        string                `json:"fallback,omitempty"`
}

// ItineraryDay is one day of a skeleton itinerary.
type ItineraryDay struct {
	Day        int      `json:"day"`
	Title      string   `json:"title"`
	Activities []string `json:"activities"`
}

// Itinerary is the day-by-day outline returned for planning requests.
type Itinerary struct {
	Destination  string         `json:"destination"`
	Days         []ItineraryDay `json:"days"`
	FallbackUsed bool           `json:"fallback_used"`
}

// Envelope is the single response shape returned for every inbound message.
type Envelope struct {
	Message     string          `json:"message"`
	Mode        Mode            `json:"mode"`
	Phase       Phase           `json:"phase"`
	Suggestions []string        `json:"suggestions"`
	Action      Action          `json:"action"`
	Itinerary   *Itinerary      `json:"itinerary,omitempty"`
	PreTrip     *PreTripPlan    `json:"pre_trip_data,omitempty"`
	InTrip      *InTripResult   `json:"in_trip_data,omitempty"`
	PostTrip    *PostTripResult `json:"post_trip_data,omitempty"`
	TripID      string          `json:"trip_id,omitempty"`
}

// UserTravelProfile is the learned profile plus trip history of one user.
type UserTravelProfile struct {
	UserID      string            `json:"user_id"`
	Mode        Mode              `json:"mode"`
	Preferences PreferenceProfile `json:"preferences"`
	TripHistory []string          `json:"trip_history"`
	Records     []TripRecord      `json:"records"`
	Total       int64             `json:"total_records"`
}
