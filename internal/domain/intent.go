package domain

// IntentType is the fine-grained classification of an in-trip message.
type IntentType string

const (
	IntentEmergency      IntentType = "emergency"
	IntentNavigation     IntentType = "navigation"
	IntentBookingChange  IntentType = "booking_change"
	IntentRecommendation IntentType = "recommendation"
	IntentTranslation    IntentType = "translation"
	IntentWeather        IntentType = "weather"
	IntentSafety         IntentType = "safety"
	IntentGeneral        IntentType = "general"
)

// IntentTypes lists every intent a classifier may return.
var IntentTypes = []IntentType{
	IntentEmergency, IntentNavigation, IntentBookingChange, IntentRecommendation,
	IntentTranslation, IntentWeather, IntentSafety, IntentGeneral,
}

// Valid reports whether t is one of the eight known intents.
func (t IntentType) Valid() bool {
	for _, known := range IntentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Urgency grades how quickly an in-trip request needs attention.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// Valid reports whether u is high, medium or low.
func (u Urgency) Valid() bool {
	return u == UrgencyHigh || u == UrgencyMedium || u == UrgencyLow
}

// Intent is the structured descriptor produced by intent classification.
type Intent struct {
	Type              IntentType `json:"type"`
	Urgency           Urgency    `json:"urgency"`
	LocationMentioned *string    `json:"location_mentioned"`
	ActionNeeded      string     `json:"action_needed"`
}

// DefaultIntent is returned whenever classification output cannot be used.
func DefaultIntent() Intent {
	return Intent{
		Type:         IntentGeneral,
		Urgency:      UrgencyMedium,
		ActionNeeded: "general assistance",
	}
}
