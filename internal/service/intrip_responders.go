package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/location"
)

var suggestionsByIntent = map[domain.IntentType][]string{
	domain.IntentEmergency:      {"Call emergency services", "Contact embassy", "Share location"},
	domain.IntentNavigation:     {"Show transit options", "Download offline map", "Share your ETA"},
	domain.IntentBookingChange:  {"Contact the provider", "Check cancellation policy", "Keep receipts"},
	domain.IntentRecommendation: {"Restaurants nearby", "Top attractions", "Local experiences"},
	domain.IntentTranslation:    {"Common phrases", "Emergency phrases", "Download offline translator"},
	domain.IntentWeather:        {"Hourly forecast", "Indoor alternatives", "What to wear"},
	domain.IntentSafety:         {"Safety tips", "Emergency contacts", "Share location"},
	domain.IntentGeneral:        {"Find nearby places", "Get directions", "Emergency help"},
}

var emergencyContacts = []domain.EmergencyContact{
	{Name: "International emergency number", Number: "112", Note: "Works from most mobile phones worldwide"},
	{Name: "Local police", Number: "112", Note: "Ask for the tourist police where available"},
	{Name: "Your embassy or consulate", Number: "See your travel documents", Note: "For lost passports and legal help"},
	{Name: "Travel insurance assistance", Number: "On your policy certificate", Note: "Call before paying large medical bills"},
}

var transportOptions = []string{
	"Public transit (metro, tram or bus)",
	"Licensed taxi from an official rank",
	"Ride-hailing app",
	"Walking with an offline map",
}

var navigationSafetyTips = []string{
	"Only use licensed taxis or booked rides",
	"Keep your phone charged and share your route",
	"Avoid unlit shortcuts at night",
}

var commonPhrases = []domain.Phrase{
	{English: "Hello", Usage: "Greeting"},
	{English: "Thank you", Usage: "Politeness"},
	{English: "How much is this?", Usage: "Shopping"},
	{English: "Where is ...?", Usage: "Directions"},
	{English: "I don't understand", Usage: "Clarifying"},
}

var emergencyPhrases = []domain.Phrase{
	{English: "Help!", Usage: "Emergency"},
	{English: "Call the police", Usage: "Emergency"},
	{English: "I need a doctor", Usage: "Medical"},
	{English: "I am allergic to ...", Usage: "Medical"},
}

// cannedReplies stand in for generated text when generation fails.
var cannedReplies = map[domain.IntentType]string{
	domain.IntentEmergency:      "If you are in danger, call 112 or the local emergency number now. Move to a safe, public place and contact your embassy if you need consular help.",
	domain.IntentNavigation:     "Check an offline map for your route. Public transit or a licensed taxi is usually the safest way to get around.",
	domain.IntentBookingChange:  "Contact your airline, hotel or booking platform directly and ask about change and cancellation options. Keep all receipts for insurance claims.",
	domain.IntentRecommendation: "Ask locals or your accommodation for their favourite spots nearby, and look for places busy with residents.",
	domain.IntentTranslation:    "Here are some useful phrases. A translation app with offline language packs helps when you have no signal.",
	domain.IntentWeather:        "Check a local forecast service for up-to-date conditions and keep a layer and an umbrella with you.",
	domain.IntentSafety:         "Stay aware of your surroundings, keep valuables out of sight and keep emergency numbers at hand.",
	domain.IntentGeneral:        "I'm here to help with your trip. Ask me about directions, places nearby, bookings, weather or safety.",
}

func inTripPrompt(req domain.InTripRequest, intent domain.Intent, where, instruction string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: intrip_%s\n", intent.Type)
	b.WriteString("You are a travel assistant helping someone who is on a trip right now.\n")
	fmt.Fprintf(&b, "Traveller location: %s\n", orUnknown(where))
	fmt.Fprintf(&b, "Travel mode: %s\n", req.Profile.Mode)
	for _, f := range []struct{ label, value string }{
		{"Dietary needs", req.Profile.Dietary},
		{"Medical conditions", req.Profile.MedicalConditions},
		{"Allergies", req.Profile.Allergies},
		{"Group size", req.Profile.GroupSize},
	} {
		if f.value != "" {
			fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
		}
	}
	fmt.Fprintf(&b, "Urgency: %s\n", intent.Urgency)
	fmt.Fprintf(&b, "Message: %q\n", req.Message)
	b.WriteString(instruction)
	b.WriteString("\nAnswer in at most five short sentences.\n")
	return b.String()
}

func (a *InTripAssistant) generate(ctx context.Context, req domain.InTripRequest, intent domain.Intent, where, instruction string) (string, bool) {
	purpose := "intrip_" + string(intent.Type)
	return a.guard.Text(ctx, purpose, inTripPrompt(req, intent, where, instruction), cannedReplies[intent.Type])
}

func (a *InTripAssistant) respondEmergency(ctx context.Context, req domain.InTripRequest, intent domain.Intent, where string) reply {
	text, fb := a.generate(ctx, req, intent, where, "Give calm, immediate step-by-step guidance for this emergency.")
	return reply{
		text:              text,
		fallbackUsed:      fb,
		emergencyContacts: slices.Clone(emergencyContacts),
		nearby:            a.nearby(ctx, where, location.KindHospital, location.KindPolice),
	}
}

func (a *InTripAssistant) respondNavigation(ctx context.Context, req domain.InTripRequest, intent domain.Intent, where string) reply {
	text, fb := a.generate(ctx, req, intent, where, "Explain how to get where they want to go and which transport to use.")
	return reply{
		text:         text,
		fallbackUsed: fb,
		nearby:       a.nearby(ctx, where, location.KindTransit),
		transport:    slices.Clone(transportOptions),
		safetyTips:   slices.Clone(navigationSafetyTips),
	}
}

func (a *InTripAssistant) respondBookingChange(ctx context.Context, req domain.InTripRequest, intent domain.Intent, where string) reply {
	text, fb := a.generate(ctx, req, intent, where, "Help them change or cancel their booking and explain what to ask the provider.")
	return reply{text: text, fallbackUsed: fb}
}

func (a *InTripAssistant) respondRecommendation(ctx context.Context, req domain.InTripRequest, intent domain.Intent, where string) reply {
	text, fb := a.generate(ctx, req, intent, where, "Recommend places to eat, see or do nearby that suit their profile.")
	return reply{
		text:         text,
		fallbackUsed: fb,
		nearby:       a.nearby(ctx, where, location.KindRestaurant, location.KindAttraction),
	}
}

func (a *InTripAssistant) respondTranslation(ctx context.Context, req domain.InTripRequest, intent domain.Intent, where string) reply {
	text, fb := a.generate(ctx, req, intent, where, "Translate what they need into the local language with a pronunciation hint.")
	return reply{
		text:         text,
		fallbackUsed: fb,
		phrases: &domain.PhraseBook{
			Common:    slices.Clone(commonPhrases),
			Emergency: slices.Clone(emergencyPhrases),
		},
	}
}

func (a *InTripAssistant) respondWeather(ctx context.Context, req domain.InTripRequest, intent domain.Intent, where string) reply {
	text, fb := a.generate(ctx, req, intent, where, "Describe the likely weather and how to plan the day around it.")
	return reply{text: text, fallbackUsed: fb}
}

func (a *InTripAssistant) respondSafety(ctx context.Context, req domain.InTripRequest, intent domain.Intent, where string) reply {
	text, fb := a.generate(ctx, req, intent, where, "Give practical safety advice for this place and situation.")
	return reply{
		text:              text,
		fallbackUsed:      fb,
		emergencyContacts: slices.Clone(emergencyContacts),
		safetyTips:        safetyTipsFor(where, req.Profile.Mode),
	}
}

func (a *InTripAssistant) respondGeneral(ctx context.Context, req domain.InTripRequest, intent domain.Intent, where string) reply {
	text, fb := a.generate(ctx, req, intent, where, "Answer helpfully and briefly.")
	return reply{text: text, fallbackUsed: fb}
}

// safetyTipsFor returns generic tips worded for the given place.
func safetyTipsFor(where string, mode domain.Mode) []string {
	place := orUnknown(where)
	if place == "Unknown" {
		place = "the area"
	}
	tips := []string{
		fmt.Sprintf("Keep valuables out of sight in busy parts of %s", place),
		fmt.Sprintf("Note the address of your accommodation in %s in the local language", place),
		fmt.Sprintf("Ask your accommodation which parts of %s to avoid after dark", place),
	}
	if mode == domain.ModeSoloFemale {
		tips = append(tips, "Share your live location with someone you trust")
	}
	return tips
}
