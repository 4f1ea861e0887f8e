package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/nlg"
)

// IntentClassifier turns an in-trip message into a structured Intent using
// one guarded generation call.
type IntentClassifier struct {
	guard *nlg.Guard
}

// NewIntentClassifier constructs an IntentClassifier.
func NewIntentClassifier(guard *nlg.Guard) *IntentClassifier {
	return &IntentClassifier{guard: guard}
}

// Classify never fails: anything other than a well-formed answer naming one
// of the eight intents and a valid urgency yields domain.DefaultIntent.
func (c *IntentClassifier) Classify(ctx context.Context, message, location string) domain.Intent {
	intent, _ := nlg.JSON(ctx, c.guard, "intent", intentPrompt(message, location), acceptIntent, domain.DefaultIntent())
	return intent
}

func acceptIntent(in *domain.Intent) bool {
	in.Type = domain.IntentType(strings.ToLower(strings.TrimSpace(string(in.Type))))
	in.Urgency = domain.Urgency(strings.ToLower(strings.TrimSpace(string(in.Urgency))))
	if !in.Type.Valid() || !in.Urgency.Valid() {
		return false
	}
	if in.LocationMentioned != nil {
		loc := strings.TrimSpace(*in.LocationMentioned)
		if loc == "" || strings.EqualFold(loc, "null") || strings.EqualFold(loc, "none") {
			in.LocationMentioned = nil
		} else {
			in.LocationMentioned = &loc
		}
	}
	in.ActionNeeded = strings.TrimSpace(in.ActionNeeded)
	if in.ActionNeeded == "" {
		in.ActionNeeded = domain.DefaultIntent().ActionNeeded
	}
	return true
}

func intentPrompt(message, location string) string {
	types := make([]string, len(domain.IntentTypes))
	for i, t := range domain.IntentTypes {
		types[i] = string(t)
	}
	return fmt.Sprintf(`Task: intent
You classify messages from a traveller who is on a trip.
Traveller location: %s
Message: %q

Reply with only a JSON object of this shape:
{"type": one of [%s], "urgency": "high" | "medium" | "low", "location_mentioned": string or null, "action_needed": short description}
`, orUnknown(location), message, strings.Join(types, ", "))
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}
