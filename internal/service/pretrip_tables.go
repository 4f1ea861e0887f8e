package service

import (
	"strings"
	"time"

	"github.com/pkordes/wayfarer/internal/domain"
)

var basePacking = []string{
	"Passport and copies of travel documents",
	"Phone and charger",
	"Universal power adapter",
	"Travel insurance details",
	"Prescription medication",
	"Basic first-aid kit",
	"Reusable water bottle",
	"Comfortable walking shoes",
}

var modePacking = map[domain.Mode][]string{
	domain.ModeFamily: {
		"Snacks for the journey", "Children's medication", "Entertainment for kids",
		"Wet wipes", "Copies of children's birth certificates",
	},
	domain.ModeFriends: {
		"Shared power bank", "Card games", "Group expense app set up",
	},
	domain.ModeSolo: {
		"Portable power bank", "Padlock for hostel lockers", "Offline maps",
	},
	domain.ModeSoloFemale: {
		"Personal safety alarm", "Door stop alarm", "Modest clothing layers",
		"Portable power bank", "Offline maps",
	},
	domain.ModePets: {
		"Pet food and bowls", "Leash and harness", "Pet vaccination records",
		"Waste bags", "Pet carrier",
	},
}

// destinationCategories infer a climate category from a destination name.
// Matching is substring based and case-insensitive.
var destinationCategories = []struct {
	name     string
	keywords []string
	items    []string
}{
	{
		name:     "tropical",
		keywords: []string{"bali", "thailand", "bangkok", "phuket", "caribbean", "hawaii", "maldives", "fiji", "cancun", "jamaica", "singapore", "philippines", "vietnam", "costa rica"},
		items:    []string{"Sunscreen SPF 50", "Insect repellent", "Light breathable clothing", "Swimwear", "Sun hat"},
	},
	{
		name:     "cold",
		keywords: []string{"iceland", "norway", "finland", "lapland", "alaska", "antarctica", "greenland", "siberia", "canada", "switzerland", "tromso"},
		items:    []string{"Thermal base layers", "Insulated jacket", "Gloves and beanie", "Waterproof boots", "Lip balm"},
	},
	{
		name:     "urban",
		keywords: []string{"tokyo", "new york", "london", "paris", "berlin", "rome", "barcelona", "seoul", "hong kong", "dubai", "istanbul", "amsterdam", "lisbon"},
		items:    []string{"Transit card or app", "Day backpack", "Smart-casual outfit"},
	},
}

// Seasons follow the northern hemisphere calendar regardless of destination.
var seasonalPacking = map[string][]string{
	"winter": {"Warm coat", "Scarf", "Moisturiser"},
	"spring": {"Light rain jacket", "Layers for variable weather"},
	"summer": {"Sunglasses", "Sunscreen", "Light clothing"},
	"autumn": {"Medium-weight jacket", "Umbrella"},
}

func season(month time.Month) string {
	switch month {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "autumn"
	}
}

func destinationCategory(destination string) (string, []string) {
	d := strings.ToLower(destination)
	for _, c := range destinationCategories {
		for _, k := range c.keywords {
			if strings.Contains(d, k) {
				return c.name, c.items
			}
		}
	}
	return "", nil
}

var baseCoverage = []string{
	"Emergency medical expenses",
	"Trip cancellation and interruption",
	"Lost or delayed baggage",
	"24/7 emergency assistance",
}

var insuranceByMode = map[domain.Mode]domain.InsuranceRecommendation{
	domain.ModeSoloFemale: {
		Extended:   []string{"Personal security and assistance hotline", "Emergency evacuation", "Personal liability"},
		MinMedical: "$250,000",
		Note:       "Choose a policy with a 24/7 assistance line you can reach by message.",
	},
	domain.ModeFamily: {
		Extended:   []string{"Cover for children at no extra cost", "Family emergency return", "Childcare if a parent is hospitalised"},
		MinMedical: "$500,000",
		Note:       "Check that every traveller, including infants, is named on the policy.",
	},
	domain.ModePets: {
		Extended:   []string{"Pet emergency veterinary care", "Pet boarding if you are hospitalised", "Pet return expenses"},
		MinMedical: "$150,000",
		Note:       "Standard travel insurance rarely covers pets; add a pet travel rider.",
	},
}

var defaultInsurance = domain.InsuranceRecommendation{
	MinMedical: "$100,000",
}

var timelineTasks = []struct {
	weeks int
	tasks []string
}{
	{8, []string{"Check passport validity (6+ months)", "Research visa requirements", "Book flights and accommodation"}},
	{6, []string{"Apply for visa if required", "Book travel health appointment", "Buy travel insurance"}},
	{4, []string{"Get vaccinations", "Arrange international payment cards", "Plan local transport"}},
	{2, []string{"Confirm bookings", "Notify your bank of travel dates", "Register with your embassy"}},
	{1, []string{"Pack using the packing list", "Print or download documents", "Check the latest travel advisory and forecast"}},
}

var requiredDocuments = []string{
	"Valid passport (6+ months remaining)",
	"Visa or entry authorisation, if required",
	"Return or onward ticket",
	"Travel insurance certificate",
}

var recommendedDocuments = []string{
	"Copies of passport and visa (paper and cloud)",
	"Accommodation confirmations",
	"Emergency contact list",
	"International driving permit if you plan to drive",
	"Vaccination certificates",
}
