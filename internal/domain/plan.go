package domain

import "time"

// Category names one of the five informational areas of a pre-trip plan.
type Category string

const (
	CategoryVisa     Category = "visa"
	CategoryMedical  Category = "medical"
	CategoryAlerts   Category = "alerts"
	CategoryWeather  Category = "weather"
	CategoryCultural Category = "cultural"
)

// Categories lists the pre-trip categories in presentation order.
var Categories = []Category{CategoryVisa, CategoryMedical, CategoryAlerts, CategoryWeather, CategoryCultural}

// CategoryMeta is embedded in every category result. FallbackUsed is true
// when the content is the deterministic substitute rather than gateway output.
type CategoryMeta struct {
	Summary      string `json:"summary"`
	FallbackUsed bool   `json:"fallback_used"`
}

// VisaInfo describes entry requirements for the destination.
type VisaInfo struct {
	CategoryMeta
	Required       bool     `json:"required"`
	VisaType       string   `json:"visa_type,omitempty"`
	ProcessingTime string   `json:"processing_time,omitempty"`
	Fee            string   `json:"fee,omitempty"`
	Documents      []string `json:"documents,omitempty"`
}

// MedicalInfo describes vaccinations and health risks.
type MedicalInfo struct {
	CategoryMeta
	RequiredVaccinations    []string `json:"required_vaccinations,omitempty"`
	RecommendedVaccinations []string `json:"recommended_vaccinations,omitempty"`
	HealthRisks             []string `json:"health_risks,omitempty"`
}

// SafetyAlerts describes advisories in force for the destination.
type SafetyAlerts struct {
	CategoryMeta
	Level  string   `json:"level,omitempty"` // low, moderate, high
	Alerts []string `json:"alerts,omitempty"`
}

// WeatherInfo describes expected conditions around the departure date.
type WeatherInfo struct {
	CategoryMeta
	Conditions       string `json:"conditions,omitempty"`
	TemperatureRange string `json:"temperature_range,omitempty"`
}

// CulturalInfo describes customs and etiquette.
type CulturalInfo struct {
	CategoryMeta
	Customs   []string `json:"customs,omitempty"`
	Etiquette []string `json:"etiquette,omitempty"`
	DressCode string   `json:"dress_code,omitempty"`
}

// PreTripRequest carries everything the pre-trip planner needs besides the
// traveller profile.
type PreTripRequest struct {
	Destination   string    `json:"destination"`
	Origin        string    `json:"origin"`
	DepartureDate time.Time `json:"departure_date"`
	Nationality   string    `json:"nationality"`
	GroupSize     int       `json:"group_size"`
	Mode          Mode      `json:"mode"`
}

// DocumentChecklist lists what to carry.
type DocumentChecklist struct {
	Required            []string `json:"required"`
	Recommended         []string `json:"recommended"`
	DestinationSpecific []string `json:"destination_specific"`
}

// InsuranceRecommendation is the coverage suggested for a travel mode.
type InsuranceRecommendation struct {
	Coverage   []string `json:"coverage"`
	Extended   []string `json:"extended,omitempty"`
	MinMedical string   `json:"min_medical_coverage"`
	Note       string   `json:"note,omitempty"`
}

// TimelineBucket groups preparation tasks due a number of weeks before departure.
type TimelineBucket struct {
	WeeksBefore int       `json:"weeks_before"`
	DueDate     time.Time `json:"due_date"`
	Tasks       []string  `json:"tasks"`
}

// PreTripPlan is the full pre-departure plan. Each category is independently
// either gateway-derived or a fallback; the remaining fields are deterministic.
type PreTripPlan struct {
	Destination     string                  `json:"destination"`
	Origin          string                  `json:"origin"`
	DepartureDate   time.Time               `json:"departure_date"`
	Mode            Mode                    `json:"mode"`
	Visa            VisaInfo                `json:"visa"`
	Medical         MedicalInfo             `json:"medical"`
	Alerts          SafetyAlerts            `json:"alerts"`
	Weather         WeatherInfo             `json:"weather"`
	Cultural        CulturalInfo            `json:"cultural"`
	PackingList     []string                `json:"packing_list"`
	Documents       DocumentChecklist       `json:"documents"`
	Insurance       InsuranceRecommendation `json:"insurance"`
	CostEstimate    string                  `json:"cost_estimate"`
	Recommendations []string                `json:"recommendations"`
	Timeline        []TimelineBucket        `json:"timeline"`

	// Minimal is set when the plan could not be assembled and only the
	// one-line category fallbacks are populated.
	Minimal bool `json:"minimal,omitempty"`
}

// Summaries returns the one-line summary of each category, keyed by category.
func (p PreTripPlan) Summaries() map[Category]string {
	return map[Category]string{
		CategoryVisa:     p.Visa.Summary,
		CategoryMedical:  p.Medical.Summary,
		CategoryAlerts:   p.Alerts.Summary,
		CategoryWeather:  p.Weather.Summary,
		CategoryCultural: p.Cultural.Summary,
	}
}

// FallbackCount reports how many categories are fallback content.
func (p PreTripPlan) FallbackCount() int {
	n := 0
	for _, used := range []bool{
		p.Visa.FallbackUsed, p.Medical.FallbackUsed, p.Alerts.FallbackUsed,
		p.Weather.FallbackUsed, p.Cultural.FallbackUsed,
	} {
		if used {
			n++
		}
	}
	return n
}
