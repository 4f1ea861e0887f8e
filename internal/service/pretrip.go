package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/nlg"
)

// PreTripPlanner builds the pre-departure plan. The five informational
// categories are fetched concurrently and fail independently; everything
// else in the plan is computed locally.
type PreTripPlanner struct {
	guard  *nlg.Guard
	logger *slog.Logger
	now    func() time.Time

	// beforeAssemble runs between the category fan-out and plan assembly.
	beforeAssemble func()
}

// NewPreTripPlanner constructs a PreTripPlanner.
func NewPreTripPlanner(guard *nlg.Guard, logger *slog.Logger) *PreTripPlanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreTripPlanner{guard: guard, logger: logger, now: time.Now}
}

// Plan never fails. Missing request fields are replaced by placeholders and
// an assembly failure yields a minimal plan of one-line category fallbacks.
func (p *PreTripPlanner) Plan(ctx context.Context, req domain.PreTripRequest, profile domain.UserProfile) (plan domain.PreTripPlan) {
	req = p.normalize(req, profile)

	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "pre-trip plan assembly failed",
				"destination", req.Destination,
				"panic", fmt.Sprint(r),
			)
			plan = minimalPlan(req)
		}
	}()

	var (
		g        errgroup.Group
		visa     domain.VisaInfo
		medical  domain.MedicalInfo
		alerts   domain.SafetyAlerts
		weather  domain.WeatherInfo
		cultural domain.CulturalInfo
	)
	brief := tripBrief(req, profile)

	g.Go(p.isolate(ctx, domain.CategoryVisa, func() {
		visa = fetchCategory(ctx, p.guard, domain.CategoryVisa, visaPrompt(brief), fallbackVisa(req),
			func(v *domain.VisaInfo) *domain.CategoryMeta { return &v.CategoryMeta })
	}, func() { visa = fallbackVisa(req) }))

	g.Go(p.isolate(ctx, domain.CategoryMedical, func() {
		medical = fetchCategory(ctx, p.guard, domain.CategoryMedical, medicalPrompt(brief), fallbackMedical(),
			func(v *domain.MedicalInfo) *domain.CategoryMeta { return &v.CategoryMeta })
	}, func() { medical = fallbackMedical() }))

	g.Go(p.isolate(ctx, domain.CategoryAlerts, func() {
		alerts = fetchCategory(ctx, p.guard, domain.CategoryAlerts, alertsPrompt(brief), fallbackAlerts(req),
			func(v *domain.SafetyAlerts) *domain.CategoryMeta { return &v.CategoryMeta })
	}, func() { alerts = fallbackAlerts(req) }))

	g.Go(p.isolate(ctx, domain.CategoryWeather, func() {
		weather = fetchCategory(ctx, p.guard, domain.CategoryWeather, weatherPrompt(brief), fallbackWeather(req),
			func(v *domain.WeatherInfo) *domain.CategoryMeta { return &v.CategoryMeta })
	}, func() { weather = fallbackWeather(req) }))

	g.Go(p.isolate(ctx, domain.CategoryCultural, func() {
		cultural = fetchCategory(ctx, p.guard, domain.CategoryCultural, culturalPrompt(brief), fallbackCultural(req),
			func(v *domain.CulturalInfo) *domain.CategoryMeta { return &v.CategoryMeta })
	}, func() { cultural = fallbackCultural(req) }))

	_ = g.Wait() // tasks always return nil

	if p.beforeAssemble != nil {
		p.beforeAssemble()
	}

	plan = domain.PreTripPlan{
		Destination:   req.Destination,
		Origin:        req.Origin,
		DepartureDate: req.DepartureDate,
		Mode:          req.Mode,
		Visa:          visa,
		Medical:       medical,
		Alerts:        alerts,
		Weather:       weather,
		Cultural:      cultural,
	}
	plan.PackingList = packingList(req, profile)
	plan.Documents = documentChecklist(req, visa)
	plan.Insurance = insuranceFor(req.Mode)
	plan.CostEstimate = costEstimate(req, visa)
	plan.Recommendations = recommendations(plan, profile)
	plan.Timeline = timeline(req.DepartureDate)

	p.logger.InfoContext(ctx, "pre-trip plan built",
		"destination", req.Destination,
		"fallback_categories", plan.FallbackCount(),
	)
	return plan
}

// isolate wraps one category task so a panic inside it only replaces that
// category with its fallback. The task always returns nil.
func (p *PreTripPlanner) isolate(ctx context.Context, c domain.Category, run, fallback func()) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				p.logger.ErrorContext(ctx, "pre-trip category failed",
					"category", string(c),
					"panic", fmt.Sprint(r),
				)
				fallback()
			}
		}()
		run()
		return nil
	}
}

// fetchCategory runs one guarded JSON request. A result without a summary
// is rejected, and the FallbackUsed flag records which value was kept.
func fetchCategory[T any](ctx context.Context, g *nlg.Guard, c domain.Category, prompt string, fallback T, meta func(*T) *domain.CategoryMeta) T {
	accept := func(v *T) bool {
		m := meta(v)
		m.Summary = strings.TrimSpace(m.Summary)
		return m.Summary != ""
	}
	v, fellBack := nlg.JSON(ctx, g, string(c), prompt, accept, fallback)
	meta(&v).FallbackUsed = fellBack
	return v
}

func (p *PreTripPlanner) normalize(req domain.PreTripRequest, profile domain.UserProfile) domain.PreTripRequest {
	req.Destination = orUnknown(strings.TrimSpace(req.Destination))
	req.Origin = orNotSpecified(strings.TrimSpace(req.Origin))
	if strings.TrimSpace(req.Nationality) == "" {
		req.Nationality = profile.Nationality
	}
	req.Nationality = orNotSpecified(req.Nationality)
	if req.DepartureDate.IsZero() {
		y, m, d := p.now().AddDate(0, 0, 30).Date()
		req.DepartureDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	if req.GroupSize <= 0 {
		req.GroupSize, _ = strconv.Atoi(strings.TrimSpace(profile.GroupSize))
	}
	if req.GroupSize <= 0 {
		req.GroupSize = 1
	}
	if req.Mode == "" {
		req.Mode = profile.Mode
	}
	if req.Mode == "" {
		req.Mode = domain.DefaultMode
	}
	return req
}

func tripBrief(req domain.PreTripRequest, profile domain.UserProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Destination: %s\n", req.Destination)
	fmt.Fprintf(&b, "Travelling from: %s\n", req.Origin)
	fmt.Fprintf(&b, "Departure date: %s\n", req.DepartureDate.Format(time.DateOnly))
	fmt.Fprintf(&b, "Nationality: %s\n", req.Nationality)
	fmt.Fprintf(&b, "Group size: %d\n", req.GroupSize)
	fmt.Fprintf(&b, "Travel mode: %s\n", req.Mode)
	for _, f := range []struct{ label, value string }{
		{"Age", profile.Age},
		{"Gender", profile.Gender},
		{"Medical conditions", profile.MedicalConditions},
		{"Allergies", profile.Allergies},
		{"Dietary needs", profile.Dietary},
	} {
		if f.value != "" {
			fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
		}
	}
	return b.String()
}

const categoryReplyRules = "Reply with only a JSON object. Always include a one-sentence \"summary\".\n"

func visaPrompt(brief string) string {
	return "Task: visa\nDescribe the entry and visa requirements for this traveller.\n" + brief + categoryReplyRules +
		`Shape: {"summary": string, "required": bool, "visa_type": string, "processing_time": string, "fee": string, "documents": [string]}` + "\n"
}

func medicalPrompt(brief string) string {
	return "Task: medical\nList vaccinations and health risks for this trip.\n" + brief + categoryReplyRules +
		`Shape: {"summary": string, "required_vaccinations": [string], "recommended_vaccinations": [string], "health_risks": [string]}` + "\n"
}

func alertsPrompt(brief string) string {
	return "Task: alerts\nSummarise current safety advisories for the destination.\n" + brief + categoryReplyRules +
		`Shape: {"summary": string, "level": "low" | "moderate" | "high", "alerts": [string]}` + "\n"
}

func weatherPrompt(brief string) string {
	return "Task: weather\nDescribe the typical weather at the destination around the departure date.\n" + brief + categoryReplyRules +
		`Shape: {"summary": string, "conditions": string, "temperature_range": string}` + "\n"
}

func culturalPrompt(brief string) string {
	return "Task: cultural\nDescribe customs, etiquette and dress code a visitor should know.\n" + brief + categoryReplyRules +
		`Shape: {"summary": string, "customs": [string], "etiquette": [string], "dress_code": string}` + "\n"
}

func fallbackVisa(req domain.PreTripRequest) domain.VisaInfo {
	return domain.VisaInfo{
		CategoryMeta: domain.CategoryMeta{
			Summary:      fmt.Sprintf("Check the official embassy or consulate website of %s for current entry requirements.", req.Destination),
			FallbackUsed: true,
		},
		ProcessingTime: "Varies",
	}
}

func fallbackMedical() domain.MedicalInfo {
	return domain.MedicalInfo{
		CategoryMeta: domain.CategoryMeta{
			Summary:      "Consult a travel health clinic 4-6 weeks before departure about vaccinations and health risks.",
			FallbackUsed: true,
		},
		RecommendedVaccinations: []string{"Routine vaccinations up to date"},
	}
}

func fallbackAlerts(req domain.PreTripRequest) domain.SafetyAlerts {
	return domain.SafetyAlerts{
		CategoryMeta: domain.CategoryMeta{
			Summary:      fmt.Sprintf("Review your government's official travel advisory for %s before you go.", req.Destination),
			FallbackUsed: true,
		},
	}
}

func fallbackWeather(req domain.PreTripRequest) domain.WeatherInfo {
	return domain.WeatherInfo{
		CategoryMeta: domain.CategoryMeta{
			Summary:      fmt.Sprintf("Check a reliable forecast for %s in the week before %s.", req.Destination, req.DepartureDate.Format("2 January")),
			FallbackUsed: true,
		},
	}
}

func fallbackCultural(req domain.PreTripRequest) domain.CulturalInfo {
	return domain.CulturalInfo{
		CategoryMeta: domain.CategoryMeta{
			Summary:      fmt.Sprintf("Read up on local customs and etiquette in %s and learn a few basic phrases.", req.Destination),
			FallbackUsed: true,
		},
	}
}

func minimalPlan(req domain.PreTripRequest) domain.PreTripPlan {
	return domain.PreTripPlan{
		Destination:     req.Destination,
		Origin:          req.Origin,
		DepartureDate:   req.DepartureDate,
		Mode:            req.Mode,
		Visa:            domain.VisaInfo{CategoryMeta: domain.CategoryMeta{Summary: "Check the embassy website for visa requirements.", FallbackUsed: true}},
		Medical:         domain.MedicalInfo{CategoryMeta: domain.CategoryMeta{Summary: "Consult a travel health clinic about vaccinations.", FallbackUsed: true}},
		Alerts:          domain.SafetyAlerts{CategoryMeta: domain.CategoryMeta{Summary: "Check your government's travel advisory.", FallbackUsed: true}},
		Weather:         domain.WeatherInfo{CategoryMeta: domain.CategoryMeta{Summary: "Check the weather forecast before you pack.", FallbackUsed: true}},
		Cultural:        domain.CulturalInfo{CategoryMeta: domain.CategoryMeta{Summary: "Learn about local customs before you arrive.", FallbackUsed: true}},
		PackingList:     []string{},
		Documents:       domain.DocumentChecklist{Required: []string{}, Recommended: []string{}, DestinationSpecific: []string{}},
		Insurance:       domain.InsuranceRecommendation{Coverage: []string{}},
		Recommendations: []string{},
		Timeline:        []domain.TimelineBucket{},
		Minimal:         true,
	}
}

// packingList is base ∪ mode ∪ destination category ∪ season, in that order,
// without case-insensitive duplicates.
func packingList(req domain.PreTripRequest, profile domain.UserProfile) []string {
	list := make([]string, 0, 24)
	add := func(items ...string) {
		for _, it := range items {
			if !slices.ContainsFunc(list, func(s string) bool { return strings.EqualFold(s, it) }) {
				list = append(list, it)
			}
		}
	}
	add(basePacking...)
	add(modePacking[req.Mode]...)
	if _, items := destinationCategory(req.Destination); items != nil {
		add(items...)
	}
	add(seasonalPacking[season(req.DepartureDate.Month())]...)
	if profile.Allergies != "" {
		add("Allergy medication and a translated allergy card")
	}
	if profile.MedicalConditions != "" {
		add("Doctor's letter describing your condition and medication")
	}
	return list
}

func documentChecklist(req domain.PreTripRequest, visa domain.VisaInfo) domain.DocumentChecklist {
	specific := []string{fmt.Sprintf("Entry requirements for %s confirmed with the embassy", req.Destination)}
	if visa.Required {
		specific = append(specific, "Visa approval letter or e-visa printout")
		specific = append(specific, visa.Documents...)
	}
	if req.Mode == domain.ModePets {
		specific = append(specific, "Pet passport or health certificate")
	}
	if req.Mode == domain.ModeFamily {
		specific = append(specific, "Parental consent letter if a parent is not travelling")
	}
	return domain.DocumentChecklist{
		Required:            slices.Clone(requiredDocuments),
		Recommended:         slices.Clone(recommendedDocuments),
		DestinationSpecific: specific,
	}
}

func insuranceFor(mode domain.Mode) domain.InsuranceRecommendation {
	rec, ok := insuranceByMode[mode]
	if !ok {
		rec = defaultInsurance
	}
	rec.Coverage = slices.Clone(baseCoverage)
	rec.Extended = slices.Clone(rec.Extended)
	if rec.Note == "" {
		rec.Note = "Buy cover before paying for non-refundable bookings."
	}
	return rec
}

func costEstimate(req domain.PreTripRequest, visa domain.VisaInfo) string {
	visaFee := "not specified"
	switch {
	case visa.Fee != "":
		visaFee = visa.Fee
	case !visa.FallbackUsed && !visa.Required:
		visaFee = "none expected"
	}
	return fmt.Sprintf(
		"Approximate preparation costs for %d traveller(s): visa fee %s; travel insurance $50-$200 per person; document processing $20-$100. This is an estimate, not a total.",
		req.GroupSize, visaFee,
	)
}

func recommendations(plan domain.PreTripPlan, profile domain.UserProfile) []string {
	recs := []string{}
	if plan.Visa.Required {
		wait := plan.Visa.ProcessingTime
		if wait == "" {
			wait = "several weeks"
		}
		recs = append(recs, fmt.Sprintf("Apply for your visa early; processing can take %s.", wait))
	}
	if len(plan.Medical.RequiredVaccinations) > 0 {
		recs = append(recs, "Schedule required vaccinations: "+strings.Join(plan.Medical.RequiredVaccinations, ", ")+".")
	}
	switch strings.ToLower(plan.Alerts.Level) {
	case "high":
		recs = append(recs, "A high safety alert is in force: register with your embassy and reconsider non-essential travel.")
	case "moderate":
		recs = append(recs, "Stay alert and keep up with local news during your stay.")
	}
	if profile.MedicalConditions != "" {
		recs = append(recs, "Carry enough medication for the whole trip plus a few extra days.")
	}
	if profile.Allergies != "" {
		recs = append(recs, "Learn how to explain your allergies in the local language.")
	}
	switch plan.Mode {
	case domain.ModeSoloFemale:
		recs = append(recs, "Share your itinerary with someone at home and check in daily.")
	case domain.ModeFamily:
		recs = append(recs, "Book family rooms and child seats in advance.")
	case domain.ModePets:
		recs = append(recs, "Check pet import rules and airline pet policies now; some require months of notice.")
	}
	if plan.FallbackCount() > 0 {
		recs = append(recs, "Some details could not be looked up; confirm them with official sources.")
	}
	recs = append(recs, "Buy travel insurance before departure.")
	return recs
}

func timeline(departure time.Time) []domain.TimelineBucket {
	out := make([]domain.TimelineBucket, 0, len(timelineTasks))
	for _, t := range timelineTasks {
		out = append(out, domain.TimelineBucket{
			WeeksBefore: t.weeks,
			DueDate:     departure.AddDate(0, 0, -7*t.weeks),
			Tasks:       slices.Clone(t.tasks),
		})
	}
	return out
}
