package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/wayfarer/internal/domain"
)

// TripDetails is what could be read out of a single free-text message.
// Zero values mean "not mentioned".
type TripDetails struct {
	Destination   string
	Origin        string
	DurationDays  int
	Mode          domain.Mode
	BudgetHint    string
	Dietary       string
	GroupSize     int
	DepartureDate time.Time
	Rating        *int // 1-10
}

// placeName is one or more capitalised words ("Tokyo", "New York", "São Paulo").
const placeName = `([\p{Lu}][\p{L}'.-]*(?:\s+[\p{Lu}][\p{L}'.-]*)*)`

var (
	destinationPattern = regexp.MustCompile(`\b(?i:to|visit|visiting|in|for|around)\s+` + placeName)
	originPattern      = regexp.MustCompile(`\b(?i:from|leaving)\s+` + placeName)
	durationPattern    = regexp.MustCompile(`(?i)\b(\d{1,3})\s*-?\s*(days?|nights?|weeks?)\b`)
	budgetAmount       = regexp.MustCompile(`([$€£])\s?(\d[\d,]*(?:\.\d+)?)\s*(k\b)?`)
	budgetWord         = regexp.MustCompile(`(?i)\b(luxury|luxurious|cheap|budget|affordable|mid-range|backpacking)\b`)
	groupPattern       = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(?:people|persons|travell?ers|adults|friends|of us)\b`)
	datePattern        = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	ratingOutOfTen     = regexp.MustCompile(`\b(\d{1,2})\s*(?:/|out of)\s*10\b`)
	ratingStars        = regexp.MustCompile(`(?i)\b([1-5])\s*stars?\b`)
)

// notPlaces are capitalised words that follow "in"/"for"/"to" without naming
// a place.
var notPlaces = map[string]bool{
	"I": true, "A": true, "The": true, "My": true, "We": true, "Our": true,
	"January": true, "February": true, "March": true, "April": true, "May": true, "June": true,
	"July": true, "August": true, "September": true, "October": true, "November": true, "December": true,
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true, "Friday": true,
	"Saturday": true, "Sunday": true, "Christmas": true, "Easter": true,
}

type modeRule struct {
	mode    domain.Mode
	pattern *regexp.Regexp
}

// modeRules are checked in order; solo_female precedes solo.
var modeRules = []modeRule{
	{domain.ModeSoloFemale, regexp.MustCompile(`(?i)\b(solo[ _-]?female|female solo|woman travell?ing alone|travell?ing alone as a woman)\b`)},
	{domain.ModePets, regexp.MustCompile(`(?i)\b(pets?|dogs?|cats?|puppy)\b`)},
	{domain.ModeFamily, regexp.MustCompile(`(?i)\b(family|kids|children|toddlers?|my son|my daughter)\b`)},
	{domain.ModeSolo, regexp.MustCompile(`(?i)\b(solo|alone|by myself|on my own)\b`)},
	{domain.ModeFriends, regexp.MustCompile(`(?i)\b(friends|buddies|mates|group trip)\b`)},
}

var dietaryPattern = regexp.MustCompile(`(?i)\b(vegan|vegetarian|pescatarian|halal|kosher|gluten[ -]free|dairy[ -]free|lactose[ -]intolerant|nut[ -]free)\b`)

// ExtractTripDetails pulls destination, duration, origin, mode, budget,
// dietary needs, group size, departure date and rating out of message.
func ExtractTripDetails(message string) TripDetails {
	var d TripDetails

	d.Destination = firstPlace(destinationPattern, message)
	d.Origin = firstPlace(originPattern, message)
	if strings.EqualFold(d.Destination, d.Origin) {
		d.Destination = ""
	}

	if m := durationPattern.FindStringSubmatch(message); m != nil {
		n, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(strings.ToLower(m[2]), "week") {
			n *= 7
		}
		d.DurationDays = n
	}

	for _, r := range modeRules {
		if r.pattern.MatchString(message) {
			d.Mode = r.mode
			break
		}
	}

	if m := budgetAmount.FindStringSubmatch(message); m != nil {
		d.BudgetHint = m[1] + m[2] + m[3]
	} else if m := budgetWord.FindStringSubmatch(message); m != nil {
		d.BudgetHint = strings.ToLower(m[1])
	}

	if m := dietaryPattern.FindStringSubmatch(message); m != nil {
		d.Dietary = strings.ToLower(strings.ReplaceAll(m[1], " ", "-"))
	}

	if m := groupPattern.FindStringSubmatch(message); m != nil {
		d.GroupSize, _ = strconv.Atoi(m[1])
	}

	if m := datePattern.FindStringSubmatch(message); m != nil {
		if t, err := time.Parse(time.DateOnly, m[1]); err == nil {
			d.DepartureDate = t
		}
	}

	d.Rating = extractRating(message)
	return d
}

func firstPlace(pattern *regexp.Regexp, message string) string {
	for _, m := range pattern.FindAllStringSubmatch(message, -1) {
		words := strings.Fields(m[1])
		for len(words) > 0 && notPlaces[words[0]] {
			words = words[1:]
		}
		if len(words) > 0 {
			return strings.TrimRight(strings.Join(words, " "), ".'-")
		}
	}
	return ""
}

func extractRating(message string) *int {
	if m := ratingOutOfTen.FindStringSubmatch(message); m != nil {
		n, _ := strconv.Atoi(m[1])
		n = clampRating(n)
		return &n
	}
	if m := ratingStars.FindStringSubmatch(message); m != nil {
		n, _ := strconv.Atoi(m[1])
		n = clampRating(n * 2)
		return &n
	}
	return nil
}

func clampRating(n int) int {
	return max(1, min(n, 10))
}
