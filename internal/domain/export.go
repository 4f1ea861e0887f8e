package domain

import "time"

// ExportRow is a single row in a user's trip-record export.
// It is a flat, denormalized view of one TripRecord. List-valued fields stay
// slices; encoders that need a single cell (CSV) join them with "|".
type ExportRow struct {
	RecordID    string
	TripID      string
	Destination string
	DurationDay int    // zero when unknown
	Budget      string // empty when unknown
	CreatedAt   time.Time

	// Analysis fields.
	OverallSatisfaction int
	BudgetSatisfaction  string
	Sentiment           string
	Favorites           []string
	LeastFavorites      []string
	TravelStyle         string
	Recommendation      string
}
