package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/wayfarer/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"record_id", "trip_id", "destination", "duration_days", "budget", "created_at",
	"overall_satisfaction", "budget_satisfaction", "sentiment",
	"favorites", "least_favorites", "travel_style", "recommendation",
}

// ExportRow is the JSON shape of one exported record.
// Fields that are empty become absent (omitempty).
type ExportRow struct {
	RecordID            string    `json:"record_id"`
	TripID              string    `json:"trip_id"`
	Destination         string    `json:"destination,omitempty"`
	DurationDays        *int      `json:"duration_days,omitempty"`
	Budget              *string   `json:"budget,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	OverallSatisfaction int       `json:"overall_satisfaction"`
	BudgetSatisfaction  string    `json:"budget_satisfaction,omitempty"`
	Sentiment           string    `json:"sentiment,omitempty"`
	Favorites           []string  `json:"favorites"`
	LeastFavorites      []string  `json:"least_favorites"`
	TravelStyle         string    `json:"travel_style,omitempty"`
	Recommendation      string    `json:"recommendation,omitempty"`
}

// GetRecordsExport handles GET /users/{userID}/records/export.
// It returns every trip record of the user as a flat table.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetRecordsExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "csv" {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("format must be json or csv"))
		return
	}

	rows, err := s.assistant.ExportRecords(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeServiceError(w, r, err, "user not found")
		return
	}

	if format == "csv" {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, buildJSONRows(rows))
}

// buildJSONRows converts domain rows to the JSON response rows.
func buildJSONRows(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domainRowToJSONRow(r))
	}
	return out
}

// writeCSV encodes domain rows as CSV.
// List fields are pipe-separated ("|") to keep each record on a single CSV line.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trip-records.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// domainRowToJSONRow maps a domain.ExportRow to the JSON row type.
// Zero durations and empty budgets become nil pointers.
func domainRowToJSONRow(r domain.ExportRow) ExportRow {
	row := ExportRow{
		RecordID:            r.RecordID,
		TripID:              r.TripID,
		Destination:         r.Destination,
		CreatedAt:           r.CreatedAt.UTC(),
		OverallSatisfaction: r.OverallSatisfaction,
		BudgetSatisfaction:  r.BudgetSatisfaction,
		Sentiment:           r.Sentiment,
		Favorites:           nonNilStrings(r.Favorites),
		LeastFavorites:      nonNilStrings(r.LeastFavorites),
		TravelStyle:         r.TravelStyle,
		Recommendation:      r.Recommendation,
	}
	if r.DurationDay > 0 {
		d := r.DurationDay
		row.DurationDays = &d
	}
	if r.Budget != "" {
		b := r.Budget
		row.Budget = &b
	}
	return row
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// A zero duration is encoded as an empty string.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	duration := ""
	if r.DurationDay > 0 {
		duration = strconv.Itoa(r.DurationDay)
	}
	return []string{
		r.RecordID,
		r.TripID,
		r.Destination,
		duration,
		r.Budget,
		r.CreatedAt.UTC().Format(time.RFC3339),
		strconv.Itoa(r.OverallSatisfaction),
		r.BudgetSatisfaction,
		r.Sentiment,
		strings.Join(r.Favorites, "|"),
		strings.Join(r.LeastFavorites, "|"),
		r.TravelStyle,
		r.Recommendation,
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
