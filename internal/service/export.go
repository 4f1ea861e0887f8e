package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/repo"
)

// exportPageSize is how many records are fetched per store round trip.
const exportPageSize = 100

// ExportService assembles a flat export of a user's trip records.
type ExportService struct {
	records repo.TripRecordStore
}

// NewExportService constructs an ExportService backed by the record store.
func NewExportService(records repo.TripRecordStore) *ExportService {
	return &ExportService{records: records}
}

// Export returns one ExportRow per trip record of the user, newest first.
// A user with no records yields an empty, non-nil slice.
func (s *ExportService) Export(ctx context.Context, userID string) ([]domain.ExportRow, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("service.ExportService.Export: user_id is required: %w", domain.ErrValidation)
	}

	rows := []domain.ExportRow{}
	limit := exportPageSize
	for page := 1; ; page++ {
		p := domain.NewPaginationParams(&page, &limit)
		records, total, err := s.records.ListByUser(ctx, userID, p)
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: %w", err)
		}
		for _, r := range records {
			rows = append(rows, exportRow(r))
		}
		if len(records) == 0 || int64(len(rows)) >= total {
			return rows, nil
		}
	}
}

func exportRow(r domain.TripRecord) domain.ExportRow {
	return domain.ExportRow{
		RecordID:            r.ID.String(),
		TripID:              r.TripID,
		Destination:         r.TripData.Destination,
		DurationDay:         r.TripData.DurationDay,
		Budget:              r.TripData.Budget,
		CreatedAt:           r.CreatedAt,
		OverallSatisfaction: r.Analysis.OverallSatisfaction,
		BudgetSatisfaction:  r.Analysis.BudgetSatisfaction,
		Sentiment:           r.Analysis.Sentiment,
		Favorites:           r.Analysis.FavoriteExperiences,
		LeastFavorites:      r.Analysis.LeastFavoriteExperiences,
		TravelStyle:         r.Analysis.TravelStyle,
		Recommendation:      r.Analysis.Recommendation,
	}
}
