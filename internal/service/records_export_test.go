package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/repo"
	"github.com/pkordes/wayfarer/internal/service"
)

func TestExportService_Export_AllPages(t *testing.T) {
	records := repo.NewMemoryTripRecordStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range 130 {
		_, err := records.Append(ctx, domain.TripRecord{
			TripID:    fmt.Sprintf("trip-%03d", i),
			UserID:    "user-1",
			TripData:  domain.TripData{Destination: "Rome", DurationDay: 3},
			Analysis:  domain.FeedbackAnalysis{OverallSatisfaction: 7, FavoriteExperiences: []string{"gelato"}},
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}
	_, err := records.Append(ctx, domain.TripRecord{TripID: "other", UserID: "user-2"})
	require.NoError(t, err)

	rows, err := service.NewExportService(records).Export(ctx, "user-1")

	require.NoError(t, err)
	require.Len(t, rows, 130)
	assert.Equal(t, "trip-129", rows[0].TripID, "newest first")
	assert.Equal(t, "Rome", rows[0].Destination)
	assert.Equal(t, 7, rows[0].OverallSatisfaction)
	assert.Equal(t, []string{"gelato"}, rows[0].Favorites)
}

func TestExportService_Export_NoRecords(t *testing.T) {
	rows, err := service.NewExportService(repo.NewMemoryTripRecordStore()).Export(context.Background(), "nobody")

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestExportService_Export_Errors(t *testing.T) {
	_, err := service.NewExportService(repo.NewMemoryTripRecordStore()).Export(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	records := &mockRecords{listByUser: func(context.Context, string, domain.PaginationParams) ([]domain.TripRecord, int64, error) {
		return nil, 0, errors.New("db gone")
	}}
	_, err = service.NewExportService(records).Export(context.Background(), "user-1")
	assert.ErrorContains(t, err, "db gone")
}
