package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/handler"
)

// ---- GET /users/{userID}/profile -------------------------------------------

func TestGetProfile_200(t *testing.T) {
	var gotUser string
	var gotPage domain.PaginationParams
	svc := &mockAssistant{
		profile: func(_ context.Context, userID string, page domain.PaginationParams) (domain.UserTravelProfile, error) {
			gotUser, gotPage = userID, page
			return domain.UserTravelProfile{
				UserID:      userID,
				Mode:        domain.ModeFamily,
				TripHistory: []string{"t1", "t2"},
				Total:       42,
			}, nil
		},
	}

	rec := do(newHTTPHandler(svc), http.MethodGet, "/users/user-1/profile?page=2&limit=500", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", gotUser)
	assert.Equal(t, 2, gotPage.Page)
	assert.Equal(t, 100, gotPage.Limit, "limit is capped")

	var resp handler.ProfileResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, domain.ModeFamily, resp.Mode)
	assert.EqualValues(t, 42, resp.Pagination.Total)
	assert.NotNil(t, resp.Records)
	assert.Contains(t, rec.Body.String(), `"records":[]`)
}

func TestGetProfile_DefaultPagination(t *testing.T) {
	var gotPage domain.PaginationParams
	svc := &mockAssistant{
		profile: func(_ context.Context, _ string, page domain.PaginationParams) (domain.UserTravelProfile, error) {
			gotPage = page
			return domain.UserTravelProfile{}, nil
		},
	}

	rec := do(newHTTPHandler(svc), http.MethodGet, "/users/user-1/profile?page=abc", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PaginationParams{Page: 1, Limit: 20}, gotPage)
}

func TestGetProfile_404(t *testing.T) {
	svc := &mockAssistant{
		profile: func(context.Context, string, domain.PaginationParams) (domain.UserTravelProfile, error) {
			return domain.UserTravelProfile{}, fmt.Errorf("service.Orchestrator.Profile: %w", domain.ErrNotFound)
		},
	}

	rec := do(newHTTPHandler(svc), http.MethodGet, "/users/ghost/profile", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user not found", decodeError(t, rec).Error.Message)
}
