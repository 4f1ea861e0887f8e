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
)

// ---- POST /trips/{tripID}/messages -----------------------------------------

func TestPostTripMessage_200(t *testing.T) {
	var gotTrip, gotUser string
	svc := &mockAssistant{
		handleTripMessage: func(_ context.Context, tripID, userID, message, location string) (domain.InTripResult, error) {
			gotTrip, gotUser = tripID, userID
			return domain.InTripResult{
				Success:      true,
				TripID:       tripID,
				Intent:       domain.DefaultIntent(),
				Response:     "Take the metro.",
				Suggestions:  []string{"Show transit options"},
				MessageCount: 3,
			}, nil
		},
	}

	rec := do(newHTTPHandler(svc), http.MethodPost, "/trips/trip-42/messages", jsonBody(t, map[string]any{
		"user_id":  "user-1",
		"message":  "how do I get to the Louvre",
		"location": "Paris",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "trip-42", gotTrip)
	assert.Equal(t, "user-1", gotUser)

	var res domain.InTripResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.True(t, res.Success)
	assert.Equal(t, "Take the metro.", res.Response)
	assert.Equal(t, 3, res.MessageCount)
}

func TestPostTripMessage_422(t *testing.T) {
	svc := &mockAssistant{
		handleTripMessage: func(context.Context, string, string, string, string) (domain.InTripResult, error) {
			return domain.InTripResult{}, fmt.Errorf("service.Orchestrator.HandleTripMessage: message is required: %w", domain.ErrValidation)
		},
	}

	rec := do(newHTTPHandler(svc), http.MethodPost, "/trips/trip-42/messages", jsonBody(t, map[string]any{"user_id": "u"}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "message is required", decodeError(t, rec).Error.Message)
}

func TestPostTripMessage_422_ClosedTrip(t *testing.T) {
	svc := &mockAssistant{
		handleTripMessage: func(_ context.Context, tripID, _, _, _ string) (domain.InTripResult, error) {
			return domain.InTripResult{}, fmt.Errorf("service.Orchestrator.HandleTripMessage: trip %s is closed: %w", tripID, domain.ErrValidation)
		},
	}

	rec := do(newHTTPHandler(svc), http.MethodPost, "/trips/trip-42/messages", jsonBody(t, map[string]any{
		"user_id": "user-1",
		"message": "one more question",
	}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "trip trip-42 is closed", decodeError(t, rec).Error.Message)
}

func TestPostTripMessage_404_OtherUsersTrip(t *testing.T) {
	svc := &mockAssistant{
		handleTripMessage: func(context.Context, string, string, string, string) (domain.InTripResult, error) {
			return domain.InTripResult{}, fmt.Errorf("service.Orchestrator.HandleTripMessage: %w", domain.ErrNotFound)
		},
	}

	rec := do(newHTTPHandler(svc), http.MethodPost, "/trips/trip-42/messages", jsonBody(t, map[string]any{
		"user_id": "user-2",
		"message": "hello",
	}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "trip not found", decodeError(t, rec).Error.Message)
}

// ---- POST /trips/{tripID}/close --------------------------------------------

func TestCloseTrip_204(t *testing.T) {
	var closed string
	svc := &mockAssistant{
		closeTrip: func(_ context.Context, tripID string) error {
			closed = tripID
			return nil
		},
	}

	rec := do(newHTTPHandler(svc), http.MethodPost, "/trips/trip-42/close", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "trip-42", closed)
	assert.Empty(t, rec.Body.String())
}

func TestCloseTrip_404(t *testing.T) {
	svc := &mockAssistant{
		closeTrip: func(context.Context, string) error {
			return fmt.Errorf("service.Orchestrator.CloseTrip: %w", domain.ErrNotFound)
		},
	}

	rec := do(newHTTPHandler(svc), http.MethodPost, "/trips/nope/close", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "not_found", resp.Error.Code)
	assert.Equal(t, "trip not found", resp.Error.Message)
}

func TestCloseTrip_405_WrongMethod(t *testing.T) {
	rec := do(newHTTPHandler(&mockAssistant{}), http.MethodGet, "/trips/trip-42/close", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
