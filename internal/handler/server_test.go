package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/internal/handler"
)

// mockAssistant is a test double for handler.Assistant.
// Set only the method fields your test needs.
type mockAssistant struct {
	handleMessage     func(ctx context.Context, userID, message, location string) (domain.Envelope, error)
	handleTripMessage func(ctx context.Context, tripID, userID, message, location string) (domain.InTripResult, error)
	planPreTrip       func(ctx context.Context, userID string, req domain.PreTripRequest) (domain.PreTripPlan, error)
	submitFeedback    func(ctx context.Context, req domain.PostTripRequest) (domain.PostTripResult, error)
	closeTrip         func(ctx context.Context, tripID string) error
	profile           func(ctx context.Context, userID string, page domain.PaginationParams) (domain.UserTravelProfile, error)
	exportRecords     func(ctx context.Context, userID string) ([]domain.ExportRow, error)
}

func (m *mockAssistant) HandleMessage(ctx context.Context, userID, message, location string) (domain.Envelope, error) {
	return m.handleMessage(ctx, userID, message, location)
}
func (m *mockAssistant) HandleTripMessage(ctx context.Context, tripID, userID, message, location string) (domain.InTripResult, error) {
	return m.handleTripMessage(ctx, tripID, userID, message, location)
}
func (m *mockAssistant) PlanPreTrip(ctx context.Context, userID string, req domain.PreTripRequest) (domain.PreTripPlan, error) {
	return m.planPreTrip(ctx, userID, req)
}
func (m *mockAssistant) SubmitFeedback(ctx context.Context, req domain.PostTripRequest) (domain.PostTripResult, error) {
	return m.submitFeedback(ctx, req)
}
func (m *mockAssistant) CloseTrip(ctx context.Context, tripID string) error {
	return m.closeTrip(ctx, tripID)
}
func (m *mockAssistant) Profile(ctx context.Context, userID string, page domain.PaginationParams) (domain.UserTravelProfile, error) {
	return m.profile(ctx, userID, page)
}
func (m *mockAssistant) ExportRecords(ctx context.Context, userID string) ([]domain.ExportRow, error) {
	return m.exportRecords(ctx, userID)
}

// compile-time check: mockAssistant must satisfy handler.Assistant.
var _ handler.Assistant = (*mockAssistant)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mock into the chi router.
// This mirrors how main.go wires it in production, minus middleware.
func newHTTPHandler(a handler.Assistant) http.Handler {
	return handler.NewServer(a, nil).Routes()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(h http.Handler, method, target string, body *bytes.Buffer) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}
