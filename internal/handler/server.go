// Package handler implements the HTTP handlers for the Wayfarer API.
// All handlers are methods on Server. Routes registers them on a chi router;
// cross-cutting middleware (request id, logging, CORS, body limits) is
// applied by the caller in main.go.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/wayfarer/internal/domain"
	"github.com/pkordes/wayfarer/spec"
)

// Assistant defines the operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without building the real orchestrator.
type Assistant interface {
	HandleMessage(ctx context.Context, userID, message, location string) (domain.Envelope, error)
	HandleTripMessage(ctx context.Context, tripID, userID, message, location string) (domain.InTripResult, error)
	PlanPreTrip(ctx context.Context, userID string, req domain.PreTripRequest) (domain.PreTripPlan, error)
	SubmitFeedback(ctx context.Context, req domain.PostTripRequest) (domain.PostTripResult, error)
	CloseTrip(ctx context.Context, tripID string) error
	Profile(ctx context.Context, userID string, page domain.PaginationParams) (domain.UserTravelProfile, error)
	ExportRecords(ctx context.Context, userID string) ([]domain.ExportRow, error)
}

// Server holds the dependencies shared by every handler.
// Methods are in endpoint-specific files but all operate on this struct.
type Server struct {
	assistant Assistant
	logger    *slog.Logger
}

// NewServer constructs the Server. A nil logger means slog.Default().
func NewServer(assistant Assistant, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{assistant: assistant, logger: logger}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil)
}

// Routes returns a chi router with every API endpoint registered.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Post("/chat", s.PostChat)
	r.Post("/pretrip", s.PostPreTrip)
	r.Post("/feedback", s.PostFeedback)

	r.Route("/trips/{tripID}", func(r chi.Router) {
		r.Post("/messages", s.PostTripMessage)
		r.Post("/close", s.CloseTrip)
	})

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/profile", s.GetProfile)
		r.Get("/records/export", s.GetRecordsExport)
	})
	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.OpenAPI)
}
