package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/wayfarer/internal/domain"
)

// Pagination describes the page of records returned.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// ProfileResponse is the body of GET /users/{userID}/profile.
type ProfileResponse struct {
	domain.UserTravelProfile
	Pagination Pagination `json:"pagination"`
}

// GetProfile handles GET /users/{userID}/profile.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))
	profile, err := s.assistant.Profile(r.Context(), chi.URLParam(r, "userID"), params)
	if err != nil {
		s.writeServiceError(w, r, err, "user not found")
		return
	}
	if profile.Records == nil {
		profile.Records = []domain.TripRecord{}
	}
	writeJSON(w, http.StatusOK, ProfileResponse{
		UserTravelProfile: profile,
		Pagination:        Pagination{Page: params.Page, Limit: params.Limit, Total: profile.Total},
	})
}

// queryInt returns the integer query parameter name, or nil when it is
// absent or not a number.
func queryInt(r *http.Request, name string) *int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return nil
	}
	return &v
}
