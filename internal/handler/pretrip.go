package handler

import (
	"errors"
	"fmt"
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/wayfarer/internal/domain"
)

var errNegativeGroup = errors.New("group_size must not be negative")

func errUnknownMode(mode string) error {
	return fmt.Errorf("unknown mode %q: use family, friends, solo, solo_female or pets", mode)
}

// PreTripRequest is the body of POST /pretrip. Every field except user_id is
// optional; the planner fills gaps from the session or with placeholders.
type PreTripRequest struct {
	UserID        string              `json:"user_id"`
	Destination   string              `json:"destination,omitempty"`
	Origin        string              `json:"origin,omitempty"`
	DepartureDate *openapi_types.Date `json:"departure_date,omitempty"`
	Nationality   string              `json:"nationality,omitempty"`
	GroupSize     int                 `json:"group_size,omitempty"`
	Mode          string              `json:"mode,omitempty"`
}

// PostPreTrip handles POST /pretrip.
func (s *Server) PostPreTrip(w http.ResponseWriter, r *http.Request) {
	var body PreTripRequest
	if !decodeBody(w, r, &body) {
		return
	}
	req, err := requestToPreTrip(body)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}

	plan, err := s.assistant.PlanPreTrip(r.Context(), body.UserID, req)
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// requestToPreTrip converts the HTTP body into the domain request.
func requestToPreTrip(body PreTripRequest) (domain.PreTripRequest, error) {
	req := domain.PreTripRequest{
		Destination: body.Destination,
		Origin:      body.Origin,
		Nationality: body.Nationality,
		GroupSize:   body.GroupSize,
	}
	if body.DepartureDate != nil {
		req.DepartureDate = body.DepartureDate.Time
	}
	if body.Mode != "" {
		mode, ok := domain.ParseMode(body.Mode)
		if !ok {
			return domain.PreTripRequest{}, errUnknownMode(body.Mode)
		}
		req.Mode = mode
	}
	if body.GroupSize < 0 {
		return domain.PreTripRequest{}, errNegativeGroup
	}
	return req, nil
}
