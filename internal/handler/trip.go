package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// TripMessageRequest is the body of POST /trips/{tripID}/messages.
type TripMessageRequest struct {
	UserID   string `json:"user_id"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

// PostTripMessage handles POST /trips/{tripID}/messages.
// The trip is created on its first message.
func (s *Server) PostTripMessage(w http.ResponseWriter, r *http.Request) {
	var req TripMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.assistant.HandleTripMessage(r.Context(), chi.URLParam(r, "tripID"), req.UserID, req.Message, req.Location)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CloseTrip handles POST /trips/{tripID}/close.
func (s *Server) CloseTrip(w http.ResponseWriter, r *http.Request) {
	if err := s.assistant.CloseTrip(r.Context(), chi.URLParam(r, "tripID")); err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
