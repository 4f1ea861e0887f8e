package handler

import (
	"net/http"

	"github.com/pkordes/wayfarer/internal/domain"
)

// FeedbackRequest is the body of POST /feedback.
type FeedbackRequest struct {
	UserID      string   `json:"user_id"`
	TripID      string   `json:"trip_id,omitempty"`
	Destination string   `json:"destination,omitempty"`
	Duration    int      `json:"duration,omitempty"`
	Budget      string   `json:"budget,omitempty"`
	Activities  []string `json:"activities,omitempty"`
	Feedback    string   `json:"feedback"`
	Rating      *int     `json:"rating,omitempty"`
}

// PostFeedback handles POST /feedback.
func (s *Server) PostFeedback(w http.ResponseWriter, r *http.Request) {
	var body FeedbackRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Rating != nil && (*body.Rating < 1 || *body.Rating > 10) {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("rating must be between 1 and 10"))
		return
	}

	res, err := s.assistant.SubmitFeedback(r.Context(), domain.PostTripRequest{
		UserID: body.UserID,
		TripID: body.TripID,
		Trip: domain.TripData{
			Destination: body.Destination,
			DurationDay: body.Duration,
			Budget:      body.Budget,
			Activities:  body.Activities,
		},
		Feedback: body.Feedback,
		Rating:   body.Rating,
	})
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
