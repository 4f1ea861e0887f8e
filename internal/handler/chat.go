package handler

import "net/http"

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	UserID   string `json:"user_id"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

// PostChat handles POST /chat. Every well-formed request gets a 200 with an
// Envelope; the assistant degrades to fallback content instead of failing.
func (s *Server) PostChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	env, err := s.assistant.HandleMessage(r.Context(), req.UserID, req.Message, req.Location)
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, env)
}
