package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/harun/mathwise/pkg/session"
)

// handleChat starts a new session or continues an existing one with a
// new topic. The pipeline runs synchronously; the response reflects the
// finished run, including a capability failure as status "error".
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	requestID, _ := gonanoid.New()
	logger := s.logger.With().Str("request_id", requestID).Logger()

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.observe("chat", http.StatusBadRequest)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		s.observe("chat", http.StatusBadRequest)
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	logger.Info().Str("session_id", req.SessionID).Msg("Chat request received")

	view, err := s.controller.StartOrContinue(r.Context(), req.Topic, req.SessionID)
	if err != nil {
		status := errorStatus(err)
		s.observe("chat", status)
		writeError(w, status, err.Error())
		return
	}

	s.observe("chat", http.StatusOK)
	writeJSON(w, http.StatusOK, viewResponse(view))
}

// handleFeedback resolves a waiting session with approval or a revision
// request.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	requestID, _ := gonanoid.New()
	logger := s.logger.With().Str("request_id", requestID).Logger()

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.observe("feedback", http.StatusBadRequest)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		s.observe("feedback", http.StatusBadRequest)
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if strings.TrimSpace(req.Feedback) == "" {
		s.observe("feedback", http.StatusBadRequest)
		writeError(w, http.StatusBadRequest, "feedback is required")
		return
	}

	logger.Info().Str("session_id", req.SessionID).Msg("Feedback received")

	view, err := s.controller.SubmitFeedback(r.Context(), req.SessionID, req.Feedback)
	if err != nil {
		status := errorStatus(err)
		s.observe("feedback", status)
		writeError(w, status, err.Error())
		return
	}

	s.observe("feedback", http.StatusOK)
	writeJSON(w, http.StatusOK, viewResponse(view))
}

// handlePoll returns the current session state. Pure read, idempotent,
// safe to call arbitrarily often.
func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	view, err := s.controller.GetState(r.PathValue("id"))
	if err != nil {
		status := errorStatus(err)
		s.observe("poll", status)
		writeError(w, status, err.Error())
		return
	}

	s.observe("poll", http.StatusOK)
	writeJSON(w, http.StatusOK, viewResponse(view))
}

// handleDelete removes a session.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.Delete(r.PathValue("id")); err != nil {
		status := errorStatus(err)
		s.observe("delete", status)
		writeError(w, status, err.Error())
		return
	}

	s.observe("delete", http.StatusOK)
	writeJSON(w, http.StatusOK, map[string]string{"message": "session deleted"})
}

// handleHealth reports process liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Sessions:      s.controller.ActiveSessions(),
	})
}

// errorStatus maps domain errors to HTTP status codes. Capability
// failures never reach here; those are committed as session state.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
