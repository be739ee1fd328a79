package httpapi

import (
	"time"

	"github.com/harun/mathwise/pkg/session"
)

// ChatRequest starts a new conversation or continues an existing one
// with a new topic.
type ChatRequest struct {
	Topic     string `json:"topic"`
	SessionID string `json:"session_id,omitempty"`
}

// FeedbackRequest submits feedback for a session waiting on approval.
type FeedbackRequest struct {
	SessionID string `json:"session_id"`
	Feedback  string `json:"feedback"`
}

// SessionResponse is the wire shape of a session view. Capability
// failures surface here only as status "error"; they are never an HTTP
// error.
type SessionResponse struct {
	SessionID string            `json:"session_id"`
	Status    session.Status    `json:"status"`
	Messages  []session.Message `json:"messages"`
	Waiting   bool              `json:"waiting"`
}

// ErrorResponse is the wire shape of a request-level failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports process liveness.
type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Sessions      int    `json:"sessions"`
}

// ServerOptions configures the API server.
type ServerOptions struct {
	Host               string        // default "0.0.0.0"
	Port               int           // default 8080
	RateLimitPerMinute int           // requests per minute per IP (default 100)
	ShutdownTimeout    time.Duration // default 10s
}

func viewResponse(v session.View) SessionResponse {
	messages := v.Transcript
	if messages == nil {
		messages = []session.Message{}
	}
	return SessionResponse{
		SessionID: v.SessionID,
		Status:    v.Status,
		Messages:  messages,
		Waiting:   v.Waiting,
	}
}
