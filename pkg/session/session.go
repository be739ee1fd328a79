package session

import (
	"fmt"
	"time"
)

// Role identifies the author of a transcript message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Status represents the lifecycle state of a session
type Status string

const (
	StatusProcessing      Status = "processing"
	StatusWaitingApproval Status = "waiting_for_approval"
	StatusCompleted       Status = "completed"
	StatusError           Status = "error"
)

// transitions is the explicit state machine for Session.Status.
// StatusError is terminal: a failed session accepts no further transitions.
var transitions = map[Status][]Status{
	StatusProcessing:      {StatusWaitingApproval, StatusCompleted, StatusError},
	StatusWaitingApproval: {StatusProcessing, StatusCompleted, StatusError},
	StatusCompleted:       {StatusProcessing},
	StatusError:           {},
}

// Message represents a single conversation turn. Messages are immutable
// once appended to a transcript.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Draft is a solution artifact awaiting user confirmation or revision.
// Final marks drafts that need no review (e.g. a guardrail rejection).
type Draft struct {
	Content string `json:"content"`
	Final   bool   `json:"final"`
}

// Session is one conversation thread. All mutation goes through the
// Store's serialized Update; callers outside this package only ever see
// View snapshots.
type Session struct {
	ID           string    `json:"id"`
	Status       Status    `json:"status"`
	Transcript   []Message `json:"transcript"`
	PendingDraft *Draft    `json:"pending_draft,omitempty"`
	Topic        string    `json:"topic"`
	LastError    string    `json:"last_error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// View is the read-only projection of a Session returned to callers.
type View struct {
	SessionID  string    `json:"session_id"`
	Status     Status    `json:"status"`
	Transcript []Message `json:"messages"`
	Waiting    bool      `json:"waiting"`
}

// Append adds a message to the transcript. The transcript is append-only;
// nothing in this package mutates or removes an existing entry.
func (s *Session) Append(role Role, content string) {
	s.Transcript = append(s.Transcript, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	s.UpdatedAt = time.Now()
}

// transition moves the session to a new status, enforcing the transition
// table and the pending-draft invariant (PendingDraft is non-nil iff the
// session is waiting for approval).
func (s *Session) transition(to Status) error {
	for _, allowed := range transitions[s.Status] {
		if allowed == to {
			if to != StatusWaitingApproval {
				s.PendingDraft = nil
			}
			s.Status = to
			s.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: cannot transition from %q to %q", ErrInvalidState, s.Status, to)
}

// AwaitApproval parks the session behind the approval gate with the
// given draft as the artifact under review.
func (s *Session) AwaitApproval(d Draft) error {
	if err := s.transition(StatusWaitingApproval); err != nil {
		return err
	}
	draft := d
	s.PendingDraft = &draft
	return nil
}

// Resume moves a waiting or completed session back to processing so a
// refine step or a fresh topic can run.
func (s *Session) Resume() error {
	if err := s.transition(StatusProcessing); err != nil {
		return err
	}
	s.LastError = ""
	return nil
}

// Complete finishes the session. Any pending draft is cleared.
func (s *Session) Complete() error {
	if err := s.transition(StatusCompleted); err != nil {
		return err
	}
	s.LastError = ""
	return nil
}

// Fail moves the session to the terminal error state. Messages already
// appended stay in the transcript.
func (s *Session) Fail(cause error) error {
	if err := s.transition(StatusError); err != nil {
		return err
	}
	if cause != nil {
		s.LastError = cause.Error()
	}
	return nil
}

// Waiting reports whether the session is parked behind the approval gate.
func (s *Session) Waiting() bool {
	return s.Status == StatusWaitingApproval
}

// View returns a snapshot projection of the session. The transcript slice
// is copied so callers cannot alias the live record.
func (s *Session) View() View {
	transcript := make([]Message, len(s.Transcript))
	copy(transcript, s.Transcript)
	return View{
		SessionID:  s.ID,
		Status:     s.Status,
		Transcript: transcript,
		Waiting:    s.Status == StatusWaitingApproval,
	}
}
