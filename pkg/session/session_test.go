package session

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	store := NewStore(zerolog.Nop())
	v := store.Create()
	var sess *Session
	_, err := store.Update(v.SessionID, func(s *Session) error {
		sess = s
		return nil
	})
	require.NoError(t, err)
	return sess
}

// checkInvariant asserts the pending-draft invariant after a transition.
func checkInvariant(t *testing.T, s *Session) {
	t.Helper()
	if s.Status == StatusWaitingApproval {
		assert.NotNil(t, s.PendingDraft)
	} else {
		assert.Nil(t, s.PendingDraft)
	}
}

func TestSession_AwaitApprovalSetsDraft(t *testing.T) {
	s := newTestSession(t)

	err := s.AwaitApproval(Draft{Content: "x = 2"})
	require.NoError(t, err)

	assert.Equal(t, StatusWaitingApproval, s.Status)
	require.NotNil(t, s.PendingDraft)
	assert.Equal(t, "x = 2", s.PendingDraft.Content)
	checkInvariant(t, s)
}

func TestSession_CompleteClearsDraft(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.AwaitApproval(Draft{Content: "x = 2"}))

	require.NoError(t, s.Complete())

	assert.Equal(t, StatusCompleted, s.Status)
	assert.Nil(t, s.PendingDraft)
	checkInvariant(t, s)
}

func TestSession_FailRecordsError(t *testing.T) {
	s := newTestSession(t)

	require.NoError(t, s.Fail(errors.New("solve blew up")))

	assert.Equal(t, StatusError, s.Status)
	assert.Equal(t, "solve blew up", s.LastError)
	checkInvariant(t, s)
}

func TestSession_ErrorIsTerminal(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Fail(errors.New("boom")))

	assert.ErrorIs(t, s.Resume(), ErrInvalidState)
	assert.ErrorIs(t, s.Complete(), ErrInvalidState)
	assert.ErrorIs(t, s.AwaitApproval(Draft{Content: "x"}), ErrInvalidState)
	assert.Equal(t, StatusError, s.Status)
}

func TestSession_TransitionTable(t *testing.T) {
	tests := []struct {
		name      string
		from      Status
		to        Status
		shouldErr bool
	}{
		{"processing to waiting", StatusProcessing, StatusWaitingApproval, false},
		{"processing to completed", StatusProcessing, StatusCompleted, false},
		{"processing to error", StatusProcessing, StatusError, false},
		{"waiting to processing", StatusWaitingApproval, StatusProcessing, false},
		{"waiting to completed", StatusWaitingApproval, StatusCompleted, false},
		{"waiting to error", StatusWaitingApproval, StatusError, false},
		{"completed to processing", StatusCompleted, StatusProcessing, false},
		{"completed to waiting", StatusCompleted, StatusWaitingApproval, true},
		{"completed to error", StatusCompleted, StatusError, true},
		{"error to anything", StatusError, StatusProcessing, true},
		{"processing to processing", StatusProcessing, StatusProcessing, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{ID: "t", Status: tt.from}
			err := s.transition(tt.to)
			if tt.shouldErr {
				assert.ErrorIs(t, err, ErrInvalidState)
				assert.Equal(t, tt.from, s.Status)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.to, s.Status)
			}
		})
	}
}

func TestSession_TranscriptAppendOnly(t *testing.T) {
	s := newTestSession(t)

	s.Append(RoleUser, "solve 2x+3=7")
	s.Append(RoleAssistant, "x = 2")

	require.Len(t, s.Transcript, 2)
	assert.Equal(t, RoleUser, s.Transcript[0].Role)
	assert.Equal(t, RoleAssistant, s.Transcript[1].Role)

	before := len(s.Transcript)
	s.Append(RoleUser, "more steps please")
	assert.Equal(t, before+1, len(s.Transcript))
	assert.Equal(t, "solve 2x+3=7", s.Transcript[0].Content)
}

func TestSession_ViewIsACopy(t *testing.T) {
	s := newTestSession(t)
	s.Append(RoleUser, "original")

	v := s.View()
	v.Transcript[0].Content = "mutated"

	assert.Equal(t, "original", s.Transcript[0].Content)
}

func TestSession_ViewWaitingFlag(t *testing.T) {
	s := newTestSession(t)
	assert.False(t, s.View().Waiting)

	require.NoError(t, s.AwaitApproval(Draft{Content: "x"}))
	assert.True(t, s.View().Waiting)

	require.NoError(t, s.Complete())
	assert.False(t, s.View().Waiting)
}
