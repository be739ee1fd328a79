package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/mathwise/pkg/session"
)

// waitingSession drives a session to waiting_for_approval through the
// runner and returns its id and snapshot.
func waitingSession(t *testing.T, store *session.Store, solver Solver) session.View {
	t.Helper()
	runner := NewRunner(store, nil, solver, RunnerConfig{}, nil, zerolog.Nop())
	created := store.Create()
	view, err := runner.Run(context.Background(), created.SessionID, "solve x^2 = 9")
	require.NoError(t, err)
	require.Equal(t, session.StatusWaitingApproval, view.Status)
	return view
}

func newTestGate(store *session.Store, solver Solver) *Gate {
	return NewGate(store, solver, nil, 0, nil, zerolog.Nop())
}

func TestGate_ApprovalCompletesSession(t *testing.T) {
	store := session.NewStore(zerolog.Nop())
	solver := &stubSolver{draft: session.Draft{Content: "x = 3 or x = -3"}}
	before := waitingSession(t, store, solver)
	gate := newTestGate(store, solver)

	view, err := gate.SubmitFeedback(context.Background(), before.SessionID, "approve")
	require.NoError(t, err)

	assert.Equal(t, session.StatusCompleted, view.Status)
	assert.False(t, view.Waiting)

	// Approval adds nothing to the transcript.
	assert.Len(t, view.Transcript, len(before.Transcript))

	// Refine was never consulted.
	assert.Empty(t, solver.gotFeedback)
}

func TestGate_RefinementReturnsToWaiting(t *testing.T) {
	store := session.NewStore(zerolog.Nop())
	solver := &stubSolver{
		draft:   session.Draft{Content: "x = 3"},
		revised: session.Draft{Content: "x = 3 or x = -3"},
	}
	before := waitingSession(t, store, solver)
	gate := newTestGate(store, solver)

	view, err := gate.SubmitFeedback(context.Background(), before.SessionID, "you missed the negative root")
	require.NoError(t, err)

	assert.Equal(t, session.StatusWaitingApproval, view.Status)
	assert.True(t, view.Waiting)

	// Exactly one assistant message is added; the feedback itself is not
	// a transcript entry.
	require.Len(t, view.Transcript, len(before.Transcript)+1)
	last := view.Transcript[len(view.Transcript)-1]
	assert.Equal(t, session.RoleAssistant, last.Role)
	assert.Contains(t, last.Content, "x = 3 or x = -3")
	assert.Contains(t, last.Content, "you missed the negative root")

	// Refine received the pending draft and the feedback.
	assert.Equal(t, "x = 3", solver.gotDraft)
	assert.Equal(t, "you missed the negative root", solver.gotFeedback)
}

func TestGate_RefinementLoopUnbounded(t *testing.T) {
	store := session.NewStore(zerolog.Nop())
	solver := &stubSolver{
		draft:   session.Draft{Content: "v1"},
		revised: session.Draft{Content: "v2"},
	}
	before := waitingSession(t, store, solver)
	gate := newTestGate(store, solver)

	for i := 0; i < 3; i++ {
		view, err := gate.SubmitFeedback(context.Background(), before.SessionID, "more detail please")
		require.NoError(t, err)
		require.Equal(t, session.StatusWaitingApproval, view.Status)
	}

	view, err := gate.SubmitFeedback(context.Background(), before.SessionID, "approve")
	require.NoError(t, err)
	assert.Equal(t, session.StatusCompleted, view.Status)
}

func TestGate_RefineFailureFailsSession(t *testing.T) {
	store := session.NewStore(zerolog.Nop())
	solver := &stubSolver{
		draft:     session.Draft{Content: "v1"},
		refineErr: errors.New("model unavailable"),
	}
	before := waitingSession(t, store, solver)
	gate := newTestGate(store, solver)

	view, err := gate.SubmitFeedback(context.Background(), before.SessionID, "needs work")

	// Absorbed into the error status, not returned.
	require.NoError(t, err)
	assert.Equal(t, session.StatusError, view.Status)
	assert.Len(t, view.Transcript, len(before.Transcript))
}

func TestGate_FinalRevisionCompletes(t *testing.T) {
	store := session.NewStore(zerolog.Nop())
	solver := &stubSolver{
		draft:   session.Draft{Content: "v1"},
		revised: session.Draft{Content: "final answer", Final: true},
	}
	before := waitingSession(t, store, solver)
	gate := newTestGate(store, solver)

	view, err := gate.SubmitFeedback(context.Background(), before.SessionID, "just give me the answer")
	require.NoError(t, err)

	assert.Equal(t, session.StatusCompleted, view.Status)
	last := view.Transcript[len(view.Transcript)-1]
	assert.Equal(t, "final answer", last.Content)
}

func TestGate_FeedbackOnNonWaitingSessionRejected(t *testing.T) {
	store := session.NewStore(zerolog.Nop())
	gate := newTestGate(store, &stubSolver{})

	created := store.Create()
	_, err := gate.SubmitFeedback(context.Background(), created.SessionID, "approve")
	assert.ErrorIs(t, err, session.ErrInvalidState)

	// Nothing changed.
	after, getErr := store.Get(created.SessionID)
	require.NoError(t, getErr)
	assert.Equal(t, session.StatusProcessing, after.Status)
	assert.Empty(t, after.Transcript)
}

func TestGate_FeedbackOnCompletedSessionRejected(t *testing.T) {
	store := session.NewStore(zerolog.Nop())
	solver := &stubSolver{draft: session.Draft{Content: "v1"}}
	before := waitingSession(t, store, solver)
	gate := newTestGate(store, solver)

	_, err := gate.SubmitFeedback(context.Background(), before.SessionID, "approve")
	require.NoError(t, err)

	_, err = gate.SubmitFeedback(context.Background(), before.SessionID, "approve")
	assert.ErrorIs(t, err, session.ErrInvalidState)
}

func TestGate_UnknownSession(t *testing.T) {
	store := session.NewStore(zerolog.Nop())
	gate := newTestGate(store, &stubSolver{})

	_, err := gate.SubmitFeedback(context.Background(), "missing", "approve")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestGate_EmptyFeedbackRejected(t *testing.T) {
	store := session.NewStore(zerolog.Nop())
	gate := newTestGate(store, &stubSolver{})

	_, err := gate.SubmitFeedback(context.Background(), "any", "   ")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrNotFound)
}
