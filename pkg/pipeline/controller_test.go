package pipeline

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/mathwise/pkg/session"
)

func newTestController(solver Solver) (*Controller, *session.Store) {
	store := session.NewStore(zerolog.Nop())
	runner := NewRunner(store, nil, solver, RunnerConfig{}, nil, zerolog.Nop())
	gate := NewGate(store, solver, nil, 0, nil, zerolog.Nop())
	return NewController(store, runner, gate, nil, zerolog.Nop()), store
}

func TestController_StartCreatesSession(t *testing.T) {
	solver := &stubSolver{draft: session.Draft{Content: "steps"}}
	ctrl, store := newTestController(solver)

	view, err := ctrl.StartOrContinue(context.Background(), "solve x+1=2", "")
	require.NoError(t, err)

	assert.NotEmpty(t, view.SessionID)
	assert.Equal(t, session.StatusWaitingApproval, view.Status)
	assert.Equal(t, 1, store.Len())
}

func TestController_ContinueReusesSession(t *testing.T) {
	solver := &stubSolver{draft: session.Draft{Content: "steps", Final: true}}
	ctrl, store := newTestController(solver)

	first, err := ctrl.StartOrContinue(context.Background(), "first", "")
	require.NoError(t, err)

	second, err := ctrl.StartOrContinue(context.Background(), "second", first.SessionID)
	require.NoError(t, err)

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, 1, store.Len())
}

func TestController_UnknownSessionID(t *testing.T) {
	ctrl, _ := newTestController(&stubSolver{})

	_, err := ctrl.StartOrContinue(context.Background(), "topic", "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestController_EmptyTopic(t *testing.T) {
	ctrl, _ := newTestController(&stubSolver{})

	_, err := ctrl.StartOrContinue(context.Background(), " ", "")
	assert.Error(t, err)
}

func TestController_FullApprovalFlow(t *testing.T) {
	solver := &stubSolver{draft: session.Draft{Content: "x = 1"}}
	ctrl, _ := newTestController(solver)

	view, err := ctrl.StartOrContinue(context.Background(), "solve x+1=2", "")
	require.NoError(t, err)
	require.True(t, view.Waiting)

	approved, err := ctrl.SubmitFeedback(context.Background(), view.SessionID, "approve")
	require.NoError(t, err)
	assert.Equal(t, session.StatusCompleted, approved.Status)

	state, err := ctrl.GetState(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, approved, state)
}

func TestController_GetStateIsReadOnly(t *testing.T) {
	solver := &stubSolver{draft: session.Draft{Content: "x = 1"}}
	ctrl, _ := newTestController(solver)

	view, err := ctrl.StartOrContinue(context.Background(), "solve x+1=2", "")
	require.NoError(t, err)

	first, err := ctrl.GetState(view.SessionID)
	require.NoError(t, err)
	second, err := ctrl.GetState(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestController_Delete(t *testing.T) {
	solver := &stubSolver{draft: session.Draft{Content: "x = 1"}}
	ctrl, store := newTestController(solver)

	view, err := ctrl.StartOrContinue(context.Background(), "solve x+1=2", "")
	require.NoError(t, err)

	require.NoError(t, ctrl.Delete(view.SessionID))
	assert.Equal(t, 0, store.Len())
	assert.ErrorIs(t, ctrl.Delete(view.SessionID), session.ErrNotFound)
}

func TestController_ActiveSessions(t *testing.T) {
	solver := &stubSolver{draft: session.Draft{Content: "x = 1"}}
	ctrl, _ := newTestController(solver)

	assert.Equal(t, 0, ctrl.ActiveSessions())
	_, err := ctrl.StartOrContinue(context.Background(), "solve x+1=2", "")
	require.NoError(t, err)
	assert.Equal(t, 1, ctrl.ActiveSessions())
}
