package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/harun/mathwise/internal/metrics"
	"github.com/harun/mathwise/pkg/session"
)

// Gate resolves the waiting_for_approval state. Approval completes the
// session without any external call; any other feedback re-enters the
// pipeline through a refine step. The loop is unbounded: only user
// approval or a failure terminates it.
type Gate struct {
	store        *session.Store
	solver       Solver
	policy       ApprovalPolicy
	solveTimeout time.Duration
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewGate creates an approval gate. A nil policy falls back to the
// default token policy; metrics may be nil.
func NewGate(store *session.Store, solver Solver, policy ApprovalPolicy, solveTimeout time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Gate {
	if policy == nil {
		policy = NewTokenPolicy(nil)
	}
	if solveTimeout <= 0 {
		solveTimeout = DefaultSolveTimeout
	}
	return &Gate{
		store:        store,
		solver:       solver,
		policy:       policy,
		solveTimeout: solveTimeout,
		metrics:      m,
		logger:       logger.With().Str("component", "approval_gate").Logger(),
	}
}

// SubmitFeedback consumes feedback for a waiting session. Feedback
// against a session in any other state fails with ErrInvalidState and
// changes nothing. Refine failures are absorbed into the session's
// terminal error status, never returned as an error.
func (g *Gate) SubmitFeedback(ctx context.Context, sessionID, text string) (session.View, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return session.View{}, fmt.Errorf("feedback text is required")
	}

	logger := g.logger.With().Str("session_id", sessionID).Logger()

	view, err := g.store.Update(sessionID, func(s *session.Session) error {
		if s.Status != session.StatusWaitingApproval {
			return fmt.Errorf("%w: session is %s, not waiting for approval", session.ErrInvalidState, s.Status)
		}

		if g.policy.IsApproval(text) {
			logger.Info().Msg("Draft approved")
			g.observeFeedback("approved")
			return s.Complete()
		}

		// Capture the draft before leaving the waiting state clears it.
		draft := *s.PendingDraft
		if err := s.Resume(); err != nil {
			return err
		}

		revised, err := g.refine(ctx, draft.Content, text, s.Topic)
		if err != nil {
			capErr := &CapabilityError{Stage: StageRefine, Err: err}
			logger.Error().Err(err).Msg("Refine capability failed")
			g.observeFeedback("error")
			return s.Fail(capErr)
		}

		if revised.Final {
			s.Append(session.RoleAssistant, revised.Content)
			g.observeFeedback("completed")
			return s.Complete()
		}

		s.Append(session.RoleAssistant, revisedMessage(text, revised.Content))
		g.observeFeedback("refined")
		return s.AwaitApproval(revised)
	})
	if err != nil {
		return view, err
	}

	logger.Info().Str("status", string(view.Status)).Msg("Feedback processed")
	return view, nil
}

func (g *Gate) refine(ctx context.Context, draft, feedback, topic string) (session.Draft, error) {
	refineCtx, cancel := context.WithTimeout(ctx, g.solveTimeout)
	defer cancel()

	start := time.Now()
	revised, err := g.solver.Refine(refineCtx, draft, feedback, topic)
	if g.metrics != nil {
		g.metrics.CapabilityCallDuration.WithLabelValues(StageRefine).Observe(time.Since(start).Seconds())
		if err != nil {
			g.metrics.CapabilityErrorsTotal.WithLabelValues(StageRefine).Inc()
		}
	}
	return revised, err
}

func (g *Gate) observeFeedback(resolution string) {
	if g.metrics != nil {
		g.metrics.FeedbackTotal.WithLabelValues(resolution).Inc()
	}
}
