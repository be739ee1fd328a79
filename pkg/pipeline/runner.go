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

const (
	// DefaultResearchTimeout bounds the research call. Research is
	// best-effort: on timeout the pipeline continues with empty findings.
	DefaultResearchTimeout = 30 * time.Second

	// DefaultSolveTimeout bounds solve and refine calls. These cannot be
	// degraded around; a timeout fails the session.
	DefaultSolveTimeout = 2 * time.Minute
)

// RunnerConfig holds pipeline runner configuration.
type RunnerConfig struct {
	ResearchTimeout time.Duration
	SolveTimeout    time.Duration
}

// Runner drives one research→solve cycle per topic. Each run executes as
// a single serialized state transition on the session: the transcript
// append, status change, and pending draft are committed together under
// the store's per-session lock.
type Runner struct {
	store      *session.Store
	researcher Researcher
	solver     Solver
	cfg        RunnerConfig
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewRunner creates a pipeline runner. Metrics may be nil.
func NewRunner(store *session.Store, researcher Researcher, solver Solver, cfg RunnerConfig, m *metrics.Metrics, logger zerolog.Logger) *Runner {
	if cfg.ResearchTimeout <= 0 {
		cfg.ResearchTimeout = DefaultResearchTimeout
	}
	if cfg.SolveTimeout <= 0 {
		cfg.SolveTimeout = DefaultSolveTimeout
	}
	return &Runner{
		store:      store,
		researcher: researcher,
		solver:     solver,
		cfg:        cfg,
		metrics:    m,
		logger:     logger.With().Str("component", "pipeline_runner").Logger(),
	}
}

// Run executes research→solve for a topic against an existing session.
// A waiting session rejects new topics (feedback is expected instead),
// and a failed session is terminal; both yield ErrInvalidState with no
// state change. Capability failures do not propagate as errors: they are
// committed as the session's terminal error status, and the returned view
// carries status "error".
func (r *Runner) Run(ctx context.Context, sessionID, topic string) (session.View, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return session.View{}, fmt.Errorf("topic is required")
	}

	logger := r.logger.With().Str("session_id", sessionID).Logger()

	view, err := r.store.Update(sessionID, func(s *session.Session) error {
		switch s.Status {
		case session.StatusWaitingApproval:
			return fmt.Errorf("%w: session is waiting for feedback, not a new topic", session.ErrInvalidState)
		case session.StatusError:
			return fmt.Errorf("%w: session has failed; start a fresh session", session.ErrInvalidState)
		case session.StatusCompleted:
			if err := s.Resume(); err != nil {
				return err
			}
		}

		s.Topic = topic
		s.Append(session.RoleUser, topic)

		findings := r.research(ctx, topic, logger)

		draft, err := r.solve(ctx, topic, findings)
		if err != nil {
			capErr := &CapabilityError{Stage: StageSolve, Err: err}
			logger.Error().Err(err).Msg("Solve capability failed")
			r.observeRun("error")
			// Committed progress (the user message) persists; the
			// failure surfaces only as the error status.
			return s.Fail(capErr)
		}

		if draft.Final {
			s.Append(session.RoleAssistant, draft.Content)
			r.observeRun("completed")
			return s.Complete()
		}

		s.Append(session.RoleAssistant, reviewMessage(draft.Content))
		r.observeRun("waiting_for_approval")
		return s.AwaitApproval(draft)
	})
	if err != nil {
		return view, err
	}

	logger.Info().Str("status", string(view.Status)).Msg("Pipeline run finished")
	return view, nil
}

// research invokes the research capability with a bounded deadline. Any
// failure degrades to empty findings: a missing citation is less harmful
// than no answer at all.
func (r *Runner) research(ctx context.Context, topic string, logger zerolog.Logger) string {
	if r.researcher == nil {
		return ""
	}

	researchCtx, cancel := context.WithTimeout(ctx, r.cfg.ResearchTimeout)
	defer cancel()

	start := time.Now()
	findings, err := r.researcher.Research(researchCtx, topic)
	r.observeCapability(StageResearch, start, err)
	if err != nil {
		logger.Warn().Err(err).Msg("Research failed, continuing with empty findings")
		return ""
	}
	return findings
}

func (r *Runner) solve(ctx context.Context, topic, findings string) (session.Draft, error) {
	solveCtx, cancel := context.WithTimeout(ctx, r.cfg.SolveTimeout)
	defer cancel()

	start := time.Now()
	draft, err := r.solver.Solve(solveCtx, topic, findings)
	r.observeCapability(StageSolve, start, err)
	return draft, err
}

func (r *Runner) observeRun(outcome string) {
	if r.metrics != nil {
		r.metrics.PipelineRunsTotal.WithLabelValues(outcome).Inc()
	}
}

func (r *Runner) observeCapability(stage string, start time.Time, err error) {
	if r.metrics == nil {
		return
	}
	r.metrics.CapabilityCallDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	if err != nil {
		r.metrics.CapabilityErrorsTotal.WithLabelValues(stage).Inc()
	}
}
