package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/harun/mathwise/internal/metrics"
	"github.com/harun/mathwise/pkg/session"
)

// Controller is the public operation surface: start or continue a
// conversation, submit feedback, and read state. It owns no state of its
// own; everything lives in the injected store.
type Controller struct {
	store   *session.Store
	runner  *Runner
	gate    *Gate
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewController composes the store, runner, and gate behind one surface.
func NewController(store *session.Store, runner *Runner, gate *Gate, m *metrics.Metrics, logger zerolog.Logger) *Controller {
	return &Controller{
		store:   store,
		runner:  runner,
		gate:    gate,
		metrics: m,
		logger:  logger.With().Str("component", "controller").Logger(),
	}
}

// StartOrContinue drives one pipeline run. With no session id a new
// session is created; with one, the topic is a new query against an
// existing non-waiting session. The runner is driven synchronously: the
// returned view reflects the finished run.
func (c *Controller) StartOrContinue(ctx context.Context, topic, sessionID string) (session.View, error) {
	if strings.TrimSpace(topic) == "" {
		return session.View{}, fmt.Errorf("topic is required")
	}

	if sessionID == "" {
		created := c.store.Create()
		sessionID = created.SessionID
		c.logger.Info().Str("session_id", sessionID).Msg("New session started")
		if c.metrics != nil {
			c.metrics.SessionsTotal.Inc()
			c.metrics.SessionsActive.Set(float64(c.store.Len()))
		}
	}

	return c.runner.Run(ctx, sessionID, topic)
}

// SubmitFeedback delegates to the approval gate.
func (c *Controller) SubmitFeedback(ctx context.Context, sessionID, text string) (session.View, error) {
	return c.gate.SubmitFeedback(ctx, sessionID, text)
}

// GetState returns a read-only snapshot. It never mutates and two
// consecutive calls with no intervening mutation return identical views.
func (c *Controller) GetState(sessionID string) (session.View, error) {
	return c.store.Get(sessionID)
}

// ActiveSessions returns the number of live sessions.
func (c *Controller) ActiveSessions() int {
	return c.store.Len()
}

// Delete removes a session from the store.
func (c *Controller) Delete(sessionID string) error {
	if err := c.store.Delete(sessionID); err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.SessionsActive.Set(float64(c.store.Len()))
	}
	return nil
}
