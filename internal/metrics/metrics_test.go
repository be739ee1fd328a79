package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersAllMetrics(t *testing.T) {
	m := New()

	m.SessionsTotal.Inc()
	m.SessionsActive.Set(3)
	m.PipelineRunsTotal.WithLabelValues("completed").Inc()
	m.CapabilityCallDuration.WithLabelValues("solve").Observe(0.5)
	m.CapabilityErrorsTotal.WithLabelValues("refine").Inc()
	m.FeedbackTotal.WithLabelValues("approved").Inc()
	m.HTTPRequestsTotal.WithLabelValues("chat", "200").Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SessionsTotal))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.SessionsActive))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PipelineRunsTotal.WithLabelValues("completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FeedbackTotal.WithLabelValues("approved")))
}

func TestNew_PrivateRegistries(t *testing.T) {
	// Two instances must not collide, so each carries its own registry.
	a := New()
	b := New()
	a.SessionsTotal.Inc()
	assert.Equal(t, float64(0), testutil.ToFloat64(b.SessionsTotal))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.SessionsTotal.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "sessions_total 1")
}
