package session

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	// DefaultRetentionAge is how long a finished session stays in the
	// store before the janitor reclaims it.
	DefaultRetentionAge = 7 * 24 * time.Hour

	// DefaultSweepSchedule runs the sweep hourly.
	DefaultSweepSchedule = "@hourly"
)

// Janitor reclaims finished sessions on a schedule. Only completed and
// error sessions are reclaimed; the core state machine never destroys a
// session itself.
type Janitor struct {
	store        *Store
	archiver     *Archiver
	retentionAge time.Duration
	schedule     string
	cron         *cron.Cron
	logger       zerolog.Logger
}

// NewJanitor creates a retention janitor. The archiver may be nil, in
// which case reclaimed sessions are dropped without an archive record.
func NewJanitor(store *Store, archiver *Archiver, retentionAge time.Duration, schedule string, logger zerolog.Logger) *Janitor {
	if retentionAge <= 0 {
		retentionAge = DefaultRetentionAge
	}
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &Janitor{
		store:        store,
		archiver:     archiver,
		retentionAge: retentionAge,
		schedule:     schedule,
		logger:       logger.With().Str("component", "session_janitor").Logger(),
	}
}

// Start schedules the periodic sweep.
func (j *Janitor) Start() error {
	if j.cron != nil {
		return fmt.Errorf("janitor is already running")
	}

	c := cron.New()
	if _, err := c.AddFunc(j.schedule, func() {
		if n := j.Sweep(); n > 0 {
			j.logger.Info().Int("reclaimed", n).Msg("Retention sweep completed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}

	c.Start()
	j.cron = c

	j.logger.Info().
		Dur("retention_age", j.retentionAge).
		Str("schedule", j.schedule).
		Msg("Session janitor started")
	return nil
}

// Stop halts the sweep schedule. A sweep already in progress finishes.
func (j *Janitor) Stop() {
	if j.cron == nil {
		return
	}
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.cron = nil
	j.logger.Info().Msg("Session janitor stopped")
}

// Sweep reclaims finished sessions older than the retention age and
// returns how many were removed.
func (j *Janitor) Sweep() int {
	cutoff := time.Now().Add(-j.retentionAge)
	reclaimed := 0

	for _, v := range j.store.Snapshots() {
		if v.Status != StatusCompleted && v.Status != StatusError {
			continue
		}
		updated, err := j.store.UpdatedAt(v.SessionID)
		if err != nil || updated.After(cutoff) {
			continue
		}

		if j.archiver != nil {
			if err := j.archiver.Archive(v); err != nil {
				j.logger.Warn().Err(err).Str("session_id", v.SessionID).Msg("Failed to archive session, keeping it")
				continue
			}
		}
		if err := j.store.Delete(v.SessionID); err == nil {
			reclaimed++
		}
	}

	return reclaimed
}
