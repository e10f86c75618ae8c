// Package scheduler runs the nightly finalization pass.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"fitlevel/internal/app"
	"fitlevel/internal/domain"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Finalizer commits the levels of past days.
type Finalizer interface {
	FinalizePreviousDays(ctx context.Context, today string) (*app.FinalizeResult, error)
}

// SessionPurger removes expired login sessions.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) error
}

// Scheduler runs finalization and session cleanup on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	levels   Finalizer
	sessions SessionPurger
	now      func() time.Time
	ctx      context.Context
}

// New registers the finalization job under spec (standard five-field cron).
// sessions may be nil.
func New(spec string, levels Finalizer, sessions SessionPurger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		levels:   levels,
		sessions: sessions,
		now:      time.Now,
		ctx:      context.Background(),
	}
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(s.ctx) }); err != nil {
		return nil, fmt.Errorf("add finalize job %q: %w", spec, err)
	}
	return s, nil
}

// WithClock overrides the clock used to derive today's date.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Start runs one pass right away and then starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.RunOnce(ctx)
	s.cron.Start()
	log.WithField("next", s.Next()).Info("finalize scheduler started")
}

// Stop halts the cron loop and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Next is the time of the next scheduled run, zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunOnce finalizes the days before today. Failures are logged only.
func (s *Scheduler) RunOnce(ctx context.Context) {
	today := domain.LocalDay(s.now())
	res, err := s.levels.FinalizePreviousDays(ctx, today)
	if err != nil {
		log.WithError(err).WithField("today", today).Error("scheduled finalization failed")
	} else {
		log.WithFields(log.Fields{
			"today":     today,
			"finalized": len(res.Finalized),
			"anchor":    res.Anchor,
		}).Info("scheduled finalization done")
	}

	if s.sessions != nil {
		if err := s.sessions.PurgeExpiredSessions(ctx); err != nil {
			log.WithError(err).Warn("purge expired sessions failed")
		}
	}
}
