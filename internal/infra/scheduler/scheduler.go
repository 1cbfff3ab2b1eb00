package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"appointment_notifier/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CycleScheduler triggers the notification cycle and the reminder pass
// on a fixed interval. Two instances of the same job never overlap: a
// trigger that fires while the previous run is still going is skipped,
// so two classification passes can never race on the same ledger key.
type CycleScheduler struct {
	cronEngine *cron.Cron
	cycles     *app.CycleService
	log        *logrus.Entry
	interval   time.Duration
	busy       atomic.Bool
}

func NewCycleScheduler(cycles *app.CycleService, intervalMin int, log *logrus.Entry) *CycleScheduler {
	return &CycleScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		cycles:     cycles,
		log:        log,
		interval:   time.Duration(intervalMin) * time.Minute,
	}
}

func (s *CycleScheduler) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	_, err := s.cronEngine.AddFunc(spec, s.runOnce)
	if err != nil {
		return fmt.Errorf("could not add cycle job: %w", err)
	}
	s.cronEngine.Start()
	s.log.WithField("interval", s.interval.String()).Info("scheduler started")
	return nil
}

// RunNow executes one cycle immediately, outside the cron cadence.
// Used at startup so the first pass does not wait a full interval.
func (s *CycleScheduler) RunNow() {
	s.runOnce()
}

func (s *CycleScheduler) runOnce() {
	if !s.busy.CompareAndSwap(false, true) {
		s.log.Warn("previous cycle still running, skipping this trigger")
		return
	}
	defer s.busy.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	now := time.Now()
	if _, err := s.cycles.RunCycle(ctx, now); err != nil {
		s.log.WithError(err).Error("cycle failed")
	}
	// The reminder pass runs to completion after the main cycle, never
	// concurrently with it.
	if _, err := s.cycles.RunReminderPass(ctx, now); err != nil {
		s.log.WithError(err).Error("reminder pass failed")
	}
}

func (s *CycleScheduler) Stop() {
	s.log.Info("stopping scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done() // wait for a running job to finish
	s.log.Info("scheduler stopped")
}
