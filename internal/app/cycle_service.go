package app

import (
	"context"
	"fmt"
	"time"

	"appointment_notifier/internal/domain/appointment"
	"appointment_notifier/internal/domain/event"
	"appointment_notifier/internal/domain/messenger"
	"appointment_notifier/internal/observability/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// maxPages is a hard stop on pagination so a misbehaving registry can
// never spin a cycle forever.
const maxPages = 100

// CycleReport summarizes one polling cycle.
type CycleReport struct {
	Sent    int
	Ignored int
	Failed  int
}

// CycleService drives the periodic fetch-classify-dispatch sequence and
// the reminder pass. The ledger is committed only after the messenger
// confirms delivery, never before: a crashed dispatch must not leave a
// patient marked as notified, and a sent message must not be resent
// beyond the natural bound of one cycle interval.
type CycleService struct {
	source     appointment.Source
	messenger  messenger.Client
	ledger     event.Ledger
	classifier *Classifier
	metrics    *metrics.Metrics
	log        *logrus.Entry
	daysAhead  int
	leadDays   int
}

func NewCycleService(
	source appointment.Source,
	msg messenger.Client,
	ledger event.Ledger,
	classifier *Classifier,
	m *metrics.Metrics,
	log *logrus.Entry,
	daysAhead, leadDays int,
) *CycleService {
	return &CycleService{
		source:     source,
		messenger:  msg,
		ledger:     ledger,
		classifier: classifier,
		metrics:    m,
		log:        log,
		daysAhead:  daysAhead,
		leadDays:   leadDays,
	}
}

// RunCycle processes the confirmation/reschedule/cancellation window
// (today .. today+daysAhead). A fetch transport failure aborts the cycle;
// everything already dispatched stays committed, everything else is
// naturally retried next cycle.
func (s *CycleService) RunCycle(ctx context.Context, now time.Time) (CycleReport, error) {
	from := startOfDay(now)
	to := from.AddDate(0, 0, s.daysAhead)
	log := s.log.WithFields(logrus.Fields{"phase": "cycle", "run_id": shortRunID()})
	log.WithFields(logrus.Fields{"from": from.Format("2006-01-02"), "to": to.Format("2006-01-02")}).Info("cycle started")

	report, err := s.processWindow(ctx, log, "cycle", from, to, now, s.classifier.Classify)
	s.finishRun(log, "cycle", report, err)
	return report, err
}

// RunReminderPass processes the reminder window (today .. today+leadDays)
// with reminder purpose. Reminder keys are deduplicated independently of
// confirmation keys for the same appointment.
func (s *CycleService) RunReminderPass(ctx context.Context, now time.Time) (CycleReport, error) {
	from := startOfDay(now)
	to := from.AddDate(0, 0, s.leadDays)
	log := s.log.WithFields(logrus.Fields{"phase": "reminder", "run_id": shortRunID()})
	log.WithFields(logrus.Fields{"from": from.Format("2006-01-02"), "to": to.Format("2006-01-02")}).Info("reminder pass started")

	report, err := s.processWindow(ctx, log, "reminder", from, to, now, s.classifier.ClassifyReminder)
	s.finishRun(log, "reminder", report, err)
	return report, err
}

type classifyFunc func(ctx context.Context, rec appointment.Record, now time.Time) (*event.Intent, error)

// processWindow walks the paginated listing lazily: page N+1 is only
// requested after page N's records are classified and dispatched.
func (s *CycleService) processWindow(ctx context.Context, log *logrus.Entry, phase string, from, to, now time.Time, classify classifyFunc) (CycleReport, error) {
	var report CycleReport
	for page := 0; page < maxPages; page++ {
		p, err := s.source.FetchPage(ctx, from, to, page)
		if err != nil {
			return report, fmt.Errorf("fetch page %d: %w", page, err)
		}
		if len(p.Records) == 0 {
			break
		}
		for _, rec := range p.Records {
			s.processRecord(ctx, log, phase, rec, now, classify, &report)
		}
		if !p.HasMore {
			break
		}
	}
	return report, nil
}

func (s *CycleService) processRecord(ctx context.Context, log *logrus.Entry, phase string, rec appointment.Record, now time.Time, classify classifyFunc, report *CycleReport) {
	intent, err := classify(ctx, rec, now)
	if err != nil {
		// The ledger could not answer for this key. Assuming "not yet
		// processed" would risk a duplicate dispatch, so this record
		// fails for the cycle and the cycle moves on.
		report.Failed++
		s.metrics.ObserveRecord(phase, "failed")
		log.WithError(err).Error("record skipped, ledger unavailable")
		return
	}
	if intent == nil {
		report.Ignored++
		s.metrics.ObserveRecord(phase, "ignored")
		return
	}

	text, err := RenderMessage(intent.Kind, intent.Params)
	if err != nil {
		report.Failed++
		s.metrics.ObserveRecord(phase, "failed")
		log.WithField("event_key", intent.Key.String()).WithError(err).Error("message rendering failed")
		return
	}

	if err := s.messenger.Send(ctx, intent.Phone, text); err != nil {
		report.Failed++
		s.metrics.ObserveRecord(phase, "failed")
		log.WithFields(logrus.Fields{
			"event_key": intent.Key.String(),
			"phone":     intent.Phone,
		}).WithError(err).Warn("delivery failed, will retry next cycle")
		return
	}

	if err := s.ledger.Record(ctx, intent.Key); err != nil {
		// The message went out but the key was not committed; the next
		// cycle may resend once. Loud log, counted as sent.
		log.WithField("event_key", intent.Key.String()).WithError(err).Error("ledger commit failed after delivery")
	}
	report.Sent++
	s.metrics.ObserveRecord(phase, "sent")
	log.WithFields(logrus.Fields{
		"event_key": intent.Key.String(),
		"kind":      intent.Kind,
	}).Info("notification sent")
}

func (s *CycleService) finishRun(log *logrus.Entry, phase string, report CycleReport, err error) {
	fields := logrus.Fields{"sent": report.Sent, "ignored": report.Ignored, "failed": report.Failed}
	if err != nil {
		s.metrics.ObserveRun(phase, "error")
		log.WithFields(fields).WithError(err).Error("run aborted")
		return
	}
	s.metrics.ObserveRun(phase, "ok")
	log.WithFields(fields).Info("run finished")
}

func shortRunID() string {
	return uuid.NewString()[:8]
}
