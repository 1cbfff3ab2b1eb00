package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"appointment_notifier/internal/domain/appointment"
	"appointment_notifier/internal/domain/event"

	"github.com/sirupsen/logrus"
)

// cancellationKeyword marks a cancelled slot in the registry status text.
const cancellationKeyword = "CANCELADO"

// Classifier maps one raw appointment record plus ledger state to zero
// or one notification intent.
type Classifier struct {
	ledger           event.Ledger
	temporal         *TemporalValidator
	blockedExecutors map[int64]bool
	countryCode      string
	log              *logrus.Entry
}

func NewClassifier(ledger event.Ledger, temporal *TemporalValidator, blockedExecutors []int64, countryCode string, log *logrus.Entry) *Classifier {
	blocked := make(map[int64]bool, len(blockedExecutors))
	for _, id := range blockedExecutors {
		blocked[id] = true
	}
	return &Classifier{
		ledger:           ledger,
		temporal:         temporal,
		blockedExecutors: blocked,
		countryCode:      countryCode,
		log:              log,
	}
}

// Classify runs the confirmation/reschedule/cancellation path for one
// record. A nil intent with nil error means the record produced nothing
// notifiable; a non-nil error means the ledger could not answer for this
// record and it must not be dispatched this cycle.
func (c *Classifier) Classify(ctx context.Context, rec appointment.Record, now time.Time) (*event.Intent, error) {
	id := rec.ID()
	if id == "" {
		c.log.Warn("record without id, skipping")
		return nil, nil
	}
	if c.blockedExecutors[rec.ExecutorID()] {
		c.log.WithField("appointment_id", id).Debug("executor blocked, skipping")
		return nil, nil
	}

	cancelled := strings.Contains(strings.ToUpper(rec.Status()), cancellationKeyword)
	kind := event.ResolveMarkers(cancelled, rec.Rescheduled())

	when, err := parseDateTime(rec.Date(), rec.StartTime())
	if err != nil {
		c.log.WithField("appointment_id", id).WithError(err).Warn("unparsable appointment date/time, skipping")
		return nil, nil
	}

	// Past records never confirm or reschedule, regardless of ledger
	// state. This runs before any ledger lookup.
	if (kind == event.KindConfirmation || kind == event.KindReschedule) && !when.After(now) {
		if kind == event.KindReschedule {
			c.log.WithFields(logrus.Fields{
				"appointment_id": id,
				"new_date":       rec.Date(),
			}).Warn("reschedule target already in the past, rejected")
		}
		return nil, nil
	}

	return c.buildIntent(ctx, rec, id, kind, when, now)
}

// ClassifyReminder runs the reminder path for one record, bypassing the
// marker logic entirely. Reminders and confirmations for the same
// appointment carry different kinds in their keys and are deduplicated
// independently.
func (c *Classifier) ClassifyReminder(ctx context.Context, rec appointment.Record, now time.Time) (*event.Intent, error) {
	id := rec.ID()
	if id == "" {
		c.log.Warn("record without id, skipping")
		return nil, nil
	}
	if c.blockedExecutors[rec.ExecutorID()] {
		return nil, nil
	}
	if strings.Contains(strings.ToUpper(rec.Status()), cancellationKeyword) {
		// A cancelled slot gets no reminder.
		return nil, nil
	}

	when, err := parseDateTime(rec.Date(), rec.StartTime())
	if err != nil {
		c.log.WithField("appointment_id", id).WithError(err).Warn("unparsable appointment date/time, skipping")
		return nil, nil
	}

	return c.buildIntent(ctx, rec, id, event.KindReminder, when, now)
}

func (c *Classifier) buildIntent(ctx context.Context, rec appointment.Record, id string, kind event.Kind, when, now time.Time) (*event.Intent, error) {
	// Cancellation is terminal per appointment id: once recorded, no
	// further intent of any kind fires for that appointment.
	if kind != event.KindCancellation {
		cancelled, err := c.ledger.Contains(ctx, event.NewKey(id, event.KindCancellation, when))
		if err != nil {
			return nil, fmt.Errorf("ledger lookup for cancellation of %s: %w", id, err)
		}
		if cancelled {
			return nil, nil
		}
	}

	key := event.NewKey(id, kind, when)
	seen, err := c.ledger.Contains(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("ledger lookup for %s: %w", key, err)
	}
	if seen {
		return nil, nil
	}

	if !c.temporal.IsEligible(now, when, kind) {
		if kind == event.KindReschedule {
			c.log.WithFields(logrus.Fields{
				"appointment_id": id,
				"new_date":       rec.Date(),
			}).Warn("reschedule target is not ahead of today, rejected")
		}
		return nil, nil
	}

	phone := NormalizePhone(rec.Phone(), c.countryCode)
	if phone == "" {
		c.log.WithField("appointment_id", id).Warn("no usable phone number, skipping")
		return nil, nil
	}

	return &event.Intent{
		Key:    key,
		Kind:   kind,
		Phone:  phone,
		Params: renderParams(rec),
	}, nil
}

// DeriveEventKey computes the ledger key a record would occupy given its
// current markers, without consulting the ledger or the temporal rules.
// The seed tool uses this to mark pre-existing appointments as handled.
func DeriveEventKey(rec appointment.Record) (event.Key, error) {
	id := rec.ID()
	if id == "" {
		return event.Key{}, fmt.Errorf("record without id")
	}
	cancelled := strings.Contains(strings.ToUpper(rec.Status()), cancellationKeyword)
	kind := event.ResolveMarkers(cancelled, rec.Rescheduled())
	when, err := parseDateTime(rec.Date(), rec.StartTime())
	if err != nil {
		return event.Key{}, err
	}
	return event.NewKey(id, kind, when), nil
}

// renderParams pulls the message render parameters from the record via
// fallback extraction.
func renderParams(rec appointment.Record) map[string]string {
	procedures := rec.Procedures()
	if procedures == "" {
		procedures = "—"
	}
	return map[string]string{
		"first_name":    firstName(rec.PatientName()),
		"date":          formatBrazilianDate(rec.Date()),
		"time":          clipSeconds(rec.StartTime()),
		"procedures":    procedures,
		"practitioner":  rec.Practitioner(),
		"address":       rec.ClinicAddress(),
		"previous_date": formatBrazilianDate(rec.PreviousDate()),
		"previous_time": clipSeconds(rec.PreviousTime()),
	}
}

func firstName(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// NormalizePhone reduces a phone to digits and prepends the country code
// to 11-digit local numbers that lack it. Empty input stays empty.
func NormalizePhone(raw, countryCode string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	phone := digits.String()
	if phone == "" {
		return ""
	}
	if countryCode != "" && len(phone) == 11 && !strings.HasPrefix(phone, countryCode) {
		phone = countryCode + phone
	}
	return phone
}
