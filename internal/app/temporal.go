package app

import (
	"fmt"
	"time"

	"appointment_notifier/internal/domain/event"
)

// horizonDays caps how far ahead a record may sit and still be handled
// now. Records beyond the horizon are re-evaluated in later cycles as
// they approach it.
const horizonDays = 365

// TemporalValidator decides whether an appointment timestamp is eligible
// for processing at a given reference time. It is a pure function of its
// inputs; rules run in order and the first failing rule rejects.
type TemporalValidator struct {
	leadDays int
}

func NewTemporalValidator(leadDays int) *TemporalValidator {
	return &TemporalValidator{leadDays: leadDays}
}

// IsEligible applies the eligibility rules for the given purpose.
//
// Confirmations and reschedules must sit strictly in the future; this is
// checked before any ledger lookup so a lost ledger can never cause past
// records to loop. Reminders must match the lead-day target on both the
// calendar date and the year: month/day equality without year equality
// is exactly the year-boundary defect this validator exists to prevent.
func (v *TemporalValidator) IsEligible(now, appt time.Time, purpose event.Kind) bool {
	switch purpose {
	case event.KindConfirmation, event.KindReschedule:
		if !appt.After(now) {
			return false
		}
	}
	if appt.After(now.AddDate(0, 0, horizonDays)) {
		return false
	}
	if appt.Year() < now.Year()-1 {
		return false
	}
	if purpose == event.KindReminder {
		target := now.AddDate(0, 0, v.leadDays)
		if appt.Month() != target.Month() || appt.Day() != target.Day() {
			return false
		}
		if appt.Year() != target.Year() {
			return false
		}
	}
	if purpose == event.KindReschedule {
		// The new slot must land after today, date-only: reschedule
		// intents are evaluated same-day, and a target already in the
		// past must never be dispatched.
		if !startOfDay(appt).After(startOfDay(now)) {
			return false
		}
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// parseDateTime combines the registry's date ("2006-01-02") and time
// ("15:04" or "15:04:05") fields. An empty time resolves to midnight.
func parseDateTime(dateStr, timeStr string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparsable date %q: %w", dateStr, err)
	}
	if timeStr == "" {
		return day, nil
	}
	clock, err := time.Parse("15:04", clipSeconds(timeStr))
	if err != nil {
		return time.Time{}, fmt.Errorf("unparsable time %q: %w", timeStr, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local), nil
}

func clipSeconds(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}

// formatBrazilianDate turns "2006-01-02" into "02/01/2006" for message
// text, leaving unparsable input untouched.
func formatBrazilianDate(dateStr string) string {
	d, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return dateStr
	}
	return d.Format("02/01/2006")
}
