package event

import (
	"fmt"
	"time"
)

// Key is the deduplication identity of a notifiable event. The calendar
// year is part of the identity: two records that agree on appointment id
// and kind but whose relevant dates sit in different years are different
// events. Identity derived from month/day alone once caused repeat
// notifications at every year boundary, so the year is never dropped.
type Key struct {
	AppointmentID string
	Kind          Kind
	Year          int
}

// NewKey derives the key for an appointment id, a candidate kind and the
// relevant date of the event.
func NewKey(appointmentID string, kind Kind, relevantDate time.Time) Key {
	return Key{
		AppointmentID: appointmentID,
		Kind:          kind,
		Year:          relevantDate.Year(),
	}
}

// String renders the opaque storage form of the key.
func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%d", k.AppointmentID, k.Kind, k.Year)
}
