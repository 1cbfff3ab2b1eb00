package event

// Kind is the category of a patient notification.
type Kind string

const (
	KindConfirmation Kind = "confirmation"
	KindReschedule   Kind = "reschedule"
	KindCancellation Kind = "cancellation"
	KindReminder     Kind = "reminder"
)

// markerResolution maps the raw record markers (cancelled, rescheduled)
// to the candidate kind. A cancelled slot is never also confirmed or
// rescheduled, so cancellation wins over a conflicting reschedule marker.
var markerResolution = map[[2]bool]Kind{
	{true, true}:   KindCancellation,
	{true, false}:  KindCancellation,
	{false, true}:  KindReschedule,
	{false, false}: KindConfirmation,
}

// ResolveMarkers returns the candidate kind for a record given its
// cancellation and reschedule markers.
func ResolveMarkers(cancelled, rescheduled bool) Kind {
	return markerResolution[[2]bool{cancelled, rescheduled}]
}
