package event

import (
	"testing"
	"time"
)

func TestNewKeyCarriesCalendarYear(t *testing.T) {
	d2024 := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	d2025 := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

	k2024 := NewKey("A1", KindConfirmation, d2024)
	k2025 := NewKey("A1", KindConfirmation, d2025)

	if k2024 == k2025 {
		t.Fatal("keys for the same month/day in different years must differ")
	}
	if k2024.Year != 2024 || k2025.Year != 2025 {
		t.Errorf("unexpected years: %d, %d", k2024.Year, k2025.Year)
	}
}

func TestKeyStringForm(t *testing.T) {
	k := NewKey("A1", KindReminder, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	if got := k.String(); got != "A1:reminder:2025" {
		t.Errorf("unexpected key string: %q", got)
	}
}

func TestKeysDifferPerKind(t *testing.T) {
	d := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	if NewKey("B7", KindConfirmation, d) == NewKey("B7", KindReminder, d) {
		t.Fatal("confirmation and reminder keys for the same appointment must differ")
	}
}

func TestResolveMarkersPrecedence(t *testing.T) {
	cases := []struct {
		cancelled, rescheduled bool
		want                   Kind
	}{
		{false, false, KindConfirmation},
		{false, true, KindReschedule},
		{true, false, KindCancellation},
		{true, true, KindCancellation},
	}
	for _, c := range cases {
		if got := ResolveMarkers(c.cancelled, c.rescheduled); got != c.want {
			t.Errorf("ResolveMarkers(%v, %v) = %s, want %s", c.cancelled, c.rescheduled, got, c.want)
		}
	}
}
