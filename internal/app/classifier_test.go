package app

import (
	"context"
	"errors"
	"testing"

	"appointment_notifier/internal/domain/appointment"
	"appointment_notifier/internal/domain/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier(ledger event.Ledger) *Classifier {
	return NewClassifier(ledger, NewTemporalValidator(1), []int64{21430526}, "55", testLog())
}

func baseRecord() appointment.Record {
	return appointment.Record{
		"id":                      "A1",
		"paciente_nome":           "João Pereira da Silva",
		"data":                    "2025-01-02",
		"horaInicio":              "10:00",
		"telefoneCelularPaciente": "(11) 98888-7777",
		"status":                  "CONFIRMADO",
	}
}

func TestClassifyConfirmation(t *testing.T) {
	ledger := newMemLedger()
	c := newTestClassifier(ledger)

	intent, err := c.Classify(context.Background(), baseRecord(), at("2025-01-01 08:00"))
	require.NoError(t, err)
	require.NotNil(t, intent)

	assert.Equal(t, event.KindConfirmation, intent.Kind)
	assert.Equal(t, event.Key{AppointmentID: "A1", Kind: event.KindConfirmation, Year: 2025}, intent.Key)
	assert.Equal(t, "5511988887777", intent.Phone)
	assert.Equal(t, "João", intent.Params["first_name"])
	assert.Equal(t, "02/01/2025", intent.Params["date"])
}

func TestClassifyIdempotentAfterRecord(t *testing.T) {
	ledger := newMemLedger()
	c := newTestClassifier(ledger)
	now := at("2025-01-01 08:00")

	intent, err := c.Classify(context.Background(), baseRecord(), now)
	require.NoError(t, err)
	require.NotNil(t, intent)
	require.NoError(t, ledger.Record(context.Background(), intent.Key))

	again, err := c.Classify(context.Background(), baseRecord(), now)
	require.NoError(t, err)
	assert.Nil(t, again, "an identical record must produce nothing once its key is recorded")
}

func TestClassifyPastRecordNeverConfirms(t *testing.T) {
	c := newTestClassifier(newMemLedger())

	rec := baseRecord()
	rec["data"] = "2024-12-20"
	intent, err := c.Classify(context.Background(), rec, at("2025-01-01 08:00"))
	require.NoError(t, err)
	assert.Nil(t, intent)
}

func TestClassifyPastCheckPrecedesLedger(t *testing.T) {
	ledger := newMemLedger()
	ledger.containsErr = errors.New("ledger down")
	c := newTestClassifier(ledger)

	rec := baseRecord()
	rec["data"] = "2024-12-20"
	// A past record must be rejected before any ledger lookup, so a
	// broken ledger cannot surface here.
	intent, err := c.Classify(context.Background(), rec, at("2025-01-01 08:00"))
	require.NoError(t, err)
	assert.Nil(t, intent)
}

func TestClassifyLedgerErrorFailsRecord(t *testing.T) {
	ledger := newMemLedger()
	ledger.containsErr = errors.New("ledger down")
	c := newTestClassifier(ledger)

	_, err := c.Classify(context.Background(), baseRecord(), at("2025-01-01 08:00"))
	assert.Error(t, err)
}

func TestClassifyCancellationWinsOverReschedule(t *testing.T) {
	c := newTestClassifier(newMemLedger())

	rec := baseRecord()
	rec["status"] = "CANCELADO PELO PACIENTE"
	rec["dataAnterior"] = "2025-01-10"
	intent, err := c.Classify(context.Background(), rec, at("2025-01-01 08:00"))
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, event.KindCancellation, intent.Kind)
}

func TestClassifyCancellationIsTerminal(t *testing.T) {
	ledger := newMemLedger()
	c := newTestClassifier(ledger)
	now := at("2025-01-01 08:00")

	require.NoError(t, ledger.Record(context.Background(),
		event.Key{AppointmentID: "A1", Kind: event.KindCancellation, Year: 2025}))

	intent, err := c.Classify(context.Background(), baseRecord(), now)
	require.NoError(t, err)
	assert.Nil(t, intent, "no intent of any kind after a recorded cancellation")

	reminder, err := c.ClassifyReminder(context.Background(), baseRecord(), now)
	require.NoError(t, err)
	assert.Nil(t, reminder)
}

func TestClassifyRescheduleToPastRejected(t *testing.T) {
	c := newTestClassifier(newMemLedger())

	rec := baseRecord()
	rec["dataAnterior"] = "2025-01-10"
	rec["data"] = "2025-01-05"
	intent, err := c.Classify(context.Background(), rec, at("2025-01-08 08:00"))
	require.NoError(t, err)
	assert.Nil(t, intent, "a reschedule whose new date is in the past must never dispatch")
}

func TestClassifyReschedule(t *testing.T) {
	c := newTestClassifier(newMemLedger())

	rec := baseRecord()
	rec["dataAnterior"] = "2024-12-28"
	intent, err := c.Classify(context.Background(), rec, at("2025-01-01 08:00"))
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, event.KindReschedule, intent.Kind)
	assert.Equal(t, "28/12/2024", intent.Params["previous_date"])
}

func TestClassifyReminderScenario(t *testing.T) {
	ledger := newMemLedger()
	c := newTestClassifier(ledger)
	now := at("2025-01-01 08:00")

	intent, err := c.ClassifyReminder(context.Background(), baseRecord(), now)
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, event.Key{AppointmentID: "A1", Kind: event.KindReminder, Year: 2025}, intent.Key)

	// Recorded; five minutes later the same record yields nothing.
	require.NoError(t, ledger.Record(context.Background(), intent.Key))
	again, err := c.ClassifyReminder(context.Background(), baseRecord(), at("2025-01-01 08:05"))
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestReminderAndConfirmationDedupIndependently(t *testing.T) {
	ledger := newMemLedger()
	c := newTestClassifier(ledger)
	now := at("2025-01-01 08:00")

	conf, err := c.Classify(context.Background(), baseRecord(), now)
	require.NoError(t, err)
	require.NotNil(t, conf)
	require.NoError(t, ledger.Record(context.Background(), conf.Key))

	rem, err := c.ClassifyReminder(context.Background(), baseRecord(), now)
	require.NoError(t, err)
	require.NotNil(t, rem, "a recorded confirmation must not block the reminder")
	assert.NotEqual(t, conf.Key, rem.Key)
}

func TestClassifyStaleYearRecordRejected(t *testing.T) {
	c := newTestClassifier(newMemLedger())

	rec := baseRecord()
	rec["id"] = "B2"
	rec["data"] = "2024-01-02"
	now := at("2025-01-02 08:00")

	intent, err := c.Classify(context.Background(), rec, now)
	require.NoError(t, err)
	assert.Nil(t, intent)

	reminder, err := c.ClassifyReminder(context.Background(), rec, now)
	require.NoError(t, err)
	assert.Nil(t, reminder, "date match without year match must not produce a reminder")
}

func TestClassifySkipsBlockedExecutor(t *testing.T) {
	c := newTestClassifier(newMemLedger())

	rec := baseRecord()
	rec["idPessoaExecutor"] = float64(21430526)
	intent, err := c.Classify(context.Background(), rec, at("2025-01-01 08:00"))
	require.NoError(t, err)
	assert.Nil(t, intent)
}

func TestClassifySkipsMissingIDAndPhone(t *testing.T) {
	c := newTestClassifier(newMemLedger())
	now := at("2025-01-01 08:00")

	noID := baseRecord()
	delete(noID, "id")
	intent, err := c.Classify(context.Background(), noID, now)
	require.NoError(t, err)
	assert.Nil(t, intent)

	noPhone := baseRecord()
	delete(noPhone, "telefoneCelularPaciente")
	intent, err = c.Classify(context.Background(), noPhone, now)
	require.NoError(t, err)
	assert.Nil(t, intent)
}

func TestClassifyUnparsableDateSkipped(t *testing.T) {
	c := newTestClassifier(newMemLedger())

	rec := baseRecord()
	rec["data"] = "amanhã"
	intent, err := c.Classify(context.Background(), rec, at("2025-01-01 08:00"))
	require.NoError(t, err)
	assert.Nil(t, intent)
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"(11) 98888-7777", "5511988887777"},
		{"5511988887777", "5511988887777"},
		{"+55 11 98888-7777", "5511988887777"},
		{"", ""},
		{"abc", ""},
	}
	for _, c := range cases {
		if got := NormalizePhone(c.in, "55"); got != c.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
