package app

import (
	"context"
	"errors"
	"io"
	"time"

	"appointment_notifier/internal/domain/appointment"
	"appointment_notifier/internal/domain/event"

	"github.com/sirupsen/logrus"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// memLedger is an in-memory Ledger for tests.
type memLedger struct {
	keys        map[event.Key]bool
	containsErr error
	recordErr   error
}

func newMemLedger() *memLedger {
	return &memLedger{keys: make(map[event.Key]bool)}
}

func (l *memLedger) Contains(_ context.Context, key event.Key) (bool, error) {
	if l.containsErr != nil {
		return false, l.containsErr
	}
	return l.keys[key], nil
}

func (l *memLedger) Record(_ context.Context, key event.Key) error {
	if l.recordErr != nil {
		return l.recordErr
	}
	l.keys[key] = true
	return nil
}

// fakeSource serves canned pages.
type fakeSource struct {
	pages    [][]appointment.Record
	fetchErr error
	calls    int
}

func (s *fakeSource) FetchPage(_ context.Context, _, _ time.Time, page int) (*appointment.Page, error) {
	s.calls++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if page >= len(s.pages) {
		return &appointment.Page{}, nil
	}
	return &appointment.Page{
		Records: s.pages[page],
		HasMore: page < len(s.pages)-1,
	}, nil
}

type sentMessage struct {
	phone string
	text  string
}

// fakeMessenger records sends and optionally fails them all.
type fakeMessenger struct {
	fail bool
	sent []sentMessage
}

var errSendFailed = errors.New("provider rejected message")

func (m *fakeMessenger) Send(_ context.Context, phone, text string) error {
	if m.fail {
		return errSendFailed
	}
	m.sent = append(m.sent, sentMessage{phone: phone, text: text})
	return nil
}
