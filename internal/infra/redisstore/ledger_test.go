package redisstore

import (
	"context"
	"testing"
	"time"

	"appointment_notifier/internal/domain/event"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLedger(t *testing.T) *RedisLedger {
	t.Helper()
	srv := miniredis.RunT(t)
	return NewRedisLedger(redis.NewClient(&redis.Options{Addr: srv.Addr()}))
}

func TestRedisLedgerRoundTrip(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	key := event.NewKey("A1", event.KindReminder, time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC))

	got, err := ledger.Contains(ctx, key)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if got {
		t.Fatal("fresh ledger must not contain the key")
	}

	if err := ledger.Record(ctx, key); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, err = ledger.Contains(ctx, key)
	if err != nil {
		t.Fatalf("Contains after Record: %v", err)
	}
	if !got {
		t.Fatal("recorded key must be present")
	}
}

func TestRedisLedgerRecordIsIdempotent(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	key := event.NewKey("A1", event.KindConfirmation, time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC))

	if err := ledger.Record(ctx, key); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := ledger.Record(ctx, key); err != nil {
		t.Fatalf("duplicate Record must be a no-op, got: %v", err)
	}
}

func TestRedisLedgerKeysAreYearScoped(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	k2024 := event.NewKey("A1", event.KindReminder, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	k2025 := event.NewKey("A1", event.KindReminder, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))

	if err := ledger.Record(ctx, k2024); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, err := ledger.Contains(ctx, k2025)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if got {
		t.Fatal("a key recorded in 2024 must not shadow the 2025 event")
	}
}
