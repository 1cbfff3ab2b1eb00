package database

import (
	"context"
	"database/sql"
	"fmt"

	"appointment_notifier/internal/domain/event"
)

// PostgresLedger is the durable processed-event store backed by the
// `processed_events` table. Keys are insert-only; a conflicting insert
// is swallowed so Record stays idempotent.
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// EnsureSchema creates the processed_events table when missing.
func (r *PostgresLedger) EnsureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS processed_events (
                event_key      TEXT PRIMARY KEY,
                appointment_id TEXT NOT NULL,
                kind           VARCHAR(20) NOT NULL,
                event_year     INT NOT NULL,
                recorded_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
              )`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("error ensuring processed_events schema: %w", err)
	}
	return nil
}

func (r *PostgresLedger) Contains(ctx context.Context, key event.Key) (bool, error) {
	query := `SELECT 1 FROM processed_events WHERE event_key = $1`
	var one int
	err := r.db.QueryRowContext(ctx, query, key.String()).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("error checking processed event %s: %w", key, err)
	}
	return true, nil
}

func (r *PostgresLedger) Record(ctx context.Context, key event.Key) error {
	query := `INSERT INTO processed_events (event_key, appointment_id, kind, event_year)
               VALUES ($1, $2, $3, $4)
               ON CONFLICT (event_key) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, key.String(), key.AppointmentID, string(key.Kind), key.Year); err != nil {
		return fmt.Errorf("error recording processed event %s: %w", key, err)
	}
	return nil
}
