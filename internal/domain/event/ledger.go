package event

import "context"

// Ledger is the durable record of already-dispatched event keys. It is
// the single source of truth for "already notified": keys are recorded
// exactly once, after the provider confirmed delivery, and are never
// updated or deleted by the service. Both operations are safe to call
// repeatedly: Record for a key that already exists must be a no-op,
// never an error.
type Ledger interface {
	Contains(ctx context.Context, key Key) (bool, error)
	Record(ctx context.Context, key Key) error
}
