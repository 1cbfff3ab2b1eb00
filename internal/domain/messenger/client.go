package messenger

import "context"

// Client delivers one rendered message to a patient phone number.
// Implementations own their retry and backoff policy; callers only see
// the final outcome.
type Client interface {
	Send(ctx context.Context, phone, text string) error
}
