package application

import "context"

// IdempotencyStore deduplicates retried write requests for a limited time.
type IdempotencyStore interface {
	// TryReserve reports true when key was free and is now held,
	// false when a previous request already holds it.
	TryReserve(ctx context.Context, key string) (bool, error)
	// Release frees a key whose request failed.
	Release(ctx context.Context, key string) error
}

// NoopIdempotency reserves every key; used when IDEMPOTENCY_BACKEND=none or redis is off.
type NoopIdempotency struct{}

func (NoopIdempotency) TryReserve(context.Context, string) (bool, error) { return true, nil }
func (NoopIdempotency) Release(context.Context, string) error            { return nil }

func idempotencyKey(op, key string) string { return "idem:" + op + ":" + key }
