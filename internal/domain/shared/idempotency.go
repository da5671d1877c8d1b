package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event IDs have already been handled,
// so redelivered events are swallowed instead of applied twice.
type IdempotencyStore interface {
	// MarkProcessed records the event ID with a TTL. It reports true when
	// this call was the first to record it.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig tunes duplicate suppression on event handlers.
type IdempotencyConfig struct {
	// TTL bounds how long a processed event ID is remembered. Once it
	// expires the same ID would be handled again.
	TTL time.Duration

	Enabled bool
}

// DefaultIdempotencyConfig remembers event IDs for 24 hours, which
// comfortably outlives the outbox retry window.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
