package billingcycle

import (
	"context"
	"time"
)

// Cache memoizes computed cycle boundaries keyed by subscription identity.
// Implementations may be process-local or distributed; the resolver never
// assumes in-process memory is sufficient. Concurrent misses may each
// recompute and overwrite the same key; the computation is idempotent so no
// single-flight guarantee is required.
type Cache interface {
	// Get returns the cached boundary and whether the key was present.
	Get(ctx context.Context, key string) (time.Time, bool, error)

	// Set stores a boundary. A ttl <= 0 means the value never expires.
	Set(ctx context.Context, key string, value time.Time, ttl time.Duration) error

	// Delete removes a key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}
