package entitlement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Ledger sums consumed usage units for a subscriber over a half-open time
// range [start, end). Implementations typically aggregate a usage-events
// table or an analytics store.
type Ledger interface {
	Sum(ctx context.Context, subscriberID uuid.UUID, start, end time.Time) (int, error)
}
