package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Account exposes the subscriber-level operations this package delegates to
// the owning account entity. Implementations typically live in the
// application's account/billing layer.
type Account interface {
	// AdditionalUnitsBought returns the number of extra usage units the
	// subscriber purchased on top of the plan quota.
	AdditionalUnitsBought(ctx context.Context, subscriberID uuid.UUID) (int, error)

	// InvoiceNow triggers an immediate out-of-band invoice for the
	// subscriber, settling pending proration or mid-cycle charges.
	InvoiceNow(ctx context.Context, subscriberID uuid.UUID) error

	// ActiveBillingCycleStart resolves the start of the subscriber's current
	// billing cycle from account-level billing history. Used for yearly
	// plans, where the provider's period start spans the whole year.
	ActiveBillingCycleStart(ctx context.Context, subscriberID uuid.UUID) (time.Time, error)
}
