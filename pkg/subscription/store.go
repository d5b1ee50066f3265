package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for subscription persistence.
type Store interface {
	// Get retrieves a subscription by its ID.
	// Returns ErrSubscriptionNotFound if no subscription exists.
	Get(ctx context.Context, id uuid.UUID) (*Subscription, error)

	// Save creates or updates a subscription, keyed by its ID.
	Save(ctx context.Context, sub *Subscription) error
}
