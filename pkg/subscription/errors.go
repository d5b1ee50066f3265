package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInvalidQuantity      = errors.New("subscription quantity must be at least 1")

	// ErrRemoteUpdate wraps a rejected or failed mutation at the billing
	// provider. The local record is never modified after this error.
	ErrRemoteUpdate = errors.New("billing provider rejected the update")

	// ErrNotResumable is returned when Resume is called outside the grace
	// period. It is a precondition violation, never retried.
	ErrNotResumable = errors.New("subscription is not on grace period and cannot be resumed")

	// ErrInvoiceFailed wraps a failed immediate invoice request. The quantity
	// or plan change has already been applied remotely and locally.
	ErrInvoiceFailed = errors.New("failed to invoice subscriber")

	// Provider adapter errors
	ErrMissingAPIKey              = errors.New("billing provider API key is required")
	ErrInvalidProviderEnvironment = errors.New("invalid billing provider environment")
	ErrProviderSubscriptionEmpty  = errors.New("remote subscription has no items")
)
