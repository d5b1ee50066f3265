package subscription

import (
	"context"
	"time"
)

// Interval represents the billing frequency of a remote subscription.
type Interval string

const (
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

// Provider defines the minimal interface to the remote billing provider.
// The provider is the authoritative source of billing period boundaries;
// this package never computes periods itself. Implementations should use the
// official provider SDK and absorb provider-specific quirks internally.
type Provider interface {
	// Get fetches the current remote state of a subscription.
	Get(ctx context.Context, providerSubID string) (*ProviderSubscription, error)

	// Update applies a mutation to the remote subscription. Only non-zero
	// fields of params are sent.
	Update(ctx context.Context, providerSubID string, params UpdateParams) error

	// Cancel requests cancellation, either at the end of the current billing
	// period or immediately.
	Cancel(ctx context.Context, providerSubID string, params CancelParams) error
}

// ProviderSubscription is a snapshot of the remote subscription state.
type ProviderSubscription struct {
	PlanID             string
	Interval           Interval
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	Quantity           int
}

// UpdateParams describes a remote subscription mutation.
type UpdateParams struct {
	// PlanID switches the subscription to a different plan when non-empty.
	PlanID string

	// Quantity sets the seat/unit count when non-nil.
	Quantity *int

	// Prorate controls whether the provider prorates charges for this change.
	// Nil leaves the provider default in effect.
	Prorate *bool

	// CouponCode applies a discount to the subscription when non-empty.
	CouponCode string

	// BillingCycleAnchor realigns the recurring charge date when non-nil.
	BillingCycleAnchor *time.Time

	// TrialEnd sets the instant the trial ends. A value at or before "now"
	// tells the provider to end any trial immediately.
	TrialEnd *time.Time
}

// CancelParams describes a remote cancellation request.
type CancelParams struct {
	// AtPeriodEnd keeps the subscription running until the current billing
	// period ends. False cancels immediately.
	AtPeriodEnd bool
}
