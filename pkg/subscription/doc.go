// Package subscription tracks the lifecycle of a recurring billing
// subscription that is mirrored between a locally persisted record and a
// remote billing provider.
//
// The package owns the state machine governing validity, cancellation and
// resumption, and the plan-swap algorithm (proration, trial preservation,
// quantity carry-over). Billing-period boundaries and usage entitlements
// derived from this lifecycle live in pkg/billingcycle and pkg/entitlement.
//
// # Architecture
//
//   - Subscription: the persisted record with pure state predicates
//   - Service: lifecycle transitions (quantity, swap, cancel, resume)
//   - Provider: remote billing provider abstraction (Paddle adapter included)
//   - Store: subscription persistence (Postgres adapter included)
//   - Account: subscriber-level collaborator (invoicing, bought units)
//
// Every mutating operation writes to the provider first and persists locally
// only on remote success, so the local record never diverges from a failed
// remote write.
//
// # States
//
// A subscription is in one of {active, trialing, grace period, cancelled}.
// Trialing modifies active/grace period rather than excluding them: a
// subscription cancelled during its trial sits on grace period with EndsAt
// equal to the trial end. The only transition out of grace period besides
// natural expiry is Resume. A fully expired subscription cannot be
// reactivated here; the account layer creates a new one.
//
// # Quick Start
//
//	provider, err := subscription.NewPaddleProvider(paddleCfg)
//	if err != nil {
//		// handle error
//	}
//
//	store := subscription.NewPostgresStore(pool)
//	svc := subscription.NewService(provider, store, account)
//
//	// Move a subscriber to a bigger plan, prorated, trial preserved.
//	if err := svc.Swap(ctx, sub, "price_pro_monthly"); err != nil {
//		// handle error
//	}
//
//	// Schedule a cancellation; the subscriber keeps access until EndsAt.
//	if err := svc.Cancel(ctx, sub); err != nil {
//		// handle error
//	}
//
//	if sub.OnGracePeriod() {
//		err = svc.Resume(ctx, sub) // change of heart
//	}
package subscription
