package billingcycle

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/subscription"
)

// paidAtTTL bounds staleness of the cached cycle start to roughly one cycle.
const paidAtTTL = 30 * 24 * time.Hour

// YearlyCycleSource resolves the current billing cycle start for yearly
// plans from account-level billing history, keeping annual-plan semantics
// consistent with what the account has actually been charged for.
// subscription.Account satisfies this interface.
type YearlyCycleSource interface {
	ActiveBillingCycleStart(ctx context.Context, subscriberID uuid.UUID) (time.Time, error)
}

// Resolver computes billing and refresh cycle boundaries for a subscription,
// memoizing provider lookups through an injected cache.
type Resolver struct {
	provider subscription.Provider
	cache    Cache
	yearly   YearlyCycleSource
	log      *slog.Logger
	now      func() time.Time
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the structured logger for cache diagnostics.
func WithLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// WithClock overrides the time source. Intended for deterministic tests.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver creates a cycle resolver.
// Panics if required collaborators are nil to fail fast during initialization.
func NewResolver(provider subscription.Provider, cache Cache, yearly YearlyCycleSource, opts ...ResolverOption) *Resolver {
	if provider == nil {
		panic("billingcycle: Provider is required")
	}
	if cache == nil {
		panic("billingcycle: Cache is required")
	}
	if yearly == nil {
		panic("billingcycle: YearlyCycleSource is required")
	}

	r := &Resolver{
		provider: provider,
		cache:    cache,
		yearly:   yearly,
		log:      slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// PaidAt returns the start of the current billing cycle. The value is cached
// per subscription with a one-month TTL. Yearly plans delegate to the
// account-level cycle start; every other interval uses the provider's
// current period start directly.
func (r *Resolver) PaidAt(ctx context.Context, sub *subscription.Subscription) (time.Time, error) {
	key := paidAtKey(sub.ID)

	if cached, ok := r.cacheGet(ctx, key); ok {
		return cached, nil
	}

	remote, err := r.provider.Get(ctx, sub.ProviderSubID)
	if err != nil {
		return time.Time{}, errors.Join(ErrRemoteFetchFailed, err)
	}

	start := remote.CurrentPeriodStart
	if remote.Interval == subscription.IntervalYear {
		start, err = r.yearly.ActiveBillingCycleStart(ctx, sub.SubscriberID)
		if err != nil {
			return time.Time{}, err
		}
	}

	r.cacheSet(ctx, key, start, paidAtTTL)
	return start, nil
}

// NextBillingCycle returns the instant the next billing cycle begins: one
// second past the provider's current period end, so the value lands strictly
// inside the next period. Returns nil for subscriptions that are no longer
// valid. Once computed the boundary is cached without expiry; only a new
// provider period yields a new value. Lifecycle mutations do not invalidate
// it, see Invalidate.
func (r *Resolver) NextBillingCycle(ctx context.Context, sub *subscription.Subscription) (*time.Time, error) {
	if !sub.ValidAt(r.now()) {
		return nil, nil
	}

	key := nextBillingKey(sub.ID)

	if cached, ok := r.cacheGet(ctx, key); ok {
		return &cached, nil
	}

	remote, err := r.provider.Get(ctx, sub.ProviderSubID)
	if err != nil {
		return nil, errors.Join(ErrRemoteFetchFailed, err)
	}

	next := remote.CurrentPeriodEnd.Add(time.Second)
	r.cacheSet(ctx, key, next, 0)
	return &next, nil
}

// NextRefreshCycle returns the instant usage entitlement next resets: the
// earlier of one month past PaidAt and NextBillingCycle. Usage refresh
// cadence is at most monthly even when the billing interval is longer.
// Returns nil for subscriptions that are no longer valid. Never cached
// itself; both inputs already are.
func (r *Resolver) NextRefreshCycle(ctx context.Context, sub *subscription.Subscription) (*time.Time, error) {
	if !sub.ValidAt(r.now()) {
		return nil, nil
	}

	next, err := r.NextBillingCycle(ctx, sub)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, nil
	}

	paidAt, err := r.PaidAt(ctx, sub)
	if err != nil {
		return nil, err
	}

	refresh := paidAt.AddDate(0, 1, 0)
	if next.Before(refresh) {
		return next, nil
	}
	return &refresh, nil
}

// Invalidate drops the cached boundaries for a subscription. Call it after a
// lifecycle mutation (swap, cancel, resume) that changed the provider-side
// period; stale values otherwise survive until the next period or TTL.
func (r *Resolver) Invalidate(ctx context.Context, subscriptionID uuid.UUID) error {
	return errors.Join(
		r.cache.Delete(ctx, paidAtKey(subscriptionID)),
		r.cache.Delete(ctx, nextBillingKey(subscriptionID)),
	)
}

// cacheGet treats cache errors as misses; boundaries are recomputable.
func (r *Resolver) cacheGet(ctx context.Context, key string) (time.Time, bool) {
	value, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.log.WarnContext(ctx, "cycle cache read failed",
			slog.String("key", key),
			slog.Any("error", err))
		return time.Time{}, false
	}
	return value, ok
}

// cacheSet logs and moves on; a failed write only costs a recompute later.
func (r *Resolver) cacheSet(ctx context.Context, key string, value time.Time, ttl time.Duration) {
	if err := r.cache.Set(ctx, key, value, ttl); err != nil {
		r.log.WarnContext(ctx, "cycle cache write failed",
			slog.String("key", key),
			slog.Any("error", err))
	}
}

func paidAtKey(id uuid.UUID) string {
	return "billingcycle:paid_at:" + id.String()
}

func nextBillingKey(id uuid.UUID) string {
	return "billingcycle:next_billing:" + id.String()
}
