package entitlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/subscription"
)

// Account exposes the subscriber-level data the calculator needs.
// subscription.Account satisfies this interface.
type Account interface {
	AdditionalUnitsBought(ctx context.Context, subscriberID uuid.UUID) (int, error)
}

// CycleSource provides the current billing cycle start.
// billingcycle.Resolver satisfies this interface.
type CycleSource interface {
	PaidAt(ctx context.Context, sub *subscription.Subscription) (time.Time, error)
}

// Calculator derives remaining, available and spent usage unit counts from
// the subscription lifecycle, the cycle boundaries, and the usage ledger.
//
// Ledger and cycle failures on the Spent* paths are swallowed and reported
// as zero spend: entitlement display favors availability over accuracy.
// This fallback never extends to billing-affecting paths; plan catalog
// misses always propagate because no quota can be computed without a plan.
type Calculator struct {
	catalog Catalog
	ledger  Ledger
	account Account
	cycles  CycleSource
	log     *slog.Logger
	now     func() time.Time
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator)

// WithLogger sets the structured logger for swallowed ledger failures.
func WithLogger(log *slog.Logger) CalculatorOption {
	return func(c *Calculator) {
		if log != nil {
			c.log = log
		}
	}
}

// WithClock overrides the time source. Intended for deterministic tests.
func WithClock(now func() time.Time) CalculatorOption {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCalculator creates an entitlement calculator.
// Panics if required collaborators are nil to fail fast during initialization.
func NewCalculator(catalog Catalog, ledger Ledger, account Account, cycles CycleSource, opts ...CalculatorOption) *Calculator {
	if catalog == nil {
		panic("entitlement: Catalog is required")
	}
	if ledger == nil {
		panic("entitlement: Ledger is required")
	}
	if account == nil {
		panic("entitlement: Account is required")
	}
	if cycles == nil {
		panic("entitlement: CycleSource is required")
	}

	c := &Calculator{
		catalog: catalog,
		ledger:  ledger,
		account: account,
		cycles:  cycles,
		log:     slog.Default(),
		now:     func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// EmailsAvailable returns the full per-cycle quota: the entitled plan's units
// plus any additional units the subscriber bought. The entitled plan is the
// grandfathered previous plan when one is set.
func (c *Calculator) EmailsAvailable(ctx context.Context, sub *subscription.Subscription) (int, error) {
	plan, err := c.catalog.Lookup(ctx, sub.EntitledPlanID())
	if err != nil {
		return 0, err
	}

	bought, err := c.account.AdditionalUnitsBought(ctx, sub.SubscriberID)
	if err != nil {
		return 0, err
	}

	return plan.UnitsPerCycle + bought, nil
}

// EmailsSpentThisCycle returns the units consumed since the current billing
// cycle started. Returns 0 when the cycle or ledger lookup fails.
func (c *Calculator) EmailsSpentThisCycle(ctx context.Context, sub *subscription.Subscription) int {
	paidAt, err := c.cycles.PaidAt(ctx, sub)
	if err != nil {
		c.log.WarnContext(ctx, "failed to resolve cycle start, reporting zero spend",
			slog.String("subscription_id", sub.ID.String()),
			slog.Any("error", err))
		return 0
	}

	return c.ledgerSum(ctx, sub, paidAt, c.now())
}

// TotalEmailsSpent returns the lifetime unit consumption of this
// subscription record, from its creation to its end (or now while it runs).
// Returns 0 when the ledger lookup fails.
func (c *Calculator) TotalEmailsSpent(ctx context.Context, sub *subscription.Subscription) int {
	end := c.now()
	if sub.EndsAt != nil {
		end = *sub.EndsAt
	}

	return c.ledgerSum(ctx, sub, sub.CreatedAt, end)
}

// EmailsRemaining returns the quota left after lifetime consumption.
//
// TODO: reconcile the accounting periods here; this subtracts lifetime spend
// from a per-cycle quota while CurrentEmailsRemaining subtracts cycle spend
// from the plan quota. Kept as-is until the intended semantics are decided.
func (c *Calculator) EmailsRemaining(ctx context.Context, sub *subscription.Subscription) (int, error) {
	available, err := c.EmailsAvailable(ctx, sub)
	if err != nil {
		return 0, err
	}

	return max(available-c.TotalEmailsSpent(ctx, sub), 0), nil
}

// CurrentEmailsRemaining returns the plan quota left in the current cycle,
// excluding additionally bought units from both sides of the subtraction.
func (c *Calculator) CurrentEmailsRemaining(ctx context.Context, sub *subscription.Subscription) (int, error) {
	available, err := c.EmailsAvailable(ctx, sub)
	if err != nil {
		return 0, err
	}

	bought, err := c.account.AdditionalUnitsBought(ctx, sub.SubscriberID)
	if err != nil {
		return 0, err
	}

	return max(available-bought-c.EmailsSpentThisCycle(ctx, sub), 0), nil
}

// ledgerSum maps ledger failures to zero spend, logging them for visibility.
func (c *Calculator) ledgerSum(ctx context.Context, sub *subscription.Subscription, start, end time.Time) int {
	spent, err := c.ledger.Sum(ctx, sub.SubscriberID, start, end)
	if err != nil {
		c.log.WarnContext(ctx, "usage ledger query failed, reporting zero spend",
			slog.String("subscription_id", sub.ID.String()),
			slog.Time("start", start),
			slog.Time("end", end),
			slog.Any("error", err))
		return 0
	}
	return spent
}
