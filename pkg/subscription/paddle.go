package subscription

import (
	"context"
	"fmt"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

// PaddleConfig holds configuration for the Paddle billing provider.
type PaddleConfig struct {
	APIKey      string `env:"PADDLE_API_KEY,required"`
	Environment string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddleProvider implements Provider on top of the Paddle Billing API.
//
// Paddle has no first-class trial-end or billing-anchor mutation; both map
// onto the subscription's next-billed-at instant, which moves the point the
// customer is charged next. Proration maps onto Paddle's proration billing
// modes.
type PaddleProvider struct {
	client *paddle.SDK
	config PaddleConfig
}

// NewPaddleProvider creates a new Paddle billing provider.
func NewPaddleProvider(config PaddleConfig) (*PaddleProvider, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	var client *paddle.SDK
	var err error

	switch strings.ToLower(config.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(config.APIKey)
	case "production", "":
		client, err = paddle.New(config.APIKey)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidProviderEnvironment, config.Environment)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return &PaddleProvider{
		client: client,
		config: config,
	}, nil
}

// Get fetches the remote subscription and normalizes it into a snapshot.
func (p *PaddleProvider) Get(ctx context.Context, providerSubID string) (*ProviderSubscription, error) {
	sub, err := p.client.SubscriptionsClient.GetSubscription(ctx, &paddle.GetSubscriptionRequest{
		SubscriptionID: providerSubID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get paddle subscription: %w", err)
	}

	if len(sub.Items) == 0 {
		return nil, ErrProviderSubscriptionEmpty
	}

	snapshot := &ProviderSubscription{
		PlanID:   sub.Items[0].Price.ID,
		Interval: mapPaddleInterval(sub.BillingCycle.Interval),
		Quantity: sub.Items[0].Quantity,
	}

	if sub.CurrentBillingPeriod != nil {
		start, err := time.Parse(time.RFC3339, sub.CurrentBillingPeriod.StartsAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse paddle period start: %w", err)
		}
		end, err := time.Parse(time.RFC3339, sub.CurrentBillingPeriod.EndsAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse paddle period end: %w", err)
		}
		snapshot.CurrentPeriodStart = start
		snapshot.CurrentPeriodEnd = end
	}

	return snapshot, nil
}

// Update applies a subscription mutation to Paddle.
func (p *PaddleProvider) Update(ctx context.Context, providerSubID string, params UpdateParams) error {
	req := &paddle.UpdateSubscriptionRequest{
		SubscriptionID: providerSubID,
	}

	if params.PlanID != "" || params.Quantity != nil {
		quantity := 1
		if params.Quantity != nil {
			quantity = *params.Quantity
		}

		planID := params.PlanID
		if planID == "" {
			// Quantity-only change still needs the current price on the item.
			current, err := p.Get(ctx, providerSubID)
			if err != nil {
				return err
			}
			planID = current.PlanID
		}

		item := paddle.NewUpdateSubscriptionItemsSubscriptionUpdateItemFromCatalog(&paddle.SubscriptionUpdateItemFromCatalog{
			PriceID:  planID,
			Quantity: quantity,
		})
		req.Items = paddle.NewPatchField([]paddle.UpdateSubscriptionItems{*item})
	}

	if params.Prorate != nil {
		mode := paddle.ProrationBillingModeProratedImmediately
		if !*params.Prorate {
			mode = paddle.ProrationBillingModeDoNotBill
		}
		req.ProrationBillingMode = paddle.NewPatchField(mode)
	}

	if params.CouponCode != "" {
		req.Discount = paddle.NewPatchField(&paddle.SubscriptionDiscountEffectiveFrom{
			ID:            params.CouponCode,
			EffectiveFrom: paddle.EffectiveFromImmediately,
		})
	}

	// A future trial end or an explicit anchor both move the next charge
	// instant. A trial end at or before now is a no-op for Paddle: billing
	// already runs on the current schedule.
	switch {
	case params.BillingCycleAnchor != nil:
		req.NextBilledAt = paddle.NewPatchField(params.BillingCycleAnchor.UTC().Format(time.RFC3339))
	case params.TrialEnd != nil && params.TrialEnd.After(time.Now().UTC()):
		req.NextBilledAt = paddle.NewPatchField(params.TrialEnd.UTC().Format(time.RFC3339))
	}

	if _, err := p.client.SubscriptionsClient.UpdateSubscription(ctx, req); err != nil {
		return fmt.Errorf("failed to update paddle subscription: %w", err)
	}

	return nil
}

// Cancel requests a Paddle-side cancellation.
func (p *PaddleProvider) Cancel(ctx context.Context, providerSubID string, params CancelParams) error {
	effectiveFrom := paddle.EffectiveFromImmediately
	if params.AtPeriodEnd {
		effectiveFrom = paddle.EffectiveFromNextBillingPeriod
	}

	if _, err := p.client.SubscriptionsClient.CancelSubscription(ctx, &paddle.CancelSubscriptionRequest{
		SubscriptionID: providerSubID,
		EffectiveFrom:  paddle.PtrTo(effectiveFrom),
	}); err != nil {
		return fmt.Errorf("failed to cancel paddle subscription: %w", err)
	}

	return nil
}

// mapPaddleInterval maps Paddle billing intervals to internal Interval values.
func mapPaddleInterval(interval paddle.Interval) Interval {
	switch interval {
	case paddle.IntervalDay:
		return IntervalDay
	case paddle.IntervalWeek:
		return IntervalWeek
	case paddle.IntervalMonth:
		return IntervalMonth
	case paddle.IntervalYear:
		return IntervalYear
	default:
		return Interval(interval)
	}
}

var _ Provider = (*PaddleProvider)(nil)
