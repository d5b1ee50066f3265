package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Service performs lifecycle transitions on subscription records. Every
// mutating operation writes to the remote billing provider first and persists
// locally only after the remote write succeeded, so a failed remote call
// never leaves the local record diverged.
//
// Callers racing on the same record are last-write-wins; strict serialization
// per subscription must be handled by the caller.
type Service struct {
	provider Provider
	store    Store
	account  Account
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates a lifecycle service.
// Panics if required collaborators are nil to fail fast during initialization.
func NewService(provider Provider, store Store, account Account, opts ...ServiceOption) *Service {
	if provider == nil {
		panic("subscription: Provider is required")
	}
	if store == nil {
		panic("subscription: Store is required")
	}
	if account == nil {
		panic("subscription: Account is required")
	}

	s := &Service{
		provider: provider,
		store:    store,
		account:  account,
		log:      slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SetQuantity pushes a new seat/unit count to the provider, then persists it.
func (s *Service) SetQuantity(ctx context.Context, sub *Subscription, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	if err := s.provider.Update(ctx, sub.ProviderSubID, UpdateParams{Quantity: &quantity}); err != nil {
		return errors.Join(ErrRemoteUpdate, err)
	}

	sub.Quantity = quantity
	sub.UpdatedAt = s.now()

	if err := s.store.Save(ctx, sub); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "subscription quantity updated",
		slog.String("subscription_id", sub.ID.String()),
		slog.Int("quantity", quantity))

	return nil
}

// IncrementQuantity raises the quantity by the given amount (minimum 1).
func (s *Service) IncrementQuantity(ctx context.Context, sub *Subscription, by int) error {
	if by < 1 {
		by = 1
	}
	return s.SetQuantity(ctx, sub, sub.Quantity+by)
}

// DecrementQuantity lowers the quantity by the given amount, never below 1.
func (s *Service) DecrementQuantity(ctx context.Context, sub *Subscription, by int) error {
	if by < 1 {
		by = 1
	}
	return s.SetQuantity(ctx, sub, max(sub.Quantity-by, 1))
}

// IncrementAndInvoice raises the quantity and immediately invoices the
// subscriber, for mid-cycle seat additions that must be billed now rather
// than prorated at the next cycle. The quantity change is already persisted
// when an ErrInvoiceFailed is returned.
func (s *Service) IncrementAndInvoice(ctx context.Context, sub *Subscription, by int) error {
	if err := s.IncrementQuantity(ctx, sub, by); err != nil {
		return err
	}

	if err := s.account.InvoiceNow(ctx, sub.SubscriberID); err != nil {
		return errors.Join(ErrInvoiceFailed, err)
	}

	return nil
}

// Swap moves the subscription to a different plan. The remote update carries
// the proration flag, optional coupon and billing-cycle anchor, the current
// quantity, and a trial directive: an active trial keeps its exact end
// instant, otherwise the trial is forced to end now so a plan change never
// grants a fresh trial. A successful swap invoices the subscriber for any
// proration charge and always reactivates a cancelled-but-graced record.
func (s *Service) Swap(ctx context.Context, sub *Subscription, planID string, opts ...SwapOption) error {
	cfg := newSwapConfig(opts...)
	now := s.now()

	if err := s.provider.Update(ctx, sub.ProviderSubID, s.planParams(sub, planID, cfg, now)); err != nil {
		return errors.Join(ErrRemoteUpdate, err)
	}

	// The remote plan has already changed at this point, so an invoice
	// failure must not block the local record from catching up. The charge
	// is settled at the next billing cycle instead.
	if err := s.account.InvoiceNow(ctx, sub.SubscriberID); err != nil {
		s.log.WarnContext(ctx, "failed to invoice proration charge after swap",
			slog.String("subscription_id", sub.ID.String()),
			slog.Any("error", err))
	}

	sub.PlanID = planID
	sub.EndsAt = nil
	sub.UpdatedAt = now

	if err := s.store.Save(ctx, sub); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "subscription swapped",
		slog.String("subscription_id", sub.ID.String()),
		slog.String("plan_id", planID))

	return nil
}

// Cancel requests a provider-side cancellation at period end. The
// subscription stays valid until EndsAt: the trial end when a trial is
// active, the remote current-period end otherwise.
func (s *Service) Cancel(ctx context.Context, sub *Subscription) error {
	now := s.now()

	if err := s.provider.Cancel(ctx, sub.ProviderSubID, CancelParams{AtPeriodEnd: true}); err != nil {
		return errors.Join(ErrRemoteUpdate, err)
	}

	var endsAt time.Time
	if sub.OnTrialAt(now) {
		endsAt = *sub.TrialEndsAt
	} else {
		remote, err := s.provider.Get(ctx, sub.ProviderSubID)
		if err != nil {
			return errors.Join(ErrRemoteUpdate, err)
		}
		endsAt = remote.CurrentPeriodEnd
	}

	sub.EndsAt = &endsAt
	sub.UpdatedAt = now

	if err := s.store.Save(ctx, sub); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "subscription cancelled at period end",
		slog.String("subscription_id", sub.ID.String()),
		slog.Time("ends_at", endsAt))

	return nil
}

// CancelNow cancels the subscription immediately, with no grace period.
func (s *Service) CancelNow(ctx context.Context, sub *Subscription) error {
	now := s.now()

	if err := s.provider.Cancel(ctx, sub.ProviderSubID, CancelParams{AtPeriodEnd: false}); err != nil {
		return errors.Join(ErrRemoteUpdate, err)
	}

	sub.EndsAt = &now
	sub.UpdatedAt = now

	if err := s.store.Save(ctx, sub); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "subscription cancelled immediately",
		slog.String("subscription_id", sub.ID.String()))

	return nil
}

// Resume reverses a scheduled cancellation while still on grace period.
// It re-applies the stored plan to the provider, with the trial directive
// recomputed the same way Swap does, then clears EndsAt. Outside the grace
// period it fails with ErrNotResumable; a fully expired subscription needs a
// brand-new one instead.
func (s *Service) Resume(ctx context.Context, sub *Subscription, opts ...SwapOption) error {
	cfg := newSwapConfig(opts...)
	now := s.now()

	if !sub.OnGracePeriodAt(now) {
		return ErrNotResumable
	}

	if err := s.provider.Update(ctx, sub.ProviderSubID, s.planParams(sub, sub.PlanID, cfg, now)); err != nil {
		return errors.Join(ErrRemoteUpdate, err)
	}

	sub.EndsAt = nil
	sub.UpdatedAt = now

	if err := s.store.Save(ctx, sub); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "subscription resumed",
		slog.String("subscription_id", sub.ID.String()))

	return nil
}

// planParams builds the provider update shared by Swap and Resume.
func (s *Service) planParams(sub *Subscription, planID string, cfg swapConfig, now time.Time) UpdateParams {
	params := UpdateParams{
		PlanID:             planID,
		Prorate:            &cfg.prorate,
		CouponCode:         cfg.coupon,
		BillingCycleAnchor: cfg.anchor,
	}

	if sub.OnTrialAt(now) {
		// Carry the exact remaining trial window over to the new plan.
		params.TrialEnd = sub.TrialEndsAt
	} else {
		// End any provider-side trial immediately so a plan change never
		// grants a fresh one.
		params.TrialEnd = &now
	}

	if sub.Quantity > 0 {
		quantity := sub.Quantity
		params.Quantity = &quantity
	}

	return params
}
