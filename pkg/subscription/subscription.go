package subscription

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is the locally persisted mirror of a recurring billing
// subscription held at the remote billing provider. A subscriber may own many
// subscriptions over time, but at most one current non-cancelled one.
type Subscription struct {
	ID           uuid.UUID // immutable, primary key
	SubscriberID uuid.UUID // owning account

	PlanID         string
	PreviousPlanID string // set when a swap leaves the old plan grandfathered for entitlements
	ProviderSubID  string // remote provider's subscription ID

	Quantity int // seat/unit count, always >= 1

	TrialEndsAt *time.Time
	EndsAt      *time.Time // non-nil means cancelled; [now, EndsAt) is the grace period

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CancelledAt is intentionally absent: EndsAt carries both the cancellation
// marker and the grace period deadline.

// Active reports whether the subscription is usable: never cancelled, or
// cancelled but still inside the grace period.
func (s *Subscription) Active() bool {
	return s.ActiveAt(time.Now().UTC())
}

// ActiveAt is the fixed-time variant of Active, useful in tests.
func (s *Subscription) ActiveAt(now time.Time) bool {
	return s.EndsAt == nil || now.Before(*s.EndsAt)
}

// Cancelled reports whether a cancellation has been requested, scheduled or
// already finalized. A cancelled subscription may still be on grace period.
func (s *Subscription) Cancelled() bool {
	return s.EndsAt != nil
}

// OnTrial reports whether the subscription is inside its trial window.
// The comparison is at day granularity: the trial stays active through the
// whole calendar day preceding TrialEndsAt.
func (s *Subscription) OnTrial() bool {
	return s.OnTrialAt(time.Now().UTC())
}

// OnTrialAt is the fixed-time variant of OnTrial.
func (s *Subscription) OnTrialAt(now time.Time) bool {
	if s.TrialEndsAt == nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.Before(*s.TrialEndsAt)
}

// OnGracePeriod reports whether cancellation was requested but EndsAt has not
// passed yet.
func (s *Subscription) OnGracePeriod() bool {
	return s.OnGracePeriodAt(time.Now().UTC())
}

// OnGracePeriodAt is the fixed-time variant of OnGracePeriod.
func (s *Subscription) OnGracePeriodAt(now time.Time) bool {
	return s.EndsAt != nil && now.Before(*s.EndsAt)
}

// Expired reports whether the grace period has already run out.
func (s *Subscription) Expired() bool {
	return s.ExpiredAt(time.Now().UTC())
}

// ExpiredAt is the fixed-time variant of Expired.
func (s *Subscription) ExpiredAt(now time.Time) bool {
	return s.EndsAt != nil && !now.Before(*s.EndsAt)
}

// Valid reports whether the subscription grants access: active, on trial, or
// on grace period. Active already subsumes the grace period.
func (s *Subscription) Valid() bool {
	return s.ValidAt(time.Now().UTC())
}

// ValidAt is the fixed-time variant of Valid.
func (s *Subscription) ValidAt(now time.Time) bool {
	return s.ActiveAt(now) || s.OnTrialAt(now)
}

// EntitledPlanID returns the plan whose entitlement currently applies:
// the grandfathered previous plan when set, the current plan otherwise.
func (s *Subscription) EntitledPlanID() string {
	if s.PreviousPlanID != "" {
		return s.PreviousPlanID
	}
	return s.PlanID
}
