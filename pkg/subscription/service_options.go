package subscription

import (
	"log/slog"
	"time"
)

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// WithLogger sets the structured logger used for lifecycle events.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source. Intended for deterministic tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// SwapOption adjusts a single Swap or Resume call. These modifiers are
// per-call only and never persisted on the record.
type SwapOption func(*swapConfig)

type swapConfig struct {
	prorate bool
	coupon  string
	anchor  *time.Time
}

func newSwapConfig(opts ...SwapOption) swapConfig {
	cfg := swapConfig{prorate: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NoProrate disables proration for this change; the provider bills the full
// new price at the next cycle instead of adjusting mid-cycle.
func NoProrate() SwapOption {
	return func(c *swapConfig) {
		c.prorate = false
	}
}

// WithCoupon applies a coupon code to the provider-side update.
func WithCoupon(code string) SwapOption {
	return func(c *swapConfig) {
		c.coupon = code
	}
}

// WithBillingCycleAnchor realigns the provider's recurring charge date.
func WithBillingCycleAnchor(anchor time.Time) SwapOption {
	return func(c *swapConfig) {
		c.anchor = &anchor
	}
}
