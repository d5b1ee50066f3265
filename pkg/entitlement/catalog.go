package entitlement

import (
	"context"
	"fmt"
	"sync"
)

// Plan describes the per-cycle usage entitlement of a subscription plan.
// The ID should match the billing provider's price ID so subscription
// records map onto catalog entries directly.
type Plan struct {
	ID            string
	Name          string
	UnitsPerCycle int
}

// Catalog resolves a plan identifier to its quota.
type Catalog interface {
	// Lookup returns the plan for the given ID.
	// Returns ErrPlanNotFound when the catalog has no such plan.
	Lookup(ctx context.Context, planID string) (Plan, error)
}

// inMemCatalog implements Catalog using an in-memory plan map.
type inMemCatalog struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewInMemCatalog returns an in-memory Catalog with a copy of the given plans.
func NewInMemCatalog(plans map[string]Plan) Catalog {
	plansCopy := make(map[string]Plan, len(plans))
	for id, plan := range plans {
		plansCopy[id] = plan
	}

	return &inMemCatalog{
		plans: plansCopy,
	}
}

func (c *inMemCatalog) Lookup(ctx context.Context, planID string) (Plan, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	plan, ok := c.plans[planID]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %s", ErrPlanNotFound, planID)
	}
	return plan, nil
}
