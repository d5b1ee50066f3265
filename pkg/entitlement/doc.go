// Package entitlement derives per-cycle usage entitlements (email sending
// units) from a subscription's lifecycle state, its billing cycle
// boundaries, and a usage ledger.
//
// The calculator is read-only: it never mutates the subscription or talks to
// the billing provider directly. Plan quotas come from a Catalog (in-memory
// or YAML-file backed), consumption from a Ledger, the cycle start from a
// CycleSource (pkg/billingcycle), and bought extras from the Account.
//
//	catalog, err := entitlement.NewYAMLCatalog("plans.yaml")
//	if err != nil {
//		// handle error
//	}
//
//	calc := entitlement.NewCalculator(catalog, ledger, account, resolver)
//	left, err := calc.CurrentEmailsRemaining(ctx, sub)
package entitlement
