// Package billingcycle computes the time boundaries that gate per-cycle
// usage quotas: the start of the current billing cycle (paid-at), the instant
// the next billing cycle begins, and the next usage refresh instant.
//
// The remote billing provider is the authoritative source of period
// boundaries. The resolver memoizes its answers through a pluggable Cache so
// repeated entitlement checks do not hammer the provider: paid-at with a
// one-month TTL, the next-billing boundary without expiry (it is immutable
// for a given provider period). The refresh boundary is derived on every
// call from the two cached inputs, and is capped at one month past paid-at
// so usage resets monthly even under annual billing.
//
//	cache := billingcycle.NewRedisCache(redisClient, "acme:")
//	resolver := billingcycle.NewResolver(provider, cache, account)
//
//	refresh, err := resolver.NextRefreshCycle(ctx, sub)
package billingcycle
