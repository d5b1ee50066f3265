// Package redis provides a configured go-redis client factory with retry
// logic and a healthcheck, used by the distributed cycle cache.
package redis
