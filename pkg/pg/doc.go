// Package pg provides a configured pgx connection pool factory, a
// healthcheck, and a goose-based migration runner for the subscription store.
package pg
