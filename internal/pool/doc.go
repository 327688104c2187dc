// Package pool is a thin client for the upstream browser pool's
// bootstrap HTTP API (§6.1): POST /start, POST /stop, GET /list.
//
// The core Session/Registry never call this package directly — they
// only ever receive a token from whatever external caller already
// obtained one. No other package of this module calls it either:
// cmd/server does not wire it, and the admin /sessions surface (§6.5)
// does not use it.
//
// Every call is routed through an internal/resilience.Breaker so a
// pool that is down fails fast instead of stacking up retried HTTP
// calls.
package pool
