/*
Package resilience implements a circuit breaker guarding this
mediator's outbound calls to the upstream browser pool: the CDP
WebSocket dial (internal/cdp.Dial) and the pool's HTTP start/stop/list
control API (internal/pool.Client) — see SPEC_FULL.md §6.1. A pool
instance that keeps failing to come up should not be hammered with a
reconnect attempt on every client attach.

# Overview

This package implements the circuit breaker pattern so a pool outage
degrades to fast, explicit "browser pool unavailable" failures instead
of every attach blocking on a dial timeout.

# Features

- Three-state circuit breaker (Closed, Open, Half-Open)
- Configurable failure thresholds and timeouts
- Automatic state transitions
- Concurrent request handling
- State change callbacks for monitoring
- Thread-safe operations

# Usage

	// DialSettings() returns the tuning cmd/server uses for the CDP
	// dial/pool-control breaker; construct directly for anything else.
	breaker := resilience.New("cdp-dial", resilience.DialSettings())

	transport, err := breaker.Execute(func() (interface{}, error) {
		return cdp.Dial(ctx, url, nil, logger, metrics)
	})

# States

- Closed: Normal operation, requests pass through
- Open: Service unavailable, requests fail immediately
- Half-Open: Testing if service recovered, limited requests allowed

# Pattern

The circuit breaker transitions between states based on success/failure rates:

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
