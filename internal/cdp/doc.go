// Package cdp implements the CDP Transport: one bidirectional WebSocket
// channel to a browser's DevTools endpoint, carrying request/response
// pairs keyed by a locally-allocated monotonic id alongside asynchronous,
// optionally session-tagged events.
//
// Example usage:
//
//	t, err := cdp.Dial(ctx, "ws://localhost:9000/browser?token=abc", breaker, logger, metrics)
//	t.On(func(e cdp.Event) { ... })
//	result, err := t.Call(ctx, "Page.navigate", map[string]any{"url": "https://example.com"}, sessionID)
//	t.Close()
package cdp
