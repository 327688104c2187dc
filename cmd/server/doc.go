// Command mediator is the browser-session mediator's entry point.
//
// It wires the process ambient stack (config, zap logging, a
// per-instance Prometheus registry) to the domain stack (the CDP
// Dialer, the Session Registry, the WebSocket protocol gateway) and
// serves:
//
//	GET  /health    liveness + session count
//	GET  /metrics   Prometheus exposition
//	GET  /sessions  admin/debug session snapshot (§6.5)
//	GET  /ws        the client-facing WebSocket protocol (§6.2)
//
// Configuration is loaded via internal/config (env vars override an
// optional CONFIG_FILE YAML file, which overrides hardcoded defaults).
//
// Signals:
//   - SIGINT, SIGTERM: graceful shutdown with a 10s drain deadline.
package main
