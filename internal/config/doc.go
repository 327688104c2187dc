// Package config provides 12-factor configuration management for the
// mediator process.
//
// Configuration is loaded from hardcoded defaults, optionally overlaid by
// a CONFIG_FILE YAML file, in turn overlaid by environment variables,
// which always take precedence.
//
// Configuration Sections:
//   - Server: this process's own HTTP/WS bind address
//   - Pool: the upstream browser pool endpoint to dial CDP against
//   - Screencast: quality/frame-skip for the on-demand CDP screencast
//   - Viewport: default device metrics applied on page attach
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting configuration for the attach surface
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - SERVER_HOST, SERVER_PORT
//   - BROWSER_ENDPOINT_HOST, BROWSER_ENDPOINT_PORT
//   - SCREENCAST_QUALITY, SCREENCAST_EVERY_NTH_FRAME
//   - VIEWPORT_WIDTH, VIEWPORT_HEIGHT, VIEWPORT_SCALE, VIEWPORT_MOBILE
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CONFIG_FILE (path to an optional YAML overlay)
package config
