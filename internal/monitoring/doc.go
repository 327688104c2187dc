/*
Package monitoring provides Prometheus-based metrics for the mediator.

# Overview

Each Metrics value owns its own prometheus.Registry, so the admin /metrics
endpoint (§6.5) can scope exposition to exactly this process's collectors
and tests can build independent Metrics instances without colliding on
prometheus.DefaultRegisterer.

# Metrics Groups

  - HTTP: admin surface request count/latency
  - CDP: call count/latency by method and outcome, event count by method
  - Client protocol: inbound message count by type/outcome, attached
    client gauges by kind (viewer, api)
  - Sessions: active gauge, created/closed counters
  - Screencast: frames emitted, active-screencast gauge
  - System: process uptime

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	transport, err := cdp.Dial(ctx, url, breaker, logger, metrics)
*/
package monitoring
