package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/browsermux/mediator/internal/cdp"
	"github.com/browsermux/mediator/internal/config"
	"github.com/browsermux/mediator/internal/logging"
	"github.com/browsermux/mediator/internal/middleware"
	"github.com/browsermux/mediator/internal/monitoring"
	"github.com/browsermux/mediator/internal/registry"
	"github.com/browsermux/mediator/internal/resilience"
	"github.com/browsermux/mediator/internal/session"
	"github.com/browsermux/mediator/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadOrDefault()

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		logger = logging.NewDefault()
	}
	defer logger.Sync()

	metrics := monitoring.NewMetrics()
	reg := buildRegistry(cfg, logger, metrics)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	wsHandler := ws.NewHandler(reg, logger, metrics)
	debugSanitizer := bluemonday.StrictPolicy()

	router.GET("/health", healthHandler(reg))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	router.GET("/sessions", sessionsHandler(reg, metrics, debugSanitizer))
	router.GET("/ws", wsHandler.HandleConnection)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting mediator", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("shutting down gracefully")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	case err := <-errCh:
		logger.Fatal("server error", zap.Error(err))
	}
}

// buildRegistry wires a Session Registry whose Dialer opens a CDP
// transport to the browser pool's per-token WebSocket endpoint (§6.1,
// §4.1), guarded by a circuit breaker so a pool instance that keeps
// failing to come up is not hammered with reconnect attempts.
func buildRegistry(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics) *registry.Registry {
	breaker := resilience.New("cdp-dial", resilience.DialSettings())

	poolEndpoint := fmt.Sprintf("%s:%s", cfg.Pool.Host, cfg.Pool.Port)

	dial := session.Dialer(func(ctx context.Context, token string) (session.Transport, error) {
		url := fmt.Sprintf("ws://%s/browser?token=%s", poolEndpoint, token)
		return cdp.Dial(ctx, url, breaker, logger, metrics)
	})

	sessionCfg := session.Config{
		Viewport: session.ViewportConfig{
			Width:  cfg.Viewport.Width,
			Height: cfg.Viewport.Height,
			Scale:  cfg.Viewport.Scale,
			Mobile: cfg.Viewport.Mobile,
		},
		Screencast: session.ScreencastConfig{
			Quality:       cfg.Screencast.Quality,
			EveryNthFrame: cfg.Screencast.EveryNthFrame,
		},
	}

	return registry.New(sessionCfg, dial, logger, metrics)
}

// healthHandler reports liveness plus the current session count
// (§6.5); it never touches the browser pool itself, so it stays cheap
// enough to poll frequently.
func healthHandler(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"sessions": reg.SessionCount(),
		})
	}
}

// sessionsHandler exposes the admin/debug session snapshot (§6.5), with
// free-text fields (URL) run through the bluemonday sanitizer before
// they leave the process, since a page title or URL fragment can
// originate from an untrusted page the client navigated to.
func sessionsHandler(reg *registry.Registry, metrics *monitoring.Metrics, sanitizer *bluemonday.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := reg.Snapshot()
		sessions := make([]gin.H, 0, len(snap))
		for _, s := range snap {
			sessions = append(sessions, gin.H{
				"token":          s.Token,
				"clientCount":    s.ClientCount,
				"url":            sanitizer.Sanitize(s.URL),
				"activeTargetId": s.ActiveTargetID,
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"sessions":  sessions,
			"aggregate": metrics.Snapshot(),
		})
	}
}
