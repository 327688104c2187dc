package monitoring

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware recording admin HTTP request
// metrics (§6.5).
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		c.Next()

		metrics.RecordHTTPRequest(method, path, c.Writer.Status(), time.Since(start))
	}
}

// Timer measures an operation's duration and records it as a CDP call
// on Stop.
type Timer struct {
	start   time.Time
	metrics *Metrics
	method  string
}

// NewTimer starts a timer for a named CDP method.
func NewTimer(metrics *Metrics, method string) *Timer {
	return &Timer{start: time.Now(), metrics: metrics, method: method}
}

// Stop stops the timer and records the duration under the given outcome.
func (t *Timer) Stop(outcome string) {
	t.metrics.RecordCDPCall(t.method, time.Since(t.start), outcome)
}
