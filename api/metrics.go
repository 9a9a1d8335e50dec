package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dat_http_requests_total",
		Help: "HTTP requests by path and status.",
	}, []string{"path", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dat_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	blocksSealed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dat_blocks_sealed_total",
		Help: "Blocks sealed through the mine endpoint.",
	})
)

// Metrics records request counts and latency per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}

// RegisterMetrics mounts the prometheus scrape endpoint.
func RegisterMetrics(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
