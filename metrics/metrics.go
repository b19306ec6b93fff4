package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCounter counts all HTTP requests with labels
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	// RequestDurationHistogram records request duration in seconds
	RequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	StatusCategoryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		},
		[]string{"service", "category"},
	)

	RecordWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freelancedesk_record_writes_total",
			Help: "Records written, by entity and operation",
		},
		[]string{"entity", "op"},
	)

	DashboardComputations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "freelancedesk_dashboard_computations_total",
			Help: "Dashboard statistics computed",
		},
	)

	// SkippedAmounts counts stored amounts the dashboard could not parse.
	SkippedAmounts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freelancedesk_skipped_amounts_total",
			Help: "Stored amounts skipped during aggregation because they do not parse",
		},
		[]string{"entity"},
	)

	AssistantReplies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freelancedesk_assistant_replies_total",
			Help: "Assistant replies, by intent and source",
		},
		[]string{"intent", "source"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDurationHistogram,
			StatusCategoryCounter,
			RecordWrites,
			DashboardComputations,
			SkippedAmounts,
			AssistantReplies,
		)
	})
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	}
	return ""
}

// Middleware records request count, latency and status category per route.
func Middleware(service string) gin.HandlerFunc {
	Register()
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		statusStr := strconv.Itoa(status)

		RequestCounter.WithLabelValues(service, c.Request.Method, path, statusStr).Inc()
		RequestDurationHistogram.WithLabelValues(service, c.Request.Method, path, statusStr).
			Observe(time.Since(start).Seconds())
		if category := statusCategory(status); category != "" {
			StatusCategoryCounter.WithLabelValues(service, category).Inc()
		}
	}
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
