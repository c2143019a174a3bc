package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "halalbiye_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "halalbiye_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "halalbiye_registrations_total",
		Help: "Successful user registrations",
	})

	logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "halalbiye_logins_total",
		Help: "Login attempts by outcome",
	}, []string{"outcome"})

	requestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "halalbiye_connection_requests_total",
		Help: "Connection requests sent, accepted and declined",
	}, []string{"status"})

	revocationCheckMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "halalbiye_token_revocation_check_duration_ms",
		Help:    "Latency of token revocation checks in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	})
)

func Registered() { registrations.Inc() }

// Login records a login attempt; outcome is "success", "unknown_user" or "bad_password".
func Login(outcome string) { logins.WithLabelValues(outcome).Inc() }

// RequestTransition counts a request entering status ("pending" when sent).
func RequestTransition(status string) { requestTransitions.WithLabelValues(status).Inc() }

// ObserveRevocationCheck records how long a revocation lookup took.
func ObserveRevocationCheck(start time.Time) {
	revocationCheckMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

// Middleware counts requests and their latency per matched route.
// Errors are rendered here so the recorded status is the one sent.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		route := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())
		httpRequests.WithLabelValues(c.Method(), route, status).Inc()
		httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return nil
	}
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
