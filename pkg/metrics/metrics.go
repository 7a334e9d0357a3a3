package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Latency of every HTTP request, by route template
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hortifood_http_request_duration_seconds",
		Help:    "Latency of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// Total number of HTTP requests served
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hortifood_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	LoginAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hortifood_login_attempts_total",
		Help: "Login attempts by account type and outcome",
	}, []string{"account_type", "outcome"})

	CartCheckouts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hortifood_cart_checkouts_total",
		Help: "Carts transitioned to completed",
	})

	EventPublishFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hortifood_event_publish_failures_total",
		Help: "Domain events that could not be published",
	}, []string{"topic"})
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestDuration,
			HTTPRequestsTotal,
			LoginAttempts,
			CartCheckouts,
			EventPublishFailures,
		)
	})
}
