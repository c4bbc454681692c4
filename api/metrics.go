package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "reporter"

// Login attempt outcomes
const (
	loginOutcomeSuccess  = "success"
	loginOutcomeRejected = "rejected"
	loginOutcomeError    = "error"
)

// metrics HTTP server metrics
type metrics struct {
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	logins    *prometheus.CounterVec
	submitted prometheus.Counter
}

func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	instance := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests handled, by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request handling latency, by route and method",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "login_attempts_total",
				Help:      "Login attempts, by outcome",
			},
			[]string{"outcome"},
		),
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "results_submitted_total",
			Help:      "Result records stored",
		}),
	}

	for _, collector := range []prometheus.Collector{
		instance.requests, instance.latency, instance.logins, instance.submitted,
	} {
		if err := registerer.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register metrics collector [%w]", err)
		}
	}

	return instance, nil
}

func (m *metrics) observeRequest(route, method string, status int, latency time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(latency.Seconds())
}
