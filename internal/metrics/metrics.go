package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"strconv"
	"time"
)

const namespace = "currency_archive"

// Metrics methods are safe to call on a nil receiver.
type Metrics struct {
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration prometheus.Histogram

	BackfillDaysTotal   *prometheus.CounterVec
	StoreLookupsTotal   *prometheus.CounterVec
	DayCacheTotal       *prometheus.CounterVec
	ThrottlePausesTotal prometheus.Counter

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Total number of day sheet requests to the upstream rate source",
			},
			[]string{"outcome"},
		),

		UpstreamRequestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Upstream day sheet request duration including retries",
				Buckets:   prometheus.DefBuckets,
			},
		),

		BackfillDaysTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backfill_days_total",
				Help:      "Days processed by backfill, by result",
			},
			[]string{"result"},
		),

		StoreLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_lookups_total",
				Help:      "Rate store lookups, by operation and whether anything was missing",
			},
			[]string{"operation", "result"},
		),

		DayCacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "day_cache_total",
				Help:      "Day sheet cache lookups, by result",
			},
			[]string{"result"},
		),

		ThrottlePausesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "throttle_pauses_total",
				Help:      "Pauses inserted between upstream fetches",
			},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.05, .1, .5, 1, 5, 10, 30, 60, 300, 900},
			},
			[]string{"route"},
		),
	}
}

func (m *Metrics) ObserveUpstream(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(outcome).Inc()
	m.UpstreamRequestDuration.Observe(took.Seconds())
}

func (m *Metrics) BackfillDay(result string) {
	if m == nil {
		return
	}
	m.BackfillDaysTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) StoreLookup(operation string, complete bool) {
	if m == nil {
		return
	}
	result := "partial"
	if complete {
		result = "complete"
	}
	m.StoreLookupsTotal.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) DayCache(result string) {
	if m == nil {
		return
	}
	m.DayCacheTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ThrottlePause() {
	if m == nil {
		return
	}
	m.ThrottlePausesTotal.Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(took.Seconds())
}
