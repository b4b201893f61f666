package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EnrichmentMetrics holds the instrumentation for the order enrichment
// workflow and its downstream lookups. All record methods are no-ops on a nil
// receiver so instrumentation stays optional in tests.
type EnrichmentMetrics struct {
	enrichmentRequests prometheus.Counter
	enrichmentFailures *prometheus.CounterVec

	lookupRetries  prometheus.Counter
	lookupDuration *prometheus.HistogramVec
}

// NewEnrichmentMetrics registers the metrics with the default registerer.
func NewEnrichmentMetrics() *EnrichmentMetrics {
	return newEnrichmentMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newEnrichmentMetricsWithRegisterer(registerer prometheus.Registerer) *EnrichmentMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &EnrichmentMetrics{
		enrichmentRequests: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_enrichment_requests_total",
			Help: "Total number of order enrichment requests",
		}),
		enrichmentFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_enrichment_failures_total",
			Help: "Total number of failed order enrichment requests",
		}, []string{"reason"}),
		lookupRetries: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_lookup_retries_total",
			Help: "Total number of retried downstream lookup attempts",
		}),
		lookupDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "orders_lookup_duration_seconds",
			Help:    "Duration of downstream lookups in seconds, retries included",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"target"}),
	}
}

// RecordEnrichmentRequest counts one enrichment request.
func (m *EnrichmentMetrics) RecordEnrichmentRequest() {
	if m == nil {
		return
	}
	m.enrichmentRequests.Inc()
}

// RecordEnrichmentFailure counts a failed enrichment with its reason.
func (m *EnrichmentMetrics) RecordEnrichmentFailure(reason string) {
	if m == nil {
		return
	}
	m.enrichmentFailures.WithLabelValues(reason).Inc()
}

// RecordLookupRetry counts a retried lookup attempt.
func (m *EnrichmentMetrics) RecordLookupRetry() {
	if m == nil {
		return
	}
	m.lookupRetries.Inc()
}

// ObserveLookupDuration records how long a lookup took end to end.
func (m *EnrichmentMetrics) ObserveLookupDuration(target string, d time.Duration) {
	if m == nil {
		return
	}
	m.lookupDuration.WithLabelValues(target).Observe(d.Seconds())
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}
