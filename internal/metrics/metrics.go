// Package metrics records catalog fetch and pipeline activity in a
// Prometheus registry.
package metrics

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/HerbHall/pricescout/internal/event"
)

const namespace = "pricescout"

// Metrics owns a private registry and the collectors registered in it.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	loads           *prometheus.CounterVec
	products        *prometheus.GaugeVec
	sourceFailures  *prometheus.CounterVec
	events          *prometheus.CounterVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Catalog API requests by endpoint and HTTP status.",
		}, []string{"endpoint", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Catalog API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result.",
		}, []string{"result"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "loads_total",
			Help:      "Category loads by page and outcome.",
		}, []string{"page", "outcome"}),
		products: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "products",
			Help:      "Products held by the most recent load of a view.",
		}, []string{"view"}),
		sourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "source_failures_total",
			Help:      "Category sources that failed during a multi-source load.",
		}, []string{"category"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Events published on the bus by topic.",
		}, []string{"topic"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.cacheLookups,
		m.loads,
		m.products,
		m.sourceFailures,
		m.events,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one API round trip. status 0 means the request
// failed before a response arrived.
func (m *Metrics) ObserveRequest(endpoint string, status int, d time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(endpoint, code).Inc()
	m.requestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveCache records a response cache hit or miss.
func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveLoad records a finished category load.
func (m *Metrics) ObserveLoad(page, view, outcome string, products int) {
	m.loads.WithLabelValues(page, outcome).Inc()
	m.products.WithLabelValues(view).Set(float64(products))
}

// ObserveSourceFailure records one failed source in a multi-source load.
func (m *Metrics) ObserveSourceFailure(category string) {
	m.sourceFailures.WithLabelValues(category).Inc()
}

// Subscribe counts every event published on bus until the returned
// function is called.
func (m *Metrics) Subscribe(bus event.Subscriber) func() {
	return bus.SubscribeAll(func(_ context.Context, e event.Event) {
		m.events.WithLabelValues(e.Topic).Inc()
	})
}

// Sample is one gathered series value.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Snapshot gathers the pricescout_* counters and gauges, sorted by name.
// Histograms report their sample count.
func (m *Metrics) Snapshot() ([]Sample, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, namespace+"_") {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := make(map[string]string, len(metric.GetLabel()))
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			s := Sample{Name: name, Labels: labels}
			switch {
			case metric.GetCounter() != nil:
				s.Value = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				s.Value = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				s.Value = float64(metric.GetHistogram().GetSampleCount())
			}
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
