// Copyright (c) 2026 GeoGedcom. All rights reserved.
// Author: keldaan-ag

/*
Package metrics exposes Prometheus instruments for geocoding and conversion runs.

Instruments live on a dedicated registry so tests and embedded uses never
collide with the global default registry.
*/
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keldaan-ag/gedcom-shp/internal/core/geocode"
)

const namespace = "geogedcom"

// Metrics groups the application instruments.
type Metrics struct {
	registry *prometheus.Registry

	lookups        *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
	conversions    *prometheus.CounterVec
	runDuration    prometheus.Histogram
}

// New registers every instrument on a fresh registry. Process and Go runtime
// collectors are included when withRuntime is set.
func New(withRuntime bool) *Metrics {
	metrics := &Metrics{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "geocode",
			Name:      "lookups_total",
			Help:      "Geocoding lookups by outcome.",
		}, []string{"outcome"}),
		lookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "geocode",
			Name:      "lookup_duration_seconds",
			Help:      "Latency of one geocoding lookup, pacing excluded.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Conversion runs by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Wall time of a conversion run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		}),
	}

	metrics.registry.MustRegister(metrics.lookups, metrics.lookupDuration, metrics.conversions, metrics.runDuration)
	if withRuntime {
		metrics.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return metrics
}

// RecordLookup implements [geocode.Recorder].
func (metrics *Metrics) RecordLookup(outcome geocode.Outcome, elapsed time.Duration) {
	metrics.lookups.WithLabelValues(string(outcome)).Inc()
	metrics.lookupDuration.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
}

// RecordConversion counts a finished run. Outcome is "succeeded" or "failed".
func (metrics *Metrics) RecordConversion(outcome string, elapsed time.Duration) {
	metrics.conversions.WithLabelValues(outcome).Inc()
	metrics.runDuration.Observe(elapsed.Seconds())
}

// Registry returns the underlying registry.
func (metrics *Metrics) Registry() *prometheus.Registry { return metrics.registry }

// Handler serves the registry in the Prometheus exposition format.
func (metrics *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{Registry: metrics.registry})
}
