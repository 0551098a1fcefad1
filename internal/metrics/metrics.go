// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics registers the worker's Prometheus instrumentation: one
// outcome-labeled counter and one duration histogram, per message.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels the Processed counter.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// Metrics holds the worker's registered instruments, bound to one registerer
// so multiple test instances never collide on the global default registry.
type Metrics struct {
	Processed         *prometheus.CounterVec
	ProcessingSeconds prometheus.Histogram
}

// New registers the worker's instruments against registerer.
func New(registerer prometheus.Registerer) *Metrics {
	return &Metrics{
		Processed: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Name: "processed_total",
			Help: "Messages processed by the scoring worker, labeled by outcome.",
		}, []string{"outcome"}),
		ProcessingSeconds: promauto.With(registerer).NewHistogram(prometheus.HistogramOpts{
			Name:    "processing_seconds",
			Help:    "Time spent processing one message, including retries.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveSuccess records a successfully processed message.
func (m *Metrics) ObserveSuccess(seconds float64) {
	m.Processed.WithLabelValues(string(OutcomeSuccess)).Inc()
	m.ProcessingSeconds.Observe(seconds)
}

// ObserveError records a message that exhausted its retry budget.
func (m *Metrics) ObserveError(seconds float64) {
	m.Processed.WithLabelValues(string(OutcomeError)).Inc()
	m.ProcessingSeconds.Observe(seconds)
}

// Handler returns the HTTP handler to mount at the metrics endpoint.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
