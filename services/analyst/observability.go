// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyst

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

const engineTracerName = "analyst/engine"

// =========================================================================
// Prometheus Metrics for the Engine
// =========================================================================

var (
	// asksTotal counts answered questions by the tier that answered.
	asksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "analyst",
			Subsystem: "engine",
			Name:      "asks_total",
			Help:      "Total answered questions by answering tier.",
		},
		[]string{"source"},
	)

	// askDuration measures end-to-end question latency.
	askDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "analyst",
			Subsystem: "engine",
			Name:      "ask_duration_seconds",
			Help:      "End-to-end question handling latency in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"source"},
	)

	// tierFailuresTotal counts tier attempts that fell through to the
	// next tier.
	//
	// Labels:
	//   - tier: "remote", "local", "deterministic"
	//   - code: "unavailable", "timeout", "empty", "panic"
	tierFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "analyst",
			Subsystem: "engine",
			Name:      "tier_failures_total",
			Help:      "Tier attempts that demoted to the next tier.",
		},
		[]string{"tier", "code"},
	)

	// gateRejectionsTotal counts questions rejected by the relevance gate.
	gateRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "analyst",
			Subsystem: "engine",
			Name:      "gate_rejections_total",
			Help:      "Questions rejected before reaching analytics.",
		},
	)

	// sessionsActive tracks the number of live sessions.
	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "analyst",
			Subsystem: "engine",
			Name:      "sessions_active",
			Help:      "Currently registered analysis sessions.",
		},
	)
)

func recordAsk(source datatypes.Tier, duration time.Duration) {
	asksTotal.WithLabelValues(string(source)).Inc()
	askDuration.WithLabelValues(string(source)).Observe(duration.Seconds())
}
