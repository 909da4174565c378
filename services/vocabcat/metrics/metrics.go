// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package metrics holds the Prometheus collectors for the vocabulary CAT
// service (spec.md §4.12), following the teacher's egress package: a package
// of promauto-registered vars plus small Record* helper functions, never
// exposing the collectors themselves to callers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vocabcat",
		Name:      "sessions_started_total",
		Help:      "Total CAT sessions started",
	})

	sessionsTerminatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vocabcat",
		Name:      "sessions_terminated_total",
		Help:      "Total CAT sessions terminated, by reason",
	}, []string{"reason"})

	itemsAdministeredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vocabcat",
		Name:      "items_administered_total",
		Help:      "Total items administered across all sessions",
	})

	exposureRelaxationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vocabcat",
		Name:      "exposure_relaxations_total",
		Help:      "Total times the exposure-rate cap was relaxed because the unrestricted pool was empty",
	})

	responsesRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vocabcat",
		Name:      "responses_rejected_total",
		Help:      "Total responses rejected, by error kind",
	}, []string{"kind"})

	calibrationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vocabcat",
		Name:      "calibration_runs_total",
		Help:      "Total offline calibration runs, by outcome",
	}, []string{"outcome"})

	sessionDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vocabcat",
		Name:      "session_duration_seconds",
		Help:      "Wall-clock duration of a terminated CAT session",
		Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1800},
	})

	itemsPerSession = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vocabcat",
		Name:      "items_per_session",
		Help:      "Number of items administered in a terminated CAT session",
		Buckets:   []float64{5, 10, 15, 20, 25, 30, 35, 40},
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vocabcat",
		Name:      "active_sessions",
		Help:      "Number of CAT sessions currently in progress",
	})

	bankSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vocabcat",
		Name:      "bank_size",
		Help:      "Number of items in the currently published item bank",
	})
)

// RecordSessionStarted records a new CAT session.
func RecordSessionStarted() {
	sessionsStartedTotal.Inc()
}

// RecordSessionTerminated records a session ending, with its termination
// reason and final item count and duration.
func RecordSessionTerminated(reason string, itemCount int, duration float64) {
	sessionsTerminatedTotal.WithLabelValues(reason).Inc()
	sessionDurationSeconds.Observe(duration)
	itemsPerSession.Observe(float64(itemCount))
}

// RecordItemAdministered records one item being issued to a learner.
func RecordItemAdministered() {
	itemsAdministeredTotal.Inc()
}

// RecordExposureRelaxation records the selector falling back to the relaxed
// exposure cap because the unrestricted shortlist was empty.
func RecordExposureRelaxation() {
	exposureRelaxationsTotal.Inc()
}

// RecordResponseRejected records a rejected response submission, tagged by
// the vocaberr.Kind string that classified it.
func RecordResponseRejected(kind string) {
	responsesRejectedTotal.WithLabelValues(kind).Inc()
}

// RecordCalibrationRun records one offline calibration pass, tagged
// "applied" when at least one item update was accepted and a new bank
// published, "skipped" otherwise.
func RecordCalibrationRun(outcome string) {
	calibrationRunsTotal.WithLabelValues(outcome).Inc()
}

// SetActiveSessions sets the current in-progress session gauge.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

// SetBankSize sets the current published bank size gauge.
func SetBankSize(n int) {
	bankSize.Set(float64(n))
}
