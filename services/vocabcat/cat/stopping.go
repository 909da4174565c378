// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cat

import "math"

// StoppingConfig holds the thresholds the stopping engine evaluates against,
// loaded from config.go at service startup (spec.md §4.5).
type StoppingConfig struct {
	HardCap              int     // max items administered, default 40
	MinItemsForSE         int    // min items before SE rule may fire, default 15
	SEThreshold           float64 // default 0.30
	MinItemsForConvergence int    // min items before convergence rule may fire, default 20
	ConvergenceWindow      int    // number of trailing |delta theta| values, default 5
	ConvergenceThreshold   float64 // default 0.05
}

// DefaultStoppingConfig matches spec.md §4.5's literal defaults.
func DefaultStoppingConfig() StoppingConfig {
	return StoppingConfig{
		HardCap:                40,
		MinItemsForSE:          15,
		SEThreshold:            0.30,
		MinItemsForConvergence: 20,
		ConvergenceWindow:      5,
		ConvergenceThreshold:   0.05,
	}
}

// EvaluateStop checks the stopping rules in priority order: hard cap first
// (an absolute ceiling regardless of precision), then the SE threshold, then
// convergence. Pool exhaustion is signaled by the caller directly (SelectNext
// returning ok=false), not evaluated here.
func EvaluateStop(s *Session, cfg StoppingConfig) (TerminationReason, bool) {
	n := s.ItemsAdministered()
	if n >= cfg.HardCap {
		return ReasonHardCap, true
	}
	if n >= cfg.MinItemsForSE && s.SE() < cfg.SEThreshold {
		return ReasonSEThreshold, true
	}
	if n >= cfg.MinItemsForConvergence && converged(s.lastDeltaThetas, cfg) {
		return ReasonConvergence, true
	}
	return ReasonNone, false
}

// converged reports whether the trailing window of |delta theta| values is
// full and every entry is below the convergence threshold.
func converged(deltas []float64, cfg StoppingConfig) bool {
	if len(deltas) < cfg.ConvergenceWindow {
		return false
	}
	window := deltas[len(deltas)-cfg.ConvergenceWindow:]
	for _, d := range window {
		if math.Abs(d) >= cfg.ConvergenceThreshold {
			return false
		}
	}
	return true
}
