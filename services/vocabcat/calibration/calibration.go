// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package calibration implements the offline, admin-triggered recalibration
// job: a Bayesian MAP update of each well-observed item's discrimination and
// difficulty, guarded by bounded acceptance, and the atomic swap-and-publish
// of the resulting item bank (spec.md §4.10).
//
// Grounded on the teacher's router cache: the same atomic.Pointer swap
// pattern used there to republish a freshly rebuilt lookup structure without
// ever exposing a partially-built one to readers.
package calibration

import (
	"math"
	"sync/atomic"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/irt"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/item"
)

// DefaultThreshold is the minimum archived-response count an item needs
// before it is eligible for recalibration (spec.md §4.10).
const DefaultThreshold = 200

// ThreePLSessionThreshold is the total-sessions count at which 3PL
// activation becomes possible (spec.md §4.10). See DESIGN.md Open Question
// 3 for what "activation" does and does not change.
const ThreePLSessionThreshold = 5000

// Guard bounds on accepted parameter movement per run (spec.md §4.10).
const (
	maxDeltaB = 0.5
	maxDeltaA = 0.3
)

// priorVariance is the small variance assumed for the current parameters as
// a MAP prior, per spec.md §4.10 ("prior = current parameters with small
// variance").
const priorVariance = 0.1

// ObservedResponse is one archived response to an item, carrying the
// learner theta estimate recorded at response time — exactly the inputs the
// MAP likelihood needs.
type ObservedResponse struct {
	Theta   float64
	Correct bool
}

// BankPublisher atomically publishes calibrated item banks. Service.Bank()
// reads through this pointer; SelectNext and the reporter always see either
// the prior generation or the fully-built next one, never a partial update.
type BankPublisher struct {
	current atomic.Pointer[item.Bank]
}

// NewBankPublisher seeds the publisher with an initial bank.
func NewBankPublisher(initial *item.Bank) *BankPublisher {
	p := &BankPublisher{}
	p.current.Store(initial)
	return p
}

// Bank returns the currently published bank.
func (p *BankPublisher) Bank() *item.Bank {
	return p.current.Load()
}

// Publish atomically swaps in a newly built bank.
func (p *BankPublisher) Publish(b *item.Bank) {
	p.current.Store(b)
}

// ItemUpdate is one item's calibration outcome.
type ItemUpdate struct {
	ItemID     int
	OldA, OldB float64
	NewA, NewB float64
	Accepted   bool
	Reason     string // why the update was accepted/rejected, for the calibration run log
}

// Run recalibrates every item with at least DefaultThreshold responses in
// responsesByItem, producing a new Bank (old items plus updated ones,
// version incremented) and a per-item log of what happened. Items below the
// threshold, or with no entry in responsesByItem, pass through unchanged.
func Run(bank *item.Bank, responsesByItem map[int][]ObservedResponse, threshold int) (*item.Bank, []ItemUpdate) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	all := bank.All()
	updated := make([]item.Item, len(all))
	copy(updated, all)
	var log []ItemUpdate

	for i, it := range updated {
		obs := responsesByItem[it.ID]
		if len(obs) < threshold {
			continue
		}
		newA, newB := mapUpdate(it.A, it.B, obs)
		dA, dB := newA-it.A, newB-it.B
		if math.Abs(dA) > maxDeltaA || math.Abs(dB) > maxDeltaB {
			log = append(log, ItemUpdate{ItemID: it.ID, OldA: it.A, OldB: it.B, NewA: it.A, NewB: it.B,
				Accepted: false, Reason: "delta exceeded guard bounds"})
			continue
		}
		updated[i].A = newA
		updated[i].B = newB
		log = append(log, ItemUpdate{ItemID: it.ID, OldA: it.A, OldB: it.B, NewA: newA, NewB: newB, Accepted: true, Reason: "within guard bounds"})
	}

	return item.NewBank(updated, bank.Version()+1), log
}

// mapUpdate performs a simple gradient-ascent MAP step on (a, b): one Newton
// step of the log-posterior (log-likelihood plus a Gaussian log-prior
// centered at the current parameters) evaluated at the observed responses.
// This is the "simple Bayesian update" spec.md §4.10 calls for, not a full
// numerical optimizer — a single step is sufficient given the guard bounds
// reject anything that moved too far anyway.
func mapUpdate(a, b float64, obs []ObservedResponse) (newA, newB float64) {
	var gradA, gradB, hessA, hessB float64
	for _, o := range obs {
		p := irt.Probability(o.Theta, irt.Parameters{A: a, B: b, C: 0})
		y := 0.0
		if o.Correct {
			y = 1.0
		}
		err := y - p
		// d/db of 2PL log-likelihood is approximately -a*(y-P); d/da is
		// approximately (theta-b)*(y-P). Using P(1-P) as the (always
		// non-negative) curvature proxy keeps the Newton step stable without
		// computing the full second derivative.
		w := p * (1 - p)
		if w < 1e-6 {
			w = 1e-6
		}
		gradB += -a * err
		hessB += a * a * w
		gradA += (o.Theta - b) * err
		hessA += (o.Theta - b) * (o.Theta - b) * w
	}
	newB = b
	if hessB > 1e-9 {
		newB = b + gradB/(hessB+1/priorVariance)
	}
	newA = a
	if hessA > 1e-9 {
		newA = a + gradA/(hessA+1/priorVariance)
	}
	return newA, newB
}

// ThreePLEnabled reports whether 3PL activation is unlocked at the given
// total session count (spec.md §4.10).
func ThreePLEnabled(totalSessions int64) bool {
	return totalSessions >= ThreePLSessionThreshold
}
