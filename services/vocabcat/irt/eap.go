// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package irt

import "math"

// GridSize is the number of EAP quadrature points, per spec.md §3 ("41
// equally spaced quadrature points over [-4, +4]").
const GridSize = 41

// GridMin and GridMax bound the quadrature grid.
const (
	GridMin = -4.0
	GridMax = 4.0
)

// Posterior is the discrete EAP posterior over the fixed quadrature grid.
// Theta and Mass are parallel slices of length GridSize; Mass always
// integrates (via the trapezoid-free Riemann sum with step Delta) to 1.
//
// EAP is used instead of MLE because it stays finite for all-correct and
// all-incorrect response patterns, which MLE does not (spec.md §4.1).
type Posterior struct {
	Theta []float64
	Mass  []float64
	Delta float64 // grid spacing
}

// NewPosterior builds the prior posterior: a standard normal N(0,1) density
// sampled at the 41 grid points and renormalized so the discrete mass sums
// to 1 over Delta.
func NewPosterior() *Posterior {
	theta := make([]float64, GridSize)
	mass := make([]float64, GridSize)
	delta := (GridMax - GridMin) / float64(GridSize-1)

	var total float64
	for i := 0; i < GridSize; i++ {
		t := GridMin + float64(i)*delta
		theta[i] = t
		d := normalDensity(t, 0, 1)
		mass[i] = d
		total += d
	}
	// Normalize so that sum(mass)*delta == 1.
	norm := 1 / (total * delta)
	for i := range mass {
		mass[i] *= norm
	}
	return &Posterior{Theta: theta, Mass: mass, Delta: delta}
}

func normalDensity(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5*z*z) / (sigma * math.Sqrt(2*math.Pi))
}

// Clone returns a deep copy, used when a handler needs to evaluate a
// tentative update (e.g. selector scoring) without mutating session state.
func (p *Posterior) Clone() *Posterior {
	theta := make([]float64, len(p.Theta))
	mass := make([]float64, len(p.Mass))
	copy(theta, p.Theta)
	copy(mass, p.Mass)
	return &Posterior{Theta: theta, Mass: mass, Delta: p.Delta}
}

// Update applies a single Bernoulli observation on item params to the
// posterior in place and renormalizes:
//
//	g(theta_j) <- g(theta_j) * P_k(theta_j)^y * (1-P_k(theta_j))^(1-y)
func (p *Posterior) Update(params Parameters, correct bool) {
	var total float64
	for i, t := range p.Theta {
		P := Probability(t, params)
		var lik float64
		if correct {
			lik = P
		} else {
			lik = 1 - P
		}
		p.Mass[i] *= lik
		total += p.Mass[i]
	}
	p.renormalize(total)
}

// renormalize rescales Mass so that sum(Mass)*Delta == 1. If total mass has
// collapsed to (numerically) zero — Probability applies no floor, so an
// extreme likelihood can underflow — it resets to a flat distribution rather
// than dividing by zero, satisfying the "posterior always integrates to 1"
// invariant even in pathological numerical corners.
func (p *Posterior) renormalize(total float64) {
	if total*p.Delta < 1e-300 {
		flat := 1 / (float64(len(p.Mass)) * p.Delta)
		for i := range p.Mass {
			p.Mass[i] = flat
		}
		return
	}
	norm := 1 / (total * p.Delta)
	for i := range p.Mass {
		p.Mass[i] *= norm
	}
}

// IntegralMass returns sum(Mass)*Delta, which should equal 1 within
// floating-point tolerance; exposed for invariant tests.
func (p *Posterior) IntegralMass() float64 {
	var sum float64
	for _, m := range p.Mass {
		sum += m
	}
	return sum * p.Delta
}

// EAP returns the posterior mean estimate theta-hat = sum(theta_j * g(theta_j)) * delta.
func (p *Posterior) EAP() float64 {
	var sum float64
	for i, t := range p.Theta {
		sum += t * p.Mass[i]
	}
	return sum * p.Delta
}

// SE returns the posterior standard deviation around the EAP estimate.
func (p *Posterior) SE() float64 {
	mean := p.EAP()
	var sum float64
	for i, t := range p.Theta {
		d := t - mean
		sum += d * d * p.Mass[i]
	}
	v := sum * p.Delta
	if v < 0 {
		v = 0
	}
	return math.Sqrt(v)
}

// Reliability returns 1 - SE^2, floored at 0, per spec.md §4.1.
func (p *Posterior) Reliability() float64 {
	se := p.SE()
	r := 1 - se*se
	if r < 0 {
		return 0
	}
	return r
}
