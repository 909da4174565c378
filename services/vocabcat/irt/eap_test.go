package irt

import (
	"math"
	"testing"
)

func TestNewPosteriorIntegratesToOne(t *testing.T) {
	p := NewPosterior()
	if math.Abs(p.IntegralMass()-1) > 1e-9 {
		t.Errorf("prior posterior mass = %v, want 1", p.IntegralMass())
	}
	if len(p.Theta) != GridSize || len(p.Mass) != GridSize {
		t.Errorf("grid size = %d/%d, want %d", len(p.Theta), len(p.Mass), GridSize)
	}
}

func TestPosteriorPriorEAPIsZero(t *testing.T) {
	p := NewPosterior()
	if math.Abs(p.EAP()) > 1e-6 {
		t.Errorf("prior EAP should be ~0 (symmetric prior), got %v", p.EAP())
	}
}

func TestPosteriorUpdateStaysNormalized(t *testing.T) {
	p := NewPosterior()
	params := Parameters{A: 1.2, B: 0.3, C: 0.2}
	for i := 0; i < 10; i++ {
		p.Update(params, i%2 == 0)
		if math.Abs(p.IntegralMass()-1) > 1e-9 {
			t.Fatalf("posterior mass drifted from 1 after %d updates: %v", i+1, p.IntegralMass())
		}
	}
}

func TestPosteriorShiftsTowardCorrectAnswers(t *testing.T) {
	p := NewPosterior()
	params := Parameters{A: 1.5, B: 0.0, C: 0.2}
	for i := 0; i < 15; i++ {
		p.Update(params, true)
	}
	if p.EAP() <= 0 {
		t.Errorf("posterior should shift positive after repeated correct answers, EAP = %v", p.EAP())
	}
}

func TestPosteriorAllWrongStaysFiniteAndBounded(t *testing.T) {
	p := NewPosterior()
	params := Parameters{A: 1.5, B: 0.0, C: 0.2}
	for i := 0; i < 40; i++ {
		p.Update(params, false)
	}
	eap := p.EAP()
	if math.IsNaN(eap) || math.IsInf(eap, 0) {
		t.Fatalf("EAP must stay finite under all-wrong pattern, got %v", eap)
	}
	if eap < GridMin || eap > GridMax {
		t.Errorf("EAP must stay within grid bounds, got %v", eap)
	}
	if eap >= 0 {
		t.Errorf("EAP should shift negative after repeated wrong answers, got %v", eap)
	}
}

func TestSENeverNegative(t *testing.T) {
	p := NewPosterior()
	for i := 0; i < 5; i++ {
		p.Update(Parameters{A: 1, B: 0, C: 0.2}, true)
		if p.SE() < 0 {
			t.Fatalf("SE must never be negative, got %v", p.SE())
		}
	}
}

func TestReliabilityFloorsAtZero(t *testing.T) {
	p := NewPosterior()
	// A flat posterior over [-4,4] (renormalize's fallback) has an SE of
	// about 2.37, so 1 - SE^2 is negative and must be floored at 0.
	flat := 1 / (float64(len(p.Mass)) * p.Delta)
	for i := range p.Mass {
		p.Mass[i] = flat
	}
	r := p.Reliability()
	if r != 0 {
		t.Errorf("reliability = %v, want 0 once SE exceeds 1", r)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := NewPosterior()
	clone := p.Clone()
	clone.Update(Parameters{A: 1, B: 0, C: 0.2}, true)
	if math.Abs(p.EAP()-clone.EAP()) < 1e-9 {
		t.Error("mutating a clone must not affect the original posterior")
	}
}
