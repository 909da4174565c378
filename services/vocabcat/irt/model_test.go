package irt

import (
	"math"
	"testing"
)

func TestProbabilityMonotonicInTheta(t *testing.T) {
	p := Parameters{A: 1.2, B: 0.0, C: 0.2}
	prev := Probability(-4, p)
	for theta := -3.5; theta <= 4; theta += 0.5 {
		cur := Probability(theta, p)
		if cur < prev-1e-9 {
			t.Fatalf("probability should be non-decreasing in theta: at %.1f got %.6f < prev %.6f", theta, cur, prev)
		}
		prev = cur
	}
}

func TestProbabilityFloorsAtGuessing(t *testing.T) {
	p := Parameters{A: 1.0, B: 0.0, C: 0.2}
	got := Probability(-100, p)
	if got < 0.2-1e-9 {
		t.Errorf("probability should never drop below guessing floor, got %v", got)
	}
}

func TestProbabilityClampsParameters(t *testing.T) {
	raw := Parameters{A: 10, B: -100, C: 0.9}
	clamped := Parameters{A: 3.0, B: -4, C: 0.4}
	if math.Abs(Probability(0, raw)-Probability(0, clamped)) > 1e-9 {
		t.Error("Probability should clamp out-of-range parameters identically")
	}
}

func Test2PLInformationSimplifiesToClassicForm(t *testing.T) {
	p := Parameters{A: 1.5, B: 0.0, C: 0.0}
	theta := 0.3
	P := Probability(theta, p)
	want := p.A * p.A * P * (1 - P)
	got := Information(theta, p)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("2PL information = %v, want %v", got, want)
	}
}

func TestInformationZeroWhenProbabilityZero(t *testing.T) {
	// With c=0 and theta this far below b, the logistic underflows and P is
	// exactly 0, so Information must take its zero branch.
	p := Parameters{A: 3.0, B: 4, C: 0}
	if P := Probability(-1000, p); P != 0 {
		t.Fatalf("setup: P = %v, want exactly 0", P)
	}
	got := Information(-1000, p)
	if got != 0 {
		t.Errorf("information = %v, want 0 when P is 0", got)
	}
}

func TestLogLikelihoodMatchesManualSum(t *testing.T) {
	params := []Parameters{{A: 1, B: 0, C: 0}, {A: 1.2, B: 0.5, C: 0.2}}
	outcomes := []bool{true, false}
	theta := 0.1

	want := LogLikelihoodTerm(theta, params[0], true) + LogLikelihoodTerm(theta, params[1], false)
	got := LogLikelihood(theta, params, outcomes)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("LogLikelihood = %v, want %v", got, want)
	}
}

func TestLogLikelihoodFiniteForAllCorrectOrAllWrong(t *testing.T) {
	params := make([]Parameters, 20)
	outcomes := make([]bool, 20)
	for i := range params {
		params[i] = Parameters{A: 1.5, B: float64(i) - 10, C: 0.2}
		outcomes[i] = true
	}
	got := LogLikelihood(4, params, outcomes)
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Errorf("log-likelihood must stay finite under an all-correct pattern, got %v", got)
	}
}
