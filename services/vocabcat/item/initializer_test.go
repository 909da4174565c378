package item

import "testing"

func TestInitializeParametersClamped(t *testing.T) {
	meta := RawMetadata{CEFRBand: 5, FrequencyDecile: 10, GSEBand: 5, CurriculumBand: 4, LexileBand: 5, RenderingIsFourMC: true}
	a, b, c := InitializeParameters(meta)
	if a < 0.5 || a > 2.0 {
		t.Errorf("a out of range: %v", a)
	}
	if b < -2.5 || b > 2.5 {
		t.Errorf("b out of range: %v", b)
	}
	if c != 0.20 {
		t.Errorf("c should be fixed rendering default 0.20 for four-option MCQ, got %v", c)
	}
}

func TestInitializeParametersBinaryGuessing(t *testing.T) {
	_, _, c := InitializeParameters(RawMetadata{RenderingIsFourMC: false})
	if c != 0.40 {
		t.Errorf("binary rendering should fix c=0.40, got %v", c)
	}
}

func TestDeriveAIncrementsAreBounded(t *testing.T) {
	base := RawMetadata{RenderingIsFourMC: true}
	a0, _, _ := InitializeParameters(base)

	rich := base
	rich.TopicSpecific = true
	rich.RichSynonymGraph = true
	rich.RarePOS = true
	a1, _, _ := InitializeParameters(rich)

	if a1 <= a0 {
		t.Errorf("richer metadata should raise discrimination: got a0=%v a1=%v", a0, a1)
	}
	if a1 > 2.0 {
		t.Errorf("a must stay clamped at 2.0, got %v", a1)
	}
}

func TestDeriveBMonotonicInCEFR(t *testing.T) {
	low := RawMetadata{CEFRBand: 1, FrequencyDecile: 5, GSEBand: 1, CurriculumBand: 1, LexileBand: 1, RenderingIsFourMC: true}
	high := RawMetadata{CEFRBand: 5, FrequencyDecile: 5, GSEBand: 5, CurriculumBand: 4, LexileBand: 5, RenderingIsFourMC: true}
	_, bLow, _ := InitializeParameters(low)
	_, bHigh, _ := InitializeParameters(high)
	if bHigh <= bLow {
		t.Errorf("higher-band metadata should produce higher difficulty: bLow=%v bHigh=%v", bLow, bHigh)
	}
}
