// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package item

// RawMetadata is the ingestion-agnostic input to the parameter initializer.
// How it is produced (CSV, JSON, a database row) is out of this engine's
// scope per spec.md §1; only the derivation from metadata to IRT parameters
// is specified.
type RawMetadata struct {
	CEFRBand          int // 1..5, A1..C1
	FrequencyDecile   int // 1..10, 1 = most frequent
	GSEBand           int // 1..5
	CurriculumBand    int // 1..4
	LexileBand        int // 1..5
	TopicSpecific     bool
	RichSynonymGraph  bool
	RarePOS           bool
	RenderingIsFourMC bool // true: four-option MCQ (c=0.20); false: binary (c=0.40)
}

// ordinalWeights are the five-way weighted average used to derive b, per
// spec.md §4.2. Equal weighting keeps the derivation simple and auditable;
// nothing in the source calls for differential weights.
var ordinalWeights = [5]float64{0.2, 0.2, 0.2, 0.2, 0.2}

// InitializeParameters derives (a, b, c) from raw metadata, purely and
// deterministically (spec.md §4.2: "recomputed from metadata on cold
// start").
func InitializeParameters(meta RawMetadata) (a, b, c float64) {
	b = deriveB(meta)
	a = deriveA(meta)
	c = deriveC(meta)
	return a, b, c
}

// deriveB scales a weighted average of five 1..5-ish ordinal encodings to
// [-2.5, 2.5].
func deriveB(meta RawMetadata) float64 {
	// Normalize each ordinal onto a common 1..5 scale before weighting; the
	// frequency decile (1..10) is halved to align its range with the rest.
	encodings := [5]float64{
		float64(meta.CEFRBand),
		(float64(meta.FrequencyDecile) + 1) / 2,
		float64(meta.GSEBand),
		scaleCurriculum(meta.CurriculumBand),
		float64(meta.LexileBand),
	}

	var weighted float64
	for i, e := range encodings {
		weighted += e * ordinalWeights[i]
	}

	// weighted is now centered around [1,5]; map [1,5] -> [-2.5, 2.5].
	b := (weighted-3)/2*2.5
	return clampB(b)
}

// scaleCurriculum maps the 1..4 curriculum band onto the same 1..5 scale the
// other four encodings use, so the weighted average is not dominated by
// scale mismatch.
func scaleCurriculum(band int) float64 {
	return 1 + (float64(band)-1)*(4.0/3.0)
}

func clampB(b float64) float64 {
	if b < -2.5 {
		return -2.5
	}
	if b > 2.5 {
		return 2.5
	}
	return b
}

// deriveA starts from a base discrimination of 1.0 and adds small,
// independent increments for signals that make an item more discriminating,
// clamped to [0.5, 2.0] per spec.md §4.2.
func deriveA(meta RawMetadata) float64 {
	a := 1.0
	if meta.TopicSpecific {
		a += 0.15
	}
	if meta.RichSynonymGraph {
		a += 0.15
	}
	if meta.RarePOS {
		a += 0.10
	}
	if a < 0.5 {
		a = 0.5
	}
	if a > 2.0 {
		a = 2.0
	}
	return a
}

// deriveC is fixed per rendering mode, not per item (spec.md §4.2).
func deriveC(meta RawMetadata) float64 {
	if meta.RenderingIsFourMC {
		return 0.20
	}
	return 0.40
}
