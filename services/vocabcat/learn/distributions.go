// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package learn

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/item"
)

//go:embed distributions.yaml
var distributionsYAML []byte

// Stage is the learner's relationship with a word, driving which
// distribution is sampled (spec.md §4.11).
type Stage string

const (
	StageFirstExposure Stage = "first_exposure"
	StageReview        Stage = "review"
	StageMasteryCheck  Stage = "mastery_check"
)

// distributionKey maps a Stage to the YAML file's stage key.
func (s Stage) yamlKey() string {
	switch s {
	case StageFirstExposure:
		return "first"
	case StageReview:
		return "review"
	case StageMasteryCheck:
		return "mastery"
	default:
		return ""
	}
}

// rawDistributions mirrors the embedded YAML's shape: goal -> stage ->
// six probabilities indexed by QuestionType-1.
type rawDistributions map[string]map[string][6]float64

// Distributions is the parsed, ready-to-sample form of distributions.yaml.
type Distributions struct {
	byGoal map[item.CurriculumBand]map[Stage][6]float64
}

// LoadDistributions parses the embedded question-type distribution table.
// It panics on malformed embedded YAML, since that can only indicate a
// build-time packaging defect, not a runtime condition callers can recover
// from.
func LoadDistributions() *Distributions {
	var raw rawDistributions
	if err := yaml.Unmarshal(distributionsYAML, &raw); err != nil {
		panic(fmt.Sprintf("learn: embedded distributions.yaml is invalid: %v", err))
	}
	d := &Distributions{byGoal: make(map[item.CurriculumBand]map[Stage][6]float64, len(raw))}
	for goal, stages := range raw {
		band := item.CurriculumBand(goal)
		d.byGoal[band] = make(map[Stage][6]float64, len(stages))
		for stageKey, probs := range stages {
			d.byGoal[band][stageFromYAMLKey(stageKey)] = probs
		}
	}
	return d
}

func stageFromYAMLKey(key string) Stage {
	switch key {
	case "first":
		return StageFirstExposure
	case "review":
		return StageReview
	case "mastery":
		return StageMasteryCheck
	default:
		return ""
	}
}

// For returns the probability vector for a goal/stage pair, or the zero
// vector if the combination is unknown.
func (d *Distributions) For(goal item.CurriculumBand, stage Stage) [6]float64 {
	stages, ok := d.byGoal[goal]
	if !ok {
		return [6]float64{}
	}
	return stages[stage]
}
