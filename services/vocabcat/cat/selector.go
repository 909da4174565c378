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

import (
	"math"
	"math/rand"
	"sort"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/exposure"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/irt"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/item"
)

// shortlistSize is the number of top-information candidates the selector
// considers before randomizing among them (spec.md §4.4 step 4).
const shortlistSize = 5

// contentBalanceTopicCap is the cumulative per-topic administered count at
// or above which a topic is excluded from the next pick (spec.md §4.4 step
// 1: "the session's count for this topic is ≥ 3").
const contentBalanceTopicCap = 3

// posTargetRatio is the target share of administered items for each of the
// five POS buckets; with no per-bucket weighting given in spec.md §4.4 step
// 1, an even split across noun/verb/adj/adv/other is the only target those
// five categories imply on their own.
const posTargetRatio = 1.0 / 5

// posRatioTolerance is the allowed deviation from posTargetRatio before a
// POS bucket is excluded from the next pick (spec.md §4.4 step 1: "±10
// percentage points from target").
const posRatioTolerance = 0.10

// exposureRelaxationStep is added to the exposure cap, once, when the
// unrestricted candidate pool is empty (spec.md §4.4 step 2).
const exposureRelaxationStep = 0.10

// Selection is the outcome of picking the next item for a session.
type Selection struct {
	Item         item.Item
	QuestionType item.QuestionType
	Relaxed      bool // true if exposure control had to be relaxed to find a candidate
}

// SelectNext runs the five-step selection algorithm (spec.md §4.4):
// content-balance filtering, exposure gating with a single relaxation,
// maximum-information ranking, randomized top-K pick, and question-type
// assignment. Returns ok=false when the bank has no eligible item left
// (pool-exhausted, spec.md §4.5).
func SelectNext(s *Session, bank *item.Bank, exp *exposure.Controller) (Selection, bool) {
	excluded := excludedIDs(s)
	overTopics := overrepresentedTopics(s)
	overPOS := overrepresentedPOS(s)

	candidates := shortlistWithExposure(s, bank, exp, excluded, overTopics, overPOS, false)
	relaxed := false
	if len(candidates) == 0 {
		relaxed = true
		candidates = shortlistWithExposure(s, bank, exp, excluded, overTopics, overPOS, true)
	}
	if len(candidates) == 0 && (len(overTopics) > 0 || len(overPOS) > 0) {
		// Content balance left nothing either; drop it before giving up.
		candidates = shortlistWithExposure(s, bank, exp, excluded, nil, nil, true)
	}
	if len(candidates) == 0 {
		return Selection{}, false
	}

	rng := rand.New(rand.NewSource(s.SelectionSeed + int64(s.ItemsAdministered())))
	chosen := candidates[rng.Intn(len(candidates))].Item

	qt := assignQuestionType(s, chosen)
	return Selection{Item: chosen, QuestionType: qt, Relaxed: relaxed}, true
}

// shortlistWithExposure builds the top-K by information among items passing
// content balance and (unless relaxed) the exposure cap.
func shortlistWithExposure(s *Session, bank *item.Bank, exp *exposure.Controller, excluded map[int]bool, overTopics map[string]bool, overPOS map[item.PartOfSpeech]bool, relaxExposure bool) []item.Candidate {
	f := item.Filter{ExcludeIDs: excluded}
	all := bank.Enumerate(f)

	cap := exposure.DefaultMaxExposureRate
	if relaxExposure {
		cap += exposureRelaxationStep
	}

	theta := s.Theta()
	out := make([]item.Candidate, 0, len(all))
	for _, it := range all {
		if overTopics[it.Topic] {
			continue
		}
		if overPOS[it.POS] {
			continue
		}
		if exp != nil && exp.Rate(it.ID) > cap {
			continue
		}
		out = append(out, item.Candidate{Item: it, Information: irt.Information(theta, it.Parameters())})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Information != out[j].Information {
			return out[i].Information > out[j].Information
		}
		return out[i].Item.ID < out[j].Item.ID
	})
	if len(out) > shortlistSize {
		out = out[:shortlistSize]
	}
	return out
}

// excludedIDs builds the set of items this session must never see again.
func excludedIDs(s *Session) map[int]bool {
	ex := make(map[int]bool, len(s.Administered))
	for _, id := range s.Administered {
		ex[id] = true
	}
	return ex
}

// overrepresentedTopics returns every topic whose cumulative administered
// count for this session has reached contentBalanceTopicCap (spec.md §4.4
// step 1: "the session's count for this topic is ≥ 3"), read directly from
// Session.TopicCounts rather than re-derived from recent history.
func overrepresentedTopics(s *Session) map[string]bool {
	var over map[string]bool
	for topic, count := range s.TopicCounts {
		if count >= contentBalanceTopicCap {
			if over == nil {
				over = make(map[string]bool, 1)
			}
			over[topic] = true
		}
	}
	return over
}

// overrepresentedPOS returns every POS bucket whose running share of
// administered items exceeds posTargetRatio by more than posRatioTolerance
// (spec.md §4.4 step 1: "the running POS ratio ... deviates beyond ±10
// percentage points from target"), read from Session.POSCounts. With no
// items administered yet the ratio is undefined, so nothing is excluded.
func overrepresentedPOS(s *Session) map[item.PartOfSpeech]bool {
	total := s.ItemsAdministered()
	if total == 0 {
		return nil
	}
	var over map[item.PartOfSpeech]bool
	for _, pos := range item.AllPartsOfSpeech {
		ratio := float64(s.POSCounts[pos]) / float64(total)
		if ratio-posTargetRatio > posRatioTolerance {
			if over == nil {
				over = make(map[item.PartOfSpeech]bool, 1)
			}
			over[pos] = true
		}
	}
	return over
}

// assignQuestionType picks the rendered question type for a chosen item: the
// learner's preferred type if the item supports it, otherwise the supported
// type whose effective difficulty is closest to the current theta (spec.md
// §4.4 step 5).
func assignQuestionType(s *Session, it item.Item) item.QuestionType {
	if s.Profile.PreferredType != 0 && it.Supports(s.Profile.PreferredType) {
		return s.Profile.PreferredType
	}
	theta := s.Theta()
	best := item.QuestionType(0)
	bestDist := math.Inf(1)
	for _, qt := range item.AllQuestionTypes {
		if !it.Supports(qt) {
			continue
		}
		eb := it.EffectiveParameters(qt).B
		d := math.Abs(eb - theta)
		if d < bestDist {
			bestDist = d
			best = qt
		}
	}
	return best
}
