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
	"math/rand"
	"sort"
	"time"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/item"
)

// NextWord picks the next item for the learner to study, following the
// four-step priority in spec.md §4.11: due reviews first (earliest
// next_review_at, ties by ascending ease factor), then unstudied pool
// members (uniform random, session-seeded), then the oldest
// not-yet-mastered reviewed word, then completion.
//
// pool is every item ID in the goal's curriculum band; learned maps item ID
// to existing progress for words the learner has already touched.
func NextWord(pool []int, learned map[int]*LearnedWord, now time.Time, seed int64) (itemID int, done bool) {
	if id, ok := dueReview(pool, learned, now); ok {
		return id, false
	}
	if id, ok := unstudied(pool, learned, seed); ok {
		return id, false
	}
	if id, ok := oldestUnmastered(pool, learned); ok {
		return id, false
	}
	return 0, true
}

func dueReview(pool []int, learned map[int]*LearnedWord, now time.Time) (int, bool) {
	var candidates []*LearnedWord
	for _, id := range pool {
		w, ok := learned[id]
		if !ok || w.IsMastered {
			continue
		}
		if !w.NextReviewAt.After(now) {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].NextReviewAt.Equal(candidates[j].NextReviewAt) {
			return candidates[i].NextReviewAt.Before(candidates[j].NextReviewAt)
		}
		return candidates[i].EaseFactor < candidates[j].EaseFactor
	})
	return candidates[0].ItemID, true
}

func unstudied(pool []int, learned map[int]*LearnedWord, seed int64) (int, bool) {
	var fresh []int
	for _, id := range pool {
		if _, ok := learned[id]; !ok {
			fresh = append(fresh, id)
		}
	}
	if len(fresh) == 0 {
		return 0, false
	}
	sort.Ints(fresh)
	rng := rand.New(rand.NewSource(seed))
	return fresh[rng.Intn(len(fresh))], true
}

func oldestUnmastered(pool []int, learned map[int]*LearnedWord) (int, bool) {
	var candidates []*LearnedWord
	for _, id := range pool {
		if w, ok := learned[id]; ok && !w.IsMastered {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].LastReviewedAt.Before(candidates[j].LastReviewedAt)
	})
	return candidates[0].ItemID, true
}

// SelectQuestionType samples a question type from the goal/stage
// distribution, falling back to the next-highest-probability type in the
// distribution if the sampled type is unsupported by the item (spec.md
// §4.11). Returns ok=false only if the item supports none of the six types.
func SelectQuestionType(dist *Distributions, goal item.CurriculumBand, stage Stage, it item.Item, seed int64) (item.QuestionType, bool) {
	probs := dist.For(goal, stage)
	order := rankByProbabilityDescending(probs)

	rng := rand.New(rand.NewSource(seed))
	sampled := sampleType(probs, rng.Float64())
	if it.Supports(sampled) {
		return sampled, true
	}
	for _, qt := range order {
		if qt == sampled {
			continue
		}
		if it.Supports(qt) {
			return qt, true
		}
	}
	if it.Supports(sampled) {
		return sampled, true
	}
	return 0, false
}

// sampleType draws a QuestionType from the cumulative distribution given a
// uniform draw u in [0,1).
func sampleType(probs [6]float64, u float64) item.QuestionType {
	var cum float64
	for i, p := range probs {
		cum += p
		if u < cum {
			return item.QuestionType(i + 1)
		}
	}
	// Floating-point rounding of a distribution summing to ~1 can leave u
	// just past the last cumulative bucket; fall back to the highest-index
	// nonzero type.
	for i := len(probs) - 1; i >= 0; i-- {
		if probs[i] > 0 {
			return item.QuestionType(i + 1)
		}
	}
	return 0
}

// rankByProbabilityDescending returns question types ordered by descending
// configured probability, for the "next type in the distribution by
// descending probability" fallback rule.
func rankByProbabilityDescending(probs [6]float64) []item.QuestionType {
	types := make([]item.QuestionType, 6)
	for i := range types {
		types[i] = item.QuestionType(i + 1)
	}
	sort.Slice(types, func(i, j int) bool {
		return probs[types[i]-1] > probs[types[j]-1]
	})
	return types
}
