// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report derives the terminal-session diagnostic report: CEFR band,
// curriculum level, vocabulary size estimate, dimension scores, topic
// strengths/weaknesses, Oxford core coverage, a study plan, and a knowledge
// matrix (spec.md §4.7). Every function here is a pure computation over a
// terminal cat.Session plus an item.Bank snapshot.
package report

import (
	"math"
	"sort"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/cat"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/irt"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/item"
)

// cefrBand pairs a band with the interval midpoint used for the
// probability-vector softmax (spec.md §4.7) and the lower bound of its
// literal theta bin, used for classification.
type cefrBand struct {
	name   item.CEFRBand
	center float64
	min    float64 // inclusive lower bound of this band's theta bin
}

// cefrBands gives the literal bins from spec.md §4.7: [-3,-1.5)=A1,
// [-1.5,-0.5)=A2, [-0.5,0.5)=B1, [0.5,1.5)=B2, [1.5,3]=C1. Bands are
// ordered ascending by min so classification can scan once from the top.
var cefrBands = []cefrBand{
	{item.CEFR_A1, -2.25, math.Inf(-1)},
	{item.CEFR_A2, -1.0, -1.5},
	{item.CEFR_B1, 0.0, -0.5},
	{item.CEFR_B2, 1.0, 0.5},
	{item.CEFR_C1, 2.25, 1.5},
}

// CEFRResult is the classified band plus the full probability vector.
type CEFRResult struct {
	Band          item.CEFRBand
	Probabilities map[item.CEFRBand]float64
}

// ClassifyCEFR assigns the band whose literal theta bin contains theta
// (spec.md §4.7's explicit bins, e.g. theta=1.5 classifies as C1, not B2)
// and separately returns a softmax-normalized probability vector over all
// five bands' centers in SE units — an additional signal spec.md §4.7
// calls for alongside, not instead of, the binned classification.
func ClassifyCEFR(theta, se float64) CEFRResult {
	if se <= 0 {
		se = 1e-6
	}
	band := cefrBands[0].name
	for _, b := range cefrBands {
		if theta >= b.min {
			band = b.name
		}
	}

	scores := make([]float64, len(cefrBands))
	for i, b := range cefrBands {
		scores[i] = -math.Abs(theta-b.center) / se
	}
	probs := softmax(scores)
	out := CEFRResult{Band: band, Probabilities: make(map[item.CEFRBand]float64, len(cefrBands))}
	for i, b := range cefrBands {
		out.Probabilities[b.name] = probs[i]
	}
	return out
}

func softmax(scores []float64) []float64 {
	max := scores[0]
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		e := math.Exp(s - max)
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// CurriculumLevel classifies theta into the four curriculum bands (spec.md
// §4.7).
func CurriculumLevel(theta float64) item.CurriculumBand {
	switch {
	case theta < -0.8:
		return item.CurriculumElementary
	case theta < 0.3:
		return item.CurriculumMiddle
	case theta < 1.2:
		return item.CurriculumHigh
	default:
		return "beyond_high"
	}
}

// VocabularySize sums P(correct | theta) over every bank item using its 2PL
// parameters (c ignored), rounded to the nearest integer (spec.md §4.7).
func VocabularySize(theta float64, bank *item.Bank) int {
	var sum float64
	for _, it := range bank.All() {
		p := irt.Parameters{A: it.A, B: it.B, C: 0}.Clamped()
		sum += irt.Probability(theta, p)
	}
	return int(math.Round(sum))
}

// DimensionScore is a single dimension's correct/total score, or nil (via
// HasScore=false) when total < 3.
type DimensionScore struct {
	Dimension item.Dimension
	Correct   int
	Total     int
	HasScore  bool
	Score     float64 // correct/total*100, valid only when HasScore
}

// DimensionScores reports correct/total*100 per dimension, null (HasScore
// false) when total < 3 (spec.md §4.7). Form and pragmatic are always
// reserved/never populated since no question type maps to them.
func DimensionScores(s *cat.Session) []DimensionScore {
	dims := []item.Dimension{item.DimensionSemantic, item.DimensionRelational, item.DimensionContextual, item.DimensionForm, item.DimensionPragmatic}
	out := make([]DimensionScore, 0, len(dims))
	for _, d := range dims {
		dc := s.DimensionCounts[d]
		ds := DimensionScore{Dimension: d, Correct: dc.Correct, Total: dc.Total}
		if dc.Total >= 3 {
			ds.HasScore = true
			ds.Score = float64(dc.Correct) / float64(dc.Total) * 100
		}
		out = append(out, ds)
	}
	return out
}

// BuildTopicCounts derives per-topic total and correct counts from a
// session's recorded responses, resolving each response's item topic
// against the bank. Use the result with TopicBreakdown.
func BuildTopicCounts(s *cat.Session, bank *item.Bank) (topicCorrect, topicTotal map[string]int) {
	topicCorrect = map[string]int{}
	topicTotal = map[string]int{}
	for _, resp := range s.Responses {
		it, ok := bank.Get(resp.ItemID)
		if !ok {
			continue
		}
		topicTotal[it.Topic]++
		if resp.IsCorrect && !resp.IsDontKnow {
			topicCorrect[it.Topic]++
		}
	}
	return topicCorrect, topicTotal
}

// TopicRate is a topic's accuracy rate, only meaningful when Total >= 3.
type TopicRate struct {
	Topic string
	Rate  float64
	Total int
}

// TopicBreakdown returns the top-5 strengths (rate >= 0.75) and bottom-5
// weaknesses (rate <= 0.50) among topics with at least 3 responses (spec.md
// §4.7). Requires per-topic correct counts, which the session does not keep
// directly (only per-topic administered counts); callers pass the
// correct-count map derived from Session.Responses plus item topics.
func TopicBreakdown(topicCorrect, topicTotal map[string]int) (strengths, weaknesses []TopicRate) {
	var rates []TopicRate
	for topic, total := range topicTotal {
		if total < 3 {
			continue
		}
		rate := float64(topicCorrect[topic]) / float64(total)
		rates = append(rates, TopicRate{Topic: topic, Rate: rate, Total: total})
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].Rate > rates[j].Rate })
	for _, r := range rates {
		if r.Rate >= 0.75 && len(strengths) < 5 {
			strengths = append(strengths, r)
		}
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].Rate < rates[j].Rate })
	for _, r := range rates {
		if r.Rate <= 0.50 && len(weaknesses) < 5 {
			weaknesses = append(weaknesses, r)
		}
	}
	return strengths, weaknesses
}

// OxfordCoreCoverage averages P(correct | theta) over bank items whose CEFR
// band is one of {A1, A2, B1} (spec.md §4.7; see DESIGN.md Open Question 2
// for why this band set was chosen).
func OxfordCoreCoverage(theta float64, bank *item.Bank) float64 {
	var sum float64
	var n int
	for _, it := range bank.All() {
		if it.CEFR != item.CEFR_A1 && it.CEFR != item.CEFR_A2 && it.CEFR != item.CEFR_B1 {
			continue
		}
		sum += irt.Probability(theta, it.Parameters())
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// StudyRecommendation is one entry in the study plan.
type StudyRecommendation struct {
	Dimension item.Dimension
	Priority  string // high, medium, review
	Exercises []item.Item
}

// StudyPlan builds a recommendation for every dimension whose score is
// below 60 (or null), with 3-5 exercises drawn from that dimension's items
// nearest theta+0.2 (spec.md §4.7).
func StudyPlan(scores []DimensionScore, theta float64, bank *item.Bank) []StudyRecommendation {
	target := theta + 0.2
	var plan []StudyRecommendation
	for _, ds := range scores {
		if ds.HasScore && ds.Score >= 60 {
			continue
		}
		priority := "review"
		if !ds.HasScore || ds.Score < 40 {
			priority = "high"
		} else if ds.Score < 60 {
			priority = "medium"
		}
		exercises := exercisesForDimension(ds.Dimension, target, bank, 5)
		if len(exercises) == 0 {
			continue
		}
		plan = append(plan, StudyRecommendation{Dimension: ds.Dimension, Priority: priority, Exercises: exercises})
	}
	return plan
}

func exercisesForDimension(dim item.Dimension, target float64, bank *item.Bank, n int) []item.Item {
	var candidates []item.Item
	for _, it := range bank.All() {
		for _, qt := range item.AllQuestionTypes {
			if it.Supports(qt) && item.DimensionOf(qt) == dim {
				candidates = append(candidates, it)
				break
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return math.Abs(candidates[i].B-target) < math.Abs(candidates[j].B-target)
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	if len(candidates) < 3 {
		return nil
	}
	return candidates
}

// KnowledgeState buckets a probability into the five named states (spec.md
// §4.7).
type KnowledgeState string

const (
	StateNotKnown   KnowledgeState = "not_known"
	StateEmerging   KnowledgeState = "emerging"
	StateDeveloping KnowledgeState = "developing"
	StateComfortable KnowledgeState = "comfortable"
	StateMastered   KnowledgeState = "mastered"
)

func classifyKnowledge(p float64) KnowledgeState {
	switch {
	case p < 0.25:
		return StateNotKnown
	case p < 0.5:
		return StateEmerging
	case p < 0.7:
		return StateDeveloping
	case p < 0.85:
		return StateComfortable
	default:
		return StateMastered
	}
}

// MatrixEntry is one item's current and projected knowledge state.
type MatrixEntry struct {
	ItemID        int
	CurrentP      float64
	ProjectedP    float64
	CurrentState  KnowledgeState
	ProjectedState KnowledgeState
}

// DefaultMatrixSampleSize is the default uniform sample size for the
// knowledge matrix (spec.md §4.7).
const DefaultMatrixSampleSize = 150

// KnowledgeMatrix takes n items at an even stride through bank.All() (every
// len/n-th item starting from the first; no randomness, so the result is
// deterministic given the same bank and n) and reports current and
// goal-theta projected knowledge states. goalTheta is the midpoint of
// the next CEFR band above the learner's current band.
func KnowledgeMatrix(theta, goalTheta float64, bank *item.Bank, n int) []MatrixEntry {
	all := bank.All()
	if n <= 0 || n > len(all) {
		n = len(all)
	}
	step := 1
	if n > 0 {
		step = len(all) / n
		if step < 1 {
			step = 1
		}
	}
	out := make([]MatrixEntry, 0, n)
	for i := 0; i < len(all) && len(out) < n; i += step {
		it := all[i]
		p := irt.Probability(theta, it.Parameters())
		pg := irt.Probability(goalTheta, it.Parameters())
		out = append(out, MatrixEntry{
			ItemID: it.ID, CurrentP: p, ProjectedP: pg,
			CurrentState: classifyKnowledge(p), ProjectedState: classifyKnowledge(pg),
		})
	}
	return out
}

// NextBandMidpoint returns the center of the CEFR band immediately above
// band, or the top band's own center if band is already the highest.
func NextBandMidpoint(band item.CEFRBand) float64 {
	for i, b := range cefrBands {
		if b.name == band {
			if i+1 < len(cefrBands) {
				return cefrBands[i+1].center
			}
			return b.center
		}
	}
	return 0
}
