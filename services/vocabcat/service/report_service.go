// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package service

import (
	"context"
	"fmt"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/cat"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/report"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/vocaberr"
)

// StudyPlan derives GET /learn/{id}/plan from a CAT session's dimension
// scores (spec.md §4.7). {id} names the terminated CAT session whose
// reporter output the plan is built from — the spec's own endpoint table
// gives the study plan and knowledge matrix no independent data source
// of their own, so both read off the same terminal session the reporter
// already classified.
func (s *Service) StudyPlan(ctx context.Context, sessionID string) (StudyPlanResult, error) {
	bank := s.Bank()
	var result StudyPlanResult
	err := s.sessions.WithSession(sessionID, func(sess *cat.Session) error {
		if sess.State != cat.StateTerminated {
			return vocaberr.New(vocaberr.Conflict, "session is not yet complete")
		}
		scores := report.DimensionScores(sess)
		plan := report.StudyPlan(scores, sess.Theta(), bank)

		recs := make([]StudyRecommendationPayload, len(plan))
		var weak []string
		total := 0
		for i, rec := range plan {
			words := make([]string, len(rec.Exercises))
			for j, it := range rec.Exercises {
				words[j] = it.Lemma
			}
			recs[i] = StudyRecommendationPayload{Dimension: string(rec.Dimension), Priority: rec.Priority, Words: words}
			total += len(words)
			if rec.Priority == "high" {
				weak = append(weak, string(rec.Dimension))
			}
		}
		result = StudyPlanResult{
			Recommendations: recs,
			TotalExercises:  total,
			WeakDimensions:  weak,
			WeeklyPlan:      weeklyPlan(recs),
		}
		return nil
	})
	return result, err
}

// weeklyPlan spreads a flat recommendation list across a 7-day cadence, one
// line per day naming that day's focus dimension (cycling once exhausted).
func weeklyPlan(recs []StudyRecommendationPayload) []string {
	if len(recs) == 0 {
		return nil
	}
	plan := make([]string, 7)
	for day := range plan {
		rec := recs[day%len(recs)]
		plan[day] = fmt.Sprintf("Day %d: %s (%s priority)", day+1, rec.Dimension, rec.Priority)
	}
	return plan
}

// KnowledgeMatrix derives GET /learn/{id}/matrix: current and projected
// knowledge state for a sample of bank items, projected at the midpoint of
// the next CEFR band up from the session's current classification.
func (s *Service) KnowledgeMatrix(ctx context.Context, sessionID string) (KnowledgeMatrixResult, error) {
	bank := s.Bank()
	var result KnowledgeMatrixResult
	err := s.sessions.WithSession(sessionID, func(sess *cat.Session) error {
		if sess.State != cat.StateTerminated {
			return vocaberr.New(vocaberr.Conflict, "session is not yet complete")
		}
		theta := sess.Theta()
		cefr := report.ClassifyCEFR(theta, sess.SE())
		goalTheta := report.NextBandMidpoint(cefr.Band)
		entries := report.KnowledgeMatrix(theta, goalTheta, bank, report.DefaultMatrixSampleSize)

		words := make([]KnowledgeMatrixEntry, len(entries))
		summary := map[string]int{}
		goalSummary := map[string]int{}
		for i, e := range entries {
			it, _ := bank.Get(e.ItemID)
			words[i] = KnowledgeMatrixEntry{
				Word: it.Lemma, CurrentState: string(e.CurrentState), ProjectedState: string(e.ProjectedState),
				CurrentP: e.CurrentP, ProjectedP: e.ProjectedP,
			}
			summary[string(e.CurrentState)]++
			goalSummary[string(e.ProjectedState)]++
		}
		result = KnowledgeMatrixResult{
			Words: words, Summary: summary, GoalSummary: goalSummary,
			States: []string{"not_known", "emerging", "developing", "comfortable", "mastered"},
		}
		return nil
	})
	return result, err
}
