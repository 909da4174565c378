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
	"time"

	"github.com/google/uuid"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/item"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/learn"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/metrics"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/persistence"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/vocaberr"
)

// StartGoal begins a spaced-repetition learning-goal session over the bank's
// items in the requested curriculum band (spec.md §4.11).
func (s *Service) StartGoal(ctx context.Context, req StartGoalRequest) (StartGoalResult, error) {
	userID := req.UserID
	if userID == "" {
		userID = uuid.NewString()
	}
	now := time.Now()
	if s.store != nil {
		if err := retryPersist(ctx, func() error {
			return s.store.UpsertUser(ctx, persistence.UserRecord{ID: userID, Nickname: req.Nickname, CreatedAt: now, LastActiveAt: now})
		}); err != nil {
			return StartGoalResult{}, err
		}
	}

	bank := s.Bank()
	pool := poolForGoal(bank, req.Curriculum)
	if len(pool) == 0 {
		return StartGoalResult{}, vocaberr.New(vocaberr.PoolExhausted, "no items available for this learning goal")
	}

	g := &goalState{
		ID: uuid.NewString(), UserID: userID, GoalID: req.GoalID, GoalName: req.GoalName,
		Curriculum: req.Curriculum, TargetWordCount: req.TargetWordCount,
		Pool: pool, Learned: map[int]*learn.LearnedWord{},
		StartedAt: now, LastActivityAt: now,
	}
	s.goalMu.Lock()
	if s.goals == nil {
		s.goals = map[string]*goalState{}
	}
	s.goals[g.ID] = g
	s.goalMu.Unlock()

	if s.store != nil {
		_ = retryPersist(ctx, func() error {
			return s.store.SaveGoalSession(ctx, persistence.GoalSessionRecord{
				ID: g.ID, UserID: userID, GoalID: req.GoalID, TargetWordCount: req.TargetWordCount,
				StartedAt: now, LastActivityAt: now,
			})
		})
	}

	card, err := s.nextGoalCard(g, bank, now)
	if err != nil {
		return StartGoalResult{}, err
	}
	return StartGoalResult{SessionID: g.ID, UserID: userID, GoalName: req.GoalName, TargetWordCount: req.TargetWordCount, FirstCard: card}, nil
}

// poolForGoal lists every bank item ID in the requested curriculum band, or
// the whole bank when the band is unset.
func poolForGoal(bank *item.Bank, band item.CurriculumBand) []int {
	items := bank.Enumerate(item.Filter{Curriculum: band})
	ids := make([]int, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// nextGoalCard picks the next word per the scheduler's priority rule and
// renders it under the sampled question type for the goal's learner stage.
func (s *Service) nextGoalCard(g *goalState, bank *item.Bank, now time.Time) (*item.RenderedItem, error) {
	seed := sessionSeed(g.ID)
	itemID, done := learn.NextWord(g.Pool, g.Learned, now, seed)
	if done {
		return nil, nil
	}
	bankItem, ok := bank.Get(itemID)
	if !ok {
		return nil, vocaberr.New(vocaberr.InvariantViolation, "scheduled item missing from bank")
	}
	w, ok := g.Learned[itemID]
	stage := learn.StageFirstExposure
	if ok {
		stage = w.StageOf()
	}
	qt, ok := learn.SelectQuestionType(s.dist, g.Curriculum, stage, bankItem, int64(itemID))
	if !ok {
		return nil, vocaberr.New(vocaberr.PoolExhausted, "no renderable question type for this word")
	}
	rendered, ok := bank.Render(itemID, qt, item.RenderSeed(seed, itemID))
	if !ok {
		return nil, vocaberr.New(vocaberr.InvariantViolation, "scheduled item could not be rendered")
	}
	g.LastIssuedItem = itemID
	g.LastIssuedType = qt
	return &rendered, nil
}

// SubmitGoalCard grades the pending card via SM-2 and returns the next one
// (spec.md §4.11).
func (s *Service) SubmitGoalCard(ctx context.Context, goalSessionID string, req SubmitCardRequest) (SubmitCardResult, error) {
	_, span := metrics.Tracer.Start(ctx, metrics.SpanLearnSM2Update)
	defer span.End()

	s.goalMu.Lock()
	g, ok := s.goals[goalSessionID]
	s.goalMu.Unlock()
	if !ok {
		return SubmitCardResult{}, vocaberr.New(vocaberr.NotFound, "learning session not found")
	}
	if g.LastIssuedItem == 0 {
		return SubmitCardResult{}, vocaberr.New(vocaberr.Conflict, "no card is pending a response")
	}

	now := time.Now()
	w, ok := g.Learned[g.LastIssuedItem]
	if !ok {
		w = learn.NewLearnedWord(g.LastIssuedItem, g.ID)
		g.Learned[g.LastIssuedItem] = w
	}
	learn.UpdateSM2(w, req.SelfRating, now)
	g.TotalReviews++
	g.LastActivityAt = now
	g.LastIssuedItem = 0

	if s.store != nil {
		_ = retryPersist(ctx, func() error {
			return s.store.UpsertLearnedWord(ctx, persistence.LearnedWordRecord{
				ID: uuid.NewString(), GoalSessionID: g.ID, Word: bankWordOr(s.Bank(), w.ItemID),
				ReviewCount: w.ReviewCount, CorrectCount: w.CorrectCount, NextReviewAt: w.NextReviewAt,
				EaseFactor: w.EaseFactor, IntervalDays: w.IntervalDays, IsMastered: w.IsMastered, MasteredAt: w.MasteredAt,
			})
		})
	}

	bank := s.Bank()
	card, err := s.nextGoalCard(g, bank, now)
	if err != nil {
		return SubmitCardResult{}, err
	}
	return SubmitCardResult{NextCard: card, SessionProgress: goalProgress(g)}, nil
}

func bankWordOr(bank *item.Bank, itemID int) string {
	if it, ok := bank.Get(itemID); ok {
		return it.Lemma
	}
	return ""
}

// GoalProgress reports a learning-goal session's current progress snapshot.
func (s *Service) GoalProgress(ctx context.Context, goalSessionID string) (GoalProgressResult, error) {
	s.goalMu.Lock()
	g, ok := s.goals[goalSessionID]
	s.goalMu.Unlock()
	if !ok {
		return GoalProgressResult{}, vocaberr.New(vocaberr.NotFound, "learning session not found")
	}
	return goalProgress(g), nil
}

func goalProgress(g *goalState) GoalProgressResult {
	return GoalProgressResult{
		WordsStudied:         len(g.Learned),
		WordsMastered:        g.wordsMastered(),
		TotalReviews:         g.TotalReviews,
		TargetWordCount:      g.TargetWordCount,
		CompletionPercentage: g.completionPercentage(),
	}
}
