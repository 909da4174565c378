// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package learn implements the spaced-repetition scheduler: per-word SM-2
// state, next-word selection, question-type sampling by learner stage, and
// the mastery rule (spec.md §4.11).
package learn

import "time"

// AssessmentEntry is one self-rated review outcome, appended to a
// LearnedWord's history on every SM-2 update.
type AssessmentEntry struct {
	Rating int // 0-3, self_rating as submitted
	At     time.Time
}

// LearnedWord is the per-learner, per-item spaced-repetition state (spec.md
// §4.11's "LearnedWord entity").
type LearnedWord struct {
	ItemID       int
	GoalSessionID string

	ReviewCount  int
	CorrectCount int
	EaseFactor   float64
	IntervalDays int

	NextReviewAt   time.Time
	LastReviewedAt time.Time

	IsMastered bool
	MasteredAt time.Time

	AssessmentHistory []AssessmentEntry
}

// NewLearnedWord builds a fresh, never-reviewed word state. EaseFactor
// starts at 2.5, the standard SM-2 default.
func NewLearnedWord(itemID int, goalSessionID string) *LearnedWord {
	return &LearnedWord{ItemID: itemID, GoalSessionID: goalSessionID, EaseFactor: 2.5}
}

// StageOf returns the learner's current stage with this word (spec.md
// §4.11): first exposure at zero reviews, mastery-check once review_count
// reaches 5, review in between.
func (w *LearnedWord) StageOf() Stage {
	switch {
	case w.ReviewCount == 0:
		return StageFirstExposure
	case w.ReviewCount >= 5:
		return StageMasteryCheck
	default:
		return StageReview
	}
}
