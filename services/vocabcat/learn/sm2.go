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
	"math"
	"time"
)

// minEaseFactor is the floor the ease factor may never drop below (spec.md
// §4.11).
const minEaseFactor = 1.3

// UpdateSM2 applies one self-rating to a LearnedWord following the SM-2
// rules in spec.md §4.11, then checks the mastery rule. rating must be in
// {0,1,2,3}; callers validate this at the API boundary.
func UpdateSM2(w *LearnedWord, rating int, now time.Time) {
	firstReview := w.ReviewCount == 0

	switch rating {
	case 0:
		w.IntervalDays = 0
		w.EaseFactor = math.Max(minEaseFactor, w.EaseFactor-0.20)
	case 1:
		w.IntervalDays = int(math.Max(1, math.Round(float64(w.IntervalDays)*1.2)))
		w.EaseFactor = math.Max(minEaseFactor, w.EaseFactor-0.15)
	case 2:
		if firstReview {
			w.IntervalDays = 1
		} else {
			w.IntervalDays = int(math.Round(float64(w.IntervalDays) * w.EaseFactor))
		}
	case 3:
		if firstReview {
			w.IntervalDays = 4
		} else {
			w.IntervalDays = int(math.Round(float64(w.IntervalDays) * w.EaseFactor * 1.3))
		}
		w.EaseFactor += 0.15
	}

	w.NextReviewAt = now.Add(time.Duration(w.IntervalDays) * 24 * time.Hour)
	w.AssessmentHistory = append(w.AssessmentHistory, AssessmentEntry{Rating: rating, At: now})
	w.ReviewCount++
	if rating >= 2 {
		w.CorrectCount++
	}
	w.LastReviewedAt = now

	checkMastery(w, now)
}

// checkMastery transitions w to mastered once all three conditions hold
// simultaneously (spec.md §4.11). A mastered word is never re-scheduled, so
// this is the only place IsMastered is ever set.
func checkMastery(w *LearnedWord, now time.Time) {
	if w.IsMastered {
		return
	}
	if w.ReviewCount < 5 {
		return
	}
	if float64(w.CorrectCount)/float64(w.ReviewCount) < 0.80 {
		return
	}
	if w.IntervalDays < 7 {
		return
	}
	w.IsMastered = true
	w.MasteredAt = now
}
