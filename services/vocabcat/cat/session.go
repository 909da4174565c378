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
	"time"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/vocaberr"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/item"
)

// maxDeltaWindow caps how many trailing |delta theta| values a session keeps
// (spec.md §4.5: convergence rule looks at the last five).
const maxDeltaWindow = 5

// Administer records that itemID/qt has been issued to the learner and is
// now awaiting a response. Only one item may be pending at a time; a second
// call before the pending one is answered is a protocol violation.
func (s *Session) Administer(it item.Item, qt item.QuestionType, now time.Time) error {
	if s.State == StateTerminated || s.State == StateCorrupted {
		return vocaberr.New(vocaberr.Gone, "session is no longer active")
	}
	if s.lastIssuedItemID != 0 {
		return vocaberr.New(vocaberr.Conflict, "an item is already pending a response")
	}
	s.Administered = append(s.Administered, it.ID)
	s.AdministeredTopics = append(s.AdministeredTopics, it.Topic)
	s.lastIssuedItemID = it.ID
	s.lastIssuedType = qt
	s.LastActivityAt = now
	if s.State == StateInitialized {
		s.State = StateInProgress
	}
	return nil
}

// SubmittedResponse is the caller-supplied answer to the currently pending
// item.
type SubmittedResponse struct {
	ItemID         int
	IsCorrect      bool
	IsDontKnow     bool
	ResponseTimeMs int
	RenderedOptions [4]string
}

// SubmitResponse scores the pending item against the posterior, records the
// Response, and advances session bookkeeping. Resubmitting the same item ID
// that was just scored is idempotent and returns the previously recorded
// Response rather than double-counting it. Submitting any other item ID
// while one is pending is a protocol violation (spec.md §5 ordering rule).
func (s *Session) SubmitResponse(bankItem item.Item, sr SubmittedResponse, now time.Time) (Response, error) {
	if s.State != StateInProgress {
		return Response{}, vocaberr.New(vocaberr.Conflict, "session is not in progress")
	}
	if s.lastIssuedItemID == 0 {
		if n := len(s.Responses); n > 0 && s.Responses[n-1].ItemID == sr.ItemID {
			return s.Responses[n-1], nil
		}
		return Response{}, vocaberr.New(vocaberr.Conflict, "no item is pending a response")
	}
	if sr.ItemID != s.lastIssuedItemID {
		return Response{}, vocaberr.New(vocaberr.BadRequest, "response item does not match the last issued item")
	}

	qt := s.lastIssuedType
	thetaBefore := s.Theta()
	params := bankItem.EffectiveParameters(qt)

	resp := Response{
		ItemID:          sr.ItemID,
		QuestionType:    qt,
		IsCorrect:       sr.IsCorrect,
		IsDontKnow:      sr.IsDontKnow,
		ResponseTimeMs:  sr.ResponseTimeMs,
		RenderedOptions: sr.RenderedOptions,
		Timestamp:       now,
		SequenceIdx:     len(s.Responses),
	}
	s.Posterior.Update(params, resp.scoredForTheta())
	resp.ThetaAfter = s.Theta()
	resp.SEAfter = s.SE()

	s.pushDelta(math.Abs(resp.ThetaAfter - thetaBefore))
	s.Responses = append(s.Responses, resp)
	s.recordCounts(bankItem, qt, resp.IsCorrect && !resp.IsDontKnow)

	s.lastIssuedItemID = 0
	s.lastIssuedType = 0
	s.LastActivityAt = now
	return resp, nil
}

// pushDelta appends a delta-theta magnitude, keeping only the trailing
// maxDeltaWindow entries.
func (s *Session) pushDelta(d float64) {
	s.lastDeltaThetas = append(s.lastDeltaThetas, d)
	if len(s.lastDeltaThetas) > maxDeltaWindow {
		s.lastDeltaThetas = s.lastDeltaThetas[len(s.lastDeltaThetas)-maxDeltaWindow:]
	}
}

// recordCounts updates the content-balance and dimension-score bookkeeping
// used by the selector and the reporter.
func (s *Session) recordCounts(it item.Item, qt item.QuestionType, correct bool) {
	s.TopicCounts[it.Topic]++
	s.POSCounts[it.POS]++

	dim := item.DimensionOf(qt)
	dc := s.DimensionCounts[dim]
	dc.Total++
	if correct {
		dc.Correct++
	}
	s.DimensionCounts[dim] = dc
}

// Terminate transitions the session into the terminated state with the
// given reason. Terminating an already-terminated session is a no-op.
func (s *Session) Terminate(reason TerminationReason, now time.Time) {
	if s.State == StateTerminated {
		return
	}
	s.State = StateTerminated
	s.TerminationReason = reason
	s.LastActivityAt = now
}

// Corrupt marks the session unusable, e.g. after a persistence decode
// failure (spec.md §4.8).
func (s *Session) Corrupt(now time.Time) {
	s.State = StateCorrupted
	s.LastActivityAt = now
}

// PendingItemID returns the item ID awaiting a response, or 0 if none.
func (s *Session) PendingItemID() int { return s.lastIssuedItemID }
