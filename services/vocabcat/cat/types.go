// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cat implements the CAT session state machine: the selector,
// stopping engine, and per-session posterior bookkeeping that together
// administer an adaptive vocabulary test (spec.md §4.4-§4.6).
package cat

import (
	"time"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/irt"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/item"
)

// Grade is the learner's school grade, used only to seed the initial theta
// bias.
type Grade string

// SelfAssessment is the learner's self-reported proficiency at intake.
type SelfAssessment string

const (
	SelfAssessBeginner     SelfAssessment = "beginner"
	SelfAssessIntermediate SelfAssessment = "intermediate"
	SelfAssessAdvanced     SelfAssessment = "advanced"
)

// ExamExperience is the learner's reported exam background.
type ExamExperience string

// Profile captures the intake answers that seed the initial ability prior
// bias (spec.md §4.6).
type Profile struct {
	Grade          Grade
	SelfAssess     SelfAssessment
	ExamExperience ExamExperience
	// PreferredType is 0 when the learner expressed no preference.
	PreferredType item.QuestionType
}

// InitialThetaBias maps the profile to one of {-1.0, 0.0, +1.0} (spec.md
// §4.6) from self-assessment alone: advanced gives +1.0, beginner gives
// -1.0, anything else gives 0.0. Grade is not consulted, so two learners
// with the same self-assessment get the same prior whatever their grade.
func InitialThetaBias(p Profile) float64 {
	switch p.SelfAssess {
	case SelfAssessAdvanced:
		return 1.0
	case SelfAssessBeginner:
		return -1.0
	default:
		return 0.0
	}
}

// TerminationReason records why a session stopped.
type TerminationReason string

const (
	ReasonNone          TerminationReason = ""
	ReasonHardCap       TerminationReason = "hard_cap"
	ReasonSEThreshold   TerminationReason = "se_threshold"
	ReasonConvergence   TerminationReason = "convergence"
	ReasonPoolExhausted TerminationReason = "pool_exhausted"
	ReasonExpired       TerminationReason = "expired"
)

// State is the CAT session lifecycle state (spec.md §4.6).
type State string

const (
	StateInitialized State = "initialized"
	StateInProgress  State = "in_progress"
	StateTerminated  State = "terminated"
	StateCorrupted   State = "corrupted"
)

// Response records one submitted answer (spec.md §3).
type Response struct {
	ItemID          int
	QuestionType    item.QuestionType
	IsCorrect       bool
	IsDontKnow      bool
	ResponseTimeMs  int
	RenderedOptions [4]string
	ThetaAfter      float64
	SEAfter         float64
	Timestamp       time.Time
	SequenceIdx     int
}

// scoredForTheta reports the outcome to feed the posterior: don't-know is
// treated as incorrect for theta estimation but retained separately on the
// Response for reporting (spec.md §3).
func (r Response) scoredForTheta() bool {
	if r.IsDontKnow {
		return false
	}
	return r.IsCorrect
}

// Session is the full mutable state of one CAT session (spec.md §3). All
// mutation happens through the methods in session.go, which the owning
// session manager calls under the session's lock — Session itself performs
// no locking.
type Session struct {
	ID       string
	LearnerID string
	Profile  Profile

	Posterior *irt.Posterior

	Administered  []int    // item IDs, in administration order
	AdministeredTopics []string // parallel to Administered, topic at time of administration
	Responses     []Response
	TopicCounts   map[string]int
	POSCounts     map[item.PartOfSpeech]int
	DimensionCounts map[item.Dimension]struct{ Correct, Total int }

	ExposureConsumed map[int]bool

	SelectionSeed int64

	StartedAt      time.Time
	LastActivityAt time.Time

	State             State
	TerminationReason TerminationReason

	// lastDeltaThetas holds the most recent |delta theta| values, most
	// recent last, capped at 5 entries, for the convergence rule.
	lastDeltaThetas []float64

	// lastIssuedItemID is the item the selector most recently handed the
	// client; only a response to this item may be submitted next (spec.md
	// §5 ordering rule).
	lastIssuedItemID int
	lastIssuedType   item.QuestionType
}

// NewSession builds a fresh session in the initialized state.
func NewSession(id, learnerID string, profile Profile, selectionSeed int64, now time.Time) *Session {
	return &Session{
		ID:               id,
		LearnerID:        learnerID,
		Profile:          profile,
		Posterior:        biasedPrior(profile),
		TopicCounts:      map[string]int{},
		POSCounts:        map[item.PartOfSpeech]int{},
		DimensionCounts:  map[item.Dimension]struct{ Correct, Total int }{},
		ExposureConsumed: map[int]bool{},
		SelectionSeed:    selectionSeed,
		StartedAt:        now,
		LastActivityAt:   now,
		State:            StateInitialized,
	}
}

// biasedPrior builds the initial posterior by shifting the standard normal
// prior's grid by the profile's theta bias. Shifting the grid, not just the
// mean bookkeeping, keeps EAP/SE consistent with a genuinely re-centered
// prior.
func biasedPrior(p Profile) *irt.Posterior {
	post := irt.NewPosterior()
	bias := InitialThetaBias(p)
	if bias == 0 {
		return post
	}
	for i := range post.Theta {
		post.Theta[i] += bias
	}
	return post
}

// ItemsAdministered returns how many items have been administered so far.
func (s *Session) ItemsAdministered() int { return len(s.Administered) }

// Theta returns the current EAP estimate.
func (s *Session) Theta() float64 { return s.Posterior.EAP() }

// SE returns the current posterior standard deviation.
func (s *Session) SE() float64 { return s.Posterior.SE() }

// HasAdministered reports whether itemID has already been given to this
// session.
func (s *Session) HasAdministered(itemID int) bool {
	for _, id := range s.Administered {
		if id == itemID {
			return true
		}
	}
	return false
}
