// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package service wires the item bank, CAT engine, spaced-repetition
// scheduler, exposure control, calibration, and persistence into the set of
// use cases the HTTP layer calls, the way the teacher's trace.Service wires
// its graph store, agent loop, and memory store behind a single façade.
package service

import (
	"time"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/cat"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/item"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/learn"
)

// Progress mirrors spec.md §6's progress shape.
type Progress struct {
	ItemsCompleted int     `json:"items_completed"`
	TotalCorrect   int     `json:"total_correct"`
	Accuracy       float64 `json:"accuracy"`
	CurrentTheta   float64 `json:"current_theta"`
	CurrentSE      float64 `json:"current_se"`
	IsComplete     bool    `json:"is_complete"`
}

func buildProgress(s *cat.Session, complete bool) Progress {
	total := len(s.Responses)
	correct := 0
	for _, r := range s.Responses {
		if r.IsCorrect && !r.IsDontKnow {
			correct++
		}
	}
	acc := 0.0
	if total > 0 {
		acc = float64(correct) / float64(total)
	}
	return Progress{
		ItemsCompleted: total,
		TotalCorrect:   correct,
		Accuracy:       acc,
		CurrentTheta:   s.Theta(),
		CurrentSE:      s.SE(),
		IsComplete:     complete,
	}
}

// StartTestRequest is the use case input for POST /test/start.
type StartTestRequest struct {
	Nickname       string
	UserID         string
	Grade          cat.Grade
	SelfAssess     cat.SelfAssessment
	ExamExperience cat.ExamExperience
	QuestionType   item.QuestionType
}

// StartTestResult is the use case output for POST /test/start.
type StartTestResult struct {
	SessionID    string            `json:"session_id"`
	UserID       string            `json:"user_id"`
	InitialTheta float64           `json:"initial_theta"`
	FirstItem    *item.RenderedItem `json:"first_item"`
	Progress     Progress          `json:"progress"`
}

// RespondRequest is the use case input for POST /test/{id}/respond.
type RespondRequest struct {
	ItemID         int
	IsCorrect      bool
	IsDontKnow     bool
	ResponseTimeMs int
}

// RespondResult is the use case output for POST /test/{id}/respond.
type RespondResult struct {
	IsComplete bool               `json:"is_complete"`
	Progress   Progress           `json:"progress"`
	NextItem   *item.RenderedItem `json:"next_item,omitempty"`
	Results    *ResultsReport     `json:"results,omitempty"`
}

// ResultsReport is the terminal reporter payload for GET /test/{id}/results.
type ResultsReport struct {
	SessionID         string                  `json:"session_id"`
	UserID            string                  `json:"user_id"`
	FinalTheta        float64                 `json:"final_theta"`
	FinalSE           float64                 `json:"final_se"`
	TerminationReason cat.TerminationReason   `json:"termination_reason"`
	ItemsAdministered int                     `json:"items_administered"`
	InsufficientData  bool                    `json:"insufficient_data"`
	CEFR              CEFRPayload             `json:"cefr"`
	CurriculumLevel   item.CurriculumBand     `json:"curriculum_level"`
	VocabularySize    int                     `json:"vocabulary_size"`
	DimensionScores   []DimensionScorePayload `json:"dimension_scores"`
	Strengths         []TopicRatePayload      `json:"strengths"`
	Weaknesses        []TopicRatePayload      `json:"weaknesses"`
	OxfordCoverage    float64                 `json:"oxford_core_coverage"`
}

// CEFRPayload is the wire shape of a CEFR classification.
type CEFRPayload struct {
	Band          string             `json:"band"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// DimensionScorePayload is the wire shape of one dimension score.
type DimensionScorePayload struct {
	Dimension string  `json:"dimension"`
	HasScore  bool    `json:"has_score"`
	Score     float64 `json:"score,omitempty"`
}

// TopicRatePayload is the wire shape of a topic strength/weakness entry.
type TopicRatePayload struct {
	Topic string  `json:"topic"`
	Rate  float64 `json:"rate"`
	Total int     `json:"total"`
}

// HistoryEntry is one row of GET /user/{id}/history.
type HistoryEntry struct {
	SessionID         string    `json:"session_id"`
	StartedAt         time.Time `json:"started_at"`
	CompletedAt       time.Time `json:"completed_at"`
	FinalTheta        float64   `json:"final_theta"`
	FinalSE           float64   `json:"final_se"`
	TerminationReason string    `json:"termination_reason"`
}

// HistoryResult is the use case output for GET /user/{id}/history.
type HistoryResult struct {
	UserID        string         `json:"user_id"`
	TotalSessions int            `json:"total_sessions"`
	Sessions      []HistoryEntry `json:"sessions"`
}

// StudyPlanResult is the use case output for GET /learn/{id}/plan.
type StudyPlanResult struct {
	Recommendations []StudyRecommendationPayload `json:"recommendations"`
	TotalExercises  int                          `json:"total_exercises"`
	WeakDimensions  []string                     `json:"weak_dimensions"`
	WeeklyPlan      []string                     `json:"weekly_plan"`
}

// StudyRecommendationPayload is the wire shape of one study recommendation.
type StudyRecommendationPayload struct {
	Dimension string   `json:"dimension"`
	Priority  string   `json:"priority"`
	Words     []string `json:"words"`
}

// KnowledgeMatrixResult is the use case output for GET /learn/{id}/matrix.
type KnowledgeMatrixResult struct {
	Words       []KnowledgeMatrixEntry `json:"words"`
	Summary     map[string]int         `json:"summary"`
	GoalSummary map[string]int         `json:"goal_summary"`
	States      []string               `json:"states"`
}

// KnowledgeMatrixEntry is one row of the knowledge matrix.
type KnowledgeMatrixEntry struct {
	Word            string  `json:"word"`
	CurrentState    string  `json:"current_state"`
	ProjectedState  string  `json:"projected_state"`
	CurrentP        float64 `json:"current_p"`
	ProjectedP      float64 `json:"projected_p"`
}

// StartGoalRequest is the use case input for POST /learn/goal/start.
type StartGoalRequest struct {
	GoalID          string
	GoalName        string
	TargetWordCount int
	Nickname        string
	UserID          string
	Curriculum      item.CurriculumBand
}

// StartGoalResult is the use case output for POST /learn/goal/start.
type StartGoalResult struct {
	SessionID       string         `json:"session_id"`
	UserID          string         `json:"user_id"`
	GoalName        string         `json:"goal_name"`
	TargetWordCount int            `json:"target_word_count"`
	FirstCard       *item.RenderedItem `json:"first_card"`
}

// SubmitCardRequest is the use case input for POST /learn/goal/{id}/submit.
type SubmitCardRequest struct {
	Word         string
	QuestionType item.QuestionType
	SelfRating   int
	IsCorrect    bool
}

// SubmitCardResult is the use case output for POST /learn/goal/{id}/submit.
type SubmitCardResult struct {
	NextCard        *item.RenderedItem `json:"next_card,omitempty"`
	SessionProgress GoalProgressResult `json:"session_progress"`
}

// GoalProgressResult is the use case output for GET /learn/goal/{id}/progress.
type GoalProgressResult struct {
	WordsStudied          int     `json:"words_studied"`
	WordsMastered         int     `json:"words_mastered"`
	TotalReviews          int     `json:"total_reviews"`
	TargetWordCount       int     `json:"target_word_count"`
	CompletionPercentage  float64 `json:"completion_percentage"`
}

// goalState is the in-memory state backing one active learning-goal
// session, analogous to cat.Session but for the spaced-repetition loop.
type goalState struct {
	ID              string
	UserID          string
	GoalID          string
	GoalName        string
	Curriculum      item.CurriculumBand
	TargetWordCount int
	Pool            []int
	Learned         map[int]*learn.LearnedWord
	TotalReviews    int
	StartedAt       time.Time
	LastActivityAt  time.Time
	LastIssuedItem  int
	LastIssuedType  item.QuestionType
}

func (g *goalState) wordsMastered() int {
	n := 0
	for _, w := range g.Learned {
		if w.IsMastered {
			n++
		}
	}
	return n
}

func (g *goalState) completionPercentage() float64 {
	if g.TargetWordCount <= 0 {
		return 0
	}
	pct := float64(g.wordsMastered()) / float64(g.TargetWordCount) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}
