// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package httpapi exposes the vocabulary diagnostic engine over HTTP
// (spec.md §6), grounded on the teacher's gin-gonic wiring in
// cmd/trace/main.go and services/trace/routes.go. The Service/Handlers/
// ErrorResponse contract those files call into is not itself present in the
// retrieved teacher source, so the types and wiring below are grounded on
// that call-site contract rather than a copied definition.
package httpapi

// ErrorResponse is the wire shape of every non-2xx response, matching the
// teacher's ErrorResponse{Error, Code} contract referenced throughout
// services/trace/handlers_debug.go.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// startTestBody is the request body for POST /test/start.
type startTestBody struct {
	Nickname       string `json:"nickname" binding:"omitempty,max=64"`
	UserID         string `json:"user_id" binding:"omitempty,uuid4"`
	Grade          string `json:"grade" binding:"omitempty"`
	SelfAssess     string `json:"self_assess" binding:"omitempty"`
	ExamExperience string `json:"exam_experience" binding:"omitempty"`
	QuestionType   int    `json:"question_type" binding:"omitempty,min=1,max=6"`
}

// respondTestBody is the request body for POST /test/{id}/respond.
type respondTestBody struct {
	ItemID         int  `json:"item_id" binding:"required"`
	IsCorrect      bool `json:"is_correct"`
	IsDontKnow     bool `json:"is_dont_know"`
	ResponseTimeMs int  `json:"response_time_ms" binding:"omitempty,min=0"`
}

// startGoalBody is the request body for POST /learn/goal/start.
type startGoalBody struct {
	GoalID          string `json:"goal_id" binding:"omitempty,max=64"`
	GoalName        string `json:"goal_name" binding:"omitempty,max=120"`
	TargetWordCount int    `json:"target_word_count" binding:"omitempty,min=1,max=10000"`
	Nickname        string `json:"nickname" binding:"omitempty,max=64"`
	UserID          string `json:"user_id" binding:"omitempty,uuid4"`
	Curriculum      string `json:"curriculum" binding:"omitempty,oneof=elementary middle high csat"`
}

// submitCardBody is the request body for POST /learn/goal/{id}/submit.
type submitCardBody struct {
	Word         string `json:"word" binding:"required"`
	QuestionType int    `json:"question_type" binding:"required,min=1,max=6"`
	SelfRating   int    `json:"self_rating" binding:"min=0,max=3"`
	IsCorrect    bool   `json:"is_correct"`
}
