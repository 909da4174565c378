// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package httpapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/item"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/service"
)

// HandleLearnGet dispatches every GET under /learn: {id}/plan, {id}/matrix,
// and goal/{id}/progress. These three routes put a different kind of value
// (a CAT session id vs. the literal segment "goal") at the same path
// position, which gin's radix-tree router refuses to register as sibling
// static/wildcard routes — so routes.go mounts a single "/*rest" route here
// instead and this function does the segment-based dispatch by hand (see
// DESIGN.md).
func (h *Handlers) HandleLearnGet(c *gin.Context) {
	segments := strings.Split(strings.Trim(c.Param("rest"), "/"), "/")
	switch {
	case len(segments) == 2 && segments[1] == "plan":
		h.handleStudyPlan(c, segments[0])
	case len(segments) == 2 && segments[1] == "matrix":
		h.handleKnowledgeMatrix(c, segments[0])
	case len(segments) == 3 && segments[0] == "goal" && segments[2] == "progress":
		h.handleGoalProgress(c, segments[1])
	default:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no such route", Code: "not_found"})
	}
}

// handleStudyPlan serves GET /learn/{id}/plan (spec.md §6, §4.7). {id} is
// the terminated CAT session whose reporter output the plan is built from
// (see DESIGN.md Open Question 5).
func (h *Handlers) handleStudyPlan(c *gin.Context, sessionID string) {
	res, err := h.svc.StudyPlan(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleKnowledgeMatrix serves GET /learn/{id}/matrix (spec.md §6, §4.7).
func (h *Handlers) handleKnowledgeMatrix(c *gin.Context, sessionID string) {
	res, err := h.svc.KnowledgeMatrix(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleStartGoal handles POST /learn/goal/start (spec.md §4.11).
func (h *Handlers) HandleStartGoal(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleStartGoal")

	var body startGoalBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.svc.StartGoal(c.Request.Context(), service.StartGoalRequest{
		GoalID:          body.GoalID,
		GoalName:        body.GoalName,
		TargetWordCount: body.TargetWordCount,
		Nickname:        body.Nickname,
		UserID:          body.UserID,
		Curriculum:      item.CurriculumBand(body.Curriculum),
	})
	if err != nil {
		logger.Error("start goal failed", slog.Any("error", err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// HandleSubmitCard handles POST /learn/goal/{id}/submit (spec.md §4.11).
func (h *Handlers) HandleSubmitCard(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSubmitCard")

	goalSessionID := c.Param("id")
	var body submitCardBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.svc.SubmitGoalCard(c.Request.Context(), goalSessionID, service.SubmitCardRequest{
		Word:         body.Word,
		QuestionType: item.QuestionType(body.QuestionType),
		SelfRating:   body.SelfRating,
		IsCorrect:    body.IsCorrect,
	})
	if err != nil {
		logger.Error("submit card failed", slog.String("goal_session_id", goalSessionID), slog.Any("error", err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleGoalProgress serves GET /learn/goal/{id}/progress (spec.md §4.11).
func (h *Handlers) handleGoalProgress(c *gin.Context, goalSessionID string) {
	res, err := h.svc.GoalProgress(c.Request.Context(), goalSessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
