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

	"github.com/gin-gonic/gin"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/cat"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/item"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/service"
)

// Handlers binds the service façade to gin route handlers, mirroring the
// teacher's *Handlers-wraps-*Service shape (services/trace/handlers_debug.go).
type Handlers struct {
	svc *service.Service
}

// NewHandlers builds the HTTP layer over an already-wired Service.
func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleStartTest handles POST /test/start (spec.md §6).
func (h *Handlers) HandleStartTest(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleStartTest")

	var body startTestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.svc.StartTest(c.Request.Context(), service.StartTestRequest{
		Nickname:       body.Nickname,
		UserID:         body.UserID,
		Grade:          cat.Grade(body.Grade),
		SelfAssess:     cat.SelfAssessment(body.SelfAssess),
		ExamExperience: cat.ExamExperience(body.ExamExperience),
		QuestionType:   item.QuestionType(body.QuestionType),
	})
	if err != nil {
		logger.Error("start test failed", slog.Any("error", err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// HandleRespondTest handles POST /test/{id}/respond (spec.md §6).
func (h *Handlers) HandleRespondTest(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleRespondTest")

	sessionID := c.Param("id")
	var body respondTestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.svc.RespondTest(c.Request.Context(), sessionID, service.RespondRequest{
		ItemID:         body.ItemID,
		IsCorrect:      body.IsCorrect,
		IsDontKnow:     body.IsDontKnow,
		ResponseTimeMs: body.ResponseTimeMs,
	})
	if err != nil {
		logger.Error("respond test failed", slog.String("session_id", sessionID), slog.Any("error", err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleGetResults handles GET /test/{id}/results (spec.md §6).
func (h *Handlers) HandleGetResults(c *gin.Context) {
	sessionID := c.Param("id")
	res, err := h.svc.GetResults(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleGetHistory handles GET /user/{id}/history (spec.md §6).
func (h *Handlers) HandleGetHistory(c *gin.Context) {
	userID := c.Param("id")
	res, err := h.svc.GetHistory(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
