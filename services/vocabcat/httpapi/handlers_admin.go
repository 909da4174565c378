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
)

// HandleStats handles GET /admin/stats (spec.md §4.9).
func (h *Handlers) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats(c.Request.Context()))
}

// HandleExposure handles GET /admin/exposure (spec.md §4.9).
func (h *Handlers) HandleExposure(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Exposure(c.Request.Context()))
}

// HandleExposureExpansion handles GET /admin/exposure/expansion (spec.md
// §4.9).
func (h *Handlers) HandleExposureExpansion(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ExposureExpansion(c.Request.Context()))
}

// HandleRecalibrate handles POST /admin/recalibrate (spec.md §4.10).
func (h *Handlers) HandleRecalibrate(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleRecalibrate")

	res, err := h.svc.Recalibrate(c.Request.Context())
	if err != nil {
		logger.Error("recalibrate failed", slog.Any("error", err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleCleanup handles POST /admin/cleanup (spec.md §5).
func (h *Handlers) HandleCleanup(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Cleanup(c.Request.Context()))
}

// HandleHealth handles GET /health: a liveness probe that never depends on
// downstream state, matching the teacher's HandleHealth in
// services/trace/routes.go's registered endpoint list.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleReady handles GET /ready: a readiness probe that confirms the item
// bank has actually loaded.
func (h *Handlers) HandleReady(c *gin.Context) {
	if h.svc.Bank().Size() == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "item bank is empty"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
