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
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers every vocabcat endpoint with the given router
// group (spec.md §6), the same RegisterRoutes(rg, handlers) shape the
// teacher uses in services/trace/routes.go.
//
//	service := service.New(cfg, bank, store)
//	handlers := httpapi.NewHandlers(service)
//
//	v1 := router.Group("/v1")
//	httpapi.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	test := rg.Group("/test")
	{
		test.POST("/start", handlers.HandleStartTest)
		test.POST("/:id/respond", handlers.HandleRespondTest)
		test.GET("/:id/results", handlers.HandleGetResults)
	}

	user := rg.Group("/user")
	{
		user.GET("/:id/history", handlers.HandleGetHistory)
	}

	learn := rg.Group("/learn")
	{
		// GET /learn/{id}/plan, /learn/{id}/matrix, and
		// /learn/goal/{id}/progress all put a different kind of thing
		// (a CAT session id vs. the literal "goal") in the same path
		// position, which a radix-tree router (gin's included) refuses to
		// register as sibling static/wildcard routes. A single catch-all
		// dispatcher sidesteps the conflict entirely instead of fighting
		// the router; see DESIGN.md.
		learn.GET("/*rest", handlers.HandleLearnGet)

		goal := learn.Group("/goal")
		{
			goal.POST("/start", handlers.HandleStartGoal)
			goal.POST("/:id/submit", handlers.HandleSubmitCard)
		}
	}

	admin := rg.Group("/admin")
	{
		admin.GET("/stats", handlers.HandleStats)
		admin.GET("/exposure", handlers.HandleExposure)
		admin.GET("/exposure/expansion", handlers.HandleExposureExpansion)
		admin.POST("/recalibrate", handlers.HandleRecalibrate)
		admin.POST("/cleanup", handlers.HandleCleanup)
	}

	rg.GET("/health", handlers.HandleHealth)
	rg.GET("/ready", handlers.HandleReady)
}

// RegisterMetrics mounts the Prometheus scrape endpoint outside the
// versioned API group, the way operational endpoints are kept separate from
// domain routes in the teacher's own router setup.
func RegisterMetrics(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
