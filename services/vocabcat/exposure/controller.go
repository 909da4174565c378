// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package exposure implements the Sympson-Hetter style exposure controller:
// a process-wide per-item administered/session counter used by the selector
// to enforce the maximum exposure rate (spec.md §4.9).
//
// Grounded on the teacher's egress.RateLimiter: a single mutex guarding a
// small map, not a sharded structure — spec.md §5 only requires the session
// registry to be sharded, and a global per-item counter is cheap enough
// under one lock that sharding would add complexity without a measurable
// win.
package exposure

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultMaxExposureRate is the default cap from spec.md §4.4 (0.25).
const DefaultMaxExposureRate = 0.25

// counters holds the mutable state for one item.
type counters struct {
	administered int64
	lastAdministeredAt atomic.Value // time.Time
}

// Controller tracks administered_count and session_count per item and
// exposes the current exposure rate. sessionsStarted is incremented once
// per CAT session creation, independent of any single item.
type Controller struct {
	mu              sync.Mutex
	perItem         map[int]*counters
	sessionsStarted int64
}

// NewController builds an empty exposure controller.
func NewController() *Controller {
	return &Controller{perItem: make(map[int]*counters)}
}

// RecordSessionStarted increments the process-wide session count used as
// the denominator of every item's exposure rate.
func (c *Controller) RecordSessionStarted() {
	atomic.AddInt64(&c.sessionsStarted, 1)
}

// SessionsStarted returns the total number of sessions started.
func (c *Controller) SessionsStarted() int64 {
	return atomic.LoadInt64(&c.sessionsStarted)
}

// RecordAdministered increments an item's administered count atomically
// (spec.md §5: "the exposure counter is updated with atomic
// fetch-and-add").
func (c *Controller) RecordAdministered(itemID int, now time.Time) {
	ctr := c.counterFor(itemID)
	atomic.AddInt64(&ctr.administered, 1)
	ctr.lastAdministeredAt.Store(now)
}

func (c *Controller) counterFor(itemID int) *counters {
	c.mu.Lock()
	defer c.mu.Unlock()
	ctr, ok := c.perItem[itemID]
	if !ok {
		ctr = &counters{}
		c.perItem[itemID] = ctr
	}
	return ctr
}

// Rate returns administered_count / sessions_started for the item. Returns 0
// when no sessions have started yet (nothing has had a chance to be
// overexposed).
func (c *Controller) Rate(itemID int) float64 {
	sessions := c.SessionsStarted()
	if sessions == 0 {
		return 0
	}
	c.mu.Lock()
	ctr, ok := c.perItem[itemID]
	c.mu.Unlock()
	if !ok {
		return 0
	}
	return float64(atomic.LoadInt64(&ctr.administered)) / float64(sessions)
}

// AdministeredCount returns the raw administered count for an item.
func (c *Controller) AdministeredCount(itemID int) int64 {
	c.mu.Lock()
	ctr, ok := c.perItem[itemID]
	c.mu.Unlock()
	if !ok {
		return 0
	}
	return atomic.LoadInt64(&ctr.administered)
}

// ItemStat is a single item's exposure statistics, for the reporting read
// side (spec.md §4.9).
type ItemStat struct {
	ItemID       int
	Administered int64
	Rate         float64
}

// Stats holds per-item exposure statistics for the item IDs passed to
// Report (administered or not), classified into overused (rate > 0.25),
// underused (rate < 0.05), and the full list.
type Stats struct {
	All       []ItemStat
	Overused  []ItemStat
	Underused []ItemStat
}

// Report builds a Stats snapshot across every item the controller has seen.
// allItemIDs lets the caller also learn about items that have never been
// administered at all (rate 0, included in Underused).
func (c *Controller) Report(allItemIDs []int) Stats {
	var st Stats
	for _, id := range allItemIDs {
		rate := c.Rate(id)
		stat := ItemStat{ItemID: id, Administered: c.AdministeredCount(id), Rate: rate}
		st.All = append(st.All, stat)
		switch {
		case rate > 0.25:
			st.Overused = append(st.Overused, stat)
		case rate < 0.05:
			st.Underused = append(st.Underused, stat)
		}
	}
	return st
}
