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
	"hash/fnv"
	"sync"
	"time"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/vocaberr"
)

// shardCount is the number of registry shards. A sharded map keeps the
// per-session lock cheap to acquire even with many concurrent sessions,
// mirroring the teacher's sharded connection-cache pattern.
const shardCount = 32

// DefaultSessionTTL is how long a session may sit idle before the sweeper
// expires it (spec.md §5: "session_ttl (default 2h)").
const DefaultSessionTTL = 2 * time.Hour

type shard struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// Manager is the process-wide, sharded session registry. Every mutating
// operation on a Session happens while holding that session's shard lock, so
// Session itself need not be safe for concurrent access on its own.
type Manager struct {
	shards [shardCount]*shard
	ttl    time.Duration
}

// NewManager builds an empty registry with the given idle TTL. A zero ttl
// uses DefaultSessionTTL.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	m := &Manager{ttl: ttl}
	for i := range m.shards {
		m.shards[i] = &shard{sessions: make(map[string]*Session)}
	}
	return m
}

func (m *Manager) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return m.shards[h.Sum32()%shardCount]
}

// Put registers a newly created session.
func (m *Manager) Put(s *Session) {
	sh := m.shardFor(s.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.sessions[s.ID] = s
}

// WithSession runs fn while holding the lock for sessionID's shard, passing
// the session in. Returns NotFound if no such session is registered.
func (m *Manager) WithSession(sessionID string, fn func(*Session) error) error {
	sh := m.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	s, ok := sh.sessions[sessionID]
	if !ok {
		return vocaberr.New(vocaberr.NotFound, "session not found")
	}
	return fn(s)
}

// Drop removes a session from the registry (e.g. after archiving a
// terminated session to persistence).
func (m *Manager) Drop(sessionID string) {
	sh := m.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.sessions, sessionID)
}

// SweepExpired returns and drops every idle session whose LastActivityAt is
// older than the manager's TTL. A still-active session is terminated
// (reason=expired) first; an already-terminated session is kept registered
// for up to one TTL past its termination time so GetResults/StudyPlan/
// KnowledgeMatrix can still read it, then dropped on the same schedule.
// Callers are expected to persist the still-active sessions this returns
// before discarding them (already-terminated ones were archived at
// termination time).
func (m *Manager) SweepExpired(now time.Time) []*Session {
	var expired []*Session
	for _, sh := range m.shards {
		sh.mu.Lock()
		for id, s := range sh.sessions {
			if now.Sub(s.LastActivityAt) <= m.ttl {
				continue
			}
			if s.State != StateTerminated {
				s.Terminate(ReasonExpired, now)
				expired = append(expired, s)
			}
			delete(sh.sessions, id)
		}
		sh.mu.Unlock()
	}
	return expired
}

// Count returns the number of sessions currently registered, across all
// shards (used by the active-sessions gauge).
func (m *Manager) Count() int {
	total := 0
	for _, sh := range m.shards {
		sh.mu.Lock()
		total += len(sh.sessions)
		sh.mu.Unlock()
	}
	return total
}
