// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package persistence defines the storage contract the CAT and learning
// services archive through, and a BadgerDB-backed implementation of it
// (spec.md §4.8, §6 "Persisted state layout").
package persistence

import (
	"context"
	"time"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/cat"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/learn"
)

// UserRecord mirrors spec.md §6's users table.
type UserRecord struct {
	ID           string
	Nickname     string
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// SessionRecord mirrors spec.md §6's test_sessions table. ProfileJSON holds
// the intake Profile serialized for storage, matching the spec's explicit
// "profile_json" column.
type SessionRecord struct {
	ID                string
	UserID            string
	StartedAt         time.Time
	LastActivityAt    time.Time
	CompletedAt       time.Time
	FinalTheta        float64
	FinalSE           float64
	TerminationReason cat.TerminationReason
	ProfileJSON       []byte
}

// ResponseRecord mirrors spec.md §6's responses table.
type ResponseRecord struct {
	ID             string
	SessionID      string
	ItemID         int
	QuestionType   int
	IsCorrect      bool
	IsDontKnow     bool
	ResponseTimeMs int
	ThetaAfter     float64
	SEAfter        float64
	SequenceIdx    int
}

// GoalSessionRecord mirrors spec.md §6's goal_learning_sessions table.
type GoalSessionRecord struct {
	ID             string
	UserID         string
	GoalID         string
	TargetWordCount int
	WordsStudied   int
	WordsMastered  int
	TotalReviews   int
	StartedAt      time.Time
	LastActivityAt time.Time
}

// LearnedWordRecord mirrors spec.md §6's learned_words table.
type LearnedWordRecord struct {
	ID                  string
	GoalSessionID       string
	Word                string
	ReviewCount         int
	CorrectCount        int
	NextReviewAt        time.Time
	EaseFactor          float64
	IntervalDays        int
	IsMastered          bool
	MasteredAt          time.Time
	AssessmentHistoryJSON []byte
	DVKLevel            string
}

// Port is the persistence contract every handler archives through. Every
// method takes a context so a deadline-exceeded handler can abandon its
// write rather than commit a partial batch (spec.md §5).
type Port interface {
	// UpsertUser creates or updates a user record.
	UpsertUser(ctx context.Context, rec UserRecord) error
	// GetUser loads a user record; returns vocaberr NotFound if absent.
	GetUser(ctx context.Context, userID string) (UserRecord, error)

	// ArchiveSession persists a terminated CAT session's summary row.
	ArchiveSession(ctx context.Context, rec SessionRecord) error
	// LoadHistory returns every archived session for a user, most recent
	// first.
	LoadHistory(ctx context.Context, userID string) ([]SessionRecord, error)

	// AppendResponse persists one response row.
	AppendResponse(ctx context.Context, rec ResponseRecord) error
	// LoadResponses returns every response recorded for a session, in
	// sequence order.
	LoadResponses(ctx context.Context, sessionID string) ([]ResponseRecord, error)

	// SaveGoalSession creates or updates a learning-goal session row.
	SaveGoalSession(ctx context.Context, rec GoalSessionRecord) error
	// LoadGoalSession loads a learning-goal session row.
	LoadGoalSession(ctx context.Context, id string) (GoalSessionRecord, error)

	// UpsertLearnedWord creates or updates a learned-word row.
	UpsertLearnedWord(ctx context.Context, rec LearnedWordRecord) error
	// LoadLearnedWords returns every learned word for a goal session.
	LoadLearnedWords(ctx context.Context, goalSessionID string) ([]LearnedWordRecord, error)
}

// ToLearnedWord converts a persisted record back into scheduler state. The
// scheduler keys learned words by bank item ID, not by the persisted
// surrogate ID, so callers must resolve rec.Word to an item ID themselves
// (the persistence layer does not depend on the item bank).
func ToLearnedWord(rec LearnedWordRecord, itemID int) *learn.LearnedWord {
	w := learn.NewLearnedWord(itemID, rec.GoalSessionID)
	w.ReviewCount = rec.ReviewCount
	w.CorrectCount = rec.CorrectCount
	w.NextReviewAt = rec.NextReviewAt
	w.EaseFactor = rec.EaseFactor
	w.IntervalDays = rec.IntervalDays
	w.IsMastered = rec.IsMastered
	w.MasteredAt = rec.MasteredAt
	return w
}
