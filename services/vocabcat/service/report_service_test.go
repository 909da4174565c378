// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package service

import (
	"context"
	"testing"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/vocaberr"
)

func runSessionToCompletion(t *testing.T, svc *Service) StartTestResult {
	t.Helper()
	start, err := svc.StartTest(context.Background(), StartTestRequest{})
	if err != nil {
		t.Fatalf("StartTest: %v", err)
	}
	itemID := start.FirstItem.ItemID
	var last RespondResult
	for !last.IsComplete {
		last, err = svc.RespondTest(context.Background(), start.SessionID, RespondRequest{ItemID: itemID, IsCorrect: true})
		if err != nil {
			t.Fatalf("RespondTest: %v", err)
		}
		if !last.IsComplete {
			itemID = last.NextItem.ItemID
		}
	}
	return start
}

func TestStudyPlanRequiresTerminatedSession(t *testing.T) {
	svc := New(fastStoppingConfig(), testBank(), nil)
	start, err := svc.StartTest(context.Background(), StartTestRequest{})
	if err != nil {
		t.Fatalf("StartTest: %v", err)
	}
	_, err = svc.StudyPlan(context.Background(), start.SessionID)
	if vocaberr.KindOf(err) != vocaberr.Conflict {
		t.Fatalf("kind = %v, want Conflict for an in-progress session", vocaberr.KindOf(err))
	}
}

func TestStudyPlanAfterTermination(t *testing.T) {
	svc := New(fastStoppingConfig(), testBank(), nil)
	start := runSessionToCompletion(t, svc)

	plan, err := svc.StudyPlan(context.Background(), start.SessionID)
	if err != nil {
		t.Fatalf("StudyPlan: %v", err)
	}
	if len(plan.WeeklyPlan) != 7 {
		t.Fatalf("weekly plan length = %d, want 7", len(plan.WeeklyPlan))
	}
}

func TestKnowledgeMatrixAfterTermination(t *testing.T) {
	svc := New(fastStoppingConfig(), testBank(), nil)
	start := runSessionToCompletion(t, svc)

	matrix, err := svc.KnowledgeMatrix(context.Background(), start.SessionID)
	if err != nil {
		t.Fatalf("KnowledgeMatrix: %v", err)
	}
	if len(matrix.Words) == 0 {
		t.Fatal("expected at least one sampled word in the knowledge matrix")
	}
	if len(matrix.States) != 5 {
		t.Fatalf("states length = %d, want 5", len(matrix.States))
	}
}

func TestKnowledgeMatrixUnknownSessionNotFound(t *testing.T) {
	svc := New(fastStoppingConfig(), testBank(), nil)
	_, err := svc.KnowledgeMatrix(context.Background(), "does-not-exist")
	if vocaberr.KindOf(err) != vocaberr.NotFound {
		t.Fatalf("kind = %v, want NotFound", vocaberr.KindOf(err))
	}
}
