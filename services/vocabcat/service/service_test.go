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

	badgerstore "github.com/aleutian-labs/vocabcat/services/vocabcat/storage/badger"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/cat"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/config"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/item"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/persistence"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/vocaberr"
)

func testBank() *item.Bank {
	return item.NewBank(item.SyntheticCorpus(200, 11), 1)
}

func fastStoppingConfig() config.Config {
	cfg := config.Default()
	cfg.Stopping.HardCap = 4
	cfg.Stopping.MinItemsForSE = 100
	cfg.Stopping.MinItemsForConvergence = 100
	return cfg
}

func newTestStore(t *testing.T) persistence.Port {
	t.Helper()
	bcfg := badgerstore.DefaultConfig()
	bcfg.InMemory = true
	db, err := badgerstore.OpenDB(bcfg)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return persistence.NewBadgerPort(db)
}

func TestStartTestReturnsFirstItem(t *testing.T) {
	svc := New(fastStoppingConfig(), testBank(), nil)
	res, err := svc.StartTest(context.Background(), StartTestRequest{Nickname: "yeji"})
	if err != nil {
		t.Fatalf("StartTest: %v", err)
	}
	if res.SessionID == "" {
		t.Fatal("expected a non-empty session id")
	}
	if res.FirstItem == nil {
		t.Fatal("expected a first item to be administered")
	}
	if res.Progress.IsComplete {
		t.Fatal("a freshly started session should not be complete")
	}
}

func TestRespondTestRunsToCompletion(t *testing.T) {
	svc := New(fastStoppingConfig(), testBank(), nil)
	start, err := svc.StartTest(context.Background(), StartTestRequest{})
	if err != nil {
		t.Fatalf("StartTest: %v", err)
	}

	itemID := start.FirstItem.ItemID
	var last RespondResult
	for i := 0; i < 10 && !last.IsComplete; i++ {
		last, err = svc.RespondTest(context.Background(), start.SessionID, RespondRequest{
			ItemID: itemID, IsCorrect: i%2 == 0,
		})
		if err != nil {
			t.Fatalf("RespondTest: %v", err)
		}
		if !last.IsComplete {
			if last.NextItem == nil {
				t.Fatal("expected a next item while the session is still in progress")
			}
			itemID = last.NextItem.ItemID
		}
	}
	if !last.IsComplete {
		t.Fatal("expected the hard cap to terminate the session")
	}
	if last.Results == nil {
		t.Fatal("expected a terminal report")
	}
	if last.Results.ItemsAdministered < 1 {
		t.Fatalf("items administered = %d, want >= 1", last.Results.ItemsAdministered)
	}
}

func TestRespondTestRejectsWrongItem(t *testing.T) {
	svc := New(fastStoppingConfig(), testBank(), nil)
	start, err := svc.StartTest(context.Background(), StartTestRequest{})
	if err != nil {
		t.Fatalf("StartTest: %v", err)
	}
	_, err = svc.RespondTest(context.Background(), start.SessionID, RespondRequest{
		ItemID: start.FirstItem.ItemID + 99999, IsCorrect: true,
	})
	if vocaberr.KindOf(err) != vocaberr.BadRequest {
		t.Fatalf("kind = %v, want BadRequest", vocaberr.KindOf(err))
	}
}

func TestGetResultsAfterTermination(t *testing.T) {
	svc := New(fastStoppingConfig(), testBank(), nil)
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

	rep, err := svc.GetResults(context.Background(), start.SessionID)
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}
	if rep.SessionID != start.SessionID {
		t.Fatalf("session id = %q, want %q", rep.SessionID, start.SessionID)
	}
}

func TestGetResultsUnknownSessionNotFound(t *testing.T) {
	svc := New(fastStoppingConfig(), testBank(), nil)
	_, err := svc.GetResults(context.Background(), "does-not-exist")
	if vocaberr.KindOf(err) != vocaberr.NotFound {
		t.Fatalf("kind = %v, want NotFound", vocaberr.KindOf(err))
	}
}

func TestStartTestPersistsUser(t *testing.T) {
	store := newTestStore(t)
	svc := New(fastStoppingConfig(), testBank(), store)
	res, err := svc.StartTest(context.Background(), StartTestRequest{Nickname: "mina", UserID: "u-1"})
	if err != nil {
		t.Fatalf("StartTest: %v", err)
	}
	rec, err := store.GetUser(context.Background(), res.UserID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if rec.Nickname != "mina" {
		t.Fatalf("nickname = %q, want mina", rec.Nickname)
	}
}

func TestGetHistoryArchivesAfterTermination(t *testing.T) {
	store := newTestStore(t)
	svc := New(fastStoppingConfig(), testBank(), store)
	start, err := svc.StartTest(context.Background(), StartTestRequest{UserID: "u-hist"})
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

	hist, err := svc.GetHistory(context.Background(), "u-hist")
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if hist.TotalSessions != 1 {
		t.Fatalf("total sessions = %d, want 1", hist.TotalSessions)
	}
	if hist.Sessions[0].SessionID != start.SessionID {
		t.Fatalf("session id = %q, want %q", hist.Sessions[0].SessionID, start.SessionID)
	}
}

// tinyBank is the smallest renderable bank: each item needs three
// distinct-meaning distractors of the same POS, drawn from the other three.
func tinyBank() *item.Bank {
	items := []item.Item{
		{ID: 1, Lemma: "w1", POS: item.POSNoun, Topic: "t", A: 1, B: -1, C: 0.2, Capabilities: [7]bool{1: true}, KoreanMeaning: "m1"},
		{ID: 2, Lemma: "w2", POS: item.POSNoun, Topic: "t", A: 1, B: -0.5, C: 0.2, Capabilities: [7]bool{1: true}, KoreanMeaning: "m2"},
		{ID: 3, Lemma: "w3", POS: item.POSNoun, Topic: "t", A: 1, B: 0.5, C: 0.2, Capabilities: [7]bool{1: true}, KoreanMeaning: "m3"},
		{ID: 4, Lemma: "w4", POS: item.POSNoun, Topic: "t", A: 1, B: 1, C: 0.2, Capabilities: [7]bool{1: true}, KoreanMeaning: "m4"},
	}
	return item.NewBank(items, 1)
}

func TestRespondTestFlagsInsufficientDataOnPoolExhaustion(t *testing.T) {
	cfg := fastStoppingConfig()
	cfg.Stopping.HardCap = 10 // above the bank size, so the pool runs out first
	svc := New(cfg, tinyBank(), nil)
	start, err := svc.StartTest(context.Background(), StartTestRequest{})
	if err != nil {
		t.Fatalf("StartTest: %v", err)
	}
	itemID := start.FirstItem.ItemID
	var last RespondResult
	for i := 0; i < 5 && !last.IsComplete; i++ {
		last, err = svc.RespondTest(context.Background(), start.SessionID, RespondRequest{ItemID: itemID, IsCorrect: true})
		if err != nil {
			t.Fatalf("RespondTest: %v", err)
		}
		if !last.IsComplete {
			itemID = last.NextItem.ItemID
		}
	}
	if !last.IsComplete {
		t.Fatal("expected the four-item bank to exhaust")
	}
	if last.Results.TerminationReason != cat.ReasonPoolExhausted {
		t.Fatalf("termination reason = %v, want pool_exhausted", last.Results.TerminationReason)
	}
	if last.Results.ItemsAdministered >= 5 {
		t.Fatalf("items administered = %d, want < 5", last.Results.ItemsAdministered)
	}
	if !last.Results.InsufficientData {
		t.Fatal("expected insufficient_data when a session ends with fewer than 5 items administered")
	}
}

func TestRespondTestHardCapCompletionIsNotInsufficientData(t *testing.T) {
	cfg := config.Default()
	cfg.Stopping.HardCap = 6
	cfg.Stopping.MinItemsForSE = 100
	cfg.Stopping.MinItemsForConvergence = 100
	svc := New(cfg, testBank(), nil)
	start, err := svc.StartTest(context.Background(), StartTestRequest{})
	if err != nil {
		t.Fatalf("StartTest: %v", err)
	}
	itemID := start.FirstItem.ItemID
	var last RespondResult
	for i := 0; i < 10 && !last.IsComplete; i++ {
		last, err = svc.RespondTest(context.Background(), start.SessionID, RespondRequest{ItemID: itemID, IsCorrect: i%2 == 0})
		if err != nil {
			t.Fatalf("RespondTest: %v", err)
		}
		if !last.IsComplete {
			itemID = last.NextItem.ItemID
		}
	}
	if !last.IsComplete {
		t.Fatal("expected the hard cap to terminate the session")
	}
	if last.Results.ItemsAdministered < 5 {
		t.Fatalf("items administered = %d, want >= 5", last.Results.ItemsAdministered)
	}
	if last.Results.InsufficientData {
		t.Fatal("a session with 5 or more administered items should not be flagged insufficient_data")
	}
}

func TestSessionSeedIsDeterministic(t *testing.T) {
	a := sessionSeed("same-id")
	b := sessionSeed("same-id")
	if a != b {
		t.Fatal("sessionSeed should be deterministic for the same session id")
	}
	if sessionSeed("id-one") == sessionSeed("id-two") {
		t.Fatal("sessionSeed should differ between distinct session ids (won't always, but these two don't collide)")
	}
}
