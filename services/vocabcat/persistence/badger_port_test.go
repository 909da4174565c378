package persistence

import (
	"context"
	"testing"
	"time"

	badgerstore "github.com/aleutian-labs/vocabcat/services/vocabcat/storage/badger"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/vocaberr"
)

func newTestPort(t *testing.T) *BadgerPort {
	t.Helper()
	cfg := badgerstore.DefaultConfig()
	cfg.InMemory = true
	db, err := badgerstore.OpenDB(cfg)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewBadgerPort(db)
}

func TestUpsertAndGetUser(t *testing.T) {
	p := newTestPort(t)
	ctx := context.Background()
	rec := UserRecord{ID: "u1", Nickname: "yeji", CreatedAt: time.Now()}
	if err := p.UpsertUser(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := p.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Nickname != "yeji" {
		t.Fatalf("nickname = %q, want yeji", got.Nickname)
	}
}

func TestGetUserNotFound(t *testing.T) {
	p := newTestPort(t)
	_, err := p.GetUser(context.Background(), "missing")
	if err == nil || vocaberr.KindOf(err) != vocaberr.NotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestArchiveSessionAndLoadHistoryOrdersByStartedAtDescending(t *testing.T) {
	p := newTestPort(t)
	ctx := context.Background()
	now := time.Now()
	older := SessionRecord{ID: "s1", UserID: "u1", StartedAt: now.Add(-time.Hour)}
	newer := SessionRecord{ID: "s2", UserID: "u1", StartedAt: now}
	if err := p.ArchiveSession(ctx, older); err != nil {
		t.Fatalf("archive older: %v", err)
	}
	if err := p.ArchiveSession(ctx, newer); err != nil {
		t.Fatalf("archive newer: %v", err)
	}
	hist, err := p.LoadHistory(ctx, "u1")
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(hist) != 2 || hist[0].ID != "s2" {
		t.Fatalf("expected newest session first, got %+v", hist)
	}
}

func TestAppendResponseAndLoadResponsesOrdersBySequence(t *testing.T) {
	p := newTestPort(t)
	ctx := context.Background()
	if err := p.AppendResponse(ctx, ResponseRecord{ID: "r2", SessionID: "s1", SequenceIdx: 1}); err != nil {
		t.Fatalf("append r2: %v", err)
	}
	if err := p.AppendResponse(ctx, ResponseRecord{ID: "r1", SessionID: "s1", SequenceIdx: 0}); err != nil {
		t.Fatalf("append r1: %v", err)
	}
	resp, err := p.LoadResponses(ctx, "s1")
	if err != nil {
		t.Fatalf("load responses: %v", err)
	}
	if len(resp) != 2 || resp[0].ID != "r1" || resp[1].ID != "r2" {
		t.Fatalf("expected sequence order r1,r2, got %+v", resp)
	}
}

func TestSaveAndLoadGoalSession(t *testing.T) {
	p := newTestPort(t)
	ctx := context.Background()
	rec := GoalSessionRecord{ID: "g1", UserID: "u1", GoalID: "middle-basics", TargetWordCount: 100}
	if err := p.SaveGoalSession(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := p.LoadGoalSession(ctx, "g1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.TargetWordCount != 100 {
		t.Fatalf("target word count = %d, want 100", got.TargetWordCount)
	}
}

func TestUpsertAndLoadLearnedWords(t *testing.T) {
	p := newTestPort(t)
	ctx := context.Background()
	w1 := LearnedWordRecord{ID: "w1", GoalSessionID: "g1", Word: "apple"}
	w2 := LearnedWordRecord{ID: "w2", GoalSessionID: "g1", Word: "banana"}
	if err := p.UpsertLearnedWord(ctx, w1); err != nil {
		t.Fatalf("upsert w1: %v", err)
	}
	if err := p.UpsertLearnedWord(ctx, w2); err != nil {
		t.Fatalf("upsert w2: %v", err)
	}
	words, err := p.LoadLearnedWords(ctx, "g1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("expected 2 learned words, got %d", len(words))
	}
}

func TestToLearnedWordConvertsRecord(t *testing.T) {
	rec := LearnedWordRecord{ReviewCount: 3, CorrectCount: 2, EaseFactor: 2.4, IntervalDays: 6}
	w := ToLearnedWord(rec, 42)
	if w.ItemID != 42 || w.ReviewCount != 3 || w.EaseFactor != 2.4 {
		t.Fatalf("converted word = %+v", w)
	}
}
