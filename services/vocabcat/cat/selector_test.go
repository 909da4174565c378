package cat

import (
	"testing"
	"time"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/exposure"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/item"
)

func testBank(t *testing.T) *item.Bank {
	t.Helper()
	return item.NewBank(item.SyntheticCorpus(200, 7), 1)
}

func newTestSession() *Session {
	return NewSession("sess-1", "learner-1", Profile{SelfAssess: SelfAssessIntermediate}, 1234, time.Now())
}

func TestSelectNextReturnsEligibleItem(t *testing.T) {
	b := testBank(t)
	s := newTestSession()
	sel, ok := SelectNext(s, b, exposure.NewController())
	if !ok {
		t.Fatal("expected a selection from a fresh bank")
	}
	if !sel.Item.Supports(sel.QuestionType) {
		t.Fatalf("selected item %d does not support assigned type %v", sel.Item.ID, sel.QuestionType)
	}
}

func TestSelectNextNeverRepeatsAdministeredItems(t *testing.T) {
	b := testBank(t)
	s := newTestSession()
	exp := exposure.NewController()
	exp.RecordSessionStarted()

	seen := map[int]bool{}
	for i := 0; i < 30; i++ {
		sel, ok := SelectNext(s, b, exp)
		if !ok {
			t.Fatalf("selection failed at iteration %d", i)
		}
		if seen[sel.Item.ID] {
			t.Fatalf("item %d was selected twice", sel.Item.ID)
		}
		seen[sel.Item.ID] = true
		if err := s.Administer(sel.Item, sel.QuestionType, time.Now()); err != nil {
			t.Fatalf("administer: %v", err)
		}
		if _, err := s.SubmitResponse(sel.Item, SubmittedResponse{ItemID: sel.Item.ID, IsCorrect: i%2 == 0}, time.Now()); err != nil {
			t.Fatalf("submit response: %v", err)
		}
	}
}

func TestSelectNextPoolExhaustedOnTinyBank(t *testing.T) {
	items := []item.Item{
		{ID: 1, POS: item.POSNoun, A: 1, B: 0, C: 0.2, Capabilities: [7]bool{1: true}},
	}
	b := item.NewBank(items, 1)
	s := newTestSession()
	exp := exposure.NewController()
	sel, ok := SelectNext(s, b, exp)
	if !ok {
		t.Fatal("expected one selection to succeed")
	}
	if err := s.Administer(sel.Item, sel.QuestionType, time.Now()); err != nil {
		t.Fatalf("administer: %v", err)
	}
	if _, err := s.SubmitResponse(sel.Item, SubmittedResponse{ItemID: sel.Item.ID, IsCorrect: true}, time.Now()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, ok := SelectNext(s, b, exp); ok {
		t.Fatal("expected pool exhaustion on the second selection from a one-item bank")
	}
}

func TestAssignQuestionTypeHonorsPreference(t *testing.T) {
	it := item.Item{ID: 1, POS: item.POSNoun, A: 1, B: 0, C: 0.2,
		Capabilities: [7]bool{1: true, 3: true}}
	s := newTestSession()
	s.Profile.PreferredType = item.TypeSynonym
	qt := assignQuestionType(s, it)
	if qt != item.TypeSynonym {
		t.Fatalf("expected preferred type TypeSynonym, got %v", qt)
	}
}

func TestAssignQuestionTypeFallsBackToClosestDifficulty(t *testing.T) {
	it := item.Item{ID: 1, POS: item.POSNoun, A: 1, B: 0, C: 0.2,
		Capabilities: [7]bool{1: true, 2: true}}
	s := newTestSession()
	qt := assignQuestionType(s, it)
	if qt != item.TypeKoreanMeaning && qt != item.TypeEnglishDef {
		t.Fatalf("expected one of the two supported types, got %v", qt)
	}
}

func TestOverrepresentedTopicsExcludesOnCumulativeCount(t *testing.T) {
	s := newTestSession()
	// Alternating topics A,B,A,B,A: topic A's cumulative count reaches 3
	// even though it never appears 3 times in a row.
	s.TopicCounts = map[string]int{"A": 3, "B": 2}
	over := overrepresentedTopics(s)
	if !over["A"] {
		t.Fatal("expected topic A to be excluded once its cumulative count reaches the cap")
	}
	if over["B"] {
		t.Fatal("topic B has not reached the cap and should not be excluded")
	}
}

func TestOverrepresentedTopicsBelowCapIsEmpty(t *testing.T) {
	s := newTestSession()
	s.TopicCounts = map[string]int{"A": 2}
	if over := overrepresentedTopics(s); over["A"] {
		t.Fatal("topic below the cap should not be excluded")
	}
}

func TestOverrepresentedPOSExcludesWhenRatioDeviatesBeyondTolerance(t *testing.T) {
	s := newTestSession()
	// 10 administered items, 4 of them noun: ratio 0.4 vs target 0.2,
	// deviation 0.2 > 0.10 tolerance.
	s.Administered = make([]int, 10)
	s.POSCounts = map[item.PartOfSpeech]int{item.POSNoun: 4}
	over := overrepresentedPOS(s)
	if !over[item.POSNoun] {
		t.Fatal("expected noun to be excluded once its share overshoots target by more than 10pp")
	}
}

func TestOverrepresentedPOSWithinToleranceIsEmpty(t *testing.T) {
	s := newTestSession()
	// 10 administered items, 3 noun: ratio 0.3 vs target 0.2, deviation
	// exactly 0.10, not beyond it.
	s.Administered = make([]int, 10)
	s.POSCounts = map[item.PartOfSpeech]int{item.POSNoun: 3}
	if over := overrepresentedPOS(s); over[item.POSNoun] {
		t.Fatal("a deviation exactly at tolerance should not exclude the bucket")
	}
}

func TestOverrepresentedPOSWithNoAdministeredItemsIsEmpty(t *testing.T) {
	s := newTestSession()
	if over := overrepresentedPOS(s); len(over) != 0 {
		t.Fatal("expected no POS exclusion before any item has been administered")
	}
}
