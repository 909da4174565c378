// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package item

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// RenderSeed derives a deterministic seed from a session id and item id, so
// that regenerating the same (session, item) pair always produces the same
// rendered question (spec.md §3/§8: "rendering the same item with the same
// seed produces byte-identical options").
func RenderSeed(sessionSeed int64, itemID int) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%d", sessionSeed, itemID)
	return int64(h.Sum64())
}

// distractorStrategy names one of the four strategies in spec.md §4.3.
type distractorStrategy struct {
	name string
	fn   func(b *Bank, target Item, qt QuestionType, rng *rand.Rand) []string
}

// CanRender reports whether the item supports the question type and,
// additionally, whether the bank can actually produce three distractors for
// it. The CAT selector does not call it: candidate sets are filtered by
// Supports alone, so an item that fails here can still be selected and then
// fail in Render.
func (b *Bank) CanRender(id int, qt QuestionType) bool {
	it, ok := b.Get(id)
	if !ok || !it.Supports(qt) {
		return false
	}
	_, ok = b.distractors(it, qt, rand.New(rand.NewSource(1)))
	return ok
}

// Render produces a concrete RenderedItem for (itemID, questionType, seed).
// Returns an error-shaped false result (via the bool) when fewer than three
// distractors can be produced under any fallback ordering.
func (b *Bank) Render(itemID int, qt QuestionType, seed int64) (RenderedItem, bool) {
	it, ok := b.Get(itemID)
	if !ok || !it.Supports(qt) {
		return RenderedItem{}, false
	}

	rng := rand.New(rand.NewSource(seed))
	distractors, ok := b.distractors(it, qt, rng)
	if !ok {
		return RenderedItem{}, false
	}

	stem, correct := stemAndAnswer(it, qt)

	options := [4]string{correct, distractors[0], distractors[1], distractors[2]}
	rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	return RenderedItem{
		ItemID:        it.ID,
		Word:          it.Lemma,
		QuestionType:  qt,
		Stem:          stem,
		CorrectAnswer: correct,
		Distractors:   [3]string{distractors[0], distractors[1], distractors[2]},
		Options:       options,
		EffectiveB:    it.B + TypeOffset(qt),
		POS:           it.POS,
		CEFR:          it.CEFR,
	}, true
}

// stemAndAnswer derives the question stem and correct answer text from the
// item's attributes for the given question type.
func stemAndAnswer(it Item, qt QuestionType) (stem, answer string) {
	switch qt {
	case TypeKoreanMeaning:
		return fmt.Sprintf("What is the Korean meaning of \"%s\"?", it.Lemma), it.KoreanMeaning
	case TypeEnglishDef:
		return fmt.Sprintf("Which best defines \"%s\"?", it.Lemma), it.EnglishDefinition
	case TypeSynonym:
		return fmt.Sprintf("Which word is a synonym of \"%s\"?", it.Lemma), it.Synonym
	case TypeAntonym:
		return fmt.Sprintf("Which word is an antonym of \"%s\"?", it.Lemma), it.Antonym
	case TypeCloze:
		return it.ClozeSentence, it.Lemma
	case TypeCollocation:
		return fmt.Sprintf("Which phrase correctly collocates with \"%s\"?", it.Lemma), it.Collocation
	default:
		return "", ""
	}
}

// distractors runs the fallback chain A -> D -> B -> C (spec.md §4.3) until
// three distractors are accumulated, then returns the first three. Returns
// ok=false if fewer than three can be produced under any strategy.
func (b *Bank) distractors(target Item, qt QuestionType, rng *rand.Rand) ([]string, bool) {
	order := strategyOrderFor(qt)

	seen := map[string]bool{}
	var out []string
	for _, strat := range order {
		for _, cand := range strat.fn(b, target, qt, rng) {
			if cand == "" || seen[cand] {
				continue
			}
			seen[cand] = true
			out = append(out, cand)
			if len(out) == 3 {
				return out, true
			}
		}
	}
	return nil, false
}

// strategyOrderFor picks the natural strategy for a question type first
// (B for synonym, C for antonym), then falls back in the A->D->B->C order
// spec.md §4.3 specifies.
func strategyOrderFor(qt QuestionType) []distractorStrategy {
	fallback := []distractorStrategy{
		{"A", strategyA},
		{"D", strategyD},
		{"B", strategyB},
		{"C", strategyC},
	}
	switch qt {
	case TypeSynonym:
		return append([]distractorStrategy{{"B", strategyB}}, fallback...)
	case TypeAntonym:
		return append([]distractorStrategy{{"C", strategyC}}, fallback...)
	default:
		return fallback
	}
}

// strategyA: same POS, adjacent CEFR, same topic, excluding known synonyms.
func strategyA(b *Bank, target Item, qt QuestionType, rng *rand.Rand) []string {
	synonymSet := idSet(target.SynonymIDs)
	var pool []Item
	for _, it := range b.items {
		if it.ID == target.ID || synonymSet[it.ID] {
			continue
		}
		if it.POS != target.POS || it.Topic != target.Topic {
			continue
		}
		if !adjacentCEFR(it.CEFR, target.CEFR) {
			continue
		}
		pool = append(pool, it)
	}
	return attributeText(shuffleItems(pool, rng), qt)
}

// strategyB: for synonym items, distractors are non-synonyms sharing POS.
func strategyB(b *Bank, target Item, qt QuestionType, rng *rand.Rand) []string {
	synonymSet := idSet(target.SynonymIDs)
	var pool []Item
	for _, it := range b.items {
		if it.ID == target.ID || synonymSet[it.ID] {
			continue
		}
		if it.POS != target.POS {
			continue
		}
		pool = append(pool, it)
	}
	return attributeText(shuffleItems(pool, rng), qt)
}

// strategyC: sibling terms from the graph (antonym items), fallback to A if
// the graph is empty is handled by the caller's fallback chain.
func strategyC(b *Bank, target Item, qt QuestionType, rng *rand.Rand) []string {
	siblings := b.Neighbors(target.ID, RelationSibling)
	return attributeText(shuffleItems(siblings, rng), qt)
}

// strategyD: hypernym siblings when the graph is available.
func strategyD(b *Bank, target Item, qt QuestionType, rng *rand.Rand) []string {
	siblings := b.Neighbors(target.ID, RelationSibling)
	return attributeText(shuffleItems(siblings, rng), qt)
}

func adjacentCEFR(a, b CEFRBand) bool {
	order := map[CEFRBand]int{CEFR_A1: 1, CEFR_A2: 2, CEFR_B1: 3, CEFR_B2: 4, CEFR_C1: 5}
	da, oka := order[a]
	db, okb := order[b]
	if !oka || !okb {
		return false
	}
	diff := da - db
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}

func idSet(ids []int) map[int]bool {
	m := make(map[int]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func shuffleItems(items []Item, rng *rand.Rand) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// attributeText projects each candidate item to the text attribute relevant
// for the given question type — a distractor is always drawn from the same
// attribute the correct answer came from.
func attributeText(items []Item, qt QuestionType) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		_, text := stemAndAnswer(it, qt)
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}
