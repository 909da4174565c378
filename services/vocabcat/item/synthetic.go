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
	"math/rand"
)

// topics and posCycle give the synthetic corpus enough variety to exercise
// the selector's content-balance constraints realistically.
var syntheticTopics = []string{
	"school", "travel", "business", "science", "nature", "emotion", "family",
	"technology", "sports", "food", "art", "politics", "health", "weather", "society",
}

var syntheticPOS = []PartOfSpeech{POSNoun, POSVerb, POSAdj, POSAdv, POSOther}
var syntheticCEFR = []CEFRBand{CEFR_A1, CEFR_A2, CEFR_B1, CEFR_B2, CEFR_C1}
var syntheticCurriculum = []CurriculumBand{CurriculumElementary, CurriculumMiddle, CurriculumHigh, CurriculumCSAT}

// SyntheticCorpus builds a deterministic, seeded vocabulary bank of n items
// with the full metadata surface spec.md §3 requires. It exists because CSV
// ingestion and the vocabulary schema are explicitly out of scope for this
// engine (spec.md §1); tests and local/dev runs need a realistic population
// to select and administer items against, without taking a dependency on any
// particular file format.
//
// The corpus is fully connected through synonym/antonym/sibling edges so the
// graph-dependent distractor strategies (B, C, D) have real neighbors to
// draw from.
func SyntheticCorpus(n int, seed int64) []Item {
	rng := rand.New(rand.NewSource(seed))
	items := make([]Item, n)

	for i := 0; i < n; i++ {
		id := i + 1
		pos := syntheticPOS[i%len(syntheticPOS)]
		topic := syntheticTopics[i%len(syntheticTopics)]
		cefr := syntheticCEFR[(i/7)%len(syntheticCEFR)]
		curriculum := syntheticCurriculum[(i/11)%len(syntheticCurriculum)]

		meta := RawMetadata{
			CEFRBand:          cefrOrdinal(cefr),
			FrequencyDecile:   1 + rng.Intn(10),
			GSEBand:           1 + rng.Intn(5),
			CurriculumBand:    curriculumOrdinal(curriculum),
			LexileBand:        1 + rng.Intn(5),
			TopicSpecific:     i%5 == 0,
			RichSynonymGraph:  i%3 == 0,
			RarePOS:           pos == POSOther,
			RenderingIsFourMC: i%4 != 0, // a minority of items render binary (c=0.40)
		}
		a, b, c := InitializeParameters(meta)

		it := Item{
			ID:                id,
			Lemma:             fmt.Sprintf("word%04d", id),
			POS:               pos,
			Topic:             topic,
			CEFR:              cefr,
			Curriculum:        curriculum,
			FrequencyRank:     i + 1,
			A:                 a,
			B:                 b,
			C:                 c,
			KoreanMeaning:     fmt.Sprintf("뜻%04d", id),
			EnglishDefinition: fmt.Sprintf("the meaning of word%04d", id),
			Synonym:           fmt.Sprintf("syn%04d", id),
			Antonym:           fmt.Sprintf("ant%04d", id),
			ClozeSentence:     fmt.Sprintf("She used the word ___ (word%04d) in a sentence.", id),
			Collocation:       fmt.Sprintf("word%04d + up", id),
		}

		// Every type is supported except collocation and antonym, which are
		// withheld from a minority of items so bank.Render's fallback path
		// (and its "not renderable under that type" exclusion) is exercised.
		for qt := 1; qt <= questionTypeCount; qt++ {
			it.Capabilities[qt] = true
		}
		if i%13 == 0 {
			it.Capabilities[TypeCollocation] = false
		}
		if i%17 == 0 {
			it.Capabilities[TypeAntonym] = false
		}

		items[i] = it
	}

	linkSyntheticGraph(items, rng)
	return items
}

func cefrOrdinal(b CEFRBand) int {
	switch b {
	case CEFR_A1:
		return 1
	case CEFR_A2:
		return 2
	case CEFR_B1:
		return 3
	case CEFR_B2:
		return 4
	case CEFR_C1:
		return 5
	default:
		return 3
	}
}

func curriculumOrdinal(b CurriculumBand) int {
	switch b {
	case CurriculumElementary:
		return 1
	case CurriculumMiddle:
		return 2
	case CurriculumHigh:
		return 3
	case CurriculumCSAT:
		return 4
	default:
		return 2
	}
}

// linkSyntheticGraph connects each item to a handful of same-POS neighbors
// as synonyms/antonyms/siblings, mutating items in place. Roughly one item
// in six is left with no edges at all, per spec.md §3 ("may be absent").
func linkSyntheticGraph(items []Item, rng *rand.Rand) {
	byPOS := make(map[PartOfSpeech][]int)
	for _, it := range items {
		byPOS[it.POS] = append(byPOS[it.POS], it.ID)
	}

	for i := range items {
		if items[i].ID%6 == 0 {
			continue // no graph edges for this item
		}
		pool := byPOS[items[i].POS]
		items[i].SynonymIDs = pickOthers(pool, items[i].ID, 2, rng)
		items[i].AntonymIDs = pickOthers(pool, items[i].ID, 1, rng)
		items[i].SiblingIDs = pickOthers(pool, items[i].ID, 3, rng)
	}
}

func pickOthers(pool []int, exclude int, k int, rng *rand.Rand) []int {
	candidates := make([]int, 0, len(pool))
	for _, id := range pool {
		if id != exclude {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]int, k)
	copy(out, candidates[:k])
	return out
}
