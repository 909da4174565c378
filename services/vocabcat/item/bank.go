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
	"sort"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/irt"
)

// Bank is the in-memory, immutable-once-built index over the vocabulary
// corpus. A Bank value is never mutated after NewBank returns; calibration
// (spec.md §4.10) builds a new Bank and swaps the published pointer rather
// than mutating one in place (spec.md §9: "module-level item-bank
// singleton -> process-wide state with explicit init/teardown").
type Bank struct {
	items   []Item
	byID    map[int]int // item ID -> index into items
	version int
}

// NewBank indexes items by ID. Caller-supplied version lets readers (e.g.
// the reporter or admin endpoints) report which calibration generation is
// live.
func NewBank(items []Item, version int) *Bank {
	byID := make(map[int]int, len(items))
	cp := make([]Item, len(items))
	copy(cp, items)
	for i, it := range cp {
		byID[it.ID] = i
	}
	return &Bank{items: cp, byID: byID, version: version}
}

// Version returns the calibration generation this bank snapshot represents.
func (b *Bank) Version() int { return b.version }

// Size returns the number of items in the bank.
func (b *Bank) Size() int { return len(b.items) }

// All returns every item in the bank order. Callers must treat the result as
// read-only.
func (b *Bank) All() []Item { return b.items }

// Get looks up an item by ID.
func (b *Bank) Get(id int) (Item, bool) {
	idx, ok := b.byID[id]
	if !ok {
		return Item{}, false
	}
	return b.items[idx], true
}

// Filter narrows the bank by topic, POS, CEFR band, curriculum band, and
// question-type capability. A zero-value field in Filter means "no
// constraint on this dimension".
type Filter struct {
	Topic          string
	POS            PartOfSpeech
	CEFR           CEFRBand
	Curriculum     CurriculumBand
	QuestionType   QuestionType // 0 means unconstrained
	ExcludeIDs     map[int]bool
}

// Matches reports whether an item satisfies the filter.
func (f Filter) Matches(it Item) bool {
	if f.Topic != "" && it.Topic != f.Topic {
		return false
	}
	if f.POS != "" && it.POS != f.POS {
		return false
	}
	if f.CEFR != "" && it.CEFR != f.CEFR {
		return false
	}
	if f.Curriculum != "" && it.Curriculum != f.Curriculum {
		return false
	}
	if f.QuestionType != 0 && !it.Supports(f.QuestionType) {
		return false
	}
	if f.ExcludeIDs != nil && f.ExcludeIDs[it.ID] {
		return false
	}
	return true
}

// Enumerate returns every item satisfying the filter, in ascending ID order
// for reproducibility.
func (b *Bank) Enumerate(f Filter) []Item {
	var out []Item
	for _, it := range b.items {
		if f.Matches(it) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Candidate is a scored shortlist entry returned by Shortlist.
type Candidate struct {
	Item        Item
	Information float64
}

// Shortlist ranks items matching the filter by Fisher information at theta
// (using each item's base 2PL/3PL parameters, ignoring question-type
// offset — the selector applies the offset once it has picked a type) and
// returns the top n, ties broken by ascending item ID.
func (b *Bank) Shortlist(theta float64, f Filter, n int) []Candidate {
	matches := b.Enumerate(f)
	out := make([]Candidate, len(matches))
	for i, it := range matches {
		out[i] = Candidate{Item: it, Information: irt.Information(theta, it.Parameters())}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Information != out[j].Information {
			return out[i].Information > out[j].Information
		}
		return out[i].Item.ID < out[j].Item.ID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Neighbors returns the related-lemma items for the requested relation kind,
// resolving the flat ID adjacency list into Item values. Items the bank no
// longer contains (e.g. dropped during calibration) are silently skipped.
func (b *Bank) Neighbors(id int, kind RelationKind) []Item {
	it, ok := b.Get(id)
	if !ok {
		return nil
	}
	var ids []int
	switch kind {
	case RelationSynonym:
		ids = it.SynonymIDs
	case RelationAntonym:
		ids = it.AntonymIDs
	case RelationSibling:
		ids = it.SiblingIDs
	}
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		if n, ok := b.Get(id); ok {
			out = append(out, n)
		}
	}
	return out
}
