// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package item implements the in-memory vocabulary item bank: immutable item
// metadata, IRT parameter initialization, filtered enumeration, and
// deterministic question rendering with distractor generation.
package item

import "github.com/aleutian-labs/vocabcat/services/vocabcat/irt"

// QuestionType enumerates the six renderable question types (spec.md §3).
type QuestionType int

const (
	TypeKoreanMeaning  QuestionType = 1
	TypeEnglishDef     QuestionType = 2
	TypeSynonym        QuestionType = 3
	TypeAntonym        QuestionType = 4
	TypeCloze          QuestionType = 5
	TypeCollocation    QuestionType = 6
	questionTypeCount               = 6
)

// AllQuestionTypes lists every question type in ascending order.
var AllQuestionTypes = [questionTypeCount]QuestionType{
	TypeKoreanMeaning, TypeEnglishDef, TypeSynonym, TypeAntonym, TypeCloze, TypeCollocation,
}

// TypeOffset returns the per-type difficulty offset added to b at render
// time (spec.md §3 / §4.2).
func TypeOffset(qt QuestionType) float64 {
	switch qt {
	case TypeKoreanMeaning:
		return 0.0
	case TypeEnglishDef:
		return 0.6
	case TypeSynonym:
		return 0.2
	case TypeAntonym:
		return 0.3
	case TypeCloze:
		return 0.5
	case TypeCollocation:
		return 0.2
	default:
		return 0.0
	}
}

// CEFRBand is one of the five bands this engine reports (A1 through C1).
type CEFRBand string

const (
	CEFR_A1 CEFRBand = "A1"
	CEFR_A2 CEFRBand = "A2"
	CEFR_B1 CEFRBand = "B1"
	CEFR_B2 CEFRBand = "B2"
	CEFR_C1 CEFRBand = "C1"
)

// CurriculumBand is the school-level banding used by the learning goals.
type CurriculumBand string

const (
	CurriculumElementary CurriculumBand = "elementary"
	CurriculumMiddle     CurriculumBand = "middle"
	CurriculumHigh       CurriculumBand = "high"
	CurriculumCSAT       CurriculumBand = "csat"
)

// PartOfSpeech is the coarse POS bucket used for the selector's content
// balance constraint (noun/verb/adj/adv/other).
type PartOfSpeech string

const (
	POSNoun  PartOfSpeech = "noun"
	POSVerb  PartOfSpeech = "verb"
	POSAdj   PartOfSpeech = "adj"
	POSAdv   PartOfSpeech = "adv"
	POSOther PartOfSpeech = "other"
)

// AllPartsOfSpeech lists every POS bucket in the fixed order spec.md §4.4
// step 1 enumerates them (noun/verb/adj/adv/other).
var AllPartsOfSpeech = [5]PartOfSpeech{POSNoun, POSVerb, POSAdj, POSAdv, POSOther}

// RelationKind distinguishes the two kinds of graph edges an item may carry.
type RelationKind int

const (
	RelationSynonym RelationKind = iota
	RelationAntonym
	RelationSibling // shares a hypernym
)

// Item is the immutable bank entry. Identity is ID; all other fields are
// fixed at load time (spec.md §3: "Immutable after initialization").
type Item struct {
	ID            int
	Lemma         string
	POS           PartOfSpeech
	Topic         string
	CEFR          CEFRBand
	Curriculum    CurriculumBand
	FrequencyRank int

	// IRT parameters, already clamped to their guarded ranges.
	A, B, C float64

	// Capabilities reports, per question type, whether this item can be
	// rendered under that type.
	Capabilities [questionTypeCount + 1]bool // index by QuestionType (1-based); index 0 unused

	// KoreanMeaning, EnglishDefinition, Synonym, Antonym, ClozeSentence and
	// Collocation hold the raw attribute text a renderer draws the correct
	// answer from.
	KoreanMeaning     string
	EnglishDefinition string
	Synonym           string
	Antonym           string
	ClozeSentence     string
	Collocation       string

	// Edges to related lemmas; resolved via item IDs into a flat adjacency
	// structure rather than a cyclic object graph (spec.md §9).
	SynonymIDs []int
	AntonymIDs []int
	SiblingIDs []int // shares a hypernym
}

// Supports reports whether the item can be rendered as the given question
// type.
func (it Item) Supports(qt QuestionType) bool {
	if qt < 1 || int(qt) >= len(it.Capabilities) {
		return false
	}
	return it.Capabilities[qt]
}

// Parameters returns the item's base IRT parameters (no per-type offset
// applied).
func (it Item) Parameters() irt.Parameters {
	return irt.Parameters{A: it.A, B: it.B, C: it.C}.Clamped()
}

// EffectiveParameters returns the parameters for a specific rendered
// question type: same a and c, b shifted by the type offset.
func (it Item) EffectiveParameters(qt QuestionType) irt.Parameters {
	p := it.Parameters()
	p.B += TypeOffset(qt)
	return p.Clamped()
}

// Dimension groups question types into the five reporting dimensions
// (spec.md §4.7): semantic=1,2; relational=3,4; contextual=5,6.
type Dimension string

const (
	DimensionSemantic   Dimension = "semantic"
	DimensionRelational Dimension = "relational"
	DimensionContextual Dimension = "contextual"
	DimensionForm       Dimension = "form"       // reserved, never populated
	DimensionPragmatic  Dimension = "pragmatic"  // reserved, never populated
)

// DimensionOf returns the reporting dimension for a question type.
func DimensionOf(qt QuestionType) Dimension {
	switch qt {
	case TypeKoreanMeaning, TypeEnglishDef:
		return DimensionSemantic
	case TypeSynonym, TypeAntonym:
		return DimensionRelational
	case TypeCloze, TypeCollocation:
		return DimensionContextual
	default:
		return DimensionForm
	}
}

// RenderedItem is a concrete question instance. Not persisted; deterministic
// given (item ID, question type, seed) per spec.md §3/§4.3.
type RenderedItem struct {
	ItemID          int
	Word            string
	QuestionType    QuestionType
	Stem            string
	CorrectAnswer   string
	Distractors     [3]string
	Options         [4]string
	EffectiveB      float64
	POS             PartOfSpeech
	CEFR            CEFRBand
	Explanation     string
	DistractorStrat string // distractor strategy name; Render leaves it empty
}
