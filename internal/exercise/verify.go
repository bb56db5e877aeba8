package exercise

import (
	"strings"
	"unicode"
)

// Strategy checks one response against one item. Malformed input (empty
// strings, unknown segment IDs) verifies false; strategies never error.
type Strategy interface {
	Verify(item Item, response interface{}) bool
}

// Verifier routes by item kind to the matching Strategy.
type Verifier struct {
	strategies map[ItemKind]Strategy
}

func NewVerifier() *Verifier {
	return &Verifier{
		strategies: map[ItemKind]Strategy{
			KindMultipleChoice:    choiceStrategy{},
			KindSentenceRewriting: rewriteStrategy{},
			KindParagraphOrdering: orderingStrategy{},
		},
	}
}

func (v *Verifier) Verify(item Item, response interface{}) bool {
	s, ok := v.strategies[item.Kind()]
	if !ok {
		return false
	}
	return s.Verify(item, response)
}

type choiceStrategy struct{}

// Options come from a fixed pre-defined set, so exact equality is enough.
func (choiceStrategy) Verify(item Item, response interface{}) bool {
	q, ok := item.(MultipleChoice)
	if !ok {
		return false
	}
	resp, ok := response.(string)
	if !ok || resp == "" || q.CorrectOption == "" {
		return false
	}
	return resp == q.CorrectOption
}

type rewriteStrategy struct{}

func (rewriteStrategy) Verify(item Item, response interface{}) bool {
	q, ok := item.(SentenceRewriting)
	if !ok {
		return false
	}
	resp, ok := response.(string)
	if !ok || resp == "" || q.CorrectSentence == "" {
		return false
	}
	return normalize(resp) == normalize(q.CorrectSentence)
}

type orderingStrategy struct{}

// The whole arrangement is judged at once: the segment placed at position i
// must carry CorrectOrder i+1. One misplaced segment fails the puzzle.
func (orderingStrategy) Verify(item Item, response interface{}) bool {
	q, ok := item.(ParagraphOrdering)
	if !ok || len(q.Segments) == 0 {
		return false
	}
	arrangement, ok := toStringSlice(response)
	if !ok || len(arrangement) != len(q.Segments) {
		return false
	}
	byID := make(map[string]ParagraphSegment, len(q.Segments))
	for _, seg := range q.Segments {
		byID[seg.ID] = seg
	}
	for i, id := range arrangement {
		seg, ok := byID[id]
		if !ok || seg.CorrectOrder != i+1 {
			return false
		}
	}
	return true
}

// normalize strips all whitespace and lower-cases, so chip-assembled
// sentences match hand-entered reference data.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func toStringSlice(v interface{}) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
