package exercise

// ItemKind discriminates the closed set of question payloads.
type ItemKind string

const (
	KindMultipleChoice    ItemKind = "multiple_choice"
	KindSentenceRewriting ItemKind = "sentence_rewriting"
	KindParagraphOrdering ItemKind = "paragraph_ordering"
)

// Item is one question in a session. Items are immutable once fetched; the
// session only moves its own cursor and answer state, never item content.
type Item interface {
	Kind() ItemKind
}

type MultipleChoice struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"` // fixed pre-defined set, 3 or 4 entries
	CorrectOption string   `json:"correct_option,omitempty"`
}

func (MultipleChoice) Kind() ItemKind { return KindMultipleChoice }

// SentenceRewriting is assembled by the learner from word chips, so the
// canonical answer is compared ignoring whitespace and casing.
type SentenceRewriting struct {
	Tokens          []string `json:"tokens"`
	CorrectSentence string   `json:"correct_sentence,omitempty"`
}

func (SentenceRewriting) Kind() ItemKind { return KindSentenceRewriting }

type ParagraphSegment struct {
	ID           string `json:"id"`
	Content      string `json:"content"`
	CorrectOrder int    `json:"correct_order,omitempty"` // 1-based target position
}

// ParagraphOrdering is one full reordering puzzle; a single question covers
// the whole arrangement, not individual segments.
type ParagraphOrdering struct {
	Segments []ParagraphSegment `json:"segments"`
}

func (ParagraphOrdering) Kind() ItemKind { return KindParagraphOrdering }

// Sanitize returns a copy of the item with answer keys stripped, safe to
// serve to students mid-session.
func Sanitize(it Item) Item {
	switch v := it.(type) {
	case MultipleChoice:
		v.CorrectOption = ""
		return v
	case SentenceRewriting:
		v.CorrectSentence = ""
		return v
	case ParagraphOrdering:
		segs := make([]ParagraphSegment, len(v.Segments))
		copy(segs, v.Segments)
		for i := range segs {
			segs[i].CorrectOrder = 0
		}
		return ParagraphOrdering{Segments: segs}
	default:
		return it
	}
}
