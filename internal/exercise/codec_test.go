package exercise_test

import (
	"testing"

	"github.com/lingopath/lingopath/internal/exercise"
)

func TestItemsRoundTripKeepsKinds(t *testing.T) {
	items := []exercise.Item{
		exercise.MultipleChoice{Prompt: "p", Options: []string{"a", "b", "c"}, CorrectOption: "a"},
		exercise.SentenceRewriting{Tokens: []string{"to", "be"}, CorrectSentence: "to be"},
		exercise.ParagraphOrdering{Segments: []exercise.ParagraphSegment{{ID: "s1", Content: "x", CorrectOrder: 1}}},
	}
	raw, err := exercise.MarshalItems(items)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := exercise.UnmarshalItems(raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(got))
	}
	for i := range items {
		if got[i].Kind() != items[i].Kind() {
			t.Fatalf("item %d: kind %q, want %q", i, got[i].Kind(), items[i].Kind())
		}
	}
	mc, ok := got[0].(exercise.MultipleChoice)
	if !ok || mc.CorrectOption != "a" {
		t.Fatalf("choice item lost its answer key: %+v", got[0])
	}
}

func TestUnmarshalItemsRejectsUnknownKind(t *testing.T) {
	if _, err := exercise.UnmarshalItems([]byte(`[{"kind":"essay","payload":{}}]`)); err == nil {
		t.Fatalf("expected error for unknown item kind")
	}
}
