package exercise

import (
	"encoding/json"
	"fmt"
)

// envelope tags each stored item with its kind so heterogeneous lists
// round-trip through the lessons table's JSON column.
type envelope struct {
	Kind    ItemKind        `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

func MarshalItems(items []Item) ([]byte, error) {
	envs := make([]envelope, 0, len(items))
	for _, it := range items {
		raw, err := json.Marshal(it)
		if err != nil {
			return nil, err
		}
		envs = append(envs, envelope{Kind: it.Kind(), Payload: raw})
	}
	return json.Marshal(envs)
}

func UnmarshalItems(data []byte) ([]Item, error) {
	var envs []envelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(envs))
	for _, env := range envs {
		var it Item
		switch env.Kind {
		case KindMultipleChoice:
			var q MultipleChoice
			if err := json.Unmarshal(env.Payload, &q); err != nil {
				return nil, err
			}
			it = q
		case KindSentenceRewriting:
			var q SentenceRewriting
			if err := json.Unmarshal(env.Payload, &q); err != nil {
				return nil, err
			}
			it = q
		case KindParagraphOrdering:
			var q ParagraphOrdering
			if err := json.Unmarshal(env.Payload, &q); err != nil {
				return nil, err
			}
			it = q
		default:
			return nil, fmt.Errorf("unknown item kind %q", env.Kind)
		}
		items = append(items, it)
	}
	return items, nil
}
