package models

// Thought is a free-text sheet that also holds placed references.
type Thought struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Text         string            `json:"text"`
	DroppedItems []PlacedReference `json:"droppedItems"`
}

// NewThought returns a thought with empty text and no placed references.
func NewThought(id, name string) Thought {
	return Thought{
		ID:           id,
		Name:         name,
		DroppedItems: []PlacedReference{},
	}
}

// Clone returns a deep copy of the thought. References are value types,
// so copying the slice is enough.
func (t Thought) Clone() Thought {
	out := t
	out.DroppedItems = make([]PlacedReference, len(t.DroppedItems))
	copy(out.DroppedItems, t.DroppedItems)
	return out
}
