package models

// Category is a named group of knowledge items. It owns its items:
// removing a category removes everything in it.
type Category struct {
	ID        string      `json:"id"`
	Type      RefKind     `json:"type"`
	Name      string      `json:"name"`
	Collapsed bool        `json:"collapsed"`
	Items     []Knowledge `json:"items"`
}

// Knowledge is a named fact paired with a free-text relation.
type Knowledge struct {
	ID       string  `json:"id"`
	Type     RefKind `json:"type"`
	Name     string  `json:"name"`
	Relation string  `json:"relation"`
}

// NewCategory returns an expanded, empty category.
func NewCategory(id, name string) Category {
	return Category{
		ID:    id,
		Type:  KindCategory,
		Name:  name,
		Items: []Knowledge{},
	}
}

// NewKnowledge returns a knowledge item.
func NewKnowledge(id, name, relation string) Knowledge {
	return Knowledge{
		ID:       id,
		Type:     KindKnowledge,
		Name:     name,
		Relation: relation,
	}
}

// Ref snapshots the category for placement on a thought.
func (c Category) Ref() CategoryRef {
	return CategoryRef{ID: c.ID, Name: c.Name}
}

// Ref snapshots the knowledge item for placement on a thought.
func (k Knowledge) Ref() KnowledgeRef {
	return KnowledgeRef{ID: k.ID, Name: k.Name, Relation: k.Relation}
}

// Clone returns a deep copy of the category.
func (c Category) Clone() Category {
	out := c
	out.Items = make([]Knowledge, len(c.Items))
	copy(out.Items, c.Items)
	return out
}

// CategoryBlueprint is the template shape of a category. ID is a
// placeholder kept from saved trees; it is reissued whenever the
// blueprint is loaded.
type CategoryBlueprint struct {
	ID    string               `json:"id,omitempty" yaml:"-"`
	Name  string               `json:"name" yaml:"name"`
	Items []KnowledgeBlueprint `json:"items" yaml:"items"`
}

// KnowledgeBlueprint is the template shape of a knowledge item.
type KnowledgeBlueprint struct {
	ID       string `json:"id,omitempty" yaml:"-"`
	Name     string `json:"name" yaml:"name"`
	Relation string `json:"relation" yaml:"relation"`
}

// CloneBlueprints deep-copies a template.
func CloneBlueprints(bps []CategoryBlueprint) []CategoryBlueprint {
	out := make([]CategoryBlueprint, len(bps))
	for i := range bps {
		out[i] = bps[i]
		out[i].Items = make([]KnowledgeBlueprint, len(bps[i].Items))
		copy(out[i].Items, bps[i].Items)
	}
	return out
}
