package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a reference record carries a type tag
// other than "category" or "knowledge".
var ErrUnknownKind = errors.New("unknown reference kind")

// RefKind is the type tag of a placed reference.
type RefKind string

const (
	KindCategory  RefKind = "category"
	KindKnowledge RefKind = "knowledge"
)

// ValidRefKinds is the set of all valid reference kinds.
var ValidRefKinds = []RefKind{
	KindCategory,
	KindKnowledge,
}

// IsValid returns true if the reference kind is recognized.
func (k RefKind) IsValid() bool {
	for i := range ValidRefKinds {
		if k == ValidRefKinds[i] {
			return true
		}
	}
	return false
}

// Reference is a snapshot of a category or knowledge item taken when it was
// transferred onto a thought. The set of implementations is closed:
// CategoryRef and KnowledgeRef.
type Reference interface {
	Kind() RefKind
	RefID() string
	RefName() string
	isReference()
}

// CategoryRef is a snapshot of a Category.
type CategoryRef struct {
	ID   string
	Name string
}

func (CategoryRef) Kind() RefKind     { return KindCategory }
func (r CategoryRef) RefID() string   { return r.ID }
func (r CategoryRef) RefName() string { return r.Name }
func (CategoryRef) isReference()      {}

// KnowledgeRef is a snapshot of a Knowledge item.
type KnowledgeRef struct {
	ID       string
	Name     string
	Relation string
}

func (KnowledgeRef) Kind() RefKind     { return KindKnowledge }
func (r KnowledgeRef) RefID() string   { return r.ID }
func (r KnowledgeRef) RefName() string { return r.Name }
func (KnowledgeRef) isReference()      {}

// ReferenceRecord is the flat wire shape shared by persisted placed
// references and drag payloads.
type ReferenceRecord struct {
	Type     RefKind `json:"type" validate:"required,oneof=category knowledge"`
	ID       string  `json:"id"`
	Name     string  `json:"name" validate:"required"`
	Relation string  `json:"relation,omitempty"`
}

// ToRecord flattens a reference into its wire shape. A nil reference yields
// the zero record.
func ToRecord(ref Reference) ReferenceRecord {
	switch r := ref.(type) {
	case CategoryRef:
		return ReferenceRecord{Type: KindCategory, ID: r.ID, Name: r.Name}
	case KnowledgeRef:
		return ReferenceRecord{Type: KindKnowledge, ID: r.ID, Name: r.Name, Relation: r.Relation}
	default:
		return ReferenceRecord{}
	}
}

// Reference converts the record back into its typed variant.
func (r ReferenceRecord) Reference() (Reference, error) {
	switch r.Type {
	case KindCategory:
		return CategoryRef{ID: r.ID, Name: r.Name}, nil
	case KindKnowledge:
		return KnowledgeRef{ID: r.ID, Name: r.Name, Relation: r.Relation}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, r.Type)
	}
}

// PlacedReference is one entry of a thought's dropped items.
// Ref is nil only for records that could not be decoded; the persistence
// layer removes those on load.
type PlacedReference struct {
	Ref Reference
}

// Place wraps a reference for storage on a thought.
func Place(ref Reference) PlacedReference {
	return PlacedReference{Ref: ref}
}

// MarshalJSON encodes the reference as a ReferenceRecord.
func (p PlacedReference) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToRecord(p.Ref))
}

// UnmarshalJSON decodes a ReferenceRecord. Records that are not objects or
// carry an unknown kind leave Ref nil instead of failing the enclosing
// document.
func (p *PlacedReference) UnmarshalJSON(data []byte) error {
	var rec ReferenceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		p.Ref = nil
		return nil
	}
	ref, err := rec.Reference()
	if err != nil {
		p.Ref = nil
		return nil
	}
	p.Ref = ref
	return nil
}
