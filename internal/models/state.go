package models

// State is the whole persisted document.
type State struct {
	Memories        []Category                     `json:"memories"`
	Thoughts        []Thought                      `json:"thoughts"`
	IDCounter       int                            `json:"idCounter"`
	CustomTemplates map[string][]CategoryBlueprint `json:"customTemplates"`
}

// NewState returns the empty default state.
func NewState() *State {
	return &State{
		Memories:        []Category{},
		Thoughts:        []Thought{},
		IDCounter:       1,
		CustomTemplates: map[string][]CategoryBlueprint{},
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() State {
	out := State{
		Memories:        make([]Category, len(s.Memories)),
		Thoughts:        make([]Thought, len(s.Thoughts)),
		IDCounter:       s.IDCounter,
		CustomTemplates: make(map[string][]CategoryBlueprint, len(s.CustomTemplates)),
	}
	for i := range s.Memories {
		out.Memories[i] = s.Memories[i].Clone()
	}
	for i := range s.Thoughts {
		out.Thoughts[i] = s.Thoughts[i].Clone()
	}
	for name, bps := range s.CustomTemplates {
		out.CustomTemplates[name] = CloneBlueprints(bps)
	}
	return out
}

// Stats summarizes the state for status output.
type Stats struct {
	Categories      int `json:"categories"`
	KnowledgeItems  int `json:"knowledge_items"`
	Thoughts        int `json:"thoughts"`
	PlacedRefs      int `json:"placed_references"`
	CustomTemplates int `json:"custom_templates"`
}

// Stats counts the entities in the state.
func (s *State) Stats() Stats {
	st := Stats{
		Categories:      len(s.Memories),
		Thoughts:        len(s.Thoughts),
		CustomTemplates: len(s.CustomTemplates),
	}
	for i := range s.Memories {
		st.KnowledgeItems += len(s.Memories[i].Items)
	}
	for i := range s.Thoughts {
		st.PlacedRefs += len(s.Thoughts[i].DroppedItems)
	}
	return st
}
