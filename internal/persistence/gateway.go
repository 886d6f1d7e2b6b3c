// Package persistence saves and loads the board document through a KV
// store. Loading never fails: missing or corrupt data degrades to a fresh
// state, and partial documents are repaired field by field.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ajitpratap0/thoughtboard/internal/idgen"
	"github.com/ajitpratap0/thoughtboard/internal/models"
	"github.com/ajitpratap0/thoughtboard/internal/store"
)

// DefaultKey is the storage key the board document lives under.
const DefaultKey = "memoApp_data"

// Gateway reads and writes the board document under a single key.
type Gateway struct {
	kv     store.KV
	key    string
	logger *slog.Logger
}

// New returns a Gateway over kv. An empty key selects DefaultKey.
func New(kv store.KV, key string, logger *slog.Logger) *Gateway {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{kv: kv, key: key, logger: logger}
}

// Key returns the storage key.
func (g *Gateway) Key() string {
	return g.key
}

// Save writes the whole state. Only backend errors are returned.
func (g *Gateway) Save(ctx context.Context, st *models.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := g.kv.Put(ctx, g.key, data); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}

// Load reads the state. It never returns nil and never fails.
func (g *Gateway) Load(ctx context.Context) *models.State {
	data, err := g.kv.Get(ctx, g.key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			g.logger.Debug("no saved state, starting fresh", "key", g.key)
		} else {
			g.logger.Warn("reading saved state failed, starting fresh", "key", g.key, "error", err)
		}
		return models.NewState()
	}
	return Decode(data, g.logger)
}

// Clear removes the saved document. The caller resets in-memory state.
func (g *Gateway) Clear(ctx context.Context) error {
	if err := g.kv.Delete(ctx, g.key); err != nil {
		return fmt.Errorf("clearing state: %w", err)
	}
	return nil
}

// Decode parses a saved document, defaulting every field that is missing
// or malformed and repairing what can be repaired.
func Decode(data []byte, logger *slog.Logger) *models.State {
	if logger == nil {
		logger = slog.Default()
	}
	st := models.NewState()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		logger.Warn("saved state is unreadable, starting fresh", "error", err)
		return st
	}

	st.Memories = decodeList(fields, "memories", decodeCategory, logger)
	st.Thoughts = decodeList(fields, "thoughts", decodeThought, logger)
	decodeField(fields, "idCounter", &st.IDCounter, logger)
	decodeTemplates(fields["customTemplates"], st, logger)

	repair(st, logger)
	return st
}

// decodeField unmarshals one top-level field into dst, leaving the default
// in place when the field is absent, null, or of the wrong shape.
func decodeField[T any](fields map[string]json.RawMessage, name string, dst *T, logger *slog.Logger) {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		logger.Debug("saved field missing, using default", "field", name)
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		logger.Warn("saved field malformed, using default", "field", name, "error", err)
		return
	}
	*dst = v
}

// decodeList decodes an array field one element at a time. Elements that
// fail to decode are dropped; the rest of the list survives.
func decodeList[T any](fields map[string]json.RawMessage, name string, decodeOne func(json.RawMessage, *slog.Logger) (T, error), logger *slog.Logger) []T {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		logger.Debug("saved field missing, using default", "field", name)
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		logger.Warn("saved field malformed, using default", "field", name, "error", err)
		return nil
	}
	out := make([]T, 0, len(elems))
	for i, elem := range elems {
		v, err := decodeOne(elem, logger)
		if err != nil {
			logger.Warn("dropping malformed saved entry", "field", name, "index", i, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out
}

// objectFields splits a JSON object into its raw fields.
func objectFields(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errNotObject
	}
	return fields, nil
}

var errNotObject = errors.New("not a JSON object")

func decodeCategory(raw json.RawMessage, logger *slog.Logger) (models.Category, error) {
	fields, err := objectFields(raw)
	if err != nil {
		return models.Category{}, err
	}
	var cat models.Category
	decodeField(fields, "id", &cat.ID, logger)
	decodeField(fields, "type", &cat.Type, logger)
	decodeField(fields, "name", &cat.Name, logger)
	decodeField(fields, "collapsed", &cat.Collapsed, logger)
	cat.Items = decodeList(fields, "items", decodeKnowledge, logger)
	return cat, nil
}

func decodeKnowledge(raw json.RawMessage, logger *slog.Logger) (models.Knowledge, error) {
	fields, err := objectFields(raw)
	if err != nil {
		return models.Knowledge{}, err
	}
	var k models.Knowledge
	decodeField(fields, "id", &k.ID, logger)
	decodeField(fields, "type", &k.Type, logger)
	decodeField(fields, "name", &k.Name, logger)
	decodeField(fields, "relation", &k.Relation, logger)
	return k, nil
}

func decodeThought(raw json.RawMessage, logger *slog.Logger) (models.Thought, error) {
	fields, err := objectFields(raw)
	if err != nil {
		return models.Thought{}, err
	}
	var th models.Thought
	decodeField(fields, "id", &th.ID, logger)
	decodeField(fields, "name", &th.Name, logger)
	decodeField(fields, "text", &th.Text, logger)
	th.DroppedItems = decodeList(fields, "droppedItems", decodePlaced, logger)
	return th, nil
}

// decodePlaced never fails; undecodable records come back with a nil Ref
// and are removed by repair.
func decodePlaced(raw json.RawMessage, _ *slog.Logger) (models.PlacedReference, error) {
	var p models.PlacedReference
	err := json.Unmarshal(raw, &p)
	return p, err
}

// decodeTemplates keeps every custom template that decodes and drops the rest.
func decodeTemplates(raw json.RawMessage, st *models.State, logger *slog.Logger) {
	if len(raw) == 0 || string(raw) == "null" {
		return
	}
	var byName map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byName); err != nil {
		logger.Warn("saved custom templates malformed, using default", "error", err)
		return
	}
	for name, tpl := range byName {
		var bps []models.CategoryBlueprint
		if err := json.Unmarshal(tpl, &bps); err != nil || bps == nil {
			logger.Warn("dropping malformed custom template", "template", name, "error", err)
			continue
		}
		st.CustomTemplates[name] = bps
	}
}

// repair normalizes nil collections, drops undecodable placed references,
// and advances idCounter past every id present in the document.
func repair(st *models.State, logger *slog.Logger) {
	if st.Memories == nil {
		st.Memories = []models.Category{}
	}
	if st.Thoughts == nil {
		st.Thoughts = []models.Thought{}
	}

	gen := idgen.New(st.IDCounter)
	for i := range st.Memories {
		cat := &st.Memories[i]
		if cat.Items == nil {
			cat.Items = []models.Knowledge{}
		}
		if cat.Type == "" {
			cat.Type = models.KindCategory
		}
		gen.Observe(cat.ID)
		for j := range cat.Items {
			if cat.Items[j].Type == "" {
				cat.Items[j].Type = models.KindKnowledge
			}
			gen.Observe(cat.Items[j].ID)
		}
	}

	for i := range st.Thoughts {
		th := &st.Thoughts[i]
		gen.Observe(th.ID)
		kept := make([]models.PlacedReference, 0, len(th.DroppedItems))
		for _, p := range th.DroppedItems {
			if p.Ref == nil || p.Ref.RefName() == "" {
				logger.Warn("dropping unreadable placed reference", "thought", th.ID)
				continue
			}
			kept = append(kept, p)
		}
		th.DroppedItems = kept
	}

	for _, bps := range st.CustomTemplates {
		for i := range bps {
			if bps[i].Items == nil {
				bps[i].Items = []models.KnowledgeBlueprint{}
			}
		}
	}

	if gen.Counter() != st.IDCounter {
		logger.Warn("idCounter behind issued ids, advancing", "saved", st.IDCounter, "repaired", gen.Counter())
		st.IDCounter = gen.Counter()
	}
}
