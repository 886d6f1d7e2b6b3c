// Package board owns the note board: memory categories with their
// knowledge items, thought sheets, and custom templates. Every successful
// mutation is written through to the Saver before the call returns.
package board

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ajitpratap0/thoughtboard/internal/catalog"
	"github.com/ajitpratap0/thoughtboard/internal/idgen"
	"github.com/ajitpratap0/thoughtboard/internal/metrics"
	"github.com/ajitpratap0/thoughtboard/internal/models"
)

// Operation names used for logging and metrics.
const (
	OpCreateCategory  = "create_category"
	OpRenameCategory  = "rename_category"
	OpDeleteCategory  = "delete_category"
	OpToggleCollapse  = "toggle_collapse"
	OpCreateKnowledge = "create_knowledge"
	OpEditKnowledge   = "edit_knowledge"
	OpDeleteKnowledge = "delete_knowledge"
	OpCreateThought   = "create_thought"
	OpRenameThought   = "rename_thought"
	OpDeleteThought   = "delete_thought"
	OpSetThoughtText  = "set_thought_text"
	OpDropReference   = "drop_reference"
	OpRemovePlacedRef = "remove_placed_reference"
	OpLoadTemplate    = "load_template"
	OpSaveTemplate    = "save_template"
	OpDeleteTemplate  = "delete_template"
	OpImportTemplate  = "import_template"
	OpReset           = "reset"
)

// Saver persists the board document.
type Saver interface {
	Save(ctx context.Context, st *models.State) error
	Clear(ctx context.Context) error
}

// Option configures a Board.
type Option func(*Board)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Board) { b.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(c metrics.Collector) Option {
	return func(b *Board) { b.metrics = c }
}

// WithCatalog replaces the built-in template catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(b *Board) { b.catalog = c }
}

// Board is the single owner of the board state. Its methods are safe for
// concurrent use; operations run one at a time, each including its write.
type Board struct {
	mu      sync.Mutex
	state   *models.State
	gen     *idgen.Generator
	saver   Saver
	catalog *catalog.Catalog
	logger  *slog.Logger
	metrics metrics.Collector
}

// New wraps a loaded state. A nil state starts empty.
func New(st *models.State, saver Saver, opts ...Option) *Board {
	if st == nil {
		st = models.NewState()
	}
	if st.CustomTemplates == nil {
		st.CustomTemplates = map[string][]models.CategoryBlueprint{}
	}
	b := &Board{
		state:   st,
		gen:     idgen.New(st.IDCounter),
		saver:   saver,
		catalog: catalog.Builtin(),
		logger:  slog.Default(),
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(b)
	}
	b.state.IDCounter = b.gen.Counter()
	b.updateGauges()
	return b
}

// Snapshot returns a deep copy of the state for rendering.
func (b *Board) Snapshot() models.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Clone()
}

// Stats counts entities on the board.
func (b *Board) Stats() models.Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Stats()
}

// Category returns a copy of the category with the given id.
func (b *Board) Category(id string) (models.Category, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.findCategory(id)
	if !ok {
		return models.Category{}, false
	}
	return b.state.Memories[i].Clone(), true
}

// Thought returns a copy of the thought with the given id.
func (b *Board) Thought(id string) (models.Thought, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.findThought(id)
	if !ok {
		return models.Thought{}, false
	}
	return b.state.Thoughts[i].Clone(), true
}

// DragSource snapshots the category or knowledge item with the given id,
// ready to be encoded as a drag payload.
func (b *Board) DragSource(id string) (models.Reference, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i, ok := b.findCategory(id); ok {
		return b.state.Memories[i].Ref(), true
	}
	if ci, ki, ok := b.findKnowledge(id); ok {
		return b.state.Memories[ci].Items[ki].Ref(), true
	}
	return nil, false
}

// Reset deletes the saved document and starts over with an empty board.
func (b *Board) Reset(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.saver.Clear(ctx); err != nil {
		b.metrics.RecordOperation(OpReset, metrics.StatusError)
		return fmt.Errorf("%w: %s: %w", ErrPersist, OpReset, err)
	}
	b.state = models.NewState()
	b.gen = idgen.New(b.state.IDCounter)
	b.metrics.RecordOperation(OpReset, metrics.StatusOK)
	b.updateGauges()
	b.logger.Info("board reset")
	return nil
}

// --- internal helpers; callers hold b.mu ---

func (b *Board) nextID() string {
	id := b.gen.Next()
	b.state.IDCounter = b.gen.Counter()
	return id
}

// commit writes the state through and records the outcome.
func (b *Board) commit(ctx context.Context, op string) error {
	b.state.IDCounter = b.gen.Counter()
	if err := b.saver.Save(ctx, b.state); err != nil {
		b.metrics.RecordOperation(op, metrics.StatusError)
		b.logger.Error("persisting board failed", "operation", op, "error", err)
		return fmt.Errorf("%w: %s: %w", ErrPersist, op, err)
	}
	b.metrics.RecordOperation(op, metrics.StatusOK)
	b.updateGauges()
	return nil
}

func (b *Board) invalid(op string, err error) error {
	b.metrics.RecordOperation(op, metrics.StatusInvalid)
	b.logger.Debug("operation rejected", "operation", op, "error", err)
	return err
}

func (b *Board) noop(op, reason string, args ...any) {
	b.metrics.RecordOperation(op, metrics.StatusNoop)
	b.logger.Debug("operation skipped", append([]any{"operation", op, "reason", reason}, args...)...)
}

func (b *Board) updateGauges() {
	st := b.state.Stats()
	b.metrics.SetEntityCount("categories", st.Categories)
	b.metrics.SetEntityCount("knowledge", st.KnowledgeItems)
	b.metrics.SetEntityCount("thoughts", st.Thoughts)
	b.metrics.SetEntityCount("placed_references", st.PlacedRefs)
	b.metrics.SetEntityCount("custom_templates", st.CustomTemplates)
}

func (b *Board) findCategory(id string) (int, bool) {
	for i := range b.state.Memories {
		if b.state.Memories[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func (b *Board) findKnowledge(id string) (int, int, bool) {
	for ci := range b.state.Memories {
		for ki := range b.state.Memories[ci].Items {
			if b.state.Memories[ci].Items[ki].ID == id {
				return ci, ki, true
			}
		}
	}
	return -1, -1, false
}

func (b *Board) findThought(id string) (int, bool) {
	for i := range b.state.Thoughts {
		if b.state.Thoughts[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// text replaces invalid UTF-8 the same way the JSON encoder does, so the
// in-memory value matches what a reload returns.
func text(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}
