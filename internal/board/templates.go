package board

import (
	"context"
	"fmt"

	"github.com/ajitpratap0/thoughtboard/internal/catalog"
	"github.com/ajitpratap0/thoughtboard/internal/models"
)

// Templates lists built-in and custom templates.
func (b *Board) Templates() []catalog.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.catalog.List(b.state.CustomTemplates)
}

// LoadTemplate appends the blueprint's categories and items with freshly
// issued ids. Blueprints without items load as empty categories. It
// returns the number of categories added.
func (b *Board) LoadTemplate(ctx context.Context, bps []models.CategoryBlueprint) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadLocked(ctx, bps)
}

// LoadNamedTemplate resolves name among the built-in and custom templates
// and loads it.
func (b *Board) LoadNamedTemplate(ctx context.Context, name string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bps, src, ok := b.catalog.Resolve(name, b.state.CustomTemplates)
	if !ok {
		return 0, b.invalid(OpLoadTemplate, fmt.Errorf("%w: %q", ErrTemplateNotFound, name))
	}
	b.logger.Debug("loading template", "template", name, "source", src)
	return b.loadLocked(ctx, bps)
}

func (b *Board) loadLocked(ctx context.Context, bps []models.CategoryBlueprint) (int, error) {
	if len(bps) == 0 {
		b.noop(OpLoadTemplate, "empty template")
		return 0, nil
	}
	for _, bp := range bps {
		cat := models.NewCategory(b.nextID(), bp.Name)
		for _, item := range bp.Items {
			cat.Items = append(cat.Items, models.NewKnowledge(b.nextID(), item.Name, item.Relation))
		}
		b.state.Memories = append(b.state.Memories, cat)
	}
	if err := b.commit(ctx, OpLoadTemplate); err != nil {
		return len(bps), err
	}
	return len(bps), nil
}

// SaveAsTemplate stores a deep copy of the current memory tree under name.
// An existing template is replaced only when overwrite is set.
func (b *Board) SaveAsTemplate(ctx context.Context, name string, overwrite bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if blank(name) {
		return b.invalid(OpSaveTemplate, invalidf("template name is required"))
	}
	name = text(name)
	if _, exists := b.state.CustomTemplates[name]; exists && !overwrite {
		return b.invalid(OpSaveTemplate, fmt.Errorf("%w: %q", ErrTemplateExists, name))
	}
	b.state.CustomTemplates[name] = catalog.FromCategories(b.state.Memories)
	return b.commit(ctx, OpSaveTemplate)
}

// DeleteTemplate removes a custom template.
func (b *Board) DeleteTemplate(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.state.CustomTemplates[name]; !ok {
		b.noop(OpDeleteTemplate, "template not found", "template", name)
		return nil
	}
	delete(b.state.CustomTemplates, name)
	return b.commit(ctx, OpDeleteTemplate)
}

// ExportTemplate renders a custom template as a downloadable JSON document.
func (b *Board) ExportTemplate(name string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bps, ok := b.state.CustomTemplates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return catalog.EncodeBlueprints(bps)
}

// ImportTemplate parses a template document and stores it under name. On
// any failure the custom templates are left unchanged.
func (b *Board) ImportTemplate(ctx context.Context, name string, data []byte, overwrite bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if blank(name) {
		return b.invalid(OpImportTemplate, invalidf("template name is required"))
	}
	name = text(name)
	bps, err := catalog.ParseBlueprints(data)
	if err != nil {
		return b.invalid(OpImportTemplate, fmt.Errorf("importing %q: %w", name, err))
	}
	if _, exists := b.state.CustomTemplates[name]; exists && !overwrite {
		return b.invalid(OpImportTemplate, fmt.Errorf("%w: %q", ErrTemplateExists, name))
	}
	b.state.CustomTemplates[name] = bps
	return b.commit(ctx, OpImportTemplate)
}
