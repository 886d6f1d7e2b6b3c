package board

import (
	"context"

	"github.com/ajitpratap0/thoughtboard/internal/models"
)

// CreateCategory appends an empty, expanded category.
func (b *Board) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if blank(name) {
		return models.Category{}, b.invalid(OpCreateCategory, invalidf("category name is required"))
	}

	cat := models.NewCategory(b.nextID(), text(name))
	b.state.Memories = append(b.state.Memories, cat)
	if err := b.commit(ctx, OpCreateCategory); err != nil {
		return cat.Clone(), err
	}
	b.logger.Debug("category created", "id", cat.ID, "name", cat.Name)
	return cat.Clone(), nil
}

// CreateKnowledge appends a knowledge item to a category and expands the
// category so the new item is visible.
func (b *Board) CreateKnowledge(ctx context.Context, categoryID, name, relation string) (models.Knowledge, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.state.Memories) == 0 {
		return models.Knowledge{}, b.invalid(OpCreateKnowledge, ErrNoCategories)
	}
	if blank(name) || blank(relation) {
		return models.Knowledge{}, b.invalid(OpCreateKnowledge, invalidf("knowledge name and relation are required"))
	}
	ci, ok := b.findCategory(categoryID)
	if !ok {
		return models.Knowledge{}, b.invalid(OpCreateKnowledge, ErrCategoryNotFound)
	}

	k := models.NewKnowledge(b.nextID(), text(name), text(relation))
	cat := &b.state.Memories[ci]
	cat.Items = append(cat.Items, k)
	cat.Collapsed = false
	if err := b.commit(ctx, OpCreateKnowledge); err != nil {
		return k, err
	}
	b.logger.Debug("knowledge created", "id", k.ID, "category", cat.ID)
	return k, nil
}

// RenameCategory changes a category's name. An empty name leaves it as is.
func (b *Board) RenameCategory(ctx context.Context, id, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if blank(name) {
		b.noop(OpRenameCategory, "empty name", "id", id)
		return nil
	}
	ci, ok := b.findCategory(id)
	if !ok {
		b.noop(OpRenameCategory, "category not found", "id", id)
		return nil
	}
	b.state.Memories[ci].Name = text(name)
	return b.commit(ctx, OpRenameCategory)
}

// EditKnowledge replaces both fields of a knowledge item. If either value
// is empty the edit counts as cancelled and nothing changes.
func (b *Board) EditKnowledge(ctx context.Context, id, name, relation string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if blank(name) || blank(relation) {
		b.noop(OpEditKnowledge, "empty input", "id", id)
		return nil
	}
	ci, ki, ok := b.findKnowledge(id)
	if !ok {
		b.noop(OpEditKnowledge, "knowledge not found", "id", id)
		return nil
	}
	item := &b.state.Memories[ci].Items[ki]
	item.Name = text(name)
	item.Relation = text(relation)
	return b.commit(ctx, OpEditKnowledge)
}

// DeleteCategory removes a category together with all of its items.
func (b *Board) DeleteCategory(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	ci, ok := b.findCategory(id)
	if !ok {
		b.noop(OpDeleteCategory, "category not found", "id", id)
		return nil
	}
	removed := len(b.state.Memories[ci].Items)
	b.state.Memories = append(b.state.Memories[:ci], b.state.Memories[ci+1:]...)
	if err := b.commit(ctx, OpDeleteCategory); err != nil {
		return err
	}
	b.logger.Debug("category deleted", "id", id, "items_removed", removed)
	return nil
}

// DeleteKnowledge removes one item from its category.
func (b *Board) DeleteKnowledge(ctx context.Context, categoryID, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	ci, ok := b.findCategory(categoryID)
	if !ok {
		b.noop(OpDeleteKnowledge, "category not found", "category", categoryID)
		return nil
	}
	cat := &b.state.Memories[ci]
	for ki := range cat.Items {
		if cat.Items[ki].ID == id {
			cat.Items = append(cat.Items[:ki], cat.Items[ki+1:]...)
			return b.commit(ctx, OpDeleteKnowledge)
		}
	}
	b.noop(OpDeleteKnowledge, "knowledge not found", "category", categoryID, "id", id)
	return nil
}

// ToggleCollapse flips a category's collapsed flag.
func (b *Board) ToggleCollapse(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ci, ok := b.findCategory(id)
	if !ok {
		b.noop(OpToggleCollapse, "category not found", "id", id)
		return nil
	}
	b.state.Memories[ci].Collapsed = !b.state.Memories[ci].Collapsed
	return b.commit(ctx, OpToggleCollapse)
}
