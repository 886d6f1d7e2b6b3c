package board

import (
	"context"

	"github.com/ajitpratap0/thoughtboard/internal/metrics"
	"github.com/ajitpratap0/thoughtboard/internal/models"
	"github.com/ajitpratap0/thoughtboard/internal/transfer"
)

// CreateThought appends a thought with empty text and no placed references.
func (b *Board) CreateThought(ctx context.Context, name string) (models.Thought, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if blank(name) {
		return models.Thought{}, b.invalid(OpCreateThought, invalidf("thought name is required"))
	}
	th := models.NewThought(b.nextID(), text(name))
	b.state.Thoughts = append(b.state.Thoughts, th)
	if err := b.commit(ctx, OpCreateThought); err != nil {
		return th.Clone(), err
	}
	return th.Clone(), nil
}

// RenameThought changes a thought's name. An empty name leaves it as is.
func (b *Board) RenameThought(ctx context.Context, id, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if blank(name) {
		b.noop(OpRenameThought, "empty name", "id", id)
		return nil
	}
	ti, ok := b.findThought(id)
	if !ok {
		b.noop(OpRenameThought, "thought not found", "id", id)
		return nil
	}
	b.state.Thoughts[ti].Name = text(name)
	return b.commit(ctx, OpRenameThought)
}

// DeleteThought removes a thought and its placed references.
func (b *Board) DeleteThought(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	ti, ok := b.findThought(id)
	if !ok {
		b.noop(OpDeleteThought, "thought not found", "id", id)
		return nil
	}
	b.state.Thoughts = append(b.state.Thoughts[:ti], b.state.Thoughts[ti+1:]...)
	return b.commit(ctx, OpDeleteThought)
}

// SetThoughtText replaces the free text verbatim. Invalid UTF-8 is
// replaced with U+FFFD.
func (b *Board) SetThoughtText(ctx context.Context, id, body string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ti, ok := b.findThought(id)
	if !ok {
		b.noop(OpSetThoughtText, "thought not found", "id", id)
		return nil
	}
	b.state.Thoughts[ti].Text = text(body)
	return b.commit(ctx, OpSetThoughtText)
}

// DropReference places a snapshot of ref on a thought. Invalid references
// are logged and discarded.
func (b *Board) DropReference(ctx context.Context, thoughtID string, ref models.Reference) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropLocked(ctx, thoughtID, ref)
}

// Drop decodes a drag payload and places it on a thought. Payloads that do
// not decode are logged and discarded.
func (b *Board) Drop(ctx context.Context, thoughtID string, raw []byte) error {
	ref, err := transfer.Decode(raw)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.metrics.RecordOperation(OpDropReference, metrics.StatusInvalid)
		b.logger.Warn("discarding drag payload", "thought", thoughtID, "error", err)
		return nil
	}
	return b.dropLocked(ctx, thoughtID, ref)
}

func (b *Board) dropLocked(ctx context.Context, thoughtID string, ref models.Reference) error {
	if err := transfer.Validate(ref); err != nil {
		b.metrics.RecordOperation(OpDropReference, metrics.StatusInvalid)
		b.logger.Warn("discarding dropped reference", "thought", thoughtID, "error", err)
		return nil
	}
	ti, ok := b.findThought(thoughtID)
	if !ok {
		b.noop(OpDropReference, "thought not found", "thought", thoughtID)
		return nil
	}

	// Validate only accepts the value variants, so the stored copy cannot
	// be changed through the caller's reference.
	th := &b.state.Thoughts[ti]
	th.DroppedItems = append(th.DroppedItems, models.Place(ref))
	return b.commit(ctx, OpDropReference)
}

// RemovePlacedReference removes the placed reference at index on a thought.
func (b *Board) RemovePlacedReference(ctx context.Context, thoughtID string, index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ti, ok := b.findThought(thoughtID)
	if !ok {
		b.noop(OpRemovePlacedRef, "thought not found", "thought", thoughtID)
		return nil
	}
	th := &b.state.Thoughts[ti]
	if index < 0 || index >= len(th.DroppedItems) {
		b.noop(OpRemovePlacedRef, "index out of range", "thought", thoughtID, "index", index)
		return nil
	}
	th.DroppedItems = append(th.DroppedItems[:index], th.DroppedItems[index+1:]...)
	return b.commit(ctx, OpRemovePlacedRef)
}
