package board

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/thoughtboard/internal/models"
	"github.com/ajitpratap0/thoughtboard/internal/persistence"
	"github.com/ajitpratap0/thoughtboard/internal/store"
)

// recordingSaver counts writes and keeps the last saved document.
type recordingSaver struct {
	saves   int
	clears  int
	last    models.State
	failing error
}

func (r *recordingSaver) Save(_ context.Context, st *models.State) error {
	if r.failing != nil {
		return r.failing
	}
	r.saves++
	r.last = st.Clone()
	return nil
}

func (r *recordingSaver) Clear(_ context.Context) error {
	if r.failing != nil {
		return r.failing
	}
	r.clears++
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBoard(t *testing.T) (*Board, *recordingSaver) {
	t.Helper()
	saver := &recordingSaver{}
	return New(nil, saver, WithLogger(quietLogger())), saver
}

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()
	b, saver := newTestBoard(t)

	cat, err := b.CreateCategory(ctx, "Math")
	require.NoError(t, err)
	assert.NotEmpty(t, cat.ID)
	assert.Equal(t, "Math", cat.Name)
	assert.False(t, cat.Collapsed)
	assert.Equal(t, []models.Knowledge{}, cat.Items)
	assert.Equal(t, 1, saver.saves)
	assert.Equal(t, b.Snapshot(), saver.last, "saved document matches memory")

	_, err = b.CreateCategory(ctx, "Cooking")
	require.NoError(t, err)
	snap := b.Snapshot()
	require.Len(t, snap.Memories, 2)
	assert.Equal(t, "Math", snap.Memories[0].Name, "append order is display order")
	assert.Equal(t, "Cooking", snap.Memories[1].Name)
}

func TestCreateCategory_EmptyNameRejected(t *testing.T) {
	ctx := context.Background()
	b, saver := newTestBoard(t)

	for _, name := range []string{"", "   "} {
		_, err := b.CreateCategory(ctx, name)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
	}
	assert.Empty(t, b.Snapshot().Memories)
	assert.Equal(t, 0, saver.saves, "validation failures never write")
}

func TestCreateKnowledge(t *testing.T) {
	ctx := context.Background()
	b, saver := newTestBoard(t)

	_, err := b.CreateKnowledge(ctx, "id-1", "Derivative", "rate of change")
	assert.True(t, errors.Is(err, ErrNoCategories))
	assert.True(t, errors.Is(err, ErrValidation))

	cat, err := b.CreateCategory(ctx, "Math")
	require.NoError(t, err)
	require.NoError(t, b.ToggleCollapse(ctx, cat.ID))
	writes := saver.saves

	_, err = b.CreateKnowledge(ctx, cat.ID, "", "rate of change")
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = b.CreateKnowledge(ctx, cat.ID, "Derivative", "")
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = b.CreateKnowledge(ctx, "id-999", "Derivative", "rate of change")
	assert.True(t, errors.Is(err, ErrCategoryNotFound))
	assert.Equal(t, writes, saver.saves)

	k, err := b.CreateKnowledge(ctx, cat.ID, "Derivative", "rate of change")
	require.NoError(t, err)
	assert.Equal(t, models.KindKnowledge, k.Type)

	got, ok := b.Category(cat.ID)
	require.True(t, ok)
	require.Len(t, got.Items, 1)
	assert.Equal(t, k, got.Items[0])
	assert.False(t, got.Collapsed, "adding knowledge expands the category")
	assert.Equal(t, writes+1, saver.saves)
}

func TestScenario_MathCategory(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBoard(t)

	cat, err := b.CreateCategory(ctx, "Math")
	require.NoError(t, err)
	_, err = b.CreateKnowledge(ctx, cat.ID, "Derivative", "rate of change")
	require.NoError(t, err)

	snap := b.Snapshot()
	require.Len(t, snap.Memories, 1)
	require.Len(t, snap.Memories[0].Items, 1)
	assert.Equal(t, "Derivative", snap.Memories[0].Items[0].Name)

	require.NoError(t, b.DeleteCategory(ctx, cat.ID, true))
	assert.Empty(t, b.Snapshot().Memories)
}

func TestRenameCategory(t *testing.T) {
	ctx := context.Background()
	b, saver := newTestBoard(t)
	cat, err := b.CreateCategory(ctx, "Math")
	require.NoError(t, err)
	writes := saver.saves

	require.NoError(t, b.RenameCategory(ctx, cat.ID, ""))
	require.NoError(t, b.RenameCategory(ctx, "id-404", "Other"))
	got, _ := b.Category(cat.ID)
	assert.Equal(t, "Math", got.Name)
	assert.Equal(t, writes, saver.saves, "no-ops never write")

	require.NoError(t, b.RenameCategory(ctx, cat.ID, "Algebra"))
	got, _ = b.Category(cat.ID)
	assert.Equal(t, "Algebra", got.Name)
	assert.Equal(t, writes+1, saver.saves)
}

func TestEditKnowledge(t *testing.T) {
	ctx := context.Background()
	b, saver := newTestBoard(t)
	cat, _ := b.CreateCategory(ctx, "Math")
	k, _ := b.CreateKnowledge(ctx, cat.ID, "Derivative", "rate of change")
	writes := saver.saves

	require.NoError(t, b.EditKnowledge(ctx, k.ID, "", "slope"))
	require.NoError(t, b.EditKnowledge(ctx, k.ID, "Integral", ""))
	require.NoError(t, b.EditKnowledge(ctx, "id-404", "Integral", "area"))
	got, _ := b.Category(cat.ID)
	assert.Equal(t, "Derivative", got.Items[0].Name)
	assert.Equal(t, "rate of change", got.Items[0].Relation)
	assert.Equal(t, writes, saver.saves)

	require.NoError(t, b.EditKnowledge(ctx, k.ID, "Integral", "area under curve"))
	got, _ = b.Category(cat.ID)
	assert.Equal(t, "Integral", got.Items[0].Name)
	assert.Equal(t, "area under curve", got.Items[0].Relation)
	assert.Equal(t, k.ID, got.Items[0].ID)
}

func TestDeleteCategory_Cascade(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBoard(t)
	math, _ := b.CreateCategory(ctx, "Math")
	cooking, _ := b.CreateCategory(ctx, "Cooking")
	d, _ := b.CreateKnowledge(ctx, math.ID, "Derivative", "rate of change")
	_, _ = b.CreateKnowledge(ctx, math.ID, "Integral", "area")
	boil, _ := b.CreateKnowledge(ctx, cooking.ID, "Boil", "water")

	require.True(t, errors.Is(b.DeleteCategory(ctx, math.ID, false), ErrNotConfirmed))
	assert.Len(t, b.Snapshot().Memories, 2)

	require.NoError(t, b.DeleteCategory(ctx, math.ID, true))
	snap := b.Snapshot()
	require.Len(t, snap.Memories, 1)
	assert.Equal(t, cooking.ID, snap.Memories[0].ID)
	assert.Equal(t, []models.Knowledge{boil}, snap.Memories[0].Items, "other categories untouched")

	_, ok := b.DragSource(d.ID)
	assert.False(t, ok, "items went with their category")
}

func TestDeleteKnowledge(t *testing.T) {
	ctx := context.Background()
	b, saver := newTestBoard(t)
	cat, _ := b.CreateCategory(ctx, "Math")
	d, _ := b.CreateKnowledge(ctx, cat.ID, "Derivative", "rate of change")
	i, _ := b.CreateKnowledge(ctx, cat.ID, "Integral", "area")

	assert.True(t, errors.Is(b.DeleteKnowledge(ctx, cat.ID, d.ID, false), ErrNotConfirmed))

	writes := saver.saves
	require.NoError(t, b.DeleteKnowledge(ctx, "id-404", d.ID, true))
	require.NoError(t, b.DeleteKnowledge(ctx, cat.ID, "id-404", true))
	assert.Equal(t, writes, saver.saves)

	require.NoError(t, b.DeleteKnowledge(ctx, cat.ID, d.ID, true))
	got, _ := b.Category(cat.ID)
	assert.Equal(t, []models.Knowledge{i}, got.Items)
}

func TestToggleCollapse_TwiceIsIdentity(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBoard(t)
	cat, _ := b.CreateCategory(ctx, "Math")

	require.NoError(t, b.ToggleCollapse(ctx, cat.ID))
	got, _ := b.Category(cat.ID)
	assert.True(t, got.Collapsed)

	require.NoError(t, b.ToggleCollapse(ctx, cat.ID))
	got, _ = b.Category(cat.ID)
	assert.False(t, got.Collapsed)

	require.NoError(t, b.ToggleCollapse(ctx, "id-404"))
}

func TestPersistFailureIsReported(t *testing.T) {
	ctx := context.Background()
	saver := &recordingSaver{failing: errors.New("quota exceeded")}
	b := New(nil, saver, WithLogger(quietLogger()))

	_, err := b.CreateCategory(ctx, "Math")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersist))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestIDsUniqueAcrossDeletesAndReload(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	gw := persistence.New(kv, "", quietLogger())
	b := New(gw.Load(ctx), gw, WithLogger(quietLogger()))

	seen := map[string]bool{}
	track := func(id string) {
		assert.False(t, seen[id], "id %s reused", id)
		seen[id] = true
	}

	for i := 0; i < 5; i++ {
		cat, err := b.CreateCategory(ctx, "c")
		require.NoError(t, err)
		track(cat.ID)
		k, err := b.CreateKnowledge(ctx, cat.ID, "k", "r")
		require.NoError(t, err)
		track(k.ID)
		require.NoError(t, b.DeleteCategory(ctx, cat.ID, true))
	}

	reloaded := New(gw.Load(ctx), gw, WithLogger(quietLogger()))
	for i := 0; i < 5; i++ {
		th, err := reloaded.CreateThought(ctx, "t")
		require.NoError(t, err)
		track(th.ID)
		n, err := reloaded.LoadNamedTemplate(ctx, "math")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	}
	for _, cat := range reloaded.Snapshot().Memories {
		track(cat.ID)
		for _, k := range cat.Items {
			track(k.ID)
		}
	}
}

func TestWriteThroughMatchesGateway(t *testing.T) {
	ctx := context.Background()
	gw := persistence.New(store.NewMemoryKV(), "", quietLogger())
	b := New(gw.Load(ctx), gw, WithLogger(quietLogger()))

	cat, _ := b.CreateCategory(ctx, "Math")
	k, _ := b.CreateKnowledge(ctx, cat.ID, "Derivative", "rate of change")
	th, _ := b.CreateThought(ctx, "Sheet1")
	ref, _ := b.DragSource(k.ID)
	require.NoError(t, b.DropReference(ctx, th.ID, ref))
	require.NoError(t, b.SetThoughtText(ctx, th.ID, "notes"))
	require.NoError(t, b.SaveAsTemplate(ctx, "MyTpl", false))

	snap := b.Snapshot()
	assert.Equal(t, &snap, gw.Load(ctx))
}

func TestInvalidUTF8SurvivesReload(t *testing.T) {
	ctx := context.Background()
	gw := persistence.New(store.NewMemoryKV(), "", quietLogger())
	b := New(gw.Load(ctx), gw, WithLogger(quietLogger()))

	cat, _ := b.CreateCategory(ctx, "Ma\xffth")
	_, _ = b.CreateKnowledge(ctx, cat.ID, "k\xfe", "r\xff")
	th, _ := b.CreateThought(ctx, "Sheet\xff")
	require.NoError(t, b.SetThoughtText(ctx, th.ID, "a\xffb"))
	require.NoError(t, b.SaveAsTemplate(ctx, "tpl\xff", false))

	got, _ := b.Thought(th.ID)
	assert.Equal(t, "a\uFFFDb", got.Text)
	assert.Equal(t, "Ma\uFFFDth", b.Snapshot().Memories[0].Name)

	snap := b.Snapshot()
	assert.Equal(t, &snap, gw.Load(ctx))
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	b, saver := newTestBoard(t)
	_, _ = b.CreateCategory(ctx, "Math")
	_, _ = b.CreateThought(ctx, "Sheet")

	assert.True(t, errors.Is(b.Reset(ctx, false), ErrNotConfirmed))
	assert.Equal(t, 0, saver.clears)

	require.NoError(t, b.Reset(ctx, true))
	assert.Equal(t, 1, saver.clears)
	assert.Equal(t, *models.NewState(), b.Snapshot())

	cat, err := b.CreateCategory(ctx, "Fresh")
	require.NoError(t, err)
	assert.Equal(t, "id-1", cat.ID, "reset restarts the counter with the document")
}

func TestSnapshotIsDetached(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBoard(t)
	cat, _ := b.CreateCategory(ctx, "Math")
	_, _ = b.CreateKnowledge(ctx, cat.ID, "Derivative", "rate of change")

	snap := b.Snapshot()
	snap.Memories[0].Name = "changed"
	snap.Memories[0].Items[0].Name = "changed"

	got, _ := b.Category(cat.ID)
	assert.Equal(t, "Math", got.Name)
	assert.Equal(t, "Derivative", got.Items[0].Name)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBoard(t)
	_, err := b.LoadNamedTemplate(ctx, "cooking")
	require.NoError(t, err)
	_, _ = b.CreateThought(ctx, "Sheet")

	st := b.Stats()
	assert.Equal(t, 4, st.Categories)
	assert.Equal(t, 7, st.KnowledgeItems)
	assert.Equal(t, 1, st.Thoughts)
}
