package board

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/thoughtboard/internal/catalog"
	"github.com/ajitpratap0/thoughtboard/internal/models"
	"github.com/ajitpratap0/thoughtboard/internal/persistence"
	"github.com/ajitpratap0/thoughtboard/internal/store"
)

func TestLoadNamedTemplate_Builtin(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBoard(t)

	n, err := b.LoadNamedTemplate(ctx, "math")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	snap := b.Snapshot()
	require.Len(t, snap.Memories, 2)
	assert.Equal(t, "図形と方程式", snap.Memories[0].Name)
	assert.Len(t, snap.Memories[0].Items, 5)
	assert.Equal(t, "2次方程式", snap.Memories[1].Name)
	assert.Len(t, snap.Memories[1].Items, 2)

	_, err = b.LoadNamedTemplate(ctx, "unknown")
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
}

func TestLoadTemplate_AppendsWithFreshIDs(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBoard(t)
	existing, _ := b.CreateCategory(ctx, "Existing")

	bps := []models.CategoryBlueprint{
		{ID: existing.ID, Name: "Copied", Items: []models.KnowledgeBlueprint{{ID: existing.ID, Name: "k", Relation: "r"}}},
		{Name: "Bare"},
	}
	n, err := b.LoadTemplate(ctx, bps)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	snap := b.Snapshot()
	require.Len(t, snap.Memories, 3)
	assert.Equal(t, existing.ID, snap.Memories[0].ID)
	assert.NotEqual(t, existing.ID, snap.Memories[1].ID, "placeholder ids are reissued")
	assert.NotEqual(t, existing.ID, snap.Memories[1].Items[0].ID)
	assert.Equal(t, []models.Knowledge{}, snap.Memories[2].Items)
	assert.False(t, snap.Memories[1].Collapsed)
}

func TestLoadTemplate_EmptyIsNoop(t *testing.T) {
	ctx := context.Background()
	b, saver := newTestBoard(t)
	n, err := b.LoadTemplate(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 0, saver.saves)
}

func TestScenario_SaveAndLoadIntoFreshBoard(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBoard(t)
	cat, _ := b.CreateCategory(ctx, "Math")
	_, _ = b.CreateKnowledge(ctx, cat.ID, "Derivative", "rate of change")
	_, _ = b.CreateCategory(ctx, "Empty")

	require.NoError(t, b.SaveAsTemplate(ctx, "MyTpl", false))
	data, err := b.ExportTemplate("MyTpl")
	require.NoError(t, err)

	fresh, _ := newTestBoard(t)
	_, _ = fresh.CreateThought(ctx, "advance the counter")
	require.NoError(t, fresh.ImportTemplate(ctx, "MyTpl", data, false))
	n, err := fresh.LoadNamedTemplate(ctx, "MyTpl")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	orig := b.Snapshot().Memories
	got := fresh.Snapshot().Memories
	require.Len(t, got, 2)
	for i := range got {
		assert.Equal(t, orig[i].Name, got[i].Name)
		require.Len(t, got[i].Items, len(orig[i].Items))
		for j := range got[i].Items {
			assert.Equal(t, orig[i].Items[j].Name, got[i].Items[j].Name)
			assert.Equal(t, orig[i].Items[j].Relation, got[i].Items[j].Relation)
		}
	}

	ids := map[string]bool{}
	for _, th := range fresh.Snapshot().Thoughts {
		ids[th.ID] = true
	}
	for _, c := range got {
		assert.False(t, ids[c.ID], "id %s reused", c.ID)
		ids[c.ID] = true
		for _, k := range c.Items {
			assert.False(t, ids[k.ID], "id %s reused", k.ID)
			ids[k.ID] = true
		}
	}
}

func TestSaveAsTemplate(t *testing.T) {
	ctx := context.Background()
	b, saver := newTestBoard(t)
	_, _ = b.CreateCategory(ctx, "Math")

	assert.True(t, errors.Is(b.SaveAsTemplate(ctx, "", false), ErrValidation))
	require.NoError(t, b.SaveAsTemplate(ctx, "MyTpl", false))
	writes := saver.saves

	_, _ = b.CreateCategory(ctx, "Cooking")
	writes++
	err := b.SaveAsTemplate(ctx, "MyTpl", false)
	assert.True(t, errors.Is(err, ErrTemplateExists))
	assert.Equal(t, writes, saver.saves)
	assert.Len(t, b.Snapshot().CustomTemplates["MyTpl"], 1)

	require.NoError(t, b.SaveAsTemplate(ctx, "MyTpl", true))
	assert.Len(t, b.Snapshot().CustomTemplates["MyTpl"], 2)
}

func TestSaveAsTemplate_IsDetachedFromBoard(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBoard(t)
	cat, _ := b.CreateCategory(ctx, "Math")
	require.NoError(t, b.SaveAsTemplate(ctx, "MyTpl", false))

	require.NoError(t, b.RenameCategory(ctx, cat.ID, "Changed"))
	_, err := b.CreateKnowledge(ctx, cat.ID, "k", "r")
	require.NoError(t, err)

	tpl := b.Snapshot().CustomTemplates["MyTpl"]
	require.Len(t, tpl, 1)
	assert.Equal(t, "Math", tpl[0].Name)
	assert.Empty(t, tpl[0].Items)
}

func TestDeleteTemplate(t *testing.T) {
	ctx := context.Background()
	b, saver := newTestBoard(t)
	require.NoError(t, b.SaveAsTemplate(ctx, "MyTpl", false))
	writes := saver.saves

	require.NoError(t, b.DeleteTemplate(ctx, "math"), "built-ins cannot be deleted")
	assert.Equal(t, writes, saver.saves)

	require.NoError(t, b.DeleteTemplate(ctx, "MyTpl"))
	assert.Empty(t, b.Snapshot().CustomTemplates)
}

func TestExportTemplate(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBoard(t)
	cat, _ := b.CreateCategory(ctx, "Math")
	_, _ = b.CreateKnowledge(ctx, cat.ID, "Derivative", "rate of change")
	require.NoError(t, b.SaveAsTemplate(ctx, "MyTpl", false))

	data, err := b.ExportTemplate("MyTpl")
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"id"`)

	bps, err := catalog.ParseBlueprints(data)
	require.NoError(t, err)
	assert.Equal(t, []models.CategoryBlueprint{{
		Name:  "Math",
		Items: []models.KnowledgeBlueprint{{Name: "Derivative", Relation: "rate of change"}},
	}}, bps)

	_, err = b.ExportTemplate("math")
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
}

func TestScenario_ImportRejectsNonArray(t *testing.T) {
	ctx := context.Background()
	b, saver := newTestBoard(t)
	require.NoError(t, b.SaveAsTemplate(ctx, "Keep", false))
	before := b.Snapshot().CustomTemplates
	writes := saver.saves

	err := b.ImportTemplate(ctx, "Bad", []byte(`{"not":"an array"}`), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrNotArray))

	err = b.ImportTemplate(ctx, "Bad", []byte(`[{"name":`), false)
	assert.True(t, errors.Is(err, catalog.ErrFormat))

	assert.Equal(t, before, b.Snapshot().CustomTemplates)
	assert.Equal(t, writes, saver.saves)
}

func TestImportTemplate_Overwrite(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBoard(t)
	doc := []byte(`[{"name":"A","items":[{"name":"k","relation":"r"}]}]`)

	require.NoError(t, b.ImportTemplate(ctx, "T", doc, false))
	err := b.ImportTemplate(ctx, "T", []byte(`[]`), false)
	assert.True(t, errors.Is(err, ErrTemplateExists))
	assert.Len(t, b.Snapshot().CustomTemplates["T"], 1)

	require.NoError(t, b.ImportTemplate(ctx, "T", []byte(`[]`), true))
	assert.Empty(t, b.Snapshot().CustomTemplates["T"])
}

func TestTemplates_ListsBuiltinsAndCustom(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBoard(t)
	require.NoError(t, b.SaveAsTemplate(ctx, "MyTpl", false))

	entries := b.Templates()
	require.Len(t, entries, 3)
	assert.Equal(t, catalog.Entry{Name: "cooking", Source: catalog.SourceBuiltin, Categories: 4}, entries[0])
	assert.Equal(t, catalog.Entry{Name: "math", Source: catalog.SourceBuiltin, Categories: 2}, entries[1])
	assert.Equal(t, catalog.Entry{Name: "MyTpl", Source: catalog.SourceCustom, Categories: 0}, entries[2])
}

func TestCustomTemplatesSurviveReload(t *testing.T) {
	ctx := context.Background()
	gw := persistence.New(store.NewMemoryKV(), "", quietLogger())
	b := New(gw.Load(ctx), gw, WithLogger(quietLogger()))
	cat, _ := b.CreateCategory(ctx, "Math")
	_, _ = b.CreateKnowledge(ctx, cat.ID, "Derivative", "rate of change")
	require.NoError(t, b.SaveAsTemplate(ctx, "MyTpl", false))

	reloaded := New(gw.Load(ctx), gw, WithLogger(quietLogger()))
	assert.Equal(t, b.Snapshot().CustomTemplates, reloaded.Snapshot().CustomTemplates)
}
