package documentstore_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dalemusser/docuhub/internal/app/hierarchy"
	documentstore "github.com/dalemusser/docuhub/internal/app/store/documents"
	"github.com/dalemusser/docuhub/internal/domain/models"
	"github.com/dalemusser/docuhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newStore(t *testing.T) *documentstore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return documentstore.New(db, zap.NewNop())
}

func TestStore_InsertAndGet(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := primitive.NewObjectID()
	author := primitive.NewObjectID()
	doc, err := store.Insert(ctx, models.Document{
		WorkspaceID: ws,
		Title:       "Meeting Notes",
		Content:     json.RawMessage(`{"type":"doc"}`),
		AuthorID:    author,
	})
	require.NoError(t, err)
	assert.False(t, doc.ID.IsZero())
	assert.Equal(t, int64(1), doc.Version)
	assert.Equal(t, "meeting notes", doc.TitleCI)

	got, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meeting Notes", got.Title)
	assert.JSONEq(t, `{"type":"doc"}`, string(got.Content))
	assert.Nil(t, got.ParentID)
	assert.Equal(t, []string{}, got.Metadata.Tags)
}

func TestStore_Get_NotFound(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Get(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, hierarchy.ErrNotFound)
}

func TestStore_ListByParent(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := primitive.NewObjectID()
	b, err := store.Insert(ctx, models.Document{WorkspaceID: ws, Title: "B", Position: 1})
	require.NoError(t, err)
	a, err := store.Insert(ctx, models.Document{WorkspaceID: ws, Title: "A", Position: 0})
	require.NoError(t, err)
	child, err := store.Insert(ctx, models.Document{WorkspaceID: ws, ParentID: &a.ID, Title: "A1"})
	require.NoError(t, err)
	// Another workspace must not leak in.
	_, err = store.Insert(ctx, models.Document{WorkspaceID: primitive.NewObjectID(), Title: "X"})
	require.NoError(t, err)

	roots, err := store.ListByParent(ctx, ws, nil)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, a.ID, roots[0].ID)
	assert.Equal(t, b.ID, roots[1].ID)

	children, err := store.ListByParent(ctx, ws, &a.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)

	all, err := store.ListByWorkspace(ctx, ws)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_Update_VersionCheck(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	doc, err := store.Insert(ctx, models.Document{WorkspaceID: primitive.NewObjectID(), Title: "Draft"})
	require.NoError(t, err)

	title := "Final"
	updated, err := store.Update(ctx, doc.ID, 1, hierarchy.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "final", updated.TitleCI)

	_, err = store.Update(ctx, doc.ID, 1, hierarchy.Patch{Title: &title})
	assert.ErrorIs(t, err, hierarchy.ErrConflict)

	_, err = store.Update(ctx, primitive.NewObjectID(), 1, hierarchy.Patch{Title: &title})
	assert.ErrorIs(t, err, hierarchy.ErrNotFound)

	pos := 4
	moved, err := store.Update(ctx, doc.ID, hierarchy.AnyVersion, hierarchy.Patch{Position: &pos})
	require.NoError(t, err)
	assert.Equal(t, 4, moved.Position)
	assert.Equal(t, int64(3), moved.Version)
}

func TestStore_Update_Reparent(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := primitive.NewObjectID()
	parent, err := store.Insert(ctx, models.Document{WorkspaceID: ws, Title: "Parent"})
	require.NoError(t, err)
	doc, err := store.Insert(ctx, models.Document{WorkspaceID: ws, ParentID: &parent.ID, Title: "Child"})
	require.NoError(t, err)

	up, err := store.Update(ctx, doc.ID, hierarchy.AnyVersion, hierarchy.Patch{SetParent: true, ParentID: nil})
	require.NoError(t, err)
	assert.Nil(t, up.ParentID)

	roots, err := store.ListByParent(ctx, ws, nil)
	require.NoError(t, err)
	assert.Len(t, roots, 2)
}

func TestStore_SoftDelete_Idempotent(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	doc, err := store.Insert(ctx, models.Document{WorkspaceID: primitive.NewObjectID(), Title: "Gone"})
	require.NoError(t, err)
	actor := primitive.NewObjectID()

	changed, err := store.SoftDelete(ctx, doc.ID, "batch-1", actor)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = store.SoftDelete(ctx, doc.ID, "batch-2", actor)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = store.Get(ctx, doc.ID)
	assert.ErrorIs(t, err, hierarchy.ErrNotFound)

	dead, err := store.Lookup(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, dead.IsDeleted)
	assert.Equal(t, "batch-1", dead.DeleteBatch)
	require.NotNil(t, dead.DeletedBy)
	assert.Equal(t, actor, *dead.DeletedBy)

	_, err = store.SoftDelete(ctx, primitive.NewObjectID(), "batch-3", actor)
	assert.ErrorIs(t, err, hierarchy.ErrNotFound)
}

func TestStore_RecordView(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	doc, err := store.Insert(ctx, models.Document{WorkspaceID: primitive.NewObjectID(), Title: "Popular"})
	require.NoError(t, err)

	require.NoError(t, store.RecordView(ctx, doc.ID))
	require.NoError(t, store.RecordView(ctx, doc.ID))

	got, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Metadata.ViewCount)
	assert.NotNil(t, got.Metadata.LastViewedAt)
	assert.Equal(t, int64(1), got.Version, "views must not bump the version")
}

func TestStore_Search(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := primitive.NewObjectID()
	_, err := store.Insert(ctx, models.Document{WorkspaceID: ws, Title: "Roadmap (2026)", Metadata: models.DocumentMetadata{Tags: []string{"planning"}}})
	require.NoError(t, err)
	_, err = store.Insert(ctx, models.Document{WorkspaceID: ws, Title: "Retro notes", Metadata: models.DocumentMetadata{Tags: []string{"team"}}})
	require.NoError(t, err)

	hits, err := store.Search(ctx, ws, "roadmap (", "", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Roadmap (2026)", hits[0].Title)

	hits, err = store.Search(ctx, ws, "", "TEAM", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Retro notes", hits[0].Title)

	hits, err = store.Search(ctx, ws, "o", "", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestStore_WorkspaceIDs(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws1, ws2 := primitive.NewObjectID(), primitive.NewObjectID()
	_, err := store.Insert(ctx, models.Document{WorkspaceID: ws1, Title: "One"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, models.Document{WorkspaceID: ws2, Title: "Two"})
	require.NoError(t, err)

	ids, err := store.WorkspaceIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []primitive.ObjectID{ws1, ws2}, ids)
}

func TestStore_WithinTx(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var inserted models.Document
	err := store.WithinTx(ctx, func(ctx2 context.Context) error {
		var err error
		inserted, err = store.Insert(ctx2, models.Document{WorkspaceID: primitive.NewObjectID(), Title: "Tx"})
		return err
	})
	require.NoError(t, err)

	_, err = store.Get(ctx, inserted.ID)
	assert.NoError(t, err)
}

func TestStore_ListChildren_IncludesSameBatch(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := primitive.NewObjectID()
	parent, err := store.Insert(ctx, models.Document{WorkspaceID: ws, Title: "P"})
	require.NoError(t, err)
	live, err := store.Insert(ctx, models.Document{WorkspaceID: ws, ParentID: &parent.ID, Title: "live", Position: 0})
	require.NoError(t, err)
	same, err := store.Insert(ctx, models.Document{WorkspaceID: ws, ParentID: &parent.ID, Title: "same", Position: 1})
	require.NoError(t, err)
	other, err := store.Insert(ctx, models.Document{WorkspaceID: ws, ParentID: &parent.ID, Title: "other", Position: 2})
	require.NoError(t, err)

	_, err = store.SoftDelete(ctx, same.ID, "batch-a", primitive.NilObjectID)
	require.NoError(t, err)
	_, err = store.SoftDelete(ctx, other.ID, "batch-b", primitive.NilObjectID)
	require.NoError(t, err)

	kids, err := store.ListChildren(ctx, ws, parent.ID, "batch-a")
	require.NoError(t, err)
	require.Len(t, kids, 2)
	assert.Equal(t, live.ID, kids[0].ID)
	assert.Equal(t, same.ID, kids[1].ID)
}
