package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/docuhub/internal/app/hierarchy"
	"github.com/dalemusser/docuhub/internal/app/system/paging"
	"github.com/dalemusser/docuhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemStore is an in-memory hierarchy.Store for engine and handler tests.
// It mirrors the MongoDB store's semantics, including version checks.
//
// The On* hooks, when set, run before the matching operation and abort it
// with their error. WithinTx snapshots the data and restores it when fn
// fails, unless NoTx is set.
type MemStore struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Document

	OnUpdate       func(id primitive.ObjectID) error
	OnSoftDelete   func(id primitive.ObjectID) error
	OnListChildren func(parentID primitive.ObjectID) error
	NoTx           bool

	txCount int
}

var _ hierarchy.Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{docs: map[primitive.ObjectID]models.Document{}}
}

// Put stores doc verbatim (no defaults, no version bump). Use it to seed
// states the service would never produce, such as cycles.
func (m *MemStore) Put(doc models.Document) models.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if doc.Version == 0 {
		doc.Version = 1
	}
	if doc.TitleCI == "" {
		doc.TitleCI = text.Fold(doc.Title)
	}
	m.docs[doc.ID] = doc
	return doc
}

// All returns every stored document, deleted ones included.
func (m *MemStore) All() []models.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Document, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d)
	}
	sortMem(out)
	return out
}

// TxCount reports how many WithinTx calls were made.
func (m *MemStore) TxCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txCount
}

func (m *MemStore) Get(_ context.Context, id primitive.ObjectID) (models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || d.IsDeleted {
		return models.Document{}, hierarchy.ErrNotFound
	}
	return d, nil
}

func (m *MemStore) Lookup(_ context.Context, id primitive.ObjectID) (models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return models.Document{}, hierarchy.ErrNotFound
	}
	return d, nil
}

func (m *MemStore) ListByWorkspace(_ context.Context, workspaceID primitive.ObjectID) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Document{}
	for _, d := range m.docs {
		if d.WorkspaceID == workspaceID && !d.IsDeleted {
			out = append(out, d)
		}
	}
	sortMem(out)
	return out, nil
}

func (m *MemStore) ListByParent(_ context.Context, workspaceID primitive.ObjectID, parentID *primitive.ObjectID) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Document{}
	for _, d := range m.docs {
		if d.WorkspaceID == workspaceID && !d.IsDeleted && d.SameParent(parentID) {
			out = append(out, d)
		}
	}
	sortMem(out)
	return out, nil
}

func (m *MemStore) ListChildren(_ context.Context, workspaceID, parentID primitive.ObjectID, batch string) ([]models.Document, error) {
	if m.OnListChildren != nil {
		if err := m.OnListChildren(parentID); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Document{}
	for _, d := range m.docs {
		if d.WorkspaceID != workspaceID || d.ParentID == nil || *d.ParentID != parentID {
			continue
		}
		if !d.IsDeleted || (batch != "" && d.DeleteBatch == batch) {
			out = append(out, d)
		}
	}
	sortMem(out)
	return out, nil
}

func (m *MemStore) Insert(_ context.Context, doc models.Document) (models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	doc.ID = primitive.NewObjectID()
	doc.TitleCI = text.Fold(doc.Title)
	if doc.Metadata.Tags == nil {
		doc.Metadata.Tags = []string{}
	}
	doc.IsDeleted = false
	doc.Version = 1
	doc.CreatedAt = now
	doc.UpdatedAt = now
	m.docs[doc.ID] = doc
	return doc, nil
}

func (m *MemStore) Update(_ context.Context, id primitive.ObjectID, expectedVersion int64, patch hierarchy.Patch) (models.Document, error) {
	if m.OnUpdate != nil {
		if err := m.OnUpdate(id); err != nil {
			return models.Document{}, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || d.IsDeleted {
		return models.Document{}, hierarchy.ErrNotFound
	}
	if expectedVersion != hierarchy.AnyVersion && d.Version != expectedVersion {
		return models.Document{}, hierarchy.ErrConflict
	}

	if patch.Title != nil {
		d.Title = *patch.Title
		d.TitleCI = text.Fold(*patch.Title)
	}
	if patch.Slug != nil {
		d.Slug = *patch.Slug
	}
	if patch.Emoji != nil {
		d.Emoji = *patch.Emoji
	}
	if patch.Content != nil {
		d.Content = patch.Content
	}
	if patch.Tags != nil {
		d.Metadata.Tags = patch.Tags
	}
	if patch.Position != nil {
		d.Position = *patch.Position
	}
	if patch.SetParent {
		if patch.ParentID == nil {
			d.ParentID = nil
		} else {
			p := *patch.ParentID
			d.ParentID = &p
		}
	}
	d.LastEditedBy = patch.EditedBy
	d.UpdatedAt = time.Now().UTC()
	d.Version++
	m.docs[id] = d
	return d, nil
}

func (m *MemStore) SoftDelete(_ context.Context, id primitive.ObjectID, batch string, actor primitive.ObjectID) (bool, error) {
	if m.OnSoftDelete != nil {
		if err := m.OnSoftDelete(id); err != nil {
			return false, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return false, hierarchy.ErrNotFound
	}
	if d.IsDeleted {
		return false, nil
	}
	now := time.Now().UTC()
	d.IsDeleted = true
	d.DeletedAt = &now
	d.DeleteBatch = batch
	if !actor.IsZero() {
		a := actor
		d.DeletedBy = &a
	}
	d.UpdatedAt = now
	d.Version++
	m.docs[id] = d
	return true, nil
}

func (m *MemStore) RecordView(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || d.IsDeleted {
		return nil
	}
	now := time.Now().UTC()
	d.Metadata.ViewCount++
	d.Metadata.LastViewedAt = &now
	m.docs[id] = d
	return nil
}

func (m *MemStore) WorkspaceIDs(_ context.Context) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[primitive.ObjectID]bool{}
	var out []primitive.ObjectID
	for _, d := range m.docs {
		if !d.IsDeleted && !seen[d.WorkspaceID] {
			seen[d.WorkspaceID] = true
			out = append(out, d.WorkspaceID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hex() < out[j].Hex() })
	return out, nil
}

func (m *MemStore) Search(_ context.Context, workspaceID primitive.ObjectID, query, tag string, limit int) ([]models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := text.Fold(query)
	tag = strings.ToLower(tag)

	out := []models.Document{}
	for _, d := range m.docs {
		if d.WorkspaceID != workspaceID || d.IsDeleted {
			continue
		}
		if q != "" && !strings.Contains(d.TitleCI, q) {
			continue
		}
		if tag != "" && !hasTag(d.Metadata.Tags, tag) {
			continue
		}
		d.Content = nil
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	limit = paging.Clamp(limit)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.txCount++
	var snapshot map[primitive.ObjectID]models.Document
	if !m.NoTx {
		snapshot = make(map[primitive.ObjectID]models.Document, len(m.docs))
		for k, v := range m.docs {
			snapshot[k] = v
		}
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		if snapshot != nil {
			m.mu.Lock()
			m.docs = snapshot
			m.mu.Unlock()
		}
		return err
	}
	return nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func sortMem(docs []models.Document) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Position != docs[j].Position {
			return docs[i].Position < docs[j].Position
		}
		return docs[i].ID.Hex() < docs[j].ID.Hex()
	})
}
