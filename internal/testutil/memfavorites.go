package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/dalemusser/docuhub/internal/app/hierarchy"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type favKey struct {
	user primitive.ObjectID
	doc  primitive.ObjectID
}

type favEntry struct {
	workspace primitive.ObjectID
	seq       int
}

// MemFavorites is an in-memory hierarchy.FavoritesIndex.
// OnRemoveDocuments, when set, aborts RemoveDocuments with its error.
type MemFavorites struct {
	mu   sync.Mutex
	favs map[favKey]favEntry
	seq  int

	OnRemoveDocuments func(ids []primitive.ObjectID) error
}

var _ hierarchy.FavoritesIndex = (*MemFavorites)(nil)

func NewMemFavorites() *MemFavorites {
	return &MemFavorites{favs: map[favKey]favEntry{}}
}

func (f *MemFavorites) Add(_ context.Context, userID, workspaceID, documentID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := favKey{userID, documentID}
	if _, ok := f.favs[k]; ok {
		return nil
	}
	f.seq++
	f.favs[k] = favEntry{workspace: workspaceID, seq: f.seq}
	return nil
}

func (f *MemFavorites) Remove(_ context.Context, userID, documentID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.favs, favKey{userID, documentID})
	return nil
}

func (f *MemFavorites) IsFavorite(_ context.Context, userID, documentID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.favs[favKey{userID, documentID}]
	return ok, nil
}

func (f *MemFavorites) ListDocumentIDs(_ context.Context, userID, workspaceID primitive.ObjectID) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	type row struct {
		id  primitive.ObjectID
		seq int
	}
	var rows []row
	for k, e := range f.favs {
		if k.user == userID && e.workspace == workspaceID {
			rows = append(rows, row{k.doc, e.seq})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.id)
	}
	return ids, nil
}

func (f *MemFavorites) RemoveDocuments(_ context.Context, documentIDs []primitive.ObjectID) (int64, error) {
	if f.OnRemoveDocuments != nil {
		if err := f.OnRemoveDocuments(documentIDs); err != nil {
			return 0, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	drop := make(map[primitive.ObjectID]bool, len(documentIDs))
	for _, id := range documentIDs {
		drop[id] = true
	}
	var n int64
	for k := range f.favs {
		if drop[k.doc] {
			delete(f.favs, k)
			n++
		}
	}
	return n, nil
}

// Count returns the number of stored favorites across all users.
func (f *MemFavorites) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.favs)
}

// Has reports whether (userID, documentID) is stored, regardless of
// whether the document is live.
func (f *MemFavorites) Has(userID, documentID primitive.ObjectID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.favs[favKey{userID, documentID}]
	return ok
}
