// internal/app/hierarchy/store.go
package hierarchy

import (
	"context"
	"encoding/json"

	"github.com/dalemusser/docuhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnyVersion disables the optimistic version check in Store.Update.
const AnyVersion int64 = 0

// Patch lists the fields an update changes. Nil fields are left alone.
type Patch struct {
	Title   *string
	Slug    *string
	Emoji   *string
	Content json.RawMessage
	Tags    []string

	Position *int

	// SetParent moves the document under ParentID (nil = top level).
	SetParent bool
	ParentID  *primitive.ObjectID

	EditedBy primitive.ObjectID
}

// Store is the flat document collection. It owns no tree logic.
//
// List operations return live documents only, sorted by (position, _id).
// Get returns ErrNotFound for unknown and soft-deleted ids; Lookup also
// returns soft-deleted documents. Update increments the version and
// returns ErrConflict when expectedVersion is set and does not match.
type Store interface {
	Get(ctx context.Context, id primitive.ObjectID) (models.Document, error)
	Lookup(ctx context.Context, id primitive.ObjectID) (models.Document, error)
	ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]models.Document, error)
	ListByParent(ctx context.Context, workspaceID primitive.ObjectID, parentID *primitive.ObjectID) ([]models.Document, error)

	// ListChildren returns the children of parentID that are live or were
	// soft-deleted under batch. Cascade deletes walk it so that a retried
	// cascade reaches the descendants its first attempt left behind.
	ListChildren(ctx context.Context, workspaceID, parentID primitive.ObjectID, batch string) ([]models.Document, error)
	Insert(ctx context.Context, doc models.Document) (models.Document, error)
	Update(ctx context.Context, id primitive.ObjectID, expectedVersion int64, patch Patch) (models.Document, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID, batch string, actor primitive.ObjectID) (bool, error)
	RecordView(ctx context.Context, id primitive.ObjectID) error
	WorkspaceIDs(ctx context.Context) ([]primitive.ObjectID, error)
	Search(ctx context.Context, workspaceID primitive.ObjectID, query, tag string, limit int) ([]models.Document, error)

	// WithinTx runs fn so that its writes commit or abort together when the
	// backend supports it.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// FavoritesIndex is the per-user, per-workspace set of favorite documents.
type FavoritesIndex interface {
	Add(ctx context.Context, userID, workspaceID, documentID primitive.ObjectID) error
	Remove(ctx context.Context, userID, documentID primitive.ObjectID) error
	IsFavorite(ctx context.Context, userID, documentID primitive.ObjectID) (bool, error)
	ListDocumentIDs(ctx context.Context, userID, workspaceID primitive.ObjectID) ([]primitive.ObjectID, error)
	RemoveDocuments(ctx context.Context, documentIDs []primitive.ObjectID) (int64, error)
}

// TreeCache stores built trees per workspace under a generation number.
// Invalidate advances the generation, so a tree built from reads that
// began before a write is stored under a generation nobody asks for.
// Implementations must treat every error as a miss; Generation reports
// ok=false when the cache cannot be used at all.
type TreeCache interface {
	Generation(ctx context.Context, workspaceID primitive.ObjectID) (gen int64, ok bool)
	Get(ctx context.Context, workspaceID primitive.ObjectID, gen int64) ([]*TreeNode, bool)
	Set(ctx context.Context, workspaceID primitive.ObjectID, gen int64, tree []*TreeNode)
	Invalidate(ctx context.Context, workspaceID primitive.ObjectID)
}
