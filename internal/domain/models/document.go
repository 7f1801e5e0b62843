// internal/domain/models/document.go
package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is one page in a workspace's document tree.
//
// The tree is stored flat: every document carries its parent pointer and
// its position among siblings sharing the same (workspace_id, parent_id).
// The nested view is rebuilt on demand (see hierarchy.BuildTree).
//
// Documents are never hard-deleted by users. Deleting a document sets
// IsDeleted on it and on its whole subtree; all listings skip them.
type Document struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID  `bson:"workspace_id" json:"workspaceId"`
	ParentID    *primitive.ObjectID `bson:"parent_id" json:"parentId"` // nil = top level
	Position    int                 `bson:"position" json:"position"`

	Title   string `bson:"title" json:"title"`
	TitleCI string `bson:"title_ci" json:"-"` // folded for search
	Slug    string `bson:"slug" json:"slug"`
	Emoji   string `bson:"emoji,omitempty" json:"emoji,omitempty"`

	// Content is the editor's native JSON document. It is opaque here.
	Content json.RawMessage `bson:"content,omitempty" json:"content,omitempty"`

	Metadata DocumentMetadata `bson:"metadata" json:"metadata"`

	IsDeleted   bool                `bson:"is_deleted" json:"isDeleted"`
	DeletedAt   *time.Time          `bson:"deleted_at,omitempty" json:"deletedAt,omitempty"`
	DeletedBy   *primitive.ObjectID `bson:"deleted_by,omitempty" json:"-"`
	DeleteBatch string              `bson:"delete_batch,omitempty" json:"-"` // shared by every record of one cascade

	AuthorID     primitive.ObjectID `bson:"author_id" json:"authorId"`
	LastEditedBy primitive.ObjectID `bson:"last_edited_by" json:"lastEditedBy"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
	Version      int64              `bson:"version" json:"version"`
}

// DocumentMetadata holds presentational data the hierarchy never reads.
type DocumentMetadata struct {
	Tags         []string   `bson:"tags" json:"tags"`
	ViewCount    int64      `bson:"view_count" json:"viewCount"`
	LastViewedAt *time.Time `bson:"last_viewed_at,omitempty" json:"lastViewedAt,omitempty"`
}

// IsRoot reports whether the document sits at the top level of its workspace.
func (d Document) IsRoot() bool {
	return d.ParentID == nil
}

// SameParent reports whether d lives under parentID (nil = top level).
func (d Document) SameParent(parentID *primitive.ObjectID) bool {
	if d.ParentID == nil || parentID == nil {
		return d.ParentID == nil && parentID == nil
	}
	return *d.ParentID == *parentID
}
