// internal/domain/models/favorite.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorite pins a document for one user. Exactly one record per
// (user_id, document_id); workspace_id scopes listings so that switching
// workspaces never surfaces another workspace's favorites.
type Favorite struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspaceId"`
	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	DocumentID  primitive.ObjectID `bson:"document_id" json:"documentId"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}
