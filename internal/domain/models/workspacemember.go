// internal/domain/models/workspacemember.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workspace member roles.
const (
	MemberRoleOwner  = "owner"
	MemberRoleEditor = "editor"
	MemberRoleViewer = "viewer"
)

// WorkspaceMember grants a user access to a workspace's documents.
// Exactly one document per (workspace_id, user_id).
type WorkspaceMember struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspaceId"`
	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	Role        string             `bson:"role" json:"role"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}

// CanWrite reports whether the role may modify documents.
func (m WorkspaceMember) CanWrite() bool {
	return m.Role == MemberRoleOwner || m.Role == MemberRoleEditor
}
