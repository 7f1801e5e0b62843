// internal/app/system/authz/authz.go
package authz

import (
	"context"
	"errors"

	membershipstore "github.com/dalemusser/docuhub/internal/app/store/memberships"
	"github.com/dalemusser/docuhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrForbidden means the user has no membership, or too weak a role, for
// the workspace.
var ErrForbidden = errors.New("forbidden")

// MemberLookup is the slice of the membership store authorization needs.
type MemberLookup interface {
	Get(ctx context.Context, workspaceID, userID primitive.ObjectID) (models.WorkspaceMember, error)
}

// Authorizer gates workspace access on membership.
type Authorizer struct {
	members MemberLookup
}

func New(members MemberLookup) *Authorizer {
	return &Authorizer{members: members}
}

// CanRead returns nil when userID is any member of workspaceID.
func (a *Authorizer) CanRead(ctx context.Context, userID, workspaceID primitive.ObjectID) error {
	_, err := a.member(ctx, userID, workspaceID)
	return err
}

// CanWrite returns nil when userID may modify documents of workspaceID.
func (a *Authorizer) CanWrite(ctx context.Context, userID, workspaceID primitive.ObjectID) error {
	m, err := a.member(ctx, userID, workspaceID)
	if err != nil {
		return err
	}
	if !RoleCanWrite(m.Role) {
		return ErrForbidden
	}
	return nil
}

func (a *Authorizer) member(ctx context.Context, userID, workspaceID primitive.ObjectID) (models.WorkspaceMember, error) {
	if userID.IsZero() || workspaceID.IsZero() {
		return models.WorkspaceMember{}, ErrForbidden
	}
	m, err := a.members.Get(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, membershipstore.ErrNotFound) {
			return models.WorkspaceMember{}, ErrForbidden
		}
		return models.WorkspaceMember{}, err
	}
	return m, nil
}
