// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/docuhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB collection holding workspace memberships.
const Collection = "workspace_members"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

var (
	ErrBadRole             = errors.New(`role must be "owner", "editor" or "viewer"`)
	ErrNotFound            = errors.New("membership not found")
	ErrDuplicateMembership = errors.New("user is already a member of this workspace")
)

// ValidRole reports whether role is a known workspace role.
func ValidRole(role string) bool {
	switch role {
	case models.MemberRoleOwner, models.MemberRoleEditor, models.MemberRoleViewer:
		return true
	}
	return false
}

// Add creates a membership for (workspaceID, userID).
func (s *Store) Add(ctx context.Context, workspaceID, userID primitive.ObjectID, role string) (models.WorkspaceMember, error) {
	if !ValidRole(role) {
		return models.WorkspaceMember{}, ErrBadRole
	}
	m := models.WorkspaceMember{
		ID:          primitive.NewObjectID(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.WorkspaceMember{}, ErrDuplicateMembership
		}
		return models.WorkspaceMember{}, err
	}
	return m, nil
}

// SetRole changes the role of an existing membership.
func (s *Store) SetRole(ctx context.Context, workspaceID, userID primitive.ObjectID, role string) error {
	if !ValidRole(role) {
		return ErrBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"workspace_id": workspaceID, "user_id": userID},
		bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove deletes the membership for (workspaceID, userID).
// It reports whether a membership existed.
func (s *Store) Remove(ctx context.Context, workspaceID, userID primitive.ObjectID) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"workspace_id": workspaceID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// Get returns the membership for (workspaceID, userID) or ErrNotFound.
func (s *Store) Get(ctx context.Context, workspaceID, userID primitive.ObjectID) (models.WorkspaceMember, error) {
	var m models.WorkspaceMember
	err := s.c.FindOne(ctx, bson.M{"workspace_id": workspaceID, "user_id": userID}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.WorkspaceMember{}, ErrNotFound
		}
		return models.WorkspaceMember{}, err
	}
	return m, nil
}

// ListForUser returns all memberships of a user.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.WorkspaceMember, error) {
	return s.list(ctx, bson.M{"user_id": userID})
}

// ListForWorkspace returns all memberships of a workspace.
func (s *Store) ListForWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]models.WorkspaceMember, error) {
	return s.list(ctx, bson.M{"workspace_id": workspaceID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.WorkspaceMember, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.WorkspaceMember{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureIndexes creates indexes for the workspace_members collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workspace_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_member_workspace_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_member_user"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
