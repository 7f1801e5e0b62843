// internal/app/store/favorites/favoritestore.go
package favoritestore

import (
	"context"
	"time"

	"github.com/dalemusser/docuhub/internal/app/hierarchy"
	"github.com/dalemusser/docuhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB collection holding favorites.
const Collection = "favorites"

// Store keeps one record per (user, document) pair.
type Store struct {
	c *mongo.Collection
}

var _ hierarchy.FavoritesIndex = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Add records a favorite. Adding an existing favorite is a no-op.
func (s *Store) Add(ctx context.Context, userID, workspaceID, documentID primitive.ObjectID) error {
	fav := models.Favorite{
		ID:          primitive.NewObjectID(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		DocumentID:  documentID,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, fav); err != nil {
		if wafflemongo.IsDup(err) {
			return nil
		}
		return err
	}
	return nil
}

// Remove deletes the favorite for (userID, documentID), if any.
func (s *Store) Remove(ctx context.Context, userID, documentID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "document_id": documentID})
	return err
}

func (s *Store) IsFavorite(ctx context.Context, userID, documentID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx,
		bson.M{"user_id": userID, "document_id": documentID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListDocumentIDs returns the user's favorite document ids in a workspace,
// oldest favorite first.
func (s *Store) ListDocumentIDs(ctx context.Context, userID, workspaceID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"document_id": 1})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID, "workspace_id": workspaceID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		DocumentID primitive.ObjectID `bson:"document_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.DocumentID)
	}
	return ids, nil
}

// RemoveDocuments drops every user's favorites for the given documents.
// Returns the number of favorites deleted.
func (s *Store) RemoveDocuments(ctx context.Context, documentIDs []primitive.ObjectID) (int64, error) {
	if len(documentIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"document_id": bson.M{"$in": documentIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates indexes for the favorites collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "document_id", Value: 1}},
			Options: options.Index().SetName("uniq_favorite_user_document").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "workspace_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_favorite_user_workspace"),
		},
		{
			Keys:    bson.D{{Key: "document_id", Value: 1}},
			Options: options.Index().SetName("idx_favorite_document"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
