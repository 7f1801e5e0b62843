// internal/app/store/documents/documentstore.go
package documentstore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/docuhub/internal/app/hierarchy"
	"github.com/dalemusser/docuhub/internal/app/system/txn"
	"github.com/dalemusser/docuhub/internal/app/system/paging"
	"github.com/dalemusser/docuhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection is the MongoDB collection holding documents.
const Collection = "documents"

// Store is the MongoDB implementation of hierarchy.Store.
type Store struct {
	db  *mongo.Database
	c   *mongo.Collection
	log *zap.Logger
}

var _ hierarchy.Store = (*Store)(nil)

func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{db: db, c: db.Collection(Collection), log: logger}
}

// Get returns a live document.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.Document, error) {
	return s.findOne(ctx, bson.M{"_id": id, "is_deleted": false})
}

// Lookup returns a document whether or not it is deleted.
func (s *Store) Lookup(ctx context.Context, id primitive.ObjectID) (models.Document, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Document, error) {
	var doc models.Document
	if err := s.c.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Document{}, hierarchy.ErrNotFound
		}
		return models.Document{}, err
	}
	return doc, nil
}

// ListByWorkspace returns every live document of a workspace.
func (s *Store) ListByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]models.Document, error) {
	return s.find(ctx, bson.M{"workspace_id": workspaceID, "is_deleted": false}, siblingOrder())
}

// ListByParent returns the live documents of one sibling group. A nil
// parentID selects the top level.
func (s *Store) ListByParent(ctx context.Context, workspaceID primitive.ObjectID, parentID *primitive.ObjectID) ([]models.Document, error) {
	filter := bson.M{"workspace_id": workspaceID, "is_deleted": false, "parent_id": nil}
	if parentID != nil {
		filter["parent_id"] = *parentID
	}
	return s.find(ctx, filter, siblingOrder())
}

// ListChildren returns children of parentID that are live or deleted under
// batch.
func (s *Store) ListChildren(ctx context.Context, workspaceID, parentID primitive.ObjectID, batch string) ([]models.Document, error) {
	filter := bson.M{
		"workspace_id": workspaceID,
		"parent_id":    parentID,
		"$or": bson.A{
			bson.M{"is_deleted": false},
			bson.M{"delete_batch": batch},
		},
	}
	return s.find(ctx, filter, siblingOrder())
}

func siblingOrder() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}})
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Document, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	docs := []models.Document{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Insert stores a new document with version 1.
func (s *Store) Insert(ctx context.Context, doc models.Document) (models.Document, error) {
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

	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		return models.Document{}, err
	}
	return doc, nil
}

// Update applies patch to a live document and returns the new state.
// With expectedVersion set, a version mismatch yields hierarchy.ErrConflict.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, expectedVersion int64, patch hierarchy.Patch) (models.Document, error) {
	set := bson.M{
		"updated_at":     time.Now().UTC(),
		"last_edited_by": patch.EditedBy,
	}
	if patch.Title != nil {
		set["title"] = *patch.Title
		set["title_ci"] = text.Fold(*patch.Title)
	}
	if patch.Slug != nil {
		set["slug"] = *patch.Slug
	}
	if patch.Emoji != nil {
		set["emoji"] = *patch.Emoji
	}
	if patch.Content != nil {
		set["content"] = patch.Content
	}
	if patch.Tags != nil {
		set["metadata.tags"] = patch.Tags
	}
	if patch.Position != nil {
		set["position"] = *patch.Position
	}
	if patch.SetParent {
		set["parent_id"] = patch.ParentID
	}

	filter := bson.M{"_id": id, "is_deleted": false}
	if expectedVersion != hierarchy.AnyVersion {
		filter["version"] = expectedVersion
	}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc models.Document
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Document{}, err
	}
	if expectedVersion == hierarchy.AnyVersion {
		return models.Document{}, hierarchy.ErrNotFound
	}
	// Either the document is gone or its version moved on.
	if _, err := s.Get(ctx, id); err != nil {
		return models.Document{}, err
	}
	return models.Document{}, hierarchy.ErrConflict
}

// SoftDelete marks a live document deleted. It reports false, without an
// error, when the document was already deleted.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID, batch string, actor primitive.ObjectID) (bool, error) {
	now := time.Now().UTC()
	set := bson.M{
		"is_deleted":   true,
		"deleted_at":   now,
		"delete_batch": batch,
		"updated_at":   now,
	}
	if !actor.IsZero() {
		set["deleted_by"] = actor
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_deleted": false},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 1 {
		return true, nil
	}
	if _, err := s.Lookup(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// RecordView bumps the view counter without touching the version.
func (s *Store) RecordView(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_deleted": false},
		bson.M{
			"$inc": bson.M{"metadata.view_count": 1},
			"$set": bson.M{"metadata.last_viewed_at": time.Now().UTC()},
		})
	return err
}

// WorkspaceIDs lists the workspaces that hold live documents.
func (s *Store) WorkspaceIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	vals, err := s.c.Distinct(ctx, "workspace_id", bson.M{"is_deleted": false})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(vals))
	for _, v := range vals {
		if oid, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, oid)
		}
	}
	return ids, nil
}

// Search matches the folded title against query (substring) and/or an
// exact tag. Results are most recently updated first and omit content.
func (s *Store) Search(ctx context.Context, workspaceID primitive.ObjectID, query, tag string, limit int) ([]models.Document, error) {
	filter := bson.M{"workspace_id": workspaceID, "is_deleted": false}
	if query != "" {
		filter["title_ci"] = bson.M{"$regex": regexp.QuoteMeta(text.Fold(query))}
	}
	if tag != "" {
		filter["metadata.tags"] = strings.ToLower(tag)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(paging.Clamp(limit))).
		SetProjection(bson.M{"content": 0})
	return s.find(ctx, filter, opts)
}

// WithinTx runs fn in a MongoDB transaction when the deployment has them.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return txn.Run(ctx, s.db, s.log, fn)
}

// EnsureIndexes creates indexes for the documents collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Sibling groups in order
		{
			Keys: bson.D{
				{Key: "workspace_id", Value: 1},
				{Key: "parent_id", Value: 1},
				{Key: "is_deleted", Value: 1},
				{Key: "position", Value: 1},
			},
			Options: options.Index().SetName("idx_document_siblings"),
		},
		// Workspace listing and search
		{
			Keys: bson.D{
				{Key: "workspace_id", Value: 1},
				{Key: "is_deleted", Value: 1},
				{Key: "title_ci", Value: 1},
			},
			Options: options.Index().SetName("idx_document_workspace_title"),
		},
		{
			Keys:    bson.D{{Key: "workspace_id", Value: 1}, {Key: "metadata.tags", Value: 1}},
			Options: options.Index().SetName("idx_document_tags"),
		},
		// Cascade batches, for audit and reconciliation
		{
			Keys:    bson.D{{Key: "delete_batch", Value: 1}},
			Options: options.Index().SetName("idx_document_delete_batch").SetSparse(true),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
