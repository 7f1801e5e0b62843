package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/docuhub/internal/app/bootstrap"
	"github.com/dalemusser/docuhub/internal/app/hierarchy"
	membershipstore "github.com/dalemusser/docuhub/internal/app/store/memberships"
	"github.com/dalemusser/docuhub/internal/app/system/treecache"
	"github.com/dalemusser/docuhub/internal/domain/models"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// MemberStore is the membership API the member commands use.
type MemberStore interface {
	Add(ctx context.Context, workspaceID, userID primitive.ObjectID, role string) (models.WorkspaceMember, error)
	SetRole(ctx context.Context, workspaceID, userID primitive.ObjectID, role string) error
	Remove(ctx context.Context, workspaceID, userID primitive.ObjectID) (bool, error)
	ListForWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]models.WorkspaceMember, error)
}

// Backend is what a command operates on.
type Backend struct {
	Docs    *hierarchy.Service
	Members MemberStore
	Closer  func(ctx context.Context) error
}

// Close releases the backend's connections.
func (b *Backend) Close(ctx context.Context) error {
	if b.Closer == nil {
		return nil
	}
	return b.Closer(ctx)
}

// OpenMongo connects to MongoDB (and Redis when configured) the same way
// the server does.
func OpenMongo(ctx context.Context, s Settings, logger *zap.Logger) (*Backend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	var rdb *redis.Client
	if s.RedisURL != "" {
		rdb, err = treecache.Connect(ctx, s.RedisURL)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
	}

	db := client.Database(s.MongoDatabase)
	return &Backend{
		Docs:    bootstrap.NewDocumentService(db, rdb, s.TreeCacheTTL, logger),
		Members: membershipstore.New(db),
		Closer: func(ctx context.Context) error {
			var errs []error
			if rdb != nil {
				errs = append(errs, rdb.Close())
			}
			errs = append(errs, client.Disconnect(ctx))
			return errors.Join(errs...)
		},
	}, nil
}
