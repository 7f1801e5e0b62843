// internal/app/bootstrap/services.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/docuhub/internal/app/hierarchy"
	documentstore "github.com/dalemusser/docuhub/internal/app/store/documents"
	favoritestore "github.com/dalemusser/docuhub/internal/app/store/favorites"
	"github.com/dalemusser/docuhub/internal/app/system/treecache"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// NewDocumentService wires the hierarchy service to the MongoDB stores and,
// when rdb is non-nil, the Redis tree cache. Both the server and docsctl
// build their service here.
func NewDocumentService(db *mongo.Database, rdb *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *hierarchy.Service {
	opts := []hierarchy.Option{hierarchy.WithLogger(logger)}
	if rdb != nil {
		opts = append(opts, hierarchy.WithTreeCache(treecache.New(rdb, cacheTTL, logger)))
	}
	return hierarchy.New(
		documentstore.New(db, logger),
		favoritestore.New(db),
		opts...,
	)
}
