// Package treecache caches built document trees in Redis.
//
// Each workspace has a generation counter (docuhub:tree:gen:<ws>) and its
// tree lives at docuhub:tree:<ws>:<gen>. Invalidation increments the
// counter instead of deleting the tree, so a reader that started before a
// write can only ever store its result under a retired generation. Retired
// entries age out with the TTL. Every failure is logged and treated as a
// miss so Redis is never on the critical path.
package treecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dalemusser/docuhub/internal/app/hierarchy"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	keyPrefix = "docuhub:tree:"
	genPrefix = keyPrefix + "gen:"
)

// Cache implements hierarchy.TreeCache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

var _ hierarchy.TreeCache = (*Cache)(nil)

// Connect parses redisURL (redis://[:password@]host:port/db) and verifies
// the server answers.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

func New(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, log: logger}
}

func key(workspaceID primitive.ObjectID, gen int64) string {
	return keyPrefix + workspaceID.Hex() + ":" + strconv.FormatInt(gen, 10)
}

func genKey(workspaceID primitive.ObjectID) string {
	return genPrefix + workspaceID.Hex()
}

// Generation returns the workspace's current generation; a workspace that
// was never invalidated is at 0.
func (c *Cache) Generation(ctx context.Context, workspaceID primitive.ObjectID) (int64, bool) {
	gen, err := c.client.Get(ctx, genKey(workspaceID)).Int64()
	switch {
	case err == nil:
		return gen, true
	case errors.Is(err, redis.Nil):
		return 0, true
	default:
		c.log.Warn("tree cache generation read failed",
			zap.String("workspace_id", workspaceID.Hex()),
			zap.Error(err))
		return 0, false
	}
}

func (c *Cache) Get(ctx context.Context, workspaceID primitive.ObjectID, gen int64) ([]*hierarchy.TreeNode, bool) {
	k := key(workspaceID, gen)
	raw, err := c.client.Get(ctx, k).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("tree cache read failed",
				zap.String("workspace_id", workspaceID.Hex()),
				zap.Error(err))
		}
		return nil, false
	}

	var tree []*hierarchy.TreeNode
	if err := json.Unmarshal(raw, &tree); err != nil {
		c.log.Warn("tree cache entry unreadable; dropping",
			zap.String("workspace_id", workspaceID.Hex()),
			zap.Error(err))
		_ = c.client.Del(ctx, k).Err()
		return nil, false
	}
	return tree, true
}

func (c *Cache) Set(ctx context.Context, workspaceID primitive.ObjectID, gen int64, tree []*hierarchy.TreeNode) {
	raw, err := json.Marshal(tree)
	if err != nil {
		c.log.Warn("tree cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key(workspaceID, gen), raw, c.ttl).Err(); err != nil {
		c.log.Warn("tree cache write failed",
			zap.String("workspace_id", workspaceID.Hex()),
			zap.Error(err))
	}
}

// Invalidate retires the workspace's current generation.
func (c *Cache) Invalidate(ctx context.Context, workspaceID primitive.ObjectID) {
	if err := c.client.Incr(ctx, genKey(workspaceID)).Err(); err != nil {
		c.log.Warn("tree cache invalidate failed",
			zap.String("workspace_id", workspaceID.Hex()),
			zap.Error(err))
	}
}

// Ping reports whether Redis is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
