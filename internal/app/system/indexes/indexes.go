// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"
	"time"

	documentstore "github.com/dalemusser/docuhub/internal/app/store/documents"
	favoritestore "github.com/dalemusser/docuhub/internal/app/store/favorites"
	membershipstore "github.com/dalemusser/docuhub/internal/app/store/memberships"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type ensurer struct {
	collection string
	ensure     func(ctx context.Context) error
}

/*
EnsureAll is called at startup and by test setup. Every store owns its
index definitions; creating an index that already exists with the same
name and options is a no-op on the server. Errors are aggregated so every
problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	all := []ensurer{
		{documentstore.Collection, documentstore.New(db, logger).EnsureIndexes},
		{favoritestore.Collection, favoritestore.New(db).EnsureIndexes},
		{membershipstore.Collection, membershipstore.New(db).EnsureIndexes},
	}

	var problems []string
	for _, e := range all {
		start := time.Now()
		if err := e.ensure(ctx); err != nil {
			logger.Warn("ensure indexes failed",
				zap.String("collection", e.collection),
				zap.Error(err))
			problems = append(problems, e.collection+": "+err.Error())
			continue
		}
		logger.Info("indexes ensured",
			zap.String("collection", e.collection),
			zap.Duration("took", time.Since(start)))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
