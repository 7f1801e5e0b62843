// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"sync"

	"github.com/dalemusser/docuhub/internal/app/system/ratelimit"
	"github.com/dalemusser/docuhub/internal/app/system/timeouts"
	"github.com/dalemusser/docuhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// background holds workers started in Startup and stopped in Shutdown.
var background struct {
	mu         sync.Mutex
	reconciler *workers.DeleteReconciler
	limiter    *ratelimit.Memory
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	cur := timeouts.Current()
	logger.Info("operation timeouts configured",
		zap.Duration("ping", cur.Ping),
		zap.Duration("short", cur.Short),
		zap.Duration("medium", cur.Medium),
		zap.Duration("long", cur.Long))

	if !appCfg.ReconcileEnabled {
		logger.Info("delete reconciler disabled")
		return nil
	}

	svc := NewDocumentService(deps.MongoDatabase, deps.Redis, appCfg.TreeCacheTTL, logger)
	rec, err := workers.NewDeleteReconciler(svc, logger, appCfg.ReconcileSchedule, timeouts.Long())
	if err != nil {
		return err
	}

	background.mu.Lock()
	background.reconciler = rec
	background.mu.Unlock()
	rec.Start()
	return nil
}
