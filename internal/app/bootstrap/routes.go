// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	documentsfeature "github.com/dalemusser/docuhub/internal/app/features/documents"
	healthfeature "github.com/dalemusser/docuhub/internal/app/features/health"
	membershipstore "github.com/dalemusser/docuhub/internal/app/store/memberships"
	"github.com/dalemusser/docuhub/internal/app/system/auth"
	"github.com/dalemusser/docuhub/internal/app/system/authz"
	"github.com/dalemusser/docuhub/internal/app/system/ratelimit"
	"github.com/dalemusser/docuhub/internal/app/system/treecache"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. docuhub serves two trees: /health for
// load balancers and the bearer-authenticated /documents JSON API.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := auth.NewTokenManager(appCfg.TokenHashKey, appCfg.TokenBlockKey, appCfg.TokenTTL, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	svc := NewDocumentService(deps.MongoDatabase, deps.Redis, appCfg.TreeCacheTTL, logger)
	az := authz.New(membershipstore.New(deps.MongoDatabase))

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	var cache healthfeature.CachePinger
	if deps.Redis != nil {
		cache = treecache.New(deps.Redis, appCfg.TreeCacheTTL, logger)
	}
	healthHandler := healthfeature.NewHandler(deps.MongoClient, cache, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Document hierarchy API
	docsHandler := documentsfeature.NewHandler(svc, az, logger)
	var writeMW []func(http.Handler) http.Handler
	if lim := writeLimiter(appCfg, deps, logger); lim != nil {
		writeMW = append(writeMW, ratelimit.PerUser(lim, logger))
	}
	r.Mount("/documents", documentsfeature.Routes(docsHandler, tokens, writeMW...))

	return r, nil
}

// writeLimiter picks the Redis-backed limiter when Redis is configured so
// every instance shares one budget, and an in-process one otherwise.
func writeLimiter(appCfg AppConfig, deps DBDeps, logger *zap.Logger) ratelimit.Limiter {
	if appCfg.WriteRateLimit <= 0 {
		logger.Info("write rate limiting disabled")
		return nil
	}
	if deps.Redis != nil {
		return ratelimit.NewRedis(deps.Redis, appCfg.WriteRateLimit, time.Minute)
	}

	mem := ratelimit.NewMemory(appCfg.WriteRateLimit, time.Minute)
	background.mu.Lock()
	if background.limiter != nil {
		background.limiter.Close()
	}
	background.limiter = mem
	background.mu.Unlock()
	return mem
}
