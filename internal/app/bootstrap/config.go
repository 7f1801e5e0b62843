// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/docuhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Development-only token keys. ValidateConfig refuses them in prod.
const (
	devTokenHashKey  = "dev-only-change-me-please-0123456789ABCDEF"
	devTokenBlockKey = "dev-only-0123456"
)

// appConfigKeys defines the configuration keys for docuhub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, token_ttl, etc.
//   - Environment variables: DOCUHUB_MONGO_URI, DOCUHUB_TOKEN_TTL, etc.
//   - Command-line flags: --mongo_uri, --token_ttl, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "docuhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer tokens
	{Name: "token_hash_key", Default: devTokenHashKey, Desc: "Token signing key, at least 32 bytes (must be strong in production)"},
	{Name: "token_block_key", Default: devTokenBlockKey, Desc: "Token encryption key, 16/24/32 bytes (must be strong in production)"},
	{Name: "token_ttl", Default: "24h", Desc: "Lifetime of minted bearer tokens (e.g., 24h, 30m)"},

	// Tree cache
	{Name: "redis_url", Default: "", Desc: "Redis URL for the document tree cache (blank disables it)"},
	{Name: "tree_cache_ttl", Default: "10m", Desc: "How long a cached workspace tree is kept"},

	// Write rate limit
	{Name: "write_rate_limit", Default: 600, Desc: "Hierarchy writes per user per minute (0 disables)"},

	// Delete reconciler
	{Name: "reconcile_enabled", Default: true, Desc: "Run the background worker that finishes interrupted deletes"},
	{Name: "reconcile_schedule", Default: "@every 10m", Desc: "Reconciler cron schedule (5-field spec or @every/@hourly descriptor)"},

	// Timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document reads and writes"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for listings, moves and reorders"},
	{Name: "timeout_long", Default: "60s", Desc: "Timeout for cascade deletes and reconcile passes"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, DOCUHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "DOCUHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		TokenHashKey:  appValues.String("token_hash_key"),
		TokenBlockKey: appValues.String("token_block_key"),
		TokenTTL:      appValues.Duration("token_ttl", 24*time.Hour),

		RedisURL:     strings.TrimSpace(appValues.String("redis_url")),
		TreeCacheTTL: appValues.Duration("tree_cache_ttl", 10*time.Minute),

		WriteRateLimit: appValues.Int("write_rate_limit"),

		ReconcileEnabled:  appValues.Bool("reconcile_enabled"),
		ReconcileSchedule: appValues.String("reconcile_schedule"),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 60*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Catching a bad Mongo URI, token key or cron spec here fails fast, before
// any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateAppConfig(coreCfg.Env, appCfg)
}

// validateAppConfig holds the checks that need no external packages'
// state, so they can be tested directly.
func validateAppConfig(env string, appCfg AppConfig) error {
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}

	if len(appCfg.TokenHashKey) < 32 {
		return fmt.Errorf("token_hash_key must be at least 32 bytes")
	}
	switch len(appCfg.TokenBlockKey) {
	case 16, 24, 32:
	default:
		return fmt.Errorf("token_block_key must be 16, 24 or 32 bytes")
	}
	if appCfg.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	if env == "prod" && (appCfg.TokenHashKey == devTokenHashKey || appCfg.TokenBlockKey == devTokenBlockKey) {
		return fmt.Errorf("token keys must be set in production")
	}

	if appCfg.RedisURL != "" && appCfg.TreeCacheTTL <= 0 {
		return fmt.Errorf("tree_cache_ttl must be positive when redis_url is set")
	}
	if appCfg.WriteRateLimit < 0 {
		return fmt.Errorf("write_rate_limit must not be negative")
	}
	if appCfg.ReconcileEnabled {
		if err := workers.ValidateSchedule(appCfg.ReconcileSchedule); err != nil {
			return err
		}
	}
	return nil
}
