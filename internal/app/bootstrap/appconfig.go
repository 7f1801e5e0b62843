// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, CORS); everything specific
// to docuhub lives here and is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer token configuration
	TokenHashKey  string        // HMAC key, at least 32 bytes
	TokenBlockKey string        // AES key, 16, 24 or 32 bytes
	TokenTTL      time.Duration // lifetime of minted tokens

	// Tree cache (optional). Blank RedisURL disables caching.
	RedisURL     string
	TreeCacheTTL time.Duration

	// Hierarchy writes allowed per user per minute (0 disables limiting).
	// Shared through Redis when RedisURL is set.
	WriteRateLimit int

	// Delete reconciler worker
	ReconcileEnabled  bool
	ReconcileSchedule string // cron spec or descriptor, e.g. "@every 10m"

	// Operation timeouts (zero keeps the built-in default)
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
