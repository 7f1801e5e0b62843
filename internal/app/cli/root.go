// Package cli implements docsctl, the operator command line for docuhub.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Flag names. Each is also read from DOCUHUB_<NAME> (dashes become
// underscores) and from a docsctl.yaml config file.
const (
	flagConfig        = "config"
	flagDebug         = "debug"
	flagMongoURI      = "mongo-uri"
	flagMongoDatabase = "mongo-database"
	flagRedisURL      = "redis-url"
	flagTreeCacheTTL  = "tree-cache-ttl"
	flagTokenHashKey  = "token-hash-key"
	flagTokenBlockKey = "token-block-key"
	flagTokenTTL      = "token-ttl"
	flagTimeout       = "timeout"
)

// Settings is the resolved docsctl configuration.
type Settings struct {
	MongoURI      string
	MongoDatabase string
	RedisURL      string
	TreeCacheTTL  time.Duration
	TokenHashKey  string
	TokenBlockKey string
	TokenTTL      time.Duration
	Timeout       time.Duration
	Debug         bool
}

// Opener connects to the backends a command needs.
type Opener func(ctx context.Context, s Settings, logger *zap.Logger) (*Backend, error)

// App carries what every command shares.
type App struct {
	v      *viper.Viper
	out    io.Writer
	open   Opener
	logger *zap.Logger
}

// NewRootCommand builds docsctl. open is called by commands that need
// MongoDB; tests pass an in-memory one.
func NewRootCommand(out io.Writer, open Opener) *cobra.Command {
	a := &App{v: viper.New(), out: out, open: open, logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "docsctl",
		Short: "docuhub operator tool",
		Long: `docsctl manages a docuhub deployment directly against its database:
mint API tokens, manage workspace members, export document trees and
finish interrupted deletes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.String(flagConfig, "", "Config file (default: ./docsctl.yaml or $HOME/.docuhub/docsctl.yaml)")
	pf.Bool(flagDebug, false, "Enable debug logging")
	pf.String(flagMongoURI, "mongodb://localhost:27017", "MongoDB connection URI")
	pf.String(flagMongoDatabase, "docuhub", "MongoDB database name")
	pf.String(flagRedisURL, "", "Redis URL of the tree cache, so changes invalidate it")
	pf.Duration(flagTreeCacheTTL, 10*time.Minute, "Tree cache TTL")
	pf.String(flagTokenHashKey, "", "Token signing key (same as the server's)")
	pf.String(flagTokenBlockKey, "", "Token encryption key (same as the server's)")
	pf.Duration(flagTokenTTL, 24*time.Hour, "Lifetime of minted tokens")
	pf.Duration(flagTimeout, time.Minute, "Timeout for the whole command")

	rootCmd.AddCommand(a.newTokenCmd())
	rootCmd.AddCommand(a.newTreeCmd())
	rootCmd.AddCommand(a.newReconcileCmd())
	rootCmd.AddCommand(a.newMemberCmd())

	return rootCmd
}

// Execute runs docsctl against the real backends.
func Execute() {
	if err := NewRootCommand(os.Stdout, OpenMongo).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *App) init(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	a.v.SetEnvPrefix("DOCUHUB")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if file := a.v.GetString(flagConfig); file != "" {
		a.v.SetConfigFile(file)
	} else {
		a.v.SetConfigName("docsctl")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		a.v.AddConfigPath("$HOME/.docuhub")
	}
	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	if a.v.GetBool(flagDebug) {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		a.logger = logger
		a.logger.Debug("docsctl config", zap.String("file", a.v.ConfigFileUsed()))
	}
	return nil
}

// Settings returns the configuration resolved from flags, env and file.
func (a *App) Settings() Settings {
	return Settings{
		MongoURI:      a.v.GetString(flagMongoURI),
		MongoDatabase: a.v.GetString(flagMongoDatabase),
		RedisURL:      strings.TrimSpace(a.v.GetString(flagRedisURL)),
		TreeCacheTTL:  a.v.GetDuration(flagTreeCacheTTL),
		TokenHashKey:  a.v.GetString(flagTokenHashKey),
		TokenBlockKey: a.v.GetString(flagTokenBlockKey),
		TokenTTL:      a.v.GetDuration(flagTokenTTL),
		Timeout:       a.v.GetDuration(flagTimeout),
		Debug:         a.v.GetBool(flagDebug),
	}
}

// withBackend runs fn with connected backends and closes them afterwards.
func (a *App) withBackend(cmd *cobra.Command, fn func(ctx context.Context, b *Backend) error) error {
	s := a.Settings()
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, s.Timeout)
	defer cancel()

	b, err := a.open(ctx, s, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(context.Background()); err != nil {
			a.logger.Warn("closing backends", zap.Error(err))
		}
	}()
	return fn(ctx, b)
}
