// Package cli implements the podfeed command-line interface.
//
// The CLI builds the CocoaPods new-pods RSS feed from a Specs checkout and a
// creation-date store, serves it over HTTP, and manages the supporting
// state (creation dates, HTTP response cache). It is built using cobra and
// logs via the charmbracelet/log library.
//
// # Commands
//
//   - build: write the feed to a file or stdout
//   - recent: list the newest pods in a table
//   - serve: publish the feed over HTTP
//   - dates: import and inspect creation dates
//   - cache: manage the HTTP response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// traces GitHub API requests. Loggers are passed through context.Context.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/podfeed/pkg/buildinfo"
	"github.com/matzehuels/podfeed/pkg/cache"
	"github.com/matzehuels/podfeed/pkg/history"
	"github.com/matzehuels/podfeed/pkg/integrations/github"
	"github.com/matzehuels/podfeed/pkg/markdown"
	"github.com/matzehuels/podfeed/pkg/observability"
	"github.com/matzehuels/podfeed/pkg/pipeline"
	"github.com/matzehuels/podfeed/pkg/stats"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "podfeed"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	specsDir   string
	datesPath  string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "podfeed publishes the newest CocoaPods as an RSS feed",
		Long:         `podfeed reads a CocoaPods Specs checkout and a creation-date store, and renders the 30 most recently published pods as an RSS 2.0 feed with HTML descriptions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			observability.SetHTTPHooks(&logHooks{logger: c.Logger})
			observability.SetFeedHooks(&logHooks{logger: c.Logger})
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/podfeed/config.toml)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the HTTP response cache")
	flags.StringVar(&c.specsDir, "specs", "", "Specs repository checkout (overrides specs.dir)")
	flags.StringVar(&c.datesPath, "dates", "", "creation dates file or database (overrides dates.path)")

	// Register all subcommands
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.recentCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.datesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// config loads the configuration file and applies command-line overrides.
func (c *CLI) config() (Config, error) {
	cfg, err := loadConfig(c.configPath, c.Logger)
	if err != nil {
		return cfg, err
	}
	if c.specsDir != "" {
		cfg.Specs.Dir = expandHome(c.specsDir)
	}
	if c.datesPath != "" {
		cfg.Dates = history.Config{Path: expandHome(c.datesPath)}
	}
	if c.noCache {
		cfg.Cache.Backend = cacheBackendNone
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// workspace bundles the collaborators a command needs: configuration, the
// pipeline runner, the creation-date store and the HTTP cache.
type workspace struct {
	cfg    Config
	runner *pipeline.Runner
	dates  history.Store
	cache  cache.Cache
}

// open loads the configuration and creates the runner and stores.
// The caller must Close the workspace.
func (c *CLI) open(ctx context.Context) (*workspace, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}

	backend, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	dates, err := history.Open(ctx, cfg.Dates)
	if err != nil {
		backend.Close()
		return nil, err
	}

	var provider stats.Provider = stats.Null{}
	if cfg.GitHub.Stats {
		client := github.NewClient(backend, cfg.GitHub.Token, cfg.Cache.TTL.Duration)
		provider = stats.NewGitHub(client, cfg.GitHub.Refresh)
	}
	renderer := markdown.New(markdown.WithStyle(cfg.Feed.CodeStyle))

	return &workspace{
		cfg:    cfg,
		runner: pipeline.NewRunner(provider, renderer, c.Logger),
		dates:  dates,
		cache:  backend,
	}, nil
}

// options converts the configuration into pipeline options.
func (w *workspace) options() pipeline.Options {
	return pipeline.Options{
		SpecsDir: w.cfg.Specs.Dir,
		Dates:    w.dates,
		Limit:    w.cfg.Feed.Limit,
		Channel:  w.cfg.Feed.Channel(),
	}
}

// Close releases the stores.
func (w *workspace) Close() error {
	return errors.Join(w.dates.Close(), w.cache.Close())
}

func newCache(ctx context.Context, cfg CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case cacheBackendNone:
		return cache.NewNullCache(), nil
	case cacheBackendRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir := cfg.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/podfeed/).
func cacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// configDir returns the config directory (~/.config/podfeed/).
func configDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// dataDir returns the data directory (~/.local/share/podfeed/).
func dataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}
