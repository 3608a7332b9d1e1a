package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/matzehuels/podfeed/internal/server"
	perrors "github.com/matzehuels/podfeed/pkg/errors"
	"github.com/matzehuels/podfeed/pkg/feed"
	"github.com/matzehuels/podfeed/pkg/history"
	"github.com/matzehuels/podfeed/pkg/markdown"
)

// Cache backends.
const (
	cacheBackendFile  = "file"
	cacheBackendRedis = "redis"
	cacheBackendNone  = "none"
)

// Environment overrides.
const (
	envGitHubToken = "GITHUB_TOKEN"
	envRedisURL    = "PODFEED_REDIS_URL"
)

// Config is the podfeed configuration file (config.toml).
type Config struct {
	Feed   FeedConfig     `toml:"feed"`
	Specs  SpecsConfig    `toml:"specs"`
	Dates  history.Config `toml:"dates"`
	GitHub GitHubConfig   `toml:"github"`
	Cache  CacheConfig    `toml:"cache"`
	Server ServerConfig   `toml:"server"`
}

// FeedConfig configures the generated feed.
type FeedConfig struct {
	Title       string `toml:"title"`
	Link        string `toml:"link"`
	Description string `toml:"description"`
	Language    string `toml:"language"`
	Limit       int    `toml:"limit"`
	CodeStyle   string `toml:"code_style"`
}

// Channel returns the feed channel metadata.
func (f FeedConfig) Channel() feed.Channel {
	return feed.Channel{Title: f.Title, Link: f.Link, Description: f.Description, Language: f.Language}
}

// SpecsConfig locates the Specs repository checkout.
type SpecsConfig struct {
	Dir string `toml:"dir"`
}

// GitHubConfig configures popularity stats.
type GitHubConfig struct {
	Token   string `toml:"token"`
	Stats   bool   `toml:"stats"`
	Refresh bool   `toml:"refresh"`
}

// CacheConfig configures the HTTP response cache.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      duration `toml:"ttl"`
}

// ServerConfig configures "podfeed serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// duration decodes TOML strings such as "24h".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// defaultConfig returns the configuration used when no file is present.
func defaultConfig() Config {
	home, _ := os.UserHomeDir()
	cache, _ := cacheDir()
	data, _ := dataDir()
	return Config{
		Feed: FeedConfig{
			Limit:     feed.DefaultLimit,
			CodeStyle: markdown.DefaultStyle,
		},
		Specs: SpecsConfig{Dir: filepath.Join(home, ".cocoapods", "repos", "master", "Specs")},
		Dates: history.Config{Path: filepath.Join(data, "dates.db")},
		GitHub: GitHubConfig{
			Stats: true,
		},
		Cache: CacheConfig{
			Backend: cacheBackendFile,
			Dir:     cache,
			TTL:     duration{24 * time.Hour},
		},
		Server: ServerConfig{Addr: server.DefaultAddr},
	}
}

// loadConfig reads the configuration at path. An empty path means the
// default location, which may be absent. The .env file in the working
// directory is loaded first so environment overrides can come from it.
func loadConfig(path string, logger *log.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("ignoring .env", "err", err)
	}

	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, err
		}
		path = filepath.Join(dir, "config.toml")
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case os.IsNotExist(err) && !explicit:
		logger.Debug("no config file", "path", path)
	case os.IsNotExist(err):
		return cfg, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "config file %s", path)
	case err != nil:
		return cfg, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "parse %s", path)
	default:
		for _, key := range md.Undecoded() {
			logger.Warn("unknown config key", "key", key.String(), "path", path)
		}
	}

	cfg.applyEnv()
	cfg.expandPaths()
	return cfg, nil
}

// applyEnv applies environment overrides.
func (c *Config) applyEnv() {
	if token := os.Getenv(envGitHubToken); token != "" && c.GitHub.Token == "" {
		c.GitHub.Token = token
	}
	if url := os.Getenv(envRedisURL); url != "" {
		c.Cache.RedisURL = url
		c.Cache.Backend = cacheBackendRedis
	}
}

func (c *Config) expandPaths() {
	c.Specs.Dir = expandHome(c.Specs.Dir)
	c.Dates.Path = expandHome(c.Dates.Path)
	c.Cache.Dir = expandHome(c.Cache.Dir)
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Feed.Limit < 0 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "feed.limit must not be negative, got %d", c.Feed.Limit)
	}
	if err := perrors.ValidateDir(c.Specs.Dir); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "specs.dir")
	}
	if err := c.Dates.Validate(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case cacheBackendFile, cacheBackendNone:
	case cacheBackendRedis:
		if c.Cache.RedisURL == "" {
			return perrors.New(perrors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	default:
		return perrors.New(perrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return perrors.New(perrors.ErrCodeInvalidConfig, "server.addr cannot be empty")
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
