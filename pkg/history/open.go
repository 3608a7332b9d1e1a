package history

import (
	"context"
	"path/filepath"
	"strings"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
)

// Driver names accepted by [Open].
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config selects and configures a Store backend.
type Config struct {
	Driver   string `toml:"driver"`   // file, sqlite or mongo; inferred from Path when empty
	Path     string `toml:"path"`     // file or database path
	URI      string `toml:"uri"`      // mongodb:// connection string
	Database string `toml:"database"` // mongo database name
}

// ResolvedDriver returns Driver, or the driver implied by Path's extension.
func (c Config) ResolvedDriver() string {
	if c.Driver != "" {
		return strings.ToLower(c.Driver)
	}
	if c.URI != "" {
		return DriverMongo
	}
	switch strings.ToLower(filepath.Ext(c.Path)) {
	case ".db", ".sqlite", ".sqlite3":
		return DriverSQLite
	}
	return DriverFile
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.ResolvedDriver() {
	case DriverFile, DriverSQLite:
		if err := perrors.ValidateDir(c.Path); err != nil {
			return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "dates path")
		}
	case DriverMongo:
		if c.URI == "" {
			return perrors.New(perrors.ErrCodeInvalidConfig, "dates uri is required for the mongo driver")
		}
	default:
		return perrors.New(perrors.ErrCodeInvalidConfig, "unknown dates driver %q", c.Driver)
	}
	return nil
}

// Open creates the Store described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.ResolvedDriver() {
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.Path)
	case DriverMongo:
		return OpenMongo(ctx, cfg.URI, cfg.Database)
	default:
		return NewFileStore(cfg.Path), nil
	}
}
