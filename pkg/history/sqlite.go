package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS creation_dates (
	name       TEXT PRIMARY KEY,
	created_at TEXT NOT NULL
)`

// SQLiteStore keeps the index in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path and ensures the
// creation_dates table exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "create database directory")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "open %s", path)
	}
	for _, stmt := range []string{"PRAGMA journal_mode=WAL", sqliteSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "initialize %s", path)
		}
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database file.
func (s *SQLiteStore) Path() string { return s.path }

// Load reads every row.
func (s *SQLiteStore) Load(ctx context.Context) (Index, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, created_at FROM creation_dates`)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "query creation dates")
	}
	defer rows.Close()

	ix := Index{}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "scan creation date")
		}
		t, err := ParseTime(value)
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "date of %s", name)
		}
		ix[name] = t
	}
	if err := rows.Err(); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "read creation dates")
	}
	return ix, nil
}

// Save upserts every entry in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, ix Index) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeInternal, err, "begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO creation_dates (name, created_at) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET created_at = excluded.created_at`)
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeInternal, err, "prepare upsert")
	}
	defer stmt.Close()

	for _, name := range ix.Names() {
		if _, err := stmt.ExecContext(ctx, name, formatTime(ix[name])); err != nil {
			return perrors.Wrap(perrors.ErrCodeInternal, err, "store date of %s", name)
		}
	}
	if err := tx.Commit(); err != nil {
		return perrors.Wrap(perrors.ErrCodeInternal, err, "commit creation dates")
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

var _ Store = (*SQLiteStore)(nil)
