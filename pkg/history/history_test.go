package history

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
)

var (
	t1 = time.Date(2016, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 = time.Date(2016, 3, 2, 8, 30, 0, 0, time.UTC)
)

func TestIndexLookup(t *testing.T) {
	ix := Index{"Alpha": t1}
	if got, ok := ix.Lookup("Alpha"); !ok || !got.Equal(t1) {
		t.Errorf("Lookup(Alpha) = %v, %v", got, ok)
	}
	if _, ok := ix.Lookup("Beta"); ok {
		t.Error("Lookup(Beta) should miss")
	}
}

func TestIndexMerge(t *testing.T) {
	ix := Index{"Alpha": t1, "Beta": t1}
	changed := ix.Merge(Index{"Alpha": t1, "Beta": t2, "Gamma": t2})
	if changed != 2 {
		t.Errorf("Merge changed %d, want 2", changed)
	}
	if !ix["Beta"].Equal(t2) || !ix["Gamma"].Equal(t2) {
		t.Errorf("merged index = %v", ix)
	}
	if got := strings.Join(ix.Names(), ","); got != "Alpha,Beta,Gamma" {
		t.Errorf("Names() = %s", got)
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2016-03-02T08:30:00Z", t2},
		{"2016-03-02T09:30:00+01:00", t2},
		{"2016-03-02 08:30:00 +0000", t2},
		{"2016-03-02 08:30:00 UTC", t2},
		{"2016-03-02 08:30:00.000000", t2},
		{"2016-03-01", time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTime(tt.in)
		if err != nil {
			t.Errorf("ParseTime(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseTime("yesterday"); !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Errorf("ParseTime(yesterday) error = %v", err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	for _, name := range []string{"dates.json", "dates.yaml"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewFileStore(filepath.Join(t.TempDir(), "nested", name))

			if err := s.Save(ctx, Index{"Alpha": t1}); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if err := s.Save(ctx, Index{"Beta": t2}); err != nil {
				t.Fatalf("Save: %v", err)
			}

			ix, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(ix) != 2 || !ix["Alpha"].Equal(t1) || !ix["Beta"].Equal(t2) {
				t.Errorf("Load() = %v", ix)
			}
		})
	}
}

func TestFileStoreMissing(t *testing.T) {
	_, err := NewFileStore(filepath.Join(t.TempDir(), "none.json")).Load(context.Background())
	if !perrors.Is(err, perrors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestFileStoreYAMLTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dates.yml")
	doc := "Alpha: 2016-03-01T12:00:00Z\nBeta: \"2016-03-02 08:30:00 +0000\"\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	ix, err := NewFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ix["Alpha"].Equal(t1) || !ix["Beta"].Equal(t2) {
		t.Errorf("Load() = %v", ix)
	}
}

func TestFileStoreInvalid(t *testing.T) {
	tests := map[string]string{
		"bad.json":  "{not json",
		"bad2.json": `{"Alpha": "someday"}`,
	}
	for name, content := range tests {
		path := filepath.Join(t.TempDir(), name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewFileStore(path).Load(context.Background()); !perrors.Is(err, perrors.ErrCodeInvalidInput) {
			t.Errorf("%s: error = %v, want INVALID_INPUT", name, err)
		}
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dates.db")

	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.Save(ctx, Index{"Alpha": t1, "Beta": t1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, Index{"Beta": t2}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	ix, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ix) != 2 || !ix["Alpha"].Equal(t1) || !ix["Beta"].Equal(t2) {
		t.Errorf("Load() = %v", ix)
	}
}

func TestConfigResolvedDriver(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{Path: "dates.json"}, DriverFile},
		{Config{Path: "dates.yaml"}, DriverFile},
		{Config{Path: "dates.db"}, DriverSQLite},
		{Config{Path: "dates.sqlite3"}, DriverSQLite},
		{Config{URI: "mongodb://localhost"}, DriverMongo},
		{Config{Driver: "SQLite", Path: "x.json"}, DriverSQLite},
	}
	for _, tt := range tests {
		if got := tt.cfg.ResolvedDriver(); got != tt.want {
			t.Errorf("%+v: ResolvedDriver() = %s, want %s", tt.cfg, got, tt.want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"file", Config{Path: "dates.json"}, false},
		{"missing path", Config{}, true},
		{"mongo without uri", Config{Driver: "mongo"}, true},
		{"unknown driver", Config{Driver: "postgres", Path: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !perrors.Is(err, perrors.ErrCodeInvalidConfig) {
				t.Errorf("error code = %s, want INVALID_CONFIG", perrors.GetCode(err))
			}
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, Config{Path: filepath.Join(dir, "dates.json")})
	if err != nil {
		t.Fatalf("Open(file): %v", err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("Open(file) = %T", s)
	}

	s, err = Open(ctx, Config{Path: filepath.Join(dir, "dates.db")})
	if err != nil {
		t.Fatalf("Open(sqlite): %v", err)
	}
	defer s.Close()
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("Open(sqlite) = %T", s)
	}
}
