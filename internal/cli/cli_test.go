package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/mmcdole/gofeed"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
	"github.com/matzehuels/podfeed/pkg/observability"
)

type fixture struct {
	dir    string
	config string
	dates  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(envGitHubToken, "")
	t.Setenv(envRedisURL, "")

	write := func(rel, content string) {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("Specs/Alpha/1.0.0/Alpha.podspec.json", `{"name": "Alpha", "version": "1.0.0", "summary": "First", "authors": "Ann"}`)
	write("Specs/Beta/2.0.0/Beta.podspec.json", `{"name": "Beta", "version": "2.0.0", "summary": "Second", "authors": "Bob"}`)
	write("import.yaml", "Alpha: 2016-03-01T12:00:00Z\nBeta: 2016-03-02T12:00:00Z\n")
	write("config.toml", fmt.Sprintf(`
[feed]
title = "Test pods"

[specs]
dir = %q

[dates]
path = %q

[github]
stats = false

[cache]
backend = "none"
`, filepath.Join(dir, "Specs"), filepath.Join(dir, "dates.db")))

	return fixture{dir: dir, config: filepath.Join(dir, "config.toml"), dates: filepath.Join(dir, "import.yaml")}
}

// run executes the CLI with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	status = io.Discard
	t.Cleanup(func() { status = os.Stderr })
	t.Cleanup(observability.Reset)

	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBuildCommand(t *testing.T) {
	fx := newFixture(t)

	if _, err := run(t, "--config", fx.config, "dates", "import", fx.dates); err != nil {
		t.Fatalf("dates import: %v", err)
	}

	out, err := run(t, "--config", fx.config, "build")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	f, err := gofeed.NewParser().ParseString(out)
	if err != nil {
		t.Fatalf("parse: %v\n%s", err, out)
	}
	if f.Title != "Test pods" {
		t.Errorf("title = %q", f.Title)
	}
	if len(f.Items) != 2 || f.Items[0].Title != "Beta" {
		t.Errorf("items = %d", len(f.Items))
	}

	target := filepath.Join(fx.dir, "public", "feed.xml")
	if _, err := run(t, "--config", fx.config, "build", "-o", target); err != nil {
		t.Fatalf("build -o: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "<title>Beta</title>") {
		t.Errorf("output file missing items:\n%s", data)
	}
}

func TestBuildCommandMissingDates(t *testing.T) {
	fx := newFixture(t)

	_, err := run(t, "--config", fx.config, "build")
	if !perrors.Is(err, perrors.ErrCodeMissingCreationDate) {
		t.Errorf("build error = %v, want MISSING_CREATION_DATE", err)
	}

	out, err := run(t, "--config", fx.config, "dates", "missing")
	if err != nil {
		t.Fatalf("dates missing: %v", err)
	}
	if out != "Alpha\nBeta\n" {
		t.Errorf("dates missing = %q", out)
	}
}

func TestDatesOverrideFlag(t *testing.T) {
	fx := newFixture(t)

	out, err := run(t, "--config", fx.config, "--dates", fx.dates, "build")
	if err != nil {
		t.Fatalf("build with --dates: %v", err)
	}
	if !strings.Contains(out, "<title>Alpha</title>") {
		t.Errorf("feed missing Alpha:\n%s", out)
	}
}

func TestDatesShowCommand(t *testing.T) {
	fx := newFixture(t)
	if _, err := run(t, "--config", fx.config, "dates", "import", fx.dates); err != nil {
		t.Fatalf("dates import: %v", err)
	}

	out, err := run(t, "--config", fx.config, "dates", "show", "Beta")
	if err != nil {
		t.Fatalf("dates show: %v", err)
	}
	if !strings.Contains(out, "2016-03-02T12:00:00Z") {
		t.Errorf("dates show = %q", out)
	}

	_, err = run(t, "--config", fx.config, "dates", "show", "Gamma")
	if !perrors.Is(err, perrors.ErrCodeNotFound) {
		t.Errorf("unknown pod error = %v, want NOT_FOUND", err)
	}

	_, err = run(t, "--config", fx.config, "dates", "show", "../etc")
	if !perrors.Is(err, perrors.ErrCodeInvalidPackage) {
		t.Errorf("invalid name error = %v, want INVALID_PACKAGE", err)
	}
}

func TestRecentCommand(t *testing.T) {
	fx := newFixture(t)
	if _, err := run(t, "--config", fx.config, "dates", "import", fx.dates); err != nil {
		t.Fatalf("dates import: %v", err)
	}

	out, err := run(t, "--config", fx.config, "recent", "-n", "1")
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if !strings.Contains(out, "Beta") || strings.Contains(out, "Alpha") {
		t.Errorf("recent -n 1 should list only Beta:\n%s", out)
	}
	if !strings.Contains(out, "2016-03-02 12:00") {
		t.Errorf("recent should show the publish date:\n%s", out)
	}

	if _, err := run(t, "--config", fx.config, "recent", "-n", "0"); !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Errorf("recent -n 0 error = %v", err)
	}
}

func TestCachePathCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cfg := writeConfig(t, "[github]\nstats = false\n")

	out, err := run(t, "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	want, _ := cacheDir()
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}

	if _, err := run(t, "--config", cfg, "cache", "clear"); err != nil {
		t.Errorf("cache clear: %v", err)
	}
}

func TestCacheClearRedisUnsupported(t *testing.T) {
	t.Setenv(envRedisURL, "")
	cfg := writeConfig(t, "[github]\nstats = false\n\n[cache]\nbackend = \"redis\"\nredis_url = \"redis://localhost:6379/0\"\n")

	_, err := run(t, "--config", cfg, "cache", "clear")
	if !perrors.Is(err, perrors.ErrCodeUnsupported) {
		t.Errorf("cache clear on redis = %v, want UNSUPPORTED", err)
	}

	if _, err := run(t, "--config", cfg, "--no-cache", "cache", "clear"); err != nil {
		t.Errorf("cache clear with --no-cache: %v", err)
	}
}

func TestRenderRecentTable(t *testing.T) {
	out := renderRecentTable([]recentRow{{Name: "Alamofire", Version: "5.10.0", Authors: strings.Repeat("x", 60)}})
	if !strings.Contains(out, "Alamofire") || !strings.Contains(out, "5.10.0") {
		t.Errorf("table missing values:\n%s", out)
	}
	if !strings.Contains(out, "…") {
		t.Errorf("long authors should be truncated:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Errorf("truncate(abcdef, 4) = %q", got)
	}
}
