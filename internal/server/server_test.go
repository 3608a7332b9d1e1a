package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mmcdole/gofeed"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
	"github.com/matzehuels/podfeed/pkg/history"
	"github.com/matzehuels/podfeed/pkg/pipeline"
)

func newTestServer(t *testing.T, withSpecs bool) *httptest.Server {
	t.Helper()
	root := t.TempDir()
	specsDir := filepath.Join(root, "Specs")
	if withSpecs {
		path := filepath.Join(specsDir, "Alpha", "1.0", "Alpha.podspec.json")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(`{"name": "Alpha", "version": "1.0", "summary": "A pod"}`), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store := history.NewFileStore(filepath.Join(root, "dates.json"))
	if err := store.Save(context.Background(), history.Index{"Alpha": time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC)}); err != nil {
		t.Fatal(err)
	}

	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, logger)
	s := New("", runner, pipeline.Options{SpecsDir: specsDir, Dates: store}, logger)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestFeedEndpoint(t *testing.T) {
	srv := newTestServer(t, true)

	resp, err := http.Get(srv.URL + "/feed.xml")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != contentTypeRSS {
		t.Errorf("Content-Type = %q", ct)
	}

	f, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(f.Items) != 1 || f.Items[0].Title != "Alpha" {
		t.Errorf("items = %+v", f.Items)
	}
}

func TestFeedEndpointError(t *testing.T) {
	srv := newTestServer(t, false)

	resp, err := http.Get(srv.URL + "/feed.xml")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, true)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("health = %v", body)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, true)

	resp, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{perrors.New(perrors.ErrCodeMissingCreationDate, "x"), http.StatusInternalServerError},
		{perrors.New(perrors.ErrCodeFileNotFound, "x"), http.StatusServiceUnavailable},
		{context.Canceled, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRunShutsDown(t *testing.T) {
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	s := New("127.0.0.1:0", runner, pipeline.Options{}, log.New(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
