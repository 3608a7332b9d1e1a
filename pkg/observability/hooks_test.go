package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Feed hooks
	f := NoopFeedHooks{}
	f.OnLoadStart(ctx, "specs")
	f.OnLoadComplete(ctx, "specs", 1200, time.Second, nil)
	f.OnBuildStart(ctx, 1200)
	f.OnBuildComplete(ctx, 30, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "github:")
	c.OnCacheMiss(ctx, "github:")
	c.OnCacheSet(ctx, "github:", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "api.github.com", "/repos/AFNetworking/AFNetworking")
	h.OnResponse(ctx, "GET", "api.github.com", "/repos/AFNetworking/AFNetworking", 200, time.Second)
	h.OnError(ctx, "GET", "api.github.com", "/repos/AFNetworking/AFNetworking", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Feed().(NoopFeedHooks); !ok {
		t.Error("Feed() should return NoopFeedHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customFeed := &testFeedHooks{}
	SetFeedHooks(customFeed)
	if Feed() != customFeed {
		t.Error("SetFeedHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Feed().(NoopFeedHooks); !ok {
		t.Error("Reset() should restore NoopFeedHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testFeedHooks{}
	SetFeedHooks(custom)

	// Setting nil should be ignored
	SetFeedHooks(nil)

	if Feed() != custom {
		t.Error("SetFeedHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testFeedHooks struct{ NoopFeedHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
