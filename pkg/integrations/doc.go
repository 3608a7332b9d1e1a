// Package integrations provides HTTP plumbing for upstream APIs.
//
// # Overview
//
// podfeed enriches feed items with popularity statistics fetched from code
// hosts. Each host has its own subpackage:
//
//   - [github]: GitHub REST API (stargazers, forks, watchers)
//
// # Client Pattern
//
// Host clients embed [Client] and follow the same shape:
//
//	client := github.NewClient(backend, token, 24*time.Hour)
//	m, err := client.FetchRepo(ctx, "AFNetworking", "AFNetworking", false)  // false = use cache
//
// [Client] handles:
//   - HTTP requests with retry (3 attempts, exponential backoff)
//   - Response caching through [cache.Cache] with a per-host key prefix
//   - Status mapping to [ErrNotFound], [ErrNetwork] and rate-limit errors
//   - Observability HTTP and cache hooks
//
// [github]: github.com/matzehuels/podfeed/pkg/integrations/github
// [cache.Cache]: github.com/matzehuels/podfeed/pkg/cache.Cache
package integrations
