package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a resource doesn't exist upstream.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// RepoMetrics holds repository-level popularity data fetched from a code host.
type RepoMetrics struct {
	RepoURL   string     `json:"repo_url"`            // Canonical repository URL (https://...)
	Owner     string     `json:"owner"`               // Repository owner username
	Stars     int        `json:"stars"`               // Stargazer count
	Forks     int        `json:"forks"`               // Fork count
	Watchers  int        `json:"watchers"`            // Subscriber (watch) count
	License   string     `json:"license,omitempty"`   // SPDX license identifier
	Language  string     `json:"language,omitempty"`  // Primary repository language
	PushedAt  *time.Time `json:"pushed_at,omitempty"` // Date of most recent push
	Archived  bool       `json:"archived"`            // Whether the repository is archived
	FetchedAt time.Time  `json:"fetched_at"`          // When the metrics were retrieved
}

// NewHTTPClient creates an HTTP client with a standard timeout for API requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
	"http://github.com/", "https://github.com/",
)

// NormalizeRepoURL converts various repository URL formats to canonical HTTPS form.
// Handles git@, git://, and git+ prefixes, and removes .git suffixes.
// Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	s = repoURLReplacer.Replace(s)
	return strings.TrimSuffix(s, ".git")
}

// ExtractRepoURL finds owner and repo in the first of urls that matches re.
// The re parameter should capture owner (group 1) and repo name (group 2).
// Empty entries are skipped; sponsor pages never match.
func ExtractRepoURL(re *regexp.Regexp, urls ...string) (owner, repo string, ok bool) {
	for _, u := range urls {
		if u == "" || strings.Contains(u, "/sponsors/") {
			continue
		}
		if m := re.FindStringSubmatch(NormalizeRepoURL(u)); len(m) >= 3 {
			return m[1], strings.TrimSuffix(m[2], ".git"), true
		}
	}
	return "", "", false
}

// URLEncode percent-encodes a string for use in URLs.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }
