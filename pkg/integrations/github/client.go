package github

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/matzehuels/podfeed/pkg/cache"
	"github.com/matzehuels/podfeed/pkg/integrations"
)

var repoURLPattern = regexp.MustCompile(`https?://github\.com/([^/]+)/([^/]+?)(?:\.git)?(?:[/?#]|$)`)

// Client provides access to the GitHub API for repository popularity data.
// It handles HTTP requests with caching, automatic retries, and optional authentication.
type Client struct {
	*integrations.Client
	baseURL string
	now     func() time.Time
}

// NewClient creates a GitHub API client backed by the given cache.
// Pass an empty string for token to use unauthenticated requests (lower rate limits).
func NewClient(backend cache.Cache, token string, cacheTTL time.Duration) *Client {
	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	return &Client{
		Client:  integrations.NewClient(backend, "github:", cacheTTL, headers),
		baseURL: "https://api.github.com",
		now:     time.Now,
	}
}

// SetBaseURL points the client at a different API root (GitHub Enterprise, tests).
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// FetchRepo retrieves repository metrics (stars, forks, watchers) from GitHub.
// If refresh is true, cached data is bypassed.
func (c *Client) FetchRepo(ctx context.Context, owner, repo string, refresh bool) (*integrations.RepoMetrics, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}
	key := "repo:" + owner + "/" + repo

	var m integrations.RepoMetrics
	err := c.Cached(ctx, key, refresh, &m, func() error {
		return c.fetchMetrics(ctx, owner, repo, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) fetchMetrics(ctx context.Context, owner, repo string, m *integrations.RepoMetrics) error {
	var data repoResponse
	url := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo)
	if err := c.Get(ctx, url, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: github repo %s/%s", err, owner, repo)
		}
		return err
	}

	*m = integrations.RepoMetrics{
		RepoURL:   fmt.Sprintf("https://github.com/%s/%s", owner, repo),
		Owner:     data.Owner.Login,
		Stars:     data.Stars,
		Forks:     data.Forks,
		Watchers:  data.Subscribers,
		License:   data.License.SPDXID,
		Language:  data.Language,
		PushedAt:  data.PushedAt,
		Archived:  data.Archived,
		FetchedAt: c.now().UTC(),
	}
	if m.Owner == "" {
		m.Owner = owner
	}
	return nil
}

// ExtractURL finds the GitHub owner and repository in the first matching URL,
// typically a pod's git source followed by its homepage.
func ExtractURL(urls ...string) (owner, repo string, ok bool) {
	return integrations.ExtractRepoURL(repoURLPattern, urls...)
}

type repoResponse struct {
	Stars       int        `json:"stargazers_count"`
	Forks       int        `json:"forks_count"`
	Subscribers int        `json:"subscribers_count"`
	PushedAt    *time.Time `json:"pushed_at"`
	License     struct {
		SPDXID string `json:"spdx_id"`
	} `json:"license"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	Language string `json:"language"`
	Archived bool   `json:"archived"`
}
