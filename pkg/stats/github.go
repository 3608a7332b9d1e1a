package stats

import (
	"context"

	"github.com/matzehuels/podfeed/pkg/integrations"
	"github.com/matzehuels/podfeed/pkg/integrations/github"
	"github.com/matzehuels/podfeed/pkg/pod"
)

// RepoFetcher fetches repository metrics. [github.Client] implements it.
type RepoFetcher interface {
	FetchRepo(ctx context.Context, owner, repo string, refresh bool) (*integrations.RepoMetrics, error)
}

// GitHub reads stargazer and fork counts from the GitHub API.
//
// The repository is taken from the spec's source URL, then its homepage.
// Pods hosted elsewhere have no stats and produce no error.
type GitHub struct {
	client  RepoFetcher
	refresh bool
}

// NewGitHub creates a provider using client. When refresh is true, cached
// API responses are bypassed.
func NewGitHub(client RepoFetcher, refresh bool) *GitHub {
	return &GitHub{client: client, refresh: refresh}
}

// Lookup fetches stats for the GitHub repository behind spec.
func (g *GitHub) Lookup(ctx context.Context, spec *pod.Spec) (Stats, error) {
	if spec == nil {
		return Stats{}, nil
	}
	owner, repo, ok := github.ExtractURL(spec.Source.URL(), spec.Homepage)
	if !ok {
		return Stats{}, nil
	}
	m, err := g.client.FetchRepo(ctx, owner, repo, g.refresh)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Stargazers: Int(m.Stars), Forks: Int(m.Forks)}, nil
}
