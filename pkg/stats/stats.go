// Package stats provides repository popularity numbers for pods.
//
// A [Provider] looks up stargazer and fork counts for a pod spec. Numbers
// that cannot be determined are reported as nil rather than zero so feed
// items can omit them entirely.
package stats

import (
	"context"

	"github.com/matzehuels/podfeed/pkg/pod"
)

// Stats holds popularity counts. Nil fields are unavailable.
type Stats struct {
	Stargazers *int `json:"stargazers,omitempty" yaml:"stargazers,omitempty"`
	Forks      *int `json:"forks,omitempty" yaml:"forks,omitempty"`
}

// Empty reports whether no count is available.
func (s Stats) Empty() bool { return s.Stargazers == nil && s.Forks == nil }

// Provider looks up popularity stats for a pod spec.
type Provider interface {
	Lookup(ctx context.Context, spec *pod.Spec) (Stats, error)
}

// Null never has stats available.
type Null struct{}

// Lookup always returns empty stats.
func (Null) Lookup(context.Context, *pod.Spec) (Stats, error) { return Stats{}, nil }

// Static serves fixed stats keyed by pod name.
type Static map[string]Stats

// Lookup returns the entry for spec.Name, or empty stats when absent.
func (s Static) Lookup(_ context.Context, spec *pod.Spec) (Stats, error) {
	if spec == nil {
		return Stats{}, nil
	}
	return s[spec.Name], nil
}

// Int returns a pointer to n, for building Stats literals.
func Int(n int) *int { return &n }

var (
	_ Provider = Null{}
	_ Provider = Static(nil)
	_ Provider = (*GitHub)(nil)
)
