package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/podfeed/pkg/feed"
	"github.com/matzehuels/podfeed/pkg/markdown"
	"github.com/matzehuels/podfeed/pkg/observability"
	"github.com/matzehuels/podfeed/pkg/source/specs"
	"github.com/matzehuels/podfeed/pkg/stats"
)

// Runner encapsulates feed generation with its collaborators.
//
// The Runner is stateless apart from its collaborators and does not store
// results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Stats    stats.Provider
	Renderer markdown.Renderer
	Logger   *log.Logger

	// Clock is passed to the feed builder. Nil means time.Now.
	Clock func() time.Time
}

// NewRunner creates a runner. A nil provider disables stats, a nil renderer
// uses the default Markdown renderer and a nil logger uses log.Default().
func NewRunner(p stats.Provider, r markdown.Renderer, logger *log.Logger) *Runner {
	if p == nil {
		p = stats.Null{}
	}
	if r == nil {
		r = markdown.New()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Stats: p, Renderer: r, Logger: logger}
}

// Run loads the inputs and builds the feed.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	in, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.PodCount = len(in.Pods)
	result.Stats.DateCount = len(in.Dates)

	opts.Logger.Info("loaded inputs",
		"pods", len(in.Pods),
		"dates", len(in.Dates),
		"duration", result.Stats.LoadTime)

	// Stage 2: Build
	buildStart := time.Now()
	xml, items, err := r.Builder(in, opts).BuildItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.XML = xml
	result.Items = items
	result.Stats.ItemCount = len(items)
	result.Stats.BuildTime = time.Since(buildStart)

	opts.Logger.Info("built feed",
		"items", len(items),
		"bytes", len(xml),
		"duration", result.Stats.BuildTime)

	return result, nil
}

// Load reads the pods and their creation dates.
func (r *Runner) Load(ctx context.Context, opts Options) (*Inputs, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	hooks := observability.Feed()

	start := time.Now()
	hooks.OnLoadStart(ctx, "specs")
	pods, err := specs.Load(ctx, opts.SpecsDir, opts.Logger)
	hooks.OnLoadComplete(ctx, "specs", len(pods), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("load specs: %w", err)
	}

	start = time.Now()
	hooks.OnLoadStart(ctx, "dates")
	dates, err := opts.Dates.Load(ctx)
	hooks.OnLoadComplete(ctx, "dates", len(dates), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("load creation dates: %w", err)
	}

	return &Inputs{Pods: pods, Dates: dates}, nil
}

// Builder returns a feed builder for in configured from the runner and opts.
func (r *Runner) Builder(in *Inputs, opts Options) *feed.Builder {
	r.applyLogger(&opts)
	return feed.NewBuilder(in.Pods, in.Dates,
		feed.WithStats(r.Stats),
		feed.WithRenderer(r.Renderer),
		feed.WithChannel(opts.Channel),
		feed.WithLimit(opts.Limit),
		feed.WithClock(r.Clock),
		feed.WithLogger(opts.Logger),
	)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
}
