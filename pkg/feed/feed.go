// Package feed builds the RSS 2.0 feed of newly published pods.
//
// A [Builder] takes every known pod summary and the index of creation dates,
// keeps the newest pods (30 by default) and renders one feed item per pod.
// Each item description is a small HTML document: the Markdown description,
// the authors, the source location, a list of facts (version, platforms,
// license and GitHub popularity when known) and the pod's screenshots.
//
// # Usage
//
//	b := feed.NewBuilder(pods, dates,
//	    feed.WithStats(stats.NewGitHub(gh, false)),
//	    feed.WithLogger(logger),
//	)
//	xml, err := b.Build(ctx)
//
// Every input pod must have a creation date. A missing date fails the build
// with [errors.ErrCodeMissingCreationDate] instead of silently dropping the
// pod, because the ranking would otherwise be wrong.
package feed

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/feeds"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
	"github.com/matzehuels/podfeed/pkg/history"
	"github.com/matzehuels/podfeed/pkg/markdown"
	"github.com/matzehuels/podfeed/pkg/observability"
	"github.com/matzehuels/podfeed/pkg/pod"
	"github.com/matzehuels/podfeed/pkg/stats"
)

// DefaultLimit is the number of items in a feed.
const DefaultLimit = 30

// Channel describes the feed itself.
type Channel struct {
	Title       string `toml:"title"`
	Link        string `toml:"link"`
	Description string `toml:"description"`
	Language    string `toml:"language"`
}

// DefaultChannel returns the CocoaPods channel.
func DefaultChannel() Channel {
	return Channel{
		Title:       "CocoaPods",
		Link:        "http://www.cocoapods.org",
		Description: "CocoaPods new pods feed",
		Language:    "en",
	}
}

// withDefaults fills empty fields from DefaultChannel.
func (c Channel) withDefaults() Channel {
	d := DefaultChannel()
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.Link == "" {
		c.Link = d.Link
	}
	if c.Description == "" {
		c.Description = d.Description
	}
	if c.Language == "" {
		c.Language = d.Language
	}
	return c
}

var defaultRenderer = sync.OnceValue(func() markdown.Renderer { return markdown.New() })

// Builder turns pod summaries into an RSS feed.
type Builder struct {
	pkgs     []pod.Summary
	dates    history.Index
	stats    stats.Provider
	renderer markdown.Renderer
	channel  Channel
	limit    int
	now      func() time.Time
	logger   *log.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithStats sets the popularity stats provider. The default reports no stats.
func WithStats(p stats.Provider) Option {
	return func(b *Builder) {
		if p != nil {
			b.stats = p
		}
	}
}

// WithRenderer sets the Markdown renderer used for descriptions.
func WithRenderer(r markdown.Renderer) Option {
	return func(b *Builder) {
		if r != nil {
			b.renderer = r
		}
	}
}

// WithChannel sets the channel metadata. Empty fields keep their defaults.
func WithChannel(c Channel) Option {
	return func(b *Builder) { b.channel = c.withDefaults() }
}

// WithLimit sets the maximum number of items. Non-positive values are ignored.
func WithLimit(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.limit = n
		}
	}
}

// WithClock sets the time source for the channel's lastBuildDate.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) {
		if l == nil {
			l = log.New(io.Discard)
		}
		b.logger = l
	}
}

// NewBuilder creates a builder for pkgs. Inputs are not validated until
// Select or Build.
func NewBuilder(pkgs []pod.Summary, dates history.Index, opts ...Option) *Builder {
	b := &Builder{
		pkgs:    pkgs,
		dates:   dates,
		stats:   stats.Null{},
		channel: DefaultChannel(),
		limit:   DefaultLimit,
		now:     time.Now,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.renderer == nil {
		b.renderer = defaultRenderer()
	}
	return b
}

type datedPod struct {
	pod.Summary
	created time.Time
}

// Select returns the newest pods, newest first, at most the configured limit.
// Pods created at the same instant are ordered by name.
func (b *Builder) Select() ([]pod.Summary, error) {
	selected, err := b.selectDated()
	if err != nil {
		return nil, err
	}
	out := make([]pod.Summary, len(selected))
	for i, d := range selected {
		out[i] = d.Summary
	}
	return out, nil
}

func (b *Builder) selectDated() ([]datedPod, error) {
	dated := make([]datedPod, 0, len(b.pkgs))
	for _, p := range b.pkgs {
		t, ok := b.dates.Lookup(p.Name)
		if !ok {
			return nil, perrors.New(perrors.ErrCodeMissingCreationDate, "no creation date for pod %s", p.Name)
		}
		dated = append(dated, datedPod{Summary: p, created: t})
	}

	slices.SortFunc(dated, func(a, b datedPod) int {
		if c := b.created.Compare(a.created); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	if len(dated) > b.limit {
		dated = dated[:b.limit]
	}
	return dated, nil
}

// Build renders the feed as an RSS 2.0 XML document.
func (b *Builder) Build(ctx context.Context) (string, error) {
	xml, _, err := b.BuildItems(ctx)
	return xml, err
}

// BuildItems is Build that also returns the pods in the feed, newest first.
// The pods are ranked once for both results.
func (b *Builder) BuildItems(ctx context.Context) (xml string, pods []pod.Summary, err error) {
	start := time.Now()
	hooks := observability.Feed()
	hooks.OnBuildStart(ctx, len(b.pkgs))

	items := 0
	defer func() {
		hooks.OnBuildComplete(ctx, items, time.Since(start), err)
	}()

	selected, err := b.selectDated()
	if err != nil {
		return "", nil, err
	}

	f := &feeds.Feed{
		Title:       b.channel.Title,
		Link:        &feeds.Link{Href: b.channel.Link},
		Description: b.channel.Description,
		Updated:     b.now(),
	}

	for _, d := range selected {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		item, err := b.item(ctx, d)
		if err != nil {
			return "", nil, err
		}
		f.Items = append(f.Items, item)
		pods = append(pods, d.Summary)
	}

	rss := (&feeds.Rss{Feed: f}).RssFeed()
	rss.Language = b.channel.Language
	rss.PubDate = ""

	out, err := feeds.ToXML(rss)
	if err != nil {
		return "", nil, perrors.Wrap(perrors.ErrCodeInternal, err, "serialize feed")
	}

	items = len(f.Items)
	b.logger.Debug("built feed", "items", items, "pods", len(b.pkgs), "elapsed", time.Since(start))
	return out, pods, nil
}

func (b *Builder) item(ctx context.Context, d datedPod) (*feeds.Item, error) {
	desc, err := b.describe(ctx, d.Summary)
	if err != nil {
		return nil, err
	}
	return &feeds.Item{
		Title:       d.Name,
		Link:        &feeds.Link{Href: d.Homepage},
		Description: desc,
		Id:          ItemID(d.Name),
		IsPermaLink: "false",
		Created:     d.created,
	}, nil
}

// ItemID returns the stable GUID of a pod's feed item.
func ItemID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://cocoapods.org/pods/"+name)).String()
}
