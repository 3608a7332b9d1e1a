package feed

import (
	"context"
	"html/template"
	"net/url"
	"regexp"
	"strings"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
	"github.com/matzehuels/podfeed/pkg/pod"
	"github.com/matzehuels/podfeed/pkg/stats"
)

var descriptionTemplate = template.Must(template.New("description").Parse(
	`<p>{{.Body}}</p>` +
		`<p>Authored by {{.Authors}}.</p>` +
		`<p>[ Available at: <a href="{{.SourceHref}}">{{.SourceURL}}</a> ]</p>` +
		`<ul>` +
		`<li>Latest version: {{.Version}}</li>` +
		`<li>Platform: {{.Platform}}</li>` +
		`{{with .License}}<li>License: {{.}}</li>{{end}}` +
		`{{with .Stats.Stargazers}}<li>Stargazers: {{.}}</li>{{end}}` +
		`{{with .Stats.Forks}}<li>Forks: {{.}}</li>{{end}}` +
		`</ul>` +
		`{{range .Screenshots}}<img src="{{.}}">{{end}}`,
))

type descriptionData struct {
	Body        template.HTML
	Authors     string
	SourceURL   string
	SourceHref  any
	Version     string
	Platform    string
	License     string
	Stats       stats.Stats
	Screenshots []string
}

// describe renders the HTML description of a feed item.
func (b *Builder) describe(ctx context.Context, p pod.Summary) (string, error) {
	body, err := b.renderer.Render(p.Description)
	if err != nil {
		return "", perrors.Wrap(perrors.ErrCodeRenderFailed, err, "render description of %s", p.Name)
	}

	st, err := b.stats.Lookup(ctx, p.Spec)
	if err != nil {
		b.logger.Debug("stats unavailable", "pod", p.Name, "err", err)
		st = stats.Stats{}
	}

	screenshots := p.Screenshots
	if p.Spec != nil && len(screenshots) == 0 {
		screenshots = p.Spec.Screenshots
	}

	data := descriptionData{
		Body:        template.HTML(body),
		Authors:     p.Authors,
		SourceURL:   p.SourceURL,
		SourceHref:  sourceHref(p.SourceURL),
		Version:     p.Version,
		Platform:    p.Platform,
		License:     p.License,
		Stats:       st,
		Screenshots: screenshots,
	}

	var sb strings.Builder
	if err := descriptionTemplate.Execute(&sb, data); err != nil {
		return "", perrors.Wrap(perrors.ErrCodeInternal, err, "describe %s", p.Name)
	}
	return sb.String(), nil
}

var (
	sourceSchemes = map[string]bool{"http": true, "https": true, "git": true, "ssh": true, "svn": true, "hg": true, "ftp": true}
	scpLikeURL    = regexp.MustCompile(`^[\w.-]+@[\w.-]+:[\w./~-]+$`)
)

// sourceHref marks version-control URLs as safe link targets so the template
// keeps git://, ssh:// and git@host:path locations. Anything else is left to
// the template's own URL filtering.
func sourceHref(raw string) any {
	if scpLikeURL.MatchString(raw) {
		return template.URL(raw)
	}
	if u, err := url.Parse(raw); err == nil && sourceSchemes[strings.ToLower(u.Scheme)] {
		return template.URL(raw)
	}
	return raw
}
