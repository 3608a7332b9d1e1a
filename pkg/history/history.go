// Package history stores the first-publication date of every pod.
//
// The feed orders pods by when they first appeared in the Specs repository.
// That date is not part of a podspec, so it is kept in a separate [Index]
// persisted by one of several [Store] backends:
//
//   - [FileStore]: a JSON or YAML document mapping pod name to timestamp
//   - [SQLiteStore]: a local SQLite database (table creation_dates)
//   - [MongoStore]: a MongoDB collection (creation_dates)
//
// Use [Open] to pick a backend from configuration.
package history

import (
	"context"
	"sort"
	"strings"
	"time"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
)

// Index maps pod names to their first-publication time.
type Index map[string]time.Time

// Lookup returns the creation date of name.
func (ix Index) Lookup(name string) (time.Time, bool) {
	t, ok := ix[name]
	return t, ok
}

// Names returns the indexed pod names in ascending order.
func (ix Index) Names() []string {
	names := make([]string, 0, len(ix))
	for name := range ix {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge copies every entry of other into ix, overwriting existing dates,
// and returns the number of entries that changed.
func (ix Index) Merge(other Index) int {
	changed := 0
	for name, t := range other {
		if old, ok := ix[name]; ok && old.Equal(t) {
			continue
		}
		ix[name] = t
		changed++
	}
	return changed
}

// Store persists an Index.
type Store interface {
	// Load reads the full index.
	Load(ctx context.Context) (Index, error)
	// Save upserts every entry of ix. Entries not in ix are kept.
	Save(ctx context.Context, ix Index) error
	// Close releases backend resources.
	Close() error
}

// timeLayouts are accepted when parsing stored dates. The last two cover
// timestamps exported from the trunk database, which carry no zone and are UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTime parses a stored creation date.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, perrors.New(perrors.ErrCodeInvalidInput, "unrecognized date %q", s)
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }
