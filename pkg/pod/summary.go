package pod

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Summary is the presentation-ready view of a published pod.
// It is immutable once built and owned by the caller.
type Summary struct {
	Name        string
	Homepage    string
	SourceURL   string
	Description string
	Authors     string
	Version     string
	Platform    string
	License     string // empty when the pod declares no license
	Screenshots []string
	Spec        *Spec
}

// platformNames maps podspec platform keys to display names.
var platformNames = map[string]string{
	"ios":      "iOS",
	"osx":      "OS X",
	"macos":    "macOS",
	"tvos":     "tvOS",
	"watchos":  "watchOS",
	"visionos": "visionOS",
}

// allPlatforms is shown when a spec declares no platforms, meaning it
// supports all of them.
var allPlatforms = []string{"ios", "osx", "tvos", "watchos"}

// Present builds the Summary of a spec.
func Present(spec *Spec) Summary {
	description := strings.TrimSpace(spec.Description)
	if description == "" {
		description = strings.TrimSpace(spec.Summary)
	}
	return Summary{
		Name:        spec.Name,
		Homepage:    spec.Homepage,
		SourceURL:   spec.Source.URL(),
		Description: description,
		Authors:     ToSentence(spec.Authors),
		Version:     spec.Version,
		Platform:    PlatformString(spec.Platforms),
		License:     string(spec.License),
		Screenshots: append([]string(nil), spec.Screenshots...),
		Spec:        spec,
	}
}

// ToSentence joins words as "A", "A and B" or "A, B and C".
func ToSentence(words []string) string {
	words = lo.Compact(lo.Map(words, func(w string, _ int) string { return strings.TrimSpace(w) }))
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	default:
		return strings.Join(words[:len(words)-1], ", ") + " and " + words[len(words)-1]
	}
}

// PlatformString renders declared platforms as "iOS 9.0 - OS X 10.10",
// ordered case-insensitively by display name. A nil or empty map means every
// platform is supported.
func PlatformString(platforms map[string]string) string {
	if len(platforms) == 0 {
		return strings.Join(lo.Map(allPlatforms, func(k string, _ int) string { return platformNames[k] }), " - ")
	}

	parts := lo.MapToSlice(platforms, func(key, version string) string {
		name, ok := platformNames[strings.ToLower(key)]
		if !ok {
			name = key
		}
		if version = strings.TrimSpace(version); version != "" {
			return name + " " + version
		}
		return name
	})
	sort.Slice(parts, func(i, j int) bool {
		return strings.ToLower(parts[i]) < strings.ToLower(parts[j])
	})
	return strings.Join(parts, " - ")
}
