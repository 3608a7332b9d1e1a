// Package pod models CocoaPods specifications and their presentation-ready
// summaries.
//
// A [Spec] is decoded from a *.podspec.json file as found in the CocoaPods
// Specs repository. [Present] turns it into a [Summary], the flat view used by
// the feed: display strings for authors, platforms and license, the canonical
// source URL, and the list of screenshots.
package pod

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
)

// Spec is a decoded podspec. Fields with several accepted JSON shapes
// (license, authors, screenshots) are normalized while decoding.
type Spec struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Summary     string            `json:"summary"`
	Description string            `json:"description"`
	Homepage    string            `json:"homepage"`
	License     License           `json:"license"`
	Authors     Authors           `json:"authors"`
	Source      Source            `json:"source"`
	Platforms   map[string]string `json:"platforms"`
	Screenshots Screenshots       `json:"screenshots"`
}

// Source is the download location of a pod. Exactly one of the fields is
// normally set.
type Source struct {
	Git  string `json:"git,omitempty"`
	Tag  string `json:"tag,omitempty"`
	HTTP string `json:"http,omitempty"`
	SVN  string `json:"svn,omitempty"`
	HG   string `json:"hg,omitempty"`
}

// URL returns the first non-empty location, preferring git.
func (s Source) URL() string {
	for _, u := range []string{s.Git, s.HTTP, s.SVN, s.HG} {
		if u != "" {
			return u
		}
	}
	return ""
}

// License is the license type of a pod. It decodes both "MIT" and
// {"type": "MIT", "file": "LICENSE"}.
type License string

// UnmarshalJSON implements json.Unmarshaler.
func (l *License) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = License(strings.TrimSpace(s))
		return nil
	}
	var obj struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("license: %w", err)
	}
	*l = License(strings.TrimSpace(obj.Type))
	return nil
}

// Authors is the ordered list of author names. It decodes a single string,
// a list of strings, or a map of name to email (names in file order).
type Authors []string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Authors) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Authors{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = list
		return nil
	}
	names, err := objectKeys(data)
	if err != nil {
		return fmt.Errorf("authors: %w", err)
	}
	*a = names
	return nil
}

// objectKeys returns the keys of a JSON object in document order.
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected string, list or object, got %v", tok)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Screenshots is the list of screenshot URLs. It decodes a list or a single
// string.
type Screenshots []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Screenshots) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = Screenshots{one}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("screenshots: %w", err)
	}
	*s = list
	return nil
}

func isNull(data []byte) bool {
	return strings.TrimSpace(string(data)) == "null"
}

// podspec.json files use the singular "screenshot" key as an alias.
type rawSpec struct {
	Spec
	Screenshot Screenshots `json:"screenshot"`
}

// ParseSpec decodes a podspec JSON document.
func ParseSpec(data []byte) (*Spec, error) {
	var raw rawSpec
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidPackage, err, "decode podspec")
	}
	spec := raw.Spec
	if len(spec.Screenshots) == 0 && len(raw.Screenshot) > 0 {
		spec.Screenshots = raw.Screenshot
	}
	if err := perrors.ValidatePodName(spec.Name); err != nil {
		return nil, err
	}
	if spec.Version == "" {
		return nil, perrors.New(perrors.ErrCodeInvalidPackage, "podspec %s has no version", spec.Name)
	}
	return &spec, nil
}

// ReadSpec reads and decodes a podspec JSON file.
func ReadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "podspec %s", path)
	}
	if err != nil {
		return nil, err
	}
	spec, err := ParseSpec(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}
