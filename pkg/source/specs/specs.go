// Package specs reads pods from a CocoaPods Specs repository checkout.
//
// The Specs repository stores one directory per pod version, each holding a
// <Name>.podspec.json file. Both the historical flat layout
// (Specs/<Name>/<version>/) and the sharded layout
// (Specs/1/2/3/<Name>/<version>/) are supported since the loader simply walks
// the tree. Only the highest version of every pod is kept.
package specs

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/mod/semver"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
	"github.com/matzehuels/podfeed/pkg/pod"
)

// Suffix is the file suffix of JSON podspecs.
const Suffix = ".podspec.json"

// Load walks dir and returns the latest version of every pod as a summary,
// sorted by name. Specs that fail to parse are logged and skipped. A nil
// logger discards output.
func Load(ctx context.Context, dir string, logger *log.Logger) ([]pod.Summary, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := perrors.ValidateDir(dir); err != nil {
		return nil, err
	}
	if info, err := os.Stat(dir); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "specs directory %s", dir)
	} else if !info.IsDir() {
		return nil, perrors.New(perrors.ErrCodeInvalidPath, "%s is not a directory", dir)
	}

	latest := map[string]*pod.Spec{}
	skipped := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), Suffix) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		spec, err := pod.ReadSpec(path)
		if err != nil {
			logger.Warn("skipping podspec", "path", path, "err", err)
			skipped++
			return nil
		}
		if cur, ok := latest[spec.Name]; !ok || CompareVersions(spec.Version, cur.Version) > 0 {
			latest[spec.Name] = spec
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "walk %s", dir)
	}

	summaries := make([]pod.Summary, 0, len(latest))
	for _, spec := range latest {
		summaries = append(summaries, pod.Present(spec))
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })

	logger.Debug("loaded specs", "dir", dir, "pods", len(summaries), "skipped", skipped)
	return summaries, nil
}

// CompareVersions orders two pod versions, returning -1, 0 or +1.
// Semantic versions (including "1.2" and prereleases) compare per semver;
// anything else is compared numerically segment by segment.
func CompareVersions(a, b string) int {
	va, vb := "v"+a, "v"+b
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb)
	}

	pa, pb := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(pa) || i < len(pb); i++ {
		var sa, sb string
		if i < len(pa) {
			sa = pa[i]
		}
		if i < len(pb) {
			sb = pb[i]
		}
		if c := compareSegment(sa, sb); c != 0 {
			return c
		}
	}
	return 0
}

func compareSegment(a, b string) int {
	na, errA := strconv.Atoi(orZero(a))
	nb, errB := strconv.Atoi(orZero(b))
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
