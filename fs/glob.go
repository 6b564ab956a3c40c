package fs

import (
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/esteban-rocha/svgview"
)

// DefaultPattern selects the documents the preview host cares about.
const DefaultPattern = "**/*.svg"

// Find returns file URIs for every regular file under root matching pattern,
// sorted by path.
func Find(root, pattern string) ([]svgview.URI, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var matches []string
	err = doublestar.GlobWalk(os.DirFS(root), pattern, func(path string, d iofs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		matches = append(matches, filepath.Join(root, filepath.FromSlash(path)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", pattern, err)
	}
	sort.Strings(matches)

	uris := make([]svgview.URI, len(matches))
	for i, m := range matches {
		uris[i] = FileURI(m)
	}
	return uris, nil
}
