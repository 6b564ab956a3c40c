// Package fs reads, writes, finds and watches SVG documents on the local
// filesystem.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/esteban-rocha/svgview"
)

var _ svgview.DocumentSource = (*Source)(nil)

// Source serves file URIs from disk. Relative paths resolve against Root.
type Source struct {
	Root string
}

// NewSource returns a Source rooted at root.
func NewSource(root string) *Source {
	return &Source{Root: root}
}

// Open reads the document at uri.
func (s *Source) Open(ctx context.Context, uri svgview.URI) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.Path(uri)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w: %w", path, svgview.ErrSourceUnavailable, err)
	}
	return string(data), nil
}

// Write replaces the document at uri with text.
func (s *Source) Write(ctx context.Context, uri svgview.URI, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.Path(uri)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Path maps a file URI to a filesystem path.
func (s *Source) Path(uri svgview.URI) (string, error) {
	if uri.Scheme != svgview.FileScheme {
		return "", fmt.Errorf("unsupported scheme %q: %w", uri.Scheme, svgview.ErrSourceUnavailable)
	}
	path := filepath.FromSlash(uri.Path)
	if !filepath.IsAbs(path) && s.Root != "" {
		path = filepath.Join(s.Root, path)
	}
	return path, nil
}

// Resolve makes a relative file URI absolute against Root so it names the
// same document as the URIs a Watcher reports. Other URIs are returned as is.
func (s *Source) Resolve(uri svgview.URI) svgview.URI {
	if uri.Scheme != svgview.FileScheme || filepath.IsAbs(filepath.FromSlash(uri.Path)) {
		return uri
	}
	return FileURI(filepath.Join(s.Root, filepath.FromSlash(uri.Path)))
}

// FileURI returns the file URI for path.
func FileURI(path string) svgview.URI {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return svgview.URI{Scheme: svgview.FileScheme, Path: filepath.ToSlash(path)}
}
