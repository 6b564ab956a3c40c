package svgview

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const (
	// FileScheme addresses documents on the local filesystem.
	FileScheme = "file"
	// PreviewScheme addresses a rendering surface for a source document.
	PreviewScheme = "svg-preview"

	previewSuffix = ".rendered"
)

// URI is a composite document reference: a scheme tag, a path, and an
// optional query. Preview URIs carry their source URI in Query.
type URI struct {
	Scheme string
	Path   string
	Query  string
}

// SourceIdentity is the lookup key for a source document. Two URIs share an
// identity iff their scheme and path are equal; the query is ignored.
type SourceIdentity struct {
	Scheme string
	Path   string
}

func (id SourceIdentity) String() string {
	return id.Scheme + ":" + id.Path
}

// ParseURI parses s as a URI. Strings without a scheme are treated as
// filesystem paths. URIs naming a host are rejected, except file URIs on
// localhost.
func ParseURI(s string) (URI, error) {
	if strings.TrimSpace(s) == "" {
		return URI{}, fmt.Errorf("empty uri: %w", ErrInvalidURI)
	}
	if filepath.IsAbs(s) || !strings.Contains(s, ":") {
		return URI{Scheme: FileScheme, Path: filepath.ToSlash(s)}, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return URI{}, fmt.Errorf("parse %q: %w: %w", s, ErrInvalidURI, err)
	}
	if u.Scheme == "" {
		return URI{}, fmt.Errorf("missing scheme in %q: %w", s, ErrInvalidURI)
	}
	scheme := strings.ToLower(u.Scheme)
	if u.Host != "" && !(scheme == FileScheme && strings.EqualFold(u.Host, "localhost")) {
		return URI{}, fmt.Errorf("host %q in %q: %w", u.Host, s, ErrInvalidURI)
	}
	path := u.Path
	if u.Opaque != "" {
		path, err = url.PathUnescape(u.Opaque)
		if err != nil {
			return URI{}, fmt.Errorf("path of %q: %w: %w", s, ErrInvalidURI, err)
		}
	}
	if path == "" {
		return URI{}, fmt.Errorf("missing path in %q: %w", s, ErrInvalidURI)
	}
	query, err := url.QueryUnescape(u.RawQuery)
	if err != nil {
		return URI{}, fmt.Errorf("query of %q: %w: %w", s, ErrInvalidURI, err)
	}
	return URI{Scheme: scheme, Path: path, Query: query}, nil
}

// String serializes the URI so that ParseURI(u.String()) == u.
func (u URI) String() string {
	var b strings.Builder
	b.WriteString(u.Scheme)
	if strings.HasPrefix(u.Path, "/") {
		b.WriteString("://")
		b.WriteString((&url.URL{Path: u.Path}).EscapedPath())
	} else {
		b.WriteString(":")
		b.WriteString(url.PathEscape(u.Path))
	}
	if u.Query != "" {
		b.WriteString("?")
		b.WriteString(url.QueryEscape(u.Query))
	}
	return b.String()
}

// Identity returns the lookup key for u.
func (u URI) Identity() SourceIdentity {
	return SourceIdentity{Scheme: u.Scheme, Path: u.Path}
}

// IsPreview reports whether u addresses a rendering surface.
func (u URI) IsPreview() bool {
	return u.Scheme == PreviewScheme
}

// PreviewURI returns the surface URI for source. Preview URIs are returned
// unchanged.
func PreviewURI(source URI) URI {
	if source.IsPreview() {
		return source
	}
	return URI{
		Scheme: PreviewScheme,
		Path:   source.Path + previewSuffix,
		Query:  source.String(),
	}
}

// SourceURI returns the source document a URI refers to. For preview URIs
// the source is recovered from the query; other URIs are returned unchanged.
func SourceURI(u URI) (URI, error) {
	if !u.IsPreview() {
		return u, nil
	}
	if u.Query == "" {
		return URI{}, fmt.Errorf("preview %s has no source: %w", u.Path, ErrInvalidURI)
	}
	src, err := ParseURI(u.Query)
	if err != nil {
		return URI{}, err
	}
	if src.IsPreview() {
		return URI{}, fmt.Errorf("preview %s refers to another preview: %w", u.Path, ErrInvalidURI)
	}
	return src, nil
}
