package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/esteban-rocha/svgview"
	svgjson "github.com/esteban-rocha/svgview/json"
)

// uriList is a repeatable flag of source or preview URIs.
type uriList []svgview.URI

func (l *uriList) String() string {
	parts := make([]string, len(*l))
	for i, u := range *l {
		parts[i] = u.String()
	}
	return strings.Join(parts, ",")
}

func (l *uriList) Set(s string) error {
	u, err := svgview.ParseURI(s)
	if err != nil {
		return err
	}
	*l = append(*l, u)
	return nil
}

// opener opens a preview for a URI.
type opener interface {
	Open(ctx context.Context, uri svgview.URI) (svgview.SurfaceInfo, error)
}

// activator marks a preview as focused.
type activator interface {
	SetActive(uri svgview.URI, active bool)
}

// loadState returns the state saved at path. A missing file yields an empty
// state.
func loadState(path string) (svgjson.State, error) {
	st, err := svgjson.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return svgjson.State{}, nil
	}
	if err != nil {
		return svgjson.State{}, err
	}
	return st, nil
}

// restore reopens the saved previews and focuses the saved active one if it
// reopened. It returns the number of previews opened.
func restore(ctx context.Context, o opener, a activator, st svgjson.State, logger *slog.Logger) int {
	opened := make(map[svgview.SourceIdentity]svgview.URI, len(st.Previews))
	for _, u := range st.Previews {
		info, err := o.Open(ctx, u)
		if err != nil {
			logger.Warn("preview not opened", "uri", u.String(), "err", err)
			continue
		}
		opened[info.URI.Identity()] = info.URI
	}
	if st.Active == nil {
		return len(opened)
	}
	active, err := svgview.SourceURI(*st.Active)
	if err != nil {
		logger.Warn("active preview not restored", "uri", st.Active.String(), "err", err)
		return len(opened)
	}
	if src, ok := opened[active.Identity()]; ok {
		a.SetActive(src, true)
	}
	return len(opened)
}

// openAll opens each URI, logging and skipping failures. It returns the
// number of previews opened.
func openAll(ctx context.Context, o opener, uris []svgview.URI, logger *slog.Logger) int {
	n := 0
	for _, u := range uris {
		if _, err := o.Open(ctx, u); err != nil {
			logger.Warn("preview not opened", "uri", u.String(), "err", err)
			continue
		}
		n++
	}
	return n
}
