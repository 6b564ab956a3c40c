// Package goldmark renders the preview index page from markdown using
// goldmark.
package goldmark

import (
	"io"
	"path"
	"strings"

	"github.com/esteban-rocha/svgview"
	"github.com/yuin/goldmark"
)

var markdown = goldmark.New()

// Render converts markdown source to HTML and writes it to w.
func Render(w io.Writer, source string) error {
	return markdown.Convert([]byte(source), w)
}

// RenderIndex writes the HTML index of open previews and the remaining
// documents that can be previewed. link returns the page URL of a preview.
func RenderIndex(w io.Writer, surfaces []svgview.SurfaceInfo, docs []svgview.URI, link func(svgview.URI) string) error {
	return Render(w, Index(surfaces, docs, link))
}

// Index returns the markdown for the preview index. Open previews are links
// annotated with their state; documents without a preview are listed as
// plain text.
func Index(surfaces []svgview.SurfaceInfo, docs []svgview.URI, link func(svgview.URI) string) string {
	var b strings.Builder
	b.WriteString("# SVG previews\n\n")

	open := make(map[svgview.SourceIdentity]bool, len(surfaces))
	if len(surfaces) == 0 {
		b.WriteString("No open previews.\n\n")
	}
	for _, s := range surfaces {
		open[s.URI.Identity()] = true
		b.WriteString("- [")
		b.WriteString(Escape(path.Base(s.URI.Path)))
		b.WriteString("](")
		b.WriteString(link(s.URI))
		b.WriteString(") ")
		b.WriteString(Escape(s.URI.Path))
		switch {
		case s.Active:
			b.WriteString(" *(active)*")
		case s.Err != nil:
			b.WriteString(" *(stale)*")
		}
		b.WriteString("\n")
	}

	var rest []svgview.URI
	for _, d := range docs {
		if !open[d.Identity()] {
			rest = append(rest, d)
		}
	}
	if len(rest) > 0 {
		b.WriteString("\n## Documents\n\nOpen with `POST /previews` and form value `uri`.\n\n")
		for _, d := range rest {
			b.WriteString("- ")
			b.WriteString(Escape(d.String()))
			b.WriteString("\n")
		}
	}
	return b.String()
}

var escaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"<", `\<`, ">", `\>`, "#", `\#`, "!", `\!`, "(", `\(`, ")", `\)`,
)

// Escape backslash-escapes markdown punctuation in s so it renders as
// literal text.
func Escape(s string) string {
	return escaper.Replace(s)
}
