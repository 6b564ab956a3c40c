// Package html renders SVG markup into a standalone HTML preview document.
package html

import (
	"strings"

	"github.com/esteban-rocha/svgview"
)

// ContainerClass is the class of the div wrapping the preview image.
const ContainerClass = "svgbg"

// Checkerboard is the tiled background shown behind transparent regions when
// no transparency color is configured.
const Checkerboard = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAACgAAAAoCAYAAACM/rhtAAAAeUlEQVRYR+3XMQ4AIQhEUTiU9+/hUGy9Wk2G8luDIS8EMWdmYvF09+JtEUmBpieCJiA96AIiiKAswEsik10JCCIoCrAsiGBPOIK2YFWt/knOOW5Nv/ykQNMTQRMwEERQFWAOqmJ3PIIIigIMahHs3ahZt0xCetAEjA99oc8dGNmnIAAAAABJRU5ErkJggg=="

const imagePrefix = "data:image/svg+xml,"

var _ svgview.Renderer = Renderer{}

// Renderer implements svgview.Renderer.
type Renderer struct{}

// Render implements svgview.Renderer.
func (Renderer) Render(markup string, cfg svgview.RenderConfig) string {
	return Render(markup, cfg)
}

// Render embeds markup as a data-URI image inside a minimal HTML document.
// The markup never reaches the HTML as text, only percent-encoded inside the
// src attribute. Render accepts any input, including invalid UTF-8.
func Render(markup string, cfg svgview.RenderConfig) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head>")
	b.WriteString(style(cfg))
	b.WriteString(`</head><body><div class="`)
	b.WriteString(ContainerClass)
	b.WriteString(`"><img src="`)
	b.WriteString(imagePrefix)
	b.WriteString(EncodeURIComponent(markup))
	b.WriteString(`"></div></body></html>`)
	return b.String()
}

// ImageSource returns the data URI Render embeds for markup.
func ImageSource(markup string) string {
	return imagePrefix + EncodeURIComponent(markup)
}

func style(cfg svgview.RenderConfig) string {
	if !cfg.ShowTransparencyGrid {
		return ""
	}
	var rule string
	if cfg.TransparencyColor != "" {
		// Trusted configuration; emitted verbatim.
		rule = "    background: " + cfg.TransparencyColor + ";\n"
	} else {
		rule = "    background: initial;\n" +
			"    background-image: url(" + Checkerboard + ");\n" +
			"    background-position: left top;\n"
	}
	return "\n<style type=\"text/css\">\n." + ContainerClass + " img {\n" + rule + "}\n</style>"
}

const upperhex = "0123456789ABCDEF"

// EncodeURIComponent percent-encodes every byte of s except the unreserved
// set A-Z a-z 0-9 - _ . ! ~ * ' ( ). Bytes are encoded individually, so the
// result decodes back to s exactly even when s is not valid UTF-8.
func EncodeURIComponent(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
