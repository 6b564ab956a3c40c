package web

import (
	"bytes"
	"net/http"

	"github.com/esteban-rocha/svgview"
	"github.com/esteban-rocha/svgview/goldmark"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var docs []svgview.URI
	if s.documents != nil {
		var err error
		docs, err = s.documents()
		if err != nil {
			s.logger.Warn("list documents", "err", err)
		}
	}

	var out bytes.Buffer
	out.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>svgview</title></head><body>`)
	if err := goldmark.RenderIndex(&out, s.manager.Surfaces(), docs, pageURL); err != nil {
		s.fail(w, r, err)
		return
	}
	out.WriteString("</body></html>")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(out.Bytes())
}

func pageURL(uri svgview.URI) string {
	return "/previews/" + ID(uri)
}
