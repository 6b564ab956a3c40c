// Package web hosts preview surfaces in the browser. Each open preview is a
// page whose content is pushed over a websocket; editors push unsaved buffer
// text and save events over plain HTTP.
package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/esteban-rocha/svgview"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// maxBufferSize bounds the body of a buffer update.
const maxBufferSize = 16 << 20

// Manager is the subset of *svgview.Manager the server drives.
type Manager interface {
	Register(ctx context.Context, uri svgview.URI, display svgview.Display) (svgview.SurfaceInfo, error)
	Unregister(uri svgview.URI) bool
	NotifyChanged(uri svgview.URI)
	RefreshAll()
	SetActive(uri svgview.URI, active bool)
	Surface(uri svgview.URI) (svgview.SurfaceInfo, bool)
	Surfaces() []svgview.SurfaceInfo
}

// Buffers receives editor buffer updates.
type Buffers interface {
	Edit(uri svgview.URI, text string)
	Save(ctx context.Context, uri svgview.URI) error
}

// Option configures a Server.
type Option func(*Server)

// WithBuffers enables the buffer endpoints.
func WithBuffers(b Buffers) Option {
	return func(s *Server) {
		s.buffers = b
	}
}

// WithDocuments sets a function listing documents that can be previewed.
// The list is shown on the index page.
func WithDocuments(fn func() ([]svgview.URI, error)) Option {
	return func(s *Server) {
		s.documents = fn
	}
}

// WithResolver sets a function that canonicalizes source URIs before a
// preview is opened, such as making relative paths absolute.
func WithResolver(fn func(svgview.URI) svgview.URI) Option {
	return func(s *Server) {
		s.resolve = fn
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// Server is an http.Handler exposing previews and buffer endpoints.
type Server struct {
	manager   Manager
	buffers   Buffers
	documents func() ([]svgview.URI, error)
	resolve   func(svgview.URI) svgview.URI
	logger    *slog.Logger
	router    chi.Router
	upgrader  websocket.Upgrader

	mu       sync.Mutex
	surfaces map[svgview.SourceIdentity]*Surface
}

// NewServer returns a Server driving manager.
func NewServer(manager Manager, opts ...Option) *Server {
	s := &Server{
		manager:  manager,
		logger:   slog.Default(),
		surfaces: make(map[svgview.SourceIdentity]*Surface),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/refresh", s.handleRefreshAll)
	r.Route("/previews", func(r chi.Router) {
		r.Post("/", s.handleOpen)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handlePage)
			r.Delete("/", s.handleClose)
			r.Get("/content", s.handleContent)
			r.Get("/ws", s.handleSocket)
			r.Post("/refresh", s.handleRefresh)
		})
	})
	r.Route("/buffers/{id}", func(r chi.Router) {
		r.Put("/", s.handleEdit)
		r.Post("/save", s.handleSave)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Open registers a browser surface for uri. Reopening an open preview keeps
// its connected clients.
func (s *Server) Open(ctx context.Context, uri svgview.URI) (svgview.SurfaceInfo, error) {
	src, err := svgview.SourceURI(uri)
	if err != nil {
		return svgview.SurfaceInfo{}, err
	}
	if s.resolve != nil {
		src = s.resolve(src)
	}
	id := src.Identity()

	s.mu.Lock()
	surf, existed := s.surfaces[id]
	if !existed {
		surf = NewSurface()
		s.surfaces[id] = surf
	}
	s.mu.Unlock()

	info, err := s.manager.Register(ctx, src, surf)
	if err != nil {
		if !existed {
			s.mu.Lock()
			if s.surfaces[id] == surf {
				delete(s.surfaces, id)
			}
			s.mu.Unlock()
		}
		return svgview.SurfaceInfo{}, err
	}
	return info, nil
}

// Close unregisters the preview for uri and disconnects its clients.
func (s *Server) Close(uri svgview.URI) bool {
	src, err := svgview.SourceURI(uri)
	if err != nil {
		return false
	}
	s.mu.Lock()
	surf, ok := s.surfaces[src.Identity()]
	delete(s.surfaces, src.Identity())
	s.mu.Unlock()
	if ok {
		surf.Close()
	}
	return s.manager.Unregister(src) || ok
}

// Shutdown disconnects every client of every surface.
func (s *Server) Shutdown() {
	s.mu.Lock()
	surfaces := make([]*Surface, 0, len(s.surfaces))
	for _, surf := range s.surfaces {
		surfaces = append(surfaces, surf)
	}
	s.mu.Unlock()
	for _, surf := range surfaces {
		surf.Close()
	}
}

// ID returns the URL path segment identifying the preview of uri.
func ID(uri svgview.URI) string {
	if src, err := svgview.SourceURI(uri); err == nil {
		uri = src
	}
	return base64.RawURLEncoding.EncodeToString([]byte(uri.String()))
}

// ParseID reverses ID.
func ParseID(id string) (svgview.URI, error) {
	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return svgview.URI{}, fmt.Errorf("decode id: %w: %w", svgview.ErrInvalidURI, err)
	}
	return svgview.ParseURI(string(raw))
}

type previewResponse struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	Preview string `json:"preview"`
	URL     string `json:"url"`
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	uri, err := svgview.ParseURI(r.FormValue("uri"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	info, err := s.Open(r.Context(), uri)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id := ID(info.URI)
	writeJSON(w, http.StatusCreated, previewResponse{
		ID:      id,
		Source:  info.URI.String(),
		Preview: svgview.PreviewURI(info.URI).String(),
		URL:     pageURL(info.URI),
	})
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	uri, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.Close(uri)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	uri, ok := s.lookup(w, r)
	if !ok {
		return
	}
	info, _ := s.manager.Surface(uri)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, pageData{
		Title:      uri.Path,
		Content:    info.Content,
		SocketPath: pageURL(uri) + "/ws",
	})
	if err != nil {
		s.logger.Warn("render page", "source", uri.String(), "err", err)
	}
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	uri, ok := s.lookup(w, r)
	if !ok {
		return
	}
	info, _ := s.manager.Surface(uri)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, info.Content)
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	uri, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	surf, ok := s.surfaces[uri.Identity()]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		s.logger.Debug("websocket upgrade", "err", err)
		return
	}
	c := surf.attach(conn)
	s.manager.SetActive(uri, true)
	go c.writeLoop()
	c.readLoop()
	if surf.detach(c) == 0 {
		s.manager.SetActive(uri, false)
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	uri, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.manager.NotifyChanged(uri)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleRefreshAll(w http.ResponseWriter, _ *http.Request) {
	s.manager.RefreshAll()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	if s.buffers == nil {
		http.Error(w, "buffers not enabled", http.StatusNotImplemented)
		return
	}
	uri, err := ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBufferSize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	s.buffers.Edit(uri, string(body))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.buffers == nil {
		http.Error(w, "buffers not enabled", http.StatusNotImplemented)
		return
	}
	uri, err := ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.buffers.Save(r.Context(), uri); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// lookup resolves the {id} parameter to the source URI of a registered
// preview, replying with an error when there is none. An id encoding a
// preview URI resolves to its source.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (svgview.URI, bool) {
	uri, err := ParseID(chi.URLParam(r, "id"))
	if err == nil {
		uri, err = svgview.SourceURI(uri)
	}
	if err != nil {
		s.fail(w, r, err)
		return svgview.URI{}, false
	}
	if _, ok := s.manager.Surface(uri); !ok {
		http.NotFound(w, r)
		return svgview.URI{}, false
	}
	return uri, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
	}
	http.Error(w, err.Error(), code)
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, svgview.ErrInvalidURI):
		return http.StatusBadRequest
	case errors.Is(err, svgview.ErrSourceUnavailable):
		return http.StatusNotFound
	case errors.Is(err, svgview.ErrDisposed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
