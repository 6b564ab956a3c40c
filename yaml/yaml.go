// Package yaml provides a svgview.ConfigStore backed by a YAML settings file.
//
// The file uses the same keys as the editor settings:
//
//	svgviewer:
//	  transparencygrid: true
//	  transparencycolor: "#ffffff"
package yaml

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/esteban-rocha/svgview"
	"gopkg.in/yaml.v3"
)

var _ svgview.ConfigStore = (*Store)(nil)

type settings struct {
	SvgViewer struct {
		TransparencyGrid  *bool   `yaml:"transparencygrid"`
		TransparencyColor *string `yaml:"transparencycolor"`
	} `yaml:"svgviewer"`
}

// Store reads render settings from a file on every call to Config, so edits
// to the file apply to the next render without a restart.
type Store struct {
	path     string
	defaults svgview.RenderConfig
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithDefaults sets the values used for keys missing from the file, or when
// the file cannot be read.
func WithDefaults(cfg svgview.RenderConfig) Option {
	return func(s *Store) {
		s.defaults = cfg
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore returns a Store reading path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{path: path, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// Config implements svgview.ConfigStore. A missing file yields the defaults
// silently; an unreadable or malformed file is logged and yields the defaults.
func (s *Store) Config() svgview.RenderConfig {
	cfg, err := Load(s.path, s.defaults)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("settings ignored", "path", s.path, "err", err)
		}
		return s.defaults
	}
	return cfg
}

// Load reads path and overlays its values on defaults.
func Load(path string, defaults svgview.RenderConfig) (svgview.RenderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, fmt.Errorf("read settings: %w", err)
	}
	return Parse(data, defaults)
}

// Parse decodes settings and overlays them on defaults.
func Parse(data []byte, defaults svgview.RenderConfig) (svgview.RenderConfig, error) {
	var st settings
	if err := yaml.Unmarshal(data, &st); err != nil {
		return defaults, fmt.Errorf("parse settings: %w", err)
	}
	cfg := defaults
	if v := st.SvgViewer.TransparencyGrid; v != nil {
		cfg.ShowTransparencyGrid = *v
	}
	if v := st.SvgViewer.TransparencyColor; v != nil {
		cfg.TransparencyColor = *v
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg svgview.RenderConfig) error {
	var st settings
	st.SvgViewer.TransparencyGrid = &cfg.ShowTransparencyGrid
	st.SvgViewer.TransparencyColor = &cfg.TransparencyColor
	data, err := yaml.Marshal(&st)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
