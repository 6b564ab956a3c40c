package yaml_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/esteban-rocha/svgview"
	"github.com/esteban-rocha/svgview/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("reads both keys", func(t *testing.T) {
		t.Parallel()
		cfg, err := yaml.Parse([]byte("svgviewer:\n  transparencygrid: true\n  transparencycolor: red\n"), svgview.RenderConfig{})
		require.NoError(t, err)
		assert.Equal(t, svgview.RenderConfig{ShowTransparencyGrid: true, TransparencyColor: "red"}, cfg)
	})

	t.Run("missing keys keep defaults", func(t *testing.T) {
		t.Parallel()
		defaults := svgview.RenderConfig{ShowTransparencyGrid: true, TransparencyColor: "blue"}
		cfg, err := yaml.Parse([]byte("svgviewer:\n  transparencycolor: \"\"\n"), defaults)
		require.NoError(t, err)
		assert.Equal(t, svgview.RenderConfig{ShowTransparencyGrid: true}, cfg)
	})

	t.Run("malformed input", func(t *testing.T) {
		t.Parallel()
		_, err := yaml.Parse([]byte("svgviewer: [unclosed"), svgview.RenderConfig{})
		assert.Error(t, err)
	})
}

func TestStore_Config(t *testing.T) {
	t.Parallel()

	t.Run("re-reads the file on every call", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "settings.yaml")
		store := yaml.NewStore(path)

		assert.Equal(t, svgview.RenderConfig{}, store.Config())

		require.NoError(t, yaml.Save(path, svgview.RenderConfig{ShowTransparencyGrid: true}))
		assert.Equal(t, svgview.RenderConfig{ShowTransparencyGrid: true}, store.Config())

		require.NoError(t, yaml.Save(path, svgview.RenderConfig{ShowTransparencyGrid: true, TransparencyColor: "#000"}))
		assert.Equal(t, svgview.RenderConfig{ShowTransparencyGrid: true, TransparencyColor: "#000"}, store.Config())
	})

	t.Run("malformed file logs and returns defaults", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "settings.yaml")
		require.NoError(t, os.WriteFile(path, []byte("svgviewer: [unclosed"), 0o644))

		var logs bytes.Buffer
		defaults := svgview.RenderConfig{ShowTransparencyGrid: true}
		store := yaml.NewStore(path,
			yaml.WithDefaults(defaults),
			yaml.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

		assert.Equal(t, defaults, store.Config())
		assert.Contains(t, logs.String(), "settings ignored")
		assert.Equal(t, path, store.Path())
	})

	t.Run("missing file is silent", func(t *testing.T) {
		t.Parallel()
		var logs bytes.Buffer
		store := yaml.NewStore(filepath.Join(t.TempDir(), "none.yaml"),
			yaml.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
		assert.Equal(t, svgview.RenderConfig{}, store.Config())
		assert.Empty(t, logs.String())
	})
}
