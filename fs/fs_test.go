package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/esteban-rocha/svgview"
	"github.com/esteban-rocha/svgview/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Open(t *testing.T) {
	t.Parallel()

	t.Run("reads absolute file uri", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "a.svg")
		require.NoError(t, os.WriteFile(path, []byte("<svg/>"), 0o644))

		text, err := fs.NewSource("").Open(context.Background(), fs.FileURI(path))
		require.NoError(t, err)
		assert.Equal(t, "<svg/>", text)
	})

	t.Run("resolves relative paths against root", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "icons"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "icons", "b.svg"), []byte("b"), 0o644))

		uri := svgview.URI{Scheme: svgview.FileScheme, Path: "icons/b.svg"}
		text, err := fs.NewSource(dir).Open(context.Background(), uri)
		require.NoError(t, err)
		assert.Equal(t, "b", text)
	})

	t.Run("missing file is unavailable", func(t *testing.T) {
		t.Parallel()
		_, err := fs.NewSource("").Open(context.Background(), fs.FileURI(filepath.Join(t.TempDir(), "nope.svg")))
		assert.ErrorIs(t, err, svgview.ErrSourceUnavailable)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("other schemes are unavailable", func(t *testing.T) {
		t.Parallel()
		_, err := fs.NewSource("").Open(context.Background(), svgview.URI{Scheme: "untitled", Path: "Untitled-1"})
		assert.ErrorIs(t, err, svgview.ErrSourceUnavailable)
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := fs.NewSource("").Open(ctx, fs.FileURI("/a.svg"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSource_Write(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.svg")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	src := fs.NewSource("")
	require.NoError(t, src.Write(context.Background(), fs.FileURI(path), "new"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	_, err = os.Stat(path + ".tmp")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileURI(t *testing.T) {
	t.Parallel()

	uri := fs.FileURI("/tmp/x/../a.svg")
	assert.Equal(t, svgview.FileScheme, uri.Scheme)
	assert.Equal(t, "/tmp/a.svg", uri.Path)
}

func TestSource_Resolve(t *testing.T) {
	t.Parallel()

	src := fs.NewSource("/work")

	got := src.Resolve(svgview.URI{Scheme: svgview.FileScheme, Path: "icons/a.svg"})
	assert.Equal(t, svgview.URI{Scheme: svgview.FileScheme, Path: "/work/icons/a.svg"}, got)

	abs := svgview.URI{Scheme: svgview.FileScheme, Path: "/elsewhere/a.svg"}
	assert.Equal(t, abs, src.Resolve(abs))

	untitled := svgview.URI{Scheme: "untitled", Path: "Untitled-1"}
	assert.Equal(t, untitled, src.Resolve(untitled))
}
