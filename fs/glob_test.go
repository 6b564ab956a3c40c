package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/esteban-rocha/svgview/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	t.Parallel()

	t.Run("matches recursively and sorts", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		sub := filepath.Join(dir, "sub")
		require.NoError(t, os.MkdirAll(sub, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.svg"), nil, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.svg"), nil, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(sub, "c.svg"), nil, 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "d.png"), nil, 0o644))

		uris, err := fs.Find(dir, fs.DefaultPattern)
		require.NoError(t, err)

		var paths []string
		for _, u := range uris {
			paths = append(paths, filepath.FromSlash(u.Path))
		}
		assert.Equal(t, []string{
			filepath.Join(dir, "a.svg"),
			filepath.Join(dir, "b.svg"),
			filepath.Join(sub, "c.svg"),
		}, paths)
	})

	t.Run("no matches", func(t *testing.T) {
		t.Parallel()
		uris, err := fs.Find(t.TempDir(), fs.DefaultPattern)
		require.NoError(t, err)
		assert.Empty(t, uris)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()
		_, err := fs.Find(t.TempDir(), "[invalid")
		assert.Error(t, err)
	})

	t.Run("root must be a directory", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "a.svg")
		require.NoError(t, os.WriteFile(file, nil, 0o644))
		_, err := fs.Find(file, fs.DefaultPattern)
		assert.Error(t, err)
	})
}
