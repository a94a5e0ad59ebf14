package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing_file_yields_defaults", func(t *testing.T) {
		s, err := Load(filepath.Join(dir, "missing.yaml"))
		assert.NoError(t, err)
		assert.Equal(t, Default(), s)
	})

	t.Run("partial_file_keeps_defaults", func(t *testing.T) {
		p := filepath.Join(dir, "partial.yaml")
		assert.NoError(t, os.WriteFile(p, []byte("show_hidden: true\ntasks:\n  max_concurrent: 4\n"), 0o644))
		s, err := Load(p)
		assert.NoError(t, err)
		assert.True(t, s.ShowHidden)
		assert.Equal(t, 4, s.Tasks.MaxConcurrent)
		assert.True(t, s.Preview.Progressive)
		assert.Equal(t, 32, s.Preview.QueueCapacity)
		assert.Equal(t, GraphicsAuto, s.Preview.Graphics)
	})

	t.Run("invalid_graphics", func(t *testing.T) {
		p := filepath.Join(dir, "bad.yaml")
		assert.NoError(t, os.WriteFile(p, []byte("preview:\n  graphics: sixel\n"), 0o644))
		_, err := Load(p)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "sixel")
	})

	t.Run("invalid_yaml", func(t *testing.T) {
		p := filepath.Join(dir, "broken.yaml")
		assert.NoError(t, os.WriteFile(p, []byte("bookmarks: ["), 0o644))
		_, err := Load(p)
		assert.Error(t, err)
	})
}

func TestSaveAndLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sub", "tugfm.yaml")
	s := Default()
	s.Preview.Progressive = false
	s.Preview.Graphics = GraphicsNone
	s.Bookmarks = []Bookmark{{Name: "tmp", Path: "/tmp"}}

	assert.NoError(t, Save(p, s))
	loaded, err := Load(p)
	assert.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestValidate(t *testing.T) {
	s := Default()
	s.Preview.Graphics = ""
	assert.NoError(t, s.Validate())
	assert.Equal(t, GraphicsAuto, s.Preview.Graphics)

	s.Tasks.MaxConcurrent = -1
	assert.Error(t, s.Validate())

	s = Default()
	s.Preview.QueueCapacity = -5
	assert.Error(t, s.Validate())
}

func TestBookmarks(t *testing.T) {
	orig := osUserHomeDir
	defer func() { osUserHomeDir = orig }()
	osUserHomeDir = func() (string, error) { return "/home/u", nil }

	s := Default()
	assert.True(t, s.AddBookmark("", "/srv/data"))
	assert.False(t, s.AddBookmark("again", "/srv/data/"))
	assert.Equal(t, []Bookmark{{Name: "data", Path: "/srv/data"}}, s.Bookmarks)
	assert.Equal(t, "/srv/data", s.Bookmarks[0].Dir())

	assert.True(t, s.RemoveBookmark("/srv/data"))
	assert.False(t, s.RemoveBookmark("/srv/data"))
	assert.Equal(t, 0, len(s.Bookmarks))
}

func TestGetUserDir(t *testing.T) {
	orig := osUserHomeDir
	defer func() { osUserHomeDir = orig }()

	osUserHomeDir = func() (string, error) { return "/home/u", nil }
	dir, err := GetUserDir()
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/u", ".filetug"), dir)

	p, err := DefaultFilePath()
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/u", ".filetug", "tugfm.yaml"), p)

	p, err = DefaultLogFilePath()
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/u", ".filetug", "tugfm.log"), p)

	osUserHomeDir = func() (string, error) { return "", errors.New("no home") }
	dir, err = GetUserDir()
	assert.Error(t, err)
	assert.Equal(t, UserDir, dir)
	_, err = DefaultFilePath()
	assert.Error(t, err)
}
