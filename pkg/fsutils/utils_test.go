package fsutils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestDirExists(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("exists", func(t *testing.T) {
		exists, err := DirExists(tmpDir)
		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("not_exists", func(t *testing.T) {
		exists, err := DirExists(filepath.Join(tmpDir, "non_existent"))
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("is_file", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "file.txt")
		err := os.WriteFile(filePath, []byte("test"), 0644)
		assert.NoError(t, err)

		exists, err := DirExists(filePath)
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("error", func(t *testing.T) {
		_, err := DirExists("path\x00with-null")
		assert.Error(t, err)
	})
}

func withHome(t *testing.T, home string, err error) {
	t.Helper()
	orig := osUserHomeDir
	t.Cleanup(func() { osUserHomeDir = orig })
	osUserHomeDir = func() (string, error) { return home, err }
}

func TestExpandHome(t *testing.T) {
	withHome(t, "/home/u", nil)

	assert.Equal(t, "", ExpandHome(""))
	assert.Equal(t, "/some/path", ExpandHome("/some/path"))
	assert.Equal(t, "/home/u", ExpandHome("~"))
	assert.Equal(t, filepath.Join("/home/u", "abc"), ExpandHome("~/abc"))
	assert.Equal(t, "~abc", ExpandHome("~abc"))

	t.Run("home_unknown", func(t *testing.T) {
		withHome(t, "", errors.New("no home"))
		assert.Equal(t, "~/abc", ExpandHome("~/abc"))
	})
}

func TestCollapseHome(t *testing.T) {
	withHome(t, "/home/u", nil)

	assert.Equal(t, "~", CollapseHome("/home/u"))
	assert.Equal(t, "~/docs/x", CollapseHome("/home/u/docs/x"))
	assert.Equal(t, "/home/user2", CollapseHome("/home/user2"))
	assert.Equal(t, "/etc", CollapseHome("/etc"))
	assert.Equal(t, "", CollapseHome(""))
}

func TestReadYAMLFile(t *testing.T) {
	type A struct {
		B string `yaml:"b"`
	}
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		assert.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	t.Run("not_found_not_required", func(t *testing.T) {
		var a A
		assert.NoError(t, ReadYAMLFile(filepath.Join(dir, "missing.yaml"), false, &a))
	})

	t.Run("not_found_required", func(t *testing.T) {
		var a A
		assert.Error(t, ReadYAMLFile(filepath.Join(dir, "missing.yaml"), true, &a))
	})

	t.Run("success", func(t *testing.T) {
		var a A
		assert.NoError(t, ReadYAMLFile(write("ok.yaml", "b: test\n"), true, &a))
		assert.Equal(t, "test", a.B)
	})

	t.Run("empty_file", func(t *testing.T) {
		a := A{B: "kept"}
		assert.NoError(t, ReadYAMLFile(write("empty.yaml", ""), true, &a))
		assert.Equal(t, "kept", a.B)
	})

	t.Run("invalid", func(t *testing.T) {
		var a A
		assert.Error(t, ReadYAMLFile(write("bad.yaml", "b: ["), true, &a))
	})
}

type mockDecoder struct {
	err error
}

func (m mockDecoder) Decode(any) error {
	return m.err
}

func TestReadFile_DecoderError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x")
	assert.NoError(t, os.WriteFile(p, []byte("x"), 0o644))

	err := ReadFile(p, true, nil, func(io.Reader) Decoder {
		return mockDecoder{err: errors.New("decode failed")}
	})
	assert.EqualError(t, err, "decode failed")
}

func TestWriteYAMLFile(t *testing.T) {
	type A struct {
		B string `yaml:"b"`
	}
	p := filepath.Join(t.TempDir(), "nested", "out.yaml")
	assert.NoError(t, WriteYAMLFile(p, A{B: "v"}))

	data, err := os.ReadFile(p)
	assert.NoError(t, err)
	assert.Equal(t, "b: v\n", string(data))

	var a A
	assert.NoError(t, ReadYAMLFile(p, true, &a))
	assert.Equal(t, "v", a.B)

	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
