package fsutils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decoder decodes
type Decoder interface {
	Decode(o any) error
}

var osUserHomeDir = os.UserHomeDir

func ReadYAMLFile(filePath string, required bool, o any) (err error) {
	yamlDecoderFactory := func(r io.Reader) Decoder {
		return yaml.NewDecoder(r)
	}
	return ReadFile(filePath, required, o, yamlDecoderFactory)
}

// ReadFile decodes filePath into o. A missing file is not an error unless required.
// An empty file leaves o untouched.
func ReadFile(filePath string, required bool, o any, newDecoder func(r io.Reader) Decoder) (err error) {
	var file *os.File
	if file, err = os.Open(filePath); err != nil {
		if os.IsNotExist(err) && !required {
			err = nil
		}
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close file %v: %w", filePath, closeErr)
		}
	}()
	if err = newDecoder(file).Decode(o); errors.Is(err, io.EOF) {
		err = nil
	}
	return err
}

// WriteYAMLFile replaces filePath with the YAML encoding of o, creating parent directories.
func WriteYAMLFile(filePath string, o any) error {
	data, err := yaml.Marshal(o)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	tmp := filePath + ".tmp"
	if err = os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}

func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err // some other error
	}
	return info.IsDir(), nil
}

// ExpandHome expands leading ~ to the user's home directory.
func ExpandHome(p string) string {
	if p == "" {
		return p
	}
	if strings.HasPrefix(p, "~/") || p == "~" {
		home, err := osUserHomeDir()
		if err == nil {
			if p == "~" {
				return home
			}
			return filepath.Join(home, strings.TrimPrefix(p, "~/"))
		}
	}
	return p
}

// CollapseHome is the inverse of ExpandHome, used when paths are persisted.
func CollapseHome(p string) string {
	home, err := osUserHomeDir()
	if err != nil || home == "" || p == "" {
		return p
	}
	cleanHome := filepath.Clean(home)
	cleanPath := filepath.Clean(p)
	if cleanPath == cleanHome {
		return "~"
	}
	if rel, ok := strings.CutPrefix(cleanPath, cleanHome+string(filepath.Separator)); ok {
		return "~/" + filepath.ToSlash(rel)
	}
	return p
}
