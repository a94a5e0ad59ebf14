package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/filetug/tugfm/pkg/fsutils"
)

const (
	UserDir          = "~/.filetug"
	settingsFileName = "tugfm.yaml"
	logFileName      = "tugfm.log"
)

const (
	GraphicsAuto  = "auto"
	GraphicsKitty = "kitty"
	GraphicsNone  = "none"
)

var osUserHomeDir = os.UserHomeDir

type Bookmark struct {
	Name string `yaml:"name,omitempty"`
	Path string `yaml:"path"`
}

type Preview struct {
	Progressive   bool   `yaml:"progressive"`
	QueueCapacity int    `yaml:"queue_capacity"`
	Graphics      string `yaml:"graphics"`
}

type Tasks struct {
	// MaxConcurrent caps running file operations. 0 means no cap.
	MaxConcurrent int `yaml:"max_concurrent"`
}

type Settings struct {
	ShowHidden bool       `yaml:"show_hidden"`
	Preview    Preview    `yaml:"preview"`
	Tasks      Tasks      `yaml:"tasks"`
	Bookmarks  []Bookmark `yaml:"bookmarks,omitempty"`
}

func Default() *Settings {
	return &Settings{
		Preview: Preview{
			Progressive:   true,
			QueueCapacity: 32,
			Graphics:      GraphicsAuto,
		},
	}
}

// GetUserDir returns the expanded settings directory.
func GetUserDir() (string, error) {
	home, err := osUserHomeDir()
	if err != nil {
		return UserDir, err
	}
	return filepath.Join(home, UserDir[2:]), nil
}

func DefaultFilePath() (string, error) {
	dir, err := GetUserDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFileName), nil
}

func DefaultLogFilePath() (string, error) {
	dir, err := GetUserDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logFileName), nil
}

// Load reads settings from path on top of the defaults. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	s := Default()
	if err := fsutils.ReadYAMLFile(path, false, s); err != nil {
		return nil, fmt.Errorf("failed to read settings from %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

func Save(path string, s *Settings) error {
	if err := fsutils.WriteYAMLFile(path, s); err != nil {
		return fmt.Errorf("failed to write settings to %s: %w", path, err)
	}
	return nil
}

func (s *Settings) Validate() error {
	switch s.Preview.Graphics {
	case GraphicsAuto, GraphicsKitty, GraphicsNone:
	case "":
		s.Preview.Graphics = GraphicsAuto
	default:
		return fmt.Errorf("unknown preview.graphics %q, expected auto, kitty or none", s.Preview.Graphics)
	}
	if s.Preview.QueueCapacity < 0 {
		return fmt.Errorf("preview.queue_capacity must not be negative, got %d", s.Preview.QueueCapacity)
	}
	if s.Tasks.MaxConcurrent < 0 {
		return fmt.Errorf("tasks.max_concurrent must not be negative, got %d", s.Tasks.MaxConcurrent)
	}
	return nil
}

// AddBookmark stores path under the home-relative form. It reports false when the
// path is already bookmarked.
func (s *Settings) AddBookmark(name, path string) bool {
	path = fsutils.CollapseHome(filepath.Clean(path))
	for _, b := range s.Bookmarks {
		if b.Path == path {
			return false
		}
	}
	if name == "" {
		name = filepath.Base(fsutils.ExpandHome(path))
	}
	s.Bookmarks = append(s.Bookmarks, Bookmark{Name: name, Path: path})
	return true
}

func (s *Settings) RemoveBookmark(path string) bool {
	path = fsutils.CollapseHome(filepath.Clean(path))
	for i, b := range s.Bookmarks {
		if b.Path == path {
			s.Bookmarks = append(s.Bookmarks[:i], s.Bookmarks[i+1:]...)
			return true
		}
	}
	return false
}

// Dir is the bookmark target with ~ expanded.
func (b Bookmark) Dir() string {
	return fsutils.ExpandHome(b.Path)
}
