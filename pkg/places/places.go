// Package places lists well-known directories for quick navigation: the XDG user
// directories and mounted filesystems.
package places

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/filetug/tugfm/pkg/fsutils"
)

type Place struct {
	Name string
	Path string
}

var (
	osUserHomeDir = os.UserHomeDir
	osGetenv      = os.Getenv
	osOpen        = os.Open
	dirExists     = fsutils.DirExists
)

var userDirs = []struct {
	key  string
	name string
}{
	{"XDG_DOCUMENTS_DIR", "Documents"},
	{"XDG_DOWNLOAD_DIR", "Downloads"},
	{"XDG_PICTURES_DIR", "Pictures"},
	{"XDG_VIDEOS_DIR", "Videos"},
	{"XDG_MUSIC_DIR", "Music"},
	{"XDG_DESKTOP_DIR", "Desktop"},
}

// XDGDirs returns the user directories configured in user-dirs.dirs, falling back
// to ~/<Name> when that directory exists, followed by Home.
// Entries pointing at the home directory itself are skipped, as xdg-user-dirs does
// for disabled folders.
func XDGDirs() []Place {
	home, err := osUserHomeDir()
	if err != nil {
		return nil
	}
	configured := readUserDirs(home)
	places := make([]Place, 0, len(userDirs)+1)
	for _, d := range userDirs {
		path, ok := configured[d.key]
		if !ok {
			path = filepath.Join(home, d.name)
			if exists, _ := dirExists(path); !exists {
				continue
			}
		}
		if filepath.Clean(path) == filepath.Clean(home) {
			continue
		}
		places = append(places, Place{Name: d.name, Path: path})
	}
	return append(places, Place{Name: "Home", Path: home})
}

func userDirsFile(home string) string {
	configHome := osGetenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "user-dirs.dirs")
}

// readUserDirs parses lines like XDG_MUSIC_DIR="$HOME/Music". A missing file yields no entries.
func readUserDirs(home string) map[string]string {
	dirs := make(map[string]string)
	f, err := osOpen(userDirsFile(home))
	if err != nil {
		return dirs
	}
	defer func() {
		_ = f.Close()
	}()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"`)
		switch {
		case value == "$HOME":
			value = home
		case strings.HasPrefix(value, "$HOME/"):
			value = filepath.Join(home, value[len("$HOME/"):])
		case !filepath.IsAbs(value):
			continue
		}
		dirs[strings.TrimSpace(key)] = value
	}
	return dirs
}
