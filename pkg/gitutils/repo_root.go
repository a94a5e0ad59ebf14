package gitutils

import (
	"os"
	"path/filepath"
	"strings"
)

var osStat = os.Stat

// RepositoryRoot returns the working tree root containing path. A `.git` directory
// marks a regular clone and a `.git` file starting with "gitdir:" marks a linked
// worktree or a submodule.
func RepositoryRoot(path string) (string, bool) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if info, err := osStat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		if isGitMarker(filepath.Join(dir, ".git")) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

var osReadFile = os.ReadFile

func isGitMarker(gitPath string) bool {
	info, err := osStat(gitPath)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return true
	}
	data, err := osReadFile(gitPath)
	return err == nil && strings.HasPrefix(string(data), "gitdir:")
}
