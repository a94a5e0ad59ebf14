package gitutils

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// DirStatus is the git state of a directory's direct children.
type DirStatus struct {
	Branch string
	// Entries maps a child name to a one-letter status code such as "M", "A", "D" or "?".
	// Clean children are absent.
	Entries map[string]string
}

var openRepo = func(dir string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
}

var worktreeStatusOf = func(wt *git.Worktree) (git.Status, error) {
	return wt.Status()
}

// GetDirStatus reports the git status of the children of dir. It returns nil
// without error when dir is not inside a repository.
func GetDirStatus(dir string) (*DirStatus, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	repo, err := openRepo(absDir)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, nil
		}
		return nil, err
	}
	res := &DirStatus{Branch: branchName(repo), Entries: make(map[string]string)}

	wt, err := repo.Worktree()
	if err != nil {
		return res, nil // bare repository
	}
	status, err := worktreeStatusOf(wt)
	if err != nil {
		return res, err
	}
	rel, err := filepath.Rel(wt.Filesystem.Root(), absDir)
	if err != nil {
		return res, err
	}
	prefix := ""
	if rel = filepath.ToSlash(rel); rel != "." {
		prefix = rel + "/"
	}
	for file, fileStatus := range status {
		if !strings.HasPrefix(file, prefix) {
			continue
		}
		code := statusCode(fileStatus)
		if code == "" {
			continue
		}
		child, _, nested := strings.Cut(strings.TrimPrefix(file, prefix), "/")
		if existing, ok := res.Entries[child]; ok && existing != code {
			if nested {
				code = "M"
			} else {
				code = existing
			}
		}
		res.Entries[child] = code
	}
	return res, nil
}

func statusCode(s *git.FileStatus) string {
	switch {
	case s.Worktree == git.Untracked:
		return "?"
	case s.Staging != git.Unmodified:
		return string(s.Staging)
	case s.Worktree != git.Unmodified:
		return string(s.Worktree)
	default:
		return ""
	}
}

func branchName(repo *git.Repository) string {
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "master"
		}
		return "unknown"
	}
	if head.Name().IsBranch() {
		return head.Name().Short()
	}
	return shortHash(head.Hash().String())
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}

// Summary renders the branch and the number of changed children for a preview header.
func (s *DirStatus) Summary() string {
	if s == nil {
		return ""
	}
	if len(s.Entries) == 0 {
		return s.Branch
	}
	return fmt.Sprintf("%s ƒ%d", s.Branch, len(s.Entries))
}
