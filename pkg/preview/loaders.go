package preview

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/filetug/tugfm/pkg/gitutils"
)

const (
	textPreviewLines   = 100
	textPreviewLineMax = 64 * 1024
)

var errBinaryFile = errors.New("binary file")

var (
	osOpen       = os.Open
	getDirStatus = gitutils.GetDirStatus
)

// DirReader lists a directory. files.Store implements it.
type DirReader interface {
	ReadDir(ctx context.Context, name string) ([]os.DirEntry, error)
}

// LoadText reads the first lines of a text file.
func LoadText(path string) (TextState, error) {
	f, err := osOpen(path)
	if err != nil {
		return TextState{}, err
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 4096), textPreviewLineMax)
	var sb strings.Builder
	lines := 0
	for lines < textPreviewLines && scanner.Scan() {
		line := scanner.Bytes()
		if !utf8.Valid(line) || bytes.IndexByte(line, 0) >= 0 {
			return TextState{}, errBinaryFile
		}
		sb.Write(line)
		sb.WriteByte('\n')
		lines++
	}
	if err = scanner.Err(); err != nil {
		return TextState{}, err
	}
	return TextState{Path: path, Content: sb.String(), Truncated: lines == textPreviewLines && scanner.Scan()}, nil
}

// LoadDirectory lists dir with directories first, each group sorted by name.
// Hidden entries are skipped unless showHidden is set.
func LoadDirectory(ctx context.Context, reader DirReader, dir string, showHidden bool) (DirectoryState, error) {
	dirEntries, err := reader.ReadDir(ctx, dir)
	if err != nil {
		return DirectoryState{}, err
	}
	state := DirectoryState{Path: dir, Entries: make([]DirEntry, 0, len(dirEntries))}
	for _, de := range dirEntries {
		name := de.Name()
		if !showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		entry := DirEntry{Name: name, IsDir: de.IsDir()}
		if info, infoErr := de.Info(); infoErr == nil && info != nil && !entry.IsDir {
			entry.Size = info.Size()
		}
		state.Entries = append(state.Entries, entry)
	}
	SortEntries(state.Entries)

	if _, inRepo := gitutils.RepositoryRoot(dir); !inRepo {
		return state, nil
	}
	status, err := getDirStatus(filepath.Clean(dir))
	if err != nil || status == nil {
		return state, nil
	}
	state.Branch = status.Summary()
	for i := range state.Entries {
		state.Entries[i].Git = status.Entries[state.Entries[i].Name]
	}
	return state, nil
}

func SortEntries(entries []DirEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})
}
