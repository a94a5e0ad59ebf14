package browser

import (
	"context"
	"path/filepath"

	"github.com/filetug/tugfm/pkg/preview"
)

// Tab is one directory listing with its own cursor and preview.
type Tab struct {
	CurrentDir string
	Entries    []preview.DirEntry
	Branch     string
	Cursor     int
	Session    *preview.Session

	reader preview.DirReader
}

func NewTab(reader preview.DirReader, session *preview.Session) *Tab {
	return &Tab{reader: reader, Session: session}
}

var loadDirectory = preview.LoadDirectory

// Reload re-reads the directory. The cursor stays on the same name when it still exists.
// On error the listing is emptied.
func (t *Tab) Reload(showHidden bool) error {
	selected, _ := t.Selected()
	state, err := loadDirectory(context.Background(), t.reader, t.CurrentDir, showHidden)
	if err != nil {
		t.Entries, t.Branch, t.Cursor = nil, "", 0
		return err
	}
	t.Entries, t.Branch = state.Entries, state.Branch
	t.Cursor = 0
	t.selectName(selected.Name)
	return nil
}

// SetDir switches to dir and puts the cursor on the first entry.
func (t *Tab) SetDir(dir string, showHidden bool) error {
	t.CurrentDir = filepath.Clean(dir)
	t.Entries, t.Cursor = nil, 0
	return t.Reload(showHidden)
}

func (t *Tab) MoveUp() bool {
	if t.Cursor == 0 {
		return false
	}
	t.Cursor--
	return true
}

func (t *Tab) MoveDown() bool {
	if t.Cursor >= len(t.Entries)-1 {
		return false
	}
	t.Cursor++
	return true
}

// Enter descends into the selected directory. It reports false for files.
func (t *Tab) Enter(showHidden bool) (bool, error) {
	entry, ok := t.Selected()
	if !ok || !entry.IsDir {
		return false, nil
	}
	return true, t.SetDir(filepath.Join(t.CurrentDir, entry.Name), showHidden)
}

// Leave goes to the parent directory with the cursor on the directory just left.
func (t *Tab) Leave(showHidden bool) (bool, error) {
	parent := filepath.Dir(t.CurrentDir)
	if parent == t.CurrentDir {
		return false, nil
	}
	left := filepath.Base(t.CurrentDir)
	err := t.SetDir(parent, showHidden)
	t.selectName(left)
	return true, err
}

func (t *Tab) Selected() (preview.DirEntry, bool) {
	if t.Cursor < 0 || t.Cursor >= len(t.Entries) {
		return preview.DirEntry{}, false
	}
	return t.Entries[t.Cursor], true
}

func (t *Tab) SelectedPath() (string, bool) {
	entry, ok := t.Selected()
	if !ok {
		return "", false
	}
	return filepath.Join(t.CurrentDir, entry.Name), true
}

func (t *Tab) selectName(name string) {
	if name == "" {
		return
	}
	for i, e := range t.Entries {
		if e.Name == name {
			t.Cursor = i
			return
		}
	}
}
