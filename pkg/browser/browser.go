// Package browser holds the navigation state of the file browser: tabs, the clipboard
// and pending actions. Mutating actions are turned into tasks.
package browser

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/filetug/tugfm/internal/log"
	"github.com/filetug/tugfm/pkg/files"
	"github.com/filetug/tugfm/pkg/preview"
	"github.com/filetug/tugfm/pkg/tasks"
)

const MaxTabs = 10

var (
	ErrTooManyTabs    = errors.New("too many tabs")
	ErrInvalidName    = errors.New("invalid name")
	ErrNothingToPaste = errors.New("clipboard is empty")
)

// TaskAdder accepts filesystem tasks. Implemented by tasks.Manager.
type TaskAdder interface {
	AddTask(kind tasks.Kind, description string) tasks.ID
}

var _ TaskAdder = (*tasks.Manager)(nil)

type Option func(*Browser)

func WithShowHidden(showHidden bool) Option {
	return func(b *Browser) {
		b.showHidden = showHidden
	}
}

func WithLogger(logger log.Logger) Option {
	return func(b *Browser) {
		b.logger = logger
	}
}

type Browser struct {
	store      files.Store
	tasks      TaskAdder
	newSession func() *preview.Session
	logger     log.Logger

	tabs       []*Tab
	active     int
	showHidden bool

	Clipboard     Clipboard
	pendingDelete string

	previewWidth  int
	previewHeight int
}

// New opens one tab at dir. Listings are read from store and newSession creates
// the preview session of each tab.
func New(dir string, store files.Store, taskAdder TaskAdder, newSession func() *preview.Session, options ...Option) (*Browser, error) {
	b := &Browser{
		store:         store,
		tasks:         taskAdder,
		newSession:    newSession,
		logger:        log.Noop,
		previewWidth:  1,
		previewHeight: 1,
	}
	for _, option := range options {
		option(b)
	}
	tab := NewTab(store, newSession())
	b.tabs = []*Tab{tab}
	err := tab.SetDir(dir, b.showHidden)
	b.updatePreview()
	return b, err
}

func (b *Browser) ActiveTab() *Tab {
	return b.tabs[b.active]
}

func (b *Browser) ActiveIndex() int {
	return b.active
}

func (b *Browser) Tabs() []*Tab {
	return slices.Clone(b.tabs)
}

func (b *Browser) ShowHidden() bool {
	return b.showHidden
}

func (b *Browser) CurrentDir() string {
	return b.ActiveTab().CurrentDir
}

// SetPreviewSize sets the pixel size requested for image previews.
func (b *Browser) SetPreviewSize(width, height int) {
	b.previewWidth, b.previewHeight = max(width, 1), max(height, 1)
}

func (b *Browser) MoveUp() {
	if b.ActiveTab().MoveUp() {
		b.updatePreview()
	}
}

func (b *Browser) MoveDown() {
	if b.ActiveTab().MoveDown() {
		b.updatePreview()
	}
}

func (b *Browser) Enter() error {
	entered, err := b.ActiveTab().Enter(b.showHidden)
	if entered {
		b.updatePreview()
	}
	return err
}

func (b *Browser) Leave() error {
	left, err := b.ActiveTab().Leave(b.showHidden)
	if left {
		b.updatePreview()
	}
	return err
}

// GoTo opens dir in the active tab, e.g. from a bookmark.
func (b *Browser) GoTo(dir string) error {
	err := b.ActiveTab().SetDir(dir, b.showHidden)
	b.updatePreview()
	return err
}

func (b *Browser) ToggleHidden() error {
	b.showHidden = !b.showHidden
	var errs []error
	for _, tab := range b.tabs {
		errs = append(errs, tab.Reload(b.showHidden))
	}
	b.updatePreview()
	return errors.Join(errs...)
}

// NewTab opens a tab on the current directory and activates it.
func (b *Browser) NewTab() error {
	if len(b.tabs) >= MaxTabs {
		return ErrTooManyTabs
	}
	b.ActiveTab().Session.Hide()
	tab := NewTab(b.store, b.newSession())
	err := tab.SetDir(b.CurrentDir(), b.showHidden)
	b.tabs = append(b.tabs, tab)
	b.active = len(b.tabs) - 1
	b.updatePreview()
	return err
}

// CloseTab closes the active tab unless it is the last one.
func (b *Browser) CloseTab() bool {
	if len(b.tabs) <= 1 {
		return false
	}
	b.ActiveTab().Session.Deselect()
	b.tabs = slices.Delete(b.tabs, b.active, b.active+1)
	if b.active >= len(b.tabs) {
		b.active = len(b.tabs) - 1
	}
	return true
}

func (b *Browser) NextTab() {
	b.switchTab((b.active + 1) % len(b.tabs))
}

func (b *Browser) PrevTab() {
	b.switchTab((b.active + len(b.tabs) - 1) % len(b.tabs))
}

func (b *Browser) switchTab(i int) {
	if i == b.active {
		return
	}
	b.ActiveTab().Session.Hide()
	b.active = i
}

func (b *Browser) Yank() bool {
	path, ok := b.ActiveTab().SelectedPath()
	if ok {
		b.Clipboard.Yank(path)
	}
	return ok
}

func (b *Browser) Cut() bool {
	path, ok := b.ActiveTab().SelectedPath()
	if ok {
		b.Clipboard.Cut(path)
	}
	return ok
}

// Paste queues a copy or move of every clipboard path into the current directory.
// A cut clipboard is cleared afterwards.
func (b *Browser) Paste() ([]tasks.ID, error) {
	if b.Clipboard.Empty() {
		return nil, ErrNothingToPaste
	}
	dest := b.CurrentDir()
	ids := make([]tasks.ID, 0, len(b.Clipboard.Paths))
	for _, src := range b.Clipboard.Paths {
		name := filepath.Base(src)
		target := filepath.Join(dest, name)
		var kind tasks.Kind
		verb := "Copy"
		if b.Clipboard.Mode == ClipboardMove {
			kind, verb = tasks.Move{Src: src, Dest: target}, "Move"
		} else {
			kind = tasks.Copy{Src: src, Dest: target}
		}
		ids = append(ids, b.tasks.AddTask(kind, fmt.Sprintf("%s %s -> %s", verb, name, dest)))
	}
	if b.Clipboard.Mode == ClipboardMove {
		b.Clipboard.Clear()
	}
	return ids, nil
}

// RequestDelete remembers the selected path and returns the confirmation prompt.
func (b *Browser) RequestDelete() (string, bool) {
	path, ok := b.ActiveTab().SelectedPath()
	if !ok {
		return "", false
	}
	b.pendingDelete = path
	return fmt.Sprintf("Delete %s? (y/n)", filepath.Base(path)), true
}

func (b *Browser) PendingDelete() string {
	return b.pendingDelete
}

// ConfirmDelete queues the delete requested by RequestDelete.
func (b *Browser) ConfirmDelete() (tasks.ID, bool) {
	path := b.pendingDelete
	b.pendingDelete = ""
	if path == "" {
		return "", false
	}
	return b.tasks.AddTask(tasks.Delete{Path: path}, "Delete "+filepath.Base(path)), true
}

func (b *Browser) CancelDelete() {
	b.pendingDelete = ""
}

// CreateItem queues creation of a file or directory named name in the current directory.
func (b *Browser) CreateItem(name string, isDir bool) (tasks.ID, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, filepath.Separator) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	path := filepath.Join(b.CurrentDir(), name)
	var kind tasks.Kind = tasks.CreateFile{Path: path}
	if isDir {
		kind = tasks.CreateDirectory{Path: path}
	}
	return b.tasks.AddTask(kind, "Create "+path), nil
}

// RefreshAffected reloads every tab showing one of paths or their parent.
// It reports whether the active tab was reloaded.
func (b *Browser) RefreshAffected(paths []string) bool {
	activeReloaded := false
	for i, tab := range b.tabs {
		if !affects(tab.CurrentDir, paths) {
			continue
		}
		if err := tab.Reload(b.showHidden); err != nil {
			b.logger.WithValues(log.Kv{"dir": tab.CurrentDir}).Warningf("refresh failed: %v", err)
		}
		if i == b.active {
			activeReloaded = true
		}
	}
	if activeReloaded {
		b.updatePreview()
	}
	return activeReloaded
}

func affects(dir string, paths []string) bool {
	for _, p := range paths {
		p = filepath.Clean(p)
		if p == dir || filepath.Dir(p) == dir {
			return true
		}
	}
	return false
}

// ClearPreview deselects the active tab's preview, e.g. when focus leaves the listing.
func (b *Browser) ClearPreview() {
	b.ActiveTab().Session.Deselect()
}

// RefreshPreview re-runs the selection-change protocol for the active tab.
func (b *Browser) RefreshPreview() {
	b.updatePreview()
}

func (b *Browser) updatePreview() {
	tab := b.ActiveTab()
	path, ok := tab.SelectedPath()
	if !ok {
		tab.Session.Deselect()
		return
	}
	entry, _ := tab.Selected()
	if err := tab.Session.Select(path, entry.IsDir, b.previewWidth, b.previewHeight); err != nil {
		b.logger.WithValues(log.Kv{"path": path}).Errorf("preview failed: %v", err)
	}
}
