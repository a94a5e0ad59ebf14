package filetug

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/filetug/tugfm/pkg/chroma2tcell"
	"github.com/filetug/tugfm/pkg/fsutils"
	"github.com/filetug/tugfm/pkg/places"
	"github.com/filetug/tugfm/pkg/preview"
	"github.com/filetug/tugfm/pkg/tasks"
)

func (nav *Navigator) refresh() {
	nav.renderTabs()
	nav.renderFiles()
	nav.renderPreview()
	nav.renderTasks()
	nav.renderStatus()
}

func (nav *Navigator) renderTabs() {
	tabs := nav.browser.Tabs()
	titles := make([]string, len(tabs))
	for i, tab := range tabs {
		titles[i] = filepath.Base(tab.CurrentDir)
	}
	nav.tabBar.SetTabs(titles, nav.browser.ActiveIndex())
}

func (nav *Navigator) renderFiles() {
	tab := nav.browser.ActiveTab()
	nav.files.Clear()
	title := fsutils.CollapseHome(tab.CurrentDir)
	if tab.Branch != "" {
		title += " [" + tab.Branch + "]"
	}
	nav.files.SetTitle(title)
	for row, entry := range tab.Entries {
		name, color := entry.Name, tcell.ColorWhite
		size := fsutils.ShortSize(entry.Size)
		if entry.IsDir {
			name, color, size = "📁"+name, tcell.ColorLightBlue, ""
		} else {
			name = "📄" + name
		}
		nav.files.SetCell(row, 0, tview.NewTableCell(entry.Git).SetTextColor(tcell.ColorYellow))
		nav.files.SetCell(row, 1, tview.NewTableCell(tview.Escape(name)).SetTextColor(color).SetExpansion(1))
		nav.files.SetCell(row, 2, tview.NewTableCell(size).SetAlign(tview.AlignRight))
	}
	if len(tab.Entries) > 0 {
		nav.files.Select(tab.Cursor, 0)
	}
}

func (nav *Navigator) renderPreview() {
	if nav.browser == nil {
		return
	}
	nav.preview.SetText(previewText(nav.browser.ActiveTab().Session.State()))
	nav.preview.ScrollToBeginning()
}

func previewText(state preview.State) string {
	switch s := state.(type) {
	case preview.LoadingState:
		return "[gray]Loading " + tview.Escape(filepath.Base(s.Path)) + "...[-]"
	case preview.TextState:
		text, _ := chroma2tcell.HighlightFile(s.Path, s.Content)
		if s.Truncated {
			text += "\n[gray]...[-]"
		}
		return text
	case preview.DirectoryState:
		var sb strings.Builder
		if s.Branch != "" {
			sb.WriteString("[yellow]" + tview.Escape(s.Branch) + "[-]\n")
		}
		for _, entry := range s.Entries {
			if entry.Git != "" {
				sb.WriteString("[yellow]" + entry.Git + "[-] ")
			} else {
				sb.WriteString("  ")
			}
			sb.WriteString(tview.Escape(entry.Name))
			if entry.IsDir {
				sb.WriteString("/")
			}
			sb.WriteString("\n")
		}
		return sb.String()
	case preview.ImageState:
		// The picture itself is drawn by the graphics backend after the screen is flushed.
		return ""
	case preview.ErrorState:
		return "[red]" + tview.Escape(s.Message) + "[-]"
	default:
		return ""
	}
}

func (nav *Navigator) renderTasks() {
	var sb strings.Builder
	for _, task := range nav.deps.Manager.GetTasks() {
		color := "white"
		switch task.Status.State {
		case tasks.StateCompleted:
			color = "green"
		case tasks.StateFailed:
			color = "red"
		case tasks.StateInProgress:
			color = "yellow"
		}
		_, _ = fmt.Fprintf(&sb, "[%s]%-12s[-] %s\n", color, tview.Escape(task.Status.String()), tview.Escape(task.Description))
	}
	nav.tasksView.SetText(sb.String())
	nav.tasksView.ScrollToEnd()
}

func (nav *Navigator) renderStatus() {
	if nav.message != "" {
		nav.status.SetText(nav.message)
		return
	}
	clipboard := ""
	if !nav.browser.Clipboard.Empty() {
		clipboard = fmt.Sprintf(" | clipboard: %d", len(nav.browser.Clipboard.Paths))
	}
	nav.status.SetText(fmt.Sprintf("[gray]%s:%s%s | q quit, y/x/p copy/cut/paste, d delete, n/N new[-]",
		tview.Escape(nav.deps.Store.RootTitle()), tview.Escape(nav.browser.CurrentDir()), clipboard))
}

var (
	xdgDirs = places.XDGDirs
	mounts  = places.Mounts
)

func (nav *Navigator) renderPlaces() {
	nav.fillList(nav.places, xdgDirs())
	found, err := mounts()
	if err != nil {
		nav.deps.Logger.Warningf("%v", err)
	}
	nav.fillList(nav.mounts, found)
}

func (nav *Navigator) renderBookmarks() {
	items := make([]places.Place, len(nav.deps.Settings.Bookmarks))
	for i, bookmark := range nav.deps.Settings.Bookmarks {
		items[i] = places.Place{Name: bookmark.Name, Path: bookmark.Dir()}
	}
	nav.fillList(nav.bookmarks, items)
}

func (nav *Navigator) fillList(list *tview.List, items []places.Place) {
	list.Clear()
	for _, item := range items {
		dir := item.Path
		list.AddItem(tview.Escape(item.Name), dir, 0, func() {
			nav.openPlace(dir)
		})
	}
}

// openPlace shows dir in the active tab and returns focus to the listing.
func (nav *Navigator) openPlace(dir string) {
	nav.message = ""
	nav.setError(nav.browser.GoTo(dir))
	nav.app.SetFocus(nav.files)
	nav.refresh()
}
