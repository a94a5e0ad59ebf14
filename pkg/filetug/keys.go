package filetug

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/filetug/tugfm/pkg/settings"
	"github.com/filetug/tugfm/pkg/tasks"
)

func (nav *Navigator) handleInput(event *tcell.EventKey) *tcell.EventKey {
	switch nav.mode {
	case modeCreate:
		return event
	case modeConfirmDelete:
		nav.answerDelete(event.Key() == tcell.KeyRune && (event.Rune() == 'y' || event.Rune() == 'Y'))
		return nil
	}
	if !nav.files.HasFocus() {
		if event.Key() == tcell.KeyTab {
			nav.cycleFocus()
			return nil
		}
		return event
	}
	nav.message = ""
	if nav.handleKey(event) {
		return nil
	}
	return event
}

// handleKey runs the action bound to event and reports whether there was one.
func (nav *Navigator) handleKey(event *tcell.EventKey) bool {
	b := nav.browser
	var err error
	switch event.Key() {
	case tcell.KeyUp:
		b.MoveUp()
	case tcell.KeyDown:
		b.MoveDown()
	case tcell.KeyEnter, tcell.KeyRight:
		err = b.Enter()
	case tcell.KeyBackspace, tcell.KeyBackspace2, tcell.KeyLeft:
		err = b.Leave()
	case tcell.KeyTab:
		b.NextTab()
	case tcell.KeyBacktab:
		b.PrevTab()
	case tcell.KeyRune:
		return nav.handleRune(event.Rune())
	default:
		return false
	}
	nav.setError(err)
	nav.refresh()
	return true
}

func (nav *Navigator) handleRune(r rune) bool {
	b := nav.browser
	var err error
	switch r {
	case 'k':
		b.MoveUp()
	case 'j':
		b.MoveDown()
	case 'l':
		err = b.Enter()
	case 'h':
		err = b.Leave()
	case 'y':
		if b.Yank() {
			nav.message = "yanked " + b.Clipboard.Paths[0]
		}
	case 'x':
		if b.Cut() {
			nav.message = "cut " + b.Clipboard.Paths[0]
		}
	case 'p':
		var ids []tasks.ID
		if ids, err = b.Paste(); err == nil {
			nav.message = fmt.Sprintf("queued %d task(s)", len(ids))
			nav.deps.Manager.ProcessPendingTasks()
		}
	case 'd':
		if prompt, ok := b.RequestDelete(); ok {
			nav.mode = modeConfirmDelete
			nav.message = prompt
		}
	case 'n':
		nav.startCreate(false)
	case 'N':
		nav.startCreate(true)
	case '.':
		err = b.ToggleHidden()
	case 't':
		err = b.NewTab()
	case 'w':
		b.CloseTab()
	case 'b':
		err = nav.addBookmark()
	case 'g':
		nav.focusLeft(nav.places)
	case 'B':
		nav.focusLeft(nav.bookmarks)
	case 'r':
		b.RefreshAffected([]string{b.CurrentDir()})
		nav.message = ""
	case 'q':
		nav.app.Stop()
		return true
	default:
		return false
	}
	nav.setError(err)
	nav.refresh()
	return true
}

func (nav *Navigator) answerDelete(confirmed bool) {
	nav.mode = modeNormal
	if !confirmed {
		nav.browser.CancelDelete()
		nav.message = "delete cancelled"
		nav.renderStatus()
		return
	}
	if _, ok := nav.browser.ConfirmDelete(); ok {
		nav.deps.Manager.ProcessPendingTasks()
		nav.message = "delete queued"
	}
	nav.renderStatus()
	nav.renderTasks()
}

func (nav *Navigator) startCreate(isDir bool) {
	nav.mode = modeCreate
	nav.createDir = isDir
	label := "New file: "
	if isDir {
		label = "New directory: "
	}
	nav.input.SetLabel(label).SetText("")
	nav.bottom.SwitchToPage("input")
	nav.app.SetFocus(nav.input)
}

func (nav *Navigator) finishInput(key tcell.Key) {
	name := nav.input.GetText()
	nav.mode = modeNormal
	nav.bottom.SwitchToPage("status")
	nav.app.SetFocus(nav.files)
	if key != tcell.KeyEnter {
		nav.message = ""
		nav.renderStatus()
		return
	}
	_, err := nav.browser.CreateItem(name, nav.createDir)
	if err == nil {
		nav.deps.Manager.ProcessPendingTasks()
		nav.message = "create queued"
	}
	nav.setError(err)
	nav.renderStatus()
	nav.renderTasks()
}

func (nav *Navigator) addBookmark() error {
	dir := nav.browser.CurrentDir()
	if !nav.deps.Settings.AddBookmark("", dir) {
		nav.message = "already bookmarked"
		return nil
	}
	nav.renderBookmarks()
	nav.message = "bookmarked " + dir
	if nav.deps.SettingsPath == "" {
		return nil
	}
	return settings.Save(nav.deps.SettingsPath, nav.deps.Settings)
}

func (nav *Navigator) setError(err error) {
	if err == nil {
		return
	}
	nav.deps.Logger.Warningf("%v", err)
	nav.message = "[red]" + tview.Escape(err.Error()) + "[-]"
}
