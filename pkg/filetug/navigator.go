// Package filetug is the terminal UI: a places, bookmarks and mounts column, the file list, the preview
// pane and the task list, driven by a single tview event loop.
package filetug

import (
	"errors"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/filetug/tugfm/internal/log"
	"github.com/filetug/tugfm/pkg/browser"
	"github.com/filetug/tugfm/pkg/files"
	"github.com/filetug/tugfm/pkg/graphics"
	"github.com/filetug/tugfm/pkg/preview"
	"github.com/filetug/tugfm/pkg/settings"
	"github.com/filetug/tugfm/pkg/sneatv"
	"github.com/filetug/tugfm/pkg/tasks"
)

// Approximate terminal cell size in pixels, used to size image previews.
const (
	cellWidthPx  = 10
	cellHeightPx = 20
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeConfirmDelete
	modeCreate
)

// Deps are the collaborators of the navigator. Store, Manager and Controller are required.
type Deps struct {
	Settings     *settings.Settings
	SettingsPath string
	Store        files.Store
	Manager      *tasks.Manager
	Controller   *preview.Controller
	Backend      graphics.Backend
	// Out receives graphics escape sequences. Defaults to os.Stdout.
	Out    io.Writer
	Logger log.Logger
}

type Navigator struct {
	*tview.Flex

	app  application
	deps Deps

	browser *browser.Browser

	tabBar    *sneatv.TabBar
	places    *tview.List
	bookmarks *tview.List
	mounts    *tview.List
	files     *tview.Table
	preview   *tview.TextView
	tasksView *tview.TextView
	status    *tview.TextView
	input     *tview.InputField
	bottom    *tview.Pages

	mode      inputMode
	createDir bool
	message   string
}

// NewNavigator builds the layout and opens startDir in the first tab.
func NewNavigator(app application, startDir string, deps Deps) (*Navigator, error) {
	if deps.Store == nil || deps.Manager == nil || deps.Controller == nil {
		return nil, errors.New("navigator requires a store, a task manager and a preview controller")
	}
	if deps.Settings == nil {
		deps.Settings = settings.Default()
	}
	if deps.Backend == nil {
		deps.Backend = graphics.NopBackend{}
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Logger == nil {
		deps.Logger = log.Noop
	}
	nav := &Navigator{
		app:       app,
		deps:      deps,
		tabBar:    sneatv.NewTabBar(sneatv.UnderlineTabsStyle, " "),
		places:    tview.NewList().ShowSecondaryText(false),
		bookmarks: tview.NewList().ShowSecondaryText(false),
		mounts:    tview.NewList().ShowSecondaryText(false),
		files:     tview.NewTable().SetSelectable(true, false),
		preview:   tview.NewTextView().SetDynamicColors(true).SetWrap(false),
		tasksView: tview.NewTextView().SetDynamicColors(true),
		status:    tview.NewTextView().SetDynamicColors(true),
		input:     tview.NewInputField(),
		bottom:    tview.NewPages(),
	}
	nav.createLayout()

	var err error
	nav.browser, err = browser.New(startDir, deps.Store, deps.Manager, nav.newSession,
		browser.WithShowHidden(deps.Settings.ShowHidden),
		browser.WithLogger(deps.Logger))
	if err != nil {
		nav.message = err.Error()
	}
	app.SetAfterDrawFunc(nav.afterDraw)
	nav.renderPlaces()
	nav.renderBookmarks()
	nav.refresh()
	return nav, nil
}

func (nav *Navigator) newSession() *preview.Session {
	return preview.NewSession(nav.deps.Controller, nav.deps.Backend, nav.deps.Out,
		preview.WithProgressive(nav.deps.Settings.Preview.Progressive),
		preview.WithDirReader(nav.deps.Store),
		preview.WithShowHidden(func() bool { return nav.browser != nil && nav.browser.ShowHidden() }),
		preview.WithSessionLogger(nav.deps.Logger),
		preview.WithNotify(func() {
			nav.app.QueueUpdateDraw(nav.renderPreview)
		}),
	)
}

func (nav *Navigator) createLayout() {
	nav.places.SetTitle("Places")
	nav.bookmarks.SetTitle("Bookmarks")
	nav.mounts.SetTitle("Mounts")
	for _, list := range nav.leftLists() {
		list.SetDoneFunc(nav.focusFiles)
	}
	nav.files.SetTitle("Files")
	nav.preview.SetTitle("Preview")
	nav.tasksView.SetTitle("Tasks")

	nav.input.SetDoneFunc(nav.finishInput)
	nav.bottom.
		AddPage("status", nav.status, true, true).
		AddPage("input", nav.input, true, false)

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(sneatv.NewBoxed(nav.places, sneatv.WithLeftBorder(0)), 0, 1, false).
		AddItem(sneatv.NewBoxed(nav.bookmarks, sneatv.WithLeftBorder(0)), 0, 1, false).
		AddItem(sneatv.NewBoxed(nav.mounts, sneatv.WithLeftBorder(0)), 0, 1, false)
	columns := tview.NewFlex().
		AddItem(left, 0, 2, false).
		AddItem(sneatv.NewBoxed(nav.files, sneatv.WithLeftBorder(0)), 0, 4, true).
		AddItem(sneatv.NewBoxed(nav.preview, sneatv.WithLeftBorder(0), sneatv.WithRightBorder(0)), 0, 5, false)

	nav.Flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nav.tabBar, 1, 0, false).
		AddItem(columns, 0, 1, true).
		AddItem(sneatv.NewBoxed(nav.tasksView, sneatv.WithLeftBorder(0), sneatv.WithRightBorder(0)), 6, 0, false).
		AddItem(nav.bottom, 1, 0, false)
	nav.SetInputCapture(nav.handleInput)
}

// leftLists are the quick-navigation lists in focus cycling order.
func (nav *Navigator) leftLists() []*tview.List {
	return []*tview.List{nav.places, nav.bookmarks, nav.mounts}
}

// focusLeft moves focus off the listing, which leaves nothing selected to preview.
func (nav *Navigator) focusLeft(list *tview.List) {
	if nav.files.HasFocus() {
		nav.browser.ClearPreview()
		nav.renderPreview()
	}
	nav.app.SetFocus(list)
}

// cycleFocus moves from one left list to the next and from the last one back to the listing.
func (nav *Navigator) cycleFocus() {
	lists := nav.leftLists()
	for i, list := range lists {
		if !list.HasFocus() {
			continue
		}
		if i == len(lists)-1 {
			nav.focusFiles()
		} else {
			nav.app.SetFocus(lists[i+1])
		}
		return
	}
}

func (nav *Navigator) focusFiles() {
	nav.app.SetFocus(nav.files)
	nav.browser.RefreshPreview()
	nav.renderPreview()
}

func (nav *Navigator) Browser() *browser.Browser {
	return nav.browser
}

// afterDraw paints the active preview image over the preview pane once tview has flushed the screen.
func (nav *Navigator) afterDraw(tcell.Screen) {
	if nav.browser == nil {
		return
	}
	x, y, width, height := nav.preview.GetInnerRect()
	nav.browser.SetPreviewSize(width*cellWidthPx, height*cellHeightPx)
	session := nav.browser.ActiveTab().Session
	if err := session.Render(graphics.Area{X: x, Y: y, Width: width, Height: height}); err != nil {
		nav.deps.Logger.Warningf("draw preview image: %v", err)
	}
}
