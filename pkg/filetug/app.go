package filetug

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// application is the part of tview.Application the navigator drives.
type application interface {
	QueueUpdateDraw(f func())
	SetFocus(p tview.Primitive)
	SetAfterDrawFunc(handler func(screen tcell.Screen))
	Stop()
}

type ftApp struct {
	*tview.Application
}

var _ application = ftApp{}

func (a ftApp) QueueUpdateDraw(f func()) {
	_ = a.Application.QueueUpdateDraw(f)
}

func (a ftApp) SetFocus(p tview.Primitive) {
	_ = a.Application.SetFocus(p)
}

func (a ftApp) SetAfterDrawFunc(handler func(screen tcell.Screen)) {
	_ = a.Application.SetAfterDrawFunc(handler)
}

// SetupApp creates the navigator and makes it the root of app.
func SetupApp(app *tview.Application, startDir string, deps Deps) (*Navigator, error) {
	nav, err := NewNavigator(ftApp{Application: app}, startDir, deps)
	if err != nil {
		return nil, err
	}
	app.SetRoot(nav, true)
	app.SetFocus(nav.files)
	app.EnableMouse(false)
	return nav, nil
}
