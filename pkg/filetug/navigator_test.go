package filetug

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/filetug/tugfm/pkg/files/osfile"
	"github.com/filetug/tugfm/pkg/places"
	"github.com/filetug/tugfm/pkg/preview"
	"github.com/filetug/tugfm/pkg/raster"
	"github.com/filetug/tugfm/pkg/settings"
	"github.com/filetug/tugfm/pkg/sneatv/ttestutils"
	"github.com/filetug/tugfm/pkg/tasks"
)

// fakeApp queues UI updates until the test drains them on its own goroutine.
type fakeApp struct {
	mu        sync.Mutex
	queued    []func()
	focused   tview.Primitive
	afterDraw func(tcell.Screen)
	stopped   bool
}

func (a *fakeApp) QueueUpdateDraw(f func()) {
	a.mu.Lock()
	a.queued = append(a.queued, f)
	a.mu.Unlock()
}

func (a *fakeApp) SetFocus(p tview.Primitive) {
	if a.focused != nil {
		a.focused.Blur()
	}
	p.Focus(func(tview.Primitive) {})
	a.focused = p
}

func (a *fakeApp) SetAfterDrawFunc(handler func(tcell.Screen)) {
	a.afterDraw = handler
}

func (a *fakeApp) Stop() {
	a.stopped = true
}

func (a *fakeApp) drain() {
	for {
		a.mu.Lock()
		queued := a.queued
		a.queued = nil
		a.mu.Unlock()
		if len(queued) == 0 {
			return
		}
		for _, f := range queued {
			f()
		}
	}
}

type testEnv struct {
	dir        string
	app        *fakeApp
	nav        *Navigator
	manager    *tasks.Manager
	controller *preview.Controller
	deps       Deps
}

func newTestEnv(t *testing.T, dir string) *testEnv {
	t.Helper()
	store := osfile.NewStore("/")
	manager := tasks.NewManager(store)
	controller := preview.NewController(raster.RasterizerFunc(func(_ string, width, height int) (*raster.Image, error) {
		return raster.NewImage(make([]byte, width*height*4), width, height)
	}))
	t.Cleanup(controller.Close)
	env := &testEnv{
		dir:        dir,
		app:        &fakeApp{},
		manager:    manager,
		controller: controller,
		deps: Deps{
			Settings:     settings.Default(),
			SettingsPath: filepath.Join(t.TempDir(), "tugfm.yaml"),
			Store:        store,
			Manager:      manager,
			Controller:   controller,
			Out:          io.Discard,
		},
	}
	nav, err := NewNavigator(env.app, dir, env.deps)
	assert.NoError(t, err)
	env.nav = nav
	env.app.SetFocus(nav.files)
	env.settle()
	return env
}

// settle waits for background preview loads and applies the resulting UI updates.
func (env *testEnv) settle() {
	for _, tab := range env.nav.Browser().Tabs() {
		tab.Session.Wait()
	}
	env.app.drain()
}

// finishTasks runs queued tasks to completion and applies their results.
func (env *testEnv) finishTasks() {
	env.manager.ProcessPendingTasks()
	env.manager.Wait()
	env.nav.pollTasks()
	env.settle()
}

func (env *testEnv) press(key tcell.Key, r rune) {
	env.nav.handleInput(tcell.NewEventKey(key, r, tcell.ModNone))
	env.settle()
}

func (env *testEnv) typeRune(r rune) {
	env.press(tcell.KeyRune, r)
}

func newTestDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	assert.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello\nworld\n"), 0o644))
	return dir
}

func TestNewNavigator(t *testing.T) {
	t.Run("requires_deps", func(t *testing.T) {
		nav, err := NewNavigator(&fakeApp{}, t.TempDir(), Deps{})
		assert.Error(t, err)
		assert.Zero(t, nav)
	})
	t.Run("lists_start_dir", func(t *testing.T) {
		env := newTestEnv(t, newTestDir(t))
		assert.Equal(t, 2, env.nav.files.GetRowCount())
		assert.Equal(t, "📁sub", env.nav.files.GetCell(0, 1).Text)
		assert.Equal(t, "📄a.txt", env.nav.files.GetCell(1, 1).Text)
		assert.True(t, env.app.afterDraw != nil)
		_, isDir := env.nav.Browser().ActiveTab().Session.State().(preview.DirectoryState)
		assert.True(t, isDir)
	})
	t.Run("missing_start_dir", func(t *testing.T) {
		env := newTestEnv(t, filepath.Join(t.TempDir(), "missing"))
		assert.Equal(t, 0, env.nav.files.GetRowCount())
	})
}

func TestNavigator_Draw(t *testing.T) {
	env := newTestEnv(t, newTestDir(t))
	screen := ttestutils.NewSimScreen(t, 200, 20)
	lines := ttestutils.Render(screen, env.nav)
	assert.Contains(t, lines[len(lines)-1], "q quit")
	assert.Contains(t, strings.Join(lines, "\n"), "a.txt")
	env.app.afterDraw(screen)
}

func TestNavigator_Navigation(t *testing.T) {
	dir := newTestDir(t)
	env := newTestEnv(t, dir)

	env.press(tcell.KeyDown, 0)
	assert.Equal(t, 1, env.nav.Browser().ActiveTab().Cursor)
	assert.Contains(t, env.nav.preview.GetText(true), "hello")

	env.typeRune('k')
	assert.Equal(t, 0, env.nav.Browser().ActiveTab().Cursor)

	env.press(tcell.KeyEnter, 0)
	assert.Equal(t, filepath.Join(dir, "sub"), env.nav.Browser().CurrentDir())

	env.typeRune('h')
	assert.Equal(t, dir, env.nav.Browser().CurrentDir())
	assert.Equal(t, 0, env.nav.Browser().ActiveTab().Cursor)
}

func TestNavigator_IgnoresKeysWithoutFocus(t *testing.T) {
	env := newTestEnv(t, newTestDir(t))
	env.app.SetFocus(env.nav.bookmarks)
	event := tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)
	assert.Equal(t, event, env.nav.handleInput(event))
	assert.Equal(t, 0, env.nav.Browser().ActiveTab().Cursor)
}

func TestNavigator_Tabs(t *testing.T) {
	env := newTestEnv(t, newTestDir(t))
	env.typeRune('t')
	assert.Equal(t, 2, len(env.nav.Browser().Tabs()))
	assert.Equal(t, 1, env.nav.Browser().ActiveIndex())
	assert.Contains(t, env.nav.tabBar.GetText(true), "2:")

	env.press(tcell.KeyTab, 0)
	assert.Equal(t, 0, env.nav.Browser().ActiveIndex())

	env.typeRune('w')
	assert.Equal(t, 1, len(env.nav.Browser().Tabs()))
}

func TestNavigator_CopyPaste(t *testing.T) {
	dir := newTestDir(t)
	env := newTestEnv(t, dir)

	env.press(tcell.KeyDown, 0)
	env.typeRune('y')
	assert.Contains(t, env.nav.status.GetText(true), "yanked")
	env.press(tcell.KeyUp, 0)
	env.press(tcell.KeyEnter, 0)
	env.typeRune('p')
	env.finishTasks()

	data, err := os.ReadFile(filepath.Join(dir, "sub", "a.txt"))
	assert.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", string(data))
	assert.Equal(t, 1, env.nav.files.GetRowCount())
	assert.Contains(t, env.nav.tasksView.GetText(true), "completed")
}

func TestNavigator_PasteEmptyClipboard(t *testing.T) {
	env := newTestEnv(t, newTestDir(t))
	env.typeRune('p')
	assert.Contains(t, env.nav.status.GetText(true), "clipboard is empty")
	assert.Equal(t, 0, len(env.manager.GetTasks()))
}

func TestNavigator_Delete(t *testing.T) {
	dir := newTestDir(t)
	env := newTestEnv(t, dir)
	env.press(tcell.KeyDown, 0)

	t.Run("cancel", func(t *testing.T) {
		env.typeRune('d')
		assert.Equal(t, modeConfirmDelete, env.nav.mode)
		assert.Contains(t, env.nav.status.GetText(true), "Delete a.txt? (y/n)")
		env.typeRune('n')
		assert.Equal(t, modeNormal, env.nav.mode)
		assert.Equal(t, "", env.nav.Browser().PendingDelete())
		_, err := os.Stat(filepath.Join(dir, "a.txt"))
		assert.NoError(t, err)
	})
	t.Run("confirm", func(t *testing.T) {
		env.typeRune('d')
		env.typeRune('y')
		env.finishTasks()
		_, err := os.Stat(filepath.Join(dir, "a.txt"))
		assert.True(t, errors.Is(err, os.ErrNotExist))
		assert.Equal(t, 1, env.nav.files.GetRowCount())
	})
}

func TestNavigator_Create(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		dir := newTestDir(t)
		env := newTestEnv(t, dir)
		env.typeRune('n')
		assert.Equal(t, modeCreate, env.nav.mode)
		assert.Equal(t, "New file: ", env.nav.input.GetLabel())

		// keys go to the input field while it is open
		event := tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)
		assert.Equal(t, event, env.nav.handleInput(event))
		assert.False(t, env.app.stopped)

		env.nav.input.SetText("new.txt")
		env.nav.finishInput(tcell.KeyEnter)
		env.finishTasks()
		assert.Equal(t, modeNormal, env.nav.mode)
		_, err := os.Stat(filepath.Join(dir, "new.txt"))
		assert.NoError(t, err)
		assert.Equal(t, 3, env.nav.files.GetRowCount())
	})
	t.Run("directory", func(t *testing.T) {
		dir := newTestDir(t)
		env := newTestEnv(t, dir)
		env.typeRune('N')
		assert.Equal(t, "New directory: ", env.nav.input.GetLabel())
		env.nav.input.SetText("made")
		env.nav.finishInput(tcell.KeyEnter)
		env.finishTasks()
		info, err := os.Stat(filepath.Join(dir, "made"))
		assert.NoError(t, err)
		assert.True(t, info.IsDir())
	})
	t.Run("invalid_name", func(t *testing.T) {
		env := newTestEnv(t, newTestDir(t))
		env.typeRune('n')
		env.nav.input.SetText("../x")
		env.nav.finishInput(tcell.KeyEnter)
		assert.Contains(t, env.nav.status.GetText(true), "invalid name")
		assert.Equal(t, 0, len(env.manager.GetTasks()))
	})
	t.Run("escape", func(t *testing.T) {
		env := newTestEnv(t, newTestDir(t))
		env.typeRune('n')
		env.nav.input.SetText("ignored")
		env.nav.finishInput(tcell.KeyEscape)
		assert.Equal(t, modeNormal, env.nav.mode)
		assert.Equal(t, 0, len(env.manager.GetTasks()))
		assert.True(t, env.nav.files.HasFocus())
	})
}

func TestNavigator_ToggleHidden(t *testing.T) {
	dir := newTestDir(t)
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), nil, 0o644))
	env := newTestEnv(t, dir)
	assert.Equal(t, 2, env.nav.files.GetRowCount())
	env.typeRune('.')
	assert.Equal(t, 3, env.nav.files.GetRowCount())
}

func TestNavigator_Bookmark(t *testing.T) {
	dir := newTestDir(t)
	env := newTestEnv(t, dir)
	env.typeRune('b')
	assert.Equal(t, 1, env.nav.bookmarks.GetItemCount())

	saved, err := settings.Load(env.deps.SettingsPath)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(saved.Bookmarks))
	assert.Equal(t, dir, saved.Bookmarks[0].Dir())

	env.typeRune('b')
	assert.Equal(t, 1, env.nav.bookmarks.GetItemCount())
	assert.Contains(t, env.nav.status.GetText(true), "already bookmarked")

	env.typeRune('B')
	assert.True(t, env.nav.bookmarks.HasFocus())
}

func TestNavigator_FocusLeavesListing(t *testing.T) {
	env := newTestEnv(t, newTestDir(t))
	session := env.nav.Browser().ActiveTab().Session
	assert.NotEqual(t, preview.TaskID(0), session.CurrentID())

	env.typeRune('B')
	assert.True(t, env.nav.bookmarks.HasFocus())
	assert.Equal(t, preview.TaskID(0), session.CurrentID())
	assert.Equal[preview.State](t, preview.EmptyState{}, session.State())
	assert.Equal(t, "", env.nav.preview.GetText(true))

	env.nav.focusFiles()
	env.settle()
	assert.True(t, env.nav.files.HasFocus())
	assert.NotEqual(t, preview.TaskID(0), session.CurrentID())
	_, isDir := session.State().(preview.DirectoryState)
	assert.True(t, isDir)
}

func TestNavigator_Places(t *testing.T) {
	dir := newTestDir(t)
	oldXDGDirs, oldMounts := xdgDirs, mounts
	defer func() {
		xdgDirs, mounts = oldXDGDirs, oldMounts
	}()
	xdgDirs = func() []places.Place {
		return []places.Place{{Name: "Documents", Path: filepath.Join(dir, "sub")}}
	}
	mounts = func() ([]places.Place, error) {
		return []places.Place{{Name: "/dev/sda1", Path: dir}}, nil
	}

	env := newTestEnv(t, dir)
	session := env.nav.Browser().ActiveTab().Session
	assert.Equal(t, 1, env.nav.places.GetItemCount())
	assert.Equal(t, 1, env.nav.mounts.GetItemCount())

	t.Run("cycle_focus", func(t *testing.T) {
		env.typeRune('g')
		assert.True(t, env.nav.places.HasFocus())
		assert.Equal(t, preview.TaskID(0), session.CurrentID())

		env.press(tcell.KeyTab, 0)
		assert.True(t, env.nav.bookmarks.HasFocus())
		env.press(tcell.KeyTab, 0)
		assert.True(t, env.nav.mounts.HasFocus())
		assert.Equal(t, preview.TaskID(0), session.CurrentID())

		env.press(tcell.KeyTab, 0)
		assert.True(t, env.nav.files.HasFocus())
		assert.NotEqual(t, preview.TaskID(0), session.CurrentID())
		assert.Equal(t, 0, env.nav.Browser().ActiveIndex())
	})

	t.Run("open_place", func(t *testing.T) {
		env.typeRune('g')
		env.nav.places.InputHandler()(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), func(tview.Primitive) {})
		env.settle()
		assert.Equal(t, filepath.Join(dir, "sub"), env.nav.Browser().CurrentDir())
		assert.True(t, env.nav.files.HasFocus())
	})

	t.Run("mounts_error", func(t *testing.T) {
		mounts = func() ([]places.Place, error) {
			return nil, errors.New("no /proc")
		}
		env.nav.renderPlaces()
		assert.Equal(t, 0, env.nav.mounts.GetItemCount())
		assert.Equal(t, 1, env.nav.places.GetItemCount())
	})
}

func TestNavigator_Quit(t *testing.T) {
	env := newTestEnv(t, newTestDir(t))
	env.typeRune('q')
	assert.True(t, env.app.stopped)
}

func TestPreviewText(t *testing.T) {
	assert.Equal(t, "", previewText(preview.EmptyState{}))
	assert.Equal(t, "", previewText(preview.ImageState{}))
	assert.Equal(t, "[red]bad[-[][-]", previewText(preview.ErrorState{Message: "bad[-]"}))
	assert.Contains(t, previewText(preview.LoadingState{Path: "/x/pic.png"}), "Loading pic.png")
	dirText := previewText(preview.DirectoryState{
		Branch:  "main",
		Entries: []preview.DirEntry{{Name: "d", IsDir: true, Git: "M"}, {Name: "f"}},
	})
	assert.Equal(t, "[yellow]main[-]\n[yellow]M[-] d/\n  f\n", dirText)
	assert.True(t, strings.HasSuffix(previewText(preview.TextState{Path: "a.unknownext", Content: "x", Truncated: true}), "..[-]"))
}

func TestNavigator_Pump(t *testing.T) {
	t.Run("routes_image_events", func(t *testing.T) {
		dir := t.TempDir()
		assert.NoError(t, os.WriteFile(filepath.Join(dir, "pic.png"), nil, 0o644))
		env := newTestEnv(t, dir)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- env.nav.Pump(ctx)
		}()

		session := env.nav.Browser().ActiveTab().Session
		deadline := time.Now().Add(5 * time.Second)
		for {
			env.app.drain()
			if _, ok := session.State().(preview.ImageState); ok || time.Now().After(deadline) {
				break
			}
			time.Sleep(5 * time.Millisecond)
		}
		_, isImage := session.State().(preview.ImageState)
		assert.True(t, isImage)

		cancel()
		assert.IsError(t, <-done, context.Canceled)
	})
	t.Run("stops_with_controller", func(t *testing.T) {
		env := newTestEnv(t, newTestDir(t))
		env.controller.Close()
		assert.IsError(t, env.nav.Pump(context.Background()), preview.ErrWorkerStopped)
	})
	t.Run("polls_tasks", func(t *testing.T) {
		dir := newTestDir(t)
		env := newTestEnv(t, dir)
		env.typeRune('n')
		env.nav.input.SetText("late.txt")
		env.nav.finishInput(tcell.KeyEnter)
		env.manager.Wait()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- env.nav.Pump(ctx)
		}()
		deadline := time.Now().Add(5 * time.Second)
		for env.nav.files.GetRowCount() != 3 && time.Now().Before(deadline) {
			env.settle()
			time.Sleep(5 * time.Millisecond)
		}
		cancel()
		<-done
		assert.Equal(t, 3, env.nav.files.GetRowCount())
	})
}
