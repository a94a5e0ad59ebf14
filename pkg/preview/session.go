package preview

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/filetug/tugfm/internal/log"
	"github.com/filetug/tugfm/pkg/files/osfile"
	"github.com/filetug/tugfm/pkg/graphics"
	"github.com/filetug/tugfm/pkg/metrics"
	"github.com/filetug/tugfm/pkg/raster"
)

// Requester is the part of Controller a Session needs.
type Requester interface {
	RequestPreview(path string, width, height int, progressive bool) (TaskID, error)
	NewTaskID() TaskID
}

var _ Requester = (*Controller)(nil)

type SessionOption func(*Session)

// WithNotify sets the callback run after a background loader changed the state.
// The UI passes a function that schedules a redraw.
func WithNotify(notify func()) SessionOption {
	return func(s *Session) {
		s.notify = notify
	}
}

func WithProgressive(progressive bool) SessionOption {
	return func(s *Session) {
		s.progressive = progressive
	}
}

func WithShowHidden(showHidden func() bool) SessionOption {
	return func(s *Session) {
		s.showHidden = showHidden
	}
}

// WithDirReader sets where directory previews are listed from.
func WithDirReader(reader DirReader) SessionOption {
	return func(s *Session) {
		s.dirReader = reader
	}
}

func WithSessionLogger(logger log.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session is the preview side of one tab. Select, Deselect, Apply and Render
// are called from the UI loop only. Background loaders touch the state through the Cell.
type Session struct {
	requester Requester
	backend   graphics.Backend
	out       io.Writer
	cell      *Cell
	current   atomic.Uint64 // 0 means nothing selected

	progressive bool
	notify      func()
	showHidden  func() bool
	dirReader   DirReader
	logger      log.Logger

	drawn     *raster.Image
	drawnArea graphics.Area

	loaders sync.WaitGroup
}

func NewSession(requester Requester, backend graphics.Backend, out io.Writer, options ...SessionOption) *Session {
	s := &Session{
		requester:   requester,
		backend:     backend,
		out:         out,
		cell:        NewCell(),
		progressive: true,
		notify:      func() {},
		showHidden:  func() bool { return false },
		dirReader:   osfile.NewStore("/"),
		logger:      log.Noop,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Session) State() State {
	return s.cell.Load()
}

// CurrentID is the id of the selection whose events are accepted, 0 when nothing is selected.
func (s *Session) CurrentID() TaskID {
	return TaskID(s.current.Load())
}

// Select switches the preview to path. The previous image is cleared and the state
// is Loading before Select returns. Images go through the preview worker, directories
// and other files are loaded in the background.
func (s *Session) Select(path string, isDir bool, width, height int) error {
	s.clearImage()
	// Loaders of the previous selection must not overwrite Loading while the new id is minted.
	s.current.Store(0)
	s.cell.Store(LoadingState{Path: path})

	switch {
	case isDir:
		id := s.requester.NewTaskID()
		s.current.Store(uint64(id))
		showHidden := s.showHidden()
		s.load(id, func() (State, error) {
			return LoadDirectory(context.Background(), s.dirReader, path, showHidden)
		})
	case raster.IsImage(path):
		id, err := s.requester.RequestPreview(path, width, height, s.progressive)
		s.current.Store(uint64(id))
		if err != nil {
			s.logger.WithValues(log.Kv{"path": path}).Errorf("preview request failed: %v", err)
			s.cell.Store(ErrorState{Message: err.Error()})
			return err
		}
	default:
		id := s.requester.NewTaskID()
		s.current.Store(uint64(id))
		s.load(id, func() (State, error) {
			return LoadText(path)
		})
	}
	return nil
}

// Deselect clears the preview when no entry is selected. Events in flight become stale.
func (s *Session) Deselect() {
	s.clearImage()
	s.current.Store(0)
	s.cell.Store(EmptyState{})
}

// Apply installs ev if it belongs to the current selection. A loaded image replaces
// the shown one only when it is strictly wider. An error is installed only while no
// image is shown. It reports whether the state changed.
func (s *Session) Apply(ev Event) bool {
	current := s.CurrentID()
	if current == 0 || ev.ID != current {
		metrics.RecordStalePreviewEvent()
		return false
	}
	switch ev.Type {
	case ThumbnailLoaded, FinalImageLoaded:
		if ev.Image == nil {
			return false
		}
		return s.cell.Update(func(state State) (State, bool) {
			if shown, ok := state.(ImageState); ok && ev.Image.Width <= shown.Image.Width {
				return state, false
			}
			return ImageState{Image: ev.Image}, true
		})
	default:
		return s.cell.Update(func(state State) (State, bool) {
			if _, ok := state.(ImageState); ok {
				return state, false
			}
			return ErrorState{Message: ev.Message}, true
		})
	}
}

// Render puts the installed image on the terminal at area. It is a no-op when
// the same image is already drawn there.
func (s *Session) Render(area graphics.Area) error {
	shown, ok := s.cell.Load().(ImageState)
	if !ok || area.Empty() {
		s.clearImage()
		return nil
	}
	if shown.Image == s.drawn && area == s.drawnArea {
		return nil
	}
	if err := s.backend.Draw(shown.Image, area, s.out); err != nil {
		s.drawn = nil
		return err
	}
	s.drawn, s.drawnArea = shown.Image, area
	return nil
}

// Hide removes the drawn image without changing the state, e.g. when the tab loses focus.
func (s *Session) Hide() {
	s.clearImage()
}

// Wait blocks until background loaders have finished.
func (s *Session) Wait() {
	s.loaders.Wait()
}

func (s *Session) clearImage() {
	if err := s.backend.Clear(s.out); err != nil {
		s.logger.Warningf("clear preview image: %v", err)
	}
	s.drawn = nil
	s.drawnArea = graphics.Area{}
}

func (s *Session) load(id TaskID, loader func() (State, error)) {
	s.loaders.Add(1)
	go func() {
		defer s.loaders.Done()
		state, err := loader()
		if err != nil {
			state = ErrorState{Message: err.Error()}
		}
		changed := s.cell.Update(func(State) (State, bool) {
			return state, s.CurrentID() == id
		})
		if changed {
			s.notify()
		}
	}()
}
