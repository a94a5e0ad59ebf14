package preview

import (
	"sync"

	"github.com/filetug/tugfm/pkg/raster"
)

// State is what the preview pane shows for one tab. Values are replaced whole, never mutated.
type State interface {
	isState()
}

type EmptyState struct{}

type LoadingState struct {
	Path string
}

type TextState struct {
	Path    string
	Content string
	// Truncated is set when the file has more lines than were loaded.
	Truncated bool
}

type DirEntry struct {
	Name  string
	IsDir bool
	Size  int64
	// Git is the one-letter git status, empty when clean or outside a repository.
	Git string
}

type DirectoryState struct {
	Path    string
	Branch  string
	Entries []DirEntry
}

type ImageState struct {
	Image *raster.Image
}

type ErrorState struct {
	Message string
}

func (EmptyState) isState()     {}
func (LoadingState) isState()   {}
func (TextState) isState()      {}
func (DirectoryState) isState() {}
func (ImageState) isState()     {}
func (ErrorState) isState()     {}

// Cell holds the preview state shared between the UI loop and background loaders.
// The lock is held only for a single read or write.
type Cell struct {
	mu    sync.Mutex
	state State
}

func NewCell() *Cell {
	return &Cell{state: EmptyState{}}
}

func (c *Cell) Load() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Cell) Store(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Update replaces the state with the result of fn when fn reports true.
func (c *Cell) Update(fn func(current State) (State, bool)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, ok := fn(c.state)
	if ok {
		c.state = next
	}
	return ok
}
