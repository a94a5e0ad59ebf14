// Package graphics paints preview rasters onto the terminal.
package graphics

import (
	"errors"
	"io"

	"github.com/blacktop/go-termimg"

	"github.com/filetug/tugfm/pkg/raster"
)

// ErrEmptyImage is returned by Draw when there is nothing to encode.
var ErrEmptyImage = errors.New("image has no pixels")

// Area is a terminal cell rectangle. X and Y are zero-based.
type Area struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (a Area) Empty() bool {
	return a.Width <= 0 || a.Height <= 0
}

// Backend draws one image at a time on an output surface.
type Backend interface {
	// Draw replaces whatever the backend drew before with img placed at area.
	Draw(img *raster.Image, area Area, w io.Writer) error
	// Clear removes the image drawn last, if any.
	Clear(w io.Writer) error
}

// NopBackend is used on terminals without inline graphics support.
type NopBackend struct{}

func (NopBackend) Draw(*raster.Image, Area, io.Writer) error { return nil }
func (NopBackend) Clear(io.Writer) error                     { return nil }

const (
	ModeAuto  = "auto"
	ModeKitty = "kitty"
	ModeNone  = "none"
)

var kittySupported = termimg.KittySupported

// Detect returns the backend for mode. ModeAuto queries the terminal.
func Detect(mode string) Backend {
	switch mode {
	case ModeKitty:
		return NewKittyBackend()
	case ModeNone:
		return NopBackend{}
	default:
		if kittySupported() {
			return NewKittyBackend()
		}
		return NopBackend{}
	}
}

type flusher interface {
	Flush() error
}

func flush(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
