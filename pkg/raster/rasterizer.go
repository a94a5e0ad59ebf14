package raster

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Rasterizer turns a document or image path into pixels that fit into
// width x height. Implementations may block for a long time.
type Rasterizer interface {
	Rasterize(path string, width, height int) (*Image, error)
}

// RasterizerFunc adapts a function to the Rasterizer interface.
type RasterizerFunc func(path string, width, height int) (*Image, error)

func (f RasterizerFunc) Rasterize(path string, width, height int) (*Image, error) {
	return f(path, width, height)
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// IsImage reports whether the built-in rasterizer handles the file extension.
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

var osOpen = os.Open

// ImageRasterizer decodes bitmap formats and scales them to fit the target box,
// preserving aspect ratio. Small targets use a cheaper interpolator.
type ImageRasterizer struct {
	// FastBelow selects bilinear scaling when the target width is under this many pixels.
	FastBelow int
}

var _ Rasterizer = ImageRasterizer{}

func (r ImageRasterizer) Rasterize(path string, width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}
	f, err := osOpen(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	src, _, err := image.Decode(f)
	if err != nil {
		if err == image.ErrFormat {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
		}
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	w, h := Fit(src.Bounds().Dx(), src.Bounds().Dy(), width, height)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	var scaler draw.Interpolator = draw.CatmullRom
	if width < r.FastBelow {
		scaler = draw.ApproxBiLinear
	}
	scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return FromRGBA(dst), nil
}

// Fit scales srcW x srcH to fit into maxW x maxH keeping the aspect ratio.
// Images smaller than the box are not enlarged. The result is at least 1x1.
func Fit(srcW, srcH, maxW, maxH int) (w, h int) {
	if srcW <= 0 || srcH <= 0 {
		return 1, 1
	}
	w, h = srcW, srcH
	if w > maxW {
		h = h * maxW / w
		w = maxW
	}
	if h > maxH {
		w = w * maxH / h
		h = maxH
	}
	return max(w, 1), max(h, 1)
}
