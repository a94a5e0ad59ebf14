package raster

import "fmt"

// Worker performs the blocking rasterization call for the preview pipeline.
// A panicking rasterizer is reported as an error instead of taking the
// preview goroutine down with it.
type Worker struct {
	rasterizer Rasterizer
}

func NewWorker(r Rasterizer) *Worker {
	return &Worker{rasterizer: r}
}

func (w *Worker) Run(path string, width, height int) (img *Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("rasterizer panic: %v", r)
		}
	}()
	img, err = w.rasterizer.Rasterize(path, max(width, 1), max(height, 1))
	if err == nil && img == nil {
		err = fmt.Errorf("rasterizer returned no image for %s", path)
	}
	return img, err
}
