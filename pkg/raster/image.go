package raster

import (
	"errors"
	"fmt"
	"image"
)

// ErrUnsupported is returned for files the rasterizer cannot decode.
var ErrUnsupported = errors.New("unsupported format")

// Image is an immutable RGBA8 raster. It is shared by pointer between the
// preview state and the output backend and must not be modified.
type Image struct {
	Width  int
	Height int
	Stride int
	Pixels []byte
}

// NewImage wraps an RGBA pixel buffer, validating its size.
func NewImage(pixels []byte, width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel buffer has %d bytes, want %d", len(pixels), width*height*4)
	}
	return &Image{Width: width, Height: height, Stride: width * 4, Pixels: pixels}, nil
}

// FromRGBA copies an *image.RGBA into a tightly packed Image.
func FromRGBA(src *image.RGBA) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	pixels := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		copy(pixels[y*w*4:], row)
	}
	return &Image{Width: w, Height: h, Stride: w * 4, Pixels: pixels}
}

// RGBA exposes the raster as a standard library image without copying.
func (img *Image) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    img.Pixels,
		Stride: img.Stride,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}
