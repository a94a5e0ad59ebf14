package graphics

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/filetug/tugfm/pkg/raster"
)

var pngEncoder = &png.Encoder{CompressionLevel: png.BestSpeed}

var pngEncode = func(w io.Writer, m image.Image) error {
	return pngEncoder.Encode(w, m)
}

var _ Backend = (*KittyBackend)(nil)

// KittyBackend speaks the Kitty terminal graphics protocol. It tracks the id
// of the image on screen so it can be deleted before the next one is placed.
type KittyBackend struct {
	lastID    uint32
	currentID uint32
}

func NewKittyBackend() *KittyBackend {
	return &KittyBackend{}
}

// CurrentID returns the id of the image on screen, or 0 when nothing is drawn.
func (k *KittyBackend) CurrentID() uint32 {
	return k.currentID
}

func (k *KittyBackend) Draw(img *raster.Image, area Area, w io.Writer) error {
	if err := k.Clear(w); err != nil {
		return err
	}
	if img == nil || img.Width <= 0 || img.Height <= 0 || len(img.Pixels) == 0 {
		return ErrEmptyImage
	}
	rgba := img.RGBA()
	if img.Stride == 0 {
		rgba.Stride = img.Width * 4
	}
	var encoded bytes.Buffer
	if err := pngEncode(&encoded, rgba); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	payload := base64.StdEncoding.EncodeToString(encoded.Bytes())

	id := k.allocateID()
	var cmd bytes.Buffer
	cmd.Grow(len(payload) + 64)
	_, _ = fmt.Fprintf(&cmd, "\x1b[%d;%dH", area.Y+1, area.X+1)
	_, _ = fmt.Fprintf(&cmd, "\x1b_Gf=100,a=T,c=%d,r=%d,i=%d;", area.Width, area.Height, id)
	cmd.WriteString(payload)
	cmd.WriteString("\x1b\\")

	n, err := w.Write(cmd.Bytes())
	if n > 0 {
		// a partial write may already have placed the image
		k.currentID = id
	}
	if err != nil {
		return fmt.Errorf("write kitty image: %w", err)
	}
	return flush(w)
}

func (k *KittyBackend) Clear(w io.Writer) error {
	if k.currentID == 0 {
		return nil
	}
	id := k.currentID
	k.currentID = 0
	if _, err := fmt.Fprintf(w, "\x1b_Ga=d,d=i,i=%d\x1b\\", id); err != nil {
		return fmt.Errorf("delete kitty image %d: %w", id, err)
	}
	return flush(w)
}

// allocateID increments the id counter with wrap-around, skipping 0 which the
// protocol reserves.
func (k *KittyBackend) allocateID() uint32 {
	k.lastID++
	if k.lastID == 0 {
		k.lastID = 1
	}
	return k.lastID
}
