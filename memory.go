package display

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/BeatGlow/lchdisplay/draw"
	"github.com/BeatGlow/lchdisplay/pixel"
)

// Memory is a display without hardware. Refresh renders the frame into an
// RGB565 image, which makes it usable for previews and tests.
type Memory struct {
	Indexed
	frame     *pixel.CRGB16Image
	shown     [256]pixel.RGB
	shownText string
	refreshes int
	closed    bool
}

// NewMemory returns an in-memory display. It fails with ErrNoMemory when the
// mode does not fit config.MemoryLimit.
func NewMemory(config *Config) (*Memory, error) {
	d := new(Memory)
	if err := d.Init(config); err != nil {
		return nil, err
	}
	d.frame = pixel.NewCRGB16Image(config.Width, config.Height)
	d.frame.Order = binary.LittleEndian
	return d, nil
}

func (d *Memory) String() string {
	return fmt.Sprintf("memory %s", d.mode)
}

func (d *Memory) Close() error {
	d.closed = true
	return nil
}

// Closed reports whether Close was called.
func (d *Memory) Closed() bool {
	return d.closed
}

func (d *Memory) Refresh() error {
	if d.closed {
		return ErrClosed
	}
	d.Compose(d.frame)
	d.shown = d.Palette
	d.shownText = d.status
	d.refreshes++
	return nil
}

// Refreshes is the number of completed refreshes.
func (d *Memory) Refreshes() int {
	return d.refreshes
}

// Shown is the palette as of the last refresh.
func (d *Memory) Shown() [256]pixel.RGB {
	return d.shown
}

// ShownStatus is the status line as of the last refresh.
func (d *Memory) ShownStatus() string {
	return d.shownText
}

// Frame is the image as of the last refresh.
func (d *Memory) Frame() image.Image {
	return d.frame
}

// Snapshot converts the last presented frame to RGBA.
func (d *Memory) Snapshot() *image.RGBA {
	b := d.frame.Bounds()
	im := image.NewRGBA(b)
	draw.Draw(im, b, d.frame, b.Min, draw.Src)
	return im
}

// WritePNG encodes the last presented frame.
func (d *Memory) WritePNG(w io.Writer) error {
	return png.Encode(w, d.Snapshot())
}

var _ Display = (*Memory)(nil)
