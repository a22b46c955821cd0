// Package display contains indexed-color display drivers.
//
// Every display holds an 8-bit bitmap of palette indices and a 256 entry
// color lookup table. Nothing is presented until Refresh is called: the
// palette is expanded into the panel's native pixel format and the optional
// status text is rendered on top.
package display

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/lchdisplay/draw"
	"github.com/BeatGlow/lchdisplay/pixel"
)

var debug bool

func init() {
	debug = os.Getenv("LCHDISPLAY_DEBUG") != ""
}

// Errors
var (
	ErrNoMemory = errors.New("display: not enough memory for video mode")
	ErrDepth    = errors.New("display: unsupported color depth")
	ErrClosed   = errors.New("display: closed")
)

// Rotation defines pixel rotation.
type Rotation uint8

// Supported rotations.
const (
	NoRotation Rotation = iota
	Rotate90            // Rotate 90° clock wise
	Rotate180           // Rotate 180°
	Rotate270           // Rotate 270° clock wise
)

func (r Rotation) String() string {
	switch r % 4 {
	case Rotate90:
		return "90°"
	case Rotate180:
		return "180°"
	case Rotate270:
		return "270°"
	default:
		return "0°"
	}
}

// Mode is a video mode: resolution and bits per output pixel.
type Mode struct {
	Width  int
	Height int

	// Depth is 8 for hardware palette lookup or 16 for RGB565 output.
	Depth int
}

// FallbackMode is the smallest mode, used to report failures of larger ones.
var FallbackMode = Mode{Width: 320, Height: 240, Depth: 8}

func (m Mode) String() string {
	return fmt.Sprintf("%dx%dx%d", m.Width, m.Height, m.Depth)
}

// Size is the resolution of m.
func (m Mode) Size() image.Point {
	return image.Pt(m.Width, m.Height)
}

// Bytes is the memory needed for the index bitmap plus the output frame.
func (m Mode) Bytes() int {
	return m.Width*m.Height + m.Width*m.Height*m.Depth/8
}

// Validate checks the resolution and depth.
func (m Mode) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("display: invalid size %dx%d", m.Width, m.Height)
	}
	if m.Depth != 8 && m.Depth != 16 {
		return fmt.Errorf("%w: %d bits", ErrDepth, m.Depth)
	}
	return nil
}

// Display is an indexed-color display.
//
// The embedded draw.Image operates on palette indices: Set with a
// [pixel.Index] writes the index verbatim, any other color is mapped onto the
// nearest palette entry. At returns the palette color of the pixel.
type Display interface {
	draw.Image

	// Close the display driver.
	Close() error

	// Clear the bitmap to index 0.
	Clear()

	// Mode the display was opened with.
	Mode() Mode

	// SetEntry sets palette entry index to c.
	SetEntry(index uint8, c pixel.RGB)

	// Entry returns palette entry index.
	Entry(index uint8) pixel.RGB

	// SetStatus sets the status line drawn on the next refresh. An empty
	// string hides it.
	SetStatus(text string)

	// Refresh presents the bitmap through the current palette.
	Refresh() error
}

// Config is the display configuration.
type Config struct {
	// Width of the display in pixels.
	Width int

	// Height of the display in pixels.
	Height int

	// Depth of the output in bits per pixel (8 or 16).
	Depth int

	// Rotation of the display.
	Rotation Rotation

	// MemoryLimit is the memory budget in bytes, zero means unlimited.
	MemoryLimit int

	// Label renders the status line, nil uses DefaultLabel.
	Label *Label

	// Reset pin
	Reset gpio.PinOut

	// Backlight pin
	Backlight gpio.PinOut
}

// Mode of the configuration.
func (c *Config) Mode() Mode {
	return Mode{Width: c.Width, Height: c.Height, Depth: c.Depth}
}

// reserve checks the mode against the memory budget.
func (c *Config) reserve() error {
	m := c.Mode()
	if err := m.Validate(); err != nil {
		return err
	}
	if c.MemoryLimit > 0 && m.Bytes() > c.MemoryLimit {
		return fmt.Errorf("%w: %s needs %d bytes, %d available", ErrNoMemory, m, m.Bytes(), c.MemoryLimit)
	}
	return nil
}

// Indexed implements the bitmap, palette and status line of a Display.
// Backends embed it and add Refresh and Close.
type Indexed struct {
	*pixel.Indexed8Image
	mode   Mode
	status string
	label  *Label
}

// Init allocates the bitmap for config after checking its memory budget.
func (d *Indexed) Init(config *Config) error {
	if err := config.reserve(); err != nil {
		return err
	}
	d.mode = config.Mode()
	d.Indexed8Image = pixel.NewIndexed8Image(config.Width, config.Height)
	if d.label = config.Label; d.label == nil {
		d.label = DefaultLabel()
	}
	return nil
}

func (d *Indexed) Mode() Mode {
	return d.mode
}

func (d *Indexed) SetEntry(index uint8, c pixel.RGB) {
	d.Palette[index] = c
}

func (d *Indexed) Entry(index uint8) pixel.RGB {
	return d.Palette[index]
}

func (d *Indexed) SetStatus(text string) {
	d.status = text
}

// Status returns the status line.
func (d *Indexed) Status() string {
	return d.status
}

// Compose expands the bitmap into dst and draws the status line.
func (d *Indexed) Compose(dst draw.Image) {
	d.Indexed8Image.Expand(dst)
	d.DrawStatus(dst)
}

// Overlay copies the bitmap and palette into dst and draws the status line on
// it, mapping the label colors onto the nearest palette entries.
func (d *Indexed) Overlay(dst *pixel.Indexed8Image) {
	copy(dst.Pix, d.Pix)
	dst.Palette = d.Palette
	d.DrawStatus(dst)
}

// DrawStatus draws the status line onto dst, if there is one.
func (d *Indexed) DrawStatus(dst draw.Image) {
	if d.status != "" {
		d.label.Draw(dst, d.status, color.White)
	}
}
