package display

import (
	"encoding/binary"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/lchdisplay/pixel"
)

// MIPI DCS commands shared by the TFT controllers.
const (
	dcsSWRESET = 0x01 // Software Reset
	dcsSLPOUT  = 0x11 // Sleep Out
	dcsNORON   = 0x13 // Normal Display Mode On
	dcsINVON   = 0x21 // Display Inversion On
	dcsDISPOFF = 0x28 // Display Off
	dcsDISPON  = 0x29 // Display On
	dcsCASET   = 0x2A // Column Address Set
	dcsRASET   = 0x2B // Row Address Set
	dcsRAMWR   = 0x2C // Memory Write
	dcsMADCTL  = 0x36 // Memory Data Access Control
	dcsCOLMOD  = 0x3A // Interface Pixel Format
)

// Memory Data Access Control (MADCTL) bit fields.
const (
	madctlPageColumnOrder    byte = 1 << 5 // MV
	madctlColumnAddressOrder byte = 1 << 6 // MX
	madctlPageAddressOrder   byte = 1 << 7 // MY
)

// crgb16Display is the common part of SPI TFT controllers that take RGB565
// pixel data through a column/row address window. The palette is expanded
// into the frame on every refresh, so 8-bit modes are emulated.
type crgb16Display struct {
	Indexed
	c        Conn
	frame    *pixel.CRGB16Image
	rotation Rotation
}

func (d *crgb16Display) init(c Conn, config *Config) error {
	if config.Depth == 0 {
		config.Depth = 16
	}
	if err := d.Init(config); err != nil {
		return err
	}
	d.c = c
	d.frame = pixel.NewCRGB16Image(config.Width, config.Height)
	d.frame.Order = binary.BigEndian
	return nil
}

// command sends the command byte, then every argument as a separate data write.
func (d *crgb16Display) command(command byte, data ...byte) (err error) {
	if err = d.c.Command(command); err != nil {
		return
	}
	for _, data := range data {
		if err = d.c.Data(data); err != nil {
			return
		}
	}
	return
}

func (d *crgb16Display) commands(commands [][]byte) (err error) {
	for _, command := range commands {
		if err = d.command(command[0], command[1:]...); err != nil {
			return
		}
	}
	return
}

// reset pulses the reset pin.
func (d *crgb16Display) reset() (err error) {
	for _, level := range []gpio.Level{gpio.High, gpio.Low, gpio.High} {
		if err = d.c.Reset(level); err != nil {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	return
}

// Close turns the panel off and releases the connection.
func (d *crgb16Display) Close() error {
	if err := d.command(dcsDISPOFF); err != nil {
		_ = d.c.Close()
		return err
	}
	return d.c.Close()
}

// SetRotation adjusts the scan direction of the panel.
func (d *crgb16Display) SetRotation(rotation Rotation) error {
	rotation &= 3

	var madctl byte
	switch rotation {
	case Rotate90:
		madctl = madctlColumnAddressOrder | madctlPageColumnOrder
	case Rotate180:
		madctl = madctlColumnAddressOrder | madctlPageAddressOrder
	case Rotate270:
		madctl = madctlPageAddressOrder | madctlPageColumnOrder
	}

	d.rotation = rotation
	return d.command(dcsMADCTL, madctl)
}

// Rotation is the current scan direction.
func (d *crgb16Display) Rotation() Rotation {
	return d.rotation
}

func (d *crgb16Display) setWindow(x0, y0, x1, y1 int) error {
	return d.commands([][]byte{
		{dcsCASET, byte(x0 >> 8), byte(x0), byte(x1 >> 8), byte(x1)}, // Column address
		{dcsRASET, byte(y0 >> 8), byte(y0), byte(y1 >> 8), byte(y1)}, // Row address
		{dcsRAMWR}, // Write to RAM
	})
}

// Refresh expands the bitmap through the palette and writes the whole frame.
func (d *crgb16Display) Refresh() error {
	d.Compose(d.frame)
	b := d.Bounds()
	if err := d.setWindow(0, 0, b.Dx()-1, b.Dy()-1); err != nil {
		return err
	}
	return d.c.Data(d.frame.Pix...)
}

// checkSize validates the panel size for the rotation, given the controller
// maximum in portrait orientation.
func checkSize(name string, config *Config, width, height int) error {
	if config.Rotation&1 == 1 {
		width, height = height, width
	}
	if config.Width > width || config.Height > height {
		return fmt.Errorf("%s: invalid size %dx%d, maximum size is %dx%d at %s rotation",
			name, config.Width, config.Height, width, height, config.Rotation)
	}
	return nil
}
