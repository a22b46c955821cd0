package display

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/lchdisplay/conn"
)

const (
	st7789MaxWidth  = 240
	st7789MaxHeight = 320
	st7789SpeedHz   = 40_000_000
)

// Registers (from st7789.pdf).
const (
	st7789PORCTRL   = 0xB2 // Porch Setting
	st7789GCTRL     = 0xB7 // Gate Control
	st7789VCOMS     = 0xBB // VCOM Setting
	st7789LCMCTRL   = 0xC0 // LCM Control
	st7789VDVVRHEN  = 0xC2 // VDV and VRH Command Enable
	st7789VRHS      = 0xC3 // VRH Set
	st7789VDVSET    = 0xC4 // VDV Set
	st7789FRCTR2    = 0xC6 // Frame Rate Control in Normal Mode
	st7789PWCTRL1   = 0xD0 // Power Control 1
	st7789PVGAMCTRL = 0xE0 // Positive Voltage Gamma Control
	st7789NVGAMCTRL = 0xE1 // Negative Voltage Gamma Control
)

// ST7789 is a 240x320 16-bit SPI TFT controller.
type ST7789 struct {
	crgb16Display
}

// NewST7789 resets and initializes the panel. The default size is the full
// panel in the configured orientation.
func NewST7789(c Conn, config *Config) (*ST7789, error) {
	if spi, ok := c.(SPI); ok {
		if err := spi.SetMode(conn.SPIMode3); err != nil {
			return nil, err
		}
		if err := spi.SetMaxSpeed(st7789SpeedHz); err != nil {
			return nil, err
		}
	}

	portrait := config.Rotation&1 == 0
	if config.Width == 0 {
		if config.Width = st7789MaxHeight; portrait {
			config.Width = st7789MaxWidth
		}
	}
	if config.Height == 0 {
		if config.Height = st7789MaxWidth; portrait {
			config.Height = st7789MaxHeight
		}
	}
	if err := checkSize("st7789", config, st7789MaxWidth, st7789MaxHeight); err != nil {
		return nil, err
	}

	d := new(ST7789)
	if err := d.init(c, config); err != nil {
		return nil, err
	}
	if err := d.reset(); err != nil {
		return nil, err
	}
	if err := d.SetRotation(config.Rotation); err != nil {
		return nil, err
	}
	if config.Backlight != nil {
		if err := config.Backlight.Out(gpio.High); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *ST7789) String() string {
	bounds := d.Bounds()
	return fmt.Sprintf("ST7789 %dx%d", bounds.Dx(), bounds.Dy())
}

func (d *ST7789) reset() (err error) {
	if err = d.crgb16Display.reset(); err != nil {
		return
	}

	if err = d.command(dcsSLPOUT); err != nil {
		return
	}
	time.Sleep(150 * time.Millisecond)

	if err = d.commands([][]byte{
		{dcsCOLMOD, 0x05},           // Interface Pixel Format: 16-bit/pixel (RGB 5-6-5-bit input)
		{st7789PORCTRL, 0x0C, 0x0C}, // Porch Setting: default
		{st7789GCTRL, 0x35},         // Gate Control: 13.26V / -10.43V (default)
		{st7789VCOMS, 0x1A},         // VCOM Setting: 0.75V
		{st7789LCMCTRL, 0x2C},       // LCM Control: default
		{st7789VDVVRHEN, 0x01},      // VDV and VRH Command Enable: default
		{st7789VRHS, 0x0B},          // VRH Set
		{st7789VDVSET, 0x20},        // VDV Set: default (0V)
		{st7789FRCTR2, 0x0F},        // Frame Rate Control in Normal Mode: 60Hz (default)
		{st7789PWCTRL1, 0xA4, 0xA1}, // Power Control 1: default
		{dcsINVON},                  // Display Inversion On
		{st7789PVGAMCTRL, 0x00, 0x19, 0x1E, 0x0A, 0x09, 0x15, 0x3D, 0x44, 0x51, 0x12, 0x03, 0x00, 0x3F, 0x3F},
		{st7789NVGAMCTRL, 0x00, 0x18, 0x1E, 0x0A, 0x09, 0x25, 0x3F, 0x43, 0x52, 0x33, 0x03, 0x00, 0x3F, 0x3F},
		{dcsNORON},
		{dcsDISPON},
	}); err != nil {
		return
	}
	time.Sleep(100 * time.Millisecond)
	return
}

var _ Display = (*ST7789)(nil)
