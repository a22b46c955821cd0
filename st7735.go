package display

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/lchdisplay/conn"
)

const (
	st7735DefaultWidth  = 128
	st7735DefaultHeight = 160
	st7735SpeedHz       = 16_000_000
	st7735BacklightRate = 2 * physic.KiloHertz
)

// Registers (from st7735.pdf).
const (
	st7735FRMCTR1 = 0xB1
	st7735FRMCTR2 = 0xB2
	st7735FRMCTR3 = 0xB3
	st7735INVCTR  = 0xB4
	st7735PWCTR1  = 0xC0
	st7735PWCTR2  = 0xC1
	st7735PWCTR3  = 0xC2
	st7735PWCTR4  = 0xC3
	st7735PWCTR5  = 0xC4
	st7735VMCTR1  = 0xC5
	st7735GMCTRP1 = 0xE0
	st7735GMCTRN1 = 0xE1
)

// ST7735 is a 128x160 16-bit SPI TFT controller.
type ST7735 struct {
	crgb16Display
	backlight gpio.PinOut
}

// NewST7735 resets and initializes the panel. A backlight pin is driven with
// PWM, see SetBacklight.
func NewST7735(c Conn, config *Config) (*ST7735, error) {
	if spi, ok := c.(SPI); ok {
		if err := spi.SetMode(conn.SPIMode0); err != nil {
			return nil, err
		}
		if err := spi.SetMaxSpeed(st7735SpeedHz); err != nil {
			return nil, err
		}
	}

	portrait := config.Rotation&1 == 0
	if config.Width == 0 {
		if config.Width = st7735DefaultHeight; portrait {
			config.Width = st7735DefaultWidth
		}
	}
	if config.Height == 0 {
		if config.Height = st7735DefaultWidth; portrait {
			config.Height = st7735DefaultHeight
		}
	}
	if err := checkSize("st7735", config, st7735DefaultWidth, st7735DefaultHeight); err != nil {
		return nil, err
	}

	d := &ST7735{backlight: config.Backlight}
	if err := d.init(c, config); err != nil {
		return nil, err
	}
	if err := d.reset(); err != nil {
		return nil, err
	}
	if err := d.SetRotation(config.Rotation); err != nil {
		return nil, err
	}
	if err := d.SetBacklight(0xff); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *ST7735) String() string {
	bounds := d.Bounds()
	return fmt.Sprintf("ST7735 %dx%d", bounds.Dx(), bounds.Dy())
}

func (d *ST7735) reset() (err error) {
	if err = d.crgb16Display.reset(); err != nil {
		return
	}

	if err = d.command(dcsSWRESET); err != nil {
		return
	}
	time.Sleep(150 * time.Millisecond)
	if err = d.command(dcsSLPOUT); err != nil {
		return
	}
	time.Sleep(150 * time.Millisecond)

	if err = d.commands([][]byte{
		{st7735FRMCTR1, 0x01, 0x2C, 0x2D},
		{st7735FRMCTR2, 0x01, 0x2C, 0x2D},
		{st7735FRMCTR3, 0x01, 0x2C, 0x2D, 0x01, 0x2C, 0x2D},
		{st7735INVCTR, 0x07},
		{st7735PWCTR1, 0xA2, 0x02, 0x84},
		{st7735PWCTR2, 0xC5},
		{st7735PWCTR3, 0x0A, 0x00},
		{st7735PWCTR4, 0x8A, 0x2A},
		{st7735PWCTR5, 0x8A, 0xEE},
		{st7735VMCTR1, 0x0E},
		{dcsCOLMOD, 0x05}, // 16-bits per pixel
		{st7735GMCTRP1, 0x02, 0x1C, 0x07, 0x12, 0x37, 0x32, 0x29, 0x2D, 0x29, 0x25, 0x2B, 0x39, 0x00, 0x01, 0x03, 0x10},
		{st7735GMCTRN1, 0x03, 0x1D, 0x07, 0x06, 0x2E, 0x2C, 0x29, 0x2D, 0x2E, 0x2E, 0x37, 0x3F, 0x00, 0x00, 0x02, 0x10},
		{dcsNORON},
		{dcsDISPON},
	}); err != nil {
		return
	}
	time.Sleep(100 * time.Millisecond)
	return
}

// SetBacklight sets the backlight duty cycle, 0xff is fully on. Without a
// backlight pin this does nothing.
func (d *ST7735) SetBacklight(level uint8) error {
	if d.backlight == nil {
		return nil
	}
	const step = gpio.DutyMax / 0xFF
	if debug {
		log.Printf("st7735: backlight duty cycle to %s at %s", step*gpio.Duty(level), st7735BacklightRate)
	}
	return d.backlight.PWM(step*gpio.Duty(level), st7735BacklightRate)
}

var _ Display = (*ST7735)(nil)
