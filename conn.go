package display

import (
	"errors"
	"fmt"
	"io"
	"log"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/BeatGlow/lchdisplay/conn"
)

// Conn errors.
var (
	ErrResetPin = errors.New("display: reset GPIO pin is invalid")
	ErrDCPin    = errors.New("display: data/command (DC) GPIO pin is invalid")
)

// Conn is the connection interface for communicating with hardware.
type Conn interface {
	String() string

	// Close the connection.
	Close() error

	// Reset sets the reset pin to the provided level.
	Reset(gpio.Level) error

	// Command sends a command byte with optional arguments.
	Command(byte, ...byte) error

	// Data sends data bytes.
	Data(...byte) error
}

// SPI is a Conn over a SPI bus with a data/command pin.
type SPI interface {
	Conn

	// SetMode requests a SPI mode.
	SetMode(mode conn.SPIMode) error

	// SetMaxSpeed requests a SPI speed.
	SetMaxSpeed(hz int) error
}

// SPIConfig describes the SPI bus configuration.
type SPIConfig struct {
	Bus       int
	Device    int
	SpeedHz   uint32
	BatchSize uint
	Reset     gpio.PinOut
	DC        gpio.PinOut
	CE        gpio.PinOut
}

// DefaultSPIConfig are the default configuration values. Pins are left unset
// because the GPIO registry is only populated after host initialization, see
// SPIPins.
var DefaultSPIConfig = SPIConfig{
	Bus:       0,
	Device:    0,
	SpeedHz:   40_000_000,
	BatchSize: 4096,
}

// SPIPins looks up the reset, data/command and chip enable pins by name. An
// empty chip enable name leaves CE to the SPI controller.
func SPIPins(config *SPIConfig, reset, dc, ce string) {
	config.Reset = gpioreg.ByName(reset)
	config.DC = gpioreg.ByName(dc)
	if ce != "" {
		config.CE = gpioreg.ByName(ce)
	}
}

// ValidSPISpeeds are common valid SPI bus speeds.
var ValidSPISpeeds = []uint32{
	500_000,
	1_000_000,
	2_000_000,
	4_000_000,
	8_000_000,
	16_000_000,
	20_000_000,
	24_000_000,
	32_000_000,
	40_000_000,
	48_000_000,
	50_000_000,
}

// spiBus is the part of *conn.SPI used by spiConn.
type spiBus interface {
	io.WriteCloser
	String() string
	SetMode(mode conn.SPIMode) error
	SetMaxSpeed(hz int) error
}

type spiConn struct {
	bus       spiBus
	reset     gpio.PinOut
	dc        gpio.PinOut
	dcLevel   gpio.Level
	cs        gpio.PinOut
	batchSize int
}

// OpenSPI opens a SPI connection. Reset and DC pins are required.
func OpenSPI(config *SPIConfig) (SPI, error) {
	if config == nil {
		config = new(SPIConfig)
		*config = DefaultSPIConfig
	}

	if config.Reset == nil || config.Reset == gpio.INVALID {
		return nil, ErrResetPin
	}
	if config.DC == nil || config.DC == gpio.INVALID {
		return nil, ErrDCPin
	}

	if config.SpeedHz == 0 {
		config.SpeedHz = DefaultSPIConfig.SpeedHz
	}
	if config.BatchSize == 0 {
		config.BatchSize = DefaultSPIConfig.BatchSize
	}

	var valid bool
	for _, speed := range ValidSPISpeeds {
		if valid = speed == config.SpeedHz; valid {
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("display: invalid SPI speed %dHz", config.SpeedHz)
	}

	c, err := conn.OpenSPI(config.Bus, config.Device)
	if err != nil {
		return nil, err
	}
	if err = c.SetMaxSpeed(int(config.SpeedHz)); err != nil {
		_ = c.Close()
		return nil, err
	}

	return &spiConn{
		bus:       c,
		batchSize: int(config.BatchSize),
		reset:     config.Reset,
		dc:        config.DC,
		cs:        config.CE,
		dcLevel:   gpio.High,
	}, nil
}

func (c *spiConn) String() string {
	return fmt.Sprintf("SPI bus %s", c.bus)
}

func (c *spiConn) Close() error {
	return c.bus.Close()
}

func (c *spiConn) Reset(level gpio.Level) error {
	return c.reset.Out(level)
}

// send writes data with DC at level inside a chip select frame.
func (c *spiConn) send(level gpio.Level, data []byte) error {
	if c.dcLevel != level {
		if err := c.dc.Out(level); err != nil {
			return err
		}
		c.dcLevel = level
	}
	if c.cs != nil {
		if err := c.cs.Out(gpio.Low); err != nil {
			return err
		}
		defer func() { _ = c.cs.Out(gpio.High) }()
	}
	for len(data) > 0 {
		n := min(len(data), c.batchSize)
		if _, err := c.bus.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// Command drives DC low for the command byte and high for its arguments.
func (c *spiConn) Command(cmnd byte, data ...byte) error {
	if err := c.send(gpio.Low, []byte{cmnd}); err != nil {
		return err
	}
	return c.Data(data...)
}

func (c *spiConn) Data(data ...byte) error {
	if len(data) == 0 {
		return nil
	}
	if debug && len(data) > c.batchSize {
		log.Printf("display: write %d bytes of data in %d chunks", len(data), (len(data)+c.batchSize-1)/c.batchSize)
	}
	return c.send(gpio.High, data)
}

func (c *spiConn) SetMode(mode conn.SPIMode) error {
	return c.bus.SetMode(mode)
}

func (c *spiConn) SetMaxSpeed(hz int) error {
	return c.bus.SetMaxSpeed(hz)
}
