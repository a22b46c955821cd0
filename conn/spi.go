// Package conn implements the serial buses used to talk to display controllers.
package conn

import (
	"fmt"
	"os"

	"github.com/BeatGlow/lchdisplay/internal/ioctl"
)

// spiDevPath is the prefix of spidev device nodes, /dev/spidev<bus>.<device>.
const spiDevPath = "/dev/spidev"

// Definitions from <spi/spidev.h>
const (
	spiCPHA = 0x01
	spiCPOL = 0x02
)

type SPIMode uint8

const (
	SPIMode0 SPIMode = (0 | 0)             //nolint:staticcheck
	SPIMode1 SPIMode = (0 | spiCPHA)       //nolint:staticcheck
	SPIMode2 SPIMode = (spiCPOL | 0)       //nolint:staticcheck
	SPIMode3 SPIMode = (spiCPOL | spiCPHA) //nolint:staticcheck
)

const (
	spiIOCMode        = 0x6b01
	spiIOCBitsPerWord = 0x6b03
	spiIOCMaxSpeedHz  = 0x6b04
)

// SPI implements the spidev interface.
type SPI struct {
	f           *os.File
	fd          uintptr
	name        string
	mode        SPIMode
	bitsPerWord uint8
	maxSpeedHz  uint32
}

// OpenSPI opens the numbered spi bus with the numbered device. The device often corresponds to the CS pin for that bus.
func OpenSPI(bus, device int) (*SPI, error) {
	name := fmt.Sprintf("%s%d.%d", spiDevPath, bus, device)
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	c := &SPI{
		f:    f,
		fd:   f.Fd(),
		name: name,
	}
	if err = c.read(spiIOCMode, &c.mode); err == nil {
		if err = c.read(spiIOCBitsPerWord, &c.bitsPerWord); err == nil {
			err = c.read(spiIOCMaxSpeedHz, &c.maxSpeedHz)
		}
	}
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("conn: %s: %w", name, err)
	}
	return c, nil
}

func (c *SPI) read(cmd uintptr, ptr any) error {
	return ioctl.Do(c.fd, ioctl.Pointer(ioctl.Read, ptr, cmd), ptr)
}

func (c *SPI) write(cmd uintptr, ptr any) error {
	return ioctl.Do(c.fd, ioctl.Pointer(ioctl.Write, ptr, cmd), ptr)
}

func (c *SPI) Close() error {
	return c.f.Close()
}

func (c *SPI) String() string {
	return fmt.Sprintf("%s mode=%d bits per word=%d max speed=%dHz", c.name, c.mode, c.bitsPerWord, c.maxSpeedHz)
}

// SetMode writes the clock polarity and phase, and reads them back because
// some controllers silently refuse modes.
func (c *SPI) SetMode(mode SPIMode) error {
	mode &= 0x0f
	if mode == c.mode {
		return nil
	}
	if err := c.write(spiIOCMode, &mode); err != nil {
		return err
	}

	var test SPIMode
	if err := c.read(spiIOCMode, &test); err != nil {
		return err
	} else if test != mode {
		return fmt.Errorf("conn: %s: requested mode %#02x, but mode %#02x is in use", c.name, mode, test)
	}

	c.mode = mode
	return nil
}

// SetMaxSpeed sets the clock rate in Hz. Negative values are ignored.
func (c *SPI) SetMaxSpeed(hz int) error {
	if hz < 0 {
		return nil
	}
	u := uint32(hz)
	if c.maxSpeedHz == u {
		return nil
	}
	if err := c.write(spiIOCMaxSpeedHz, &u); err != nil {
		return err
	}
	c.maxSpeedHz = u
	return nil
}

func (c *SPI) Write(b []byte) (n int, err error) {
	return c.f.Write(b)
}
