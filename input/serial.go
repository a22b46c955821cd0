package input

import (
	"errors"
	"fmt"
	"io"
	"os"

	serial "github.com/tarm/goserial"
)

// DefaultBaud is the serial line speed used when none is configured.
const DefaultBaud = 115200

// Serial reads input bytes from a serial port.
type Serial struct {
	Queue
	name string
	port io.ReadWriteCloser
	done chan error
}

// OpenSerial opens the serial port name and starts reading from it.
func OpenSerial(name string, baud int) (*Serial, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("input: serial %s: %w", name, err)
	}
	return newSerial(name, port), nil
}

func newSerial(name string, port io.ReadWriteCloser) *Serial {
	s := &Serial{
		name: name,
		port: port,
		done: make(chan error, 1),
	}
	go pump(&s.Queue, port, s.done)
	return s
}

func (s *Serial) String() string {
	return "serial " + s.name
}

// Close the port. A read error seen before closing is reported as well.
func (s *Serial) Close() error {
	err := s.port.Close()
	select {
	case rerr := <-s.done:
		if rerr != nil && !errors.Is(rerr, os.ErrClosed) && !errors.Is(rerr, io.ErrClosedPipe) {
			return errors.Join(err, rerr)
		}
	default:
	}
	return err
}

// Err returns the error that stopped the reader, if it stopped.
func (s *Serial) Err() error {
	select {
	case err := <-s.done:
		s.done <- err
		if err == nil {
			return io.EOF
		}
		return err
	default:
		return nil
	}
}
