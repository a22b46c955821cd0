package input

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// Debounce is the minimum time between two presses of the same button.
var Debounce = 50 * time.Millisecond

// Button maps a GPIO input to an input byte. The pin is pulled up and a
// press pulls it low.
type Button struct {
	Pin gpio.PinIn
	Key byte
}

// LookupButton finds a pin by name in the GPIO registry. The host must be
// initialized first.
func LookupButton(name string, key byte) (Button, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return Button{}, fmt.Errorf("input: no GPIO pin named %q", name)
	}
	return Button{Pin: p, Key: key}, nil
}

// Buttons turns falling edges on GPIO inputs into input bytes.
type Buttons struct {
	Queue
	buttons []Button
	stop    chan struct{}
	wait    sync.WaitGroup
}

// OpenButtons configures every pin for falling edge detection and starts
// watching them.
func OpenButtons(buttons []Button) (*Buttons, error) {
	for _, b := range buttons {
		if err := b.Pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
			return nil, fmt.Errorf("input: button %s: %w", b.Pin, err)
		}
	}

	bs := &Buttons{
		buttons: buttons,
		stop:    make(chan struct{}),
	}
	for _, b := range buttons {
		bs.wait.Add(1)
		go bs.watch(b)
	}
	return bs, nil
}

func (bs *Buttons) watch(b Button) {
	defer bs.wait.Done()
	var last time.Time
	for {
		select {
		case <-bs.stop:
			return
		default:
		}
		if !b.Pin.WaitForEdge(100 * time.Millisecond) {
			continue
		}
		if now := time.Now(); now.Sub(last) >= Debounce {
			last = now
			bs.Push(b.Key)
		}
	}
}

func (bs *Buttons) String() string {
	return fmt.Sprintf("%d buttons", len(bs.buttons))
}

// Close stops watching and disables edge detection.
func (bs *Buttons) Close() (err error) {
	close(bs.stop)
	bs.wait.Wait()
	for _, b := range bs.buttons {
		if berr := b.Pin.In(gpio.PullNoChange, gpio.NoEdge); berr != nil && err == nil {
			err = berr
		}
	}
	return
}
