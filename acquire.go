package display

import (
	"errors"
	"fmt"
	"log"

	"github.com/BeatGlow/lchdisplay/pixel"
)

const (
	// NoMemoryMessage is shown on the fallback display when a mode does not fit.
	NoMemoryMessage = "REQUESTED VIDEO MODE NEEDS MORE MEMORY"

	// MessageEntry is the palette entry holding the fallback message color.
	MessageEntry = 0xff
)

// Opener opens a display in the requested mode.
type Opener func(Mode) (Display, error)

// Acquire returns a display for mode.
//
// A current display with the requested resolution is reused as is, otherwise
// it is closed and open is called. When the mode does not fit in memory, the
// fallback mode is opened only to show NoMemoryMessage: the fallback display
// is returned together with an error wrapping ErrNoMemory, which callers must
// treat as fatal.
func Acquire(current Display, mode Mode, open Opener) (Display, error) {
	if current != nil {
		if current.Mode().Size() == mode.Size() {
			if debug {
				log.Printf("display: using existing display for video mode %s", mode)
			}
			return current, nil
		}
		if err := current.Close(); err != nil {
			return nil, fmt.Errorf("display: release %s: %w", current.Mode(), err)
		}
	}

	if debug {
		log.Printf("display: initializing display for video mode %s", mode)
	}
	d, err := open(mode)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, ErrNoMemory) || mode == FallbackMode {
		return nil, err
	}

	fallback, ferr := open(FallbackMode)
	if ferr != nil {
		return nil, errors.Join(err, ferr)
	}
	// Indexed hardware draws the message through the palette, which is
	// still all black.
	fallback.Clear()
	fallback.SetEntry(MessageEntry, pixel.White)
	fallback.SetStatus(NoMemoryMessage)
	if ferr = fallback.Refresh(); ferr != nil {
		_ = fallback.Close()
		return nil, errors.Join(err, ferr)
	}
	return fallback, fmt.Errorf("display: video mode %s: %w", mode, err)
}
