// Package framebuffer provides access to the operating system's native framebuffer.
//
// This requires framebuffer device support in the operating system. The
// framebuffer is opened with [Open] and otherwise behaves like any other
// [display.Display]: 8 bits per pixel devices with a pseudocolor visual get
// the palette loaded into their color map, 16 bits per pixel devices get the
// palette expanded into RGB565 or BGR565 on every refresh.
package framebuffer

import (
	"errors"
	"os"
)

// DefaultDevice is the first framebuffer device.
const DefaultDevice = "/dev/fb0"

// Errors
var (
	ErrNotSupported = errors.New("framebuffer: not supported")
	ErrFormat       = errors.New("framebuffer: unsupported pixel format")
)

var debug = os.Getenv("LCHDISPLAY_DEBUG") != ""
