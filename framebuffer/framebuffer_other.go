//go:build !linux

package framebuffer

import "github.com/BeatGlow/lchdisplay"

// FrameBuffer is only available on Linux.
type FrameBuffer struct {
	display.Display
}

// Open always fails with ErrNotSupported.
func Open(_ string, _ *display.Config) (*FrameBuffer, error) {
	return nil, ErrNotSupported
}
