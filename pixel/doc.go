// Package pixel implements the color and image types used by indexed-color displays.
//
// Indexed8Image holds one palette index per pixel; the 16-bit 5-6-5 images are
// what panels and framebuffers consume after the palette has been expanded.
// All types are compatible with Go's native [color.Color] and [image.Image] /
// [draw.Image] interfaces.
package pixel
