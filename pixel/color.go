package pixel

import "image/color"

// Models for the standard color types.
var (
	RGBModel    color.Model = color.ModelFunc(rgbModel)
	IndexModel  color.Model = color.ModelFunc(indexModel)
	CRGB16Model color.Model = color.ModelFunc(crgb16Model)
	CBGR16Model color.Model = color.ModelFunc(cbgr16Model)
)

// Black is the background color, palette slot 0.
var Black = RGB{}

// White is the brightest display color.
var White = RGB{R: 0xff, G: 0xff, B: 0xff}

// RGB is a 24-bit display color with 8 bits per channel.
type RGB struct {
	R, G, B uint8
}

func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

func rgbModel(c color.Color) color.Color {
	if _, ok := c.(RGB); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// Index is a raw palette index. Indexed images store it verbatim, other
// images see it as a gray level.
type Index uint8

func (c Index) RGBA() (r, g, b, a uint32) {
	y := uint32(c)
	y |= y << 8
	return y, y, y, 0xffff
}

func indexModel(c color.Color) color.Color {
	if _, ok := c.(Index); ok {
		return c
	}
	r, g, b, _ := c.RGBA()

	// Same luma weights as color.GrayModel.
	y := (19595*r + 38470*g + 7471*b + 1<<15) >> 24
	return Index(y)
}

// CRGB16 represents a 16-bit 5-6-5 RGB color.
type CRGB16 struct {
	// CRed, 5, CGreen, 6, CBlue, 5
	V uint16
}

// RGB565 packs c into a 5-6-5 value.
func RGB565(c RGB) CRGB16 {
	return CRGB16{uint16(c.R&0xF8)<<8 | uint16(c.G&0xFC)<<3 | uint16(c.B)>>3}
}

func (c CRGB16) RGBA() (r, g, b, a uint32) {
	// Build a 5- or 6-bit value at the top of the low byte of each component.
	red := (c.V & 0xF800) >> 8
	grn := (c.V & 0x07E0) >> 3
	blu := (c.V & 0x001F) << 3
	// Duplicate the high bits in the low bits.
	red |= red >> 5
	grn |= grn >> 6
	blu |= blu >> 5
	// Duplicate the whole value in the high byte.
	red |= red << 8
	grn |= grn << 8
	blu |= blu << 8
	return uint32(red), uint32(grn), uint32(blu), 0xffff
}

func crgb16Model(c color.Color) color.Color {
	switch c := c.(type) {
	case CRGB16:
		return c
	case RGB:
		return RGB565(c)
	default:
		r, g, b, _ := c.RGBA()
		r = (r & 0xF800)
		g = (g & 0xFC00) >> 5
		b = (b & 0xF800) >> 11
		return CRGB16{uint16(r | g | b)}
	}
}

// CBGR16 represents a 16-bit 5-6-5 BGR color.
type CBGR16 struct {
	// CBlue, 5, CGreen, 6, CRed, 5
	V uint16
}

// BGR565 packs c into a 5-6-5 value with red in the low bits.
func BGR565(c RGB) CBGR16 {
	return CBGR16{uint16(c.B&0xF8)<<8 | uint16(c.G&0xFC)<<3 | uint16(c.R)>>3}
}

func (c CBGR16) RGBA() (r, g, b, a uint32) {
	blu := (c.V & 0xF800) >> 8
	grn := (c.V & 0x07E0) >> 3
	red := (c.V & 0x001F) << 3
	red |= red >> 5
	grn |= grn >> 6
	blu |= blu >> 5
	red |= red << 8
	grn |= grn << 8
	blu |= blu << 8
	return uint32(red), uint32(grn), uint32(blu), 0xffff
}

func cbgr16Model(c color.Color) color.Color {
	switch c := c.(type) {
	case CBGR16:
		return c
	case RGB:
		return BGR565(c)
	default:
		r, g, b, _ := c.RGBA()
		b = (b & 0xF800)
		g = (g & 0xFC00) >> 5
		r = (r & 0xF800) >> 11
		return CBGR16{uint16(r | g | b)}
	}
}
