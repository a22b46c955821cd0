package pixel

import (
	"encoding/binary"
	"image"
	"image/color"

	"github.com/BeatGlow/lchdisplay/draw"
)

type Image interface {
	draw.Image

	// Clear the image.
	Clear()

	// Fill the image with a single color.
	Fill(color.Color)
}

// Buffer holds the pixel values and is a container that is used by most image formats in this package.
type Buffer struct {
	// Rect is the image bounding box.
	Rect image.Rectangle

	// Pix are the image pixels.
	Pix []byte

	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
}

func (p *Buffer) Bounds() image.Rectangle {
	return p.Rect
}

func (p *Buffer) Clear() {
	for i := range p.Pix {
		p.Pix[i] = 0x00
	}
}

func makeBuffer(w, h, stride, size int) Buffer {
	return Buffer{
		Rect:   image.Rect(0, 0, w, h),
		Pix:    make([]byte, size),
		Stride: stride,
	}
}

// Indexed8Image is an 8-bits per pixel image where every pixel is an index
// into a 256 entry palette.
type Indexed8Image struct {
	Buffer
	Palette [256]RGB
}

func NewIndexed8Image(w, h int) *Indexed8Image {
	return &Indexed8Image{
		Buffer: makeBuffer(w, h, w, w*h),
	}
}

// ColorModel maps colors onto the nearest palette entry.
func (p *Indexed8Image) ColorModel() color.Model {
	return color.ModelFunc(func(c color.Color) color.Color {
		if i, ok := c.(Index); ok {
			return p.Palette[i]
		}
		return p.Palette[p.nearest(c)]
	})
}

func (p *Indexed8Image) nearest(c color.Color) uint8 {
	if i, ok := c.(Index); ok {
		return uint8(i)
	}
	want := rgbModel(c).(RGB)
	var (
		best     int
		bestDist = -1
	)
	for i, e := range p.Palette {
		dr := int(e.R) - int(want.R)
		dg := int(e.G) - int(want.G)
		db := int(e.B) - int(want.B)
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			best, bestDist = i, dist
			if dist == 0 {
				break
			}
		}
	}
	return uint8(best)
}

func (p *Indexed8Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}
	return p.Palette[p.Pix[y*p.Stride+x]]
}

// IndexAt returns the palette index of the pixel at (x, y).
func (p *Indexed8Image) IndexAt(x, y int) uint8 {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return 0
	}
	return p.Pix[y*p.Stride+x]
}

func (p *Indexed8Image) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	p.Pix[y*p.Stride+x] = p.nearest(c)
}

// SetIndex writes a raw palette index at (x, y).
func (p *Indexed8Image) SetIndex(x, y int, index uint8) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	p.Pix[y*p.Stride+x] = index
}

func (p *Indexed8Image) Fill(c color.Color) {
	value := p.nearest(c)
	for i := range p.Pix {
		p.Pix[i] = value
	}
}

// Expand converts every pixel through the palette into dst. The 16-bit images
// of this package are written directly, anything else goes through dst.Set.
func (p *Indexed8Image) Expand(dst draw.Image) {
	r := p.Rect.Intersect(dst.Bounds())
	switch dst := dst.(type) {
	case *CRGB16Image:
		var lut [256]uint16
		for i, e := range p.Palette {
			lut[i] = RGB565(e).V
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				dst.Order.PutUint16(dst.Pix[x*2+y*dst.Stride:], lut[p.Pix[y*p.Stride+x]])
			}
		}
	case *CBGR16Image:
		var lut [256]uint16
		for i, e := range p.Palette {
			lut[i] = BGR565(e).V
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				dst.Order.PutUint16(dst.Pix[x*2+y*dst.Stride:], lut[p.Pix[y*p.Stride+x]])
			}
		}
	default:
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				dst.Set(x, y, p.Palette[p.Pix[y*p.Stride+x]])
			}
		}
	}
}

// CBGR16Image is a 16-bits per pixel 5-6-5-bit BGR image.
type CBGR16Image struct {
	Buffer
	Order binary.ByteOrder
}

func NewCBGR16Image(w, h int) *CBGR16Image {
	return &CBGR16Image{
		Buffer: makeBuffer(w, h, w*2, w*2*h),
		Order:  binary.BigEndian,
	}
}

func (p *CBGR16Image) ColorModel() color.Model {
	return CBGR16Model
}

func (p *CBGR16Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}

	v := p.Order.Uint16(p.Pix[x*2+y*p.Stride:])
	return CBGR16{v}
}

func (p *CBGR16Image) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}

	v := cbgr16Model(c).(CBGR16).V
	p.Order.PutUint16(p.Pix[x*2+y*p.Stride:], v)
}

func (p *CBGR16Image) Fill(c color.Color) {
	value := cbgr16Model(c).(CBGR16).V
	bytes := make([]byte, 2)
	p.Order.PutUint16(bytes, value)
	for i, l := 0, len(p.Pix); i < l; i += 2 {
		copy(p.Pix[i:], bytes)
	}
}

// CRGB16Image is a 16-bits per pixel 5-6-5-bit RGB image.
type CRGB16Image struct {
	Buffer
	Order binary.ByteOrder
}

func NewCRGB16Image(w, h int) *CRGB16Image {
	return &CRGB16Image{
		Buffer: makeBuffer(w, h, w*2, w*2*h),
		Order:  binary.BigEndian,
	}
}

func (p *CRGB16Image) ColorModel() color.Model {
	return CRGB16Model
}

func (p *CRGB16Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}

	v := p.Order.Uint16(p.Pix[x*2+y*p.Stride:])
	return CRGB16{v}
}

func (p *CRGB16Image) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}

	v := crgb16Model(c).(CRGB16).V
	p.Order.PutUint16(p.Pix[x*2+y*p.Stride:], v)
}

func (p *CRGB16Image) Fill(c color.Color) {
	value := crgb16Model(c).(CRGB16).V
	bytes := make([]byte, 2)
	p.Order.PutUint16(bytes, value)
	for i, l := 0, len(p.Pix); i < l; i += 2 {
		copy(p.Pix[i:], bytes)
	}
}

// Interface checks.
var (
	_ Image = (*Indexed8Image)(nil)
	_ Image = (*CBGR16Image)(nil)
	_ Image = (*CRGB16Image)(nil)
)
