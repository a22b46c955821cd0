package display

import (
	"image"
	"image/color"
	"log"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"

	"github.com/BeatGlow/lchdisplay/draw"
)

// DefaultLabelSize is the point size of the default status font.
const DefaultLabelSize = 12

// Label renders a single line of text on a black bar at the bottom of an image.
type Label struct {
	face    font.Face
	ascent  int
	height  int
	padding int
}

// NewLabel parses a TrueType font and returns a Label rendering it at size points.
func NewLabel(ttf []byte, size float64) (*Label, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	return newLabel(truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})), nil
}

func newLabel(face font.Face) *Label {
	m := face.Metrics()
	return &Label{
		face:    face,
		ascent:  m.Ascent.Ceil(),
		height:  (m.Ascent + m.Descent).Ceil(),
		padding: 2,
	}
}

var (
	defaultLabel     *Label
	defaultLabelOnce sync.Once
)

// DefaultLabel renders Go Mono, or the built-in 7x13 bitmap font if Go Mono
// cannot be parsed.
func DefaultLabel() *Label {
	defaultLabelOnce.Do(func() {
		var err error
		if defaultLabel, err = NewLabel(gomono.TTF, DefaultLabelSize); err != nil {
			if debug {
				log.Printf("display: default label font: %v", err)
			}
			defaultLabel = newLabel(basicfont.Face7x13)
		}
	})
	return defaultLabel
}

// Height of the bar in pixels.
func (l *Label) Height() int {
	return l.height + 2*l.padding
}

// Bar is the rectangle covered by the label inside bounds.
func (l *Label) Bar(bounds image.Rectangle) image.Rectangle {
	bar := bounds
	bar.Min.Y = bar.Max.Y - l.Height()
	return bar.Intersect(bounds)
}

// Draw paints the bar and text onto dst. Text wider than dst is clipped.
func (l *Label) Draw(dst draw.Image, text string, c color.Color) {
	bar := l.Bar(dst.Bounds())
	if bar.Empty() {
		return
	}
	draw.Box(dst, bar, color.Black)
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: l.face,
		Dot:  fixed.P(bar.Min.X+l.padding, bar.Min.Y+l.padding+l.ascent),
	}
	d.DrawString(text)
}
