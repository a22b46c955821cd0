package animator

import (
	"math"

	"fortio.org/safecast"

	"github.com/BeatGlow/lchdisplay/draw"
	"github.com/BeatGlow/lchdisplay/palette"
	"github.com/BeatGlow/lchdisplay/pixel"
)

// DrawSwirl writes palette indices 1..255 around the centre of dst, so that
// slot i is drawn at the angle of its hue. The image then animates by palette
// changes alone.
func DrawSwirl(dst draw.Image) {
	var (
		b  = dst.Bounds()
		cx = float64(b.Min.X+b.Max.X-1) / 2
		cy = float64(b.Min.Y+b.Max.Y-1) / 2
	)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, SwirlIndex(float64(x)-cx, float64(y)-cy))
		}
	}
}

// SwirlIndex maps the angle of (dx, dy), counter clockwise from the positive
// x axis with y pointing down, onto the slots 1..255.
func SwirlIndex(dx, dy float64) pixel.Index {
	angle := math.Atan2(-dy, dx) * 180 / math.Pi
	if angle < 0 {
		angle += 360
	}
	i := int(angle * (palette.Size - 1) / 360)
	i = min(max(i, 0), palette.Size-2)
	return pixel.Index(safecast.MustConv[uint8](i + 1))
}
