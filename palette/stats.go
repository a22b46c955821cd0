package palette

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/BeatGlow/lchdisplay/lch"
	"github.com/BeatGlow/lchdisplay/pixel"
)

// Stats describes how evenly a filled table covers the hue circle.
type Stats struct {
	// MinStep, MaxStep and MeanStep are CIEDE2000 distances between
	// neighbouring hue slots, including the wrap from slot 255 to slot 1.
	MinStep, MaxStep, MeanStep float64

	// Clipped counts slots whose color lies outside sRGB and was clamped.
	Clipped int
}

func (s Stats) String() string {
	return fmt.Sprintf("step %.2f..%.2f (mean %.2f), %d clipped", s.MinStep, s.MaxStep, s.MeanStep, s.Clipped)
}

// Measure computes Stats for t, which was filled with lightness l and chroma c.
func Measure(t *Table, l, c float64) Stats {
	s := Stats{MinStep: math.Inf(1)}
	var sum float64
	for i := 1; i < Size; i++ {
		j := i + 1
		if j == Size {
			j = 1
		}
		d := toColorful(t[i]).DistanceCIEDE2000(toColorful(t[j]))
		s.MinStep = math.Min(s.MinStep, d)
		s.MaxStep = math.Max(s.MaxStep, d)
		sum += d

		if !lch.InGamut(l, c, Hue(i)) {
			s.Clipped++
		}
	}
	s.MeanStep = sum / (Size - 1)
	return s
}

func toColorful(c pixel.RGB) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}
