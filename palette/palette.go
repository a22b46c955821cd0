// Package palette fills 256-entry color lookup tables with hue sweeps.
package palette

import (
	"fortio.org/safecast"

	"github.com/BeatGlow/lchdisplay/lch"
	"github.com/BeatGlow/lchdisplay/pixel"
)

// Size is the number of slots in a Table.
const Size = 256

// Background is the slot reserved for black; it is never part of the sweep.
const Background = 0

// Table is an indexed color lookup table. Slot 0 is the background, slots
// 1..255 hold one hue sample each.
type Table [Size]pixel.RGB

// Sink receives palette entries, typically a display's color lookup table.
type Sink interface {
	SetEntry(index uint8, c pixel.RGB)
}

// Hue returns the hue angle in degrees sampled by slot i.
func Hue(i int) float64 {
	return 360 * float64(i) / (Size - 1)
}

// Fill overwrites every slot of t for lightness l and chroma c.
func Fill(t *Table, l, c float64) {
	t[Background] = pixel.Black
	for i := 1; i < Size; i++ {
		t[i] = lch.Convert(l, c, Hue(i))
	}
}

// New returns a filled table.
func New(l, c float64) *Table {
	t := new(Table)
	Fill(t, l, c)
	return t
}

// Apply writes all slots of t into s, in index order.
func (t *Table) Apply(s Sink) {
	for i, c := range t {
		s.SetEntry(safecast.MustConv[uint8](i), c)
	}
}
