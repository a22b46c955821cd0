package palette

import (
	"testing"

	"github.com/BeatGlow/lchdisplay/lch"
	"github.com/BeatGlow/lchdisplay/pixel"
)

type recordingSink struct {
	entries [Size]pixel.RGB
	order   []uint8
}

func (s *recordingSink) SetEntry(index uint8, c pixel.RGB) {
	s.entries[index] = c
	s.order = append(s.order, index)
}

func TestFillBackground(t *testing.T) {
	for _, test := range []struct{ l, c float64 }{
		{0, 0},
		{0.24, 0.76},
		{1, 0},
		{0.4, 1.9},
	} {
		var table Table
		for i := range table {
			table[i] = pixel.RGB{R: 1, G: 2, B: 3}
		}
		Fill(&table, test.l, test.c)
		if table[Background] != pixel.Black {
			t.Errorf("L=%g C=%g: expected slot 0 to be black, got %v", test.l, test.c, table[0])
		}
	}
}

func TestFillSlots(t *testing.T) {
	table := New(0.24, 0.76)
	for i := 1; i < Size; i++ {
		if want := lch.Convert(0.24, 0.76, Hue(i)); table[i] != want {
			t.Fatalf("slot %d: expected %v, got %v", i, want, table[i])
		}
	}

	// Slots 85 and 170 sample hue 120 and 240 exactly, slot 255 wraps to 0.
	for _, test := range []struct {
		slot int
		want pixel.RGB
	}{
		{85, pixel.RGB{R: 16, G: 68, B: 0}},
		{170, pixel.RGB{R: 0, G: 76, B: 158}},
		{255, pixel.RGB{R: 147, G: 0, B: 60}},
	} {
		if table[test.slot] != test.want {
			t.Errorf("slot %d: expected %v, got %v", test.slot, test.want, table[test.slot])
		}
	}
}

func TestFillDeterministic(t *testing.T) {
	a, b := New(0.3, 1.1), New(0.3, 1.1)
	if *a != *b {
		t.Fatal("expected identical tables for identical L and C")
	}

	// Refilling overwrites every slot.
	Fill(a, 0.5, 0)
	for i := 1; i < Size; i++ {
		if a[i] != a[1] {
			t.Fatalf("slot %d: expected achromatic table to be uniform, got %v and %v", i, a[i], a[1])
		}
	}
	Fill(a, 0.3, 1.1)
	if *a != *b {
		t.Fatal("expected refill to restore the original table")
	}
}

func TestHue(t *testing.T) {
	if v := Hue(0); v != 0 {
		t.Errorf("expected hue 0 for slot 0, got %g", v)
	}
	if v := Hue(85); v != 120 {
		t.Errorf("expected hue 120 for slot 85, got %g", v)
	}
	if v := Hue(255); v != 360 {
		t.Errorf("expected hue 360 for slot 255, got %g", v)
	}
}

func TestApply(t *testing.T) {
	table := New(0.24, 0.76)
	sink := new(recordingSink)
	table.Apply(sink)
	if len(sink.order) != Size {
		t.Fatalf("expected %d entries, got %d", Size, len(sink.order))
	}
	for i, index := range sink.order {
		if int(index) != i {
			t.Fatalf("expected entry %d to be written in order, got %d", i, index)
		}
	}
	if sink.entries != *table {
		t.Error("expected sink to hold the table")
	}
}

func TestMeasure(t *testing.T) {
	gray := Measure(New(0.5, 0), 0.5, 0)
	if gray.MaxStep > 1e-9 || gray.Clipped != 0 {
		t.Errorf("expected an achromatic table to have no steps and no clipping, got %s", gray)
	}

	vivid := Measure(New(0.24, 0.76), 0.24, 0.76)
	if vivid.Clipped == 0 {
		t.Errorf("expected a high chroma table to clip, got %s", vivid)
	}
	if !(vivid.MinStep <= vivid.MeanStep && vivid.MeanStep <= vivid.MaxStep) {
		t.Errorf("expected min <= mean <= max, got %s", vivid)
	}
	if vivid.MaxStep <= 0 {
		t.Errorf("expected distinct neighbouring hues, got %s", vivid)
	}

	muted := Measure(New(0.6, 0.1), 0.6, 0.1)
	if muted.Clipped != 0 {
		t.Errorf("expected a low chroma table to stay inside sRGB, got %s", muted)
	}
}
