package pixel

import (
	"image/color"
	"testing"
)

func TestRGB(t *testing.T) {
	for _, test := range []RGB{
		{},
		{R: 0xff},
		{G: 0x80},
		{B: 0x01},
		{R: 0x12, G: 0x34, B: 0x56},
	} {
		t.Run("", func(it *testing.T) {
			r, g, b, a := test.RGBA()
			if want := uint32(test.R) * 0x101; r != want {
				it.Errorf("expected red to be %#04x, got %#04x", want, r)
			}
			if want := uint32(test.G) * 0x101; g != want {
				it.Errorf("expected green to be %#04x, got %#04x", want, g)
			}
			if want := uint32(test.B) * 0x101; b != want {
				it.Errorf("expected blue to be %#04x, got %#04x", want, b)
			}
			if a != 0xffff {
				it.Errorf("expected opaque alpha, got %#04x", a)
			}
			if v := RGBModel.Convert(color.NRGBA{R: test.R, G: test.G, B: test.B, A: 0xff}); v != test {
				it.Errorf("expected model to return %v, got %v", test, v)
			}
		})
	}
}

func TestIndex(t *testing.T) {
	for y := 0; y < 256; y++ {
		c := Index(y)
		r, g, b, _ := c.RGBA()
		want := uint32(y | y<<8)
		if r != want || g != want || b != want {
			t.Fatalf("expected index %d to be gray %#04x, got %#04x %#04x %#04x", y, want, r, g, b)
		}
		if v := IndexModel.Convert(c); v != c {
			t.Fatalf("expected index model to keep %d, got %v", y, v)
		}
	}
	if v := IndexModel.Convert(color.White); v != Index(0xff) {
		t.Errorf("expected white to map onto index 255, got %v", v)
	}
}

func TestRGB565(t *testing.T) {
	tests := []struct {
		c    RGB
		want uint16
	}{
		{RGB{}, 0x0000},
		{RGB{0xff, 0xff, 0xff}, 0xffff},
		{RGB{0xff, 0x00, 0x00}, 0xf800},
		{RGB{0x00, 0xff, 0x00}, 0x07e0},
		{RGB{0x00, 0x00, 0xff}, 0x001f},
		{RGB{147, 0, 60}, 0x9007},
	}
	for _, test := range tests {
		if v := RGB565(test.c).V; v != test.want {
			t.Errorf("expected %v to pack to %#04x, got %#04x", test.c, test.want, v)
		}
		if v := CRGB16Model.Convert(test.c).(CRGB16).V; v != test.want {
			t.Errorf("expected model to pack %v to %#04x, got %#04x", test.c, test.want, v)
		}
	}
}

func TestBGR565(t *testing.T) {
	tests := []struct {
		c    RGB
		want uint16
	}{
		{RGB{0xff, 0x00, 0x00}, 0x001f},
		{RGB{0x00, 0xff, 0x00}, 0x07e0},
		{RGB{0x00, 0x00, 0xff}, 0xf800},
	}
	for _, test := range tests {
		if v := BGR565(test.c).V; v != test.want {
			t.Errorf("expected %v to pack to %#04x, got %#04x", test.c, test.want, v)
		}
		r, _, b, _ := CBGR16{test.want}.RGBA()
		if test.c.R == 0xff && r != 0xffff {
			t.Errorf("expected red channel to be full, got %#04x", r)
		}
		if test.c.B == 0xff && b != 0xffff {
			t.Errorf("expected blue channel to be full, got %#04x", b)
		}
	}
}
