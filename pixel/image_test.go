package pixel

import (
	"image"
	"image/color"
	"math/rand"
	"testing"
)

func TestCBGR16Image(t *testing.T) {
	testImage(t, func(size image.Point) Image {
		return NewCBGR16Image(size.X, size.Y)
	}, CBGR16Model)
}

func TestCRGB16Image(t *testing.T) {
	testImage(t, func(size image.Point) Image {
		return NewCRGB16Image(size.X, size.Y)
	}, CRGB16Model)
}

func testImage(t *testing.T, f func(image.Point) Image, model color.Model) {
	t.Helper()
	testCases := []image.Point{
		{},
		image.Pt(1, 1),
		image.Pt(2, 2),
		image.Pt(320, 24),
	}
	for _, test := range testCases {
		t.Run(test.String(), func(it *testing.T) {
			i := f(test)

			if v := i.Bounds().Size(); !v.Eq(test) {
				it.Errorf("expected image size %s, got %s", test, v)
			}

			if v := i.ColorModel(); v != model {
				it.Errorf("expected color model %T, got %T", model, v)
			}

			it.Run("in-bounds", func(itt *testing.T) {
				for y := 0; y < test.Y; y++ {
					for x := 0; x < test.X; x++ {
						c := testRandomColor()
						i.Set(x, y, c)
						if v := i.ColorModel().Convert(c); i.At(x, y) != v {
							itt.Fatalf("pixel (%d,%d) is %#+v, expected %#+v (%v)", x, y, i.At(x, y), v, c)
						}
					}
				}
			})

			it.Run("out-bounds", func(itt *testing.T) {
				for y := -test.Y; y < test.Y*2; y++ {
					for x := -test.X; x < test.X*2; x++ {
						i.Set(x, y, testRandomColor())
						if x < 0 || y < 0 {
							if v := i.At(x, y); v != color.Transparent {
								itt.Fatalf("pixel (%d,%d) is %#+v, expected transparent", x, y, v)
							}
						}
					}
				}
			})

			it.Run("fill", func(itt *testing.T) {
				c := testRandomColor()
				i.Fill(c)
				if test.X > 0 && test.Y > 0 {
					x := rand.Intn(test.X)
					y := rand.Intn(test.Y)
					if v := i.ColorModel().Convert(c); i.At(x, y) != v {
						itt.Fatalf("pixel (%d,%d) is %#+v, expected %#+v (%v)", x, y, i.At(x, y), v, c)
					}
				}
			})

			it.Run("clear", func(itt *testing.T) {
				i.Clear()
				if test.X > 0 && test.Y > 0 {
					x := rand.Intn(test.X)
					y := rand.Intn(test.Y)
					if r, g, b, _ := i.At(x, y).RGBA(); r|g|b != 0 {
						itt.Fatalf("pixel (%d,%d) is not black", x, y)
					}
				}
			})
		})
	}
}

func testPalette() [256]RGB {
	var p [256]RGB
	for i := range p {
		p[i] = RGB{R: uint8(i), G: uint8(255 - i), B: uint8(i / 2)}
	}
	return p
}

func TestIndexed8Image(t *testing.T) {
	i := NewIndexed8Image(16, 8)
	i.Palette = testPalette()

	if v := i.Bounds().Size(); !v.Eq(image.Pt(16, 8)) {
		t.Fatalf("expected image size 16x8, got %s", v)
	}

	t.Run("index", func(it *testing.T) {
		for y := 0; y < 8; y++ {
			for x := 0; x < 16; x++ {
				want := uint8(x + y*16)
				i.Set(x, y, Index(want))
				if v := i.IndexAt(x, y); v != want {
					it.Fatalf("pixel (%d,%d) has index %d, expected %d", x, y, v, want)
				}
				if v := i.At(x, y); v != i.Palette[want] {
					it.Fatalf("pixel (%d,%d) is %v, expected %v", x, y, v, i.Palette[want])
				}
			}
		}
	})

	t.Run("nearest", func(it *testing.T) {
		i.Set(3, 3, color.RGBA{R: 200, G: 55, B: 100, A: 0xff})
		if v := i.IndexAt(3, 3); v != 200 {
			it.Errorf("expected nearest palette index 200, got %d", v)
		}
		if v := i.ColorModel().Convert(RGB{R: 10, G: 245, B: 5}); v != i.Palette[10] {
			it.Errorf("expected model to return palette entry 10, got %v", v)
		}
	})

	t.Run("out-bounds", func(it *testing.T) {
		i.SetIndex(-1, 0, 7)
		i.SetIndex(16, 0, 7)
		if v := i.At(-1, 0); v != color.Transparent {
			it.Errorf("expected transparent, got %v", v)
		}
		if v := i.IndexAt(0, 8); v != 0 {
			it.Errorf("expected index 0 outside bounds, got %d", v)
		}
	})

	t.Run("fill", func(it *testing.T) {
		i.Fill(Index(42))
		for _, v := range i.Pix {
			if v != 42 {
				it.Fatalf("expected every pixel to be 42, got %d", v)
			}
		}
		i.Clear()
		for _, v := range i.Pix {
			if v != 0 {
				it.Fatalf("expected every pixel to be 0, got %d", v)
			}
		}
	})
}

func TestIndexed8ImageExpand(t *testing.T) {
	src := NewIndexed8Image(4, 4)
	src.Palette = testPalette()
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetIndex(x, y, uint8(x*60+y))
		}
	}

	t.Run("crgb16", func(it *testing.T) {
		dst := NewCRGB16Image(4, 4)
		src.Expand(dst)
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				want := RGB565(src.Palette[x*60+y])
				if v := dst.At(x, y); v != want {
					it.Fatalf("pixel (%d,%d) is %#+v, expected %#+v", x, y, v, want)
				}
			}
		}
	})

	t.Run("cbgr16", func(it *testing.T) {
		dst := NewCBGR16Image(4, 4)
		src.Expand(dst)
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				want := BGR565(src.Palette[x*60+y])
				if v := dst.At(x, y); v != want {
					it.Fatalf("pixel (%d,%d) is %#+v, expected %#+v", x, y, v, want)
				}
			}
		}
	})

	t.Run("generic", func(it *testing.T) {
		dst := image.NewRGBA(image.Rect(0, 0, 2, 2))
		src.Expand(dst)
		want := src.Palette[60+1]
		if v := dst.RGBAAt(1, 1); v.R != want.R || v.G != want.G || v.B != want.B {
			it.Errorf("pixel (1,1) is %v, expected %v", v, want)
		}
	})
}

func testRandomColor() color.Color {
	return color.RGBA{
		R: uint8(rand.Intn(255)),
		G: uint8(rand.Intn(255)),
		B: uint8(rand.Intn(255)),
		A: 0xFF,
	}
}
