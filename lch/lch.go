// Package lch converts cylindrical CIELAB colors (lightness, chroma, hue) into
// 8-bit sRGB display colors.
//
// The conversion is a fixed pipeline: LCh to Lab, Lab to XYZ relative to the
// D65 white point, XYZ to linear sRGB, sRGB companding and finally
// quantization to 0..255. Every stage is exported so that callers can inspect
// intermediate values; [Convert] runs all of them.
//
// Lightness and chroma are normalised: L is in [0, 1] and C is roughly in
// [0, 2]. Both are scaled by 100 into CIELAB units before the Lab stage, so
// L = 0.5 is L* = 50.
package lch

import (
	"math"

	"fortio.org/safecast"

	"github.com/BeatGlow/lchdisplay/pixel"
)

// Scale converts normalised lightness and chroma into CIELAB units.
const Scale = 100

// D65 reference white.
const (
	WhiteX = 0.95047
	WhiteY = 1.0
	WhiteZ = 1.08883
)

// CIE linearization constants.
const (
	Epsilon = 0.008856
	Kappa   = 903.3
)

const (
	// Companding threshold of the sRGB transfer function.
	linearThreshold = 0.0031308

	degToRad = math.Pi / 180
)

// xyzToLinear is the XYZ to linear sRGB matrix (D65), one row per output channel.
var xyzToLinear = [3][3]float64{
	{3.2404542, -1.5371385, -0.4985314},
	{-0.9692660, 1.8760108, 0.0415560},
	{0.0556434, -0.2040259, 1.0572252},
}

// Color is a perceptual color with normalised lightness L, chroma C and hue H
// in degrees.
type Color struct {
	L, C, H float64
}

// RGB converts c to a display color.
func (c Color) RGB() pixel.RGB {
	return Convert(c.L, c.C, c.H)
}

// Lab holds CIELAB coordinates in CIE units (L* in [0, 100]).
type Lab struct {
	L, A, B float64
}

// XYZ holds CIE XYZ tristimulus values relative to Y = 1.
type XYZ struct {
	X, Y, Z float64
}

// Linear holds linear-light sRGB components, nominally in [0, 1].
type Linear struct {
	R, G, B float64
}

// Convert maps normalised lightness l, chroma c and hue h (degrees) to an
// 8-bit sRGB color. It never fails: components outside the sRGB gamut are
// clamped.
func Convert(l, c, h float64) pixel.RGB {
	return Quantize(Compand(XYZToLinear(LabToXYZ(ToLab(l, c, h)))))
}

// InGamut reports whether the color is representable in sRGB without clamping.
func InGamut(l, c, h float64) bool {
	v := XYZToLinear(LabToXYZ(ToLab(l, c, h)))
	for _, x := range [3]float64{v.R, v.G, v.B} {
		if x < 0 || x > 1 {
			return false
		}
	}
	return true
}

// NormalizeHue wraps h into [0, 360).
func NormalizeHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		return 0
	}
	return h
}

// ToLab converts normalised LCh into Lab.
func ToLab(l, c, h float64) Lab {
	rad := NormalizeHue(h) * degToRad
	c *= Scale
	return Lab{
		L: l * Scale,
		A: c * math.Cos(rad),
		B: c * math.Sin(rad),
	}
}

// LabToXYZ converts Lab into XYZ relative to the D65 white point.
func LabToXYZ(lab Lab) XYZ {
	fy := (lab.L + 16) / 116
	fx := lab.A/500 + fy
	fz := fy - lab.B/200

	xr := fx * fx * fx
	if xr <= Epsilon {
		xr = (116*fx - 16) / Kappa
	}

	var yr float64
	if lab.L > Kappa*Epsilon {
		yr = fy * fy * fy
	} else {
		yr = lab.L / Kappa
	}

	zr := fz * fz * fz
	if zr <= Epsilon {
		zr = (116*fz - 16) / Kappa
	}

	return XYZ{
		X: xr * WhiteX,
		Y: yr * WhiteY,
		Z: zr * WhiteZ,
	}
}

// XYZToLinear converts XYZ into linear sRGB.
func XYZToLinear(v XYZ) Linear {
	m := &xyzToLinear
	return Linear{
		R: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		G: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		B: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Compand applies the sRGB transfer function to every channel.
func Compand(v Linear) Linear {
	return Linear{
		R: compand(v.R),
		G: compand(v.G),
		B: compand(v.B),
	}
}

func compand(v float64) float64 {
	if v <= linearThreshold {
		return 12.92 * v
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

// Quantize scales companded channels to 0..255, clamps and truncates.
func Quantize(v Linear) pixel.RGB {
	return pixel.RGB{
		R: quantize(v.R),
		G: quantize(v.G),
		B: quantize(v.B),
	}
}

func quantize(v float64) uint8 {
	v *= 255
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	}
	return safecast.MustConv[uint8](int(v))
}
