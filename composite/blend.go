// seehuhn.de/go/render - a progressive renderer for PDF page content
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package composite implements the PDF blend modes on premultiplied
// 8-bit RGBA pixels.
//
// All functions use the compositing formula of the PDF specification,
//
//	r = (1-αb)·s + (1-αs)·b + αs·αb·B(Cb, Cs)
//	αr = αs + αb - αs·αb
//
// where s and b are premultiplied and Cb, Cs are the unmultiplied colors.
package composite

import (
	"image/color"
	"math"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/graphics"
)

// BlendMode is one of the 16 blend modes defined for PDF.
type BlendMode uint8

// The PDF blend modes.
const (
	Normal BlendMode = iota
	Multiply
	Screen
	Overlay
	Darken
	Lighten
	ColorDodge
	ColorBurn
	HardLight
	SoftLight
	Difference
	Exclusion
	Hue
	Saturation
	Color
	Luminosity
)

var modeNames = [...]pdf.Name{
	Normal:     graphics.BlendModeNormal,
	Multiply:   graphics.BlendModeMultiply,
	Screen:     graphics.BlendModeScreen,
	Overlay:    graphics.BlendModeOverlay,
	Darken:     graphics.BlendModeDarken,
	Lighten:    graphics.BlendModeLighten,
	ColorDodge: graphics.BlendModeColorDodge,
	ColorBurn:  graphics.BlendModeColorBurn,
	HardLight:  graphics.BlendModeHardLight,
	SoftLight:  graphics.BlendModeSoftLight,
	Difference: graphics.BlendModeDifference,
	Exclusion:  graphics.BlendModeExclusion,
	Hue:        graphics.BlendModeHue,
	Saturation: graphics.BlendModeSaturation,
	Color:      graphics.BlendModeColor,
	Luminosity: graphics.BlendModeLuminosity,
}

// ParseBlendMode converts the blend mode of a graphics state.  In the
// array form the first recognised name is used.  "Compatible" selects
// Normal.  The second return value is false if no name was recognised, in
// which case the mode is Normal.
func ParseBlendMode(bm graphics.BlendMode) (BlendMode, bool) {
	for _, name := range bm {
		if m, ok := parseName(name); ok {
			return m, true
		}
	}
	return Normal, false
}

func parseName(name pdf.Name) (BlendMode, bool) {
	if name == graphics.BlendModeCompatible {
		return Normal, true
	}
	for m, n := range modeNames {
		if n == name {
			return BlendMode(m), true
		}
	}
	return Normal, false
}

func (m BlendMode) String() string {
	if int(m) < len(modeNames) {
		return string(modeNames[m])
	}
	return "BlendMode(" + itoa(int(m)) + ")"
}

// Name returns the PDF name of the blend mode.
func (m BlendMode) Name() pdf.Name {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "Normal"
}

// IsSeparable reports whether the mode acts on each channel independently.
func (m BlendMode) IsSeparable() bool {
	return m < Hue
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	k := len(buf)
	for i > 0 {
		k--
		buf[k] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[k:])
}

// Over composites the premultiplied source pixel s onto b.
func Over(b, s color.RGBA, mode BlendMode) color.RGBA {
	if s.A == 0 {
		return b
	}
	if mode == Normal || b.A == 0 {
		k := 255 - uint32(s.A)
		return color.RGBA{
			R: uint8(uint32(s.R) + div255(uint32(b.R)*k)),
			G: uint8(uint32(s.G) + div255(uint32(b.G)*k)),
			B: uint8(uint32(s.B) + div255(uint32(b.B)*k)),
			A: uint8(uint32(s.A) + div255(uint32(b.A)*k)),
		}
	}

	as := float64(s.A) / 255
	ab := float64(b.A) / 255
	cs := [3]float64{float64(s.R) / float64(s.A), float64(s.G) / float64(s.A), float64(s.B) / float64(s.A)}
	cb := [3]float64{float64(b.R) / float64(b.A), float64(b.G) / float64(b.A), float64(b.B) / float64(b.A)}

	var mixed [3]float64
	if mode.IsSeparable() {
		for i := range 3 {
			mixed[i] = blendChannel(mode, cb[i], cs[i])
		}
	} else {
		mixed = blendNonSeparable(mode, cb, cs)
	}

	var out [3]uint8
	for i := range 3 {
		v := (1-ab)*as*cs[i] + (1-as)*ab*cb[i] + as*ab*mixed[i]
		out[i] = to8(v)
	}
	return color.RGBA{R: out[0], G: out[1], B: out[2], A: to8(as + ab - as*ab)}
}

func blendChannel(mode BlendMode, cb, cs float64) float64 {
	switch mode {
	case Multiply:
		return cb * cs
	case Screen:
		return cb + cs - cb*cs
	case Overlay:
		return hardLight(cs, cb)
	case Darken:
		return min(cb, cs)
	case Lighten:
		return max(cb, cs)
	case ColorDodge:
		switch {
		case cb == 0:
			return 0
		case cs >= 1:
			return 1
		default:
			return min(1, cb/(1-cs))
		}
	case ColorBurn:
		switch {
		case cb >= 1:
			return 1
		case cs <= 0:
			return 0
		default:
			return 1 - min(1, (1-cb)/cs)
		}
	case HardLight:
		return hardLight(cb, cs)
	case SoftLight:
		if cs <= 0.5 {
			return cb - (1-2*cs)*cb*(1-cb)
		}
		var d float64
		if cb <= 0.25 {
			d = ((16*cb-12)*cb + 4) * cb
		} else {
			d = math.Sqrt(cb)
		}
		return cb + (2*cs-1)*(d-cb)
	case Difference:
		return math.Abs(cb - cs)
	case Exclusion:
		return cb + cs - 2*cb*cs
	default:
		return cs
	}
}

func hardLight(cb, cs float64) float64 {
	if cs <= 0.5 {
		return cb * 2 * cs
	}
	s := 2*cs - 1
	return cb + s - cb*s
}

func blendNonSeparable(mode BlendMode, cb, cs [3]float64) [3]float64 {
	switch mode {
	case Hue:
		return setLum(setSat(cs, sat(cb)), lum(cb))
	case Saturation:
		return setLum(setSat(cb, sat(cs)), lum(cb))
	case Color:
		return setLum(cs, lum(cb))
	default: // Luminosity
		return setLum(cb, lum(cs))
	}
}

func lum(c [3]float64) float64 {
	return 0.3*c[0] + 0.59*c[1] + 0.11*c[2]
}

func setLum(c [3]float64, l float64) [3]float64 {
	d := l - lum(c)
	c = [3]float64{c[0] + d, c[1] + d, c[2] + d}

	l = lum(c)
	n := min(c[0], c[1], c[2])
	x := max(c[0], c[1], c[2])
	for i := range c {
		if n < 0 {
			c[i] = l + (c[i]-l)*l/(l-n)
		}
		if x > 1 {
			c[i] = l + (c[i]-l)*(1-l)/(x-l)
		}
	}
	return c
}

func sat(c [3]float64) float64 {
	return max(c[0], c[1], c[2]) - min(c[0], c[1], c[2])
}

func setSat(c [3]float64, s float64) [3]float64 {
	iMax, iMin := 0, 0
	for i := 1; i < 3; i++ {
		if c[i] > c[iMax] {
			iMax = i
		}
		if c[i] < c[iMin] {
			iMin = i
		}
	}
	if iMax == iMin {
		return [3]float64{}
	}
	iMid := 3 - iMax - iMin
	var out [3]float64
	out[iMid] = (c[iMid] - c[iMin]) * s / (c[iMax] - c[iMin])
	out[iMax] = s
	return out
}

// div255 divides by 255 with rounding, for x ≤ 255·255.
func div255(x uint32) uint32 {
	x += 128
	return (x + x>>8) >> 8
}

func to8(v float64) uint8 {
	v = math.Round(v * 255)
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// Scale multiplies all channels of a premultiplied pixel by a/255.
func Scale(c color.RGBA, a uint8) color.RGBA {
	if a == 255 {
		return c
	}
	k := uint32(a)
	return color.RGBA{
		R: uint8(div255(uint32(c.R) * k)),
		G: uint8(div255(uint32(c.G) * k)),
		B: uint8(div255(uint32(c.B) * k)),
		A: uint8(div255(uint32(c.A) * k)),
	}
}

// Premultiply converts a non-premultiplied color.
func Premultiply(c color.NRGBA) color.RGBA {
	return Scale(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}, c.A)
}

// Alpha8 converts an opacity in [0, 1] to 8 bits.
func Alpha8(alpha float64) uint8 {
	return to8(alpha)
}
