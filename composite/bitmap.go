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

package composite

import (
	"image"
	"image/color"
)

// Draw blends src onto dst.  The point sp of src is aligned with dp in
// dst and every source pixel is first scaled by opacity/255.  Pixels
// outside either image are left alone.
func Draw(dst *image.RGBA, dp image.Point, src *image.RGBA, sp image.Point, mode BlendMode, opacity uint8) {
	r := src.Bounds().Sub(sp).Add(dp).Intersect(dst.Bounds())
	if r.Empty() || opacity == 0 {
		return
	}
	delta := sp.Sub(dp)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		di := dst.PixOffset(r.Min.X, y)
		si := src.PixOffset(r.Min.X+delta.X, y+delta.Y)
		for x := r.Min.X; x < r.Max.X; x++ {
			s := rgbaAt(src.Pix, si)
			if opacity != 255 {
				s = Scale(s, opacity)
			}
			setRGBA(dst.Pix, di, Over(rgbaAt(dst.Pix, di), s, mode))
			di += 4
			si += 4
		}
	}
}

// DrawMasked blends src onto dst like Draw, but scales each source pixel
// by the mask value at the same destination position.  Positions outside
// the mask bounds are treated as fully masked.
func DrawMasked(dst *image.RGBA, dp image.Point, src *image.RGBA, sp image.Point, mask *image.Alpha, mode BlendMode) {
	r := src.Bounds().Sub(sp).Add(dp).Intersect(dst.Bounds()).Intersect(mask.Bounds())
	delta := sp.Sub(dp)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m := mask.Pix[mask.PixOffset(x, y)]
			if m == 0 {
				continue
			}
			s := Scale(src.RGBAAt(x+delta.X, y+delta.Y), m)
			dst.SetRGBA(x, y, Over(dst.RGBAAt(x, y), s, mode))
		}
	}
}

// Knockout composites src onto dst for one element of a knockout group.
// The element is blended with the group's initial backdrop instead of the
// accumulated group content, and replaces earlier elements in proportion
// to its shape.  The shape of a pixel is estimated as its alpha divided
// by opacity, the constant alpha the element was painted with.
func Knockout(dst, initial *image.RGBA, src *image.RGBA, opacity uint8, mode BlendMode) {
	if opacity == 0 {
		return
	}
	r := src.Bounds().Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s := src.RGBAAt(x, y)
			if s.A == 0 {
				continue
			}
			blended := Over(initial.RGBAAt(x, y), s, mode)
			shape := min(uint32(s.A)*255/uint32(opacity), 255)
			if shape == 255 {
				dst.SetRGBA(x, y, blended)
				continue
			}
			dst.SetRGBA(x, y, lerp(dst.RGBAAt(x, y), blended, uint8(shape)))
		}
	}
}

func lerp(a, b color.RGBA, t uint8) color.RGBA {
	k := uint32(t)
	mix := func(u, v uint8) uint8 {
		return uint8(div255(uint32(u)*(255-k) + uint32(v)*k))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// MultiplyAlpha scales every pixel of img by a/255.
func MultiplyAlpha(img *image.RGBA, a uint8) {
	if a == 255 {
		return
	}
	for i := 0; i+3 < len(img.Pix); i += 4 {
		setRGBA(img.Pix, i, Scale(rgbaAt(img.Pix, i), a))
	}
}

// ApplyMask scales every pixel of img by the mask value at the same
// position.  Pixels outside the mask bounds become transparent.
func ApplyMask(img *image.RGBA, mask *image.Alpha) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			setRGBA(img.Pix, i, Scale(rgbaAt(img.Pix, i), mask.AlphaAt(x, y).A))
			i += 4
		}
	}
}

// Mix replaces every pixel of img by an interpolation between the
// backdrop pixel at the same position and itself, weighted by the mask
// value.  This is how the result of a non-isolated group replaces the
// backdrop it was painted on.
func Mix(img, backdrop *image.RGBA, mask *image.Alpha) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			m := mask.AlphaAt(x, y).A
			if m != 255 {
				setRGBA(img.Pix, i, lerp(backdrop.RGBAAt(x, y), rgbaAt(img.Pix, i), m))
			}
			i += 4
		}
	}
}

// MultiplyMask scales every value of dst by the value of src at the same
// position.  Positions outside src become zero.
func MultiplyMask(dst, src *image.Alpha) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := dst.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Pix[i] = uint8(div255(uint32(dst.Pix[i]) * uint32(src.AlphaAt(x, y).A)))
			i++
		}
	}
}

// LuminosityMask converts an opaque soft mask group into a mask, using
// the luminosity of each pixel.
func LuminosityMask(img *image.RGBA) *image.Alpha {
	b := img.Bounds()
	mask := image.NewAlpha(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		j := mask.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			p := img.Pix[i : i+3 : i+3]
			mask.Pix[j] = Gray(p[0], p[1], p[2])
			i += 4
			j++
		}
	}
	return mask
}

// AlphaMask extracts the alpha channel of img.
func AlphaMask(img *image.RGBA) *image.Alpha {
	b := img.Bounds()
	mask := image.NewAlpha(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		j := mask.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			mask.Pix[j] = img.Pix[i+3]
			i += 4
			j++
		}
	}
	return mask
}

// Gray returns the luminosity of an RGB triple, with the usual
// 0.299/0.587/0.114 weights.
func Gray(r, g, b uint8) uint8 {
	return uint8((uint32(r)*299 + uint32(g)*587 + uint32(b)*114 + 500) / 1000)
}

func rgbaAt(pix []uint8, i int) color.RGBA {
	p := pix[i : i+4 : i+4]
	return color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

func setRGBA(pix []uint8, i int, c color.RGBA) {
	p := pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
}
