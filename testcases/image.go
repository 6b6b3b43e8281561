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

package testcases

import (
	"image"
	"image/color"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"

	"seehuhn.de/go/render"
	"seehuhn.de/go/render/codec"
	"seehuhn.de/go/render/device"
	"seehuhn.de/go/render/object"
)

// pdfPage maps PDF user space, with the origin at the bottom left, to a
// canvas of the given height.
func pdfPage(height float64) matrix.Matrix {
	return matrix.Matrix{1, 0, 0, -1, 0, height}
}

var imageCases = []Scenario{
	{
		Name:   "axis_aligned",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			img := placeImage(rgbResource(1, codec.Static{Image: Checker(8, 8, 2)}), matrix.Scale(48, 48).Mul(matrix.Translate(8, 8)))
			return []render.Layer{{Objects: object.Slice{img}, Matrix: pdfPage(64)}}
		},
	},
	{
		Name:   "rotated",
		Width:  64,
		Height: 64,
		Layers: page(placeImage(rgbResource(2, codec.Static{Image: Checker(8, 8, 2)}), rotated(40, 30))),
	},
	{
		Name:   "steppable_decode",
		Width:  64,
		Height: 64,
		Layers: page(placeImage(rgbResource(3, codec.Rows{Image: Checker(16, 16, 4), RowsPerStep: 3}), rotated(44, -20))),
	},
	{
		Name:   "interpolate",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			res := rgbResource(4, codec.Static{Image: Checker(4, 4, 1)})
			res.Interpolate = true
			return page(placeImage(res, matrix.Scale(56, 56).Mul(matrix.Translate(4, 4))))()
		},
	},
	{
		Name:   "color_key",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			res := rgbResource(5, codec.Static{Image: Checker(8, 8, 2)})
			res.ColorKey = []uint8{250, 255, 250, 255, 250, 255}
			backdrop := fill(rectangle(0, 0, 64, 64), blue, device.NonZero)
			return page(backdrop, placeImage(res, matrix.Scale(48, 48).Mul(matrix.Translate(8, 8))))()
		},
	},
	{
		Name:   "soft_mask",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			res := rgbResource(6, codec.Static{Image: Checker(8, 8, 2)})
			res.Mask = &object.ImageResource{
				Ref:              pdf.NewReference(7, 0),
				Source:           codec.Static{Image: ramp(16, 16)},
				Width:            16,
				Height:           16,
				BitsPerComponent: 8,
				Components:       1,
			}
			backdrop := fill(rectangle(0, 24, 64, 40), green, device.NonZero)
			return page(backdrop, placeImage(res, matrix.Scale(48, 48).Mul(matrix.Translate(8, 8))))()
		},
	},
	{
		Name:   "stencil",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			img := placeImage(stencilResource(8), matrix.Scale(56, 56).Mul(matrix.Translate(4, 4)))
			img.Fill = red
			return page(img)()
		},
	},
	{
		Name:   "stencil_pattern",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			img := placeImage(stencilResource(9), rotated(50, 15))
			img.FillPattern = &object.Pattern{
				Shader: &object.Axial{From: pt(0, 0), To: pt(0, 64), C0: yellow, C1: blue, Extend: [2]bool{true, true}},
				Matrix: matrix.Identity,
			}
			return page(img)()
		},
	},
}

// rotated places a square image of the given size, rotated about the
// canvas centre.
func rotated(size, deg float64) matrix.Matrix {
	return matrix.Scale(size, size).
		Mul(matrix.Translate(-size/2, -size/2)).
		Mul(matrix.RotateDeg(deg)).
		Mul(matrix.Translate(32, 32))
}

func placeImage(res *object.ImageResource, m matrix.Matrix) *object.Image {
	return &object.Image{PaintState: object.DefaultPaint(), Resource: res, Matrix: m}
}

func rgbResource(num uint32, src codec.Source) *object.ImageResource {
	b, _ := boundsOf(src)
	return &object.ImageResource{
		Ref:              pdf.NewReference(num, 0),
		Source:           src,
		Width:            b.Dx(),
		Height:           b.Dy(),
		BitsPerComponent: 8,
		Components:       3,
	}
}

func stencilResource(num uint32) *object.ImageResource {
	disc := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := range 32 {
		for x := range 32 {
			dx, dy := float64(x)-15.5, float64(y)-15.5
			if dx*dx+dy*dy > 14*14 {
				disc.Pix[disc.PixOffset(x, y)] = 255
			}
		}
	}
	return &object.ImageResource{
		Ref:              pdf.NewReference(num, 0),
		Source:           codec.Static{Image: disc},
		Width:            32,
		Height:           32,
		BitsPerComponent: 1,
		Components:       1,
		IsMask:           true,
	}
}

func boundsOf(src codec.Source) (image.Rectangle, bool) {
	switch s := src.(type) {
	case codec.Static:
		return s.Image.Bounds(), true
	case codec.Rows:
		return s.Image.Bounds(), true
	}
	return image.Rectangle{}, false
}

// Checker returns a w×h image of red and white squares with the given
// cell size.  The top left cell is red.
func Checker(w, h, cell int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if (x/cell+y/cell)%2 == 0 {
				c = color.NRGBA{R: 220, G: 30, B: 30, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// ramp returns a gray image which is black on the left and white on the
// right.
func ramp(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Pix[img.PixOffset(x, y)] = uint8(x * 255 / max(w-1, 1))
		}
	}
	return img
}
