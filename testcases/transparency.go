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
	"image/color"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/render"
	"seehuhn.de/go/render/composite"
	"seehuhn.de/go/render/device"
	"seehuhn.de/go/render/object"
)

var transparencyCases = []Scenario{
	{
		Name:   "constant_alpha",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			back := fill(rectangle(6, 6, 40, 40), red, device.NonZero)
			front := fill(rectangle(24, 24, 58, 58), blue, device.NonZero)
			front.FillAlpha = 0.5
			return page(back, front)()
		},
	},
	{
		Name:   "multiply",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			back := fill(rectangle(6, 6, 40, 40), yellow, device.NonZero)
			front := fill(circle(40, 40, 20), color.NRGBA{R: 120, G: 180, B: 255, A: 255}, device.NonZero)
			front.Blend = composite.Multiply
			return page(back, front)()
		},
	},
	{
		Name:   "luminosity_mask",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			obj := fill(rectangle(4, 4, 60, 60), red, device.NonZero)
			obj.SoftMask = &object.SoftMask{
				Kind:  object.MaskLuminosity,
				Group: gradientForm(black, white),
			}
			return page(obj)()
		},
	},
	{
		Name:   "alpha_mask",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			obj := fill(rectangle(4, 4, 60, 60), blue, device.NonZero)
			obj.SoftMask = &object.SoftMask{
				Kind: object.MaskAlpha,
				Group: &object.Form{
					PaintState: object.DefaultPaint(),
					Content:    object.Slice{fill(fivePointStar(32, 32, 28), black, device.NonZero)},
					Matrix:     matrix.Identity,
					Box:        rect.Rect{URx: 64, URy: 64},
					Group:      &object.Group{},
				},
			}
			return page(obj)()
		},
	},
	{
		Name:   "group_alpha",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			f := group(&object.Group{},
				fill(rectangle(6, 6, 40, 40), red, device.NonZero),
				fill(rectangle(24, 24, 58, 58), blue, device.NonZero),
			)
			f.FillAlpha = 0.5
			return page(f)()
		},
	},
	{
		Name:   "knockout",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			a := fill(circle(24, 32, 18), red, device.NonZero)
			b := fill(circle(40, 32, 18), blue, device.NonZero)
			a.FillAlpha, b.FillAlpha = 0.6, 0.6
			backdrop := fill(rectangle(0, 24, 64, 40), yellow, device.NonZero)
			return page(backdrop, group(&object.Group{Knockout: true}, a, b))()
		},
	},
	{
		Name:   "isolated_multiply",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			inner := fill(rectangle(16, 16, 48, 48), color.NRGBA{R: 128, G: 128, B: 255, A: 255}, device.NonZero)
			inner.Blend = composite.Multiply
			backdrop := fill(rectangle(0, 0, 32, 64), yellow, device.NonZero)
			return page(backdrop, group(&object.Group{Isolated: true}, inner))()
		},
	},
	{
		Name:   "text_clip",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			sh := &object.Shading{
				PaintState: object.DefaultPaint(),
				Shader:     &object.Axial{From: pt(0, 0), To: pt(64, 0), C0: red, C1: blue},
				Matrix:     matrix.Identity,
			}
			sh.Clip = &object.ClipPath{Text: []*object.Text{glyphText(black)}}
			return page(sh)()
		},
	},
}

// group returns a transparency group form covering the canvas.
func group(g *object.Group, objs ...object.Object) *object.Form {
	return &object.Form{
		PaintState: object.DefaultPaint(),
		Content:    object.Slice(objs),
		Matrix:     matrix.Identity,
		Box:        rect.Rect{URx: 64, URy: 64},
		Group:      g,
	}
}

// gradientForm returns a group painting a left-to-right gradient.
func gradientForm(from, to color.NRGBA) *object.Form {
	sh := &object.Shading{
		PaintState: object.DefaultPaint(),
		Shader:     &object.Axial{From: pt(4, 0), To: pt(60, 0), C0: from, C1: to, Extend: [2]bool{true, true}},
		Matrix:     matrix.Identity,
	}
	return group(&object.Group{}, sh)
}

// glyphText returns a text object with a single outline glyph.
func glyphText(c color.NRGBA) *object.Text {
	return &object.Text{
		PaintState: paint(c),
		Glyphs:     []object.Glyph{{Outline: glyphLikeShape(), Matrix: matrix.Identity}},
		Matrix:     matrix.Identity,
		Mode:       object.TextFill,
	}
}
