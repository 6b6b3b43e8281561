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
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/render"
	"seehuhn.de/go/render/device"
	"seehuhn.de/go/render/object"
)

var formCases = []Scenario{
	{
		Name:   "nested",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			inner := form(matrix.Scale(0.5, 0.5).Mul(matrix.Translate(16, 16)),
				fill(circle(32, 32, 30), blue, device.NonZero))
			outer := form(matrix.RotateDeg(10).Mul(matrix.Translate(4, -4)),
				fill(rectangle(4, 4, 60, 60), yellow, device.NonZero), inner)
			return page(outer)()
		},
	},
	{
		Name:   "clip_path",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			clip := &object.ClipPath{Paths: []object.ClipSubpath{{Path: circle(32, 32, 24)}}}
			a := fill(rectangle(0, 0, 64, 32), red, device.NonZero)
			b := fill(rectangle(0, 32, 64, 64), blue, device.NonZero)
			c := stroke(horizontalLine(0, 32, 64), black, 2, graphics.LineCapButt, graphics.LineJoinMiter)
			a.Clip, b.Clip = clip, clip
			return page(a, b, c)()
		},
	},
	{
		Name:   "type3_text",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			// The glyph procedure paints in black; the text color wins.
			proc := object.Slice{
				fill(triangle(0, 0, 5, 10, 10, 0), black, device.NonZero),
			}
			txt := &object.Text{
				PaintState: paint(green),
				Matrix:     matrix.Identity,
			}
			for i := range 4 {
				txt.Glyphs = append(txt.Glyphs, object.Glyph{
					Proc:   proc,
					Matrix: matrix.Scale(1.2, 1.2).Mul(matrix.Translate(4+float64(i)*14, 26)),
					BBox:   rect.Rect{URx: 10, URy: 10},
				})
			}
			return page(txt)()
		},
	},
	{
		Name:   "radial_shading",
		Width:  64,
		Height: 64,
		Layers: page(&object.Shading{
			PaintState: object.DefaultPaint(),
			Shader:     &object.Radial{R0: 2, R1: 28, C0: yellow, C1: red, Extend: [2]bool{true, false}},
			Matrix:     matrix.Translate(32, 32),
			Box:        &rect.Rect{LLx: -30, LLy: -30, URx: 30, URy: 30},
		}),
	},
	{
		Name:   "pattern_fill",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			p := fill(fivePointStar(32, 32, 28), black, device.NonZero)
			p.FillPattern = &object.Pattern{
				Shader: &object.Axial{From: pt(0, 0), To: pt(64, 64), C0: red, C1: blue},
				Matrix: matrix.Identity,
			}
			return page(p)()
		},
	},
	{
		Name:   "tiling_pattern",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			cell := object.Slice{
				fill(rectangle(0, 0, 5, 5), red, device.NonZero),
				fill(circle(7.5, 7.5, 2.5), blue, device.NonZero),
			}
			p := fill(fivePointStar(32, 32, 28), black, device.NonZero)
			p.FillPattern = &object.Pattern{
				Tile: &object.Tiling{
					Cell:  cell,
					BBox:  rect.Rect{URx: 10, URy: 10},
					XStep: 10,
					YStep: 10,
				},
				Matrix: matrix.RotateDeg(20),
			}
			return page(p)()
		},
	},
	{
		Name:   "uncolored_tiling_text",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			txt := &object.Text{
				PaintState: paint(green),
				Glyphs:     []object.Glyph{{Outline: glyphLikeShape(), Matrix: matrix.Identity}},
				Matrix:     matrix.Identity,
				Mode:       object.TextFill,
			}
			txt.FillPattern = &object.Pattern{
				Tile: &object.Tiling{
					Cell:      object.Slice{fill(rectangle(0, 0, 3, 6), black, device.NonZero)},
					BBox:      rect.Rect{URx: 6, URy: 6},
					XStep:     6,
					YStep:     6,
					Uncolored: true,
				},
				Matrix: matrix.Identity,
			}
			return page(txt)()
		},
	},
	{
		Name:   "self_reference",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			f := form(matrix.Scale(0.8, 0.8).Mul(matrix.Translate(6.4, 6.4)))
			f.Content = object.Slice{stroke(rectangle(2, 2, 62, 62), black, 2, graphics.LineCapButt, graphics.LineJoinMiter), f}
			return page(f)()
		},
	},
	{
		Name:   "streaming",
		Width:  64,
		Height: 64,
		Layers: func() []render.Layer {
			var objs []object.Object
			for i := range 8 {
				for j := range 8 {
					c := red
					if (i+j)%2 == 1 {
						c = blue
					}
					x, y := float64(i*8), float64(j*8)
					objs = append(objs, fill(rectangle(x+1, y+1, x+7, y+7), c, device.NonZero))
				}
			}
			return []render.Layer{{Objects: object.NewStream(objs, 5), Matrix: matrix.Identity}}
		},
	},
}

// form returns a plain form XObject with a 64×64 bounding box.
func form(m matrix.Matrix, objs ...object.Object) *object.Form {
	return &object.Form{
		PaintState: object.DefaultPaint(),
		Content:    object.Slice(objs),
		Matrix:     m,
		Box:        rect.Rect{URx: 64, URy: 64},
	}
}
