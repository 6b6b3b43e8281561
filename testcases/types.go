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

// Package testcases defines pages used to test, benchmark and demonstrate
// the renderer.
package testcases

import (
	"image/color"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/render"
	"seehuhn.de/go/render/device"
	"seehuhn.de/go/render/object"
)

// Scenario is a page to render.
type Scenario struct {
	Name   string // lowercase a-z and _ only
	Width  int    // canvas width in pixels
	Height int    // canvas height in pixels

	// Layers builds the content of the page.  Lists which carry parse
	// state are allocated afresh on every call.
	Layers func() []render.Layer
}

var (
	black  = color.NRGBA{A: 255}
	white  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	red    = color.NRGBA{R: 255, A: 255}
	green  = color.NRGBA{G: 160, A: 255}
	blue   = color.NRGBA{B: 255, A: 255}
	yellow = color.NRGBA{R: 255, G: 220, A: 255}
)

// pt is a helper to create a vec.Vec2 from x, y coordinates.
func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}

// page returns a single layer in device coordinates.
func page(objs ...object.Object) func() []render.Layer {
	return func() []render.Layer {
		return []render.Layer{{Objects: object.Slice(objs), Matrix: matrix.Identity}}
	}
}

func paint(fill color.NRGBA) object.PaintState {
	ps := object.DefaultPaint()
	ps.Fill = fill
	ps.Stroke = fill
	return ps
}

func fill(p *path.Data, c color.NRGBA, rule device.FillRule) *object.Path {
	return &object.Path{PaintState: paint(c), Path: p, Filled: true, Rule: rule}
}

func stroke(p *path.Data, c color.NRGBA, width float64, lineCap graphics.LineCapStyle, join graphics.LineJoinStyle) *object.Path {
	ps := paint(c)
	ps.LineStyle = device.StrokeStyle{Width: width, Cap: lineCap, Join: join, MiterLimit: 10}
	return &object.Path{PaintState: ps, Path: p, Stroked: true}
}
