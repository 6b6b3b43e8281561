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
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/pdf/graphics"
)

var strokeCases = []Scenario{
	{
		Name:   "line_butt",
		Width:  64,
		Height: 64,
		Layers: page(stroke(horizontalLine(10, 32, 54), black, 8, graphics.LineCapButt, graphics.LineJoinMiter)),
	},
	{
		Name:   "line_round",
		Width:  64,
		Height: 64,
		Layers: page(stroke(horizontalLine(10, 32, 54), black, 8, graphics.LineCapRound, graphics.LineJoinMiter)),
	},
	{
		Name:   "line_square",
		Width:  64,
		Height: 64,
		Layers: page(stroke(horizontalLine(10, 32, 54), black, 8, graphics.LineCapSquare, graphics.LineJoinMiter)),
	},
	{
		Name:   "corner_miter",
		Width:  64,
		Height: 64,
		Layers: page(stroke(corner(10, 50, 32, 14, 54, 50), black, 6, graphics.LineCapButt, graphics.LineJoinMiter)),
	},
	{
		Name:   "corner_round",
		Width:  64,
		Height: 64,
		Layers: page(stroke(corner(10, 50, 32, 14, 54, 50), black, 6, graphics.LineCapButt, graphics.LineJoinRound)),
	},
	{
		Name:   "corner_bevel",
		Width:  64,
		Height: 64,
		Layers: page(stroke(corner(10, 50, 32, 14, 54, 50), black, 6, graphics.LineCapButt, graphics.LineJoinBevel)),
	},
}

// horizontalLine builds a horizontal line segment.
func horizontalLine(x1, y, x2 float64) *path.Data {
	return (&path.Data{}).MoveTo(pt(x1, y)).LineTo(pt(x2, y))
}

// corner builds a path with two line segments meeting at a corner.
func corner(x1, y1, x2, y2, x3, y3 float64) *path.Data {
	return (&path.Data{}).MoveTo(pt(x1, y1)).LineTo(pt(x2, y2)).LineTo(pt(x3, y3))
}
