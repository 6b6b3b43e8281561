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
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/render/device"
)

var fillCases = []Scenario{
	{
		Name:   "triangle_nonzero",
		Width:  64,
		Height: 64,
		Layers: page(fill(triangle(10, 50, 32, 10, 54, 50), black, device.NonZero)),
	},
	{
		Name:   "star_nonzero",
		Width:  64,
		Height: 64,
		Layers: page(fill(fivePointStar(32, 32, 25), black, device.NonZero)),
	},
	{
		Name:   "star_evenodd",
		Width:  64,
		Height: 64,
		Layers: page(fill(fivePointStar(32, 32, 25), black, device.EvenOdd)),
	},
	{
		Name:   "overlapping_colors",
		Width:  64,
		Height: 64,
		Layers: page(
			fill(rectangle(6, 6, 40, 40), red, device.NonZero),
			fill(rectangle(24, 24, 58, 58), blue, device.NonZero),
		),
	},
}

// triangle builds a triangular path.
func triangle(x1, y1, x2, y2, x3, y3 float64) *path.Data {
	return (&path.Data{}).MoveTo(pt(x1, y1)).LineTo(pt(x2, y2)).LineTo(pt(x3, y3)).Close()
}

// fivePointStar builds a five-pointed star (self-intersecting).
func fivePointStar(cx, cy, r float64) *path.Data {
	pts := make([]vec.Vec2, 5)
	for i := range 5 {
		angle := float64(i)*2*math.Pi/5 - math.Pi/2
		pts[i] = pt(cx+r*math.Cos(angle), cy+r*math.Sin(angle))
	}

	// draw star: 0 -> 2 -> 4 -> 1 -> 3 -> 0
	p := (&path.Data{}).MoveTo(pts[0])
	for _, i := range []int{2, 4, 1, 3} {
		p.LineTo(pts[i])
	}
	return p.Close()
}

// rectangle builds a rectangular path.
func rectangle(x1, y1, x2, y2 float64) *path.Data {
	return (&path.Data{}).MoveTo(pt(x1, y1)).LineTo(pt(x2, y1)).LineTo(pt(x2, y2)).LineTo(pt(x1, y2)).Close()
}
