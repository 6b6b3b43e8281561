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

package object

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// pathBBox returns the bounding box of all points of p, including curve
// control points.
func pathBBox(p *path.Data) (rect.Rect, bool) {
	if p == nil || len(p.Coords) == 0 {
		return rect.Rect{}, false
	}
	b := rect.Rect{LLx: p.Coords[0].X, LLy: p.Coords[0].Y, URx: p.Coords[0].X, URy: p.Coords[0].Y}
	for _, c := range p.Coords[1:] {
		b.LLx = min(b.LLx, c.X)
		b.LLy = min(b.LLy, c.Y)
		b.URx = max(b.URx, c.X)
		b.URy = max(b.URy, c.Y)
	}
	return b, true
}

// Apply maps a point through m.
func Apply(m matrix.Matrix, v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*v.X + m[2]*v.Y + m[4],
		Y: m[1]*v.X + m[3]*v.Y + m[5],
	}
}

// TransformRect returns the bounding box of the image of r under m.
func TransformRect(r rect.Rect, m matrix.Matrix) rect.Rect {
	corners := [4]vec.Vec2{
		Apply(m, vec.Vec2{X: r.LLx, Y: r.LLy}),
		Apply(m, vec.Vec2{X: r.URx, Y: r.LLy}),
		Apply(m, vec.Vec2{X: r.URx, Y: r.URy}),
		Apply(m, vec.Vec2{X: r.LLx, Y: r.URy}),
	}
	res := rect.Rect{LLx: corners[0].X, LLy: corners[0].Y, URx: corners[0].X, URy: corners[0].Y}
	for _, c := range corners[1:] {
		res.LLx = min(res.LLx, c.X)
		res.LLy = min(res.LLy, c.Y)
		res.URx = max(res.URx, c.X)
		res.URy = max(res.URy, c.Y)
	}
	return res
}

// Union returns the smallest rectangle containing a and b.
func Union(a, b rect.Rect) rect.Rect {
	return rect.Rect{
		LLx: min(a.LLx, b.LLx),
		LLy: min(a.LLy, b.LLy),
		URx: max(a.URx, b.URx),
		URy: max(a.URy, b.URy),
	}
}

// Det returns the determinant of the linear part of m.
func Det(m matrix.Matrix) float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert returns the inverse of m.  The second result is false if m is
// singular or not finite.
func Invert(m matrix.Matrix) (matrix.Matrix, bool) {
	det := Det(m)
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return matrix.Matrix{}, false
	}
	a, b, c, d := m[3]/det, -m[1]/det, -m[2]/det, m[0]/det
	return matrix.Matrix{a, b, c, d, -(m[4]*a + m[5]*c), -(m[4]*b + m[5]*d)}, true
}
