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
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/render/device"
)

var complexCases = []Scenario{
	{
		Name:   "mixed_lines_curves",
		Width:  64,
		Height: 64,
		Layers: page(
			fill(mixedLinesCurves(), yellow, device.NonZero),
			stroke(mixedLinesCurves(), black, 3, graphics.LineCapRound, graphics.LineJoinRound),
		),
	},
	{
		Name:   "glyph_like",
		Width:  64,
		Height: 64,
		Layers: page(fill(glyphLikeShape(), black, device.NonZero)),
	},
	{
		Name:   "spiral_overlap",
		Width:  64,
		Height: 64,
		Layers: page(stroke(spiralPath(32, 32, 5, 25, 3), blue, 4, graphics.LineCapRound, graphics.LineJoinRound)),
	},
	{
		Name:   "thick_tight_curve",
		Width:  64,
		Height: 64,
		Layers: page(stroke(tightCurve(32, 32, 15), black, 10, graphics.LineCapRound, graphics.LineJoinRound)),
	},
	{
		Name:   "zigzag_thick",
		Width:  64,
		Height: 64,
		Layers: page(stroke(zigzagPath(10, 32, 54, 20), red, 8, graphics.LineCapRound, graphics.LineJoinRound)),
	},
}

// mixedLinesCurves builds a path combining line segments and Bezier curves.
func mixedLinesCurves() *path.Data {
	return (&path.Data{}).
		MoveTo(pt(10, 50)).
		LineTo(pt(20, 30)).
		QuadTo(pt(32, 10), pt(44, 30)).
		LineTo(pt(54, 50)).
		CubeTo(pt(48, 60), pt(16, 60), pt(10, 50)).
		Close()
}

// glyphLikeShape builds a shape resembling a simplified lowercase 'a'.
// The counter is drawn with reverse winding.
func glyphLikeShape() *path.Data {
	cx, cy := 32.0, 38.0
	r := 18.0
	k := r * kappa

	p := (&path.Data{}).
		MoveTo(pt(cx+r, cy)).
		CubeTo(pt(cx+r, cy-k), pt(cx+k, cy-r), pt(cx, cy-r)).
		CubeTo(pt(cx-k, cy-r), pt(cx-r, cy-k), pt(cx-r, cy)).
		CubeTo(pt(cx-r, cy+k), pt(cx-k, cy+r), pt(cx, cy+r)).
		CubeTo(pt(cx+k, cy+r), pt(cx+r, cy+k), pt(cx+r, cy)).
		LineTo(pt(cx+r, 10)).
		LineTo(pt(cx+r-6, 10)).
		LineTo(pt(cx+r-6, cy))

	ir := 8.0
	ik := ir * kappa
	return p.
		LineTo(pt(cx+ir, cy)).
		CubeTo(pt(cx+ir, cy+ik), pt(cx+ik, cy+ir), pt(cx, cy+ir)).
		CubeTo(pt(cx-ik, cy+ir), pt(cx-ir, cy+ik), pt(cx-ir, cy)).
		CubeTo(pt(cx-ir, cy-ik), pt(cx-ik, cy-ir), pt(cx, cy-ir)).
		CubeTo(pt(cx+ik, cy-ir), pt(cx+ir, cy-ik), pt(cx+ir, cy)).
		Close()
}

// spiralPath builds an Archimedean spiral that overlaps itself.
func spiralPath(cx, cy, rMin, rMax float64, turns float64) *path.Data {
	steps := max(int(turns*32), 8) // 32 segments per turn
	totalAngle := turns * 2 * math.Pi
	rGrowth := (rMax - rMin) / totalAngle

	p := (&path.Data{}).MoveTo(pt(cx+rMin, cy))
	for i := 1; i <= steps; i++ {
		angle := float64(i) / float64(steps) * totalAngle
		r := rMin + rGrowth*angle
		p.LineTo(pt(cx+r*math.Cos(angle), cy+r*math.Sin(angle)))
	}
	return p
}

// tightCurve builds a U-shaped curve where the inner radius is small
// relative to stroke width, causing the inner edge to cross.
func tightCurve(cx, cy, size float64) *path.Data {
	r := size
	k := r * kappa
	return (&path.Data{}).
		MoveTo(pt(cx-r, cy-size)).
		LineTo(pt(cx-r, cy)).
		CubeTo(pt(cx-r, cy+k), pt(cx-k, cy+r), pt(cx, cy+r)).
		CubeTo(pt(cx+k, cy+r), pt(cx+r, cy+k), pt(cx+r, cy)).
		LineTo(pt(cx+r, cy-size))
}

// zigzagPath builds a zigzag pattern where adjacent thick strokes overlap.
func zigzagPath(x1, cy, x2, amplitude float64) *path.Data {
	const segments = 5
	segWidth := (x2 - x1) / segments

	p := (&path.Data{}).MoveTo(pt(x1, cy))
	for i := 1; i <= segments; i++ {
		y := cy + amplitude
		if i%2 == 1 {
			y = cy - amplitude
		}
		p.LineTo(pt(x1+float64(i)*segWidth, y))
	}
	return p
}
