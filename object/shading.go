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
	"image/color"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Shader computes the colors of a shading.
type Shader interface {
	// At returns the color at p, in shading space.  The second result is
	// false where the shading paints nothing.
	At(p vec.Vec2) (color.NRGBA, bool)
}

// Pattern is a shading or tiling pattern used as a fill.  If Tile is set,
// Shader is ignored.
type Pattern struct {
	Shader Shader
	Tile   *Tiling

	// Matrix maps pattern space to user space.
	Matrix matrix.Matrix
}

// Tiling is the cell of a tiling pattern.  Copies of the cell, clipped to
// BBox, are placed at integer multiples of XStep and YStep in pattern
// space.
type Tiling struct {
	Cell  List
	BBox  rect.Rect
	XStep float64
	YStep float64

	// Uncolored cells are painted in the fill color of the object which
	// uses the pattern.
	Uncolored bool
}

// Solid is a shader painting a single color everywhere.
type Solid color.NRGBA

// At implements [Shader].
func (s Solid) At(vec.Vec2) (color.NRGBA, bool) {
	return color.NRGBA(s), true
}

// Axial is a linear gradient along the segment From-To.
type Axial struct {
	From, To vec.Vec2
	C0, C1   color.NRGBA
	Extend   [2]bool
}

// At implements [Shader].
func (a *Axial) At(p vec.Vec2) (color.NRGBA, bool) {
	d := a.To.Sub(a.From)
	l2 := d.Dot(d)
	if l2 == 0 {
		return color.NRGBA{}, false
	}
	t := p.Sub(a.From).Dot(d) / l2
	return interpolate(t, a.C0, a.C1, a.Extend)
}

// Radial is a gradient between two concentric circles.
type Radial struct {
	Center vec.Vec2
	R0, R1 float64
	C0, C1 color.NRGBA
	Extend [2]bool
}

// At implements [Shader].
func (r *Radial) At(p vec.Vec2) (color.NRGBA, bool) {
	if r.R1 == r.R0 {
		return color.NRGBA{}, false
	}
	t := (p.Sub(r.Center).Length() - r.R0) / (r.R1 - r.R0)
	return interpolate(t, r.C0, r.C1, r.Extend)
}

func interpolate(t float64, c0, c1 color.NRGBA, extend [2]bool) (color.NRGBA, bool) {
	switch {
	case math.IsNaN(t):
		return color.NRGBA{}, false
	case t < 0:
		if !extend[0] {
			return color.NRGBA{}, false
		}
		t = 0
	case t > 1:
		if !extend[1] {
			return color.NRGBA{}, false
		}
		t = 1
	}
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + t*(float64(b)-float64(a))))
	}
	return color.NRGBA{R: mix(c0.R, c1.R), G: mix(c0.G, c1.G), B: mix(c0.B, c1.B), A: mix(c0.A, c1.A)}, true
}
