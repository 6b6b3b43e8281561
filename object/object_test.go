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
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/render/device"
)

func square(x0, y0, x1, y1 float64) *path.Data {
	return (&path.Data{}).
		MoveTo(vec.Vec2{X: x0, Y: y0}).
		LineTo(vec.Vec2{X: x1, Y: y0}).
		LineTo(vec.Vec2{X: x1, Y: y1}).
		LineTo(vec.Vec2{X: x0, Y: y1}).
		Close()
}

func TestClipEqual(t *testing.T) {
	a := &ClipPath{Paths: []ClipSubpath{{Path: square(0, 0, 1, 1)}}}
	b := &ClipPath{Paths: []ClipSubpath{{Path: square(0, 0, 1, 1)}}}
	c := &ClipPath{Paths: []ClipSubpath{{Path: square(0, 0, 1, 1), Rule: device.EvenOdd}}}
	d := &ClipPath{Paths: []ClipSubpath{{Path: square(0, 0, 2, 1)}}}

	type testCase struct {
		name string
		x, y *ClipPath
		want bool
	}
	cases := []testCase{
		{"same structure", a, b, true},
		{"different rule", a, c, false},
		{"different path", a, d, false},
		{"nil and nil", nil, nil, true},
		{"nil and clip", nil, a, false},
		{"nil and empty paths", &ClipPath{Paths: []ClipSubpath{{}}}, &ClipPath{Paths: []ClipSubpath{{Path: &path.Data{}}}}, true},
	}
	for _, tc := range cases {
		if got := tc.x.Equal(tc.y); got != tc.want {
			t.Errorf("%s: got %t, want %t", tc.name, got, tc.want)
		}
	}
}

func TestBBox(t *testing.T) {
	img := &Image{PaintState: DefaultPaint(), Matrix: matrix.Scale(10, 20).Mul(matrix.Translate(5, 5))}
	got, ok := img.BBox()
	want := rect.Rect{LLx: 5, LLy: 5, URx: 15, URy: 25}
	if !ok {
		t.Fatal("image bbox unbounded")
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("image bbox (-want +got):\n%s", d)
	}

	sh := &Shading{Shader: Solid{A: 255}, Matrix: matrix.Identity}
	if _, ok := sh.BBox(); ok {
		t.Error("shading without box should be unbounded")
	}

	p := &Path{PaintState: DefaultPaint(), Path: square(0, 0, 4, 4), Stroked: true}
	p.LineStyle.Width = 2
	p.LineStyle.MiterLimit = 1
	got, _ = p.BBox()
	if d := cmp.Diff(rect.Rect{LLx: -1, LLy: -1, URx: 5, URy: 5}, got); d != "" {
		t.Errorf("stroke bbox (-want +got):\n%s", d)
	}
}

func TestInvert(t *testing.T) {
	m := matrix.Matrix{2, 1, -1, 3, 7, -4}
	inv, ok := Invert(m)
	if !ok {
		t.Fatal("invertible matrix reported singular")
	}
	p := vec.Vec2{X: 1.5, Y: -2}
	q := Apply(inv, Apply(m, p))
	if math.Abs(q.X-p.X) > 1e-12 || math.Abs(q.Y-p.Y) > 1e-12 {
		t.Errorf("round trip: got %v, want %v", q, p)
	}
	if _, ok := Invert(matrix.Matrix{1, 2, 2, 4, 0, 0}); ok {
		t.Error("singular matrix inverted")
	}
}

func TestStream(t *testing.T) {
	objs := []Object{&Path{}, &Path{}, &Path{}, &Path{}, &Path{}}
	s := NewStream(objs, 2)
	always := func() bool { return true }

	for _, want := range []int{2, 4, 5} {
		if s.Parsed() {
			t.Fatal("stream parsed too early")
		}
		s.ParseMore(always)
		if s.Len() != want {
			t.Errorf("after step: got %d objects, want %d", s.Len(), want)
		}
	}
	if !s.Parsed() {
		t.Error("stream not parsed at the end")
	}
}

func TestShaders(t *testing.T) {
	ax := &Axial{
		From: vec.Vec2{X: 0, Y: 0}, To: vec.Vec2{X: 10, Y: 0},
		C0: color.NRGBA{A: 255}, C1: color.NRGBA{R: 200, A: 255},
	}
	c, ok := ax.At(vec.Vec2{X: 5, Y: 3})
	if !ok || c.R != 100 {
		t.Errorf("axial midpoint: got %v, %t", c, ok)
	}
	if _, ok := ax.At(vec.Vec2{X: -1}); ok {
		t.Error("axial painted before the start without extend")
	}
	ax.Extend = [2]bool{true, true}
	if c, ok := ax.At(vec.Vec2{X: 20}); !ok || c.R != 200 {
		t.Errorf("axial extend: got %v, %t", c, ok)
	}

	rad := &Radial{R0: 0, R1: 4, C0: color.NRGBA{A: 255}, C1: color.NRGBA{G: 255, A: 255}}
	if c, ok := rad.At(vec.Vec2{X: 0, Y: 2}); !ok || c.G != 128 {
		t.Errorf("radial: got %v, %t", c, ok)
	}
}

func TestEstimatedSize(t *testing.T) {
	res := &ImageResource{Width: 10, Height: 4, BitsPerComponent: 8, Components: 3, PaletteSize: 0}
	// 30 bytes per row, padded to 32
	if got := res.EstimatedSize(); got != 128 {
		t.Errorf("rgb: got %d, want 128", got)
	}
	res.Mask = &ImageResource{Width: 10, Height: 4, BitsPerComponent: 1, Components: 1}
	if got := res.EstimatedSize(); got != 128+16 {
		t.Errorf("with mask: got %d, want 144", got)
	}
	idx := &ImageResource{Width: 3, Height: 1, BitsPerComponent: 8, Components: 1, PaletteSize: 16}
	if got := idx.EstimatedSize(); got != 4+64 {
		t.Errorf("indexed: got %d, want 68", got)
	}
}
