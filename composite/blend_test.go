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

package composite

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/pdf/graphics"
)

func TestParseBlendMode(t *testing.T) {
	for m := Normal; m <= Luminosity; m++ {
		got, ok := ParseBlendMode(graphics.BlendMode{m.Name()})
		if !ok || got != m {
			t.Errorf("%s: got %s, %t", m, got, ok)
		}
	}

	type testCase struct {
		bm   graphics.BlendMode
		want BlendMode
		ok   bool
	}
	cases := []testCase{
		{graphics.BlendMode{graphics.BlendModeCompatible}, Normal, true},
		{graphics.BlendMode{"Bogus"}, Normal, false},
		{nil, Normal, false},
		{graphics.BlendMode{"Bogus", graphics.BlendModeScreen, graphics.BlendModeMultiply}, Screen, true},
	}
	for _, tc := range cases {
		got, ok := ParseBlendMode(tc.bm)
		if got != tc.want || ok != tc.ok {
			t.Errorf("%v: got %s, %t, want %s, %t", tc.bm, got, ok, tc.want, tc.ok)
		}
	}
}

func TestOverNormal(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	halfBlue := Premultiply(color.NRGBA{B: 255, A: 128})

	got := Over(red, halfBlue, Normal)
	want := color.RGBA{R: 127, B: 128, A: 255}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("over (-want +got):\n%s", d)
	}

	if got := Over(red, color.RGBA{}, Multiply); got != red {
		t.Errorf("transparent source changed the backdrop: %v", got)
	}
}

func TestOverSeparable(t *testing.T) {
	type testCase struct {
		mode BlendMode
		b, s color.RGBA
		want color.RGBA
	}
	grey := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black := color.RGBA{A: 255}
	cases := []testCase{
		{Multiply, white, grey, grey},
		{Multiply, black, grey, black},
		{Screen, black, grey, grey},
		{Screen, white, grey, white},
		{Darken, grey, white, grey},
		{Lighten, grey, black, grey},
		{Difference, white, white, black},
		{Difference, black, white, white},
		{Exclusion, black, grey, grey},
	}
	for _, tc := range cases {
		got := Over(tc.b, tc.s, tc.mode)
		if d := cmp.Diff(tc.want, got); d != "" {
			t.Errorf("%s (-want +got):\n%s", tc.mode, d)
		}
	}
}

func TestOverNonSeparable(t *testing.T) {
	grey := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	red := color.RGBA{R: 255, A: 255}

	// a grey source has no hue or saturation
	if got := Over(red, grey, Saturation); got.R != got.G || got.G != got.B {
		t.Errorf("Saturation with grey source: got %v, want grey", got)
	}
	// the luminosity of the backdrop is kept
	got := Over(grey, red, Color)
	if l := Gray(got.R, got.G, got.B); l < 115 || l > 140 {
		t.Errorf("Color: luminosity %d of %v far from backdrop", l, got)
	}
}

func TestMasks(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.SetRGBA(1, 0, color.RGBA{A: 255})

	lum := LuminosityMask(img)
	if d := cmp.Diff([]uint8{255, 0}, lum.Pix); d != "" {
		t.Errorf("luminosity (-want +got):\n%s", d)
	}
	alpha := AlphaMask(img)
	if d := cmp.Diff([]uint8{255, 255}, alpha.Pix); d != "" {
		t.Errorf("alpha (-want +got):\n%s", d)
	}

	ApplyMask(img, lum)
	if got := img.RGBAAt(1, 0); got != (color.RGBA{}) {
		t.Errorf("masked pixel: got %v", got)
	}
	MultiplyAlpha(img, 0)
	if got := img.RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Errorf("alpha 0: got %v", got)
	}
}

func TestDrawOffset(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src := image.NewRGBA(image.Rect(10, 10, 12, 12))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	Draw(dst, image.Pt(1, 2), src, image.Pt(10, 10), Normal, 255)

	for y := range 4 {
		for x := range 4 {
			inside := x >= 1 && x < 3 && y >= 2
			if got := dst.RGBAAt(x, y).A == 255; got != inside {
				t.Errorf("pixel (%d,%d): painted=%t", x, y, got)
			}
		}
	}
}

func TestKnockout(t *testing.T) {
	initial := image.NewRGBA(image.Rect(0, 0, 1, 1))
	group := image.NewRGBA(image.Rect(0, 0, 1, 1))
	group.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})

	half := image.NewRGBA(image.Rect(0, 0, 1, 1))
	half.SetRGBA(0, 0, Premultiply(color.NRGBA{B: 255, A: 128}))

	Knockout(group, initial, half, 128, Normal)

	// the blue element fully covers the pixel, so it replaces the red
	// one instead of blending over it
	got := group.RGBAAt(0, 0)
	want := Premultiply(color.NRGBA{B: 255, A: 128})
	if got != want {
		t.Errorf("knockout: got %v, want %v", got, want)
	}

	// half coverage keeps half of the earlier element
	group.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	Knockout(group, initial, half, 255, Normal)
	got = group.RGBAAt(0, 0)
	if got.R == 0 || got.B == 0 {
		t.Errorf("partial knockout: got %v", got)
	}
}
