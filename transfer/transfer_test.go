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

package transfer

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/function"
)

var _ Func = (*function.Type2)(nil)

// gamma returns the exponential interpolation function y = x^n.
func gamma(n float64) *function.Type2 {
	return &function.Type2{
		XMin: 0,
		XMax: 1,
		C0:   []float64{0},
		C1:   []float64{1},
		N:    n,
	}
}

type invert struct{}

func (invert) Apply(inputs ...float64) []float64 {
	return []float64{1 - inputs[0]}
}

type noOutput struct{}

func (noOutput) Apply(...float64) []float64 { return nil }

func TestNewTable(t *testing.T) {
	id, err := NewTable(gamma(1))
	if err != nil {
		t.Fatal(err)
	}
	if !id.Identity {
		t.Error("x^1 not detected as identity")
	}

	inv, err := NewTable(invert{})
	if err != nil {
		t.Fatal(err)
	}
	if inv.Identity {
		t.Error("inversion marked as identity")
	}
	for v := range 256 {
		for ch := range 3 {
			if got := inv.Map(ch, uint8(v)); got != uint8(255-v) {
				t.Fatalf("ch %d, v %d: got %d", ch, v, got)
			}
		}
	}

	perChannel, err := NewTable(gamma(1), invert{}, gamma(2))
	if err != nil {
		t.Fatal(err)
	}
	got := perChannel.TranslateColor(color.NRGBA{R: 10, G: 10, B: 128, A: 77})
	want := color.NRGBA{R: 10, G: 245, B: 64, A: 77}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("TranslateColor (-want +got):\n%s", d)
	}
}

func TestNewTableErrors(t *testing.T) {
	_, err := NewTable(gamma(1), gamma(1))
	if !errors.Is(err, &ShapeError{}) {
		t.Errorf("two functions: got %v", err)
	}
	_, err = NewTable(noOutput{})
	if !errors.Is(err, &ShapeError{}) {
		t.Errorf("no outputs: got %v", err)
	}
}

func TestTranslateImage(t *testing.T) {
	inv, _ := NewTable(invert{})
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(1, 0, color.RGBA{})
	inv.TranslateImage(img)

	if got, want := img.RGBAAt(0, 0), (color.RGBA{G: 255, B: 255, A: 255}); got != want {
		t.Errorf("opaque pixel: got %v, want %v", got, want)
	}
	if got := img.RGBAAt(1, 0); got != (color.RGBA{}) {
		t.Errorf("transparent pixel changed to %v", got)
	}
}

func TestCacheRefCount(t *testing.T) {
	c := NewCache()
	ref := pdf.NewReference(7, 0)

	t1, err := c.Acquire(ref, invert{})
	if err != nil {
		t.Fatal(err)
	}
	t2, err := c.Acquire(ref, gamma(3))
	if err != nil {
		t.Fatal(err)
	}
	if t1 != t2 {
		t.Error("second acquire sampled the function again")
	}
	if n := c.Refs(ref); n != 2 {
		t.Errorf("refs: got %d, want 2", n)
	}

	c.Release(ref)
	if c.Len() != 1 {
		t.Error("entry dropped while still referenced")
	}
	c.Release(ref)
	if c.Len() != 0 {
		t.Error("entry kept after last release")
	}

	if _, err := c.Acquire(0, invert{}); err != nil || c.Len() != 0 {
		t.Errorf("zero reference was cached (err=%v)", err)
	}

	c.Acquire(ref, invert{})
	c.Clear()
	if c.Len() != 0 {
		t.Error("Clear left entries behind")
	}
}
