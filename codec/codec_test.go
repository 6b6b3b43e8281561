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

package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/bmp"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 7))
	for y := range 7 {
		for x := range 5 {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(40 * x), G: uint8(30 * y), B: 99, A: 255})
		}
	}
	return img
}

func TestRowsPause(t *testing.T) {
	src := testImage()
	dec, err := Rows{Image: src, RowsPerStep: 2}.NewDecoder()
	if err != nil {
		t.Fatal(err)
	}

	steps := 0
	for {
		steps++
		ok, err := dec.Continue(func() bool { return true })
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			break
		}
	}
	if steps != 4 {
		t.Errorf("7 rows in batches of 2: got %d steps, want 4", steps)
	}

	got := dec.Image().(*image.NRGBA)
	if d := cmp.Diff(src.Pix, got.Pix); d != "" {
		t.Errorf("pixels (-want +got):\n%s", d)
	}
}

func TestEncoded(t *testing.T) {
	src := testImage()

	encoders := map[string]func(*bytes.Buffer) error{
		"png": func(buf *bytes.Buffer) error { return png.Encode(buf, src) },
		"bmp": func(buf *bytes.Buffer) error { return bmp.Encode(buf, src) },
	}
	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if err := encode(buf); err != nil {
				t.Fatal(err)
			}
			img, err := Decode(Encoded{Data: buf.Bytes()})
			if err != nil {
				t.Fatal(err)
			}
			if img.Bounds() != src.Bounds() {
				t.Fatalf("bounds: got %v, want %v", img.Bounds(), src.Bounds())
			}
			r, g, b, _ := img.At(3, 4).RGBA()
			if r>>8 != 120 || g>>8 != 120 || b>>8 != 99 {
				t.Errorf("pixel (3,4): got %d %d %d", r>>8, g>>8, b>>8)
			}
		})
	}

	if _, err := Decode(Encoded{Data: []byte("garbage")}); err == nil {
		t.Error("garbage data decoded without error")
	}
}

func TestUnpackBits(t *testing.T) {
	packed := []byte{0b10100000, 0b01000000}
	img := unpackBits(packed, 3, 2, false)
	want := []uint8{255, 0, 255, 0, 255, 0}
	if d := cmp.Diff(want, img.Pix); d != "" {
		t.Errorf("pixels (-want +got):\n%s", d)
	}

	inv := unpackBits(packed, 3, 2, true)
	if inv.Pix[0] != 0 || inv.Pix[1] != 255 {
		t.Errorf("inverted: got %v", inv.Pix)
	}
}

func TestCCITTSize(t *testing.T) {
	if _, err := (CCITT{Width: 0, Height: 3}).NewDecoder(); err == nil {
		t.Error("zero width accepted")
	}
}
