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

package render_test

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf"

	"seehuhn.de/go/render"
	"seehuhn.de/go/render/composite"
	"seehuhn.de/go/render/device"
	"seehuhn.de/go/render/object"
	"seehuhn.de/go/render/transfer"
)

// countingDevice records the calls the renderer makes.
type countingDevice struct {
	*device.Raster

	saves, restores int
	clips, glyphs   int
	bitmaps         int
	stretches       int
	masks           int
}

func newCountingDevice(w, h int, caps device.Caps) *countingDevice {
	return &countingDevice{Raster: device.NewRaster(image.NewRGBA(image.Rect(0, 0, w, h)), caps)}
}

func (d *countingDevice) SaveState() {
	d.saves++
	d.Raster.SaveState()
}

func (d *countingDevice) RestoreState(keepSaved bool) {
	d.restores++
	d.Raster.RestoreState(keepSaved)
}

func (d *countingDevice) ClipPath(p *path.Data, ctm matrix.Matrix, rule device.FillRule) {
	d.clips++
	d.Raster.ClipPath(p, ctm, rule)
}

func (d *countingDevice) ClipGlyphs(glyphs []device.Glyph, ctm matrix.Matrix) {
	d.glyphs++
	d.Raster.ClipGlyphs(glyphs, ctm)
}

func (d *countingDevice) SetBitmap(src *image.RGBA, mode composite.BlendMode) {
	d.bitmaps++
	d.Raster.SetBitmap(src, mode)
}

func (d *countingDevice) ReplaceBitmap(src *image.RGBA) {
	d.bitmaps++
	d.Raster.ReplaceBitmap(src)
}

func (d *countingDevice) StretchBitmap(src image.Image, dst image.Rectangle, interpolate bool, mode composite.BlendMode) {
	d.stretches++
	d.Raster.StretchBitmap(src, dst, interpolate, mode)
}

func (d *countingDevice) SetBitMask(mask *image.Alpha, c color.NRGBA, mode composite.BlendMode) {
	d.masks++
	d.Raster.SetBitMask(mask, c, mode)
}

func TestClipReuse(t *testing.T) {
	clip := func(x1 float64) *object.ClipPath {
		return &object.ClipPath{Paths: []object.ClipSubpath{{Path: box(0, 0, x1, 16)}}}
	}
	a := filled(box(0, 0, 16, 16), red)
	b := filled(box(0, 0, 16, 16), blue)
	c := filled(box(0, 0, 16, 16), red)
	free := filled(box(0, 0, 2, 2), black)
	other := filled(box(0, 0, 16, 16), blue)
	a.Clip, b.Clip, c.Clip = clip(8), clip(8), clip(8)
	other.Clip = clip(4)

	d := newCountingDevice(16, 16, device.DefaultCaps)
	ctx := newContext(object.Slice{a, b, c, free, other})
	if err := ctx.RenderNow(d, nil); err != nil {
		t.Fatal(err)
	}

	// equal clips are installed once
	if d.clips != 2 || d.saves != 2 || d.restores != 2 {
		t.Errorf("got %d clips, %d saves, %d restores, want 2 each", d.clips, d.saves, d.restores)
	}
	img := d.Image()
	if got := img.RGBAAt(12, 8); got != (color.RGBA{}) {
		t.Errorf("outside the clips: got %v", got)
	}
	if got := img.RGBAAt(6, 8); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("inside the first clip: got %v", got)
	}
	if got := img.RGBAAt(2, 8); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("inside the second clip: got %v", got)
	}
	if d.ClipBox() != d.Bounds() {
		t.Errorf("clip not restored: %v", d.ClipBox())
	}
}

func TestOffscreenObjectsSkipped(t *testing.T) {
	_, dev := newCanvas(16, 16)
	ctx := newContext(object.Slice{
		filled(box(20, 20, 30, 30), red),
		filled(box(0, 0, 4, 4), red),
	})
	if err := ctx.RenderNow(dev, nil); err != nil {
		t.Fatal(err)
	}
	if s := ctx.Stats(); s.Skipped != 1 || s.Objects != 1 {
		t.Errorf("stats: %+v", s)
	}
}

func TestVisibility(t *testing.T) {
	img, dev := newCanvas(8, 8)
	hidden := filled(box(0, 0, 8, 8), red)
	hidden.Marks = []string{"draft"}
	ctx := newContext(object.Slice{hidden})
	opts := render.DefaultOptions()
	opts.Visible = func(marks []string) bool {
		for _, m := range marks {
			if m == "draft" {
				return false
			}
		}
		return true
	}
	if err := ctx.RenderNow(dev, opts); err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(4, 4); got != (color.RGBA{}) {
		t.Errorf("hidden object painted: %v", got)
	}
}

func TestBlendNeedsGroup(t *testing.T) {
	mult := filled(box(0, 0, 8, 8), color.NRGBA{R: 128, G: 255, B: 255, A: 255})
	mult.Blend = composite.Multiply

	display := newCountingDevice(8, 8, device.DefaultCaps)
	ctx := newContext(object.Slice{filled(box(0, 0, 8, 8), white), mult})
	if err := ctx.RenderNow(display, nil); err != nil {
		t.Fatal(err)
	}
	if display.bitmaps != 1 {
		t.Errorf("display: %d bitmaps, want 1", display.bitmaps)
	}
	if got := display.Image().RGBAAt(4, 4); !near(got, color.RGBA{R: 128, G: 255, B: 255, A: 255}, 1) {
		t.Errorf("multiply on white: got %v", got)
	}

	printer := newCountingDevice(8, 8, device.Caps{Class: device.Printer, Scale: 2})
	if err := ctx.RenderNow(printer, nil); err != nil {
		t.Fatal(err)
	}
	if printer.bitmaps != 0 || printer.stretches != 0 {
		t.Errorf("printer: %d bitmaps and %d stretches, want direct painting",
			printer.bitmaps, printer.stretches)
	}
}

func TestPrintIsolatedGroup(t *testing.T) {
	f := &object.Form{
		PaintState: object.DefaultPaint(),
		Content:    object.Slice{filled(box(2, 2, 6, 6), red)},
		Matrix:     matrix.Identity,
		Box:        rect.Rect{URx: 8, URy: 8},
		Group:      &object.Group{Isolated: true},
	}
	d := newCountingDevice(8, 8, device.Caps{Class: device.Display, Scale: 2})
	ctx := newContext(object.Slice{f})
	opts := render.DefaultOptions()
	opts.Print = true
	if err := ctx.RenderNow(d, opts); err != nil {
		t.Fatal(err)
	}
	if d.stretches != 1 {
		t.Errorf("got %d stretched bitmaps, want 1", d.stretches)
	}
	if got := d.Image().RGBAAt(4, 4); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("group content: got %v", got)
	}
	if got := d.Image().RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Errorf("outside the content: got %v", got)
	}
}

func TestTextClip(t *testing.T) {
	glyph := &object.Text{
		PaintState: object.DefaultPaint(),
		Glyphs:     []object.Glyph{{Outline: box(4, 4, 12, 12), Matrix: matrix.Identity}},
		Matrix:     matrix.Identity,
	}
	for _, soft := range []bool{true, false} {
		obj := filled(box(0, 0, 16, 16), red)
		obj.Clip = &object.ClipPath{Text: []*object.Text{glyph}}

		caps := device.DefaultCaps
		caps.SoftClip = soft
		d := newCountingDevice(16, 16, caps)
		if err := newContext(object.Slice{obj}).RenderNow(d, nil); err != nil {
			t.Fatal(err)
		}

		if soft && (d.glyphs != 1 || d.bitmaps != 0) {
			t.Errorf("soft clip: %d glyph clips, %d bitmaps", d.glyphs, d.bitmaps)
		}
		if !soft && (d.glyphs != 0 || d.bitmaps != 1) {
			t.Errorf("emulated clip: %d glyph clips, %d bitmaps", d.glyphs, d.bitmaps)
		}
		if got := d.Image().RGBAAt(8, 8); got != (color.RGBA{R: 255, A: 255}) {
			t.Errorf("soft=%t: inside glyph: got %v", soft, got)
		}
		if got := d.Image().RGBAAt(1, 1); got != (color.RGBA{}) {
			t.Errorf("soft=%t: outside glyph: got %v", soft, got)
		}
	}
}

func TestKnockoutGroup(t *testing.T) {
	a := filled(box(0, 0, 12, 8), red)
	b := filled(box(4, 0, 16, 8), blue)
	a.FillAlpha, b.FillAlpha = 0.5, 0.5
	f := &object.Form{
		PaintState: object.DefaultPaint(),
		Content:    object.Slice{a, b},
		Matrix:     matrix.Identity,
		Box:        rect.Rect{URx: 16, URy: 8},
		Group:      &object.Group{Knockout: true},
	}
	img, dev := newCanvas(16, 8)
	ctx := newContext(object.Slice{filled(box(0, 0, 16, 8), white), f})
	if err := ctx.RenderNow(dev, nil); err != nil {
		t.Fatal(err)
	}

	// where both elements overlap, only the later one is visible
	overlap, onlyB := img.RGBAAt(8, 4), img.RGBAAt(14, 4)
	if overlap != onlyB {
		t.Errorf("overlap %v differs from blue alone %v", overlap, onlyB)
	}
	if onlyA := img.RGBAAt(2, 4); onlyA.R != 255 || onlyA.B == 255 {
		t.Errorf("red alone: got %v", onlyA)
	}
}

func TestGroupAlpha(t *testing.T) {
	f := &object.Form{
		PaintState: object.DefaultPaint(),
		Content: object.Slice{
			filled(box(0, 0, 8, 8), red),
			filled(box(0, 0, 8, 8), blue),
		},
		Matrix: matrix.Identity,
		Box:    rect.Rect{URx: 8, URy: 8},
	}
	f.FillAlpha = 0.5
	img, dev := newCanvas(8, 8)
	ctx := newContext(object.Slice{filled(box(0, 0, 8, 8), white), f})
	if err := ctx.RenderNow(dev, nil); err != nil {
		t.Fatal(err)
	}

	// the group is flattened first, so no red shows through
	want := color.RGBA{R: 127, G: 127, B: 255, A: 255}
	if got := img.RGBAAt(4, 4); !near(got, want, 1) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGroupOverTranslucentBackdrop(t *testing.T) {
	halfRed := color.NRGBA{R: 255, A: 128}
	newForm := func() *object.Form {
		return &object.Form{
			PaintState: object.DefaultPaint(),
			Content:    object.Slice{filled(box(0, 0, 4, 4), blue)},
			Matrix:     matrix.Identity,
			Box:        rect.Rect{URx: 16, URy: 16},
		}
	}
	multiplyForm := newForm()
	multiplyForm.Blend = composite.Multiply
	fadedForm := newForm()
	fadedForm.FillAlpha = 0.99

	// two squares whose bounding box covers the untouched pixel
	twoSquares := box(0, 0, 4, 4).
		MoveTo(vec.Vec2{X: 12, Y: 12}).
		LineTo(vec.Vec2{X: 16, Y: 12}).
		LineTo(vec.Vec2{X: 16, Y: 16}).
		LineTo(vec.Vec2{X: 12, Y: 16}).
		Close()
	multiplyPath := filled(twoSquares, blue)
	multiplyPath.Blend = composite.Multiply

	cases := []struct {
		name string
		obj  object.Object
	}{
		{"multiply form", multiplyForm},
		{"group alpha", fadedForm},
		{"multiply path", multiplyPath},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			img, dev := newCanvas(16, 16)
			ctx := newContext(object.Slice{filled(box(0, 0, 16, 16), halfRed), c.obj})
			if err := ctx.RenderNow(dev, nil); err != nil {
				t.Fatal(err)
			}
			want := color.RGBA{R: 128, A: 128}
			if got := img.RGBAAt(8, 8); !near(got, want, 1) {
				t.Errorf("unpainted pixel: got %v, want %v", got, want)
			}
			if got := img.RGBAAt(2, 2); got.A < 250 || got.B < 100 {
				t.Errorf("painted pixel: got %v", got)
			}
		})
	}
}

// checkerTile is a 4×4 pattern cell with a 2×2 square in its corner.
func checkerTile(c color.NRGBA) *object.Tiling {
	return &object.Tiling{
		Cell:  object.Slice{filled(box(0, 0, 2, 2), c)},
		BBox:  rect.Rect{URx: 4, URy: 4},
		XStep: 4,
		YStep: 4,
	}
}

func TestTilingPattern(t *testing.T) {
	type testCase struct {
		name   string
		tile   *object.Tiling
		fill   color.NRGBA
		alpha  float64
		inside color.RGBA
	}
	uncolored := checkerTile(black)
	uncolored.Uncolored = true
	cases := []testCase{
		{"colored", checkerTile(red), blue, 1, color.RGBA{R: 255, A: 255}},
		{"uncolored", uncolored, blue, 1, color.RGBA{B: 255, A: 255}},
		{"alpha", checkerTile(red), blue, 0.5, color.RGBA{R: 128, A: 128}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			obj := filled(box(0, 0, 12, 16), c.fill)
			obj.FillAlpha = c.alpha
			obj.FillPattern = &object.Pattern{Tile: c.tile, Matrix: matrix.Identity}
			img, dev := newCanvas(16, 16)
			ctx := newContext(object.Slice{obj})
			if err := ctx.RenderNow(dev, nil); err != nil {
				t.Fatal(err)
			}
			for _, pt := range []image.Point{{1, 1}, {5, 9}, {9, 13}} {
				if got := img.RGBAAt(pt.X, pt.Y); !near(got, c.inside, 1) {
					t.Errorf("cell at %v: got %v, want %v", pt, got, c.inside)
				}
			}
			for _, pt := range []image.Point{{3, 3}, {6, 1}, {13, 1}} {
				if got := img.RGBAAt(pt.X, pt.Y); got != (color.RGBA{}) {
					t.Errorf("gap at %v: got %v", pt, got)
				}
			}
		})
	}
}

func TestTilingLimits(t *testing.T) {
	fine := checkerTile(red)
	fine.XStep, fine.YStep = 0.01, 0.01
	obj := filled(box(0, 0, 16, 16), red)
	obj.FillPattern = &object.Pattern{Tile: fine, Matrix: matrix.Identity}
	img, dev := newCanvas(16, 16)
	ctx := newContext(object.Slice{obj})
	if err := ctx.RenderNow(dev, nil); err != nil {
		t.Fatal(err)
	}
	if ctx.Stats().ResourceErrors != 1 {
		t.Errorf("too many tiles: %+v", ctx.Stats())
	}
	if got := img.RGBAAt(8, 8); got != (color.RGBA{}) {
		t.Errorf("too many tiles: painted %v", got)
	}

	// a cell which uses its own pattern ends at the nesting limit
	self := checkerTile(red)
	inner := filled(box(0, 0, 2, 2), blue)
	inner.FillPattern = &object.Pattern{Tile: self, Matrix: matrix.Identity}
	self.Cell = object.Slice{inner}
	obj = filled(box(0, 0, 4, 4), red)
	obj.FillPattern = &object.Pattern{Tile: self, Matrix: matrix.Identity}
	_, dev = newCanvas(16, 16)
	ctx = newContext(object.Slice{obj})
	opts := render.DefaultOptions()
	opts.MaxDepth = 3
	if err := ctx.RenderNow(dev, opts); err != nil {
		t.Fatal(err)
	}
	if ctx.Stats().DepthExceeded == 0 {
		t.Error("recursive pattern did not hit the depth limit")
	}
}

func TestTextPattern(t *testing.T) {
	newText := func(pat *object.Pattern) *object.Text {
		txt := &object.Text{
			PaintState: object.DefaultPaint(),
			Glyphs:     []object.Glyph{{Outline: box(0, 0, 8, 8), Matrix: matrix.Identity}},
			Matrix:     matrix.Identity,
			Mode:       object.TextFill,
		}
		txt.FillPattern = pat
		return txt
	}

	img, dev := newCanvas(16, 16)
	ctx := newContext(object.Slice{newText(&object.Pattern{Shader: object.Solid(blue), Matrix: matrix.Identity})})
	if err := ctx.RenderNow(dev, nil); err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(2, 2); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("shading pattern: got %v", got)
	}
	if got := img.RGBAAt(12, 12); got != (color.RGBA{}) {
		t.Errorf("outside the glyph: got %v", got)
	}

	img, dev = newCanvas(16, 16)
	ctx = newContext(object.Slice{newText(&object.Pattern{Tile: checkerTile(red), Matrix: matrix.Identity})})
	if err := ctx.RenderNow(dev, nil); err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(5, 5); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("tiling pattern cell: got %v", got)
	}
	if got := img.RGBAAt(7, 7); got != (color.RGBA{}) {
		t.Errorf("tiling pattern gap: got %v", got)
	}
	if got := img.RGBAAt(9, 9); got != (color.RGBA{}) {
		t.Errorf("outside the glyph: got %v", got)
	}
}

type invert struct{}

func (invert) Apply(inputs ...float64) []float64 {
	return []float64{1 - inputs[0]}
}

func TestTransferReleased(t *testing.T) {
	tr := &object.Transfer{Ref: pdf.NewReference(12, 0), Funcs: []transfer.Func{invert{}}}
	a := filled(box(0, 0, 4, 4), red)
	b := filled(box(4, 0, 8, 4), black)
	a.Transfer, b.Transfer = tr, tr

	img, dev := newCanvas(8, 4)
	ctx := newContext(object.Slice{a, b})
	if err := ctx.RenderNow(dev, nil); err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{G: 255, B: 255, A: 255}) {
		t.Errorf("inverted red: got %v", got)
	}
	if got := img.RGBAAt(6, 1); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("inverted black: got %v", got)
	}
	if n := ctx.Transfers().Len(); n != 0 {
		t.Errorf("%d transfer tables still held after the render", n)
	}
}

func TestBadTransfer(t *testing.T) {
	obj := filled(box(0, 0, 4, 4), red)
	obj.Transfer = &object.Transfer{Ref: pdf.NewReference(3, 0), Funcs: []transfer.Func{invert{}, invert{}}}
	img, dev := newCanvas(4, 4)
	ctx := newContext(object.Slice{obj})
	if err := ctx.RenderNow(dev, nil); err != nil {
		t.Fatal(err)
	}
	if ctx.Stats().ResourceErrors != 1 {
		t.Errorf("stats: %+v", ctx.Stats())
	}
	// the object is painted without the transfer function
	if got := img.RGBAAt(1, 1); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("got %v", got)
	}
}

func TestColorModes(t *testing.T) {
	type testCase struct {
		mode render.ColorMode
		want color.RGBA
	}
	cases := []testCase{
		{render.ColorNormal, color.RGBA{R: 255, A: 255}},
		{render.ColorGray, color.RGBA{R: 76, G: 76, B: 76, A: 255}},
		{render.ColorAlpha, color.RGBA{A: 255}},
	}
	for _, tc := range cases {
		img, dev := newCanvas(4, 4)
		opts := render.DefaultOptions()
		opts.ColorMode = tc.mode
		if err := newContext(object.Slice{filled(box(0, 0, 4, 4), red)}).RenderNow(dev, opts); err != nil {
			t.Fatal(err)
		}
		if got := img.RGBAAt(2, 2); got != tc.want {
			t.Errorf("mode %d: got %v, want %v", tc.mode, got, tc.want)
		}
	}
}

func TestErrorKinds(t *testing.T) {
	err := &render.ResourceError{Kind: "image", Ref: pdf.NewReference(4, 0), Err: render.ErrDegenerate}
	if !errors.Is(err, render.ErrDegenerate) {
		t.Error("resource error does not unwrap")
	}
}
