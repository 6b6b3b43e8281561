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

package render

import (
	"errors"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/render/codec"
	"seehuhn.de/go/render/composite"
	"seehuhn.de/go/render/imagecache"
	"seehuhn.de/go/render/object"
)

// degenerateDet is the smallest absolute determinant of an image matrix
// which is still drawn.
const degenerateDet = 1e-9

type imageStage int

const (
	stageDecode imageStage = iota
	stageTransform
	stageDone
)

// imageRenderer draws one image.  Decoding and resampling of rotated or
// sheared images can be spread over several calls to Continue.
type imageRenderer struct {
	p    *pass
	img  *object.Image
	ctm  matrix.Matrix // maps user space to the device
	m    matrix.Matrix // maps the unit square to the device
	mode composite.BlendMode

	stage imageStage

	// resampling state
	src     *image.RGBA
	out     *image.RGBA
	s2d     f64.Aff3
	next    int
	pattern *image.RGBA
}

func (p *pass) newImageRenderer(img *object.Image, m matrix.Matrix, mode composite.BlendMode) *imageRenderer {
	return &imageRenderer{
		p:    p,
		img:  img,
		ctm:  m,
		m:    img.Matrix.Mul(m),
		mode: mode,
	}
}

// Start begins to draw the image.  It returns true if the image is
// complete, and false if Continue must be called.
func (r *imageRenderer) Start(pause codec.Pause) bool {
	res := r.img.Resource
	if res == nil || res.Source == nil {
		r.fail(&ResourceError{Kind: "image", Err: errors.New("missing image data")})
		return true
	}
	det := object.Det(r.m)
	if math.Abs(det) < degenerateDet || math.IsNaN(det) || math.IsInf(det, 0) {
		r.fail(ErrDegenerate)
		return true
	}
	return r.Continue(pause)
}

// Continue resumes drawing.  It returns true once the image is complete.
func (r *imageRenderer) Continue(pause codec.Pause) bool {
	switch r.stage {
	case stageDecode:
		res, status, err := r.p.images.Populate(r.img.Resource, pause)
		if err != nil {
			r.fail(&ResourceError{Kind: "image", Ref: r.img.Resource.Ref, Err: err})
			return true
		}
		if status == imagecache.Pending {
			return false
		}
		r.prepare(res)
		if r.stage == stageDone {
			return true
		}
		fallthrough
	case stageTransform:
		if !r.transform(pause) {
			return false
		}
		r.finish()
	}
	return true
}

func (r *imageRenderer) fail(err error) {
	r.p.report(err)
	r.stage = stageDone
}

// prepare converts the decoded bitmap into a premultiplied source image
// and either draws it directly or sets up resampling.
func (r *imageRenderer) prepare(res *imagecache.Result) {
	r.stage = stageDone
	p := r.p
	m := r.m
	footprint := deviceRect(object.TransformRect(rect.Rect{URx: 1, URy: 1}, m))
	visible := footprint.Intersect(p.dev.ClipBox()).Intersect(p.clipRect)
	if visible.Empty() || res.Bitmap.Bounds().Empty() {
		return
	}

	if r.img.Resource.IsMask && r.img.FillPattern == nil && axisAligned(m) {
		r.drawStencil(res.Bitmap)
		return
	}

	src := r.source(res)
	if src == nil || src.Rect.Empty() {
		return
	}

	if pat := r.img.FillPattern; r.img.Resource.IsMask && pat != nil {
		if p.depth+1 > p.opts.MaxDepth {
			p.report(ErrDepthExceeded)
			return
		}
		r.pattern = image.NewRGBA(visible)
		if !p.paintPattern(r.pattern, pat, r.ctm, &r.img.PaintState) {
			return
		}
	}

	if r.pattern == nil && axisAligned(m) {
		if m[0] < 0 {
			src = flipX(src)
		}
		if m[3] > 0 {
			src = flipY(src)
		}
		p.dev.StretchBitmap(src, roundRect(object.TransformRect(rect.Rect{URx: 1, URy: 1}, m)), r.img.Resource.Interpolate, r.mode)
		return
	}

	w, h := float64(src.Rect.Dx()), float64(src.Rect.Dy())
	r.src = src
	r.out = image.NewRGBA(visible)
	r.next = visible.Min.Y
	r.s2d = f64.Aff3{
		m[0] / w, -m[2] / h, m[2] + m[4],
		m[1] / w, -m[3] / h, m[3] + m[5],
	}
	r.stage = stageTransform
}

// transform resamples the source into the output buffer, one band of rows
// at a time.  It returns false if pause asked for a break.
func (r *imageRenderer) transform(pause codec.Pause) bool {
	var t draw.Transformer = draw.NearestNeighbor
	if r.img.Resource.Interpolate {
		t = draw.ApproxBiLinear
	}
	band := r.p.opts.ImageBandRows
	ob := r.out.Rect
	for r.next < ob.Max.Y {
		end := min(r.next+band, ob.Max.Y)
		dst := r.out.SubImage(image.Rect(ob.Min.X, r.next, ob.Max.X, end)).(*image.RGBA)
		t.Transform(dst, r.s2d, r.src, r.src.Rect, draw.Src, nil)
		r.next = end
		if r.next < ob.Max.Y && pause.Now() {
			return false
		}
	}
	return true
}

func (r *imageRenderer) finish() {
	r.stage = stageDone
	if r.pattern != nil {
		composite.ApplyMask(r.pattern, composite.AlphaMask(r.out))
		r.p.dev.SetBitmap(r.pattern, r.mode)
		return
	}
	r.p.dev.SetBitmap(r.out, r.mode)
}

// drawStencil paints an axis-aligned stencil mask in the fill color.
// The coverage is scaled to the device rectangle and handed to the device
// as a bit mask.
func (r *imageRenderer) drawStencil(bm image.Image) {
	m := r.m
	b := bm.Bounds()
	w, h := b.Dx(), b.Dy()
	cov := image.NewAlpha(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			dx, dy := x, y
			if m[0] < 0 {
				dx = w - 1 - x
			}
			if m[3] > 0 {
				dy = h - 1 - y
			}
			g := color.GrayModel.Convert(bm.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
			cov.Pix[cov.PixOffset(dx, dy)] = 255 - g
		}
	}

	dst := roundRect(object.TransformRect(rect.Rect{URx: 1, URy: 1}, m))
	if dst.Empty() {
		return
	}
	var s draw.Scaler = draw.NearestNeighbor
	if r.img.Resource.Interpolate {
		s = draw.ApproxBiLinear
	}
	mask := image.NewAlpha(dst)
	s.Scale(mask, dst, cov, cov.Rect, draw.Src, nil)
	r.p.dev.SetBitMask(mask, r.p.fillColor(&r.img.PaintState), r.mode)
}

// source returns the premultiplied source image, with origin (0, 0),
// after all masking and color adjustments.
func (r *imageRenderer) source(res *imagecache.Result) *image.RGBA {
	ir := r.img.Resource
	bm := res.Bitmap
	b := bm.Bounds()
	src := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if ir.IsMask {
		fill := color.RGBA{R: 255, G: 255, B: 255, A: 255}
		if r.img.FillPattern == nil {
			fill = composite.Premultiply(r.p.fillColor(&r.img.PaintState))
		}
		for y := range b.Dy() {
			for x := range b.Dx() {
				g := color.GrayModel.Convert(bm.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
				src.SetRGBA(x, y, composite.Scale(fill, 255-g))
			}
		}
		return src
	}

	draw.Draw(src, src.Rect, bm, b.Min, draw.Src)
	if len(ir.ColorKey) >= 2 {
		applyColorKey(src, bm, ir.ColorKey)
	}
	if res.Mask != nil {
		mask := &image.Alpha{Pix: res.Mask.Pix, Stride: res.Mask.Stride, Rect: src.Rect}
		if res.HasMatte {
			unmatte(src, mask, res.Matte)
		}
		composite.ApplyMask(src, mask)
	}
	r.p.table(r.img.Transfer).TranslateImage(src)
	r.p.opts.translateImage(src)
	composite.MultiplyAlpha(src, composite.Alpha8(r.img.FillAlpha))
	return src
}

// applyColorKey makes pixels transparent whose samples lie inside all
// color key ranges.  A single range applies to gray images, three ranges
// to RGB images.
func applyColorKey(src *image.RGBA, bm image.Image, key []uint8) {
	b := bm.Bounds()
	gray := len(key) < 6
	in := func(v uint8, k int) bool {
		return v >= key[2*k] && v <= key[2*k+1]
	}
	for y := range b.Dy() {
		for x := range b.Dx() {
			c := bm.At(b.Min.X+x, b.Min.Y+y)
			var masked bool
			if gray {
				masked = in(color.GrayModel.Convert(c).(color.Gray).Y, 0)
			} else {
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				masked = in(n.R, 0) && in(n.G, 1) && in(n.B, 2)
			}
			if masked {
				src.SetRGBA(x, y, color.RGBA{})
			}
		}
	}
}

// unmatte removes the matte color from an image which was premultiplied
// with its soft mask.  The image is expected to be opaque.
func unmatte(src *image.RGBA, mask *image.Alpha, matte color.NRGBA) {
	mc := [3]int{int(matte.R), int(matte.G), int(matte.B)}
	for y := src.Rect.Min.Y; y < src.Rect.Max.Y; y++ {
		for x := src.Rect.Min.X; x < src.Rect.Max.X; x++ {
			a := int(mask.AlphaAt(x, y).A)
			if a == 0 || a == 255 {
				continue
			}
			i := src.PixOffset(x, y)
			for ch := range 3 {
				v := (int(src.Pix[i+ch])-mc[ch])*255/a + mc[ch]
				src.Pix[i+ch] = uint8(min(max(v, 0), 255))
			}
		}
	}
}

// axisAligned reports whether m maps the unit square to an approximately
// axis-parallel rectangle.
func axisAligned(m matrix.Matrix) bool {
	return math.Abs(m[1]) < 0.5 && m[0] != 0 && math.Abs(m[2]) < 0.5 && m[3] != 0
}

func roundRect(r rect.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.LLx)), int(math.Round(r.LLy)),
		int(math.Round(r.URx)), int(math.Round(r.URy)),
	)
}

func flipX(img *image.RGBA) *image.RGBA {
	res := image.NewRGBA(img.Rect)
	w := img.Rect.Dx()
	for y := range img.Rect.Dy() {
		for x := range w {
			res.SetRGBA(w-1-x, y, img.RGBAAt(x, y))
		}
	}
	return res
}

func flipY(img *image.RGBA) *image.RGBA {
	res := image.NewRGBA(img.Rect)
	h := img.Rect.Dy()
	for y := range h {
		copy(res.Pix[res.PixOffset(0, h-1-y):res.PixOffset(0, h-y)], img.Pix[img.PixOffset(0, y):img.PixOffset(0, y+1)])
	}
	return res
}
