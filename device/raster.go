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

package device

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/render/composite"
	"seehuhn.de/go/render/internal/raster"
)

// DefaultCaps are the capabilities of a fully featured display device.
var DefaultCaps = Caps{
	Class:      Display,
	BlendModes: true,
	ReadBack:   true,
	SoftClip:   true,
	Scale:      1,
}

type clipState struct {
	box  image.Rectangle
	mask *image.Alpha // nil for a rectangular clip
}

// Raster is a software device which paints anti-aliased output into an
// *image.RGBA.
type Raster struct {
	img   *image.RGBA
	caps  Caps
	clip  clipState
	saved []clipState
	r     *raster.Rasteriser

	// Flatness is the curve flattening tolerance in pixels.
	Flatness float64
}

var _ Device = (*Raster)(nil)

// NewRaster returns a device which paints into img.  The image is
// expected to hold premultiplied colors, as image.RGBA always does.
func NewRaster(img *image.RGBA, caps Caps) *Raster {
	if caps.Scale <= 0 {
		caps.Scale = 1
	}
	return &Raster{
		img:      img,
		caps:     caps,
		clip:     clipState{box: img.Bounds()},
		r:        raster.New(rect.Rect{}),
		Flatness: 0.25,
	}
}

// Image returns the image the device paints into.
func (d *Raster) Image() *image.RGBA {
	return d.img
}

// Caps implements [Device].
func (d *Raster) Caps() Caps {
	return d.caps
}

// Bounds implements [Device].
func (d *Raster) Bounds() image.Rectangle {
	return d.img.Bounds()
}

// ClipBox implements [Device].
func (d *Raster) ClipBox() image.Rectangle {
	return d.clip.box
}

// SaveState implements [Device].
func (d *Raster) SaveState() {
	d.saved = append(d.saved, d.clip)
}

// RestoreState implements [Device].
func (d *Raster) RestoreState(keepSaved bool) {
	n := len(d.saved)
	if n == 0 {
		d.clip = clipState{box: d.img.Bounds()}
		return
	}
	d.clip = d.saved[n-1]
	if !keepSaved {
		d.saved = d.saved[:n-1]
	}
}

// ClipPath implements [Device].
func (d *Raster) ClipPath(p *path.Data, ctm matrix.Matrix, rule FillRule) {
	m := image.NewAlpha(d.clip.box)
	d.prepare(ctm).Fill(p, raster.Rule(rule), d.accumulate(m))
	d.intersect(m)
}

// ClipGlyphs implements [Device].
func (d *Raster) ClipGlyphs(glyphs []Glyph, ctm matrix.Matrix) {
	m := image.NewAlpha(d.clip.box)
	emit := d.accumulate(m)
	for _, g := range glyphs {
		d.prepare(g.Matrix.Mul(ctm)).Fill(g.Outline, raster.NonZero, emit)
	}
	d.intersect(m)
}

// accumulate returns an emitter which takes the union of coverage in m.
func (d *Raster) accumulate(m *image.Alpha) raster.Emitter {
	return func(y, xMin int, coverage []float32) {
		i := m.PixOffset(xMin, y)
		for k, c := range coverage {
			m.Pix[i+k] = max(m.Pix[i+k], uint8(c*255+0.5))
		}
	}
}

// intersect replaces the clip region by its intersection with m.
func (d *Raster) intersect(m *image.Alpha) {
	box := image.Rectangle{}
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := m.Pix[m.PixOffset(b.Min.X, y):m.PixOffset(b.Max.X, y)]
		for k, v := range row {
			if d.clip.mask != nil && v != 0 {
				v = uint8((uint32(v)*uint32(d.clip.mask.AlphaAt(b.Min.X+k, y).A) + 127) / 255)
				row[k] = v
			}
			if v != 0 {
				box = box.Union(image.Rect(b.Min.X+k, y, b.Min.X+k+1, y+1))
			}
		}
	}
	d.clip = clipState{box: box, mask: m}
}

func (d *Raster) prepare(ctm matrix.Matrix) *raster.Rasteriser {
	b := d.clip.box
	d.r.Reset(rect.Rect{LLx: float64(b.Min.X), LLy: float64(b.Min.Y), URx: float64(b.Max.X), URy: float64(b.Max.Y)})
	d.r.CTM = ctm
	d.r.Flatness = d.Flatness
	return d.r
}

// clipAt returns the clip coverage of a pixel inside the clip box.
func (d *Raster) clipAt(x, y int) uint8 {
	if d.clip.mask == nil {
		return 255
	}
	return d.clip.mask.Pix[d.clip.mask.PixOffset(x, y)]
}

// painter returns an emitter which composites color c with the given
// coverage.
func (d *Raster) painter(c color.NRGBA, mode composite.BlendMode) raster.Emitter {
	pc := composite.Premultiply(c)
	return func(y, xMin int, coverage []float32) {
		for k, cov := range coverage {
			x := xMin + k
			a := uint32(cov*255 + 0.5)
			if a == 0 {
				continue
			}
			a = (a*uint32(d.clipAt(x, y)) + 127) / 255
			if a == 0 {
				continue
			}
			i := d.img.PixOffset(x, y)
			d.blend(i, composite.Scale(pc, uint8(a)), mode)
		}
	}
}

func (d *Raster) blend(i int, s color.RGBA, mode composite.BlendMode) {
	p := d.img.Pix[i : i+4 : i+4]
	out := composite.Over(color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}, s, mode)
	p[0], p[1], p[2], p[3] = out.R, out.G, out.B, out.A
}

// FillPath implements [Device].
func (d *Raster) FillPath(p *path.Data, ctm matrix.Matrix, rule FillRule, c color.NRGBA, mode composite.BlendMode) {
	if d.clip.box.Empty() {
		return
	}
	d.prepare(ctm).Fill(p, raster.Rule(rule), d.painter(c, mode))
}

// StrokePath implements [Device].
func (d *Raster) StrokePath(p *path.Data, ctm matrix.Matrix, style *StrokeStyle, c color.NRGBA, mode composite.BlendMode) {
	if d.clip.box.Empty() {
		return
	}
	r := d.prepare(ctm)
	r.Width = style.Width
	r.Cap = style.Cap
	r.Join = style.Join
	if style.MiterLimit >= 1 {
		r.MiterLimit = style.MiterLimit
	}
	r.Stroke(p, d.painter(c, mode))
}

// FillGlyphs implements [Device].
func (d *Raster) FillGlyphs(glyphs []Glyph, ctm matrix.Matrix, c color.NRGBA, mode composite.BlendMode) {
	if d.clip.box.Empty() {
		return
	}
	emit := d.painter(c, mode)
	for _, g := range glyphs {
		d.prepare(g.Matrix.Mul(ctm)).Fill(g.Outline, raster.NonZero, emit)
	}
}

// SetBitmap implements [Device].
func (d *Raster) SetBitmap(src *image.RGBA, mode composite.BlendMode) {
	at := src.Bounds().Min
	if d.clip.mask != nil {
		composite.DrawMasked(d.img, at, src, at, d.clip.mask, mode)
		return
	}
	dst, ok := d.img.SubImage(d.clip.box).(*image.RGBA)
	if !ok {
		return
	}
	composite.Draw(dst, at, src, at, mode, 255)
}

// StretchBitmap implements [Device].
func (d *Raster) StretchBitmap(src image.Image, dst image.Rectangle, interpolate bool, mode composite.BlendMode) {
	target := dst.Intersect(d.clip.box)
	if target.Empty() || src.Bounds().Empty() {
		return
	}
	var scaler draw.Scaler = draw.NearestNeighbor
	if interpolate {
		scaler = draw.ApproxBiLinear
	}
	tmp := image.NewRGBA(target)
	scaler.Scale(tmp, dst, src, src.Bounds(), draw.Src, nil)
	d.SetBitmap(tmp, mode)
}

// ReplaceBitmap implements [Device].
func (d *Raster) ReplaceBitmap(src *image.RGBA) {
	r := src.Bounds().Intersect(d.clip.box)
	if r.Empty() {
		return
	}
	if d.clip.mask == nil {
		draw.Draw(d.img, r, src, r.Min, draw.Src)
		return
	}
	tmp := image.NewRGBA(r)
	draw.Draw(tmp, r, src, r.Min, draw.Src)
	composite.Mix(tmp, d.img, d.clip.mask)
	draw.Draw(d.img, r, tmp, r.Min, draw.Src)
}

// SetBitMask implements [Device].
func (d *Raster) SetBitMask(mask *image.Alpha, c color.NRGBA, mode composite.BlendMode) {
	pc := composite.Premultiply(c)
	r := mask.Bounds().Intersect(d.clip.box)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			a := uint32(mask.Pix[mask.PixOffset(x, y)])
			a = (a*uint32(d.clipAt(x, y)) + 127) / 255
			if a == 0 {
				continue
			}
			d.blend(d.img.PixOffset(x, y), composite.Scale(pc, uint8(a)), mode)
		}
	}
}

// GetBitmap implements [Device].
func (d *Raster) GetBitmap(dst *image.RGBA) bool {
	if !d.caps.ReadBack {
		return false
	}
	draw.Draw(dst, dst.Bounds(), d.img, dst.Bounds().Min, draw.Src)
	return true
}
