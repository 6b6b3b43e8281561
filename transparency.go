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
	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/render/composite"
	"seehuhn.de/go/render/device"
	"seehuhn.de/go/render/object"
)

// needsGroup reports whether obj has to be rendered into an offscreen
// buffer and composited from there.
func (p *pass) needsGroup(obj object.Object) bool {
	ps := obj.State()
	if ps.Blend != composite.Normal {
		return true
	}
	if ps.SoftMask != nil && !hasOwnMask(obj) {
		return true
	}
	if f, ok := obj.(*object.Form); ok {
		if f.FillAlpha < 1 {
			return true
		}
		if f.Group != nil && (f.Group.Isolated || f.Group.Knockout) {
			return true
		}
	}
	return p.textClip != nil
}

// hasOwnMask reports whether obj is an image with an explicit mask, which
// takes the place of the soft mask in the paint state.
func hasOwnMask(obj object.Object) bool {
	im, ok := obj.(*object.Image)
	return ok && im.Resource != nil && im.Resource.Mask != nil
}

func isolated(obj object.Object) bool {
	f, ok := obj.(*object.Form)
	return ok && f.Group != nil && f.Group.Isolated
}

func knockout(obj object.Object) bool {
	f, ok := obj.(*object.Form)
	return ok && f.Group != nil && f.Group.Knockout
}

// printing reports whether the device is a print target which cannot
// blend.  Such devices get simplified transparency handling.
func (p *pass) printing() bool {
	caps := p.dev.Caps()
	return (caps.Class == device.Printer || p.opts.Print) && !caps.BlendModes
}

// drawGroup draws an object which needs transparency handling.
func (p *pass) drawGroup(obj object.Object, m matrix.Matrix) {
	ps := obj.State()
	softMask := ps.SoftMask
	if hasOwnMask(obj) {
		softMask = nil
	}

	if !p.printing() {
		p.compositeGroup(obj, m, softMask, 0)
		return
	}
	if !isolated(obj) && !knockout(obj) && softMask == nil && p.textClip == nil {
		p.dispatch(obj, m, ps.Blend)
		return
	}
	p.compositeGroup(obj, m, softMask, max(p.dev.Caps().Scale, 1))
}

// compositeGroup renders obj into an offscreen buffer, applies masks and
// group alpha, and composites the result onto the device.  A buffer
// which started from the backdrop replaces the device pixels.  If scale is
// positive, the buffer has scale pixels per device pixel, does not see
// the backdrop and is stretched onto the device.
func (p *pass) compositeGroup(obj object.Object, m matrix.Matrix, softMask *object.SoftMask, scale float64) {
	ps := obj.State()
	box := p.dev.ClipBox().Intersect(p.clipRect)
	if b, ok := obj.BBox(); ok {
		box = box.Intersect(deviceRect(object.TransformRect(b, m)))
	}
	if box.Empty() {
		return
	}

	target := box
	bm := m
	if scale > 0 {
		w := int(math.Ceil(float64(box.Dx()) * scale))
		h := int(math.Ceil(float64(box.Dy()) * scale))
		target = image.Rect(0, 0, w, h)
		bm = m.Mul(matrix.Translate(-float64(box.Min.X), -float64(box.Min.Y))).Mul(matrix.Scale(scale, scale))
	}

	buf := image.NewRGBA(target)
	var backdrop *image.RGBA
	if scale == 0 && p.blendsWithBackdrop(obj) && p.dev.GetBitmap(buf) {
		backdrop = cloneRGBA(buf)
	}

	d := device.NewRaster(buf, device.DefaultCaps)
	d.Flatness = p.opts.Flatness
	inner := p.newPass(d, p.depth)
	inner.override = p.override
	mode := composite.Normal
	if backdrop != nil {
		mode = ps.Blend
	}
	if f, ok := obj.(*object.Form); ok && knockout(obj) {
		inner.drawKnockout(f, bm, d)
	} else {
		inner.dispatch(obj, bm, mode)
	}
	inner.finish()

	var mask *image.Alpha
	if softMask != nil {
		sm, err := p.softMask(softMask, bm, target)
		if err != nil {
			p.report(err)
			return
		}
		mask = sm
	}
	if p.textClip != nil {
		tm := p.glyphMask(p.textClip, bm, target)
		if mask == nil {
			mask = tm
		} else {
			composite.MultiplyMask(mask, tm)
		}
	}
	if f, ok := obj.(*object.Form); ok && f.FillAlpha < 1 {
		mask = scaleMask(mask, target, composite.Alpha8(f.FillAlpha))
	}

	if mask != nil {
		if backdrop != nil {
			composite.Mix(buf, backdrop, mask)
		} else {
			composite.ApplyMask(buf, mask)
		}
	}

	switch {
	case backdrop != nil:
		p.dev.ReplaceBitmap(buf)
	case scale > 0:
		p.dev.StretchBitmap(buf, box, true, ps.Blend)
	default:
		p.dev.SetBitmap(buf, ps.Blend)
	}
}

// blendsWithBackdrop reports whether obj is drawn onto a copy of the
// device backdrop.  The buffer then holds backdrop and group together and
// replaces the device pixels.  A form with a non-normal blend mode is
// composited as a whole, so its buffer starts out empty.
func (p *pass) blendsWithBackdrop(obj object.Object) bool {
	if isolated(obj) || !p.dev.Caps().ReadBack {
		return false
	}
	_, isForm := obj.(*object.Form)
	return !isForm || obj.State().Blend == composite.Normal
}

// drawKnockout draws the content of a knockout group onto d.  Every
// element is blended with the initial group backdrop and replaces the
// elements below it.
func (p *pass) drawKnockout(f *object.Form, m matrix.Matrix, d *device.Raster) {
	child := p.nested(d)
	if child == nil {
		return
	}
	fm := f.Matrix.Mul(m)
	initial := cloneRGBA(d.Image())
	list := f.Content
	if list == nil {
		return
	}
	if !list.Parsed() {
		list.ParseMore(nil)
	}
	for i := 0; i < list.Len(); i++ {
		obj := list.At(i)
		layer := child.scratch(initial.Rect)
		layer.ClipPath(rectPath(f.Box), fm, device.NonZero)
		lp := child.newPass(layer, child.depth)
		lp.override = child.override
		lp.draw(obj, fm)
		lp.finish()
		ps := obj.State()
		composite.Knockout(d.Image(), initial, layer.Image(), constAlpha(obj), ps.Blend)
	}
}

// constAlpha returns the constant alpha obj is painted with.
func constAlpha(obj object.Object) uint8 {
	ps := obj.State()
	if p, ok := obj.(*object.Path); ok && p.Stroked && !p.Filled {
		return composite.Alpha8(ps.StrokeAlpha)
	}
	return composite.Alpha8(ps.FillAlpha)
}

// softMask renders a soft mask group into an alpha mask covering target.
func (p *pass) softMask(sm *object.SoftMask, m matrix.Matrix, target image.Rectangle) (*image.Alpha, error) {
	if sm.Group == nil {
		return nil, &ResourceError{Kind: "soft mask", Err: errors.New("missing group")}
	}
	d := p.scratch(target)
	if sm.Kind == object.MaskLuminosity {
		bc := sm.Backdrop
		bc.A = 255
		draw.Draw(d.Image(), target, image.NewUniform(bc), image.Point{}, draw.Src)
	}
	if !p.renderForm(d, sm.Group, m) {
		return nil, ErrDepthExceeded
	}

	var mask *image.Alpha
	if sm.Kind == object.MaskLuminosity {
		mask = composite.LuminosityMask(d.Image())
	} else {
		mask = composite.AlphaMask(d.Image())
	}
	p.table(sm.Transfer).TranslateMask(mask)
	return mask, nil
}

// scaleMask multiplies mask by a/255.  A nil mask is treated as fully
// opaque.
func scaleMask(mask *image.Alpha, r image.Rectangle, a uint8) *image.Alpha {
	if mask == nil {
		mask = image.NewAlpha(r)
		draw.Draw(mask, r, image.NewUniform(color.Alpha{A: a}), image.Point{}, draw.Src)
		return mask
	}
	for i, v := range mask.Pix {
		mask.Pix[i] = uint8((uint32(v)*uint32(a) + 127) / 255)
	}
	return mask
}

func cloneRGBA(img *image.RGBA) *image.RGBA {
	res := image.NewRGBA(img.Rect)
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		copy(res.Pix[res.PixOffset(img.Rect.Min.X, y):], img.Pix[img.PixOffset(img.Rect.Min.X, y):img.PixOffset(img.Rect.Max.X, y)])
	}
	return res
}
