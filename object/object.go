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

// Package object is the page content model consumed by the renderer.
//
// A page is described by lists of drawable objects.  Every object is one
// of *Path, *Text, *Image, *Shading or *Form, and carries a [PaintState]
// describing how it is painted.  Coordinates of all objects in a list are
// given in the user space of that list.
package object

import (
	"image/color"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/render/composite"
	"seehuhn.de/go/render/device"
	"seehuhn.de/go/render/transfer"
)

// Kind identifies the variant of a drawable object.
type Kind int

const (
	KindPath Kind = iota
	KindText
	KindImage
	KindShading
	KindForm
)

func (k Kind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindShading:
		return "shading"
	case KindForm:
		return "form"
	}
	return "unknown"
}

// Object is a drawable object.  The set of implementations is closed.
type Object interface {
	Kind() Kind

	// State returns the paint state of the object.
	State() *PaintState

	// BBox returns the bounding box of the object in user space.  The
	// second result is false for objects which cover the whole clip area.
	BBox() (rect.Rect, bool)

	isObject()
}

// PaintState describes how an object is painted.
type PaintState struct {
	// Fill and Stroke are the paint colors.  The alpha channel of each
	// color is multiplied with the corresponding constant alpha.
	Fill, Stroke color.NRGBA

	// FillAlpha and StrokeAlpha are the constant alpha values in [0, 1].
	// For forms, FillAlpha is the group alpha.
	FillAlpha, StrokeAlpha float64

	// FillPattern, if set, replaces the fill color.
	FillPattern *Pattern

	LineStyle device.StrokeStyle

	// Clip is the clip path in effect for the object, nil for none.
	Clip *ClipPath

	Blend    composite.BlendMode
	SoftMask *SoftMask
	Transfer *Transfer

	// Marks are the names of the optional content groups the object
	// belongs to.
	Marks []string
}

// DefaultPaint returns the initial paint state of a PDF content stream:
// black, opaque, one unit wide lines and normal blending.
func DefaultPaint() PaintState {
	return PaintState{
		Fill:        color.NRGBA{A: 255},
		Stroke:      color.NRGBA{A: 255},
		FillAlpha:   1,
		StrokeAlpha: 1,
		LineStyle: device.StrokeStyle{
			Width:      1,
			Cap:        graphics.LineCapButt,
			Join:       graphics.LineJoinMiter,
			MiterLimit: 10,
		},
	}
}

// State returns ps itself.  It is promoted to every object variant.
func (ps *PaintState) State() *PaintState {
	return ps
}

// Transfer names a transfer function.
type Transfer struct {
	// Ref identifies the function object, for caching.  Zero disables
	// caching.
	Ref pdf.Reference

	// Funcs holds one function for all channels, or one per channel.
	Funcs []transfer.Func
}

// Path is a filled and/or stroked path.
type Path struct {
	PaintState
	Path    *path.Data
	Filled  bool
	Rule    device.FillRule
	Stroked bool
}

func (*Path) Kind() Kind { return KindPath }
func (*Path) isObject()  {}

// BBox implements [Object].  Stroked paths are padded by half the line
// width, or by the miter length for mitred joins.
func (p *Path) BBox() (rect.Rect, bool) {
	b, ok := pathBBox(p.Path)
	if !ok {
		return rect.Rect{}, true
	}
	if p.Stroked {
		pad := p.LineStyle.Width / 2
		if p.LineStyle.Join == graphics.LineJoinMiter && p.LineStyle.MiterLimit > 1 {
			pad *= p.LineStyle.MiterLimit
		}
		if p.LineStyle.Cap == graphics.LineCapSquare {
			pad = max(pad, p.LineStyle.Width*0.7072)
		}
		b = rect.Rect{LLx: b.LLx - pad, LLy: b.LLy - pad, URx: b.URx + pad, URy: b.URy + pad}
	}
	return b, true
}

// TextMode selects how glyphs are painted.
type TextMode int

const (
	TextFill TextMode = iota
	TextStroke
	TextFillStroke
	TextInvisible
)

// Glyph is one positioned glyph.  Outline glyphs carry a path in glyph
// space; Type 3 glyphs carry a content list instead.
type Glyph struct {
	Outline *path.Data
	Proc    List

	// Matrix maps glyph space to text space.
	Matrix matrix.Matrix

	// BBox is the glyph box in glyph space, used for Type 3 glyphs.
	BBox rect.Rect
}

// Text is a run of glyphs.
type Text struct {
	PaintState
	Glyphs []Glyph

	// Matrix maps text space to user space.
	Matrix matrix.Matrix

	Mode TextMode
}

func (*Text) Kind() Kind { return KindText }
func (*Text) isObject()  {}

// BBox implements [Object].
func (t *Text) BBox() (rect.Rect, bool) {
	var res rect.Rect
	first := true
	for _, g := range t.Glyphs {
		b, ok := pathBBox(g.Outline)
		if !ok {
			if g.Proc == nil {
				continue
			}
			b = g.BBox
		}
		b = TransformRect(b, g.Matrix.Mul(t.Matrix))
		if first {
			res, first = b, false
		} else {
			res = Union(res, b)
		}
	}
	return res, true
}

// DeviceGlyphs returns the outline glyphs of t, with glyph matrices
// mapping to user space.
func (t *Text) DeviceGlyphs() []device.Glyph {
	out := make([]device.Glyph, 0, len(t.Glyphs))
	for _, g := range t.Glyphs {
		if g.Outline == nil {
			continue
		}
		out = append(out, device.Glyph{Outline: g.Outline, Matrix: g.Matrix.Mul(t.Matrix)})
	}
	return out
}

// Image is an image XObject or inline image placed on the page.
type Image struct {
	PaintState
	Resource *ImageResource

	// Matrix maps the unit square to user space.
	Matrix matrix.Matrix
}

func (*Image) Kind() Kind { return KindImage }
func (*Image) isObject()  {}

// BBox implements [Object].
func (im *Image) BBox() (rect.Rect, bool) {
	return TransformRect(rect.Rect{URx: 1, URy: 1}, im.Matrix), true
}

// Shading is a shading painted with the sh operator.
type Shading struct {
	PaintState
	Shader Shader

	// Matrix maps shading space to user space.
	Matrix matrix.Matrix

	// Box limits the shading, in shading space.  If nil, the shading
	// covers the whole clip region.
	Box *rect.Rect
}

func (*Shading) Kind() Kind { return KindShading }
func (*Shading) isObject()  {}

// BBox implements [Object].
func (s *Shading) BBox() (rect.Rect, bool) {
	if s.Box == nil {
		return rect.Rect{}, false
	}
	return TransformRect(*s.Box, s.Matrix), true
}

// Group holds the transparency group attributes of a form.
type Group struct {
	Isolated bool
	Knockout bool
}

// Form is a form XObject.
type Form struct {
	PaintState
	Content List

	// Matrix maps form space to user space.
	Matrix matrix.Matrix

	// Box is the form bounding box, in form space.
	Box rect.Rect

	// Group is non-nil for transparency group forms.
	Group *Group
}

func (*Form) Kind() Kind { return KindForm }
func (*Form) isObject()  {}

// BBox implements [Object].
func (f *Form) BBox() (rect.Rect, bool) {
	return TransformRect(f.Box, f.Matrix), true
}

// SoftMaskKind selects how a soft mask group is turned into alpha values.
type SoftMaskKind int

const (
	MaskLuminosity SoftMaskKind = iota
	MaskAlpha
)

// ParseSoftMaskKind interprets the /S entry of a soft mask dictionary.
// Anything other than /Alpha selects luminosity.
func ParseSoftMaskKind(s pdf.Name) SoftMaskKind {
	if s == "Alpha" {
		return MaskAlpha
	}
	return MaskLuminosity
}

// SoftMask is a soft mask dictionary.
type SoftMask struct {
	Kind SoftMaskKind

	// Group is the form whose rendering yields the mask.  Its Matrix
	// maps to the user space of the masked object.
	Group *Form

	// Backdrop is the backdrop color for luminosity masks.
	Backdrop color.NRGBA

	// Transfer maps mask values, if set.
	Transfer *Transfer
}
