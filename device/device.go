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

// Package device describes the output surfaces the renderer paints on.
package device

import (
	"image"
	"image/color"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/render/composite"
)

// Class distinguishes screen-like devices from print devices.
type Class int

const (
	Display Class = iota
	Printer
)

func (c Class) String() string {
	if c == Printer {
		return "printer"
	}
	return "display"
}

// Caps describes what a device can do.
type Caps struct {
	Class Class

	// BlendModes is set if the device implements non-normal blend modes.
	BlendModes bool

	// ReadBack is set if GetBitmap works.
	ReadBack bool

	// SoftClip is set if the device can clip to glyph outlines with
	// anti-aliased edges.
	SoftClip bool

	// Scale is the number of device pixels per device space unit.
	Scale float64
}

// FillRule selects how the inside of a path is determined.
type FillRule int

const (
	NonZero FillRule = iota
	EvenOdd
)

// StrokeStyle collects the line parameters of a stroke.
type StrokeStyle struct {
	Width      float64
	Cap        graphics.LineCapStyle
	Join       graphics.LineJoinStyle
	MiterLimit float64
}

// Glyph is one glyph outline placed on the page.  Matrix maps glyph space
// to the space of the surrounding text object.
type Glyph struct {
	Outline *path.Data
	Matrix  matrix.Matrix
}

// Device is a raster output surface.
//
// Bitmaps and masks passed to or from a device are positioned by their
// bounds, which are given in device pixel coordinates.  Colors passed to
// paint operations are not premultiplied.
type Device interface {
	Caps() Caps

	// Bounds returns the pixel area of the device.
	Bounds() image.Rectangle

	// ClipBox returns the bounding box of the current clip region.
	ClipBox() image.Rectangle

	// SaveState pushes the current clip state.
	SaveState()

	// RestoreState returns to the most recently saved clip state.  If
	// keepSaved is set, the saved state stays on the stack.
	RestoreState(keepSaved bool)

	// ClipPath intersects the clip region with a path.
	ClipPath(p *path.Data, ctm matrix.Matrix, rule FillRule)

	// ClipGlyphs intersects the clip region with the union of glyph
	// outlines.
	ClipGlyphs(glyphs []Glyph, ctm matrix.Matrix)

	FillPath(p *path.Data, ctm matrix.Matrix, rule FillRule, c color.NRGBA, mode composite.BlendMode)
	StrokePath(p *path.Data, ctm matrix.Matrix, style *StrokeStyle, c color.NRGBA, mode composite.BlendMode)
	FillGlyphs(glyphs []Glyph, ctm matrix.Matrix, c color.NRGBA, mode composite.BlendMode)

	// SetBitmap composites a premultiplied bitmap onto the device.
	SetBitmap(src *image.RGBA, mode composite.BlendMode)

	// StretchBitmap scales src to fill dst and composites the result.
	StretchBitmap(src image.Image, dst image.Rectangle, interpolate bool, mode composite.BlendMode)

	// ReplaceBitmap replaces the device pixels under src by src, in
	// proportion to the clip coverage.  It is used for bitmaps which
	// already contain the device backdrop.
	ReplaceBitmap(src *image.RGBA)

	// SetBitMask paints color c through a mask.
	SetBitMask(mask *image.Alpha, c color.NRGBA, mode composite.BlendMode)

	// GetBitmap copies device pixels into dst.  It reports false if the
	// device cannot read back.
	GetBitmap(dst *image.RGBA) bool
}
