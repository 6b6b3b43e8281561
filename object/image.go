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

	"seehuhn.de/go/pdf"

	"seehuhn.de/go/render/codec"
)

// ImageResource is an image XObject.  Resources are identified by Ref:
// two resources with the same Ref are assumed to have the same content.
type ImageResource struct {
	Ref pdf.Reference

	// Source produces the decoded samples.
	Source codec.Source

	Width, Height    int
	BitsPerComponent int
	Components       int

	// PaletteSize is the number of entries of an indexed color space,
	// or zero.
	PaletteSize int

	// IsMask marks a stencil mask, painted in the current fill color or
	// pattern.  The decoded bitmap gives the opacity.
	IsMask bool

	// Mask is an explicit mask or soft mask image.  Its decoded gray
	// values give the opacity of the corresponding image pixels.
	Mask *ImageResource

	// Matte is the matte color the image was premultiplied with, if the
	// soft mask has a /Matte entry.
	Matte *color.NRGBA

	// ColorKey lists [min, max] ranges of 8-bit sample values, one pair
	// per color component.  Pixels inside all ranges are transparent.
	ColorKey []uint8

	Interpolate bool
}

// EstimatedSize returns the memory needed for the decoded bitmap and its
// mask, in bytes.  Rows are padded to 32 bits and palettes take four
// bytes per entry.
func (r *ImageResource) EstimatedSize() int64 {
	if r == nil {
		return 0
	}
	bpc := r.BitsPerComponent
	if bpc <= 0 {
		bpc = 8
	}
	comps := r.Components
	if comps <= 0 {
		comps = 1
	}
	pitch := (int64(r.Width)*int64(bpc)*int64(comps) + 31) / 32 * 4
	size := pitch*int64(r.Height) + int64(r.PaletteSize)*4
	return size + r.Mask.EstimatedSize()
}
