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
	"image"
	"image/color"

	"seehuhn.de/go/render/composite"
	"seehuhn.de/go/render/imagecache"
)

// ColorMode selects a color transformation applied to everything painted.
type ColorMode int

const (
	// ColorNormal paints colors unchanged.
	ColorNormal ColorMode = iota

	// ColorGray converts all colors to gray levels.
	ColorGray

	// ColorTwoColor maps dark colors to Options.Fore and light colors to
	// Options.Back.
	ColorTwoColor

	// ColorAlpha paints only the alpha channel, in black.
	ColorAlpha
)

// Options control a render.  The renderer copies the options at the start
// of every render; later changes have no effect on a render in progress.
type Options struct {
	ColorMode  ColorMode
	Fore, Back color.NRGBA

	// Print requests output for printing.  Together with a device which
	// cannot blend, this selects the simplified transparency handling
	// also used for printer devices.
	Print bool

	// Visible decides whether objects with the given optional content
	// marks are painted.  If nil, everything is visible.
	Visible func(marks []string) bool

	// CacheLimit is the size budget of the image cache, in bytes.  The
	// cache is trimmed after every image and every layer.  Zero disables
	// trimming.
	CacheLimit int64

	// StepLimit is the number of objects a scheduler renders between
	// checks of the pause predicate.
	StepLimit int

	// MaxDepth limits the nesting of forms, patterns, soft masks and
	// Type 3 glyphs.
	MaxDepth int

	// ImageBandRows is the number of output rows a rotated or sheared
	// image is resampled in before the pause predicate is checked.
	ImageBandRows int

	// Flatness is the curve flattening tolerance of offscreen buffers, in
	// pixels.
	Flatness float64
}

const (
	defaultStepLimit     = 100
	defaultMaxDepth      = 64
	defaultImageBandRows = 32
	defaultFlatness      = 0.25
)

// DefaultOptions returns the options used when nil is passed.
func DefaultOptions() *Options {
	return &Options{
		Fore:          color.NRGBA{A: 255},
		Back:          color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		CacheLimit:    imagecache.DefaultLimit,
		StepLimit:     defaultStepLimit,
		MaxDepth:      defaultMaxDepth,
		ImageBandRows: defaultImageBandRows,
		Flatness:      defaultFlatness,
	}
}

// normalize returns a copy of opts with unset fields replaced by defaults.
func (opts *Options) normalize() Options {
	if opts == nil {
		return *DefaultOptions()
	}
	res := *opts
	if res.StepLimit <= 0 {
		res.StepLimit = defaultStepLimit
	}
	if res.MaxDepth <= 0 {
		res.MaxDepth = defaultMaxDepth
	}
	if res.ImageBandRows <= 0 {
		res.ImageBandRows = defaultImageBandRows
	}
	if res.Flatness <= 0 {
		res.Flatness = defaultFlatness
	}
	if res.ColorMode == ColorTwoColor && res.Fore == res.Back {
		res.Fore = color.NRGBA{A: 255}
		res.Back = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return res
}

// TranslateColor applies the color mode to c.
func (opts *Options) TranslateColor(c color.NRGBA) color.NRGBA {
	switch opts.ColorMode {
	case ColorGray:
		g := composite.Gray(c.R, c.G, c.B)
		return color.NRGBA{R: g, G: g, B: g, A: c.A}
	case ColorTwoColor:
		l := uint32(composite.Gray(c.R, c.G, c.B))
		mix := func(fore, back uint8) uint8 {
			return uint8((uint32(fore)*(255-l) + uint32(back)*l + 127) / 255)
		}
		return color.NRGBA{
			R: mix(opts.Fore.R, opts.Back.R),
			G: mix(opts.Fore.G, opts.Back.G),
			B: mix(opts.Fore.B, opts.Back.B),
			A: c.A,
		}
	case ColorAlpha:
		return color.NRGBA{A: c.A}
	}
	return c
}

// translateImage applies the color mode to a premultiplied image.
func (opts *Options) translateImage(img *image.RGBA) {
	if opts.ColorMode == ColorNormal {
		return
	}
	for i := 0; i+3 < len(img.Pix); i += 4 {
		p := img.Pix[i : i+4 : i+4]
		a := uint32(p[3])
		if a == 0 {
			continue
		}
		c := color.NRGBA{
			R: uint8(min(uint32(p[0])*255/a, 255)),
			G: uint8(min(uint32(p[1])*255/a, 255)),
			B: uint8(min(uint32(p[2])*255/a, 255)),
			A: p[3],
		}
		pc := composite.Premultiply(opts.TranslateColor(c))
		p[0], p[1], p[2], p[3] = pc.R, pc.G, pc.B, pc.A
	}
}
