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

// Package transfer turns PDF transfer functions into 8-bit lookup tables.
package transfer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"seehuhn.de/go/pdf"
)

// Func is a PDF function with one input.  The function types in
// seehuhn.de/go/pdf/function implement this interface.
type Func interface {
	Apply(inputs ...float64) []float64
}

// Table is a sampled transfer function for the red, green and blue
// channels.
type Table struct {
	Samples [3][256]uint8

	// Identity is set if the table maps every value to itself.
	Identity bool
}

// ShapeError is returned when transfer functions have an unusable form.
type ShapeError struct {
	NumFuncs int
	Message  string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("transfer function (%d funcs): %s", e.NumFuncs, e.Message)
}

// Is makes all ShapeError values match errors.Is.
func (e *ShapeError) Is(target error) bool {
	_, ok := target.(*ShapeError)
	return ok
}

// NewTable samples the given functions.  A single function is used for
// all three channels; otherwise exactly three functions are needed, for
// red, green and blue.
func NewTable(funcs ...Func) (*Table, error) {
	switch len(funcs) {
	case 1:
		funcs = []Func{funcs[0], funcs[0], funcs[0]}
	case 3:
		// per channel
	default:
		return nil, &ShapeError{NumFuncs: len(funcs), Message: "need 1 or 3 functions"}
	}

	t := &Table{Identity: true}
	for ch, f := range funcs {
		if f == nil {
			return nil, &ShapeError{NumFuncs: len(funcs), Message: "missing function"}
		}
		for v := range 256 {
			out := f.Apply(float64(v) / 255)
			if len(out) == 0 {
				return nil, &ShapeError{NumFuncs: len(funcs), Message: "function has no outputs"}
			}
			s := sample(out[0])
			t.Samples[ch][v] = s
			if s != uint8(v) {
				t.Identity = false
			}
		}
	}
	return t, nil
}

func sample(y float64) uint8 {
	if math.IsNaN(y) {
		return 0
	}
	return uint8(math.Round(min(max(y, 0), 1) * 255))
}

// Map applies the table to one channel value.
func (t *Table) Map(ch int, v uint8) uint8 {
	return t.Samples[ch][v]
}

// TranslateColor maps the color channels of c and leaves alpha alone.
func (t *Table) TranslateColor(c color.NRGBA) color.NRGBA {
	if t == nil || t.Identity {
		return c
	}
	return color.NRGBA{R: t.Samples[0][c.R], G: t.Samples[1][c.G], B: t.Samples[2][c.B], A: c.A}
}

// TranslateImage maps the color channels of img in place.  Premultiplied
// values are divided out before the lookup.
func (t *Table) TranslateImage(img *image.RGBA) {
	if t == nil || t.Identity {
		return
	}
	for i := 0; i+3 < len(img.Pix); i += 4 {
		p := img.Pix[i : i+4 : i+4]
		a := uint32(p[3])
		if a == 0 {
			continue
		}
		for ch := range 3 {
			v := min(uint32(p[ch])*255/a, 255)
			p[ch] = uint8((uint32(t.Samples[ch][v])*a + 127) / 255)
		}
	}
}

// TranslateMask maps the values of a soft mask through the first channel.
func (t *Table) TranslateMask(mask *image.Alpha) {
	if t == nil || t.Identity {
		return
	}
	for i, v := range mask.Pix {
		mask.Pix[i] = t.Samples[0][v]
	}
}

type entry struct {
	table *Table
	refs  int
}

// Cache shares transfer tables between all renders of one document.
// Entries are reference counted.  A Cache must not be used concurrently.
type Cache struct {
	entries map[pdf.Reference]*entry
}

// NewCache allocates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[pdf.Reference]*entry)}
}

// Acquire returns the table for the function object ref, sampling funcs
// on the first use.  Every successful call must be paired with Release.
// A zero ref bypasses the cache.
func (c *Cache) Acquire(ref pdf.Reference, funcs ...Func) (*Table, error) {
	if ref == 0 {
		return NewTable(funcs...)
	}
	if e, ok := c.entries[ref]; ok {
		e.refs++
		return e.table, nil
	}
	t, err := NewTable(funcs...)
	if err != nil {
		return nil, err
	}
	c.entries[ref] = &entry{table: t, refs: 1}
	return t, nil
}

// Release drops one reference to the table for ref.  The table is
// discarded when the last reference is gone.
func (c *Cache) Release(ref pdf.Reference) {
	e, ok := c.entries[ref]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(c.entries, ref)
	}
}

// Refs returns the current reference count of ref.
func (c *Cache) Refs(ref pdf.Reference) int {
	if e, ok := c.entries[ref]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Clear discards all tables, regardless of reference counts.
func (c *Cache) Clear() {
	clear(c.entries)
}
